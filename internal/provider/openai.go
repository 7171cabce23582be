package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrProvider covers any upstream generation failure, including timeouts.
// Its text is the caller-facing message; the upstream error detail is
// appended for non-2xx responses.
var ErrProvider = errors.New("Failed to generate content from AI.")

const defaultBaseURL = "https://api.openai.com"

// Client calls the chat completions API. No retries: a single failure is
// surfaced directly to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point at a local server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt as a single user message and returns the
// trimmed completion text. apiKey is the caller's own credential.
func (c *Client) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:     "gpt-3.5-turbo",
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: 250,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors and timeouts share the generic message; the
		// underlying detail stays out of API responses.
		return "", ErrProvider
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e chatError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return "", fmt.Errorf("%w %s", ErrProvider, e.Error.Message)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", ErrProvider
	}
	if len(out.Choices) == 0 {
		return "", ErrProvider
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// PlaceholderImageURL builds the placeholder image reference returned with
// every generation. The prompt is truncated to 50 characters before
// escaping.
func PlaceholderImageURL(prompt string) string {
	if len(prompt) > 50 {
		prompt = prompt[:50]
	}
	return "https://placehold.co/512x512/6366f1/ffffff?text=" + url.QueryEscape(prompt)
}
