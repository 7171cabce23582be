package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/promptloom/backend/internal/auth"
	"github.com/promptloom/backend/internal/provider"
)

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateResponse struct {
	Success           bool   `json:"success"`
	GeneratedText     string `json:"generated_text"`
	GeneratedImageURL string `json:"generated_image_url"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type Handler struct {
	svc     *Service
	authSvc auth.Service
	log     *slog.Logger
}

func NewHandler(svc *Service, authSvc auth.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, authSvc: authSvc, log: log}
}

// Generate handles POST /api/v1/generate. All failures use the uniform
// {success:false, error} envelope with status 400, matching what API
// clients already parse.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := h.userIDFromRequest(r)
	if err != nil {
		writeFailure(w, "Unauthorized")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, "Prompt is required")
		return
	}

	result, err := h.svc.Generate(r.Context(), userID, req.Prompt)
	if err != nil {
		writeFailure(w, h.failureMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success:           true,
		GeneratedText:     result.GeneratedText,
		GeneratedImageURL: result.GeneratedImageURL,
	})
}

func (h *Handler) failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPrompt):
		return "Prompt is required"
	case errors.Is(err, ErrQuotaExceeded):
		return "Daily generation limit reached. Upgrade to Pro for unlimited access."
	case errors.Is(err, ErrMissingAPIKey):
		return "Please configure your OpenAI API key in Settings."
	case errors.Is(err, ErrCredential):
		return "Your stored API key could not be read. Please re-save it in Settings."
	case errors.Is(err, provider.ErrProvider):
		return err.Error()
	case errors.Is(err, ErrAccountLoad):
		h.log.Error("load user profile failed", "error", err)
		return "Failed to fetch user profile"
	case errors.Is(err, ErrPersistence):
		h.log.Error("save creation failed", "error", err)
		return "Failed to save creation"
	default:
		h.log.Error("generation failed", "error", err)
		return "Generation failed"
	}
}

func (h *Handler) userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return uuid.Nil, fmt.Errorf("missing authorization")
	}
	token := strings.TrimSpace(authz[len(prefix):])
	if token == "" {
		return uuid.Nil, fmt.Errorf("empty token")
	}
	return h.authSvc.ValidateToken(r.Context(), token)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Success: false, Error: msg})
}
