package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptloom/backend/internal/models"
	"github.com/promptloom/backend/internal/provider"
	"github.com/promptloom/backend/internal/quota"
	"github.com/promptloom/backend/internal/repository"
)

var (
	// ErrInvalidPrompt rejects empty or blank prompts.
	ErrInvalidPrompt = errors.New("prompt is required")
	// ErrQuotaExceeded denies admission, or flags a lost commit race.
	ErrQuotaExceeded = errors.New("daily generation limit reached")
	// ErrMissingAPIKey means no credential is on file for the user.
	ErrMissingAPIKey = errors.New("no api key configured")
	// ErrCredential covers any failure decrypting the stored credential.
	ErrCredential = errors.New("stored api key could not be read")
	// ErrAccountLoad wraps store failures while fetching the user.
	ErrAccountLoad = errors.New("failed to load user profile")
	// ErrPersistence wraps store failures while saving the creation.
	ErrPersistence = errors.New("failed to save creation")
)

// UserStore is the account access the orchestrator needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CommitGeneration(ctx context.Context, id uuid.UUID, today string, allowance int) (newCount int, err error)
}

// CreationStore persists generation results.
type CreationStore interface {
	Create(ctx context.Context, c *models.Creation) error
}

// TextGenerator is the external generation provider.
type TextGenerator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// Decrypter recovers the stored credential plaintext.
type Decrypter interface {
	Decrypt(blob string) (string, error)
}

type Result struct {
	GeneratedText     string
	GeneratedImageURL string
}

// Service runs one generation request end to end: admission check, stored
// credential decryption, the provider call, creation persistence, and the
// quota commit. Every failure is terminal; nothing is retried.
type Service struct {
	users     UserStore
	creations CreationStore
	cipher    Decrypter
	provider  TextGenerator
	now       func() time.Time
	log       *slog.Logger
}

// NewService wires the orchestrator. now is injected so tests can pin the
// current date; nil means time.Now.
func NewService(users UserStore, creations CreationStore, cipher Decrypter, textGen TextGenerator, now func() time.Time, log *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{users: users, creations: creations, cipher: cipher, provider: textGen, now: now, log: log}
}

// Generate performs one admission-checked generation for the given user.
//
// Two narrow inconsistency windows are accepted by design rather than hidden
// behind a distributed rollback: a provider success followed by a failed
// creation insert leaves the external cost incurred with nothing stored or
// charged, and a store error on the final quota commit (other than losing
// the ceiling race) still returns success, since the content was already
// delivered and stored.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrInvalidPrompt
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccountLoad, err)
	}

	today := s.today()
	if !quota.CanGenerate(user, today) {
		return nil, ErrQuotaExceeded
	}

	if user.APIKeyEncrypted == nil || *user.APIKeyEncrypted == "" {
		return nil, ErrMissingAPIKey
	}
	apiKey, err := s.cipher.Decrypt(*user.APIKeyEncrypted)
	if err != nil {
		// Deliberately opaque: tampered blob, wrong server secret, and
		// corrupted data all look the same to the caller.
		return nil, ErrCredential
	}

	text, err := s.provider.Generate(ctx, apiKey, prompt)
	if err != nil {
		return nil, err
	}
	imageURL := provider.PlaceholderImageURL(prompt)

	creation := &models.Creation{
		ID:                uuid.New(),
		UserID:            userID,
		Prompt:            prompt,
		GeneratedText:     text,
		GeneratedImageURL: imageURL,
	}
	if err := s.creations.Create(ctx, creation); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if _, err := s.users.CommitGeneration(ctx, userID, today, quota.Allowance); err != nil {
		if errors.Is(err, repository.ErrAllowanceExhausted) {
			// A concurrent request consumed the last slot after our
			// admission check. Refuse rather than overcount.
			return nil, ErrQuotaExceeded
		}
		// Best-effort commit: the generation was delivered and stored, so
		// the request still succeeds. The displayed remaining count may
		// undercount by one until the next fetch.
		s.log.Warn("quota commit failed after successful generation", "user_id", userID, "error", err)
	}

	return &Result{GeneratedText: text, GeneratedImageURL: imageURL}, nil
}

func (s *Service) today() string {
	return s.now().UTC().Format(quota.DateLayout)
}
