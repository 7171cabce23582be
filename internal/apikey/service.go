package apikey

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidKey rejects a blank credential or one without the sk- prefix.
var ErrInvalidKey = errors.New("a valid api key is required")

// RequiredPrefix marks plausible OpenAI keys; anything else is refused
// before it ever reaches the cipher.
const RequiredPrefix = "sk-"

// UserStore is the credential column access the service needs.
type UserStore interface {
	SetEncryptedAPIKey(ctx context.Context, id uuid.UUID, blob string) error
	ClearEncryptedAPIKey(ctx context.Context, id uuid.UUID) error
}

// Encrypter seals a credential for storage.
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
}

// Service validates, encrypts, and stores a user's API key, or clears it.
type Service struct {
	users  UserStore
	cipher Encrypter
}

func NewService(users UserStore, cipher Encrypter) *Service {
	return &Service{users: users, cipher: cipher}
}

// Save encrypts the trimmed key and overwrites the stored blob. Repeated
// saves replace the previous blob, each with fresh salt and nonce.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, rawKey string) error {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" || !strings.HasPrefix(rawKey, RequiredPrefix) {
		return ErrInvalidKey
	}
	blob, err := s.cipher.Encrypt(rawKey)
	if err != nil {
		return fmt.Errorf("encrypt api key: %w", err)
	}
	if err := s.users.SetEncryptedAPIKey(ctx, userID, blob); err != nil {
		return fmt.Errorf("store api key: %w", err)
	}
	return nil
}

// Delete clears the stored credential. Idempotent: succeeds even when no
// key is on file.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.ClearEncryptedAPIKey(ctx, userID); err != nil {
		return fmt.Errorf("clear api key: %w", err)
	}
	return nil
}
