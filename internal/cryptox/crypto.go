package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	nonceSize  = 12
	keySize    = 32
	iterations = 100000
)

// ErrConfiguration is returned by New when the server secret is missing.
var ErrConfiguration = errors.New("encryption secret is not configured")

// ErrDecryption is the only error Decrypt returns for bad input. Malformed
// blobs, truncated data, tampering, and a wrong secret are deliberately
// indistinguishable to the caller.
var ErrDecryption = errors.New("decryption failed")

// Cipher encrypts and decrypts a single opaque credential string at rest.
// Keys are derived per record with PBKDF2-SHA256 from the server secret and
// a random salt; the payload is sealed with AES-256-GCM.
type Cipher struct {
	secret []byte
}

func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, ErrConfiguration
	}
	return &Cipher{secret: []byte(secret)}, nil
}

func (c *Cipher) deriveKey(salt []byte) []byte {
	return pbkdf2.Key(c.secret, salt, iterations, keySize, sha256.New)
}

// Encrypt seals plaintext and returns hex(salt || nonce || ciphertext).
// Salt and nonce are freshly random on every call, so encrypting the same
// plaintext twice yields different blobs.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	aesgcm, err := newGCM(c.deriveKey(salt))
	if err != nil {
		return "", err
	}
	ciphertext := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)

	combined := make([]byte, 0, saltSize+nonceSize+len(ciphertext))
	combined = append(combined, salt...)
	combined = append(combined, nonce...)
	combined = append(combined, ciphertext...)
	return hex.EncodeToString(combined), nil
}

// Decrypt reverses Encrypt. The blob must be hex(salt || nonce || ciphertext)
// produced under the same server secret.
func (c *Cipher) Decrypt(blob string) (string, error) {
	combined, err := hex.DecodeString(blob)
	if err != nil {
		return "", ErrDecryption
	}
	// The GCM tag alone is 16 bytes, so anything shorter than
	// salt+nonce+tag cannot be a valid blob.
	if len(combined) < saltSize+nonceSize+16 {
		return "", ErrDecryption
	}
	salt := combined[:saltSize]
	nonce := combined[saltSize : saltSize+nonceSize]
	ciphertext := combined[saltSize+nonceSize:]

	aesgcm, err := newGCM(c.deriveKey(salt))
	if err != nil {
		return "", ErrDecryption
	}
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
