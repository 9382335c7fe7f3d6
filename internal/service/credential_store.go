package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/config"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultKDFIterations = 310000
	DefaultSaltLength    = 16
	DefaultKeyLength     = 32

	MinKDFIterations = 100000
	MinSaltLength    = 16
	MinKeyLength     = 16
)

var ErrEmptySecret = errors.New("secret must not be empty")

var _ CredentialGenerator = (*CredentialStore)(nil)

// CredentialParams are the PBKDF2-HMAC-SHA256 parameters. They must not change
// while credentials derived with them are still stored.
type CredentialParams struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// DefaultCredentialParams returns the parameters used when nothing is configured.
func DefaultCredentialParams() CredentialParams {
	return CredentialParams{
		Iterations: DefaultKDFIterations,
		SaltLength: DefaultSaltLength,
		KeyLength:  DefaultKeyLength,
	}
}

// CredentialParamsFromConfig maps the KDF section of the config.
func CredentialParamsFromConfig(cfg config.KDFConfig) CredentialParams {
	return CredentialParams{
		Iterations: cfg.Iterations,
		SaltLength: cfg.SaltLength,
		KeyLength:  cfg.KeyLength,
	}
}

func (p CredentialParams) Validate() error {
	if p.Iterations < MinKDFIterations {
		return fmt.Errorf("kdf iterations must be at least %d, got %d", MinKDFIterations, p.Iterations)
	}
	if p.SaltLength < MinSaltLength {
		return fmt.Errorf("salt length must be at least %d bytes, got %d", MinSaltLength, p.SaltLength)
	}
	if p.KeyLength < MinKeyLength {
		return fmt.Errorf("key length must be at least %d bytes, got %d", MinKeyLength, p.KeyLength)
	}
	return nil
}

// CredentialStore enrolls and verifies password credentials.
type CredentialStore struct {
	params CredentialParams
}

func NewCredentialStore(params CredentialParams) (*CredentialStore, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &CredentialStore{params: params}, nil
}

// Enroll derives a fresh salt/verifier pair for secret. The caller persists it.
func (s *CredentialStore) Enroll(secret string) (models.Credential, error) {
	if secret == "" {
		return models.Credential{}, ErrEmptySecret
	}

	salt := make([]byte, s.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return models.Credential{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	return models.Credential{
		Salt:     salt,
		Verifier: s.derive(secret, salt),
	}, nil
}

// Verify reports whether secret matches cred. A mismatch is not an error.
func (s *CredentialStore) Verify(secret string, cred models.Credential) bool {
	if secret == "" || len(cred.Salt) == 0 || len(cred.Verifier) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(s.derive(secret, cred.Salt), cred.Verifier) == 1
}

func (s *CredentialStore) derive(secret string, salt []byte) []byte {
	return pbkdf2.Key([]byte(secret), salt, s.params.Iterations, s.params.KeyLength, sha256.New)
}
