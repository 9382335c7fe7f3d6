package service

import (
	"context"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
)

// CredentialGenerator enrolls and verifies password credentials.
type CredentialGenerator interface {
	// Enroll derives a new random salt and verifier for secret.
	Enroll(secret string) (models.Credential, error)
	// Verify reports whether secret reproduces cred's verifier.
	Verify(secret string, cred models.Credential) bool
}

// TokenGenerator mints and verifies session tokens.
type TokenGenerator interface {
	GenerateToken(subject string) (string, error)
	ValidateToken(tokenString string) (subject string, err error)
	// VerifyToken validates the token and checks its subject still exists.
	VerifyToken(ctx context.Context, tokenString string) (accountID string, err error)
}

// AccountGenerator is the account lifecycle exposed to handlers.
type AccountGenerator interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error)
	// Login returns ErrInvalidCredential for both an unknown email and a wrong password.
	Login(ctx context.Context, req models.LoginRequest) (*models.Account, string, error)
	Current(ctx context.Context, accountID string) (*models.Account, error)
	Update(ctx context.Context, accountID string, req models.UpdateAccountRequest) (*models.Account, string, error)
	ChangePassword(ctx context.Context, accountID string, req models.ChangePasswordRequest) (*models.Account, string, error)
	Delete(ctx context.Context, accountID string) error
}
