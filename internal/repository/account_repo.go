package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
)

// AccountRepository defines operations for storing/retrieving accounts and their credentials
type AccountRepository interface {
	// CreateAccount stores a new account.
	// It should return ErrEmailInUse or ErrUsernameInUse (both wrap ErrAccountExists)
	// if the email or username is already taken.
	CreateAccount(ctx context.Context, account *models.Account) error

	// It should return ErrAccountNotFound if the account does not exist.
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)

	// UpdateAccount applies the set fields of update and returns the stored result.
	// Uniqueness of email and username is enforced as in CreateAccount.
	UpdateAccount(ctx context.Context, id string, update models.AccountUpdate) (*models.Account, error)

	// UpdateCredential replaces the salt and verifier wholesale.
	UpdateCredential(ctx context.Context, id string, cred models.Credential) error

	// DeleteAccount removes the account. It returns ErrAccountNotFound if it does not exist.
	DeleteAccount(ctx context.Context, id string) error
}

// Common errors
var ErrAccountNotFound = errors.New("account not found")
var ErrAccountExists = errors.New("account already exists")
var ErrEmailInUse = fmt.Errorf("email is already in use: %w", ErrAccountExists)
var ErrUsernameInUse = fmt.Errorf("username is already in use: %w", ErrAccountExists)
