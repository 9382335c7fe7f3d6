package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var _ AccountGenerator = (*AccountService)(nil)

// AccountService handles registration, login and profile changes
type AccountService struct {
	accountRepo repository.AccountRepository
	credentials CredentialGenerator
	tokenSvc    TokenGenerator
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo repository.AccountRepository, credentials CredentialGenerator, tokenSvc TokenGenerator) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		credentials: credentials,
		tokenSvc:    tokenSvc,
	}
}

// Register enrolls the password and stores a new account. No token is issued.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error) {
	if err := s.ensureAvailable(ctx, req.Email, req.Username, ""); err != nil {
		return nil, err
	}

	cred, err := s.credentials.Enroll(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to enroll credential: %w", err)
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Avatar:    models.DefaultAvatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
	account.SetCredential(cred)

	if err := s.accountRepo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Info().Str("accountId", account.ID).Str("username", account.Username).Msg("Account registered")
	return account, nil
}

// Login verifies the password for the account owning req.Email and mints a token.
// An unknown email and a wrong password both return ErrInvalidCredential.
func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*models.Account, string, error) {
	account, err := s.accountRepo.GetAccountByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, "", newAuthFailure(InvalidCredential, "no account for email")
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up account: %w", err)
	}

	cred, err := account.Credential()
	if err != nil {
		return nil, "", fmt.Errorf("stored credential for account %s is corrupt: %w", account.ID, err)
	}
	if !s.credentials.Verify(req.Password, cred) {
		return nil, "", newAuthFailure(InvalidCredential, "password mismatch for account %s", account.ID)
	}

	token, err := s.tokenSvc.GenerateToken(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return account, token, nil
}

func (s *AccountService) Current(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Update applies the allow-listed profile fields and re-issues a token.
func (s *AccountService) Update(ctx context.Context, accountID string, req models.UpdateAccountRequest) (*models.Account, string, error) {
	var account *models.Account
	var err error

	if req.IsEmpty() {
		account, err = s.accountRepo.GetAccountByID(ctx, accountID)
	} else {
		email, username := "", ""
		if req.Email != nil {
			email = *req.Email
		}
		if req.Username != nil {
			username = *req.Username
		}
		if err := s.ensureAvailable(ctx, email, username, accountID); err != nil {
			return nil, "", err
		}
		account, err = s.accountRepo.UpdateAccount(ctx, accountID, req)
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokenSvc.GenerateToken(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return account, token, nil
}

// ChangePassword verifies the current password, enrolls the new one with a fresh salt
// and re-issues a token.
func (s *AccountService) ChangePassword(ctx context.Context, accountID string, req models.ChangePasswordRequest) (*models.Account, string, error) {
	account, err := s.accountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, "", err
	}

	current, err := account.Credential()
	if err != nil {
		return nil, "", fmt.Errorf("stored credential for account %s is corrupt: %w", account.ID, err)
	}
	if !s.credentials.Verify(req.CurrentPassword, current) {
		return nil, "", newAuthFailure(InvalidCredential, "current password mismatch for account %s", account.ID)
	}

	cred, err := s.credentials.Enroll(req.NewPassword)
	if err != nil {
		return nil, "", fmt.Errorf("failed to enroll credential: %w", err)
	}
	if err := s.accountRepo.UpdateCredential(ctx, account.ID, cred); err != nil {
		return nil, "", err
	}
	account.SetCredential(cred)

	token, err := s.tokenSvc.GenerateToken(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info().Str("accountId", account.ID).Msg("Password changed")
	return account, token, nil
}

// Delete removes the account. Tokens already issued for it then fail with UnknownSubject.
func (s *AccountService) Delete(ctx context.Context, accountID string) error {
	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		return err
	}
	log.Info().Str("accountId", accountID).Msg("Account deleted")
	return nil
}

// ensureAvailable reports a field specific conflict when email or username belongs to
// an account other than self. Empty values are skipped.
func (s *AccountService) ensureAvailable(ctx context.Context, email, username, self string) error {
	if email != "" {
		existing, err := s.accountRepo.GetAccountByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != self:
			return repository.ErrEmailInUse
		case err != nil && !errors.Is(err, repository.ErrAccountNotFound):
			return fmt.Errorf("failed to check email: %w", err)
		}
	}
	if username != "" {
		existing, err := s.accountRepo.GetAccountByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != self:
			return repository.ErrUsernameInUse
		case err != nil && !errors.Is(err, repository.ErrAccountNotFound):
			return fmt.Errorf("failed to check username: %w", err)
		}
	}
	return nil
}
