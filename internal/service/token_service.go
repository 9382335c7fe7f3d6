package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/config"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

var _ TokenGenerator = (*TokenService)(nil)

var ErrSigningKeyTooShort = fmt.Errorf("signing key must be at least %d bytes", config.MinSigningKeyLength)

// TokenService mints and verifies HS256 session tokens. Tokens are not stored;
// rotating the signing key invalidates every outstanding token.
type TokenService struct {
	jwtSecret []byte
	issuer    string
	ttl       time.Duration
	accounts  repository.AccountRepository
	now       func() time.Time
}

// NewTokenService creates a TokenService. accounts resolves token subjects in VerifyToken.
func NewTokenService(cfg config.TokenConfig, accounts repository.AccountRepository) (*TokenService, error) {
	if len(cfg.Secret) < config.MinSigningKeyLength {
		return nil, ErrSigningKeyTooShort
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("token ttl must not be negative, got %s", cfg.TTL)
	}
	return &TokenService{
		jwtSecret: []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		ttl:       cfg.TTL,
		accounts:  accounts,
		now:       time.Now,
	}, nil
}

// GenerateToken creates a signed token asserting subject.
func (s *TokenService) GenerateToken(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must not be empty")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:  subject,
		Issuer:   s.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken checks the signature, algorithm, issuer and expiry and returns the subject.
// Every failure is an InvalidToken AuthFailure.
func (s *TokenService) ValidateToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return "", newAuthFailure(InvalidToken, "failed to parse token: %v", err)
	}
	if !token.Valid {
		return "", newAuthFailure(InvalidToken, "token is not valid")
	}
	if claims.Subject == "" {
		return "", newAuthFailure(InvalidToken, "subject claim is missing or empty")
	}
	return claims.Subject, nil
}

// VerifyToken validates the token and resolves its subject to an existing account id.
// A deleted account yields UnknownSubject; storage errors are returned unchanged.
func (s *TokenService) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	subject, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	account, err := s.accounts.GetAccountByID(ctx, subject)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return "", newAuthFailure(UnknownSubject, "no account for subject %q", subject)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return account.ID, nil
}
