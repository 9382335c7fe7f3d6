package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/config"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/mocks"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = mocks.TestJWTSecret

func newTestTokenService(t *testing.T, cfg config.TokenConfig) (*TokenService, *mocks.MockAccountRepository) {
	t.Helper()
	repo := new(mocks.MockAccountRepository)
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}
	svc, err := NewTokenService(cfg, repo)
	require.NoError(t, err)
	return svc, repo
}

func flipLastChar(token string) string {
	last := token[len(token)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	return token[:len(token)-1] + string(replacement)
}

func TestNewTokenService(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, _ := newTestTokenService(t, config.TokenConfig{Issuer: "iss"})
		assert.Equal(t, []byte(testSecret), svc.jwtSecret)
		assert.Equal(t, "iss", svc.issuer)
	})

	t.Run("ShortKey", func(t *testing.T) {
		_, err := NewTokenService(config.TokenConfig{Secret: "too-short"}, nil)
		assert.ErrorIs(t, err, ErrSigningKeyTooShort)
	})

	t.Run("NegativeTTL", func(t *testing.T) {
		_, err := NewTokenService(config.TokenConfig{Secret: testSecret, TTL: -time.Second}, nil)
		assert.Error(t, err)
	})
}

func TestTokenService_GenerateToken(t *testing.T) {
	t.Run("ClaimsWithoutExpiry", func(t *testing.T) {
		svc, _ := newTestTokenService(t, config.TokenConfig{Issuer: "instaclone-auth"})

		tokenString, err := svc.GenerateToken("account-123")
		require.NoError(t, err)
		require.NotEmpty(t, tokenString)

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, "HS256", token.Method.Alg())

		assert.Equal(t, "account-123", claims["sub"])
		assert.Equal(t, "instaclone-auth", claims["iss"])
		_, hasExp := claims["exp"]
		assert.False(t, hasExp, "no exp claim when TTL is zero")

		iatClaim, ok := claims["iat"].(float64)
		require.True(t, ok, "IssuedAt claim (iat) should be a number")
		assert.InDelta(t, time.Now().Unix(), int64(iatClaim), 5)
	})

	t.Run("ExpiryFromTTL", func(t *testing.T) {
		svc, _ := newTestTokenService(t, config.TokenConfig{TTL: time.Hour})

		tokenString, err := svc.GenerateToken("account-123")
		require.NoError(t, err)

		claims := &jwt.RegisteredClaims{}
		_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		require.NotNil(t, claims.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
		assert.Empty(t, claims.Issuer)
	})

	t.Run("EmptySubject", func(t *testing.T) {
		svc, _ := newTestTokenService(t, config.TokenConfig{})
		_, err := svc.GenerateToken("")
		assert.Error(t, err)
	})
}

func TestTokenService_ValidateToken(t *testing.T) {
	svc, _ := newTestTokenService(t, config.TokenConfig{Issuer: "instaclone-auth"})

	t.Run("RoundTrip", func(t *testing.T) {
		tokenString, err := svc.GenerateToken("alice")
		require.NoError(t, err)

		subject, err := svc.ValidateToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})

	t.Run("FlippedLastCharacter", func(t *testing.T) {
		tokenString, err := svc.GenerateToken("alice")
		require.NoError(t, err)

		_, err = svc.ValidateToken(flipLastChar(tokenString))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("AnyMutatedCharacter", func(t *testing.T) {
		tokenString, err := svc.GenerateToken("alice")
		require.NoError(t, err)

		for i := 0; i < len(tokenString); i++ {
			if tokenString[i] == '.' {
				continue
			}
			replacement := byte('x')
			if tokenString[i] == 'x' {
				replacement = 'y'
			}
			mutated := tokenString[:i] + string(replacement) + tokenString[i+1:]
			_, err := svc.ValidateToken(mutated)
			assert.ErrorIs(t, err, ErrInvalidToken, "mutation at position %d was accepted", i)
		}
	})

	t.Run("DifferentKey", func(t *testing.T) {
		other, _ := newTestTokenService(t, config.TokenConfig{
			Secret: strings.Repeat("k", config.MinSigningKeyLength),
			Issuer: "instaclone-auth",
		})
		tokenString, err := other.GenerateToken("alice")
		require.NoError(t, err)

		_, err = svc.ValidateToken(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		other, _ := newTestTokenService(t, config.TokenConfig{Issuer: "someone-else"})
		tokenString, err := other.GenerateToken("alice")
		require.NoError(t, err)

		_, err = svc.ValidateToken(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("UnexpectedAlgorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "alice", Issuer: "instaclone-auth"})
		tokenString, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.ValidateToken(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice", Issuer: "instaclone-auth"})
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "instaclone-auth"})
		tokenString, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.ValidateToken(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, input := range []string{"", "not-a-token", "a.b.c", "...."} {
			_, err := svc.ValidateToken(input)
			assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		expiring, _ := newTestTokenService(t, config.TokenConfig{TTL: time.Minute})
		tokenString, err := expiring.GenerateToken("alice")
		require.NoError(t, err)

		expiring.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, err = expiring.ValidateToken(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenService_VerifyToken(t *testing.T) {
	ctx := context.Background()

	t.Run("ResolvesSubject", func(t *testing.T) {
		svc, repo := newTestTokenService(t, config.TokenConfig{})
		repo.On("GetAccountByID", mock.Anything, "alice").Return(&models.Account{ID: "alice"}, nil).Once()

		tokenString, err := svc.GenerateToken("alice")
		require.NoError(t, err)

		accountID, err := svc.VerifyToken(ctx, tokenString)
		require.NoError(t, err)
		assert.Equal(t, "alice", accountID)
		repo.AssertExpectations(t)
	})

	t.Run("DeletedSubject", func(t *testing.T) {
		svc, repo := newTestTokenService(t, config.TokenConfig{})
		repo.On("GetAccountByID", mock.Anything, "alice").Return(nil, repository.ErrAccountNotFound).Once()

		tokenString, err := svc.GenerateToken("alice")
		require.NoError(t, err)

		_, err = svc.VerifyToken(ctx, tokenString)
		assert.ErrorIs(t, err, ErrUnknownSubject)
		assert.NotErrorIs(t, err, ErrInvalidToken)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidTokenSkipsLookup", func(t *testing.T) {
		svc, repo := newTestTokenService(t, config.TokenConfig{})
		tokenString, err := svc.GenerateToken("alice")
		require.NoError(t, err)

		_, err = svc.VerifyToken(ctx, flipLastChar(tokenString))
		assert.ErrorIs(t, err, ErrInvalidToken)
		repo.AssertNotCalled(t, "GetAccountByID", mock.Anything, mock.Anything)
	})

	t.Run("StorageFailureIsNotAuthFailure", func(t *testing.T) {
		svc, repo := newTestTokenService(t, config.TokenConfig{})
		storageErr := errors.New("connection refused")
		repo.On("GetAccountByID", mock.Anything, "alice").Return(nil, storageErr).Once()

		tokenString, err := svc.GenerateToken("alice")
		require.NoError(t, err)

		_, err = svc.VerifyToken(ctx, tokenString)
		assert.ErrorIs(t, err, storageErr)
		var failure *AuthFailure
		assert.False(t, errors.As(err, &failure))
	})
}
