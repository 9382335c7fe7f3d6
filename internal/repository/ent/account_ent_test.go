package ent_repo_test

import (
	"context"
	"testing"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/repository"
	ent_repo "github.com/SimpnicServerTeam/instaclone-auth/internal/repository/ent"
	"github.com/google/uuid"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepo sets up a fresh in-memory SQLite database for every test.
func newTestRepo(t *testing.T) (context.Context, *entsql.Driver, repository.AccountRepository) {
	t.Helper()
	ctx := context.Background()

	drv, err := ent_repo.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared&_fk=1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = drv.Close() })

	require.NoError(t, ent_repo.Migrate(ctx, drv))
	return ctx, drv, ent_repo.NewEntAccountRepository(drv)
}

func newTestAccount(username, email string) *models.Account {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Account{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FullName:  "Test User",
		Avatar:    models.DefaultAvatar,
		Salt:      "00112233445566778899aabbccddeeff",
		Verifier:  "deadbeef",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func strPtr(s string) *string { return &s }

func TestEntAccountRepository(t *testing.T) {
	t.Run("CreateAndGetAccount", func(t *testing.T) {
		ctx, _, repo := newTestRepo(t)
		account := newTestAccount("alice01", "alice@example.com")

		require.NoError(t, repo.CreateAccount(ctx, account))

		got, err := repo.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, account.Username, got.Username)
		assert.Equal(t, account.Email, got.Email)
		assert.Equal(t, account.FullName, got.FullName)
		assert.Equal(t, models.DefaultAvatar, got.Avatar)
		assert.Equal(t, account.Salt, got.Salt)
		assert.Equal(t, account.Verifier, got.Verifier)
		assert.True(t, account.CreatedAt.Equal(got.CreatedAt))

		got, err = repo.GetAccountByEmail(ctx, account.Email)
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)

		got, err = repo.GetAccountByUsername(ctx, account.Username)
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
	})

	t.Run("GetAccountNotFound", func(t *testing.T) {
		ctx, _, repo := newTestRepo(t)

		_, err := repo.GetAccountByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, repository.ErrAccountNotFound)
		_, err = repo.GetAccountByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrAccountNotFound)
		_, err = repo.GetAccountByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, repository.ErrAccountNotFound)
	})

	t.Run("CreateAccountConflicts", func(t *testing.T) {
		ctx, _, repo := newTestRepo(t)
		require.NoError(t, repo.CreateAccount(ctx, newTestAccount("alice01", "alice@example.com")))

		err := repo.CreateAccount(ctx, newTestAccount("another1", "alice@example.com"))
		assert.ErrorIs(t, err, repository.ErrEmailInUse)
		assert.ErrorIs(t, err, repository.ErrAccountExists)

		err = repo.CreateAccount(ctx, newTestAccount("alice01", "other@example.com"))
		assert.ErrorIs(t, err, repository.ErrUsernameInUse)
	})

	t.Run("UpdateAccount", func(t *testing.T) {
		ctx, _, repo := newTestRepo(t)
		account := newTestAccount("alice01", "alice@example.com")
		require.NoError(t, repo.CreateAccount(ctx, account))

		updated, err := repo.UpdateAccount(ctx, account.ID, models.AccountUpdate{
			Username: strPtr("alice99"),
			Bio:      strPtr("photographer"),
		})
		require.NoError(t, err)
		assert.Equal(t, "alice99", updated.Username)
		assert.Equal(t, "photographer", updated.Bio)
		assert.Equal(t, account.Email, updated.Email)
		assert.Equal(t, account.Salt, updated.Salt, "profile updates must not touch the credential")

		got, err := repo.GetAccountByUsername(ctx, "alice99")
		require.NoError(t, err)
		assert.Equal(t, "photographer", got.Bio)

		_, err = repo.GetAccountByUsername(ctx, "alice01")
		assert.ErrorIs(t, err, repository.ErrAccountNotFound)
	})

	t.Run("UpdateAccountConflict", func(t *testing.T) {
		ctx, _, repo := newTestRepo(t)
		alice := newTestAccount("alice01", "alice@example.com")
		bob := newTestAccount("bobby02", "bob@example.com")
		require.NoError(t, repo.CreateAccount(ctx, alice))
		require.NoError(t, repo.CreateAccount(ctx, bob))

		_, err := repo.UpdateAccount(ctx, alice.ID, models.AccountUpdate{Email: strPtr("bob@example.com")})
		assert.ErrorIs(t, err, repository.ErrEmailInUse)

		_, err = repo.UpdateAccount(ctx, alice.ID, models.AccountUpdate{Username: strPtr("bobby02")})
		assert.ErrorIs(t, err, repository.ErrUsernameInUse)

		got, err := repo.GetAccountByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("UpdateAccountNotFound", func(t *testing.T) {
		ctx, _, repo := newTestRepo(t)
		_, err := repo.UpdateAccount(ctx, uuid.NewString(), models.AccountUpdate{Bio: strPtr("x")})
		assert.ErrorIs(t, err, repository.ErrAccountNotFound)
	})

	t.Run("UpdateCredential", func(t *testing.T) {
		ctx, _, repo := newTestRepo(t)
		account := newTestAccount("alice01", "alice@example.com")
		require.NoError(t, repo.CreateAccount(ctx, account))

		cred := models.Credential{Salt: []byte{0x01, 0x02}, Verifier: []byte{0x0a, 0x0b}}
		require.NoError(t, repo.UpdateCredential(ctx, account.ID, cred))

		got, err := repo.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		stored, err := got.Credential()
		require.NoError(t, err)
		assert.Equal(t, cred, stored)

		assert.ErrorIs(t, repo.UpdateCredential(ctx, uuid.NewString(), cred), repository.ErrAccountNotFound)
	})

	t.Run("DeleteAccount", func(t *testing.T) {
		ctx, _, repo := newTestRepo(t)
		account := newTestAccount("alice01", "alice@example.com")
		require.NoError(t, repo.CreateAccount(ctx, account))

		require.NoError(t, repo.DeleteAccount(ctx, account.ID))
		_, err := repo.GetAccountByID(ctx, account.ID)
		assert.ErrorIs(t, err, repository.ErrAccountNotFound)

		assert.ErrorIs(t, repo.DeleteAccount(ctx, account.ID), repository.ErrAccountNotFound)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx, drv, _ := newTestRepo(t)
	assert.NoError(t, ent_repo.Migrate(ctx, drv))
}
