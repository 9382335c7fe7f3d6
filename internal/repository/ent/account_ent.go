package ent_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/repository"
	"github.com/rs/zerolog/log"
)

// EntAccountRepository implements AccountRepository on top of ent's SQL driver and builder
type EntAccountRepository struct {
	drv *entsql.Driver
}

func NewEntAccountRepository(drv *entsql.Driver) repository.AccountRepository {
	return &EntAccountRepository{
		drv: drv,
	}
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *EntAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	query, args := builder().
		Insert(accountsTable).
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Username,
			account.Email,
			account.FullName,
			account.Avatar,
			account.Bio,
			account.Salt,
			account.Verifier,
			account.CreatedAt,
			account.UpdatedAt,
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	log.Debug().Str("accountId", account.ID).Msg("Account row inserted")
	return nil
}

func (r *EntAccountRepository) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getAccount(ctx, r.drv, columnID, id)
}

func (r *EntAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getAccount(ctx, r.drv, columnEmail, email)
}

func (r *EntAccountRepository) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getAccount(ctx, r.drv, columnUsername, username)
}

func (r *EntAccountRepository) getAccount(ctx context.Context, q dialect.ExecQuerier, column string, value string) (*models.Account, error) {
	query, args := builder().
		Select(accountColumns...).
		From(entsql.Table(accountsTable)).
		Where(entsql.EQ(column, value)).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := q.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read account row: %w", err)
		}
		return nil, repository.ErrAccountNotFound
	}

	var (
		account              models.Account
		createdAt, updatedAt time.Time
	)
	if err := rows.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.Avatar,
		&account.Bio,
		&account.Salt,
		&account.Verifier,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan account row: %w", err)
	}
	account.CreatedAt = createdAt.UTC()
	account.UpdatedAt = updatedAt.UTC()

	return &account, nil
}

// UpdateAccount applies the allow-listed fields inside a transaction and returns the stored row.
func (r *EntAccountRepository) UpdateAccount(ctx context.Context, id string, update models.AccountUpdate) (*models.Account, error) {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	account, err := r.getAccount(ctx, tx, columnID, id)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	update.Apply(account)
	account.UpdatedAt = time.Now().UTC()

	query, args := builder().
		Update(accountsTable).
		Set(columnUsername, account.Username).
		Set(columnEmail, account.Email).
		Set(columnFullName, account.FullName).
		Set(columnAvatar, account.Avatar).
		Set(columnBio, account.Bio).
		Set(columnUpdatedAt, account.UpdatedAt).
		Where(entsql.EQ(columnID, id)).
		Query()

	if err := tx.Exec(ctx, query, args, nil); err != nil {
		_ = tx.Rollback()
		if conflict := uniqueConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account update: %w", err)
	}
	return account, nil
}

func (r *EntAccountRepository) UpdateCredential(ctx context.Context, id string, cred models.Credential) error {
	saltHex, verifierHex := cred.Encode()
	query, args := builder().
		Update(accountsTable).
		Set(columnSalt, saltHex).
		Set(columnVerifier, verifierHex).
		Set(columnUpdatedAt, time.Now().UTC()).
		Where(entsql.EQ(columnID, id)).
		Query()

	return r.execOne(ctx, query, args)
}

func (r *EntAccountRepository) DeleteAccount(ctx context.Context, id string) error {
	query, args := builder().
		Delete(accountsTable).
		Where(entsql.EQ(columnID, id)).
		Query()

	return r.execOne(ctx, query, args)
}

// execOne runs a statement that must touch exactly the row of an existing account.
func (r *EntAccountRepository) execOne(ctx context.Context, query string, args []any) error {
	var res entsql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrAccountNotFound
	}
	return nil
}

// uniqueConflict maps a unique constraint violation to the repository error for that column.
func uniqueConflict(err error) error {
	if !sqlgraph.IsUniqueConstraintError(err) {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, accountsTable+"."+columnEmail):
		return repository.ErrEmailInUse
	case strings.Contains(msg, accountsTable+"."+columnUsername):
		return repository.ErrUsernameInUse
	default:
		return repository.ErrAccountExists
	}
}
