package ent_repo

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	accountsTable = "accounts"

	columnID        = "id"
	columnUsername  = "username"
	columnEmail     = "email"
	columnFullName  = "full_name"
	columnAvatar    = "avatar"
	columnBio       = "bio"
	columnSalt      = "salt"
	columnVerifier  = "verifier"
	columnCreatedAt = "created_at"
	columnUpdatedAt = "updated_at"
)

// accountColumns is the select order used by scanAccount.
var accountColumns = []string{
	columnID,
	columnUsername,
	columnEmail,
	columnFullName,
	columnAvatar,
	columnBio,
	columnSalt,
	columnVerifier,
	columnCreatedAt,
	columnUpdatedAt,
}

var (
	// AccountsColumns holds the columns for the "accounts" table.
	AccountsColumns = []*schema.Column{
		{Name: columnID, Type: field.TypeString, Unique: true},
		{Name: columnUsername, Type: field.TypeString, Unique: true},
		{Name: columnEmail, Type: field.TypeString, Unique: true},
		{Name: columnFullName, Type: field.TypeString, Default: ""},
		{Name: columnAvatar, Type: field.TypeString, Default: "default.png"},
		{Name: columnBio, Type: field.TypeString, Default: ""},
		{Name: columnSalt, Type: field.TypeString},
		{Name: columnVerifier, Type: field.TypeString},
		{Name: columnCreatedAt, Type: field.TypeTime},
		{Name: columnUpdatedAt, Type: field.TypeTime},
	}
	// AccountsTable holds the schema information for the "accounts" table.
	AccountsTable = &schema.Table{
		Name:       accountsTable,
		Columns:    AccountsColumns,
		PrimaryKey: []*schema.Column{AccountsColumns[0]},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		AccountsTable,
	}
)

// Open opens a SQLite database through ent's SQL driver.
// The DSN must enable foreign keys (_fk=1) or migration is refused.
func Open(dsn string) (*entsql.Driver, error) {
	drv, err := entsql.Open(dialect.SQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to sqlite: %w", err)
	}
	return drv, nil
}

// Migrate creates or upgrades the account tables.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	migrate, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("failed creating schema migrator: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("failed creating schema resources: %w", err)
	}
	return nil
}
