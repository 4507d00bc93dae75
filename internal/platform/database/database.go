// Package database opens the SQL backends the key store runs on and hides the
// differences between them behind Dialect.
//
// Three drivers are registered: "postgres" (lib/pq), "pgx" (jackc/pgx stdlib)
// and "sqlite" (modernc, pure Go). Postgres and pgx share a dialect; they
// differ only in how a unique violation is reported.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Open connects to dsn with the named driver, verifies the connection and
// applies pool settings suited to the backend.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if _, err := DialectFor(driver); err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one writer serialises every transaction, which is what makes the
		// count-and-reserve insert atomic on SQLite
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// Dialect captures what differs between backends.
type Dialect interface {
	Name() string
	// Rebind rewrites ? placeholders into the backend's syntax.
	Rebind(query string) string
	// ForUpdate is the row-lock suffix for SELECT, empty where unsupported.
	ForUpdate() string
	// LockAccount serialises writers on one account for the rest of tx.
	LockAccount(ctx context.Context, tx *sql.Tx, branch, account int) error
	// TimeArg encodes t as a query argument that sorts and compares correctly.
	TimeArg(t time.Time) any
	IsUniqueViolation(err error) bool
	schema() []string
}

// DialectFor returns the dialect for a registered driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverPostgres, DriverPgx:
		return postgresDialect{driver: driver}, nil
	case DriverSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

type postgresDialect struct {
	driver string
}

func (d postgresDialect) Name() string { return d.driver }

func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (postgresDialect) ForUpdate() string { return " FOR UPDATE" }

func (postgresDialect) LockAccount(ctx context.Context, tx *sql.Tx, branch, account int) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, AccountLockKey(branch, account))
	return err
}

func (postgresDialect) TimeArg(t time.Time) any { return t.UTC() }

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

func (postgresDialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS pix_keys (
			id               UUID PRIMARY KEY,
			key_type         VARCHAR(9)  NOT NULL,
			key_value        VARCHAR(77) NOT NULL,
			account_type     VARCHAR(10) NOT NULL,
			branch           INTEGER     NOT NULL,
			account_number   INTEGER     NOT NULL,
			owner_first_name VARCHAR(30) NOT NULL,
			owner_first_name_folded TEXT NOT NULL DEFAULT '',
			owner_last_name  VARCHAR(45) NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL,
			deactivated_at   TIMESTAMPTZ NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS pix_keys_key_value_idx ON pix_keys (key_value)`,
		`CREATE INDEX IF NOT EXISTS pix_keys_account_idx ON pix_keys (branch, account_number)`,
		`CREATE INDEX IF NOT EXISTS pix_keys_created_at_idx ON pix_keys (created_at, id)`,
		`CREATE INDEX IF NOT EXISTS pix_keys_deactivated_at_idx ON pix_keys (deactivated_at) WHERE deactivated_at IS NOT NULL`,
	}
}

// AccountLockKey packs (branch, account) into the advisory lock key space.
// Account numbers have at most eight digits, so the packing is injective.
func AccountLockKey(branch, account int) int64 {
	return int64(branch)*100_000_000 + int64(account)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return DriverSQLite }

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) ForUpdate() string { return "" }

func (sqliteDialect) LockAccount(context.Context, *sql.Tx, int, int) error { return nil }

// sqliteTimeLayout is fixed width so lexical order matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

func (sqliteDialect) TimeArg(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) }

func (sqliteDialect) IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (sqliteDialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS pix_keys (
			id               TEXT    PRIMARY KEY,
			key_type         TEXT    NOT NULL,
			key_value        TEXT    NOT NULL,
			account_type     TEXT    NOT NULL,
			branch           INTEGER NOT NULL,
			account_number   INTEGER NOT NULL,
			owner_first_name TEXT    NOT NULL,
			owner_first_name_folded TEXT NOT NULL DEFAULT '',
			owner_last_name  TEXT    NOT NULL DEFAULT '',
			created_at       TEXT    NOT NULL,
			deactivated_at   TEXT    NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS pix_keys_key_value_idx ON pix_keys (key_value)`,
		`CREATE INDEX IF NOT EXISTS pix_keys_account_idx ON pix_keys (branch, account_number)`,
		`CREATE INDEX IF NOT EXISTS pix_keys_created_at_idx ON pix_keys (created_at, id)`,
	}
}

// Migrate creates the registry schema if it is missing. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	d, err := DialectFor(driver)
	if err != nil {
		return err
	}
	for _, stmt := range d.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", d.Name(), err)
		}
	}
	return nil
}
