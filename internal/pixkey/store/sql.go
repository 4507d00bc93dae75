package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pixkeys/internal/pixkey/models"
	"pixkeys/internal/platform/database"
	id "pixkeys/pkg/domain"
	"pixkeys/pkg/platform/sentinel"
	txcontext "pixkeys/pkg/platform/tx"
)

const keyColumns = `id, key_type, key_value, account_type, branch, account_number, owner_first_name, owner_last_name, created_at, deactivated_at`

// SQLStore persists keys in the pix_keys table on Postgres or SQLite.
//
// Uniqueness of key_value is a unique index. The per-account cap is enforced
// in Create by serialising writers on the account (advisory transaction lock
// on Postgres, the single connection on SQLite) before counting.
type SQLStore struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQL(db *sql.DB, dialect database.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// conn returns the transaction carried by ctx, if any, else the pool.
func (s *SQLStore) conn(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *SQLStore) Create(ctx context.Context, key *models.PixKey, policy models.LimitPolicy) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.dialect.LockAccount(ctx, tx, key.Account.Branch, key.Account.Number); err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		var exists int
		err := tx.QueryRowContext(ctx, s.dialect.Rebind(`SELECT 1 FROM pix_keys WHERE key_value = ?`), key.KeyValue).Scan(&exists)
		switch {
		case err == nil:
			return sentinel.ErrAlreadyUsed
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check key value: %w", err)
		}

		count, err := s.countOn(ctx, tx, key.Account, policy.CountInactive)
		if err != nil {
			return err
		}
		if !policy.Allows(count) {
			return sentinel.ErrLimitReached
		}

		_, err = tx.ExecContext(ctx, s.dialect.Rebind(`INSERT INTO pix_keys (`+keyColumns+`, owner_first_name_folded) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			key.ID.String(),
			string(key.KeyType),
			key.KeyValue,
			string(key.AccountType),
			key.Account.Branch,
			key.Account.Number,
			key.Owner.FirstName,
			key.Owner.LastName,
			s.dialect.TimeArg(key.CreatedAt),
			s.nullableTime(key.DeactivatedAt),
			models.FoldName(key.Owner.FirstName),
		)
		if err != nil {
			if s.dialect.IsUniqueViolation(err) {
				return sentinel.ErrAlreadyUsed
			}
			return fmt.Errorf("insert pix key: %w", err)
		}
		return nil
	})
}

// Save overwrites the mutable columns of an existing key.
func (s *SQLStore) Save(ctx context.Context, key *models.PixKey) error {
	res, err := s.conn(ctx).ExecContext(ctx, s.dialect.Rebind(`UPDATE pix_keys
		SET account_type = ?, branch = ?, account_number = ?, owner_first_name = ?, owner_first_name_folded = ?, owner_last_name = ?, deactivated_at = ?
		WHERE id = ?`),
		string(key.AccountType),
		key.Account.Branch,
		key.Account.Number,
		key.Owner.FirstName,
		models.FoldName(key.Owner.FirstName),
		key.Owner.LastName,
		s.nullableTime(key.DeactivatedAt),
		key.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update pix key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update pix key: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Execute loads the row with a row lock, runs validate and mutate, and saves
// the result in the same transaction. A key moved to another account takes
// that account's lock and is counted against policy before the save, the same
// serialisation Create uses.
func (s *SQLStore) Execute(ctx context.Context, keyID id.PixKeyID, policy models.LimitPolicy, validate func(*models.PixKey) error, mutate func(*models.PixKey)) (*models.PixKey, error) {
	var result *models.PixKey
	err := txcontext.Run(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, s.dialect.Rebind(`SELECT `+keyColumns+` FROM pix_keys WHERE id = ?`+s.dialect.ForUpdate()), keyID.String())
		key, err := scanKey(row)
		if err != nil {
			return err
		}
		if err := validate(key); err != nil {
			return err
		}
		from := key.Account
		mutate(key)
		if key.Account != from {
			if err := s.dialect.LockAccount(ctx, tx, key.Account.Branch, key.Account.Number); err != nil {
				return fmt.Errorf("lock account: %w", err)
			}
			count, err := s.countOn(ctx, tx, key.Account, policy.CountInactive)
			if err != nil {
				return err
			}
			if !policy.Allows(count) {
				return sentinel.ErrLimitReached
			}
		}
		if err := s.Save(ctx, key); err != nil {
			return err
		}
		result = key
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLStore) DeleteByID(ctx context.Context, keyID id.PixKeyID) error {
	res, err := s.conn(ctx).ExecContext(ctx, s.dialect.Rebind(`DELETE FROM pix_keys WHERE id = ?`), keyID.String())
	if err != nil {
		return fmt.Errorf("delete pix key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pix key: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *SQLStore) FindByID(ctx context.Context, keyID id.PixKeyID) (*models.PixKey, error) {
	row := s.conn(ctx).QueryRowContext(ctx, s.dialect.Rebind(`SELECT `+keyColumns+` FROM pix_keys WHERE id = ?`), keyID.String())
	return scanKey(row)
}

func (s *SQLStore) FindByKeyValue(ctx context.Context, value string) (*models.PixKey, error) {
	row := s.conn(ctx).QueryRowContext(ctx, s.dialect.Rebind(`SELECT `+keyColumns+` FROM pix_keys WHERE key_value = ?`), value)
	return scanKey(row)
}

func (s *SQLStore) FindByType(ctx context.Context, keyType models.KeyType) ([]*models.PixKey, error) {
	return s.FindByFilters(ctx, models.Filter{KeyType: &keyType})
}

func (s *SQLStore) FindByAccount(ctx context.Context, account models.Account) ([]*models.PixKey, error) {
	return s.FindByFilters(ctx, models.Filter{Branch: &account.Branch, Account: &account.Number})
}

func (s *SQLStore) FindByOwnerName(ctx context.Context, name string) ([]*models.PixKey, error) {
	return s.FindByFilters(ctx, models.Filter{OwnerName: &name})
}

func (s *SQLStore) FindByCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.PixKey, error) {
	return s.FindByFilters(ctx, models.Filter{CreatedAfter: &start, CreatedBefore: &end})
}

func (s *SQLStore) FindByDeactivatedBetween(ctx context.Context, start, end time.Time) ([]*models.PixKey, error) {
	return s.FindByFilters(ctx, models.Filter{DeactivatedAfter: &start, DeactivatedBefore: &end})
}

// FindByFilters translates each present predicate into a WHERE clause joined
// with AND, ordered by creation time then id.
func (s *SQLStore) FindByFilters(ctx context.Context, f models.Filter) ([]*models.PixKey, error) {
	where, args := s.whereClause(f)
	query := `SELECT ` + keyColumns + ` FROM pix_keys`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.conn(ctx).QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query pix keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*models.PixKey, 0)
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pix keys: %w", err)
	}
	return out, nil
}

func (s *SQLStore) whereClause(f models.Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		clauses = append(clauses, clause)
		args = append(args, arg)
	}
	if f.KeyType != nil {
		add(`key_type = ?`, string(*f.KeyType))
	}
	if f.KeyValue != nil {
		add(`key_value = ?`, *f.KeyValue)
	}
	if f.Branch != nil {
		add(`branch = ?`, *f.Branch)
	}
	if f.Account != nil {
		add(`account_number = ?`, *f.Account)
	}
	if f.CreatedAfter != nil {
		add(`created_at >= ?`, s.dialect.TimeArg(*f.CreatedAfter))
	}
	if f.CreatedBefore != nil {
		add(`created_at < ?`, s.dialect.TimeArg(*f.CreatedBefore))
	}
	if f.DeactivatedAfter != nil {
		add(`deactivated_at >= ?`, s.dialect.TimeArg(*f.DeactivatedAfter))
	}
	if f.DeactivatedBefore != nil {
		add(`deactivated_at < ?`, s.dialect.TimeArg(*f.DeactivatedBefore))
	}
	if f.OwnerName != nil {
		add(`owner_first_name_folded LIKE ? ESCAPE '\'`, "%"+escapeLike(models.FoldName(*f.OwnerName))+"%")
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *SQLStore) CountActiveByAccount(ctx context.Context, account models.Account) (int, error) {
	return s.countOn(ctx, s.conn(ctx), account, false)
}

func (s *SQLStore) CountByAccount(ctx context.Context, account models.Account) (int, error) {
	return s.countOn(ctx, s.conn(ctx), account, true)
}

func (s *SQLStore) countOn(ctx context.Context, q queryer, account models.Account, includeInactive bool) (int, error) {
	query := `SELECT COUNT(*) FROM pix_keys WHERE branch = ? AND account_number = ?`
	if !includeInactive {
		query += ` AND deactivated_at IS NULL`
	}
	var n int
	if err := q.QueryRowContext(ctx, s.dialect.Rebind(query), account.Branch, account.Number).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pix keys: %w", err)
	}
	return n, nil
}

func (s *SQLStore) nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return s.dialect.TimeArg(*t)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKey(row rowScanner) (*models.PixKey, error) {
	var (
		rawID       string
		keyType     string
		accountType string
		key         models.PixKey
		createdAt   database.Time
		deactivated database.Time
	)
	err := row.Scan(
		&rawID,
		&keyType,
		&key.KeyValue,
		&accountType,
		&key.Account.Branch,
		&key.Account.Number,
		&key.Owner.FirstName,
		&key.Owner.LastName,
		&createdAt,
		&deactivated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan pix key: %w", err)
	}
	keyID, err := id.ParsePixKeyID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan pix key id %q: %w", rawID, err)
	}
	key.ID = keyID
	key.KeyType = models.KeyType(keyType)
	key.AccountType = models.AccountType(accountType)
	key.CreatedAt = createdAt.Time
	key.DeactivatedAt = deactivated.Ptr()
	return &key, nil
}
