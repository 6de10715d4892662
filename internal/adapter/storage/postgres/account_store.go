package postgres

import (
	"context"
	"fmt"

	"economy-ledger/internal/core/domain"
	"economy-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountStore implements ports.AccountStore on PostgreSQL. Balances are
// stored as decimal strings so precision survives the round trip
// untouched.
//
// Schema:
//
//	CREATE TABLE accounts (
//	    currency_id TEXT        NOT NULL,
//	    owner_id    UUID        NOT NULL,
//	    balance     TEXT        NOT NULL,
//	    virtual     BOOLEAN     NOT NULL DEFAULT FALSE,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (currency_id, owner_id)
//	);
type AccountStore struct {
	pool Pool
}

// NewAccountStore creates a PostgreSQL-backed account store.
func NewAccountStore(pool Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

// HasAccount reports whether a record exists for the key.
func (s *AccountStore) HasAccount(ctx context.Context, key domain.AccountKey) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE currency_id = $1 AND owner_id = $2)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, key.CurrencyID, key.OwnerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("has account: %w", err)
	}
	return exists, nil
}

// LoadOrCreate returns the record for the key, inserting the seed record
// if absent. The conflict target makes concurrent creates produce exactly
// one seed write.
func (s *AccountStore) LoadOrCreate(ctx context.Context, key domain.AccountKey, starting decimal.Decimal, seed ports.SeedModifier) (domain.AccountRecord, bool, error) {
	candidate := domain.AccountRecord{Key: key, Balance: starting}
	if seed != nil {
		seed(&candidate)
		candidate.Key = key
	}

	insert := `INSERT INTO accounts (currency_id, owner_id, balance, virtual)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (currency_id, owner_id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, insert,
		key.CurrencyID, key.OwnerID, candidate.Balance.String(), candidate.Virtual,
	)
	if err != nil {
		return domain.AccountRecord{}, false, fmt.Errorf("seed account: %w", err)
	}
	created := tag.RowsAffected() == 1

	query := `SELECT balance, virtual FROM accounts WHERE currency_id = $1 AND owner_id = $2`

	var balanceStr string
	rec := domain.AccountRecord{Key: key}
	if err := s.pool.QueryRow(ctx, query, key.CurrencyID, key.OwnerID).Scan(&balanceStr, &rec.Virtual); err != nil {
		return domain.AccountRecord{}, false, fmt.Errorf("load account: %w", err)
	}
	rec.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return domain.AccountRecord{}, false, fmt.Errorf("parse balance %q: %w", balanceStr, err)
	}
	return rec, created, nil
}

// Persist writes the balance and virtual flag for the key.
func (s *AccountStore) Persist(ctx context.Context, key domain.AccountKey, balance decimal.Decimal, virtual bool) error {
	query := `INSERT INTO accounts (currency_id, owner_id, balance, virtual)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (currency_id, owner_id)
		DO UPDATE SET balance = EXCLUDED.balance, virtual = EXCLUDED.virtual, updated_at = now()`

	if _, err := s.pool.Exec(ctx, query, key.CurrencyID, key.OwnerID, balance.String(), virtual); err != nil {
		return fmt.Errorf("persist account: %w", err)
	}
	return nil
}

// ListAccounts returns every record for a currency.
func (s *AccountStore) ListAccounts(ctx context.Context, currencyID string) ([]domain.AccountRecord, error) {
	query := `SELECT owner_id, balance, virtual FROM accounts WHERE currency_id = $1`

	rows, err := s.pool.Query(ctx, query, currencyID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.AccountRecord
	for rows.Next() {
		rec := domain.AccountRecord{Key: domain.AccountKey{CurrencyID: currencyID}}
		var balanceStr string
		if err := rows.Scan(&rec.Key.OwnerID, &balanceStr, &rec.Virtual); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		rec.Balance, err = decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("parse balance %q: %w", balanceStr, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

// Delete removes the record for the key. Missing records are not an error.
func (s *AccountStore) Delete(ctx context.Context, key domain.AccountKey) error {
	query := `DELETE FROM accounts WHERE currency_id = $1 AND owner_id = $2`

	if _, err := s.pool.Exec(ctx, query, key.CurrencyID, key.OwnerID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// Purge removes every record. Test/teardown only.
func (s *AccountStore) Purge(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("purge accounts: %w", err)
	}
	return nil
}
