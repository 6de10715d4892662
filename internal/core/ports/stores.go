package ports

import (
	"context"
	"time"

	"economy-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// SeedModifier adjusts a freshly created account record before its first
// write, e.g. marking it virtual. It is only applied at creation time;
// stores must ignore it for accounts that already exist.
type SeedModifier func(record *domain.AccountRecord)

// AccountStore is the durable backing for accounts, keyed by
// (currency, owner). Implementations may block on I/O; all methods take a
// context and surface storage failures as errors.
type AccountStore interface {
	// HasAccount reports whether a record exists for the key.
	HasAccount(ctx context.Context, key domain.AccountKey) (bool, error)

	// LoadOrCreate returns the record for the key, creating and seeding it
	// with the starting balance if absent. Creation is atomic: concurrent
	// calls for the same unseen key produce exactly one seed write.
	// The returned bool reports whether the record was created by this call.
	LoadOrCreate(ctx context.Context, key domain.AccountKey, starting decimal.Decimal, seed SeedModifier) (domain.AccountRecord, bool, error)

	// Persist writes the current balance and virtual flag for the key.
	Persist(ctx context.Context, key domain.AccountKey, balance decimal.Decimal, virtual bool) error

	// ListAccounts returns every record for a currency.
	ListAccounts(ctx context.Context, currencyID string) ([]domain.AccountRecord, error)

	// Delete removes the record for the key. Deleting a missing record is
	// not an error.
	Delete(ctx context.Context, key domain.AccountKey) error

	// Purge removes every record. Test/teardown only.
	Purge(ctx context.Context) error
}

// TransactionEvent is published after each successful or failed mutation
// for observability and audit hooks.
type TransactionEvent struct {
	Transaction *domain.Transaction `json:"transaction"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// TransactionPublisher delivers transaction events to interested parties.
// Publishing is best-effort; a failed publish never affects the mutation
// outcome.
type TransactionPublisher interface {
	PublishTransaction(ctx context.Context, event TransactionEvent) error
}
