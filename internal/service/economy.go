package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"economy-ledger/internal/core/domain"
	"economy-ledger/internal/core/ports"
	"economy-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	persistShards  = 8
	persistBuffer  = 256
	persistTimeout = 5 * time.Second
)

// Economy is the façade coordinating the currency provider, the
// restriction policy, and the account store. It is the only component
// other subsystems talk to.
//
// Loading an account may block on storage I/O; mutations on the returned
// handle are synchronous and in-memory. Construct one Economy and pass it
// to every consumer.
type Economy struct {
	provider  *CurrencyProvider
	policy    RestrictionPolicy
	store     ports.AccountStore
	publisher ports.TransactionPublisher // nil = events disabled
	log       zerolog.Logger
	persister *persister
	group     singleflight.Group

	mu       sync.RWMutex
	accounts map[domain.AccountKey]*Account
}

// NewEconomy creates the ledger façade. publisher may be nil.
func NewEconomy(
	provider *CurrencyProvider,
	policy RestrictionPolicy,
	store ports.AccountStore,
	publisher ports.TransactionPublisher,
	log zerolog.Logger,
) *Economy {
	return &Economy{
		provider:  provider,
		policy:    policy,
		store:     store,
		publisher: publisher,
		log:       log,
		persister: newPersister(store, log, persistShards, persistBuffer, persistTimeout),
		accounts:  make(map[domain.AccountKey]*Account),
	}
}

// Currencies returns the currency provider.
func (e *Economy) Currencies() *CurrencyProvider {
	return e.provider
}

// Policy returns the active restriction policy.
func (e *Economy) Policy() RestrictionPolicy {
	return e.policy
}

// HasAccount reports whether an account exists for the pair without
// creating one.
func (e *Economy) HasAccount(ctx context.Context, currency domain.Currency, owner uuid.UUID) (bool, error) {
	if _, ok := e.provider.Currency(currency.ID); !ok {
		return false, apperror.ErrUnknownCurrency(currency.ID)
	}
	key := domain.AccountKey{CurrencyID: currency.ID, OwnerID: owner}
	if e.cached(key) != nil {
		return true, nil
	}
	exists, err := e.store.HasAccount(ctx, key)
	if err != nil {
		return false, apperror.ErrStorage(err)
	}
	return exists, nil
}

// Account loads the account for the pair, creating it seeded with the
// currency's starting balance on first access.
func (e *Economy) Account(ctx context.Context, currency domain.Currency, owner uuid.UUID) (*Account, error) {
	return e.loadAccount(ctx, currency, owner, nil)
}

// AccountWith is Account with a seed modifier applied at creation time
// only; it is ignored when the account already exists.
func (e *Economy) AccountWith(ctx context.Context, currency domain.Currency, owner uuid.UUID, seed ports.SeedModifier) (*Account, error) {
	return e.loadAccount(ctx, currency, owner, seed)
}

// VirtualAccount loads the virtual account named name, creating it marked
// virtual on first access. The owner id is derived from the name.
func (e *Economy) VirtualAccount(ctx context.Context, currency domain.Currency, name string) (*Account, error) {
	return e.loadAccount(ctx, currency, domain.VirtualOwnerID(name), func(rec *domain.AccountRecord) {
		rec.Virtual = true
	})
}

func (e *Economy) loadAccount(ctx context.Context, currency domain.Currency, owner uuid.UUID, seed ports.SeedModifier) (*Account, error) {
	if _, ok := e.provider.Currency(currency.ID); !ok {
		return nil, apperror.ErrUnknownCurrency(currency.ID)
	}
	key := domain.AccountKey{CurrencyID: currency.ID, OwnerID: owner}
	if a := e.cached(key); a != nil {
		return a, nil
	}

	// Concurrent first accesses for the same unseen key collapse into a
	// single load-or-create, so at most one seed write happens.
	v, err, _ := e.group.Do(key.String(), func() (any, error) {
		if a := e.cached(key); a != nil {
			return a, nil
		}

		starting := currency.Round(currency.StartingBalance)
		rec, created, err := e.store.LoadOrCreate(ctx, key, starting, seed)
		if err != nil {
			return nil, apperror.ErrStorage(err)
		}

		a := &Account{
			key:      key,
			currency: currency,
			virtual:  rec.Virtual,
			balance:  currency.Round(rec.Balance),
			eco:      e,
		}
		e.mu.Lock()
		e.accounts[key] = a
		e.mu.Unlock()

		if created {
			e.log.Debug().
				Str("account", key.String()).
				Str("starting_balance", starting.String()).
				Bool("virtual", a.virtual).
				Msg("account created")
		}
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

// Accounts returns a snapshot of every account in a currency. Balances of
// loaded accounts come from the in-memory handles, which are authoritative
// over not-yet-flushed store records.
func (e *Economy) Accounts(ctx context.Context, currency domain.Currency) ([]domain.AccountRecord, error) {
	if _, ok := e.provider.Currency(currency.ID); !ok {
		return nil, apperror.ErrUnknownCurrency(currency.ID)
	}
	records, err := e.store.ListAccounts(ctx, currency.ID)
	if err != nil {
		return nil, apperror.ErrStorage(err)
	}
	for i, rec := range records {
		if a := e.cached(rec.Key); a != nil {
			records[i] = a.Record()
		}
	}
	return records, nil
}

// AllAccounts returns a snapshot of every account, grouped by currency id.
func (e *Economy) AllAccounts(ctx context.Context) (map[string][]domain.AccountRecord, error) {
	out := make(map[string][]domain.AccountRecord, len(e.provider.Registered()))
	for _, cur := range e.provider.Registered() {
		records, err := e.Accounts(ctx, cur)
		if err != nil {
			return nil, err
		}
		out[cur.ID] = records
	}
	return out, nil
}

// Leaderboard returns accounts of a currency sorted descending by balance,
// optionally excluding virtual accounts, truncated to the policy's
// maximum. The ordering is recomputed on every call.
func (e *Economy) Leaderboard(ctx context.Context, currency domain.Currency, includeVirtual bool) ([]domain.AccountRecord, error) {
	records, err := e.Accounts(ctx, currency)
	if err != nil {
		return nil, err
	}

	if !includeVirtual {
		filtered := records[:0]
		for _, rec := range records {
			if !rec.Virtual {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Balance.GreaterThan(records[j].Balance)
	})

	if limit := e.policy.MaxLeaderboardEntries; limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// DeleteAccount removes the account from the store and evicts its handle.
func (e *Economy) DeleteAccount(ctx context.Context, currency domain.Currency, owner uuid.UUID) error {
	if _, ok := e.provider.Currency(currency.ID); !ok {
		return apperror.ErrUnknownCurrency(currency.ID)
	}
	key := domain.AccountKey{CurrencyID: currency.ID, OwnerID: owner}

	e.mu.Lock()
	delete(e.accounts, key)
	e.mu.Unlock()

	if err := e.store.Delete(ctx, key); err != nil {
		return apperror.ErrStorage(err)
	}
	return nil
}

// Close drains pending balance writes. The economy must not be used after
// Close returns.
func (e *Economy) Close() {
	e.persister.close()
}

func (e *Economy) cached(key domain.AccountKey) *Account {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.accounts[key]
}

// publish emits a transaction event. Best-effort: failures are logged and
// never affect the mutation outcome.
func (e *Economy) publish(txn *domain.Transaction) {
	if e.publisher == nil || txn == nil {
		return
	}
	event := ports.TransactionEvent{Transaction: txn, OccurredAt: time.Now().UTC()}
	if err := e.publisher.PublishTransaction(context.Background(), event); err != nil {
		e.log.Warn().
			Err(err).
			Str("account", txn.Account.String()).
			Str("result", string(txn.Result)).
			Msg("transaction event publish failed")
	}
}
