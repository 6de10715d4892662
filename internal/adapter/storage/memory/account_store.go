// Package memory provides an in-process AccountStore. It backs tests and
// single-node deployments that do not need durability.
package memory

import (
	"context"
	"sync"

	"economy-ledger/internal/core/domain"
	"economy-ledger/internal/core/ports"

	"github.com/shopspring/decimal"
)

// AccountStore implements ports.AccountStore over a guarded map.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[domain.AccountKey]domain.AccountRecord
}

// NewAccountStore creates an empty in-memory store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[domain.AccountKey]domain.AccountRecord)}
}

// HasAccount reports whether a record exists for the key.
func (s *AccountStore) HasAccount(_ context.Context, key domain.AccountKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[key]
	return ok, nil
}

// LoadOrCreate returns the record for the key, seeding it if absent.
func (s *AccountStore) LoadOrCreate(_ context.Context, key domain.AccountKey, starting decimal.Decimal, seed ports.SeedModifier) (domain.AccountRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.accounts[key]; ok {
		return rec, false, nil
	}

	rec := domain.AccountRecord{Key: key, Balance: starting}
	if seed != nil {
		seed(&rec)
		rec.Key = key
	}
	s.accounts[key] = rec
	return rec, true, nil
}

// Persist writes the balance and virtual flag for the key.
func (s *AccountStore) Persist(_ context.Context, key domain.AccountKey, balance decimal.Decimal, virtual bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[key] = domain.AccountRecord{Key: key, Balance: balance, Virtual: virtual}
	return nil
}

// ListAccounts returns every record for a currency.
func (s *AccountStore) ListAccounts(_ context.Context, currencyID string) ([]domain.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.AccountRecord
	for key, rec := range s.accounts {
		if key.CurrencyID == currencyID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Delete removes the record for the key.
func (s *AccountStore) Delete(_ context.Context, key domain.AccountKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, key)
	return nil
}

// Purge removes every record.
func (s *AccountStore) Purge(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[domain.AccountKey]domain.AccountRecord)
	return nil
}
