package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"economy-ledger/internal/core/domain"
	"economy-ledger/internal/core/ports"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	accountKeyPrefix = "account:"
	scanBatchSize    = 256
)

// accountValue is the JSON shape stored per account key. The balance is a
// decimal string so precision survives the round trip.
type accountValue struct {
	Balance string `json:"balance"`
	Virtual bool   `json:"virtual"`
}

// AccountStore implements ports.AccountStore on Redis. One key per
// account: "account:<currency>:<owner>" holding a JSON value.
type AccountStore struct {
	client *goredis.Client
}

// NewAccountStore creates a Redis-backed account store.
func NewAccountStore(client *goredis.Client) *AccountStore {
	return &AccountStore{client: client}
}

func storageKey(key domain.AccountKey) string {
	return accountKeyPrefix + key.CurrencyID + ":" + key.OwnerID.String()
}

// HasAccount reports whether a record exists for the key.
func (s *AccountStore) HasAccount(ctx context.Context, key domain.AccountKey) (bool, error) {
	n, err := s.client.Exists(ctx, storageKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// LoadOrCreate returns the record for the key, seeding it if absent.
// SetNX makes concurrent creates produce exactly one seed write.
func (s *AccountStore) LoadOrCreate(ctx context.Context, key domain.AccountKey, starting decimal.Decimal, seed ports.SeedModifier) (domain.AccountRecord, bool, error) {
	candidate := domain.AccountRecord{Key: key, Balance: starting}
	if seed != nil {
		seed(&candidate)
		candidate.Key = key
	}

	payload, err := json.Marshal(accountValue{Balance: candidate.Balance.String(), Virtual: candidate.Virtual})
	if err != nil {
		return domain.AccountRecord{}, false, fmt.Errorf("marshal account: %w", err)
	}

	created, err := s.client.SetNX(ctx, storageKey(key), payload, 0).Result()
	if err != nil {
		return domain.AccountRecord{}, false, fmt.Errorf("redis setnx: %w", err)
	}
	if created {
		return candidate, true, nil
	}

	rec, err := s.get(ctx, key)
	if err != nil {
		return domain.AccountRecord{}, false, err
	}
	return rec, false, nil
}

// Persist writes the balance and virtual flag for the key.
func (s *AccountStore) Persist(ctx context.Context, key domain.AccountKey, balance decimal.Decimal, virtual bool) error {
	payload, err := json.Marshal(accountValue{Balance: balance.String(), Virtual: virtual})
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	if err := s.client.Set(ctx, storageKey(key), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// ListAccounts returns every record for a currency.
func (s *AccountStore) ListAccounts(ctx context.Context, currencyID string) ([]domain.AccountRecord, error) {
	pattern := accountKeyPrefix + currencyID + ":*"

	var out []domain.AccountRecord
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		for _, raw := range keys {
			ownerRaw := raw[len(accountKeyPrefix)+len(currencyID)+1:]
			ownerID, err := uuid.Parse(ownerRaw)
			if err != nil {
				return nil, fmt.Errorf("parse owner %q: %w", ownerRaw, err)
			}
			rec, err := s.get(ctx, domain.AccountKey{CurrencyID: currencyID, OwnerID: ownerID})
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

// Delete removes the record for the key.
func (s *AccountStore) Delete(ctx context.Context, key domain.AccountKey) error {
	if err := s.client.Del(ctx, storageKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Purge removes every account record. Test/teardown only.
func (s *AccountStore) Purge(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, accountKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (s *AccountStore) get(ctx context.Context, key domain.AccountKey) (domain.AccountRecord, error) {
	raw, err := s.client.Get(ctx, storageKey(key)).Bytes()
	if err != nil {
		return domain.AccountRecord{}, fmt.Errorf("redis get: %w", err)
	}
	var val accountValue
	if err := json.Unmarshal(raw, &val); err != nil {
		return domain.AccountRecord{}, fmt.Errorf("unmarshal account: %w", err)
	}
	balance, err := decimal.NewFromString(val.Balance)
	if err != nil {
		return domain.AccountRecord{}, fmt.Errorf("parse balance %q: %w", val.Balance, err)
	}
	return domain.AccountRecord{Key: key, Balance: balance, Virtual: val.Virtual}, nil
}
