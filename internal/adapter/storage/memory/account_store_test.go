package memory

import (
	"context"
	"sync"
	"testing"

	"economy-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKey() domain.AccountKey {
	return domain.AccountKey{CurrencyID: "dollar", OwnerID: uuid.New()}
}

func TestAccountStore_LoadOrCreate(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()
	key := newTestKey()

	rec, created, err := store.LoadOrCreate(ctx, key, decimal.NewFromInt(500), nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, rec.Balance.Equal(decimal.NewFromInt(500)))

	// Existing records keep their balance; the seed is ignored.
	require.NoError(t, store.Persist(ctx, key, decimal.NewFromInt(42), false))
	rec, created, err = store.LoadOrCreate(ctx, key, decimal.NewFromInt(500), nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, rec.Balance.Equal(decimal.NewFromInt(42)))
}

func TestAccountStore_ConcurrentLoadOrCreateSeedsOnce(t *testing.T) {
	store := NewAccountStore()
	key := newTestKey()

	const loaders = 50
	var wg sync.WaitGroup
	createds := make([]bool, loaders)
	wg.Add(loaders)
	for i := range loaders {
		go func() {
			defer wg.Done()
			_, created, err := store.LoadOrCreate(context.Background(), key, decimal.NewFromInt(500), nil)
			assert.NoError(t, err)
			createds[i] = created
		}()
	}
	wg.Wait()

	total := 0
	for _, created := range createds {
		if created {
			total++
		}
	}
	assert.Equal(t, 1, total, "exactly one loader seeds the record")
}

func TestAccountStore_ListDeletePurge(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	keyA, keyB := newTestKey(), newTestKey()
	gem := domain.AccountKey{CurrencyID: "gem", OwnerID: uuid.New()}
	require.NoError(t, store.Persist(ctx, keyA, decimal.NewFromInt(1), false))
	require.NoError(t, store.Persist(ctx, keyB, decimal.NewFromInt(2), true))
	require.NoError(t, store.Persist(ctx, gem, decimal.NewFromInt(3), false))

	records, err := store.ListAccounts(ctx, "dollar")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, store.Delete(ctx, keyA))
	exists, err := store.HasAccount(ctx, keyA)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Purge(ctx))
	records, err = store.ListAccounts(ctx, "gem")
	require.NoError(t, err)
	assert.Empty(t, records)
}
