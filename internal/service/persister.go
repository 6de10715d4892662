package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"economy-ledger/internal/core/domain"
	"economy-ledger/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type persistRequest struct {
	key     domain.AccountKey
	balance decimal.Decimal
	virtual bool
}

// persister flushes balance updates to the account store in the
// background. Requests for the same account always hash to the same shard
// and each shard is drained by a single worker, so writes for one account
// apply in the order mutations were made while different accounts flush in
// parallel.
type persister struct {
	store   ports.AccountStore
	log     zerolog.Logger
	shards  []chan persistRequest
	timeout time.Duration
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func newPersister(store ports.AccountStore, log zerolog.Logger, shardCount, buffer int, timeout time.Duration) *persister {
	p := &persister{
		store:   store,
		log:     log,
		shards:  make([]chan persistRequest, shardCount),
		timeout: timeout,
	}
	for i := range p.shards {
		ch := make(chan persistRequest, buffer)
		p.shards[i] = ch
		p.wg.Add(1)
		go p.run(ch)
	}
	return p
}

// enqueue schedules a write. Fire-and-forget: the caller returns before
// the write lands, and a storage failure is logged, not surfaced.
func (p *persister) enqueue(req persistRequest) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn().Str("account", req.key.String()).Msg("persister closed, dropping write")
		return
	}
	p.shards[p.shardFor(req.key)] <- req
}

func (p *persister) shardFor(key domain.AccountKey) int {
	h := fnv.New32a()
	h.Write([]byte(key.String())) //nolint:errcheck
	return int(h.Sum32() % uint32(len(p.shards)))
}

func (p *persister) run(ch <-chan persistRequest) {
	defer p.wg.Done()
	for req := range ch {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.store.Persist(ctx, req.key, req.balance, req.virtual); err != nil {
			p.log.Error().
				Err(err).
				Str("account", req.key.String()).
				Str("balance", req.balance.String()).
				Msg("async persist failed")
		}
		cancel()
	}
}

// close drains every shard and waits for in-flight writes to finish.
func (p *persister) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	for _, ch := range p.shards {
		close(ch)
	}
	p.wg.Wait()
}
