package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"economy-ledger/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// TransactionChannel is the pub/sub channel transaction events go out on.
const TransactionChannel = "ledger:transactions"

// TransactionPublisher implements ports.TransactionPublisher over Redis
// pub/sub. Subscribers receive each event as a JSON document.
type TransactionPublisher struct {
	client *goredis.Client
}

// NewTransactionPublisher creates a Redis-backed transaction publisher.
func NewTransactionPublisher(client *goredis.Client) *TransactionPublisher {
	return &TransactionPublisher{client: client}
}

// PublishTransaction sends the event to the transaction channel.
func (p *TransactionPublisher) PublishTransaction(ctx context.Context, event ports.TransactionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transaction event: %w", err)
	}
	if err := p.client.Publish(ctx, TransactionChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
