package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/attestly/attest-backend/internal/config"
	"github.com/attestly/attest-backend/internal/model"
)

// ResultQueue pushes denormalized result rows onto the Redis persistence
// queue consumed by the result worker.
type ResultQueue struct {
	rdb *redis.Client
}

// NewResultQueue creates a new ResultQueue.
func NewResultQueue(rdb *redis.Client) *ResultQueue {
	return &ResultQueue{rdb: rdb}
}

// Enqueue serializes the result and appends it to the queue.
func (q *ResultQueue) Enqueue(ctx context.Context, res *model.SessionResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, payload).Err()
}
