package tracestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/maze"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const traceKeyFmt = "%s:trace:%s"

// RedisStore publishes traces as JSON documents in Redis with an optional TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore initializes a RedisStore. A non-positive ttlSeconds keeps traces forever.
func NewRedisStore(client *redis.Client, prefix string, ttlSeconds int) *RedisStore {
	ttl := time.Duration(0)
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Save stores the trace under its ID.
func (r *RedisStore) Save(ctx context.Context, trace *maze.Trace) error {
	payload, err := json.Marshal(trace)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(trace.ID()), payload, r.ttl).Err()
}

// ByID retrieves a trace by its ID.
func (r *RedisStore) ByID(ctx context.Context, id uuid.UUID) (*maze.Trace, error) {
	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", i.ErrTraceNotFound, id)
		}
		return nil, err
	}

	var trace maze.Trace
	if err := json.Unmarshal(payload, &trace); err != nil {
		return nil, fmt.Errorf("decoding trace %s: %w", id, err)
	}
	return &trace, nil
}

func (r *RedisStore) key(id uuid.UUID) string {
	return fmt.Sprintf(traceKeyFmt, r.prefix, id)
}
