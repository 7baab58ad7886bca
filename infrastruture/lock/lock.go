// Package lock grants exclusive ownership of the playback cursor to a single driver.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// LocalLock is an OwnerLock for a single process.
type LocalLock struct {
	mu sync.Mutex
}

// NewLocalLock creates an unheld lock.
func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

// Acquire takes the lock without waiting.
func (l *LocalLock) Acquire(context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, i.ErrPlaybackOwned
	}
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}

// RedisLock is an OwnerLock shared by every process connected to the same Redis.
// Ownership is held through a redsync mutex that is extended while the driver runs.
type RedisLock struct {
	locker *redsync.Redsync
	name   string
	expiry time.Duration
}

// NewRedisLock initializes a RedisLock on the key name.
func NewRedisLock(client *redis.Client, name string, expiry time.Duration) *RedisLock {
	pool := goredis.NewPool(client)
	return &RedisLock{
		locker: redsync.New(pool),
		name:   name,
		expiry: expiry,
	}
}

// Acquire takes the lock with a single attempt and keeps extending it until released.
func (r *RedisLock) Acquire(ctx context.Context) (func(), error) {
	mutex := r.locker.NewMutex(r.name, redsync.WithExpiry(r.expiry), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, i.ErrPlaybackOwned
		}
		return nil, fmt.Errorf("acquiring %s: %w", r.name, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(r.expiry / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_, _ = mutex.ExtendContext(context.Background())
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			_, _ = mutex.Unlock()
		})
	}, nil
}
