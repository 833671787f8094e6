package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LockOptions controls how long a writer holds a record and how hard a
// competing writer tries before giving up.
type LockOptions struct {
	TTL           time.Duration
	Retries       int
	RetryInterval time.Duration
}

const lockKeyPrefix = "mobilia:lock:"

// RedisLocker serializes writers across replicas with a Redis lease
type RedisLocker struct {
	client *redislock.Client
	opts   LockOptions
	logger *zap.Logger
}

// NewRedisLocker creates a locker on an existing client
func NewRedisLocker(client redis.UniversalClient, opts LockOptions, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client: redislock.New(client),
		opts:   opts,
		logger: logger,
	}
}

// Lock obtains the lease for key, retrying at a fixed interval
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, lockKeyPrefix+key, l.opts.TTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.opts.RetryInterval), l.opts.Retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.NewDomainError(shared.CodeLockNotObtained,
			fmt.Sprintf("Record %s is being modified, retry shortly", key))
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %q: %w", key, err)
	}

	return func() {
		// The request context may already be cancelled when the release runs
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release record lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// MutexLocker serializes writers inside one process. Waiters give up after
// the configured retries, like RedisLocker.
type MutexLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
	opts  LockOptions
}

// lockSlot is dropped from the map once neither a holder nor a waiter refers to it
type lockSlot struct {
	ch   chan struct{}
	refs int
}

// NewMutexLocker creates an in-process locker
func NewMutexLocker(opts LockOptions) *MutexLocker {
	return &MutexLocker{
		slots: make(map[string]*lockSlot),
		opts:  opts,
	}
}

func (l *MutexLocker) acquire(key string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *MutexLocker) drop(key string, s *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// Lock takes the slot for key or fails with LOCK_NOT_OBTAINED
func (l *MutexLocker) Lock(ctx context.Context, key string) (func(), error) {
	s := l.acquire(key)
	var once sync.Once
	release := func() {
		once.Do(func() {
			<-s.ch
			l.drop(key, s)
		})
	}

	for attempt := 0; ; attempt++ {
		select {
		case s.ch <- struct{}{}:
			return release, nil
		default:
		}
		if attempt >= l.opts.Retries {
			l.drop(key, s)
			return nil, shared.NewDomainError(shared.CodeLockNotObtained,
				fmt.Sprintf("Record %s is being modified, retry shortly", key))
		}

		timer := time.NewTimer(l.opts.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.drop(key, s)
			return nil, ctx.Err()
		case s.ch <- struct{}{}:
			timer.Stop()
			return release, nil
		case <-timer.C:
		}
	}
}

var (
	_ apptrade.RecordLocker = (*RedisLocker)(nil)
	_ apptrade.RecordLocker = (*MutexLocker)(nil)
)
