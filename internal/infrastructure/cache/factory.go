package cache

import (
	"context"
	"fmt"
	"time"

	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Coordination bundles the submission store and the record locker the
// fulfillment services share. Client is nil when running in-process.
type Coordination struct {
	Idempotency shared.IdempotencyStore
	Locker      apptrade.RecordLocker
	Client      *redis.Client
}

// Close releases the store and the Redis client
func (c *Coordination) Close() error {
	if err := c.Idempotency.Close(); err != nil {
		return err
	}
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// CoordinationFactory builds Coordination from configuration
type CoordinationFactory struct {
	redisConfig           config.RedisConfig
	lockOptions           LockOptions
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CoordinationFactoryOption is a functional option for configuring the factory
type CoordinationFactoryOption func(*CoordinationFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CoordinationFactoryOption {
	return func(f *CoordinationFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to in-process coordination
func WithInMemoryFallback(allow bool) CoordinationFactoryOption {
	return func(f *CoordinationFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCoordinationFactory creates a new factory
func NewCoordinationFactory(redisCfg config.RedisConfig, fulfillment config.FulfillmentConfig, opts ...CoordinationFactoryOption) *CoordinationFactory {
	f := &CoordinationFactory{
		redisConfig: redisCfg,
		lockOptions: LockOptions{
			TTL:           fulfillment.LockTTL,
			Retries:       fulfillment.LockRetries,
			RetryInterval: fulfillment.LockRetryInterval,
		},
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewRedisClient connects and pings Redis
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// InMemory returns process-local coordination
func (f *CoordinationFactory) InMemory() *Coordination {
	return &Coordination{
		Idempotency: NewInMemoryIdempotencyStore(),
		Locker:      NewMutexLocker(f.lockOptions),
	}
}

// Create uses Redis when configured and reachable, otherwise in-process
// coordination if fallback is allowed
func (f *CoordinationFactory) Create() (*Coordination, error) {
	if !f.redisConfig.Enabled() {
		f.logger.Info("Redis not configured, using in-process idempotency store and record locker")
		return f.InMemory(), nil
	}

	client, err := NewRedisClient(f.redisConfig)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for coordination but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-process coordination. "+
			"Replicas will not see each other's locks or submission keys.",
			zap.Error(err),
		)
		return f.InMemory(), nil
	}

	f.logger.Info("Using Redis idempotency store and record locker", zap.String("addr", f.redisConfig.Addr()))
	return &Coordination{
		Idempotency: NewRedisIdempotencyStore(client, DefaultSubmissionKeyPrefix),
		Locker:      NewRedisLocker(client, f.lockOptions, f.logger),
		Client:      client,
	}, nil
}
