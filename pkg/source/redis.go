package source

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient defines the Redis commands used by Redis.
// *redis.Client, *redis.ClusterClient and *redis.Ring satisfy it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisConfig holds the connection settings used by ConnectRedis.
type RedisConfig struct {
	ConnectionURL  string        `env:"SECURECONFIG_REDIS_URL" envDefault:"redis://localhost:6379/0"` // redis://:password@localhost:6379/0
	RetryAttempts  int           `env:"SECURECONFIG_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"SECURECONFIG_REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"SECURECONFIG_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// ConnectRedis connects to Redis, pinging up to cfg.RetryAttempts times with
// cfg.RetryInterval between attempts.
//
// Returns ErrFailedToParseRedisConnString if the URL is invalid and
// ErrRedisNotReady joined with the last ping error if no attempt succeeds.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	var lastErr error
	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, lastErr, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrRedisNotReady, lastErr)
}

// Redis is a Source backed by one Redis string key.
type Redis struct {
	client RedisClient
	key    string
	ttl    time.Duration
}

// RedisOption configures a Redis source.
type RedisOption func(*Redis)

// WithTTL sets an expiration on every write. Zero keeps the key forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// NewRedis returns a Source for key.
func NewRedis(client RedisClient, key string, opts ...RedisOption) (*Redis, error) {
	if client == nil || key == "" {
		return nil, ErrInvalidConfig
	}

	r := &Redis{client: client, key: key}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// String implements fmt.Stringer.
func (r *Redis) String() string {
	return "redis://" + r.key
}

// Read returns the value stored under the key.
func (r *Redis) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, err
	}
	return data, nil
}

// Write stores data under the key.
func (r *Redis) Write(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}
