package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/meteora-quoter/internal/constants"
	"github.com/aman-zulfiqar/meteora-quoter/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrCacheMiss = errors.New("cache miss")

// RedisCache caches quote responses and keeps the recent snapshot feed.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// RedisConfig holds configuration for the Redis cache
type RedisConfig struct {
	Addr   string
	DB     int
	Logger *logrus.Logger
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisCacheFromClient(client, cfg.Logger), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}
}

// QuoteKey builds the cache key for one endpoint and its encoded query.
func QuoteKey(endpoint, encodedQuery string) string {
	return constants.RedisKeyQuotePrefix + endpoint + ":" + encodedQuery
}

func (r *RedisCache) GetQuote(ctx context.Context, key string) (json.RawMessage, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return json.RawMessage(val), nil
}

func (r *RedisCache) SetQuote(ctx context.Context, key string, body json.RawMessage, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, key, []byte(body), ttl).Err(); err != nil {
		return fmt.Errorf("set quote: %w", err)
	}
	return nil
}

// SaveSnapshots pushes snapshots onto the capped recent list and publishes
// each on the snapshot channel.
func (r *RedisCache) SaveSnapshots(ctx context.Context, snaps []models.PoolSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for i := range snaps {
		data, err := json.Marshal(&snaps[i])
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		pipe.LPush(ctx, constants.RedisKeyRecentSnapshots, data)
		pipe.Publish(ctx, constants.PubSubChannelSnapshots, data)
	}
	pipe.LTrim(ctx, constants.RedisKeyRecentSnapshots, 0, constants.MaxRecentSnapshots-1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save snapshots: %w", err)
	}

	r.logger.WithField("count", len(snaps)).Debug("snapshots cached")
	return nil
}

func (r *RedisCache) GetRecentSnapshots(ctx context.Context, limit int64) ([]*models.PoolSnapshot, error) {
	if limit <= 0 {
		limit = constants.MaxRecentSnapshots
	}
	vals, err := r.client.LRange(ctx, constants.RedisKeyRecentSnapshots, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	out := make([]*models.PoolSnapshot, 0, len(vals))
	for _, v := range vals {
		var s models.PoolSnapshot
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			r.logger.WithError(err).Warn("skipping corrupt snapshot entry")
			continue
		}
		out = append(out, &s)
	}
	return out, nil
}

// SubscribeSnapshots streams snapshots published on the snapshot channel
// until ctx is cancelled.
func (r *RedisCache) SubscribeSnapshots(ctx context.Context) (<-chan *models.PoolSnapshot, error) {
	pubsub := r.client.Subscribe(ctx, constants.PubSubChannelSnapshots)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe snapshots: %w", err)
	}

	out := make(chan *models.PoolSnapshot)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var s models.PoolSnapshot
				if err := json.Unmarshal([]byte(msg.Payload), &s); err != nil {
					r.logger.WithError(err).Warn("error unmarshaling snapshot")
					continue
				}
				select {
				case out <- &s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
