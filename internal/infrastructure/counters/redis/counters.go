// Package redis stores contribution counters in Redis hashes.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// KeyPrefix namespaces counter hashes.
const KeyPrefix = "catalog:counters:"

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Counters implements ports.Counters with one hash per user and HINCRBY.
type Counters struct {
	client *redis.Client
	log    *zap.Logger
}

// NewCounters connects to Redis and verifies the connection.
func NewCounters(cfg Config, log *zap.Logger) (*Counters, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return &Counters{
		client: client,
		log:    log.With(zap.String("module", "redis")),
	}, nil
}

// Key returns the hash key for a user.
func Key(userID string) string {
	return KeyPrefix + userID
}

// Increment atomically adds one to a user's counter.
func (c *Counters) Increment(ctx context.Context, userID string, counter entities.Counter) error {
	if err := c.client.HIncrBy(ctx, Key(userID), string(counter), 1).Err(); err != nil {
		return fmt.Errorf("incrementing %s for %s: %w", counter, userID, err)
	}
	return nil
}

// Get returns all counters for a user. Missing counters are zero.
func (c *Counters) Get(ctx context.Context, userID string) (map[entities.Counter]int64, error) {
	raw, err := c.client.HGetAll(ctx, Key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading counters for %s: %w", userID, err)
	}
	return parseCounters(raw, c.log), nil
}

// Close closes the Redis client connection.
func (c *Counters) Close() error {
	if err := c.client.Close(); err != nil {
		c.log.Error("failed to close Redis client", zap.Error(err))
		return err
	}
	return nil
}

func parseCounters(raw map[string]string, log *zap.Logger) map[entities.Counter]int64 {
	counts := make(map[entities.Counter]int64, len(entities.AllCounters))
	for _, name := range entities.AllCounters {
		counts[name] = 0
	}
	for field, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			log.Warn("ignoring malformed counter", zap.String("counter", field), zap.String("value", value))
			continue
		}
		counts[entities.Counter(field)] = n
	}
	return counts
}
