package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"talentflow-core/internal/config"
	"talentflow-core/internal/logging"
	"talentflow-core/pkg/models"
)

// RedisClient wraps the Redis client with match-result caching. Match
// results are pure functions of their inputs, so entries are keyed by
// (candidate, job, inputs hash) and need no coordination or invalidation
// beyond the TTL.
type RedisClient struct {
	client *redis.Client
	config *config.Config
	logger logging.Logger
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(cfg *config.Config) *RedisClient {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Fallback to default configuration
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	opts.DB = cfg.Redis.DB

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	return &RedisClient{
		client: redis.NewClient(opts),
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// Ping tests the Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// GetMatchResult returns the cached match result for the key triple, or
// (nil, false) on a miss. Cache failures are logged and treated as misses so
// scoring always proceeds.
func (r *RedisClient) GetMatchResult(ctx context.Context, candidateID, jobID, inputsHash string) (*models.MatchResult, bool) {
	key := r.matchKey(candidateID, jobID, inputsHash)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("match cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var result models.MatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		r.logger.Warn("match cache entry corrupt, ignoring", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}
	return &result, true
}

// SetMatchResult stores a match result under the key triple with the
// configured TTL. Failures are logged and swallowed.
func (r *RedisClient) SetMatchResult(ctx context.Context, candidateID, jobID, inputsHash string, result *models.MatchResult) {
	key := r.matchKey(candidateID, jobID, inputsHash)

	data, err := json.Marshal(result)
	if err != nil {
		r.logger.Warn("failed to marshal match result for cache", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	if err := r.client.Set(ctx, key, data, r.config.Scoring.CacheTTL).Err(); err != nil {
		r.logger.Warn("match cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (r *RedisClient) matchKey(candidateID, jobID, inputsHash string) string {
	return fmt.Sprintf("match:%s:%s:%s", candidateID, jobID, inputsHash)
}
