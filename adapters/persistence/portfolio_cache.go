package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const portfolioKeyPrefix = "portfolio:"

// RedisPortfolioCache is a read-through cache in front of the portfolio
// column. Every failure is logged and reported as a miss; Postgres stays the
// source of truth.
type RedisPortfolioCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

var _ portfolio.Cache = (*RedisPortfolioCache)(nil)

// NewRedisPortfolioCache accepts a nil client, in which case every lookup misses.
func NewRedisPortfolioCache(client redis.Cmdable, ttl time.Duration, log logger.Logger) *RedisPortfolioCache {
	return &RedisPortfolioCache{client: client, ttl: ttl, logger: log}
}

func portfolioKey(userID uuid.UUID) string {
	return portfolioKeyPrefix + userID.String()
}

func (c *RedisPortfolioCache) enabled() bool {
	if c == nil || c.client == nil {
		return false
	}
	// a typed nil *redis.Client stored in the interface
	if rc, ok := c.client.(*redis.Client); ok && rc == nil {
		return false
	}
	return true
}

func (c *RedisPortfolioCache) Get(ctx context.Context, userID uuid.UUID) (portfolio.Document, bool) {
	if !c.enabled() {
		return nil, false
	}

	raw, err := c.client.Get(ctx, portfolioKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Portfolio cache read failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return nil, false
	}

	doc := portfolio.Document{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil || doc == nil {
		c.logger.Warn("Dropping unreadable cached portfolio", zap.String("user_id", userID.String()))
		c.Invalidate(ctx, userID)
		return nil, false
	}
	return doc, true
}

func (c *RedisPortfolioCache) Set(ctx context.Context, userID uuid.UUID, doc portfolio.Document) {
	if !c.enabled() {
		return
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		c.logger.Warn("Portfolio cache encode failed", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, portfolioKey(userID), string(payload), c.ttl).Err(); err != nil {
		c.logger.Warn("Portfolio cache write failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (c *RedisPortfolioCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, portfolioKey(userID)).Err(); err != nil {
		c.logger.Warn("Portfolio cache invalidate failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
