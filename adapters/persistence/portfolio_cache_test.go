package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

func TestRedisPortfolioCache_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisPortfolioCache(db, time.Minute, logger.NewNop())
	id := uuid.New()

	mock.ExpectGet("portfolio:" + id.String()).SetVal(`{"fullName":"Ann"}`)

	doc, ok := cache.Get(context.Background(), id)
	require.True(t, ok)
	assert.Equal(t, portfolio.Document{"fullName": "Ann"}, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPortfolioCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisPortfolioCache(db, time.Minute, logger.NewNop())
	id := uuid.New()

	mock.ExpectGet("portfolio:" + id.String()).RedisNil()

	_, ok := cache.Get(context.Background(), id)
	assert.False(t, ok)
}

func TestRedisPortfolioCache_ErrorIsMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisPortfolioCache(db, time.Minute, logger.NewNop())
	id := uuid.New()

	mock.ExpectGet("portfolio:" + id.String()).SetErr(errors.New("connection reset"))

	_, ok := cache.Get(context.Background(), id)
	assert.False(t, ok)
}

func TestRedisPortfolioCache_CorruptEntryIsDropped(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisPortfolioCache(db, time.Minute, logger.NewNop())
	id := uuid.New()
	key := "portfolio:" + id.String()

	mock.ExpectGet(key).SetVal(`not json`)
	mock.ExpectDel(key).SetVal(1)

	_, ok := cache.Get(context.Background(), id)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPortfolioCache_SetAndInvalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisPortfolioCache(db, 10*time.Minute, logger.NewNop())
	id := uuid.New()
	key := "portfolio:" + id.String()

	mock.ExpectSet(key, `{"fullName":"Ann"}`, 10*time.Minute).SetVal("OK")
	mock.ExpectDel(key).SetVal(1)

	cache.Set(context.Background(), id, portfolio.Document{"fullName": "Ann"})
	cache.Invalidate(context.Background(), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPortfolioCache_NilClient(t *testing.T) {
	var typedNil *redis.Client
	for _, cache := range []*RedisPortfolioCache{
		NewRedisPortfolioCache(nil, time.Minute, logger.NewNop()),
		NewRedisPortfolioCache(typedNil, time.Minute, logger.NewNop()),
	} {
		id := uuid.New()
		cache.Set(context.Background(), id, portfolio.Document{"fullName": "Ann"})
		_, ok := cache.Get(context.Background(), id)
		assert.False(t, ok)
		cache.Invalidate(context.Background(), id)
	}
}
