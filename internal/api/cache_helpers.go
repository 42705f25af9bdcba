package api

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	refreshFetchTimeout = 15 * time.Second
	cacheSetTimeout     = 5 * time.Second
)

// ReportCache wraps a Cacher with singleflight collapse on miss and a
// refresh-ahead pass on hit, so popular report keys stay warm without
// stampeding the database.
type ReportCache struct {
	cache  Cacher
	sf     singleflight.Group
	ttl    time.Duration
	logger *zap.Logger
}

func NewReportCache(cache Cacher, ttl time.Duration, logger *zap.Logger) *ReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportCache{
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("report-cache"),
	}
}

// jitterTTL spreads expiry by up to ±15s to avoid mass expiration.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Intn(30)-15)*time.Second
}

// Cached resolves key through the cache: a hit is returned immediately and
// refreshed in the background, a miss collapses concurrent callers into one
// fetch whose result is written back asynchronously.
func Cached[T any](ctx context.Context, rc *ReportCache, key string, fn FetchFunc[T]) (T, error) {
	var zero T

	var hit T
	err := rc.cache.Get(ctx, key, &hit)
	switch {
	case err == nil:
		rc.logger.Debug("cache hit", zap.String("key", key))
		refreshAhead(rc, key, fn)
		return hit, nil

	case errors.Is(err, redis.Nil):
		rc.logger.Debug("cache miss", zap.String("key", key))

	default:
		rc.logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := rc.sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			rc.logger.Error("fetch failed", zap.String("key", key), zap.Error(err))
			return nil, err
		}
		go writeBack(rc, key, value)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		rc.logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}

	if shared {
		rc.logger.Debug("singleflight shared result", zap.String("key", key))
	}

	return value, nil
}

func refreshAhead[T any](rc *ReportCache, key string, fn FetchFunc[T]) {
	go func() {
		// Small random delay staggers refreshes triggered by a burst of hits.
		time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)

		_, _, _ = rc.sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				rc.logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}

			writeBack(rc, key, value)
			return value, nil
		})
	}()
}

func writeBack[T any](rc *ReportCache, key string, value T) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheSetTimeout)
	defer cancel()

	ttl := jitterTTL(rc.ttl)
	if err := rc.cache.Set(ctx, key, value, ttl); err != nil {
		rc.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	} else {
		rc.logger.Debug("cache updated", zap.String("key", key), zap.Duration("ttl", ttl))
	}
}
