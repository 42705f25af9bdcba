package api

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsato/pulsato-server/internal/api/mocks"
)

func TestCached(t *testing.T) {
	t.Run("miss fetches and returns the value", func(t *testing.T) {
		rc := NewReportCache(&mocks.MockCacher{}, time.Minute, zap.NewNop())

		got, err := Cached(context.Background(), rc, "key", func(ctx context.Context) (int, error) {
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, got)
	})

	t.Run("miss writes the value back", func(t *testing.T) {
		var mu sync.Mutex
		var written []string
		cache := &mocks.MockCacher{
			SetFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
				mu.Lock()
				written = append(written, key)
				mu.Unlock()
				return nil
			},
		}
		rc := NewReportCache(cache, time.Minute, zap.NewNop())

		_, err := Cached(context.Background(), rc, "key", func(ctx context.Context) (int, error) {
			return 7, nil
		})
		require.NoError(t, err)

		// Write-back happens asynchronously.
		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(written) == 1 && written[0] == "key"
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("hit returns cached value without fetching", func(t *testing.T) {
		cache := &mocks.MockCacher{
			GetFunc: func(ctx context.Context, key string, dest any) error {
				ptr := dest.(*int)
				*ptr = 42
				return nil
			},
		}
		rc := NewReportCache(cache, time.Minute, zap.NewNop())

		got, err := Cached(context.Background(), rc, "key", func(ctx context.Context) (int, error) {
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("fetch error propagates", func(t *testing.T) {
		rc := NewReportCache(&mocks.MockCacher{}, time.Minute, zap.NewNop())

		boom := errors.New("boom")
		_, err := Cached(context.Background(), rc, "key", func(ctx context.Context) (int, error) {
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cache get failure degrades to fetch", func(t *testing.T) {
		cache := &mocks.MockCacher{
			GetFunc: func(ctx context.Context, key string, dest any) error {
				return errors.New("redis down")
			},
		}
		rc := NewReportCache(cache, time.Minute, zap.NewNop())

		got, err := Cached(context.Background(), rc, "key", func(ctx context.Context) (int, error) {
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, got)
	})
}

func TestJitterTTL(t *testing.T) {
	t.Run("non-positive ttl unchanged", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), jitterTTL(0))
	})

	t.Run("stays within jitter window", func(t *testing.T) {
		base := 5 * time.Minute
		for i := 0; i < 50; i++ {
			got := jitterTTL(base)
			assert.GreaterOrEqual(t, got, base-15*time.Second)
			assert.LessOrEqual(t, got, base+15*time.Second)
		}
	})
}
