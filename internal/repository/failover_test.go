package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCache struct {
	calls int
}

func (f *failingCache) Get(ctx context.Context, key string) ([]byte, error) {
	f.calls++
	return nil, errors.New("primary down")
}

func (f *failingCache) Set(ctx context.Context, key string, value []byte) error {
	f.calls++
	return errors.New("primary down")
}

func (f *failingCache) Invalidate(ctx context.Context, prefix string) error {
	f.calls++
	return errors.New("primary down")
}

func TestFailoverAvailabilityCache(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("FallsBackOnGet", func(t *testing.T) {
		primary := &failingCache{}
		fallback := NewMemoryAvailabilityCache(time.Hour)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)

		require.NoError(t, fallback.Set(ctx, "key", []byte("from-fallback")))

		got, err := cache.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte("from-fallback"), got)
	})

	t.Run("SkipsPrimaryWhileDown", func(t *testing.T) {
		primary := &failingCache{}
		fallback := NewMemoryAvailabilityCache(time.Hour)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)

		_, _ = cache.Get(ctx, "a")
		callsAfterFirst := primary.calls

		_, _ = cache.Get(ctx, "b")
		_, _ = cache.Get(ctx, "c")
		assert.Equal(t, callsAfterFirst, primary.calls, "primary should not be retried inside the cooldown window")
	})

	t.Run("SetLandsInFallback", func(t *testing.T) {
		primary := &failingCache{}
		fallback := NewMemoryAvailabilityCache(time.Hour)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)

		require.NoError(t, cache.Set(ctx, "key", []byte("v")))

		got, err := fallback.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("InvalidateAlwaysReachesFallback", func(t *testing.T) {
		primary := &failingCache{}
		fallback := NewMemoryAvailabilityCache(time.Hour)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)

		require.NoError(t, fallback.Set(ctx, "availability:p1:2020-02:month", []byte("stale")))

		_ = cache.Invalidate(ctx, "availability:p1:2020-02:")

		got, err := fallback.Get(ctx, "availability:p1:2020-02:month")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("HealthyPrimaryServes", func(t *testing.T) {
		primary := NewMemoryAvailabilityCache(time.Hour)
		fallback := NewMemoryAvailabilityCache(time.Hour)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)

		require.NoError(t, cache.Set(ctx, "key", []byte("v")))

		got, err := primary.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)

		got, err = fallback.Get(ctx, "key")
		require.NoError(t, err)
		assert.Nil(t, got, "healthy primary should not spill writes into the fallback")
	})
}
