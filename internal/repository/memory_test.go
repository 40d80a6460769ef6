package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAvailabilityCache(t *testing.T) {
	cache := NewMemoryAvailabilityCache(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "availability:p1:2020-02:month", []byte("value")))

		got, err := cache.Get(ctx, "availability:p1:2020-02:month")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)
	})

	t.Run("GetMiss", func(t *testing.T) {
		got, err := cache.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("InvalidateByPrefix", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "availability:p2:2020-02:month", []byte("m")))
		require.NoError(t, cache.Set(ctx, "availability:p2:2020-02:day:10", []byte("d")))
		require.NoError(t, cache.Set(ctx, "availability:p2:2020-03:month", []byte("keep")))

		require.NoError(t, cache.Invalidate(ctx, "availability:p2:2020-02:"))

		got, _ := cache.Get(ctx, "availability:p2:2020-02:month")
		assert.Nil(t, got)
		got, _ = cache.Get(ctx, "availability:p2:2020-02:day:10")
		assert.Nil(t, got)
		got, _ = cache.Get(ctx, "availability:p2:2020-03:month")
		assert.NotNil(t, got)
	})

	t.Run("ZeroTTLNeverExpires", func(t *testing.T) {
		forever := NewMemoryAvailabilityCache(0)
		require.NoError(t, forever.Set(ctx, "key", []byte("v")))

		got, err := forever.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})
}
