package repository

import (
	"context"
	"sync/atomic"
	"time"

	"hotseat/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverAvailabilityCache serves from the primary cache (Redis) and
// degrades to the in-memory fallback when the primary errors out.
// Invalidation always reaches the fallback so stale entries cannot
// survive a failover window.
type FailoverAvailabilityCache struct {
	primary   domain.AvailabilityCache
	fallback  domain.AvailabilityCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverAvailabilityCache(primary, fallback domain.AvailabilityCache, logger *zerolog.Logger) *FailoverAvailabilityCache {
	return &FailoverAvailabilityCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverAvailabilityCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.primaryUsable() {
		value, err := c.primary.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		c.markDown(err)
	}
	return c.fallback.Get(ctx, key)
}

func (c *FailoverAvailabilityCache) Set(ctx context.Context, key string, value []byte) error {
	if c.primaryUsable() {
		err := c.primary.Set(ctx, key, value)
		if err == nil {
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.Set(ctx, key, value)
}

func (c *FailoverAvailabilityCache) Invalidate(ctx context.Context, prefix string) error {
	var primaryErr error
	if c.primaryUsable() {
		if primaryErr = c.primary.Invalidate(ctx, prefix); primaryErr != nil {
			c.markDown(primaryErr)
		}
	}

	if err := c.fallback.Invalidate(ctx, prefix); err != nil {
		return err
	}
	return primaryErr
}

// primaryUsable reports whether the primary should be tried; after a
// failure the primary is retried at most once a minute.
func (c *FailoverAvailabilityCache) primaryUsable() bool {
	if !c.isDown.Load() {
		return true
	}
	last := time.Unix(0, c.lastCheck.Load())
	if time.Since(last) > time.Minute {
		c.isDown.Store(false)
		return true
	}
	return false
}

func (c *FailoverAvailabilityCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
	c.isDown.Store(true)
	c.lastCheck.Store(time.Now().UnixNano())
}
