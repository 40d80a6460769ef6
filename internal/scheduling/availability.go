package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hotseat/internal/domain"
	"hotseat/internal/metrics"
	"hotseat/internal/models"
)

// AvailabilityCalculator serves read-through cached availability views.
// The month view answers "is the day still under quota", the day view
// answers "is this exact hour free". A cache failure degrades to a
// recompute, never to an error.
type AvailabilityCalculator struct {
	appointments domain.AppointmentRepository
	users        domain.UserRepository
	cache        domain.AvailabilityCache
	calendar     models.BusinessCalendar
	logger       *zerolog.Logger
}

func NewAvailabilityCalculator(
	appointments domain.AppointmentRepository,
	users domain.UserRepository,
	cache domain.AvailabilityCache,
	calendar models.BusinessCalendar,
	logger *zerolog.Logger,
) *AvailabilityCalculator {
	return &AvailabilityCalculator{
		appointments: appointments,
		users:        users,
		cache:        cache,
		calendar:     calendar,
		logger:       logger,
	}
}

// MonthAvailability returns one slot per calendar day, ascending. A day is
// available while the provider holds fewer appointments in it than the
// daily capacity.
func (c *AvailabilityCalculator) MonthAvailability(ctx context.Context, providerID string, year int, month time.Month) ([]models.DaySlot, error) {
	if err := c.checkProvider(ctx, providerID); err != nil {
		return nil, err
	}

	key := monthKey(providerID, year, month)
	if raw := c.fromCache(ctx, key, "month"); raw != nil {
		var slots []models.DaySlot
		if err := json.Unmarshal(raw, &slots); err == nil {
			return slots, nil
		}
		c.logger.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	}

	appointments, err := c.appointments.GetAppointmentsInMonth(ctx, providerID, year, month)
	if err != nil {
		return nil, dependencyError("load month appointments", err)
	}

	perDay := make(map[int]int)
	for _, a := range appointments {
		perDay[a.Date.Day()]++
	}

	days := daysInMonth(year, month)
	slots := make([]models.DaySlot, 0, days)
	for day := 1; day <= days; day++ {
		slots = append(slots, models.DaySlot{
			Day:       day,
			Available: perDay[day] < c.calendar.DailyCapacity,
		})
	}

	c.toCache(ctx, key, slots)
	return slots, nil
}

// DayAvailability returns one slot per business hour, ascending, both
// bounds inclusive. An hour is available while no appointment sits on it.
func (c *AvailabilityCalculator) DayAvailability(ctx context.Context, providerID string, year int, month time.Month, day int) ([]models.HourSlot, error) {
	if err := c.checkProvider(ctx, providerID); err != nil {
		return nil, err
	}

	key := dayKey(providerID, year, month, day)
	if raw := c.fromCache(ctx, key, "day"); raw != nil {
		var slots []models.HourSlot
		if err := json.Unmarshal(raw, &slots); err == nil {
			return slots, nil
		}
		c.logger.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	}

	appointments, err := c.appointments.GetAppointmentsInDay(ctx, providerID, year, month, day)
	if err != nil {
		return nil, dependencyError("load day appointments", err)
	}

	booked := make(map[int]bool)
	for _, a := range appointments {
		booked[a.Date.Hour()] = true
	}

	slots := make([]models.HourSlot, 0, c.calendar.LimitHour-c.calendar.StartHour+1)
	for hour := c.calendar.StartHour; hour <= c.calendar.LimitHour; hour++ {
		slots = append(slots, models.HourSlot{
			Hour:      hour,
			Available: !booked[hour],
		})
	}

	c.toCache(ctx, key, slots)
	return slots, nil
}

// checkProvider rejects unknown providers before any view is computed.
func (c *AvailabilityCalculator) checkProvider(ctx context.Context, providerID string) error {
	user, err := c.users.GetUserByID(ctx, providerID)
	if err != nil {
		return dependencyError("resolve provider", err)
	}
	if user == nil {
		return fmt.Errorf("provider %s: %w", providerID, ErrProviderNotFound)
	}
	return nil
}

// fromCache returns the cached bytes or nil. Lookup errors degrade to a
// miss so the caller recomputes from the store.
func (c *AvailabilityCalculator) fromCache(ctx context.Context, key, granularity string) []byte {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Availability cache lookup failed")
		metrics.IncCacheMiss(granularity)
		return nil
	}
	if raw == nil {
		metrics.IncCacheMiss(granularity)
		return nil
	}
	metrics.IncCacheHit(granularity)
	return raw
}

// toCache stores the computed view. Write errors are logged and dropped.
func (c *AvailabilityCalculator) toCache(ctx context.Context, key string, view interface{}) {
	raw, err := json.Marshal(view)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode availability view")
		return
	}
	if err := c.cache.Set(ctx, key, raw); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache availability view")
	}
}

// daysInMonth uses the day-zero normalization trick: day 0 of the next
// month is the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
