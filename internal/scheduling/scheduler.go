package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotseat/internal/database"
	"hotseat/internal/domain"
	"hotseat/internal/events"
	"hotseat/internal/metrics"
	"hotseat/internal/models"
	"hotseat/internal/worker"
)

// Scheduler books appointments. Validation runs in a fixed order before
// anything is written; once the appointment is committed, cache
// invalidation and provider notification run best-effort and never undo
// the booking.
type Scheduler struct {
	appointments  domain.AppointmentRepository
	notifications domain.NotificationRepository
	cache         domain.AvailabilityCache
	clock         domain.Clock
	eventBus      domain.EventPublisher
	calendar      models.BusinessCalendar
	retry         worker.RetryPolicy
	logger        *zerolog.Logger
}

// NewScheduler wires the scheduler. A nil clock falls back to SystemClock,
// a nil eventBus disables event publishing.
func NewScheduler(
	appointments domain.AppointmentRepository,
	notifications domain.NotificationRepository,
	cache domain.AvailabilityCache,
	clock domain.Clock,
	eventBus domain.EventPublisher,
	calendar models.BusinessCalendar,
	logger *zerolog.Logger,
) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		appointments:  appointments,
		notifications: notifications,
		cache:         cache,
		clock:         clock,
		eventBus:      eventBus,
		calendar:      calendar,
		retry: worker.RetryPolicy{
			MaxRetries:    2,
			InitialDelay:  50 * time.Millisecond,
			MaxDelay:      time.Second,
			BackoffFactor: 2,
		},
		logger: logger,
	}
}

// CreateAppointment validates and persists a booking for the given
// provider, customer, instant and service type. Checks run in order:
// self-booking, past date, business hours, service type, slot conflict.
// The returned error is *ValidationError, database.ErrSlotTaken or
// *DependencyError.
func (s *Scheduler) CreateAppointment(ctx context.Context, providerID, customerID string, date time.Time, appointmentType string) (*models.Appointment, error) {
	// Все временные метки приводятся к UTC с точностью до секунды,
	// чтобы сравнение слотов было точным.
	date = date.UTC().Truncate(time.Second)

	if providerID == customerID {
		metrics.IncAppointmentRejected(ReasonSelfBooking)
		return nil, validationError(ReasonSelfBooking)
	}
	if !date.After(s.clock.Now().UTC()) {
		metrics.IncAppointmentRejected(ReasonPastDate)
		return nil, validationError(ReasonPastDate)
	}
	if !s.calendar.InsideBusinessHours(date.Hour()) {
		metrics.IncAppointmentRejected(ReasonOutsideBusinessHours)
		return nil, validationError(ReasonOutsideBusinessHours)
	}
	if !s.calendar.ValidType(appointmentType) {
		metrics.IncAppointmentRejected(ReasonInvalidType)
		return nil, validationError(ReasonInvalidType)
	}

	// Fast path: the store's unique constraint is the real guard, this
	// lookup only avoids burning an insert on an obviously taken slot.
	existing, err := s.appointments.GetAppointmentByDate(ctx, providerID, date)
	if err != nil {
		return nil, dependencyError("check slot", err)
	}
	if existing != nil {
		metrics.IncAppointmentRejected("slot_taken")
		return nil, database.ErrSlotTaken
	}

	appointment := &models.Appointment{
		ID:         uuid.NewString(),
		ProviderID: providerID,
		CustomerID: customerID,
		Date:       date,
		Type:       appointmentType,
	}
	if err := s.appointments.CreateAppointment(ctx, appointment); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			// Проиграли гонку за слот.
			metrics.IncAppointmentRejected("slot_taken")
			return nil, err
		}
		return nil, dependencyError("create appointment", err)
	}

	metrics.IncAppointmentCreated()
	s.logger.Info().
		Str("appointment_id", appointment.ID).
		Str("provider_id", providerID).
		Str("customer_id", customerID).
		Time("date", date).
		Str("type", appointmentType).
		Msg("Appointment created")

	s.invalidateAvailability(ctx, providerID, date)
	s.notifyProvider(ctx, appointment)
	s.publishCreated(appointment)

	return appointment, nil
}

// invalidateAvailability drops every cached availability view for the
// provider's month. Runs after commit; failure is logged, not returned.
func (s *Scheduler) invalidateAvailability(ctx context.Context, providerID string, date time.Time) {
	prefix := periodPrefix(providerID, date.Year(), date.Month())
	err := s.retry.Do(ctx, func() error {
		return s.cache.Invalidate(ctx, prefix)
	})
	if err != nil {
		metrics.IncSideEffectFailure("invalidate")
		s.logger.Error().Err(err).
			Str("provider_id", providerID).
			Str("prefix", prefix).
			Msg("Failed to invalidate availability cache")
	}
}

// notifyProvider writes the "new appointment" notification for the
// provider. Runs after commit; failure is logged, not returned.
func (s *Scheduler) notifyProvider(ctx context.Context, appointment *models.Appointment) {
	notification := &models.Notification{
		ID:          uuid.NewString(),
		RecipientID: appointment.ProviderID,
		Content: fmt.Sprintf("New %s appointment on %s",
			appointment.Type, appointment.Date.Format("January 2, 2006 at 15:04")),
	}
	err := s.retry.Do(ctx, func() error {
		return s.notifications.CreateNotification(ctx, notification)
	})
	if err != nil {
		metrics.IncSideEffectFailure("notify")
		s.logger.Error().Err(err).
			Str("appointment_id", appointment.ID).
			Str("recipient_id", notification.RecipientID).
			Msg("Failed to write provider notification")
		return
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventNotificationWritten, notification); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish notification event")
		}
	}
}

func (s *Scheduler) publishCreated(appointment *models.Appointment) {
	if s.eventBus == nil {
		return
	}
	payload := events.AppointmentEventPayload{
		AppointmentID: appointment.ID,
		ProviderID:    appointment.ProviderID,
		CustomerID:    appointment.CustomerID,
		Date:          appointment.Date,
		Type:          appointment.Type,
	}
	if err := s.eventBus.PublishJSON(events.EventAppointmentCreated, payload); err != nil {
		s.logger.Warn().Err(err).
			Str("appointment_id", appointment.ID).
			Msg("Failed to publish appointment event")
	}
}
