package domain

import (
	"context"
	"time"

	"hotseat/internal/models"
)

// AppointmentRepository is the durable store of appointment records.
// Create must reject a second appointment for the same (provider, instant)
// pair with database.ErrSlotTaken; callers rely on the store, not on their
// own lookup, for that invariant.
type AppointmentRepository interface {
	GetAppointments(ctx context.Context) ([]*models.Appointment, error)
	GetAppointmentByDate(ctx context.Context, providerID string, date time.Time) (*models.Appointment, error)
	GetAppointmentsInMonth(ctx context.Context, providerID string, year int, month time.Month) ([]*models.Appointment, error)
	GetAppointmentsInDay(ctx context.Context, providerID string, year int, month time.Month, day int) ([]*models.Appointment, error)
	CreateAppointment(ctx context.Context, appointment *models.Appointment) error
}

// NotificationRepository is an append-mostly store of user notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotificationsByRecipient(ctx context.Context, recipientID string, page int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error)
}

// UserRepository resolves user identities. The scheduling core only reads
// from it.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
}

// AvailabilityCache stores precomputed availability views keyed by
// provider and period. Invalidate removes every entry under the given key
// prefix, covering both month and day granularities in one call.
type AvailabilityCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context, prefix string) error
}

// Clock abstracts wall-clock time so temporal rules stay testable.
type Clock interface {
	Now() time.Time
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
