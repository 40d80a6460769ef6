package scheduling

import (
	"context"
	"strings"
	"time"

	"hotseat/internal/database"
	"hotseat/internal/models"
)

// In-memory collaborators for scheduler and calculator tests.

type fakeStore struct {
	appointments []*models.Appointment

	createErr error
	lookupErr error
	monthErr  error
	dayErr    error

	monthCalls int
	dayCalls   int
}

func (f *fakeStore) GetAppointments(_ context.Context) ([]*models.Appointment, error) {
	return f.appointments, nil
}

func (f *fakeStore) GetAppointmentByDate(_ context.Context, providerID string, date time.Time) (*models.Appointment, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, a := range f.appointments {
		if a.ProviderID == providerID && a.Date.Equal(date) {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetAppointmentsInMonth(_ context.Context, providerID string, year int, month time.Month) ([]*models.Appointment, error) {
	f.monthCalls++
	if f.monthErr != nil {
		return nil, f.monthErr
	}
	var out []*models.Appointment
	for _, a := range f.appointments {
		if a.ProviderID == providerID && a.Date.Year() == year && a.Date.Month() == month {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAppointmentsInDay(_ context.Context, providerID string, year int, month time.Month, day int) ([]*models.Appointment, error) {
	f.dayCalls++
	if f.dayErr != nil {
		return nil, f.dayErr
	}
	var out []*models.Appointment
	for _, a := range f.appointments {
		if a.ProviderID == providerID && a.Date.Year() == year && a.Date.Month() == month && a.Date.Day() == day {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAppointment(_ context.Context, appointment *models.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, a := range f.appointments {
		if a.ProviderID == appointment.ProviderID && a.Date.Equal(appointment.Date) {
			return database.ErrSlotTaken
		}
	}
	f.appointments = append(f.appointments, appointment)
	return nil
}

type fakeNotifications struct {
	notifications []*models.Notification
	createErr     error
}

func (f *fakeNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotifications) GetNotificationsByRecipient(_ context.Context, recipientID string, _ int) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkNotificationRead(_ context.Context, id string) (*models.Notification, error) {
	for _, n := range f.notifications {
		if n.ID == id {
			n.Read = true
			return n, nil
		}
	}
	return nil, database.ErrNotFound
}

type fakeCache struct {
	entries map[string][]byte

	getErr        error
	setErr        error
	invalidateErr error

	invalidations []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries[key], nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, prefix string) error {
	f.invalidations = append(f.invalidations, prefix)
	if f.invalidateErr != nil {
		return f.invalidateErr
	}
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) CreateUser(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUsers) GetAllUsers(_ context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type recordingBus struct {
	published []string
}

func (b *recordingBus) PublishJSON(eventType string, _ interface{}) error {
	b.published = append(b.published, eventType)
	return nil
}
