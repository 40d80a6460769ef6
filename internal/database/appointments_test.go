package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotseat/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testAppointment(id, providerID string, date time.Time) *models.Appointment {
	return &models.Appointment{
		ID:         id,
		ProviderID: providerID,
		CustomerID: "customer-1",
		Date:       date,
		Type:       "haircut",
	}
}

func TestCreateAndGetAppointment(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := time.Date(2020, 2, 15, 10, 0, 0, 0, time.UTC)

	appointment := testAppointment("appt-1", "provider-1", date)
	require.NoError(t, db.CreateAppointment(ctx, appointment))
	assert.False(t, appointment.CreatedAt.IsZero())

	got, err := db.GetAppointmentByDate(ctx, "provider-1", date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "appt-1", got.ID)
	assert.Equal(t, "provider-1", got.ProviderID)
	assert.Equal(t, "customer-1", got.CustomerID)
	assert.Equal(t, "haircut", got.Type)
	assert.True(t, got.Date.Equal(date))
}

func TestGetAppointmentByDateFreeSlot(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetAppointmentByDate(context.Background(), "provider-1",
		time.Date(2020, 2, 15, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateAppointmentSlotTaken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := time.Date(2020, 2, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateAppointment(ctx, testAppointment("appt-1", "provider-1", date)))

	err := db.CreateAppointment(ctx, testAppointment("appt-2", "provider-1", date))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Другой провайдер в тот же момент — не конфликт.
	require.NoError(t, db.CreateAppointment(ctx, testAppointment("appt-3", "provider-2", date)))
}

func TestCreateAppointmentNormalizesDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	moscow := time.FixedZone("MSK", 3*60*60)

	// 13:00 MSK and 10:00 UTC are the same instant; the second insert
	// must collide even though the source zones differ.
	require.NoError(t, db.CreateAppointment(ctx,
		testAppointment("appt-1", "provider-1", time.Date(2020, 2, 15, 13, 0, 0, 0, moscow))))

	err := db.CreateAppointment(ctx,
		testAppointment("appt-2", "provider-1", time.Date(2020, 2, 15, 10, 0, 0, 0, time.UTC)))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestGetAppointmentsInMonth(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2020, 2, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 15, 10, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 29, 17, 0, 0, 0, time.UTC),
		time.Date(2020, 3, 1, 8, 0, 0, 0, time.UTC),  // соседний месяц
		time.Date(2021, 2, 15, 8, 0, 0, 0, time.UTC), // тот же месяц другого года
	}
	for i, date := range dates {
		require.NoError(t, db.CreateAppointment(ctx,
			testAppointment(fmt.Sprintf("appt-%d", i), "provider-1", date)))
	}
	// Чужой провайдер в целевом месяце не должен попадать в выборку.
	require.NoError(t, db.CreateAppointment(ctx,
		testAppointment("other", "provider-2", time.Date(2020, 2, 20, 9, 0, 0, 0, time.UTC))))

	appointments, err := db.GetAppointmentsInMonth(ctx, "provider-1", 2020, time.February)
	require.NoError(t, err)
	require.Len(t, appointments, 3)

	// Отсортировано по дате
	assert.Equal(t, 1, appointments[0].Date.Day())
	assert.Equal(t, 15, appointments[1].Date.Day())
	assert.Equal(t, 29, appointments[2].Date.Day())
}

func TestGetAppointmentsInDay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateAppointment(ctx,
		testAppointment("appt-1", "provider-1", time.Date(2020, 2, 15, 8, 0, 0, 0, time.UTC))))
	require.NoError(t, db.CreateAppointment(ctx,
		testAppointment("appt-2", "provider-1", time.Date(2020, 2, 15, 17, 0, 0, 0, time.UTC))))
	require.NoError(t, db.CreateAppointment(ctx,
		testAppointment("appt-3", "provider-1", time.Date(2020, 2, 16, 8, 0, 0, 0, time.UTC))))

	appointments, err := db.GetAppointmentsInDay(ctx, "provider-1", 2020, time.February, 15)
	require.NoError(t, err)
	require.Len(t, appointments, 2)
	assert.Equal(t, 8, appointments[0].Date.Hour())
	assert.Equal(t, 17, appointments[1].Date.Hour())
}

func TestGetAppointments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateAppointment(ctx,
		testAppointment("appt-2", "provider-1", time.Date(2020, 2, 16, 9, 0, 0, 0, time.UTC))))
	require.NoError(t, db.CreateAppointment(ctx,
		testAppointment("appt-1", "provider-2", time.Date(2020, 2, 15, 9, 0, 0, 0, time.UTC))))

	appointments, err := db.GetAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, appointments, 2)
	assert.Equal(t, "appt-1", appointments[0].ID)
	assert.Equal(t, "appt-2", appointments[1].ID)
}
