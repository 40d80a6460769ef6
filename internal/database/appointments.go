package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotseat/internal/models"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// sqliteTimeLayout хранит даты в UTC с точностью до секунды, поэтому
// сравнение на равенство слота сводится к сравнению строк.
const sqliteTimeLayout = "2006-01-02 15:04:05"

func formatDate(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

const appointmentColumns = `id, provider_id, customer_id, date, type, created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*models.Appointment, error) {
	a := &models.Appointment{}
	err := row.Scan(&a.ID, &a.ProviderID, &a.CustomerID, &a.Date, &a.Type, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	// Драйвер разбирает DATETIME-колонки сам; фиксируем UTC.
	a.Date = a.Date.UTC()
	return a, nil
}

// GetAppointments возвращает все записи, отсортированные по дате
func (db *DB) GetAppointments(ctx context.Context) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY date ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointments: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// GetAppointmentByDate возвращает запись на точный момент времени у
// провайдера или nil, если слот свободен.
func (db *DB) GetAppointmentByDate(ctx context.Context, providerID string, date time.Time) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE provider_id = ? AND date = ?`
	appointment, err := scanAppointment(db.QueryRowContext(ctx, query, providerID, formatDate(date)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment by date: %w", err)
	}
	return appointment, nil
}

func (db *DB) GetAppointmentsInMonth(ctx context.Context, providerID string, year int, month time.Month) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
              FROM appointments
              WHERE provider_id = ? AND strftime('%Y-%m', date) = ?
              ORDER BY date ASC`
	rows, err := db.QueryContext(ctx, query, providerID, fmt.Sprintf("%04d-%02d", year, int(month)))
	if err != nil {
		return nil, fmt.Errorf("failed to get appointments in month: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (db *DB) GetAppointmentsInDay(ctx context.Context, providerID string, year int, month time.Month, day int) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
              FROM appointments
              WHERE provider_id = ? AND date(date) = ?
              ORDER BY date ASC`
	rows, err := db.QueryContext(ctx, query, providerID, fmt.Sprintf("%04d-%02d-%02d", year, int(month), day))
	if err != nil {
		return nil, fmt.Errorf("failed to get appointments in day: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// CreateAppointment вставляет запись внутри транзакции с повторной
// проверкой слота. Гонку параллельных вставок закрывает UNIQUE-индекс:
// проигравшая транзакция получает ErrSlotTaken.
func (db *DB) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var taken int
	queryCount := `SELECT COUNT(*) FROM appointments WHERE provider_id = ? AND date = ?`
	err = tx.QueryRowContext(ctx, queryCount, appointment.ProviderID, formatDate(appointment.Date)).Scan(&taken)
	if err != nil {
		return fmt.Errorf("failed to check slot in tx: %w", err)
	}
	if taken > 0 {
		return ErrSlotTaken
	}

	now := time.Now().UTC()
	queryInsert := `INSERT INTO appointments (
				id, provider_id, customer_id, date, type, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, queryInsert,
		appointment.ID,
		appointment.ProviderID,
		appointment.CustomerID,
		formatDate(appointment.Date),
		appointment.Type,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to insert appointment in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to commit appointment: %w", err)
	}

	appointment.Date = appointment.Date.UTC().Truncate(time.Second)
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	return nil
}

func collectAppointments(rows *sql.Rows) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
