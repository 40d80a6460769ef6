package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotseat/internal/models"
)

func (db *DB) CreateNotification(ctx context.Context, notification *models.Notification) error {
	now := time.Now().UTC()
	query := `INSERT INTO notifications (id, recipient_id, content, read, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		notification.ID,
		notification.RecipientID,
		notification.Content,
		notification.Read,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	notification.CreatedAt = now
	notification.UpdatedAt = now
	return nil
}

// GetNotificationsByRecipient возвращает страницу уведомлений получателя,
// новые сверху. Нумерация страниц с единицы.
func (db *DB) GetNotificationsByRecipient(ctx context.Context, recipientID string, page int) ([]*models.Notification, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * models.DefaultNotificationPageSize

	query := `SELECT id, recipient_id, content, read, created_at, updated_at
              FROM notifications
              WHERE recipient_id = ?
              ORDER BY created_at DESC, id DESC
              LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, recipientID, models.DefaultNotificationPageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		err := rows.Scan(&n.ID, &n.RecipientID, &n.Content, &n.Read, &n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (db *DB) MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error) {
	query := `UPDATE notifications SET read = 1, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return nil, ErrNotFound
	}

	n := &models.Notification{}
	querySelect := `SELECT id, recipient_id, content, read, created_at, updated_at FROM notifications WHERE id = ?`
	err = db.QueryRowContext(ctx, querySelect, id).Scan(&n.ID, &n.RecipientID, &n.Content, &n.Read, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}
