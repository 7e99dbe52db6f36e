package database

import (
	"context"
	"fmt"

	"grupy/internal/domain"
	"grupy/internal/domain/entities"
)

// Emit inserts the notification unread and returns its new ID.
func (s *Store) Emit(ctx context.Context, n entities.Notification) (string, error) {
	id := s.newID()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, recipient, kind, group_id, message, created_at, read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)`,
		id, n.Recipient, string(n.Kind), n.GroupID, n.Message, timeToTimestamptz(n.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

func (s *Store) ListNotifications(ctx context.Context, recipient string) ([]entities.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, recipient, kind, group_id, message, created_at, read
		FROM notifications WHERE recipient = $1
		ORDER BY created_at DESC, id`, recipient)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []entities.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, recipient, notificationID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient = $2`, notificationID, recipient)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
