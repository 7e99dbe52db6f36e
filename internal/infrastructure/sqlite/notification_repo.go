package sqlite

import (
	"context"
	"fmt"
	"time"

	"grupy/internal/domain"
	"grupy/internal/domain/entities"
)

func (s *Store) Emit(ctx context.Context, n entities.Notification) (string, error) {
	id := s.newID()
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient, kind, group_id, message, created_at, read)
		VALUES (?, ?, ?, ?, ?, ?, 0)`,
		id, n.Recipient, string(n.Kind), n.GroupID, n.Message, toMillis(createdAt),
	)
	if err != nil {
		return "", fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

func (s *Store) ListNotifications(ctx context.Context, recipient string) ([]entities.Notification, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT id, recipient, kind, group_id, message, created_at, read
		FROM notifications WHERE recipient = ?
		ORDER BY created_at DESC, rowid DESC`, recipient)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []entities.Notification
	for rows.Next() {
		var (
			n         entities.Notification
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&n.ID, &n.Recipient, &kind, &n.GroupID, &n.Message, &createdAt, &n.Read); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = entities.NotificationKind(kind)
		n.CreatedAt = fromMillis(createdAt)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, recipient, notificationID string) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND recipient = ?`, notificationID, recipient)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
