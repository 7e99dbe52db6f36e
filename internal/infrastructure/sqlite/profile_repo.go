package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"grupy/internal/domain"
	"grupy/internal/domain/entities"
)

func (s *Store) CreateProfile(ctx context.Context, profile entities.Profile) error {
	if profile.Status == "" {
		profile.Status = profile.ComputeStatus()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT OR IGNORE INTO profiles (username, feedback_up, feedback_down, events_attended, status)
		VALUES (?, ?, ?, ?, ?)`,
		profile.Username, profile.FeedbackUp, profile.FeedbackDown, profile.EventsAttended, profile.Status,
	)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, username string) (*entities.Profile, error) {
	p := entities.Profile{Username: username}
	err := s.sqlDB.QueryRowContext(ctx, `
		SELECT feedback_up, feedback_down, events_attended, status
		FROM profiles WHERE username = ?`, username,
	).Scan(&p.FeedbackUp, &p.FeedbackDown, &p.EventsAttended, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// IncrementAttendanceStats upserts the profile and refreshes its status in one transaction.
// The upsert runs first so the transaction takes the write lock before reading.
func (s *Store) IncrementAttendanceStats(ctx context.Context, recipient string) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("increment attendance stats: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := entities.Profile{Username: recipient}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO profiles (username, events_attended) VALUES (?, 1)
		ON CONFLICT (username) DO UPDATE SET events_attended = events_attended + 1
		RETURNING feedback_up, feedback_down, events_attended`, recipient,
	).Scan(&p.FeedbackUp, &p.FeedbackDown, &p.EventsAttended)
	if err != nil {
		return fmt.Errorf("increment attendance stats: bump: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE profiles SET status = ? WHERE username = ?`, p.ComputeStatus(), recipient); err != nil {
		return fmt.Errorf("increment attendance stats: status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("increment attendance stats: commit: %w", err)
	}
	return nil
}
