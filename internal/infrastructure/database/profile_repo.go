package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"grupy/internal/domain"
	"grupy/internal/domain/entities"
)

func (s *Store) CreateProfile(ctx context.Context, profile entities.Profile) error {
	if profile.Status == "" {
		profile.Status = profile.ComputeStatus()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (username, feedback_up, feedback_down, events_attended, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO NOTHING`,
		profile.Username, profile.FeedbackUp, profile.FeedbackDown, profile.EventsAttended, profile.Status,
	)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, username string) (*entities.Profile, error) {
	p := entities.Profile{Username: username}
	err := s.pool.QueryRow(ctx, `
		SELECT feedback_up, feedback_down, events_attended, status
		FROM profiles WHERE username = $1`, username,
	).Scan(&p.FeedbackUp, &p.FeedbackDown, &p.EventsAttended, &p.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// IncrementAttendanceStats upserts the profile and refreshes its status in one transaction.
// The upsert's row lock serializes concurrent increments of the same profile.
func (s *Store) IncrementAttendanceStats(ctx context.Context, recipient string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		p := entities.Profile{Username: recipient}
		err := tx.QueryRow(ctx, `
			INSERT INTO profiles (username, events_attended) VALUES ($1, 1)
			ON CONFLICT (username) DO UPDATE SET events_attended = profiles.events_attended + 1
			RETURNING feedback_up, feedback_down, events_attended`, recipient,
		).Scan(&p.FeedbackUp, &p.FeedbackDown, &p.EventsAttended)
		if err != nil {
			return fmt.Errorf("bump events attended: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE profiles SET status = $2 WHERE username = $1`, recipient, p.ComputeStatus()); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("increment attendance stats: %w", err)
	}
	return nil
}
