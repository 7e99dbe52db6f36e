package database

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"grupy/internal/domain"
	"grupy/internal/domain/entities"
)

const candidateFilter = `
	g.attendance_processed = FALSE
	OR EXISTS (
		SELECT 1 FROM group_participants p
		WHERE p.group_id = g.id
		  AND NOT EXISTS (
			SELECT 1 FROM group_vote_requests v
			WHERE v.group_id = p.group_id AND v.username = p.username
		  )
	)`

func (s *Store) CreateGroup(ctx context.Context, group *entities.Group) error {
	if group.ID == "" {
		group.ID = s.newID()
	}
	participants := group.Participants
	if group.Creator != "" && !slices.Contains(participants, group.Creator) {
		participants = append([]string{group.Creator}, participants...)
	}
	createdAt := timeToTimestamptz(group.CreatedAt)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO groups (id, creator, name, category, city, date, time, attendance_processed, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			group.ID, group.Creator, group.Name, group.Category, group.City,
			group.ScheduledDate, group.ScheduledTime, group.AttendanceProcessed, createdAt,
		)
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		for _, p := range participants {
			if p == "" {
				continue
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO group_participants (group_id, username) VALUES ($1, $2)
				ON CONFLICT (group_id, username) DO NOTHING`, group.ID, p); err != nil {
				return fmt.Errorf("insert participant %s: %w", p, err)
			}
		}
		for _, p := range group.VoteRequestsSent {
			if _, err := tx.Exec(ctx, `
				INSERT INTO group_vote_requests (group_id, username) VALUES ($1, $2)
				ON CONFLICT (group_id, username) DO NOTHING`, group.ID, p); err != nil {
				return fmt.Errorf("insert vote request %s: %w", p, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	group.Participants = participants
	group.CreatedAt = createdAt.Time
	return nil
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*entities.Group, error) {
	g, err := scanGroup(s.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups g WHERE g.id = $1`, groupID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}

func (s *Store) AddParticipant(ctx context.Context, groupID, username string) error {
	if username == "" {
		return domain.ErrEmptyParticipant
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO group_participants (group_id, username) VALUES ($1, $2)`, groupID, username)
	switch pgErrorCode(err) {
	case "":
	case codeUniqueViolation:
		return domain.ErrParticipantExists
	case codeForeignKeyViolation:
		return domain.ErrGroupNotFound
	}
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

func (s *Store) ListGroups(ctx context.Context) ([]entities.Group, error) {
	return s.listGroups(ctx, `SELECT `+groupColumns+` FROM groups g ORDER BY g.created_at, g.id`)
}

func (s *Store) ListSweepCandidates(ctx context.Context) ([]entities.Group, error) {
	return s.listGroups(ctx, `SELECT `+groupColumns+` FROM groups g WHERE `+candidateFilter+` ORDER BY g.created_at, g.id`)
}

func (s *Store) listGroups(ctx context.Context, query string) ([]entities.Group, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []entities.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return out, nil
}

func (s *Store) TryMarkAttendanceProcessed(ctx context.Context, groupID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE groups SET attendance_processed = TRUE
		WHERE id = $1 AND attendance_processed = FALSE`, groupID)
	if err != nil {
		return false, fmt.Errorf("mark attendance processed: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	return false, s.groupExists(ctx, groupID)
}

func (s *Store) TryRecordVoteRequestSent(ctx context.Context, groupID, recipient string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO group_vote_requests (group_id, username) VALUES ($1, $2)
		ON CONFLICT (group_id, username) DO NOTHING`, groupID, recipient)
	if pgErrorCode(err) == codeForeignKeyViolation {
		return false, domain.ErrGroupNotFound
	}
	if err != nil {
		return false, fmt.Errorf("record vote request: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) groupExists(ctx context.Context, groupID string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)`, groupID).Scan(&exists); err != nil {
		return fmt.Errorf("check group: %w", err)
	}
	if !exists {
		return domain.ErrGroupNotFound
	}
	return nil
}
