package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"grupy/internal/domain"
	"grupy/internal/domain/entities"
)

const groupColumns = `id, creator, name, category, city, date, time, attendance_processed, created_at`

const candidateFilter = `
	attendance_processed = 0
	OR EXISTS (
		SELECT 1 FROM group_participants p
		WHERE p.group_id = groups.id
		  AND NOT EXISTS (
			SELECT 1 FROM group_vote_requests v
			WHERE v.group_id = p.group_id AND v.username = p.username
		  )
	)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (entities.Group, error) {
	var (
		g         entities.Group
		createdAt int64
	)
	err := row.Scan(&g.ID, &g.Creator, &g.Name, &g.Category, &g.City,
		&g.ScheduledDate, &g.ScheduledTime, &g.AttendanceProcessed, &createdAt)
	if err != nil {
		return entities.Group{}, err
	}
	g.CreatedAt = fromMillis(createdAt)
	return g, nil
}

func (s *Store) CreateGroup(ctx context.Context, group *entities.Group) error {
	if group.ID == "" {
		group.ID = s.newID()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}
	participants := group.Participants
	if group.Creator != "" && !slices.Contains(participants, group.Creator) {
		participants = append([]string{group.Creator}, participants...)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create group: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (`+groupColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Creator, group.Name, group.Category, group.City,
		group.ScheduledDate, group.ScheduledTime, group.AttendanceProcessed, toMillis(group.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create group: insert group: %w", err)
	}
	for _, p := range participants {
		if p == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO group_participants (group_id, username) VALUES (?, ?)`, group.ID, p); err != nil {
			return fmt.Errorf("create group: insert participant %s: %w", p, err)
		}
	}
	now := toMillis(time.Now())
	for _, p := range group.VoteRequestsSent {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO group_vote_requests (group_id, username, sent_at) VALUES (?, ?, ?)`, group.ID, p, now); err != nil {
			return fmt.Errorf("create group: insert vote request %s: %w", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create group: commit: %w", err)
	}
	group.Participants = participants
	return nil
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*entities.Group, error) {
	g, err := scanGroup(s.sqlDB.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, groupID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if err := s.attachMembers(ctx, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) AddParticipant(ctx context.Context, groupID, username string) error {
	if username == "" {
		return domain.ErrEmptyParticipant
	}
	_, err := s.sqlDB.ExecContext(ctx, `INSERT INTO group_participants (group_id, username) VALUES (?, ?)`, groupID, username)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrParticipantExists
	case isForeignKeyViolation(err):
		return domain.ErrGroupNotFound
	default:
		return fmt.Errorf("add participant: %w", err)
	}
}

func (s *Store) ListGroups(ctx context.Context) ([]entities.Group, error) {
	return s.listGroups(ctx, `SELECT `+groupColumns+` FROM groups ORDER BY created_at, id`)
}

func (s *Store) ListSweepCandidates(ctx context.Context) ([]entities.Group, error) {
	return s.listGroups(ctx, `SELECT `+groupColumns+` FROM groups WHERE `+candidateFilter+` ORDER BY created_at, id`)
}

func (s *Store) listGroups(ctx context.Context, query string) ([]entities.Group, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	var out []entities.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("list groups: %w", err)
	}
	_ = rows.Close()

	for i := range out {
		if err := s.attachMembers(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) attachMembers(ctx context.Context, g *entities.Group) error {
	var err error
	g.Participants, err = s.usernames(ctx,
		`SELECT username FROM group_participants WHERE group_id = ? ORDER BY id`, g.ID)
	if err != nil {
		return fmt.Errorf("get participants: %w", err)
	}
	g.VoteRequestsSent, err = s.usernames(ctx,
		`SELECT username FROM group_vote_requests WHERE group_id = ? ORDER BY sent_at, rowid`, g.ID)
	if err != nil {
		return fmt.Errorf("get vote requests: %w", err)
	}
	return nil
}

func (s *Store) usernames(ctx context.Context, query, groupID string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) TryMarkAttendanceProcessed(ctx context.Context, groupID string) (bool, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE groups SET attendance_processed = 1 WHERE id = ? AND attendance_processed = 0`, groupID)
	if err != nil {
		return false, fmt.Errorf("mark attendance processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark attendance processed: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	return false, s.groupExists(ctx, groupID)
}

func (s *Store) TryRecordVoteRequestSent(ctx context.Context, groupID, recipient string) (bool, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO group_vote_requests (group_id, username, sent_at) VALUES (?, ?, ?)`,
		groupID, recipient, toMillis(time.Now()))
	if isForeignKeyViolation(err) {
		return false, domain.ErrGroupNotFound
	}
	if err != nil {
		return false, fmt.Errorf("record vote request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record vote request: %w", err)
	}
	return n == 1, nil
}

func (s *Store) groupExists(ctx context.Context, groupID string) error {
	var exists bool
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE id = ?)`, groupID).Scan(&exists); err != nil {
		return fmt.Errorf("check group: %w", err)
	}
	if !exists {
		return domain.ErrGroupNotFound
	}
	return nil
}
