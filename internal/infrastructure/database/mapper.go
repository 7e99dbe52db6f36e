package database

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"grupy/internal/domain/entities"
)

// Postgres error codes the store maps to domain errors.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// pgtypeTimestamptzToTime returns t.Time when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

func timeToTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const groupColumns = `
	g.id, g.creator, g.name, g.category, g.city, g.date, g.time, g.attendance_processed, g.created_at,
	COALESCE((SELECT array_agg(p.username ORDER BY p.id) FROM group_participants p WHERE p.group_id = g.id), '{}'),
	COALESCE((SELECT array_agg(v.username ORDER BY v.sent_at, v.username) FROM group_vote_requests v WHERE v.group_id = g.id), '{}')`

func scanGroup(row pgx.Row) (entities.Group, error) {
	var (
		g         entities.Group
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(
		&g.ID,
		&g.Creator,
		&g.Name,
		&g.Category,
		&g.City,
		&g.ScheduledDate,
		&g.ScheduledTime,
		&g.AttendanceProcessed,
		&createdAt,
		&g.Participants,
		&g.VoteRequestsSent,
	)
	if err != nil {
		return entities.Group{}, err
	}
	g.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return g, nil
}

func scanNotification(row pgx.Row) (entities.Notification, error) {
	var (
		n         entities.Notification
		kind      string
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&n.ID, &n.Recipient, &kind, &n.GroupID, &n.Message, &createdAt, &n.Read); err != nil {
		return entities.Notification{}, err
	}
	n.Kind = entities.NotificationKind(kind)
	n.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return n, nil
}
