package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"grupy/internal/ports/output"
)

var _ output.Store = (*Store)(nil)

// Store implements output.Store on PostgreSQL with pgx.
//
// Both conditional primitives are single statements: an UPDATE guarded by
// attendance_processed = FALSE and an INSERT ... ON CONFLICT DO NOTHING on the
// (group_id, username) primary key. Their RowsAffected decides the winner.
type Store struct {
	pool  *pgxpool.Pool
	newID func() string
}

// NewStore wraps an open pool. The store owns the pool and closes it in Close.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, newID: uuid.NewString}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
