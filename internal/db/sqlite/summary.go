package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kailas-cloud/feedradar/internal/db"
)

// PutLatestSummary overwrites the single stored cycle summary row.
func (s *Store) PutLatestSummary(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(data), time.Now().UTC().Unix())
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}
	return nil
}

// LatestSummary returns the stored cycle summary blob, or
// db.ErrRecordNotFound when no cycle has completed yet.
func (s *Store) LatestSummary(ctx context.Context) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM summaries WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrRecordNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return []byte(data), nil
}
