package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/feedradar/internal/db"
)

// PutLatestSummary overwrites the stored cycle summary blob.
func (s *Store) PutLatestSummary(ctx context.Context, data []byte) error {
	cmd := s.b().Set().Key(s.summaryKey()).Value(string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// LatestSummary returns the stored cycle summary blob, or
// db.ErrRecordNotFound when no cycle has completed yet.
func (s *Store) LatestSummary(ctx context.Context) ([]byte, error) {
	cmd := s.b().Get().Key(s.summaryKey()).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrRecordNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}
