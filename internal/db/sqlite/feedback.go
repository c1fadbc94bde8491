package sqlite

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/kailas-cloud/feedradar/internal/db"
)

// AppendFeedback inserts one feedback row.
func (s *Store) AppendFeedback(ctx context.Context, rec db.FeedbackRecord) error {
	query, args, err := sq.Insert("feedback").
		Columns("id", "item_id", "type", "weight", "created_at").
		Values(rec.ID, rec.ItemID, rec.Type, rec.Weight, unixOrZero(rec.CreatedAt)).
		ToSql()
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}
	return nil
}

// FeedbackByItem returns all feedback rows for an item, oldest first.
func (s *Store) FeedbackByItem(ctx context.Context, itemID string) ([]db.FeedbackRecord, error) {
	query, args, err := sq.Select("id", "item_id", "type", "weight", "created_at").
		From("feedback").
		Where(sq.Eq{"item_id": itemID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	var recs []db.FeedbackRecord
	for rows.Next() {
		var rec db.FeedbackRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.ItemID, &rec.Type, &rec.Weight, &created); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		rec.CreatedAt = timeOrZero(created)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return recs, nil
}
