package redis

import (
	"context"

	"github.com/kailas-cloud/feedradar/internal/db"
)

// AppendFeedback appends one JSON-encoded entry to the item's feedback list.
func (s *Store) AppendFeedback(ctx context.Context, rec db.FeedbackRecord) error {
	blob, err := encodeFeedback(rec)
	if err != nil {
		return &db.Error{Op: db.OpRPush, Err: err}
	}
	cmd := s.b().Rpush().Key(s.feedbackKey(rec.ItemID)).Element(string(blob)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpRPush, Err: err}
	}
	return nil
}

// FeedbackByItem returns all feedback entries for an item in append order.
func (s *Store) FeedbackByItem(ctx context.Context, itemID string) ([]db.FeedbackRecord, error) {
	cmd := s.b().Lrange().Key(s.feedbackKey(itemID)).Start(0).Stop(-1).Build()
	raws, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}

	recs := make([]db.FeedbackRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := decodeFeedback(raw)
		if err != nil {
			return nil, &db.Error{Op: db.OpLRange, Err: err}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
