// Package feedback persists user feedback through the db store facade.
package feedback

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/feedradar/internal/db"
	domfb "github.com/kailas-cloud/feedradar/internal/domain/feedback"
)

// store is the consumer interface over the db facade (ISP).
type store interface {
	AppendFeedback(ctx context.Context, rec db.FeedbackRecord) error
	FeedbackByItem(ctx context.Context, itemID string) ([]db.FeedbackRecord, error)
}

// Repo implements the feedback persistence collaborator of the feedback
// service.
type Repo struct {
	store store
}

// New creates a feedback repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Append persists one feedback record.
func (r *Repo) Append(ctx context.Context, rec domfb.Record) error {
	err := r.store.AppendFeedback(ctx, db.FeedbackRecord{
		ID:        rec.ID(),
		ItemID:    rec.ItemID(),
		Type:      string(rec.Type()),
		Weight:    rec.Weight(),
		CreatedAt: rec.CreatedAt(),
	})
	if err != nil {
		return fmt.Errorf("append feedback %s: %w", rec.ID(), err)
	}
	return nil
}

// ByItem returns all feedback recorded for an item, oldest first.
func (r *Repo) ByItem(ctx context.Context, itemID string) ([]domfb.Record, error) {
	recs, err := r.store.FeedbackByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("feedback for %s: %w", itemID, err)
	}

	out := make([]domfb.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domfb.Reconstruct(rec.ID, rec.ItemID, domfb.Type(rec.Type), rec.Weight, rec.CreatedAt))
	}
	return out, nil
}
