package feedback

import (
	"context"
	"time"

	domfb "github.com/kailas-cloud/feedradar/internal/domain/feedback"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

// Records is the storage contract for feedback records.
type Records interface {
	Append(ctx context.Context, rec domfb.Record) error
	ByItem(ctx context.Context, itemID string) ([]domfb.Record, error)
}

// Items reads and re-scores stored items.
type Items interface {
	Get(ctx context.Context, id string) (item.ScoredItem, error)
	UpdateScore(ctx context.Context, id string, score float64, b item.Breakdown) error
}

// Scorer recomputes an item's score from a feedback aggregate.
type Scorer interface {
	Score(it item.Item, agg domfb.Aggregate, now time.Time) item.ScoredItem
}
