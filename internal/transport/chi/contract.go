package chi

import (
	"context"

	"github.com/kailas-cloud/feedradar/internal/domain/cycle"
	domfb "github.com/kailas-cloud/feedradar/internal/domain/feedback"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
	healthuc "github.com/kailas-cloud/feedradar/internal/usecase/health"
)

// Pipeline runs one full ingestion cycle.
type Pipeline interface {
	Run(ctx context.Context) (*cycle.Summary, error)
}

// Items reads ranked items from storage.
type Items interface {
	Top(ctx context.Context, limit, offset int, kind string) ([]item.ScoredItem, error)
	Get(ctx context.Context, id string) (item.ScoredItem, error)
}

// Feedback records reader reactions and rescores the affected item.
type Feedback interface {
	Record(ctx context.Context, itemID, rawType string, weight float64) (domfb.Record, error)
}

// Cycles reads persisted cycle summaries.
type Cycles interface {
	Latest(ctx context.Context) (*cycle.Summary, error)
}

// Health reports component health.
type Health interface {
	Check(ctx context.Context) healthuc.Report
}
