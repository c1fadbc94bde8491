package pipeline

import (
	"context"
	"time"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain/cycle"
	domfb "github.com/kailas-cloud/feedradar/internal/domain/feedback"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
	"github.com/kailas-cloud/feedradar/internal/usecase/dedup"
	"github.com/kailas-cloud/feedradar/internal/usecase/quality"
	"github.com/kailas-cloud/feedradar/internal/usecase/relevance"
)

// Fetcher fetches one configured source. Adapters satisfy this; the registry
// resolves them by kind at wiring time.
type Fetcher interface {
	Fetch(ctx context.Context, src config.SourceConfig) ([]item.Item, error)
}

// BoundSource pairs a source config with its resolved adapter.
type BoundSource struct {
	Config  config.SourceConfig
	Fetcher Fetcher
}

// ItemStore is the persistence contract of a cycle: the snapshot window,
// the exact-ID short-circuit and serialized admission. Insert reports a lost
// duplicate race as ErrPersistenceConflict.
type ItemStore interface {
	RecentWindow(ctx context.Context, since time.Time) ([]item.Item, error)
	Exists(ctx context.Context, it item.Item) (bool, error)
	Insert(ctx context.Context, scored item.ScoredItem) error
}

// SummaryStore keeps the latest cycle summary for delivery.
type SummaryStore interface {
	PutLatest(ctx context.Context, sum *cycle.Summary) error
}

// QualityFilter rejects stub, short and broken items.
type QualityFilter interface {
	Evaluate(it item.Item) quality.Verdict
}

// RelevanceGate decides whether an item belongs on the radar.
type RelevanceGate interface {
	Check(it item.Item) relevance.Decision
}

// Deduper decides whether a candidate duplicates the window.
type Deduper interface {
	Decide(candidate item.Item, w *dedup.Window) dedup.Decision
}

// Scorer ranks an item. Items admitted during a cycle carry no feedback yet,
// so the pipeline passes an empty aggregate.
type Scorer interface {
	Score(it item.Item, agg domfb.Aggregate, now time.Time) item.ScoredItem
}

// Enricher replaces thin bodies with fetched article text. Optional; a nil
// enricher skips the step.
type Enricher interface {
	Enrich(ctx context.Context, it item.Item) item.Item
}
