package db

import (
	"context"
	"time"
)

// Store is the persistence facade combining all sub-interfaces. Drivers
// (redis, sqlite) implement the whole facade; consumers depend on the narrow
// sub-interfaces they actually use (ISP).
type Store interface {
	Pinger
	ItemStore
	FeedbackStore
	SummaryStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ItemStore persists and queries item records.
type ItemStore interface {
	// InsertItem stores a new record. Returns false without error when the
	// ID already exists: losing an insert race is a dedup outcome, not a
	// failure.
	InsertItem(ctx context.Context, rec ItemRecord) (bool, error)
	GetItem(ctx context.Context, id string) (ItemRecord, error)
	ItemExists(ctx context.Context, id string) (bool, error)
	// RecentItems returns records published at or after since, newest first.
	RecentItems(ctx context.Context, since time.Time) ([]ItemRecord, error)
	UpdateItemScore(ctx context.Context, id string, score float64, breakdown map[string]float64) error
	// TopItems returns records ordered by descending score. kind "" means
	// all kinds.
	TopItems(ctx context.Context, limit, offset int, kind string) ([]ItemRecord, error)
}

// FeedbackStore persists user feedback records.
type FeedbackStore interface {
	AppendFeedback(ctx context.Context, rec FeedbackRecord) error
	FeedbackByItem(ctx context.Context, itemID string) ([]FeedbackRecord, error)
}

// SummaryStore keeps the latest cycle summary as an opaque blob.
type SummaryStore interface {
	PutLatestSummary(ctx context.Context, data []byte) error
	LatestSummary(ctx context.Context) ([]byte, error)
}
