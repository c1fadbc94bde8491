package item

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/feedradar/internal/db"
	domitem "github.com/kailas-cloud/feedradar/internal/domain/item"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	insertItemFn      func(ctx context.Context, rec db.ItemRecord) (bool, error)
	getItemFn         func(ctx context.Context, id string) (db.ItemRecord, error)
	itemExistsFn      func(ctx context.Context, id string) (bool, error)
	recentItemsFn     func(ctx context.Context, since time.Time) ([]db.ItemRecord, error)
	updateItemScoreFn func(ctx context.Context, id string, score float64, breakdown map[string]float64) error
	topItemsFn        func(ctx context.Context, limit, offset int, kind string) ([]db.ItemRecord, error)
}

func (m *mockStore) InsertItem(ctx context.Context, rec db.ItemRecord) (bool, error) {
	if m.insertItemFn != nil {
		return m.insertItemFn(ctx, rec)
	}
	return true, nil
}

func (m *mockStore) GetItem(ctx context.Context, id string) (db.ItemRecord, error) {
	if m.getItemFn != nil {
		return m.getItemFn(ctx, id)
	}
	return db.ItemRecord{}, db.ErrRecordNotFound
}

func (m *mockStore) ItemExists(ctx context.Context, id string) (bool, error) {
	if m.itemExistsFn != nil {
		return m.itemExistsFn(ctx, id)
	}
	return false, nil
}

func (m *mockStore) RecentItems(ctx context.Context, since time.Time) ([]db.ItemRecord, error) {
	if m.recentItemsFn != nil {
		return m.recentItemsFn(ctx, since)
	}
	return nil, nil
}

func (m *mockStore) UpdateItemScore(ctx context.Context, id string, score float64, breakdown map[string]float64) error {
	if m.updateItemScoreFn != nil {
		return m.updateItemScoreFn(ctx, id, score, breakdown)
	}
	return nil
}

func (m *mockStore) TopItems(ctx context.Context, limit, offset int, kind string) ([]db.ItemRecord, error) {
	if m.topItemsFn != nil {
		return m.topItemsFn(ctx, limit, offset, kind)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testScored(t *testing.T) domitem.ScoredItem {
	t.Helper()
	it, err := domitem.New(domitem.Params{
		ExternalID:  "40001",
		Kind:        domitem.KindHackerNews,
		SourceName:  "hackernews",
		Title:       "Show HN: Open-source robot arm",
		Body:        "A 6-DOF arm you can build for under $500.",
		URL:         "https://example.com/arm?utm_source=hn",
		AuthorName:  "builder",
		Engagement:  domitem.Engagement{Likes: 100, Replies: 25},
		PublishedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Language:    "en",
		Tags:        []string{"manipulation"},
	})
	if err != nil {
		t.Fatalf("failed to build item: %v", err)
	}
	return domitem.NewScored(it, domitem.Breakdown{
		Engagement: 137.5,
		Authority:  2.0,
		TagBonus:   1.0,
		Recency:    0.5,
	})
}

func testRecord() db.ItemRecord {
	return db.ItemRecord{
		ID:            "hackernews_abc123",
		ExternalID:    "40001",
		Kind:          "hackernews",
		SourceName:    "hackernews",
		Title:         "Show HN: Open-source robot arm",
		Body:          "A 6-DOF arm you can build for under $500.",
		URL:           "https://example.com/arm",
		NormalizedURL: "example.com/arm",
		Likes:         100,
		Replies:       25,
		PublishedAt:   time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Language:      "en",
		Tags:          []string{"manipulation"},
		Score:         70.25,
		Breakdown: map[string]float64{
			"engagement":     137.5,
			"authority":      2.0,
			"tag_bonus":      1.0,
			"recency_factor": 0.5,
		},
	}
}
