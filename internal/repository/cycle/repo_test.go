package cycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/feedradar/internal/db"
	"github.com/kailas-cloud/feedradar/internal/domain"
	domcycle "github.com/kailas-cloud/feedradar/internal/domain/cycle"
	domitem "github.com/kailas-cloud/feedradar/internal/domain/item"
)

// --- Mocks ---

type mockStore struct {
	putFn    func(ctx context.Context, data []byte) error
	latestFn func(ctx context.Context) ([]byte, error)

	stored []byte
}

func (m *mockStore) PutLatestSummary(ctx context.Context, data []byte) error {
	m.stored = data
	if m.putFn != nil {
		return m.putFn(ctx, data)
	}
	return nil
}

func (m *mockStore) LatestSummary(ctx context.Context) ([]byte, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx)
	}
	if m.stored == nil {
		return nil, &db.Error{Op: db.OpGet, Err: db.ErrRecordNotFound}
	}
	return m.stored, nil
}

func testSummary(t *testing.T) *domcycle.Summary {
	t.Helper()
	sum := domcycle.NewSummary("cy_1", time.Date(2026, 2, 10, 6, 0, 0, 0, time.UTC))
	sum.Duration = 1500 * time.Millisecond
	sum.Fetched = 12
	sum.Reject(domcycle.ReasonQuality)
	sum.Reject(domcycle.ReasonDuplicate)
	sum.Reject(domcycle.ReasonDuplicate)
	sum.SourceErrors["r/robotics"] = "source unavailable: timeout"

	it := domitem.Reconstruct(domitem.Params{
		ExternalID:  "40001",
		Kind:        domitem.KindHackerNews,
		SourceName:  "hn",
		Title:       "Show HN: Open-source robot arm",
		Body:        "A fully open six axis arm with published CAD and firmware.",
		URL:         "https://example.com/arm",
		Engagement:  domitem.Engagement{Likes: 100, Replies: 25},
		PublishedAt: time.Date(2026, 2, 10, 5, 0, 0, 0, time.UTC),
		Tags:        []string{"manipulation"},
	})
	sum.Persisted = append(sum.Persisted, domitem.NewScored(it, domitem.Breakdown{
		Engagement: 137.5,
		TagBonus:   1,
		Recency:    0.5,
	}))
	return sum
}

// --- Tests ---

func TestPutLatest_RoundTrip(t *testing.T) {
	store := &mockStore{}
	repo := New(store)
	ctx := context.Background()

	want := testSummary(t)
	if err := repo.PutLatest(ctx, want); err != nil {
		t.Fatalf("PutLatest: %v", err)
	}
	if store.stored == nil {
		t.Fatal("expected summary bytes in the store")
	}

	got, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("expected ID %s, got %s", want.ID, got.ID)
	}
	if !got.StartedAt.Equal(want.StartedAt) {
		t.Errorf("expected startedAt %v, got %v", want.StartedAt, got.StartedAt)
	}
	if got.Duration != want.Duration {
		t.Errorf("expected duration %v, got %v", want.Duration, got.Duration)
	}
	if got.Fetched != 12 {
		t.Errorf("expected fetched 12, got %d", got.Fetched)
	}
	if got.Rejected[domcycle.ReasonDuplicate] != 2 || got.Rejected[domcycle.ReasonQuality] != 1 {
		t.Errorf("unexpected rejected counts %v", got.Rejected)
	}
	if got.SourceErrors["r/robotics"] == "" {
		t.Errorf("expected source error entry, got %v", got.SourceErrors)
	}

	if len(got.Persisted) != 1 {
		t.Fatalf("expected 1 persisted item, got %d", len(got.Persisted))
	}
	p := &got.Persisted[0]
	if p.ExternalID() != "40001" || p.Kind() != domitem.KindHackerNews {
		t.Errorf("unexpected item identity %s/%s", p.Kind(), p.ExternalID())
	}
	if p.Score() != 69.25 {
		t.Errorf("expected score 69.25, got %v", p.Score())
	}
	if b := p.Breakdown(); b.Engagement != 137.5 || b.Recency != 0.5 {
		t.Errorf("unexpected breakdown %+v", b)
	}
	if tags := p.Tags(); len(tags) != 1 || tags[0] != "manipulation" {
		t.Errorf("unexpected tags %v", tags)
	}
}

func TestLatest_NotFound(t *testing.T) {
	repo := New(&mockStore{})

	_, err := repo.Latest(context.Background())
	if !errors.Is(err, domain.ErrSummaryNotFound) {
		t.Fatalf("expected ErrSummaryNotFound, got %v", err)
	}
}

func TestLatest_StoreError(t *testing.T) {
	store := &mockStore{latestFn: func(context.Context) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection refused")}
	}}
	repo := New(store)

	_, err := repo.Latest(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrSummaryNotFound) {
		t.Error("infrastructure failures must not read as not-found")
	}
}

func TestLatest_CorruptPayload(t *testing.T) {
	store := &mockStore{latestFn: func(context.Context) ([]byte, error) {
		return []byte("{not json"), nil
	}}
	repo := New(store)

	if _, err := repo.Latest(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestPutLatest_StoreError(t *testing.T) {
	store := &mockStore{putFn: func(context.Context, []byte) error {
		return &db.Error{Op: db.OpSet, Err: errors.New("connection refused")}
	}}
	repo := New(store)

	if err := repo.PutLatest(context.Background(), testSummary(t)); err == nil {
		t.Fatal("expected error")
	}
}
