package score

import (
	"math"
	"testing"
	"time"

	"github.com/kailas-cloud/feedradar/internal/config"
	domfb "github.com/kailas-cloud/feedradar/internal/domain/feedback"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

const tolerance = 1e-6

var testNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func defaultConfig() config.ScoringConfig {
	return config.ScoringConfig{
		Weights:       config.WeightsConfig{Likes: 1.0, Shares: 2.0, Replies: 1.5, Feedback: 3.0},
		HalfLifeHours: 48,
	}
}

type itemParams struct {
	likes     int
	shares    int
	replies   int
	followers int
	published time.Time
	inferred  bool
	kind      item.Kind
	tags      []string
}

func testItem(t *testing.T, p itemParams) item.Item {
	t.Helper()
	if p.kind == "" {
		p.kind = item.KindHackerNews
	}
	if p.published.IsZero() {
		p.published = testNow
	}
	it, err := item.New(item.Params{
		ExternalID:      "s-1",
		Kind:            p.kind,
		SourceName:      "hn",
		Title:           "Show HN: Open-source robot arm for warehouse picking",
		AuthorFollowers: p.followers,
		Engagement:      item.Engagement{Likes: p.likes, Shares: p.shares, Replies: p.replies},
		PublishedAt:     p.published,
		TimestampInferred: p.inferred,
		Tags:            p.tags,
	})
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	return it
}

func approx(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s: got %v, want %v", label, got, want)
	}
}

func TestScore_DeterministicFixture(t *testing.T) {
	svc := New(defaultConfig())

	it := testItem(t, itemParams{likes: 100, shares: 50, replies: 25, followers: 10000})
	scored := svc.Score(it, domfb.Aggregate{}, testNow)

	want := 237.5 + math.Log(10001)
	approx(t, scored.Score(), want, "score")

	b := scored.Breakdown()
	approx(t, b.Engagement, 237.5, "engagement")
	approx(t, b.Authority, math.Log(10001), "authority")
	approx(t, b.Recency, 1.0, "recency")
}

func TestScore_BreakdownReproducesScore(t *testing.T) {
	cfg := defaultConfig()
	cfg.SourceBonus = map[string]float64{"hackernews": 4}
	cfg.TagBonus = map[string]float64{"manipulation": 2, "simulation": 1}
	svc := New(cfg)

	it := testItem(t, itemParams{
		likes:     17,
		shares:    3,
		replies:   9,
		followers: 420,
		published: testNow.Add(-19 * time.Hour),
		tags:      []string{"manipulation", "simulation", "unbonused"},
	})
	scored := svc.Score(it, domfb.Aggregate{WeightedSum: 2.5}, testNow)

	b := scored.Breakdown()
	approx(t, b.Sum()*b.Recency, scored.Score(), "sum*recency vs score")
	approx(t, b.Engagement, 17+6+13.5, "engagement")
	approx(t, b.SourceBonus, 4, "source bonus")
	approx(t, b.TagBonus, 3, "tag bonus")
	approx(t, b.Feedback, 7.5, "feedback")
}

func TestScore_MonotonicInLikes(t *testing.T) {
	svc := New(defaultConfig())

	prev := -1.0
	for _, likes := range []int{0, 1, 10, 100, 1000} {
		scored := svc.Score(testItem(t, itemParams{likes: likes}), domfb.Aggregate{}, testNow)
		if scored.Score() <= prev {
			t.Fatalf("score must grow with likes: likes=%d score=%v prev=%v", likes, scored.Score(), prev)
		}
		prev = scored.Score()
	}
}

func TestScore_ZeroSignalItem(t *testing.T) {
	svc := New(defaultConfig())

	scored := svc.Score(testItem(t, itemParams{}), domfb.Aggregate{}, testNow)
	approx(t, scored.Score(), 0, "score")
}

func TestScore_FeedbackWeighted(t *testing.T) {
	svc := New(defaultConfig())

	with := svc.Score(testItem(t, itemParams{}), domfb.Aggregate{WeightedSum: 4}, testNow)
	approx(t, with.Breakdown().Feedback, 12, "feedback contribution")
	approx(t, with.Score(), 12, "score")

	negative := svc.Score(testItem(t, itemParams{}), domfb.Aggregate{WeightedSum: -1}, testNow)
	approx(t, negative.Score(), -3, "negative feedback score")
}

func TestRecencyFactor_HalfLife(t *testing.T) {
	svc := New(defaultConfig())

	cases := []struct {
		age  time.Duration
		want float64
	}{
		{0, 1.0},
		{48 * time.Hour, 0.5},
		{96 * time.Hour, 0.25},
		{24 * time.Hour, math.Exp2(-0.5)},
	}
	for _, tc := range cases {
		got := svc.RecencyFactor(testNow.Add(-tc.age), false, testNow)
		approx(t, got, tc.want, tc.age.String())
	}
}

func TestRecencyFactor_FutureClampsToOne(t *testing.T) {
	svc := New(defaultConfig())

	got := svc.RecencyFactor(testNow.Add(2*time.Hour), false, testNow)
	approx(t, got, 1.0, "future timestamp")
}

func TestRecencyFactor_InferredHalves(t *testing.T) {
	svc := New(defaultConfig())

	approx(t, svc.RecencyFactor(testNow, true, testNow), 0.5, "inferred at publication")
	approx(t, svc.RecencyFactor(testNow.Add(3*time.Hour), true, testNow), 0.5, "inferred future")
	approx(t, svc.RecencyFactor(testNow.Add(-48*time.Hour), true, testNow), 0.25, "inferred one half-life")
}

func TestScore_InferredTimestampScoresLower(t *testing.T) {
	svc := New(defaultConfig())

	exact := svc.Score(testItem(t, itemParams{likes: 10}), domfb.Aggregate{}, testNow)
	inferred := svc.Score(testItem(t, itemParams{likes: 10, inferred: true}), domfb.Aggregate{}, testNow)
	approx(t, inferred.Score(), exact.Score()/2, "inferred halves the score")
}
