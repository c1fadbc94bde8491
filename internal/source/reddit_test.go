package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

const redditListingJSON = `{
  "data": {"children": [
    {"data": {"id": "1abc", "name": "t3_1abc",
      "title": "Quadruped balances on loose gravel",
      "selftext": "Field test notes from three weeks outdoors.",
      "author": "legged_lab", "score": 128, "num_comments": 34,
      "num_crossposts": 3, "url": "https://legged.example/gravel",
      "permalink": "/r/robotics/comments/1abc/quadruped/",
      "created_utc": 1723459800, "subreddit": "robotics"}},
    {"data": {"id": "2def", "name": "t3_2def",
      "title": "Torque density across hobby actuators",
      "selftext": "Measured stall torque on twelve servos.",
      "author": "servo_fan", "score": 55, "num_comments": 12,
      "num_crossposts": 0, "url": "",
      "permalink": "/r/robotics/comments/2def/actuators/",
      "created_utc": 0, "subreddit": "robotics"}},
    {"data": {"id": "", "name": "", "title": "deleted post"}}
  ]}
}`

var redditFetchTime = time.Date(2024, 8, 14, 9, 0, 0, 0, time.UTC)

func newTestReddit(t *testing.T, srv *httptest.Server) *Reddit {
	t.Helper()
	a := NewReddit(srv.Client(), zap.NewNop())
	a.baseURL = srv.URL
	a.clock = func() time.Time { return redditFetchTime }
	return a
}

func TestRedditFetch_MapsListing(t *testing.T) {
	var gotPath, gotUA, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(redditListingJSON))
	}))
	t.Cleanup(srv.Close)

	src := config.SourceConfig{Name: "r-robotics", Kind: "reddit", Subreddit: "robotics", MaxItems: 25}
	items, err := newTestReddit(t, srv).Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/r/robotics/new.json" {
		t.Errorf("path = %q, want the new listing by default", gotPath)
	}
	if gotUA != apiUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, apiUserAgent)
	}
	if gotLimit != "25" {
		t.Errorf("limit = %q, want 25", gotLimit)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items (post without id skipped), got %d", len(items))
	}

	first := items[0]
	if first.ExternalID() != "t3_1abc" {
		t.Errorf("ExternalID = %q, want the fullname", first.ExternalID())
	}
	if first.Kind() != item.KindReddit {
		t.Errorf("Kind = %q", first.Kind())
	}
	if first.Title() != "Quadruped balances on loose gravel" {
		t.Errorf("Title = %q", first.Title())
	}
	if first.Body() != "Field test notes from three weeks outdoors." {
		t.Errorf("Body = %q", first.Body())
	}
	if first.URL() != "https://legged.example/gravel" {
		t.Errorf("URL = %q", first.URL())
	}
	if first.AuthorName() != "legged_lab" {
		t.Errorf("AuthorName = %q", first.AuthorName())
	}
	wantEng := item.Engagement{Likes: 128, Shares: 3, Replies: 34}
	if first.Engagement() != wantEng {
		t.Errorf("Engagement = %+v, want %+v", first.Engagement(), wantEng)
	}
	wantPub := time.Unix(1723459800, 0).UTC()
	if !first.PublishedAt().Equal(wantPub) {
		t.Errorf("PublishedAt = %v, want %v", first.PublishedAt(), wantPub)
	}
	if first.TimestampInferred() {
		t.Error("created_utc present, timestamp must not be inferred")
	}
	if !reflect.DeepEqual(first.Tags(), []string{"robotics"}) {
		t.Errorf("Tags = %v, want the subreddit", first.Tags())
	}

	second := items[1]
	if second.URL() != "https://www.reddit.com/r/robotics/comments/2def/actuators/" {
		t.Errorf("URL = %q, want the permalink fallback", second.URL())
	}
	if !second.TimestampInferred() {
		t.Error("created_utc missing, timestamp must be inferred")
	}
	if !second.PublishedAt().Equal(redditFetchTime) {
		t.Errorf("PublishedAt = %v, want the fetch time", second.PublishedAt())
	}
}

func TestRedditSort(t *testing.T) {
	cases := map[string]string{
		"":       "new",
		"new":    "new",
		"hot":    "hot",
		"top":    "top",
		"rising": "rising",
		"best":   "new",
	}
	for in, want := range cases {
		if got := redditSort(in); got != want {
			t.Errorf("redditSort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedditFetch_ErrorStatusIsSourceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	src := config.SourceConfig{Name: "r-robotics", Kind: "reddit", Subreddit: "robotics"}
	_, err := newTestReddit(t, srv).Fetch(context.Background(), src)
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestRedditFetch_SubredditRequired(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestReddit(t, srv).Fetch(context.Background(), config.SourceConfig{Name: "r-robotics", Kind: "reddit"})
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no request for a misconfigured source, got %d", hits.Load())
	}
}
