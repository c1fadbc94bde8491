package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
	"github.com/kailas-cloud/feedradar/internal/usecase/quality"
)

func testConfig() config.EnrichConfig {
	return config.EnrichConfig{Enabled: true, MinBody: 100, MinExtracted: 50, TimeoutSec: 2}
}

func newTestService(t *testing.T, client *http.Client) *Service {
	t.Helper()
	stubs, err := quality.New(config.QualityConfig{MinLength: 40, StubPatterns: config.DefaultStubPatterns})
	if err != nil {
		t.Fatalf("quality.New: %v", err)
	}
	return New(testConfig(), stubs, client, zap.NewNop())
}

func thinItem(t *testing.T, url string) item.Item {
	t.Helper()
	it, err := item.New(item.Params{
		ExternalID:  "e-1",
		Kind:        item.KindRSS,
		SourceName:  "blog",
		Title:       "Robot arm firmware goes open source",
		Body:        "Short teaser.",
		URL:         url,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	return it
}

func serve(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestEnrich_ReplacesThinBody(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>Post</title></head><body>
<nav>Home News About</nav>
<article>
<h1>Robot arm firmware goes open source</h1>
<p>` + strings.Repeat("The controller stack was published with detailed integration docs. ", 4) + `</p>
</article>
<footer>All rights reserved</footer>
</body></html>`
	srv, hits := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	})

	svc := newTestService(t, srv.Client())
	got := svc.Enrich(context.Background(), thinItem(t, srv.URL))

	if hits.Load() != 1 {
		t.Fatalf("expected one page fetch, got %d", hits.Load())
	}
	if !strings.Contains(got.Body(), "controller stack was published") {
		t.Errorf("expected the article text as body, got %q", got.Body())
	}
	if strings.Contains(got.Body(), "Home News About") {
		t.Errorf("navigation chrome must be stripped, got %q", got.Body())
	}
	if strings.Contains(got.Body(), "All rights reserved") {
		t.Errorf("footer chrome must be stripped, got %q", got.Body())
	}
}

func TestEnrich_SkipsSubstantialBody(t *testing.T) {
	srv, hits := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<article>never read</article>"))
	})

	svc := newTestService(t, srv.Client())
	it := thinItem(t, srv.URL)
	it = it.WithBody(strings.Repeat("A body already long enough to keep. ", 5))

	got := svc.Enrich(context.Background(), it)

	if hits.Load() != 0 {
		t.Errorf("expected no fetch for a substantial body, got %d", hits.Load())
	}
	if got.Body() != it.Body() {
		t.Errorf("expected the body unchanged, got %q", got.Body())
	}
}

func TestEnrich_SkipsWithoutFetchableURL(t *testing.T) {
	svc := newTestService(t, nil)

	it := thinItem(t, "")
	if got := svc.Enrich(context.Background(), it); got.Body() != it.Body() {
		t.Errorf("expected the body unchanged without a URL, got %q", got.Body())
	}
}

func TestEnrich_KeepsOriginalOnHTTPError(t *testing.T) {
	srv, _ := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	svc := newTestService(t, srv.Client())
	it := thinItem(t, srv.URL)

	if got := svc.Enrich(context.Background(), it); got.Body() != it.Body() {
		t.Errorf("expected the body unchanged on 404, got %q", got.Body())
	}
}

func TestEnrich_KeepsOriginalWhenExtractionThin(t *testing.T) {
	srv, _ := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><article>Too short.</article></body></html>`))
	})

	svc := newTestService(t, srv.Client())
	it := thinItem(t, srv.URL)

	if got := svc.Enrich(context.Background(), it); got.Body() != it.Body() {
		t.Errorf("expected the body unchanged for thin extraction, got %q", got.Body())
	}
}

func TestEnrich_RejectsStubPage(t *testing.T) {
	page := `<html><body><article>Read more about our premium subscription plans and unlock every` +
		` robotics deep dive published on this site today.</article></body></html>`
	srv, _ := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	})

	svc := newTestService(t, srv.Client())
	it := thinItem(t, srv.URL)

	if got := svc.Enrich(context.Background(), it); got.Body() != it.Body() {
		t.Errorf("a stub page must not replace the body, got %q", got.Body())
	}
}

func TestEnrich_MetaDescriptionFallback(t *testing.T) {
	page := `<html><head>
<meta name="description" content="A sixty plus character description of the robotics article contents here.">
</head><body><div class="promo">Subscribe</div></body></html>`
	srv, _ := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	})

	svc := newTestService(t, srv.Client())
	got := svc.Enrich(context.Background(), thinItem(t, srv.URL))

	want := "A sixty plus character description of the robotics article contents here."
	if got.Body() != want {
		t.Errorf("expected the meta description as body, got %q", got.Body())
	}
}

func TestEnrich_TimeoutKeepsOriginal(t *testing.T) {
	srv, _ := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte("<article>late</article>"))
	})

	svc := newTestService(t, srv.Client())
	svc.timeout = 30 * time.Millisecond
	it := thinItem(t, srv.URL)

	start := time.Now()
	got := svc.Enrich(context.Background(), it)
	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Errorf("expected the timeout to cut the fetch short, took %v", elapsed)
	}
	if got.Body() != it.Body() {
		t.Errorf("expected the body unchanged on timeout, got %q", got.Body())
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	got := truncate("héllo", 2)
	if got != "h" {
		t.Errorf("expected a rune-safe cut, got %q", got)
	}
	if s := "short"; truncate(s, 10) != s {
		t.Errorf("expected strings under the limit untouched")
	}
}
