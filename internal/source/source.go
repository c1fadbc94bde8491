// Package source fetches content from external services and normalizes it
// into items. One adapter per source kind; a Registry maps configured kinds
// to adapters so the rest of the pipeline never sees concrete endpoints.
//
// Adapters follow a two-level error contract: a single malformed entry is
// skipped and the fetch continues, while an envelope failure (connection,
// auth, decoding the outer response) fails the whole call as
// ErrSourceUnavailable.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

// apiUserAgent identifies the radar to JSON APIs that require a descriptive
// User-Agent (reddit throttles generic ones).
const apiUserAgent = "FeedRadar/1.0 (Educational Research Tool)"

// maxResponseBytes caps how much of any response body an adapter reads.
const maxResponseBytes = 8 << 20

// Adapter fetches one source kind. Implementations are safe for concurrent
// use; the pipeline calls them from its worker pool.
type Adapter interface {
	Fetch(ctx context.Context, src config.SourceConfig) ([]item.Item, error)
}

// Registry resolves configured source kinds to adapters.
type Registry struct {
	adapters map[item.Kind]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[item.Kind]Adapter)}
}

// Register binds an adapter to a kind, replacing any previous binding.
func (r *Registry) Register(kind item.Kind, a Adapter) {
	r.adapters[kind] = a
}

// Resolve returns the adapter for a kind, or ErrUnknownSourceKind.
func (r *Registry) Resolve(kind item.Kind) (Adapter, error) {
	a, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSourceKind, kind)
	}
	return a, nil
}

// Default returns a registry with the built-in adapters registered, all
// sharing one HTTP client.
func Default(client *http.Client, logger *zap.Logger) *Registry {
	r := NewRegistry()
	r.Register(item.KindRSS, NewRSS(client, logger))
	r.Register(item.KindReddit, NewReddit(client, logger))
	r.Register(item.KindHackerNews, NewHackerNews(client, logger))
	r.Register(item.KindGitHub, NewGitHub(client, logger))
	return r
}

func defaultClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func maxItems(src config.SourceConfig) int {
	if src.MaxItems > 0 {
		return src.MaxItems
	}
	return config.DefaultMaxItems
}

// getJSON fetches url and decodes the JSON response into out. Any HTTP or
// decode failure is an envelope failure for the caller to wrap.
func getJSON(ctx context.Context, client *http.Client, url, accept string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", apiUserAgent)
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
