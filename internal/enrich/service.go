// Package enrich replaces thin item bodies with article text fetched from
// the item's link. Extraction is best effort: any fetch or parse failure
// keeps the item unchanged, an enrichment problem is never an item failure.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
	"github.com/kailas-cloud/feedradar/internal/text"
)

// maxPageBytes caps how much of a fetched page is read.
const maxPageBytes = 2 << 20

// Article pages frequently serve bot user agents a consent or paywall stub,
// so the reader identifies as a regular browser.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// contentSelectors mark the main article node on most publishing platforms.
// Checked in order; the first selector yielding enough text wins.
var contentSelectors = []string{
	"article",
	"[role='main']",
	"main",
	".post-content",
	".entry-content",
	".article-content",
	".story-content",
}

// metaSelectors are the description fallbacks when no content node qualifies.
var metaSelectors = []string{
	"meta[name='description']",
	"meta[property='og:description']",
	"meta[name='twitter:description']",
}

// StubChecker re-applies the quality stub patterns to extracted text, so a
// fetched "Read more" placeholder page cannot replace a real summary.
type StubChecker interface {
	StubText(raw string) bool
}

// Service fetches linked pages and extracts their readable text.
type Service struct {
	client       *http.Client
	stubs        StubChecker
	logger       *zap.Logger
	minBody      int
	minExtracted int
	timeout      time.Duration
}

// New creates an enricher. A nil client gets a default with the configured
// timeout.
func New(cfg config.EnrichConfig, stubs StubChecker, client *http.Client, logger *zap.Logger) *Service {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Service{
		client:       client,
		stubs:        stubs,
		logger:       logger,
		minBody:      cfg.MinBody,
		minExtracted: cfg.MinExtracted,
		timeout:      timeout,
	}
}

// Enrich returns the item with its body replaced by extracted article text.
// Items whose body already meets the minimum, or without a fetchable link,
// pass through untouched; so does anything whose page yields no acceptable
// text.
func (s *Service) Enrich(ctx context.Context, it item.Item) item.Item {
	if utf8.RuneCountInString(it.Body()) >= s.minBody {
		return it
	}
	if !text.ValidURL(it.URL()) {
		return it
	}

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := s.fetchPage(tctx, it.URL())
	if err != nil {
		s.logger.Debug("Failed to fetch article page", zap.String("url", it.URL()), zap.Error(err))
		return it
	}

	extracted := s.extract(page, it.URL())
	if extracted == "" {
		return it
	}

	s.logger.Debug("Replaced thin body with article text",
		zap.String("item_id", it.ID()),
		zap.Int("chars", utf8.RuneCountInString(extracted)),
	)
	return it.WithBody(extracted)
}

func (s *Service) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return data, nil
}

// extract cascades over the extraction strategies: content selectors, then
// readability, then meta description. The first acceptable text wins.
func (s *Service) extract(page []byte, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	doc.Find("script, style, nav, header, footer, aside, form").Remove()

	for _, sel := range contentSelectors {
		if got := s.candidate(doc.Find(sel).First().Text()); got != "" {
			return got
		}
	}

	if u, perr := url.Parse(pageURL); perr == nil {
		if article, rerr := readability.FromReader(bytes.NewReader(page), u); rerr == nil {
			if got := s.candidate(article.TextContent); got != "" {
				return got
			}
		}
	}

	for _, sel := range metaSelectors {
		desc, _ := doc.Find(sel).First().Attr("content")
		if got := s.candidate(desc); got != "" {
			return got
		}
	}
	return ""
}

// candidate cleans one extraction result and validates it as a replacement
// body: long enough, not itself a stub, within the body size cap.
func (s *Service) candidate(raw string) string {
	cleaned := text.CollapseWhitespace(raw)
	if utf8.RuneCountInString(cleaned) < s.minExtracted {
		return ""
	}
	if s.stubs != nil && s.stubs.StubText(cleaned) {
		return ""
	}
	if len(cleaned) > item.MaxBodySize {
		cleaned = truncate(cleaned, item.MaxBodySize)
	}
	return cleaned
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
