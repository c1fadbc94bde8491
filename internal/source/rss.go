package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

// RSS fetches RSS and Atom feeds. The feed URL comes from the source config;
// entry GUIDs (falling back to links) become external IDs.
type RSS struct {
	client *http.Client
	logger *zap.Logger
	clock  func() time.Time
}

func NewRSS(client *http.Client, logger *zap.Logger) *RSS {
	return &RSS{
		client: defaultClient(client),
		logger: logger,
		clock:  time.Now,
	}
}

func (a *RSS) Fetch(ctx context.Context, src config.SourceConfig) ([]item.Item, error) {
	if strings.TrimSpace(src.URL) == "" {
		return nil, domain.NewSourceError(src.Name, fmt.Errorf("feed url not configured"))
	}

	feed, err := a.fetchFeed(ctx, src.URL)
	if err != nil {
		return nil, domain.NewSourceError(src.Name, err)
	}

	limit := maxItems(src)
	now := a.clock().UTC()
	items := make([]item.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		it, err := a.convert(src, feed, entry, now)
		if err != nil {
			a.logger.Debug("Skipped malformed feed entry",
				zap.String("source", src.Name),
				zap.String("entry_title", entry.Title),
				zap.Error(err))
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

func (a *RSS) fetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	// Some feeds serve 403 to non-browser agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func (a *RSS) convert(src config.SourceConfig, feed *gofeed.Feed, entry *gofeed.Item, now time.Time) (item.Item, error) {
	externalID := strings.TrimSpace(entry.GUID)
	if externalID == "" {
		externalID = strings.TrimSpace(entry.Link)
	}
	if externalID == "" {
		return item.Item{}, fmt.Errorf("%w: entry has neither guid nor link", domain.ErrMalformedItem)
	}

	body := entry.Content
	if strings.TrimSpace(body) == "" {
		body = entry.Description
	}

	published, inferred := entryTime(entry, now)

	var author string
	if entry.Author != nil {
		author = entry.Author.Name
	}

	return item.New(item.Params{
		ExternalID:        externalID,
		Kind:              item.KindRSS,
		SourceName:        src.Name,
		Title:             entry.Title,
		Body:              stripHTML(body),
		URL:               entry.Link,
		AuthorName:        author,
		PublishedAt:       published,
		TimestampInferred: inferred,
		Language:          feed.Language,
		Tags:              entry.Categories,
	})
}

// entryTime prefers the published date, then the updated date, then the
// fetch time flagged as inferred.
func entryTime(entry *gofeed.Item, now time.Time) (time.Time, bool) {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC(), false
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC(), false
	}
	return now, true
}
