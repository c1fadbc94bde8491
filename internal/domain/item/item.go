package item

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MaxBodySize is the maximum item body size in bytes.
const MaxBodySize = 65536 // 64KB

// Engagement holds normalized interaction counts. Upvotes and stars map to
// Likes, retweets/forks/crossposts to Shares, comments to Replies.
type Engagement struct {
	Likes   int
	Shares  int
	Replies int
}

// Item is one unit of ingested content (immutable value object).
// externalID+kind is unique at the adapter boundary but is NOT the dedup key:
// the same announcement cross-posted to two sources carries different IDs.
type Item struct {
	externalID        string
	kind              Kind
	sourceName        string
	title             string
	body              string
	url               string
	authorID          string
	authorName        string
	authorFollowers   int
	engagement        Engagement
	publishedAt       time.Time
	timestampInferred bool
	language          string
	tags              []string
}

// Params carries the raw fields an adapter produces for one Item.
type Params struct {
	ExternalID        string
	Kind              Kind
	SourceName        string
	Title             string
	Body              string
	URL               string
	AuthorID          string
	AuthorName        string
	AuthorFollowers   int
	Engagement        Engagement
	PublishedAt       time.Time
	TimestampInferred bool
	Language          string
	Tags              []string
}

// New validates and creates an Item. Timestamps are normalized to UTC,
// negative counts clamp to zero, tags are lower-cased, deduplicated and
// sorted. An adapter that cannot satisfy these requirements for an entry
// skips the entry as malformed.
func New(p Params) (Item, error) {
	if p.ExternalID == "" {
		return Item{}, fmt.Errorf("external ID is required")
	}
	if p.Kind == "" {
		return Item{}, fmt.Errorf("source kind is required")
	}
	if strings.TrimSpace(p.Title) == "" && strings.TrimSpace(p.Body) == "" {
		return Item{}, fmt.Errorf("item has no text")
	}
	if len(p.Body) > MaxBodySize {
		return Item{}, fmt.Errorf("body too large (max %d bytes)", MaxBodySize)
	}
	if p.PublishedAt.IsZero() {
		return Item{}, fmt.Errorf("published timestamp is required")
	}

	return Item{
		externalID:        p.ExternalID,
		kind:              p.Kind,
		sourceName:        p.SourceName,
		title:             strings.TrimSpace(p.Title),
		body:              strings.TrimSpace(p.Body),
		url:               strings.TrimSpace(p.URL),
		authorID:          p.AuthorID,
		authorName:        p.AuthorName,
		authorFollowers:   clampNonNegative(p.AuthorFollowers),
		engagement:        clampEngagement(p.Engagement),
		publishedAt:       p.PublishedAt.UTC(),
		timestampInferred: p.TimestampInferred,
		language:          strings.ToLower(strings.TrimSpace(p.Language)),
		tags:              normalizeTags(p.Tags),
	}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(p Params) Item {
	return Item{
		externalID:        p.ExternalID,
		kind:              p.Kind,
		sourceName:        p.SourceName,
		title:             p.Title,
		body:              p.Body,
		url:               p.URL,
		authorID:          p.AuthorID,
		authorName:        p.AuthorName,
		authorFollowers:   p.AuthorFollowers,
		engagement:        p.Engagement,
		publishedAt:       p.PublishedAt,
		timestampInferred: p.TimestampInferred,
		language:          p.Language,
		tags:              p.Tags,
	}
}

// ExternalID returns the source-scoped identifier.
func (i *Item) ExternalID() string { return i.externalID }

// Kind returns the source kind.
func (i *Item) Kind() Kind { return i.kind }

// SourceName returns the configured source name that produced the item.
func (i *Item) SourceName() string { return i.sourceName }

// Title returns the item title.
func (i *Item) Title() string { return i.title }

// Body returns the summary/body text.
func (i *Item) Body() string { return i.body }

// Text returns the analysis text: title and body concatenated. Length
// checks, keyword extraction and content similarity all run on this string.
func (i *Item) Text() string {
	if i.title == "" {
		return i.body
	}
	if i.body == "" {
		return i.title
	}
	return i.title + "\n\n" + i.body
}

// URL returns the canonical link. Empty is allowed but reduces dedup confidence.
func (i *Item) URL() string { return i.url }

// AuthorID returns the author identifier.
func (i *Item) AuthorID() string { return i.authorID }

// AuthorName returns the author display name.
func (i *Item) AuthorName() string { return i.authorName }

// AuthorFollowers returns the author audience size (0 when unknown).
func (i *Item) AuthorFollowers() int { return i.authorFollowers }

// Engagement returns the normalized interaction counts.
func (i *Item) Engagement() Engagement { return i.engagement }

// PublishedAt returns the publication time in UTC.
func (i *Item) PublishedAt() time.Time { return i.publishedAt }

// TimestampInferred reports whether PublishedAt was substituted with fetch
// time because the source declared none.
func (i *Item) TimestampInferred() bool { return i.timestampInferred }

// Language returns the declared content language, empty when unknown.
func (i *Item) Language() string { return i.language }

// Tags returns the topic labels.
func (i *Item) Tags() []string { return i.tags }

// WithTags returns a copy with the given tags (normalized); used when the
// extractor backfills topics after construction.
func (i *Item) WithTags(tags []string) Item {
	c := *i
	c.tags = normalizeTags(tags)
	return c
}

// WithBody returns a copy with the given body; used when the enricher swaps
// a thin summary for extracted article text. Callers keep the size cap.
func (i *Item) WithBody(body string) Item {
	c := *i
	c.body = strings.TrimSpace(body)
	return c
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clampEngagement(e Engagement) Engagement {
	return Engagement{
		Likes:   clampNonNegative(e.Likes),
		Shares:  clampNonNegative(e.Shares),
		Replies: clampNonNegative(e.Replies),
	}
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
