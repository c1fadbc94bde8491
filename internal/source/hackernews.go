package source

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

const hackerNewsBaseURL = "https://hacker-news.firebaseio.com"

// HackerNews fetches stories through the Firebase API: one call for the
// story ID listing, then one per story. MaxItems bounds the ID listing, so
// it also bounds the request count per cycle. Points map to Likes, comment
// descendants to Replies.
type HackerNews struct {
	client  *http.Client
	logger  *zap.Logger
	clock   func() time.Time
	baseURL string
}

func NewHackerNews(client *http.Client, logger *zap.Logger) *HackerNews {
	return &HackerNews{
		client:  defaultClient(client),
		logger:  logger,
		clock:   time.Now,
		baseURL: hackerNewsBaseURL,
	}
}

type hnStory struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Deleted     bool   `json:"deleted"`
	Dead        bool   `json:"dead"`
}

func (a *HackerNews) Fetch(ctx context.Context, src config.SourceConfig) ([]item.Item, error) {
	listing := fmt.Sprintf("%s/v0/%sstories.json", a.baseURL, hnListing(src.Story))

	var ids []int64
	if err := getJSON(ctx, a.client, listing, "application/json", &ids); err != nil {
		return nil, domain.NewSourceError(src.Name, err)
	}
	if limit := maxItems(src); len(ids) > limit {
		ids = ids[:limit]
	}

	now := a.clock().UTC()
	items := make([]item.Item, 0, len(ids))
	for _, id := range ids {
		var story hnStory
		url := fmt.Sprintf("%s/v0/item/%d.json", a.baseURL, id)
		if err := getJSON(ctx, a.client, url, "application/json", &story); err != nil {
			// A timeout mid-listing fails the source; anything else
			// loses just this story.
			if ctx.Err() != nil {
				return nil, domain.NewSourceError(src.Name, ctx.Err())
			}
			a.logger.Debug("Skipped unreadable story",
				zap.String("source", src.Name),
				zap.Int64("story_id", id),
				zap.Error(err))
			continue
		}
		if story.Type != "story" || story.Deleted || story.Dead {
			continue
		}
		it, err := a.convert(src, story, now)
		if err != nil {
			a.logger.Debug("Skipped malformed story",
				zap.String("source", src.Name),
				zap.Int64("story_id", id),
				zap.Error(err))
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

func (a *HackerNews) convert(src config.SourceConfig, story hnStory, now time.Time) (item.Item, error) {
	if story.ID == 0 {
		return item.Item{}, fmt.Errorf("%w: story has no id", domain.ErrMalformedItem)
	}

	link := story.URL
	if link == "" {
		// Text posts (Ask HN, Show HN without a link) live on the site itself.
		link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
	}

	published := now
	inferred := true
	if story.Time > 0 {
		published = time.Unix(story.Time, 0).UTC()
		inferred = false
	}

	return item.New(item.Params{
		ExternalID: strconv.FormatInt(story.ID, 10),
		Kind:       item.KindHackerNews,
		SourceName: src.Name,
		Title:      story.Title,
		Body:       stripHTML(story.Text),
		URL:        link,
		AuthorName: story.By,
		Engagement: item.Engagement{
			Likes:   story.Score,
			Replies: story.Descendants,
		},
		PublishedAt:       published,
		TimestampInferred: inferred,
	})
}

// hnListing maps a configured story listing to a Firebase endpoint prefix,
// falling back to new.
func hnListing(story string) string {
	switch story {
	case "top", "best", "ask", "show":
		return story
	default:
		return "new"
	}
}
