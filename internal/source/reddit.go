package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

const redditBaseURL = "https://www.reddit.com"

// Reddit fetches subreddit listings through the public JSON endpoints.
// No credentials: the .json listings are readable with a descriptive
// User-Agent. Upvote score maps to Likes, crossposts to Shares, comments
// to Replies.
type Reddit struct {
	client  *http.Client
	logger  *zap.Logger
	clock   func() time.Time
	baseURL string
}

func NewReddit(client *http.Client, logger *zap.Logger) *Reddit {
	return &Reddit{
		client:  defaultClient(client),
		logger:  logger,
		clock:   time.Now,
		baseURL: redditBaseURL,
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Title         string  `json:"title"`
	SelfText      string  `json:"selftext"`
	Author        string  `json:"author"`
	Score         int     `json:"score"`
	NumComments   int     `json:"num_comments"`
	NumCrossposts int     `json:"num_crossposts"`
	URL           string  `json:"url"`
	Permalink     string  `json:"permalink"`
	CreatedUTC    float64 `json:"created_utc"`
	Subreddit     string  `json:"subreddit"`
}

func (a *Reddit) Fetch(ctx context.Context, src config.SourceConfig) ([]item.Item, error) {
	if src.Subreddit == "" {
		return nil, domain.NewSourceError(src.Name, fmt.Errorf("subreddit not configured"))
	}
	limit := maxItems(src)

	endpoint := fmt.Sprintf("%s/r/%s/%s.json?limit=%d",
		a.baseURL, url.PathEscape(src.Subreddit), redditSort(src.Listing), limit)

	var listing redditListing
	if err := getJSON(ctx, a.client, endpoint, "application/json", &listing); err != nil {
		return nil, domain.NewSourceError(src.Name, err)
	}

	now := a.clock().UTC()
	items := make([]item.Item, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if len(items) >= limit {
			break
		}
		it, err := a.convert(src, child.Data, now)
		if err != nil {
			a.logger.Debug("Skipped malformed reddit post",
				zap.String("source", src.Name),
				zap.String("post_id", child.Data.ID),
				zap.Error(err))
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

func (a *Reddit) convert(src config.SourceConfig, post redditPost, now time.Time) (item.Item, error) {
	externalID := post.Name
	if externalID == "" {
		if post.ID == "" {
			return item.Item{}, fmt.Errorf("%w: post has no id", domain.ErrMalformedItem)
		}
		externalID = "t3_" + post.ID
	}

	link := post.URL
	if link == "" && post.Permalink != "" {
		link = redditBaseURL + post.Permalink
	}

	published := now
	inferred := true
	if post.CreatedUTC > 0 {
		published = time.Unix(int64(post.CreatedUTC), 0).UTC()
		inferred = false
	}

	return item.New(item.Params{
		ExternalID: externalID,
		Kind:       item.KindReddit,
		SourceName: src.Name,
		Title:      post.Title,
		Body:       post.SelfText, // markdown, not HTML
		URL:        link,
		AuthorName: post.Author,
		Engagement: item.Engagement{
			Likes:   post.Score,
			Shares:  post.NumCrossposts,
			Replies: post.NumComments,
		},
		PublishedAt:       published,
		TimestampInferred: inferred,
		Tags:              []string{post.Subreddit},
	})
}

// redditSort maps a configured listing to a reddit sort endpoint, falling
// back to new for anything unrecognized.
func redditSort(listing string) string {
	switch listing {
	case "hot", "top", "rising":
		return listing
	default:
		return "new"
	}
}
