package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

const githubBaseURL = "https://api.github.com"

// GitHub fetches repositories matching a configured search query, sorted by
// stars. Stars map to Likes, forks to Shares; repository topics pre-seed
// item tags. Unauthenticated: the search endpoint allows a few calls per
// minute, plenty for one fetch per cycle.
type GitHub struct {
	client  *http.Client
	logger  *zap.Logger
	clock   func() time.Time
	baseURL string
}

func NewGitHub(client *http.Client, logger *zap.Logger) *GitHub {
	return &GitHub{
		client:  defaultClient(client),
		logger:  logger,
		clock:   time.Now,
		baseURL: githubBaseURL,
	}
}

type githubSearchResult struct {
	Items []githubRepo `json:"items"`
}

type githubRepo struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Topics          []string  `json:"topics"`
	CreatedAt       time.Time `json:"created_at"`
	Owner           struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (a *GitHub) Fetch(ctx context.Context, src config.SourceConfig) ([]item.Item, error) {
	if src.Query == "" {
		return nil, domain.NewSourceError(src.Name, fmt.Errorf("search query not configured"))
	}
	limit := maxItems(src)
	perPage := limit
	if perPage > 100 { // search API page cap
		perPage = 100
	}

	endpoint := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
		a.baseURL, url.QueryEscape(src.Query), perPage)

	var result githubSearchResult
	if err := getJSON(ctx, a.client, endpoint, "application/vnd.github.v3+json", &result); err != nil {
		return nil, domain.NewSourceError(src.Name, err)
	}

	now := a.clock().UTC()
	items := make([]item.Item, 0, len(result.Items))
	for _, repo := range result.Items {
		if len(items) >= limit {
			break
		}
		it, err := a.convert(src, repo, now)
		if err != nil {
			a.logger.Debug("Skipped malformed repository",
				zap.String("source", src.Name),
				zap.String("repo", repo.FullName),
				zap.Error(err))
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

func (a *GitHub) convert(src config.SourceConfig, repo githubRepo, now time.Time) (item.Item, error) {
	if repo.ID == 0 {
		return item.Item{}, fmt.Errorf("%w: repository has no id", domain.ErrMalformedItem)
	}

	published := repo.CreatedAt
	inferred := false
	if published.IsZero() {
		published = now
		inferred = true
	}

	return item.New(item.Params{
		ExternalID: strconv.FormatInt(repo.ID, 10),
		Kind:       item.KindGitHub,
		SourceName: src.Name,
		Title:      repo.FullName,
		Body:       repo.Description,
		URL:        repo.HTMLURL,
		AuthorName: repo.Owner.Login,
		Engagement: item.Engagement{
			Likes:  repo.StargazersCount,
			Shares: repo.ForksCount,
		},
		PublishedAt:       published,
		TimestampInferred: inferred,
		Tags:              repo.Topics,
	})
}
