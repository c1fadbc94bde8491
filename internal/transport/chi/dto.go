package chi

import (
	"time"

	"github.com/kailas-cloud/feedradar/internal/domain/cycle"
	domfb "github.com/kailas-cloud/feedradar/internal/domain/feedback"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
	healthuc "github.com/kailas-cloud/feedradar/internal/usecase/health"
)

// errorCode identifies a class of API error in the response envelope.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeUnauthorized     errorCode = "unauthorized"
	codeItemNotFound     errorCode = "item_not_found"
	codeSummaryNotFound  errorCode = "summary_not_found"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type engagementResponse struct {
	Likes   int `json:"likes"`
	Shares  int `json:"shares"`
	Replies int `json:"replies"`
}

type breakdownResponse struct {
	Engagement  float64 `json:"engagement"`
	Authority   float64 `json:"authority"`
	SourceBonus float64 `json:"source_bonus"`
	TagBonus    float64 `json:"tag_bonus"`
	Feedback    float64 `json:"feedback"`
	Recency     float64 `json:"recency"`
}

type itemResponse struct {
	ID                string             `json:"id"`
	ExternalID        string             `json:"external_id"`
	Kind              string             `json:"kind"`
	SourceName        string             `json:"source_name"`
	Title             string             `json:"title"`
	Body              string             `json:"body,omitempty"`
	URL               string             `json:"url,omitempty"`
	AuthorName        string             `json:"author_name,omitempty"`
	Engagement        engagementResponse `json:"engagement"`
	PublishedAt       time.Time          `json:"published_at"`
	TimestampInferred bool               `json:"timestamp_inferred,omitempty"`
	Language          string             `json:"language,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
	Score             float64            `json:"score"`
	Breakdown         breakdownResponse  `json:"breakdown"`
}

type itemListResponse struct {
	Items  []itemResponse `json:"items"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Count  int            `json:"count"`
}

type cycleResponse struct {
	ID           string            `json:"id"`
	StartedAt    time.Time         `json:"started_at"`
	DurationMS   int64             `json:"duration_ms"`
	Fetched      int               `json:"fetched"`
	Rejected     map[string]int    `json:"rejected"`
	SourceErrors map[string]string `json:"source_errors,omitempty"`
	Persisted    []itemResponse    `json:"persisted"`
}

type feedbackRequest struct {
	ItemID string  `json:"item_id"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight,omitempty"`
}

type feedbackResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Type      string    `json:"type"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func itemToResponse(s *item.ScoredItem) itemResponse {
	eng := s.Engagement()
	b := s.Breakdown()
	return itemResponse{
		ID:         s.ID(),
		ExternalID: s.ExternalID(),
		Kind:       s.Kind().String(),
		SourceName: s.SourceName(),
		Title:      s.Title(),
		Body:       s.Body(),
		URL:        s.URL(),
		AuthorName: s.AuthorName(),
		Engagement: engagementResponse{
			Likes:   eng.Likes,
			Shares:  eng.Shares,
			Replies: eng.Replies,
		},
		PublishedAt:       s.PublishedAt(),
		TimestampInferred: s.TimestampInferred(),
		Language:          s.Language(),
		Tags:              s.Tags(),
		Score:             s.Score(),
		Breakdown: breakdownResponse{
			Engagement:  b.Engagement,
			Authority:   b.Authority,
			SourceBonus: b.SourceBonus,
			TagBonus:    b.TagBonus,
			Feedback:    b.Feedback,
			Recency:     b.Recency,
		},
	}
}

func cycleToResponse(sum *cycle.Summary) cycleResponse {
	rejected := make(map[string]int, len(sum.Rejected))
	for reason, n := range sum.Rejected {
		rejected[string(reason)] = n
	}
	persisted := make([]itemResponse, len(sum.Persisted))
	for i := range sum.Persisted {
		persisted[i] = itemToResponse(&sum.Persisted[i])
	}
	return cycleResponse{
		ID:           sum.ID,
		StartedAt:    sum.StartedAt,
		DurationMS:   sum.Duration.Milliseconds(),
		Fetched:      sum.Fetched,
		Rejected:     rejected,
		SourceErrors: sum.SourceErrors,
		Persisted:    persisted,
	}
}

func feedbackToResponse(rec *domfb.Record) feedbackResponse {
	return feedbackResponse{
		ID:        rec.ID(),
		ItemID:    rec.ItemID(),
		Type:      string(rec.Type()),
		Weight:    rec.Weight(),
		CreatedAt: rec.CreatedAt(),
	}
}

func healthToResponse(report healthuc.Report) healthResponse {
	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}
	return healthResponse{Status: string(report.Status), Checks: checks}
}
