package cycle

import (
	"time"

	domcycle "github.com/kailas-cloud/feedradar/internal/domain/cycle"
	domitem "github.com/kailas-cloud/feedradar/internal/domain/item"
)

// summaryDTO is the stored JSON shape of a cycle summary.
type summaryDTO struct {
	ID           string            `json:"id"`
	StartedAt    time.Time         `json:"started_at"`
	DurationMS   int64             `json:"duration_ms"`
	Fetched      int               `json:"fetched"`
	Rejected     map[string]int    `json:"rejected,omitempty"`
	SourceErrors map[string]string `json:"source_errors,omitempty"`
	Persisted    []scoredItemDTO   `json:"persisted"`
}

type scoredItemDTO struct {
	ExternalID        string       `json:"external_id"`
	Kind              string       `json:"kind"`
	SourceName        string       `json:"source_name"`
	Title             string       `json:"title,omitempty"`
	Body              string       `json:"body,omitempty"`
	URL               string       `json:"url,omitempty"`
	AuthorID          string       `json:"author_id,omitempty"`
	AuthorName        string       `json:"author_name,omitempty"`
	AuthorFollowers   int          `json:"author_followers,omitempty"`
	Likes             int          `json:"likes"`
	Shares            int          `json:"shares"`
	Replies           int          `json:"replies"`
	PublishedAt       time.Time    `json:"published_at"`
	TimestampInferred bool         `json:"timestamp_inferred,omitempty"`
	Language          string       `json:"language,omitempty"`
	Tags              []string     `json:"tags,omitempty"`
	Score             float64      `json:"score"`
	Breakdown         breakdownDTO `json:"breakdown"`
}

type breakdownDTO struct {
	Engagement  float64 `json:"engagement"`
	Authority   float64 `json:"authority"`
	SourceBonus float64 `json:"source_bonus"`
	TagBonus    float64 `json:"tag_bonus"`
	Feedback    float64 `json:"feedback"`
	Recency     float64 `json:"recency_factor"`
}

func toDTO(sum *domcycle.Summary) summaryDTO {
	dto := summaryDTO{
		ID:           sum.ID,
		StartedAt:    sum.StartedAt,
		DurationMS:   sum.Duration.Milliseconds(),
		Fetched:      sum.Fetched,
		Rejected:     make(map[string]int, len(sum.Rejected)),
		SourceErrors: sum.SourceErrors,
		Persisted:    make([]scoredItemDTO, 0, len(sum.Persisted)),
	}
	for reason, n := range sum.Rejected {
		dto.Rejected[string(reason)] = n
	}
	for i := range sum.Persisted {
		dto.Persisted = append(dto.Persisted, toItemDTO(&sum.Persisted[i]))
	}
	return dto
}

func toItemDTO(scored *domitem.ScoredItem) scoredItemDTO {
	eng := scored.Engagement()
	b := scored.Breakdown()
	return scoredItemDTO{
		ExternalID:        scored.ExternalID(),
		Kind:              scored.Kind().String(),
		SourceName:        scored.SourceName(),
		Title:             scored.Title(),
		Body:              scored.Body(),
		URL:               scored.URL(),
		AuthorID:          scored.AuthorID(),
		AuthorName:        scored.AuthorName(),
		AuthorFollowers:   scored.AuthorFollowers(),
		Likes:             eng.Likes,
		Shares:            eng.Shares,
		Replies:           eng.Replies,
		PublishedAt:       scored.PublishedAt(),
		TimestampInferred: scored.TimestampInferred(),
		Language:          scored.Language(),
		Tags:              scored.Tags(),
		Score:             scored.Score(),
		Breakdown: breakdownDTO{
			Engagement:  b.Engagement,
			Authority:   b.Authority,
			SourceBonus: b.SourceBonus,
			TagBonus:    b.TagBonus,
			Feedback:    b.Feedback,
			Recency:     b.Recency,
		},
	}
}

func fromDTO(dto summaryDTO) *domcycle.Summary {
	sum := domcycle.NewSummary(dto.ID, dto.StartedAt)
	sum.Duration = time.Duration(dto.DurationMS) * time.Millisecond
	sum.Fetched = dto.Fetched
	for reason, n := range dto.Rejected {
		sum.Rejected[domcycle.Reason(reason)] = n
	}
	for name, msg := range dto.SourceErrors {
		sum.SourceErrors[name] = msg
	}
	sum.Persisted = make([]domitem.ScoredItem, 0, len(dto.Persisted))
	for _, d := range dto.Persisted {
		sum.Persisted = append(sum.Persisted, fromItemDTO(d))
	}
	return sum
}

func fromItemDTO(d scoredItemDTO) domitem.ScoredItem {
	it := domitem.Reconstruct(domitem.Params{
		ExternalID:        d.ExternalID,
		Kind:              domitem.Kind(d.Kind),
		SourceName:        d.SourceName,
		Title:             d.Title,
		Body:              d.Body,
		URL:               d.URL,
		AuthorID:          d.AuthorID,
		AuthorName:        d.AuthorName,
		AuthorFollowers:   d.AuthorFollowers,
		Engagement:        domitem.Engagement{Likes: d.Likes, Shares: d.Shares, Replies: d.Replies},
		PublishedAt:       d.PublishedAt,
		TimestampInferred: d.TimestampInferred,
		Language:          d.Language,
		Tags:              d.Tags,
	})
	return domitem.ReconstructScored(it, d.Score, domitem.Breakdown{
		Engagement:  d.Breakdown.Engagement,
		Authority:   d.Breakdown.Authority,
		SourceBonus: d.Breakdown.SourceBonus,
		TagBonus:    d.Breakdown.TagBonus,
		Feedback:    d.Breakdown.Feedback,
		Recency:     d.Breakdown.Recency,
	})
}
