package cycle

import (
	"sort"
	"time"

	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

// Reason classifies why an item was rejected during a cycle. Rejections are
// counted outcomes, never errors.
type Reason string

// Rejection reasons.
const (
	ReasonQuality   Reason = "quality"
	ReasonRelevance Reason = "relevance"
	ReasonDuplicate Reason = "duplicate"
)

// Summary is the outcome of one fetch cycle. Delivery collaborators consume
// this structure only; they never call into pipeline internals.
type Summary struct {
	ID           string
	StartedAt    time.Time
	Duration     time.Duration
	Fetched      int
	Rejected     map[Reason]int
	SourceErrors map[string]string
	Persisted    []item.ScoredItem
}

// NewSummary creates an empty summary for a starting cycle.
func NewSummary(id string, startedAt time.Time) *Summary {
	return &Summary{
		ID:           id,
		StartedAt:    startedAt.UTC(),
		Rejected:     make(map[Reason]int),
		SourceErrors: make(map[string]string),
	}
}

// Reject counts one rejection.
func (s *Summary) Reject(r Reason) { s.Rejected[r]++ }

// RejectedTotal returns the number of rejections across all reasons.
func (s *Summary) RejectedTotal() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// SortPersisted orders persisted items descending by score; ties break on
// newer publication, then external ID for determinism.
func (s *Summary) SortPersisted() {
	sort.SliceStable(s.Persisted, func(i, j int) bool {
		a, b := &s.Persisted[i], &s.Persisted[j]
		if a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
		if !a.PublishedAt().Equal(b.PublishedAt()) {
			return a.PublishedAt().After(b.PublishedAt())
		}
		return a.ExternalID() < b.ExternalID()
	})
}
