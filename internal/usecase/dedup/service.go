// Package dedup decides whether a candidate item duplicates something in the
// recent window. Cascading checks, cheapest first, short-circuit on the
// first hit: exact normalized URL, then title similarity, then content
// similarity on the full analysis text. Decide is pure: no writes, the
// window is only read.
package dedup

import (
	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
	"github.com/kailas-cloud/feedradar/internal/text"
)

// Rule names the cascade stage that flagged a duplicate.
type Rule string

// Cascade stages.
const (
	RuleURL     Rule = "url"
	RuleTitle   Rule = "title"
	RuleContent Rule = "content"
)

// Decision is the outcome for one candidate. MatchedID identifies the window
// item it collided with.
type Decision struct {
	Duplicate bool
	Rule      Rule
	MatchedID string
}

// Service holds the thresholds and the similarity algorithm.
type Service struct {
	sim              Similarity
	titleThreshold   float64
	contentThreshold float64
	windowDays       int
}

// New creates a dedup service. A nil similarity takes the token-set default.
func New(cfg config.DedupConfig, sim Similarity) *Service {
	if sim == nil {
		sim = SimilarityFunc(text.TokenSetRatio)
	}
	return &Service{
		sim:              sim,
		titleThreshold:   cfg.TitleThreshold,
		contentThreshold: cfg.ContentThreshold,
		windowDays:       cfg.WindowDays,
	}
}

// Decide runs the cascade for one candidate against the window. Thresholds
// are inclusive; empty titles never match by title similarity.
func (s *Service) Decide(candidate item.Item, w *Window) Decision {
	if w == nil || len(w.byDay) == 0 {
		return Decision{}
	}

	if u := text.NormalizeURL(candidate.URL()); u != "" {
		if id, ok := w.byURL[u]; ok {
			return Decision{Duplicate: true, Rule: RuleURL, MatchedID: id}
		}
	}

	day := dayIndex(candidate.PublishedAt())
	horizon := int64(s.windowDays)

	if title := candidate.Title(); title != "" {
		for d := day - horizon; d <= day+horizon; d++ {
			for _, e := range w.byDay[d] {
				if e.title == "" {
					continue
				}
				if s.sim.Ratio(title, e.title) >= s.titleThreshold {
					return Decision{Duplicate: true, Rule: RuleTitle, MatchedID: e.id}
				}
			}
		}
	}

	content := candidate.Text()
	for d := day - horizon; d <= day+horizon; d++ {
		for _, e := range w.byDay[d] {
			if s.sim.Ratio(content, e.txt) >= s.contentThreshold {
				return Decision{Duplicate: true, Rule: RuleContent, MatchedID: e.id}
			}
		}
	}
	return Decision{}
}
