// Package relevance decides whether an item belongs on the radar: keyword
// and topic gating with exclusion precedence, plus ranked keyword extraction.
package relevance

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
	"github.com/kailas-cloud/feedradar/internal/text"
)

// Gate rejection reasons.
const (
	ReasonLanguage = "language"
	ReasonExcluded = "excluded_keyword"
	ReasonNoMatch  = "no_keyword_match"
)

// Decision is the gate outcome for one item. Topics lists the vocabulary
// topics that matched; the pipeline folds them into the item's tags.
type Decision struct {
	Relevant bool
	Reason   string
	Topics   []string
}

// Service gates items against the configured vocabulary.
type Service struct {
	keywords  []string
	excluded  []string
	languages map[string]bool
	topics    map[string][]string
	topK      int
}

// New creates a relevance service from the configured vocabulary.
func New(cfg config.RelevanceConfig) *Service {
	langs := make(map[string]bool, len(cfg.Languages))
	for _, l := range cfg.Languages {
		langs[primaryLanguage(l)] = true
	}
	return &Service{
		keywords:  cfg.Keywords,
		excluded:  cfg.ExcludeKeywords,
		languages: langs,
		topics:    cfg.Topics,
		topK:      cfg.TopKeywords,
	}
}

// Check gates one item: declared language first, then exclusion keywords
// (exclusion beats any inclusion match), then at least one inclusion keyword
// or topic must appear as a whole word.
func (s *Service) Check(it item.Item) Decision {
	if lang := it.Language(); lang != "" && len(s.languages) > 0 && !s.languages[primaryLanguage(lang)] {
		return Decision{Reason: ReasonLanguage}
	}

	raw := it.Text()
	for _, kw := range s.excluded {
		if text.ContainsWord(raw, kw) {
			return Decision{Reason: ReasonExcluded}
		}
	}

	topics := s.matchTopics(raw)
	if len(topics) > 0 {
		return Decision{Relevant: true, Topics: topics}
	}
	for _, kw := range s.keywords {
		if text.ContainsWord(raw, kw) {
			return Decision{Relevant: true}
		}
	}
	return Decision{Reason: ReasonNoMatch}
}

// matchTopics returns the sorted names of topics with at least one whole-word
// trigger hit in the raw text.
func (s *Service) matchTopics(raw string) []string {
	var matched []string
	for topic, triggers := range s.topics {
		for _, trig := range triggers {
			if text.ContainsWord(raw, trig) {
				matched = append(matched, topic)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched
}

// primaryLanguage reduces a BCP-47-ish code to its lower-cased primary
// subtag ("en-US" -> "en").
func primaryLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		return code[:i]
	}
	return code
}
