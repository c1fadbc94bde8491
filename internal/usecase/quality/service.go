// Package quality rejects items whose text is too short, a placeholder stub,
// or carries a broken link. Evaluation is a pure predicate: rejected items
// are counted outcomes for the cycle summary, never errors.
package quality

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
	"github.com/kailas-cloud/feedradar/internal/text"
)

// Verdict reasons, retained for observability.
const (
	ReasonStub       = "stub_content"
	ReasonTitleEcho  = "body_repeats_title"
	ReasonTooShort   = "too_short"
	ReasonInvalidURL = "invalid_url"
)

// Verdict is the outcome of evaluating one item.
type Verdict struct {
	OK     bool
	Reason string
}

// Service evaluates items against the quality rules.
type Service struct {
	minLength int
	patterns  []*regexp.Regexp
}

// New compiles the configured stub patterns. Patterns are case-insensitive
// regular expressions; a pattern rejects when it matches at the start of the
// folded analysis text or the folded body.
func New(cfg config.QualityConfig) (*Service, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.StubPatterns))
	for _, p := range cfg.StubPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("%w: quality.stub_patterns %q: %v", domain.ErrConfiguration, p, err)
		}
		patterns = append(patterns, re)
	}
	return &Service{minLength: cfg.MinLength, patterns: patterns}, nil
}

// Evaluate applies the quality rules to one item: stub text first, then the
// minimum length, then link validity. The first failed rule wins.
func (s *Service) Evaluate(it item.Item) Verdict {
	if s.StubText(it.Text()) || s.StubText(it.Body()) {
		return Verdict{Reason: ReasonStub}
	}
	if body := text.Fold(it.Body()); body != "" && body == text.Fold(it.Title()) {
		return Verdict{Reason: ReasonTitleEcho}
	}
	if utf8.RuneCountInString(text.CollapseWhitespace(it.Text())) < s.minLength {
		return Verdict{Reason: ReasonTooShort}
	}
	if u := it.URL(); u != "" && !text.ValidURL(u) {
		return Verdict{Reason: ReasonInvalidURL}
	}
	return Verdict{OK: true}
}

// StubText reports whether raw text opens with a stub pattern. The enricher
// applies the same patterns to extracted article text before swapping bodies.
func (s *Service) StubText(raw string) bool {
	folded := text.Fold(raw)
	for _, re := range s.patterns {
		if prefixMatch(re, folded) {
			return true
		}
	}
	return false
}

func prefixMatch(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}
