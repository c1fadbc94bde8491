package dedup

import (
	"fmt"

	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/text"
)

// Similarity measures how alike two strings are, in [0, 1]. Implementations
// must be symmetric; folding happens inside the implementation, callers pass
// raw strings.
type Similarity interface {
	Ratio(a, b string) float64
}

// SimilarityFunc adapts a plain function to Similarity.
type SimilarityFunc func(a, b string) float64

// Ratio implements Similarity.
func (f SimilarityFunc) Ratio(a, b string) float64 { return f(a, b) }

// ForAlgorithm returns the similarity for a configured algorithm name.
func ForAlgorithm(name string) (Similarity, error) {
	switch name {
	case "", "token_set":
		return SimilarityFunc(text.TokenSetRatio), nil
	case "sequence":
		return SimilarityFunc(text.SequenceRatio), nil
	default:
		return nil, fmt.Errorf("%w: unknown dedup algorithm %q", domain.ErrConfiguration, name)
	}
}
