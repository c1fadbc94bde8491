package item

// Breakdown records each named score contribution pre-multiplication plus the
// applied recency factor, so the final score is always reproducible:
// Score == Sum() * Recency within floating tolerance.
type Breakdown struct {
	Engagement  float64
	Authority   float64
	SourceBonus float64
	TagBonus    float64
	Feedback    float64
	Recency     float64
}

// Sum returns the pre-decay contribution total.
func (b Breakdown) Sum() float64 {
	return b.Engagement + b.Authority + b.SourceBonus + b.TagBonus + b.Feedback
}

// Total returns the final score: contribution sum scaled by the recency factor.
func (b Breakdown) Total() float64 { return b.Sum() * b.Recency }

// ScoredItem is an Item with its computed score and explainability breakdown.
type ScoredItem struct {
	Item
	score     float64
	breakdown Breakdown
}

// NewScored derives the score from the breakdown, which keeps the two
// consistent by construction.
func NewScored(it Item, b Breakdown) ScoredItem {
	return ScoredItem{Item: it, score: b.Total(), breakdown: b}
}

// ReconstructScored creates a ScoredItem from stored values without
// recomputation (storage hydration).
func ReconstructScored(it Item, score float64, b Breakdown) ScoredItem {
	return ScoredItem{Item: it, score: score, breakdown: b}
}

// Score returns the final score.
func (s *ScoredItem) Score() float64 { return s.score }

// Breakdown returns the score breakdown.
func (s *ScoredItem) Breakdown() Breakdown { return s.breakdown }
