// Package score ranks items: weighted engagement, author authority, source
// and tag bonuses, reader feedback, all multiplied by recency decay.
package score

import (
	"math"
	"time"

	"github.com/kailas-cloud/feedradar/internal/config"
	domfb "github.com/kailas-cloud/feedradar/internal/domain/feedback"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

// Service computes item scores. Pure given its inputs: the feedback
// aggregate is a parameter, never fetched here.
type Service struct {
	likes       float64
	shares      float64
	replies     float64
	feedback    float64
	sourceBonus map[string]float64
	tagBonus    map[string]float64
	halfLife    time.Duration
}

// New creates a scoring service from resolved config.
func New(cfg config.ScoringConfig) *Service {
	return &Service{
		likes:       cfg.Weights.Likes,
		shares:      cfg.Weights.Shares,
		replies:     cfg.Weights.Replies,
		feedback:    cfg.Weights.Feedback,
		sourceBonus: cfg.SourceBonus,
		tagBonus:    cfg.TagBonus,
		halfLife:    time.Duration(cfg.HalfLifeHours) * time.Hour,
	}
}

// Score computes the ranked score of one item at the given reference time.
// The breakdown records every contribution before the recency
// multiplication, so the score stays reproducible from its parts.
func (s *Service) Score(it item.Item, agg domfb.Aggregate, now time.Time) item.ScoredItem {
	eng := it.Engagement()

	b := item.Breakdown{
		Engagement: float64(eng.Likes)*s.likes +
			float64(eng.Shares)*s.shares +
			float64(eng.Replies)*s.replies,
		Authority:   math.Log1p(float64(it.AuthorFollowers())),
		SourceBonus: s.sourceBonus[it.Kind().String()],
		Feedback:    agg.WeightedSum * s.feedback,
		Recency:     s.RecencyFactor(it.PublishedAt(), it.TimestampInferred(), now),
	}
	for _, tag := range it.Tags() {
		b.TagBonus += s.tagBonus[tag]
	}
	return item.NewScored(it, b)
}

// RecencyFactor returns the decay multiplier for a publication time: 1.0 at
// publication, halved every half-life, clamped to [0, 1]. Future timestamps
// clamp to 1.0. An inferred timestamp halves the factor.
func (s *Service) RecencyFactor(published time.Time, inferred bool, now time.Time) float64 {
	factor := 1.0
	if age := now.Sub(published); age > 0 {
		factor = math.Exp2(-age.Hours() / s.halfLife.Hours())
	}
	if inferred {
		factor /= 2
	}
	return factor
}
