// Package feedback handles the reaction write path: validate, append the
// record, then bring the stored item score in line with the new aggregate.
package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domfb "github.com/kailas-cloud/feedradar/internal/domain/feedback"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

// Service records reader reactions and keeps item scores in sync with them.
type Service struct {
	records Records
	items   Items
	scorer  Scorer
}

// New creates a feedback service.
func New(records Records, items Items, scorer Scorer) *Service {
	return &Service{records: records, items: items, scorer: scorer}
}

// Record validates and stores one reaction, then recomputes the target
// item's score from its stored state and the full feedback history. A zero
// weight takes the type default.
func (s *Service) Record(ctx context.Context, itemID, rawType string, weight float64) (domfb.Record, error) {
	t, err := domfb.ParseType(rawType)
	if err != nil {
		return domfb.Record{}, err
	}

	scored, err := s.items.Get(ctx, itemID)
	if err != nil {
		return domfb.Record{}, fmt.Errorf("get item %s: %w", itemID, err)
	}

	rec, err := domfb.New(uuid.NewString(), itemID, t, weight, time.Now().UTC())
	if err != nil {
		return domfb.Record{}, err
	}
	if err := s.records.Append(ctx, rec); err != nil {
		return domfb.Record{}, fmt.Errorf("append feedback: %w", err)
	}

	if err := s.rescore(ctx, itemID, scored); err != nil {
		return domfb.Record{}, fmt.Errorf("rescore item %s: %w", itemID, err)
	}
	return rec, nil
}

// Aggregate returns the current aggregate signal for one item.
func (s *Service) Aggregate(ctx context.Context, itemID string) (domfb.Aggregate, error) {
	records, err := s.records.ByItem(ctx, itemID)
	if err != nil {
		return domfb.Aggregate{}, fmt.Errorf("list feedback: %w", err)
	}
	return domfb.Aggregated(records), nil
}

func (s *Service) rescore(ctx context.Context, itemID string, scored item.ScoredItem) error {
	records, err := s.records.ByItem(ctx, itemID)
	if err != nil {
		return err
	}

	rescored := s.scorer.Score(scored.Item, domfb.Aggregated(records), time.Now().UTC())
	return s.items.UpdateScore(ctx, itemID, rescored.Score(), rescored.Breakdown())
}
