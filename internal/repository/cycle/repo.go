// Package cycle persists the latest cycle summary for the API to serve.
package cycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/feedradar/internal/db"
	"github.com/kailas-cloud/feedradar/internal/domain"
	domcycle "github.com/kailas-cloud/feedradar/internal/domain/cycle"
)

// store is the narrow slice of db.Store this repository needs.
type store interface {
	PutLatestSummary(ctx context.Context, data []byte) error
	LatestSummary(ctx context.Context) ([]byte, error)
}

// Repo stores and serves the most recent cycle summary.
type Repo struct {
	store store
}

// New creates a cycle repository backed by the given store.
func New(s store) *Repo {
	return &Repo{store: s}
}

// PutLatest replaces the stored summary.
func (r *Repo) PutLatest(ctx context.Context, sum *domcycle.Summary) error {
	data, err := json.Marshal(toDTO(sum))
	if err != nil {
		return fmt.Errorf("encode summary %s: %w", sum.ID, err)
	}
	if err := r.store.PutLatestSummary(ctx, data); err != nil {
		return fmt.Errorf("store summary %s: %w", sum.ID, err)
	}
	return nil
}

// Latest returns the most recent summary, or ErrSummaryNotFound when no
// cycle has completed yet.
func (r *Repo) Latest(ctx context.Context) (*domcycle.Summary, error) {
	data, err := r.store.LatestSummary(ctx)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, domain.ErrSummaryNotFound
		}
		return nil, fmt.Errorf("load summary: %w", err)
	}

	var dto summaryDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return fromDTO(dto), nil
}
