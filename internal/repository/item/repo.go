// Package item persists domain items through the db store facade.
package item

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/feedradar/internal/db"
	"github.com/kailas-cloud/feedradar/internal/domain"
	domitem "github.com/kailas-cloud/feedradar/internal/domain/item"
)

// store is the consumer interface over the db facade (ISP).
type store interface {
	InsertItem(ctx context.Context, rec db.ItemRecord) (bool, error)
	GetItem(ctx context.Context, id string) (db.ItemRecord, error)
	ItemExists(ctx context.Context, id string) (bool, error)
	RecentItems(ctx context.Context, since time.Time) ([]db.ItemRecord, error)
	UpdateItemScore(ctx context.Context, id string, score float64, breakdown map[string]float64) error
	TopItems(ctx context.Context, limit, offset int, kind string) ([]db.ItemRecord, error)
}

// Repo implements the item persistence collaborators of the pipeline,
// feedback and query services.
type Repo struct {
	store store
}

// New creates an item repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert persists a scored item. Returns domain.ErrPersistenceConflict when
// the identity was already stored, which callers count as a duplicate rather
// than a failure.
func (r *Repo) Insert(ctx context.Context, scored domitem.ScoredItem) error {
	rec := toRecord(scored, time.Now().UTC())
	created, err := r.store.InsertItem(ctx, rec)
	if err != nil {
		return fmt.Errorf("insert item %s: %w", rec.ID, err)
	}
	if !created {
		return fmt.Errorf("insert item %s: %w", rec.ID, domain.ErrPersistenceConflict)
	}
	return nil
}

// Exists reports whether the item identity is already persisted.
func (r *Repo) Exists(ctx context.Context, it domitem.Item) (bool, error) {
	ok, err := r.store.ItemExists(ctx, it.ID())
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", it.ID(), err)
	}
	return ok, nil
}

// RecentWindow returns plain items published at or after since, newest first.
func (r *Repo) RecentWindow(ctx context.Context, since time.Time) ([]domitem.Item, error) {
	recs, err := r.store.RecentItems(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("recent items: %w", err)
	}

	items := make([]domitem.Item, 0, len(recs))
	for _, rec := range recs {
		items = append(items, toDomainItem(rec))
	}
	return items, nil
}

// Get returns one scored item by storage id.
func (r *Repo) Get(ctx context.Context, id string) (domitem.ScoredItem, error) {
	rec, err := r.store.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return domitem.ScoredItem{}, domain.ErrItemNotFound
		}
		return domitem.ScoredItem{}, fmt.Errorf("get item %s: %w", id, err)
	}
	return toDomainScored(rec), nil
}

// UpdateScore rewrites the stored score and breakdown for id.
func (r *Repo) UpdateScore(ctx context.Context, id string, score float64, b domitem.Breakdown) error {
	if err := r.store.UpdateItemScore(ctx, id, score, breakdownToMap(b)); err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("update score %s: %w", id, err)
	}
	return nil
}

// Top returns scored items ranked highest first. kind "" means all kinds.
func (r *Repo) Top(ctx context.Context, limit, offset int, kind string) ([]domitem.ScoredItem, error) {
	recs, err := r.store.TopItems(ctx, limit, offset, kind)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}

	items := make([]domitem.ScoredItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, toDomainScored(rec))
	}
	return items, nil
}
