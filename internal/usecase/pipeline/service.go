// Package pipeline orchestrates one fetch cycle: concurrent source fetches
// feed the filter chain, survivors pass through a single serialized writer,
// and the outcome lands in a cycle summary. Partial success is the normal
// case; per-item failures never escalate to per-source, per-source failures
// never escalate to cycle failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/domain/cycle"
	domfb "github.com/kailas-cloud/feedradar/internal/domain/feedback"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
	"github.com/kailas-cloud/feedradar/internal/logger"
	"github.com/kailas-cloud/feedradar/internal/metrics"
	"github.com/kailas-cloud/feedradar/internal/usecase/dedup"
)

// Config bounds one cycle.
type Config struct {
	Concurrency   int
	SourceTimeout time.Duration
	WindowDays    int
}

// Service runs fetch cycles.
type Service struct {
	sources   []BoundSource
	items     ItemStore
	summaries SummaryStore
	filter    QualityFilter
	gate      RelevanceGate
	deduper   Deduper
	scorer    Scorer
	enricher  Enricher
	cfg       Config
}

// New creates a pipeline service. enricher can be nil.
func New(
	sources []BoundSource,
	items ItemStore,
	summaries SummaryStore,
	filter QualityFilter,
	gate RelevanceGate,
	deduper Deduper,
	scorer Scorer,
	enricher Enricher,
	cfg Config,
) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = config.DefaultConcurrency
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = config.DefaultSourceTimeoutSec * time.Second
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = config.DefaultWindowDays
	}
	return &Service{
		sources:   sources,
		items:     items,
		summaries: summaries,
		filter:    filter,
		gate:      gate,
		deduper:   deduper,
		scorer:    scorer,
		enricher:  enricher,
		cfg:       cfg,
	}
}

// Run executes one full cycle and stores its summary. Only a failed window
// load or context cancellation abort the cycle; failing sources are recorded
// in the summary and skipped, rejections are counted outcomes.
func (s *Service) Run(ctx context.Context) (*cycle.Summary, error) {
	start := time.Now()
	sum := cycle.NewSummary(uuid.NewString(), start)
	log := logger.FromContext(ctx).With(zap.String("cycle_id", sum.ID))

	since := start.UTC().AddDate(0, 0, -s.cfg.WindowDays)
	recent, err := s.items.RecentWindow(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load recent window: %w", err)
	}
	window := dedup.NewWindow(recent)
	log.Info("Cycle started",
		zap.Int("sources", len(s.sources)),
		zap.Int("window_items", window.Len()),
	)

	var mu sync.Mutex
	survivors := make(chan item.ScoredItem, s.cfg.Concurrency*2)

	jobs := make(chan BoundSource, len(s.sources))
	for _, src := range s.sources {
		if src.Config.IsEnabled() {
			jobs <- src
		}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				s.runSource(ctx, src, window, sum, &mu, survivors, log)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(survivors)
	}()

	// Single writer: admissions are serialized and re-checked against the
	// just-inserted set, so two in-flight near-duplicates cannot both land.
	inserted := dedup.NewWindow(nil)
	for scored := range survivors {
		if ctx.Err() != nil {
			continue
		}
		if d := s.deduper.Decide(scored.Item, inserted); d.Duplicate {
			mu.Lock()
			sum.Reject(cycle.ReasonDuplicate)
			mu.Unlock()
			continue
		}
		if err := s.items.Insert(ctx, scored); err != nil {
			if errors.Is(err, domain.ErrPersistenceConflict) {
				mu.Lock()
				sum.Reject(cycle.ReasonDuplicate)
				mu.Unlock()
				continue
			}
			log.Warn("Failed to insert item", zap.String("item_id", scored.ID()), zap.Error(err))
			continue
		}
		inserted.Add(scored.Item)
		sum.Persisted = append(sum.Persisted, scored)
	}

	sum.Duration = time.Since(start)
	sum.SortPersisted()
	if ctx.Err() != nil {
		log.Warn("Cycle canceled", zap.Duration("after", sum.Duration))
		return sum, ctx.Err()
	}

	if err := s.summaries.PutLatest(ctx, sum); err != nil {
		log.Warn("Failed to store cycle summary", zap.Error(err))
	}
	metrics.RecordCycle(sum)
	log.Info("Cycle finished",
		zap.Duration("duration", sum.Duration),
		zap.Int("fetched", sum.Fetched),
		zap.Int("persisted", len(sum.Persisted)),
		zap.Int("rejected", sum.RejectedTotal()),
		zap.Int("source_errors", len(sum.SourceErrors)),
	)
	return sum, nil
}

// runSource fetches one source and pushes its surviving items to the writer.
func (s *Service) runSource(
	ctx context.Context,
	src BoundSource,
	window *dedup.Window,
	sum *cycle.Summary,
	mu *sync.Mutex,
	survivors chan<- item.ScoredItem,
	log *zap.Logger,
) {
	name := src.Config.Name

	fctx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
	items, err := src.Fetcher.Fetch(fctx, src.Config)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			err = domain.NewSourceError(name, err)
		}
		log.Warn("Source fetch failed", zap.String("source", name), zap.Error(err))
		mu.Lock()
		sum.SourceErrors[name] = err.Error()
		mu.Unlock()
		return
	}

	mu.Lock()
	sum.Fetched += len(items)
	mu.Unlock()
	log.Debug("Source fetched", zap.String("source", name), zap.Int("items", len(items)))

	for i := range items {
		scored, reason, ok := s.process(ctx, items[i], window, sum.StartedAt)
		if !ok {
			log.Debug("Item rejected",
				zap.String("source", name),
				zap.String("reason", string(reason)),
			)
			mu.Lock()
			sum.Reject(reason)
			mu.Unlock()
			continue
		}
		select {
		case survivors <- scored:
		case <-ctx.Done():
			return
		}
	}
}

// process runs one item through the filter chain against the snapshot
// window. The returned reason is meaningful only when ok is false.
func (s *Service) process(
	ctx context.Context,
	it item.Item,
	window *dedup.Window,
	now time.Time,
) (item.ScoredItem, cycle.Reason, bool) {
	if v := s.filter.Evaluate(it); !v.OK {
		return item.ScoredItem{}, cycle.ReasonQuality, false
	}

	d := s.gate.Check(it)
	if !d.Relevant {
		return item.ScoredItem{}, cycle.ReasonRelevance, false
	}
	if len(d.Topics) > 0 {
		merged := append(append([]string(nil), it.Tags()...), d.Topics...)
		it = it.WithTags(merged)
	}

	// Re-fetches of an already-persisted item skip enrichment and similarity
	// entirely. A failed lookup falls through; the insert conflict is the
	// backstop.
	if exists, err := s.items.Exists(ctx, it); err == nil && exists {
		return item.ScoredItem{}, cycle.ReasonDuplicate, false
	}

	if s.enricher != nil {
		it = s.enricher.Enrich(ctx, it)
	}

	if dd := s.deduper.Decide(it, window); dd.Duplicate {
		return item.ScoredItem{}, cycle.ReasonDuplicate, false
	}

	scored := s.scorer.Score(it, domfb.Aggregate{}, now)
	return scored, "", true
}
