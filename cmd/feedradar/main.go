// Package main is the feedradar binary entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/config"
	"github.com/kailas-cloud/feedradar/internal/db"
	dbRedis "github.com/kailas-cloud/feedradar/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/feedradar/internal/db/sqlite"
	"github.com/kailas-cloud/feedradar/internal/domain/cycle"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
	"github.com/kailas-cloud/feedradar/internal/enrich"
	logpkg "github.com/kailas-cloud/feedradar/internal/logger"
	"github.com/kailas-cloud/feedradar/internal/metrics"
	cyclerepo "github.com/kailas-cloud/feedradar/internal/repository/cycle"
	feedbackrepo "github.com/kailas-cloud/feedradar/internal/repository/feedback"
	itemrepo "github.com/kailas-cloud/feedradar/internal/repository/item"
	"github.com/kailas-cloud/feedradar/internal/scheduler"
	"github.com/kailas-cloud/feedradar/internal/source"
	chiTransport "github.com/kailas-cloud/feedradar/internal/transport/chi"
	"github.com/kailas-cloud/feedradar/internal/usecase/dedup"
	feedbackuc "github.com/kailas-cloud/feedradar/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/feedradar/internal/usecase/health"
	"github.com/kailas-cloud/feedradar/internal/usecase/pipeline"
	"github.com/kailas-cloud/feedradar/internal/usecase/quality"
	"github.com/kailas-cloud/feedradar/internal/usecase/relevance"
	"github.com/kailas-cloud/feedradar/internal/usecase/score"
	"github.com/kailas-cloud/feedradar/internal/version"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "feedradar",
		Short: "Multi-source content radar",
		Long: `FeedRadar ingests content from RSS feeds, Reddit, Hacker News and GitHub,
filters and deduplicates it, and serves a ranked feed over HTTP.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file path (default: config/<ENV>.yaml)")

	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(fetchCmd(&configPath))
	cmd.AddCommand(backfillCmd(&configPath))
	cmd.AddCommand(versionCmd())
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with optional scheduled cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := build(*configPath, 0)
			if err != nil {
				return err
			}
			defer rt.close()
			return rt.serve()
		},
	}
}

func fetchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Run one ingestion cycle and print its summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := build(*configPath, 0)
			if err != nil {
				return err
			}
			defer rt.close()
			return rt.runOnce(cmd.Context())
		},
	}
}

func backfillCmd(configPath *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Run one cycle with a widened window for history import",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			rt, err := build(*configPath, days)
			if err != nil {
				return err
			}
			defer rt.close()
			return rt.runOnce(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "window size in days")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("feedradar %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}

// backfillMaxItems is the per-source floor for history imports. Upstreams
// with smaller hard caps (GitHub search, reddit listings) clamp it themselves.
const backfillMaxItems = 200

// runtime bundles the wired application for one command invocation.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	store  db.Store
	pipe   *pipeline.Service
	server *chiTransport.Server
}

func (rt *runtime) close() {
	rt.store.Close()
	_ = rt.logger.Sync()
}

// build wires the full application. windowDays overrides the configured
// dedup window when positive (backfill).
func build(configPath string, windowDays int) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Backfill pulls deeper listings and compares against a wider window.
	if windowDays > 0 {
		widenSources(cfg.Sources)
	}

	env := config.GetEnv()
	logger, err := logpkg.New(env, cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting feedradar",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	var store db.Store
	switch cfg.Storage.Driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Storage.Redis.Addrs,
			Password:  cfg.Storage.Redis.Password,
			KeyPrefix: cfg.Storage.KeyPrefix,
		})
	case "sqlite":
		store, err = dbSQLite.NewStore(dbSQLite.Config{Path: cfg.Storage.SQLite.Path})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	readyCtx := context.Background()
	if err := store.WaitForReady(readyCtx, time.Duration(cfg.Storage.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("storage not ready: %w", err)
	}
	logger.Info("Connected to storage", zap.String("driver", cfg.Storage.Driver))

	// Register cycle metrics explicitly (no init())
	metrics.RegisterCycleMetrics()

	itemRepo := itemrepo.New(store)
	cycleRepo := cyclerepo.New(store)
	fbRepo := feedbackrepo.New(store)

	qualitySvc, err := quality.New(cfg.Quality)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("quality filter: %w", err)
	}
	relevanceSvc := relevance.New(cfg.Relevance)

	sim, err := dedup.ForAlgorithm(cfg.Dedup.Algorithm)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("dedup similarity: %w", err)
	}
	deduper := dedup.New(cfg.Dedup, sim)
	scorer := score.New(cfg.Scoring)

	var enricher pipeline.Enricher
	if cfg.Enrich.Enabled {
		enricher = enrich.New(cfg.Enrich, qualitySvc, nil, logger)
	}

	// Bind every enabled source to its adapter; an unregistered kind is
	// fatal here rather than a silent no-op source.
	registry := source.Default(nil, logger)
	var sources []pipeline.BoundSource
	for _, src := range cfg.Sources {
		if !src.IsEnabled() {
			continue
		}
		adapter, err := registry.Resolve(item.Kind(src.Kind))
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}
		sources = append(sources, pipeline.BoundSource{Config: src, Fetcher: adapter})
	}
	logger.Info("Sources bound", zap.Int("count", len(sources)))

	pipeCfg := pipeline.Config{
		Concurrency:   cfg.Pipeline.Concurrency,
		SourceTimeout: time.Duration(cfg.Pipeline.SourceTimeoutSec) * time.Second,
		WindowDays:    cfg.Dedup.WindowDays,
	}
	if windowDays > 0 {
		pipeCfg.WindowDays = windowDays
		logger.Info("Backfill mode",
			zap.Int("window_days", windowDays),
			zap.Int("max_items", backfillMaxItems),
		)
	}

	pipe := pipeline.New(sources, itemRepo, cycleRepo, qualitySvc, relevanceSvc, deduper, scorer, enricher, pipeCfg)

	fbSvc := feedbackuc.New(fbRepo, itemRepo, scorer)
	healthSvc := healthuc.New(store)
	server := chiTransport.NewServer(pipe, itemRepo, fbSvc, cycleRepo, healthSvc, cfg.Auth.APIKeys, logger)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		pipe:   pipe,
		server: server,
	}, nil
}

func (rt *runtime) serve() error {
	cfg := rt.cfg

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(rt.pipe, cfg.Scheduler.Timezone, rt.logger)
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		if err := sched.Schedule(cfg.Scheduler.Spec); err != nil {
			return fmt.Errorf("schedule cycles: %w", err)
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
		rt.logger.Info("Scheduler started",
			zap.String("spec", cfg.Scheduler.Spec),
			zap.String("timezone", cfg.Scheduler.Timezone),
		)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      rt.server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		rt.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rt.logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	rt.logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	rt.logger.Info("Server stopped gracefully")
	return nil
}

func (rt *runtime) runOnce(ctx context.Context) error {
	ctx = logpkg.ContextWithLogger(ctx, rt.logger)
	sum, err := rt.pipe.Run(ctx)
	if err != nil {
		return fmt.Errorf("run cycle: %w", err)
	}
	printSummary(sum)
	return nil
}

// widenSources adjusts source configs for a history import: raise the
// per-source cap and prefer the deep Hacker News listing over the recency one.
func widenSources(sources []config.SourceConfig) {
	for i := range sources {
		src := &sources[i]
		if src.MaxItems < backfillMaxItems {
			src.MaxItems = backfillMaxItems
		}
		if src.Kind == string(item.KindHackerNews) && (src.Story == "" || src.Story == "new") {
			src.Story = "top"
		}
	}
}

func printSummary(sum *cycle.Summary) {
	fmt.Printf("cycle %s: fetched %d, rejected %d, persisted %d in %s\n",
		sum.ID, sum.Fetched, sum.RejectedTotal(), len(sum.Persisted),
		sum.Duration.Round(time.Millisecond))
	for _, reason := range []cycle.Reason{cycle.ReasonQuality, cycle.ReasonRelevance, cycle.ReasonDuplicate} {
		if n := sum.Rejected[reason]; n > 0 {
			fmt.Printf("  rejected %s: %d\n", reason, n)
		}
	}
	for name, msg := range sum.SourceErrors {
		fmt.Printf("  source error %s: %s\n", name, msg)
	}
	for i := range sum.Persisted {
		it := &sum.Persisted[i]
		fmt.Printf("  %6.2f  [%s] %s\n", it.Score(), it.Kind(), it.Title())
	}
}
