package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/miradorstack/mirador-rul/internal/cache"
	"github.com/miradorstack/mirador-rul/internal/config"
	"github.com/miradorstack/mirador-rul/internal/engine"
	"github.com/miradorstack/mirador-rul/internal/ingest"
	"github.com/miradorstack/mirador-rul/internal/output"
	"github.com/miradorstack/mirador-rul/internal/repo"
	"github.com/miradorstack/mirador-rul/internal/services"
	"github.com/miradorstack/mirador-rul/internal/utils"
)

func main() {
	var (
		configPath string
		watch      bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&watch, "watch", false, "Rescore whenever the observations file changes")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}
	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, watch); err != nil {
		logger.Error("rul-report failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, watch bool) error {
	clock, err := cfg.Scoring.Clock()
	if err != nil {
		return err
	}

	cacheProvider, err := cache.NewFromConfig(cfg.Cache)
	if err != nil {
		logger.Warn("parameter table cache unavailable", slog.Any("error", err))
		cacheProvider = cache.NoopProvider{}
	}
	defer cacheProvider.Close()

	corpus, err := ingest.LoadCorpus(cfg.Data.TrainingPath)
	if err != nil {
		return fmt.Errorf("load training corpus: %w", err)
	}
	table, _, err := repo.NewTableStore(logger, cacheProvider, cfg.Cache.TableTTL).Load(ctx, corpus)
	if err != nil {
		return fmt.Errorf("build parameter table: %w", err)
	}

	var sink services.ReportSink
	if cfg.Database.Enabled {
		store, err := repo.NewReportStore(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		sink = store
	}

	planner := services.NewPlannerService(logger, engine.NewScorer(logger, table), clock, sink)

	if err := scoreOnce(ctx, cfg, planner, clock); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	return ingest.Watch(ctx, cfg.Data.ObservationsPath, logger, func() {
		if err := scoreOnce(ctx, cfg, planner, clock); err != nil {
			logger.Error("rescoring failed", slog.Any("error", err))
		}
	})
}

func scoreOnce(ctx context.Context, cfg *config.Config, planner *services.PlannerService, clock func() time.Time) error {
	observations, err := ingest.LoadObservations(cfg.Data.ObservationsPath)
	if err != nil {
		return fmt.Errorf("load observations: %w", err)
	}

	now := clock()
	report, err := planner.Plan(ctx, observations, now)
	if err != nil {
		return err
	}

	if err := output.WriteTableFile(cfg.Report.OutputPath, report); err != nil {
		return err
	}
	if cfg.Report.PlotPath != "" {
		if err := output.WritePlot(cfg.Report.PlotPath, report, now); err != nil {
			return err
		}
	}
	return nil
}
