package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miradorstack/mirador-rul/internal/api"
	"github.com/miradorstack/mirador-rul/internal/cache"
	"github.com/miradorstack/mirador-rul/internal/config"
	"github.com/miradorstack/mirador-rul/internal/engine"
	"github.com/miradorstack/mirador-rul/internal/ingest"
	"github.com/miradorstack/mirador-rul/internal/metrics"
	"github.com/miradorstack/mirador-rul/internal/repo"
	"github.com/miradorstack/mirador-rul/internal/services"
	"github.com/miradorstack/mirador-rul/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting mirador-rul", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	cacheProvider, err := cache.NewFromConfig(cfg.Cache)
	if err != nil {
		logger.Warn("parameter table cache unavailable", slog.Any("error", err))
		cacheProvider = cache.NoopProvider{}
	}
	defer cacheProvider.Close()

	corpus, err := ingest.LoadCorpus(cfg.Data.TrainingPath)
	if err != nil {
		logger.Error("failed to load training corpus", slog.String("path", cfg.Data.TrainingPath), slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tableStore := repo.NewTableStore(logger, cacheProvider, cfg.Cache.TableTTL)
	table, _, err := tableStore.Load(ctx, corpus)
	if err != nil {
		logger.Error("failed to build parameter table", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.SetParameterTable(table)

	clock, err := cfg.Scoring.Clock()
	if err != nil {
		logger.Error("invalid scoring clock", slog.Any("error", err))
		os.Exit(1)
	}

	var sink services.ReportSink
	if cfg.Database.Enabled {
		store, err := repo.NewReportStore(cfg.Database.DSN)
		if err != nil {
			logger.Error("failed to open report store", slog.Any("error", err))
			os.Exit(1)
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			logger.Error("failed to migrate report store", slog.Any("error", err))
			os.Exit(1)
		}
		sink = store
	}

	scorer := engine.NewScorer(logger, table)
	plannerService := services.NewPlannerService(logger, scorer, clock, sink)

	server, err := api.NewServer(cfg.Server, plannerService)
	if err != nil {
		logger.Error("failed to create gRPC server", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("gRPC server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("mirador-rul stopped")
}
