package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/air-quality-dashboard/internal/adapter/dataset"
	"github.com/couchcryptid/air-quality-dashboard/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/air-quality-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/air-quality-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/air-quality-dashboard/internal/config"
	"github.com/couchcryptid/air-quality-dashboard/internal/dashboard"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/couchcryptid/air-quality-dashboard/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := dataset.NewSource(cfg.DataSource, cfg.DataTimeout, metrics, logger)
	records, _, err := source.LoadWithRetry(ctx, cfg.DataFetchAttempts)
	if err != nil {
		logger.Error("failed to load dataset", "source", source.Location(), "attempts", cfg.DataFetchAttempts, "error", err)
		os.Exit(1)
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocoder", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Initialize aggregate export (feature-flagged via KAFKA_EXPORT_ENABLED / KAFKA_BROKERS).
	var exporter dashboard.Exporter
	var writer *kafkaadapter.Writer
	if cfg.KafkaExportEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		exporter = writer
		logger.Info("aggregate export enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaExportTopic)
	}

	d, err := dashboard.New(records, geocoder, exporter, logger, metrics)
	if err != nil {
		logger.Error("failed to initialize dashboard", "error", err)
		os.Exit(1)
	}
	metrics.DatasetLoaded.Set(1)
	defer metrics.DatasetLoaded.Set(0)

	// Render the initial view over the full default range.
	if _, err := d.Update(ctx, dashboard.UpdateRequest{}); err != nil {
		logger.Error("initial view failed", "error", err, "range", d.DefaultRange().String())
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, d, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
