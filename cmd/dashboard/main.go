package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/carbon-emissions-tracker/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/carbon-emissions-tracker/internal/adapter/kafka"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/adapter/worldbank"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/config"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/dashboard"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := worldbank.NewClient(worldbank.Options{
		BaseURL:           cfg.WorldBankBaseURL,
		Source:            cfg.WorldBankSource,
		PerPage:           cfg.WorldBankPerPage,
		Timeout:           cfg.WorldBankTimeout,
		RequestsPerSecond: cfg.WorldBankRate,
		IncludeAggregates: cfg.IncludeAggregates,
	}, metrics, logger)

	// Snapshot publishing is enabled by KAFKA_BROKERS.
	var (
		publisher dashboard.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.PublishEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("snapshot publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	svc := dashboard.New(client, publisher, dashboard.Options{
		Indicator: cfg.Indicator,
		Years:     cfg.Years,
		TTL:       cfg.CacheTTL,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the first table in the background; the page fetches on demand until then.
	go svc.Warm(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := svc.Wait(shutdownCtx); err != nil {
		logger.Error("snapshot publish drain error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
