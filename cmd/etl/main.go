package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tryvailo/carehome-etl/internal/adapter/file"
	httpadapter "github.com/tryvailo/carehome-etl/internal/adapter/http"
	kafkaadapter "github.com/tryvailo/carehome-etl/internal/adapter/kafka"
	"github.com/tryvailo/carehome-etl/internal/config"
	"github.com/tryvailo/carehome-etl/internal/domain"
	"github.com/tryvailo/carehome-etl/internal/observability"
	"github.com/tryvailo/carehome-etl/internal/pipeline"
	"github.com/tryvailo/carehome-etl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
	pg, err := store.NewPostgres(connectCtx, cfg.PostgresDSN, logger)
	connectCancel()
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Fan-out to Kafka is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka fan-out enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka fan-out disabled")
	}

	extractor := file.NewExtractor(cfg.DataDir, cfg.DataGlob, logger)
	transformer := pipeline.NewTransformer(domain.AnomalyConfig{
		MinQualityScore:          cfg.MinQualityScore,
		RecentDeactivationWindow: domain.DefaultAnomalyConfig().RecentDeactivationWindow,
	}, logger)

	p := pipeline.New(extractor, transformer, pg, publisher, logger, metrics, cfg.MaxFailureRate)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Run the batch. The process stays up afterwards so the run summary and
	// metrics remain scrapeable until the operator stops it.
	go func() {
		if _, err := p.Run(ctx); err != nil {
			logger.Error("pipeline run failed", "error", err)
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
