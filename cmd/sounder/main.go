// Command sounder runs the sounding ETL service: it consumes raw satellite
// sounding granules from Kafka or NATS, derives a Skew-T analysis per
// footprint, and publishes the products to the sink topic, optionally
// archiving them in SQLite or PostgreSQL.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/sounding-skewt-service/internal/adapter/archive"
	httpadapter "github.com/couchcryptid/sounding-skewt-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/sounding-skewt-service/internal/adapter/kafka"
	"github.com/couchcryptid/sounding-skewt-service/internal/adapter/natsadapter"
	"github.com/couchcryptid/sounding-skewt-service/internal/config"
	"github.com/couchcryptid/sounding-skewt-service/internal/observability"
	"github.com/couchcryptid/sounding-skewt-service/internal/pipeline"
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

	// Select the source transport.
	var (
		extractor pipeline.BatchExtractor
		closeRead func() error
	)
	switch cfg.SourceTransport {
	case config.TransportNATS:
		reader, err := natsadapter.NewReader(cfg, logger)
		if err != nil {
			logger.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		extractor, closeRead = reader, reader.Close
		logger.Info("consuming from nats", "url", cfg.NATSURL, "subject", cfg.NATSSubject)
	default:
		reader := kafkaadapter.NewReader(cfg, logger)
		extractor, closeRead = reader, reader.Close
		logger.Info("consuming from kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSourceTopic)
	}

	writer := kafkaadapter.NewWriter(cfg, logger)

	// The sink topic always receives products; the archive is optional.
	loader := pipeline.MultiLoader{writer}
	store, err := archive.Open(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to open archive", "error", err, "driver", cfg.ArchiveDriver)
		os.Exit(1)
	}
	if store != nil {
		loader = append(loader, store)
		logger.Info("archiving enabled", "driver", cfg.ArchiveDriver)
	}

	transformer := pipeline.NewTransformer(cfg.PressureTopHPa, logger, metrics)

	p := pipeline.New(extractor, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := closeRead(); err != nil {
		logger.Error("source reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("archive close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
