package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/crashdeck/crash-data-service/internal/adapter/httpapi"
	kafkaadapter "github.com/crashdeck/crash-data-service/internal/adapter/kafka"
	"github.com/crashdeck/crash-data-service/internal/adapter/sheets"
	"github.com/crashdeck/crash-data-service/internal/config"
	"github.com/crashdeck/crash-data-service/internal/domain"
	"github.com/crashdeck/crash-data-service/internal/observability"
	"github.com/crashdeck/crash-data-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if cfg.VocabularyFile != "" {
		vocab, err := config.LoadNetworkVocabulary(cfg.VocabularyFile)
		if err != nil {
			logger.Error("failed to load network vocabulary", "path", cfg.VocabularyFile, "error", err)
			os.Exit(1)
		}
		domain.SetNetworkVocabulary(vocab)
		logger.Info("network vocabulary loaded", "path", cfg.VocabularyFile, "keywords", len(vocab))
	}

	// Sheet refresh source (omitted in upload-only mode).
	var fetch store.FetchFunc
	if cfg.SheetURL != "" {
		client := sheets.NewClient(cfg.SheetURL, cfg.FetchTimeout, logger)
		fetch = client.FetchTable
		logger.Info("sheet refresh enabled", "ttl", cfg.SnapshotTTL, "timeout", cfg.FetchTimeout)
	} else {
		logger.Info("no sheet source configured, running in upload-only mode")
	}

	// Kafka sink (feature-flagged via KAFKA_ENABLED).
	var publish store.PublishFunc
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		publish = publisher.PublishSnapshot
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka sink disabled")
	}

	st := store.New(fetch, publish, cfg.SnapshotTTL, clockwork.NewRealClock(), logger, metrics)
	srv := httpapi.NewServer(cfg.HTTPAddr, st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
