package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/adapters/media_storage"
	"github.com/khoahotran/portfolio-builder/adapters/persistence"
	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
	"github.com/khoahotran/portfolio-builder/pkg/tracing"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting Portfolio Snapshot Worker...")

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("Kafka brokers are required for the worker", errors.New("kafka.brokers is empty"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg, appLogger, "portfolio-builder-worker")
	if err != nil {
		appLogger.Warn("Tracing disabled", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	// Database
	db := persistence.NewDatabase(cfg, appLogger)
	defer db.Close()

	// Cloudinary Uploader
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(db, appLogger)

	// Worker Use Case
	snapshotUC := portfolioUC.NewSnapshotUseCase(userRepo, uploader, appLogger)

	// Kafka Consumer
	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicPortfolioEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicPortfolioEvents), zap.String("group_id", cfg.Kafka.GroupID))

	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				appLogger.Info("Worker stopped.")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		var payload event.PortfolioEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			appLogger.Warn("Skipping malformed event", zap.ByteString("key", msg.Key), zap.Error(err))
			commitMessage(consumer, msg, appLogger)
			continue
		}

		if payload.EventType != event.PortfolioEventTypeUpdated {
			commitMessage(consumer, msg, appLogger)
			continue
		}

		appLogger.Info("Processing event", zap.String("event_type", payload.EventType), zap.String("user_id", payload.UserID.String()))

		if err := processSnapshot(ctx, snapshotUC.Execute, payload.UserID, snapshotBackoff(), appLogger); err != nil {
			if ctx.Err() != nil {
				// uncommitted; redelivered to the group after restart
				appLogger.Info("Worker stopped.")
				return
			}
			appLogger.Error("Dropping event after retries", err,
				zap.String("user_id", payload.UserID.String()),
				zap.Int64("offset", msg.Offset),
			)
		}

		commitMessage(consumer, msg, appLogger)
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}
