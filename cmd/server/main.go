package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	httpAdapter "github.com/khoahotran/portfolio-builder/adapters/http"
	"github.com/khoahotran/portfolio-builder/adapters/persistence"
	"github.com/khoahotran/portfolio-builder/internal/application/service"
	authUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/auth"
	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/auth"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
	"github.com/khoahotran/portfolio-builder/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start Portfolio Builder API Server...", zap.String("env", cfg.App.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTracing, err := tracing.Setup(ctx, cfg, appLogger, "portfolio-builder-api")
	if err != nil {
		appLogger.Warn("Tracing disabled", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	// Database
	if cfg.DB.AutoMigrate {
		if err := persistence.RunMigrations(cfg.DB.DSN, appLogger); err != nil {
			appLogger.Fatal("Cannot run migrations", err)
		}
	}
	db := persistence.NewDatabase(cfg, appLogger)
	defer db.Close()

	// Redis
	redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Warn("Redis unavailable, portfolio cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Kafka
	var publisher service.EventPublisher = event.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		appLogger.Info("Kafka brokers not set, events are not published.")
	}

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(db, appLogger)
	portfolioCache := persistence.NewRedisPortfolioCache(redisClient, cfg.Redis.PortfolioTTL, appLogger)

	// Services
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	codec, err := auth.NewSessionCodec(cfg.Auth.SessionMode, cfg.Auth.SessionSecret, auth.CookieOptions{
		Secure: cfg.IsProduction(),
		MaxAge: cfg.Auth.SessionMaxAge,
	})
	if err != nil {
		appLogger.Fatal("Invalid session configuration", err)
	}

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(userRepo, hasher, appLogger)
	registerUseCase := authUC.NewRegisterUseCase(userRepo, hasher, publisher, appLogger)
	resolver := authUC.NewIdentityResolver(userRepo)
	portfolioUseCase := portfolioUC.NewPortfolioUseCase(userRepo, portfolioCache, publisher, appLogger)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Logger:           appLogger,
		Codec:            codec,
		AuthHandler:      httpAdapter.NewAuthHandler(loginUseCase, registerUseCase, resolver, codec, appLogger),
		PortfolioHandler: httpAdapter.NewPortfolioHandler(portfolioUseCase, appLogger),
		HealthHandler:    httpAdapter.NewHealthHandler(db, appLogger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	db.LogStats()
}
