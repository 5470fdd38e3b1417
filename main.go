package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"theatre-booking/cmd"
	"theatre-booking/internal/data/repository"
	"theatre-booking/internal/wire"
	"theatre-booking/pkg/cache"
	"theatre-booking/pkg/database"
	"theatre-booking/pkg/queue"
	"theatre-booking/pkg/utils"

	"go.uber.org/zap"
)

const sessionCleanupInterval = time.Hour

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	repos := repository.NewRepository(db, logger)

	rdb := cache.NewRedisClient(config.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}
	availability := cache.NewAvailabilityCache(rdb, config.Redis.AvailabilityTTL, logger)

	var publisher queue.Publisher = queue.NopPublisher{}
	if config.RabbitMQ.Enabled {
		publisher = queue.NewAsyncPublisher(
			queue.NewPublisher(config.RabbitMQ.URL, config.RabbitMQ.Queue, logger), 256, logger)

		consumer := queue.NewConsumer(config.RabbitMQ.URL, config.RabbitMQ.Queue,
			queue.AuditLogHandler(logger.Named("audit")), logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Reservation event consumer stopped", zap.Error(err))
			}
		}()
	}
	defer publisher.Close()

	go cleanSessions(ctx, repos.Session, logger)

	app := wire.Wiring(repos, config, availability, publisher, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}

// cleanSessions drops expired sessions every hour until ctx is done.
func cleanSessions(ctx context.Context, sessions repository.SessionRepository, logger *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.CleanExpiredSessions(ctx)
			if err != nil {
				logger.Warn("Session cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("Expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}
