package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ksrtc-reservation/cmd"
	"ksrtc-reservation/internal/data/repository"
	"ksrtc-reservation/internal/relay"
	"ksrtc-reservation/internal/wire"
	"ksrtc-reservation/pkg/broker"
	"ksrtc-reservation/pkg/cache"
	"ksrtc-reservation/pkg/database"
	"ksrtc-reservation/pkg/middleware"
	"ksrtc-reservation/pkg/utils"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	utils.Flags(flags)
	_ = flags.Parse(os.Args[1:])

	// Load config
	config, err := utils.LoadConfig(flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)
	txManager := database.NewTxManager(db)

	// Idempotency keys need redis; without it retried writes are not deduplicated
	var idempotency middleware.IdempotencyStore
	if config.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cache.RedisConfig{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()

		idempotency = cache.NewIdempotencyStore(client)
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	} else {
		logger.Warn("REDIS_ADDR not set, idempotency keys disabled")
	}

	var wg sync.WaitGroup
	if len(config.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(broker.KafkaConfig{
			Brokers: config.Kafka.Brokers,
			Topic:   config.Kafka.Topic,
		})
		defer producer.Close()

		poller := relay.NewOutboxPoller(repos.Outbox, producer, relay.Config{
			Interval:          config.Outbox.PollInterval,
			BatchSize:         config.Outbox.BatchSize,
			VisibilityTimeout: config.Outbox.VisibilityTimeout,
		}, logger)

		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(ctx)
		}()
		logger.Info("Outbox relay enabled", zap.String("topic", producer.Topic()))
	} else {
		logger.Warn("KAFKA_BROKERS not set, outbox events stay in the database")
	}

	// Wire all dependencies
	app := wire.Wiring(repos, txManager, idempotency, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	stop()
	wg.Wait()
	logger.Info("Application stopped")
}
