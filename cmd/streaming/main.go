package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/panverse/rules-agent/internal/setup"
	setuplog "github.com/panverse/rules-agent/internal/setup/logger"
	"github.com/panverse/rules-agent/internal/stream"
	"github.com/panverse/rules-agent/internal/stream/redis"
	"github.com/rs/zerolog/log"
)

func main() {
	// Long-running worker, JSON logs for collectors.
	log.Logger = setuplog.New(os.Getenv("LOG_LEVEL"), false)
	logger := log.Logger

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	streamCfg := &stream.StreamConfig{
		Provider: cfg.StreamProvider,
		RedisConfig: redis.NewRedisStreamConfig(
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RequestStream,
			cfg.ConsumerGroup,
			os.Getenv("HOSTNAME"),
			cfg.ResultStream,
		),
	}

	consumer, err := stream.NewStreamConsumer(ctx, streamCfg, deps.Dispatcher, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stream consumer")
	}

	// Setup consumer
	if err := consumer.Setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	// Start consumer
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Consumer stopped with error")
		}
	}()

	// Wait for context to be done
	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	if err := consumer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Consumer close failed")
	}
	log.Info().Msg("Rules Agent consumer stopped")
}
