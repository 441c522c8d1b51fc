package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ecmbridge/tracelog/internal/config"
	"github.com/ecmbridge/tracelog/internal/engine"
	"github.com/ecmbridge/tracelog/internal/server"
)

func main() {
	// Optional .env for local runs; real deployments set TRACELOG_* directly.
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load configuration")
	}
	if cfg.Primary.Env == "prod" {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	eng := engine.New(cfg.Engine, logger)
	srv := server.New(cfg, eng, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
