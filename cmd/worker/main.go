package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/app"
	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logs)

	if cfg.QueueURL == "" {
		log.Fatal().Msg("QUEUE_URL environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.MustInitDB(ctx, cfg.DB)

	client, err := app.NewSQSClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create SQS client")
	}

	if err := app.NewWorker(client, cfg).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
