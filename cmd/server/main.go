package main

import (
	"context"

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

	ctx := context.Background()
	app.MustInitDB(ctx, cfg.DB)

	var sender app.MessageSender
	if cfg.QueueURL != "" {
		client, err := app.NewSQSClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create SQS client")
		}
		sender = client
	}

	router, err := app.NewRouter(cfg, sender)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize router")
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
