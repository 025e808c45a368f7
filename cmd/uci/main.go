package main

import (
	"os"

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
	// stdout belongs to the protocol; logger writes to stderr.
	logger.Init(cfg.Logs)

	if err := app.NewUCIServer(os.Stdin, os.Stdout, cfg.Engine.Depth).Run(); err != nil {
		log.Fatal().Err(err).Msg("uci loop failed")
	}
}
