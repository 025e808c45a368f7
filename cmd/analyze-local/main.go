package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/app"
	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/logger"
)

func main() {
	user := flag.String("user", "", "username whose games are in the file")
	depth := flag.Int("depth", 0, "search depth (0 uses ENGINE_DEPTH)")
	flag.Parse()

	if flag.NArg() != 1 || *user == "" {
		log.Fatal().Msg("usage: analyze-local -user NAME [-depth N] games.pgn")
	}

	start := time.Now()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logs)

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open PGN file")
	}
	defer f.Close()

	pgns, err := app.SplitPGN(f)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read PGN file")
	}
	games, skipped := app.ParseUploadedGames(*user, pgns)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	results, err := app.AnalyzeGames(ctx, cfg.Workers, app.OptionsFromConfig(cfg, *depth), *user, games)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		log.Fatal().Err(err).Msg("failed to write results")
	}
	log.Info().Int("games", len(results)).Int("skipped", skipped).Dur("took", time.Since(start)).Msg("done")
}
