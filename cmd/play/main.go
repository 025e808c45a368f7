package main

import (
	"flag"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/tui"
)

func main() {
	depth := flag.Int("depth", 3, "engine search depth")
	fen := flag.String("fen", "", "starting position (default: standard)")
	black := flag.Bool("black", false, "play Black; the engine opens")
	flag.Parse()

	// Log output would tear the alt screen.
	log.Logger = zerolog.New(io.Discard)

	if err := tui.Run(tui.Options{Depth: *depth, FEN: *fen, EngineWhite: *black}); err != nil {
		log.Fatal().Err(err).Msg("play session failed")
	}
}
