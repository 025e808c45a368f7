package main

import (
	"flag"
	"fmt"

	"github.com/pkg/profile"
	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/logger"
	"github.com/Kunal-047/Chess-engine/engine"
	"github.com/Kunal-047/Chess-engine/rules"
)

func main() {
	fen := flag.String("fen", "", "position to search (default: start position)")
	depth := flag.Int("depth", 4, "search depth")
	noPrune := flag.Bool("minimax", false, "disable alpha-beta cutoffs")
	dir := flag.String("profile", ".", "directory for cpu.pprof")
	flag.Parse()

	logger.Init(config.LogConfig{Style: "console", Level: "info"})

	board := rules.NewBoard()
	if *fen != "" {
		b, err := rules.FromFEN(*fen)
		if err != nil {
			log.Fatal().Err(err).Msg("bad FEN")
		}
		board = b
	}

	s := engine.NewSearcher()
	s.Prune = !*noPrune

	p := profile.Start(profile.CPUProfile, profile.ProfilePath(*dir), profile.NoShutdownHook)
	res := s.Search(board, *depth)
	p.Stop()

	nps := 0.0
	if secs := res.Elapsed.Seconds(); secs > 0 {
		nps = float64(res.Stats.Nodes) / secs
	}
	log.Info().
		Str("fen", board.FEN()).
		Int("depth", res.Depth).
		Str("move", rules.UCI(res.Move)).
		Float64("score", res.Score).
		Uint64("nodes", res.Stats.Nodes).
		Uint64("cutoffs", res.Stats.Cutoffs).
		Float64("nps", nps).
		Dur("elapsed", res.Elapsed).
		Msg("bench")
	fmt.Println(res.Stats)
}
