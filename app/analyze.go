package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/models"
	"github.com/Kunal-047/Chess-engine/engine"
	"github.com/Kunal-047/Chess-engine/rules"
)

// Loss thresholds in engine units, where a pawn is worth 0.5.
const (
	SuboptimalThreshold = 0.15
	InaccuracyThreshold = 0.25
	MistakeThreshold    = 0.5
	BlunderThreshold    = 1.0
)

// AnalysisOptions bounds the work done per game.
type AnalysisOptions struct {
	Depth    int // plies searched per position
	NumMoves int // plies of each game analysed
}

// OptionsFromConfig reads the analysis bounds from cfg. A positive
// depthOverride replaces the configured depth.
func OptionsFromConfig(cfg *config.Config, depthOverride int) AnalysisOptions {
	opts := AnalysisOptions{Depth: cfg.Engine.Depth, NumMoves: cfg.Engine.NumMoves}
	if depthOverride > 0 {
		opts.Depth = depthOverride
	}
	return opts
}

// AnalyzePGN replays meta.PGN and searches every position reached in its
// first opts.NumMoves plies, plus the one after the last analysed move.
func AnalyzePGN(meta models.GameLite, s *engine.Searcher, opts AnalysisOptions, username string) ([]models.Move, error) {
	g := chess.NewGame()
	if err := g.UnmarshalText([]byte(meta.PGN)); err != nil {
		return nil, fmt.Errorf("parsing pgn: %w", err)
	}
	positions := g.Positions()
	played := g.Moves()

	numMoves := len(played)
	if opts.NumMoves > 0 && opts.NumMoves < numMoves {
		numMoves = opts.NumMoves
	}

	board, err := rules.FromFEN(positions[0].String())
	if err != nil {
		return nil, err
	}

	fens := make([]models.FENEval, 0, numMoves+1)
	for i := 0; i <= numMoves; i++ {
		fens = append(fens, evalPosition(s, board, opts.Depth))
		if i < numMoves {
			board.Push(played[i])
		}
	}

	moves := make([]models.Move, 0, numMoves)
	for i := 0; i < numMoves; i++ {
		m := played[i]

		color := fens[i].SideToMove

		playedBy := meta.Opponent
		if meta.Color != "" && meta.Color[:1] == color {
			playedBy = username
		}

		moves = append(moves, models.Move{
			MoveUCI:    rules.UCI(m),
			MoveSAN:    chess.AlgebraicNotation{}.Encode(positions[i], m),
			PlayedBy:   playedBy,
			MoveNumber: fens[i].MoveNumber,
			Ply:        i + 1,
			Color:      color,
			FenBefore:  fens[i],
			FenAfter:   fens[i+1],
			Analysis:   GetMoveAnalysis(color, fens[i], fens[i+1]),
		})
	}

	return moves, nil
}

func evalPosition(s *engine.Searcher, b *rules.Board, depth int) models.FENEval {
	res := s.Search(b, depth)
	fe := fenInfoFromPosition(b.Position())
	fe.Score = res.Score
	fe.Mate = engine.IsMate(res.Score)
	fe.BestMove = rules.UCI(res.Move)
	fe.Depth = res.Depth
	fe.Nodes = res.Stats.Nodes
	fe.Evaluated = true
	return fe
}

// AnalyzeOneGame is what the workers call for each game.
func AnalyzeOneGame(s *engine.Searcher, opts AnalysisOptions, g models.GameLite, username string) (models.GameLite, error) {
	log.Debug().Str("user", username).Str("opponent", g.Opponent).Str("url", g.URL).Msg("analyzing game")

	g.PGN = NormalizePGN(g.PGN)

	moves, err := AnalyzePGN(g, s, opts, username)
	if err != nil {
		return models.GameLite{}, err
	}
	g.Moves = moves
	return g, nil
}

// GetMoveAnalysis classifies a move by how much the mover's standing dropped
// between the position before and after it. Scores are from White's point of
// view. Positions scored as mate are left unclassified.
func GetMoveAnalysis(color string, before, after models.FENEval) models.MoveAnalysis {
	res := models.MoveAnalysis{}

	if !before.Evaluated || !after.Evaluated {
		return res
	}
	if before.Mate || after.Mate {
		return res
	}

	delta := after.Score - before.Score
	if color == "b" {
		// Good moves for Black push the score down.
		delta = -delta
	}

	loss := 0.0
	if delta < 0 {
		loss = -delta
	}
	res.ScoreLoss = loss

	switch {
	case loss >= BlunderThreshold:
		res.IsBlunder = true
	case loss >= MistakeThreshold:
		res.IsMistake = true
	case loss >= InaccuracyThreshold:
		res.IsInaccuracy = true
	case loss >= SuboptimalThreshold:
		res.IsSuboptimal = true
	}

	return res
}

// AnalyzeGames runs AnalyzeOneGame over games with a pool of workers, each
// owning its own Searcher. Games that fail to parse are logged and left out.
func AnalyzeGames(ctx context.Context, workers int, opts AnalysisOptions, username string, games []models.GameLite) ([]models.GameLite, error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(games) {
		workers = len(games)
	}

	jobs := make(chan models.GameLite)
	var (
		mu      sync.Mutex
		results = make([]models.GameLite, 0, len(games))
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer close(jobs)
		for _, g := range games {
			select {
			case jobs <- g:
			case <-egCtx.Done():
				return egCtx.Err()
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		id := i
		eg.Go(func() error {
			searcher := engine.NewSearcher()
			for g := range jobs {
				if err := egCtx.Err(); err != nil {
					return err
				}
				report, err := AnalyzeOneGame(searcher, opts, g, username)
				if err != nil {
					log.Warn().Err(err).Int("worker", id).Str("url", g.URL).Msg("error analyzing game")
					continue
				}
				mu.Lock()
				results = append(results, report)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// ProcessBatch loads one batch of the games attached to a job, analyses them
// and stores the moves.
func ProcessBatch(ctx context.Context, cfg *config.Config, job models.JobMessage) error {
	start := time.Now()

	logger := log.With().
		Str("user", job.User).
		Str("job_id", job.JobID).
		Int("batch_index", job.BatchIndex).
		Logger()

	logger.Info().Int("num_games", job.NumGames).Int("workers", cfg.Workers).Msg("processing batch")

	games, err := LoadGames(ctx, job.JobID, job.BatchIndex, job.NumGames)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		logger.Info().Msg("no games found for batch")
		return finishBatch(ctx, job)
	}

	opts := OptionsFromConfig(cfg, job.EngineDepth)
	results, err := AnalyzeGames(ctx, cfg.Workers, opts, job.User, games)
	if err != nil {
		return fmt.Errorf("analyzing batch: %w", err)
	}

	// Separate timeout for DB write
	ctx2, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Minute)
	defer cancel()

	if err := SaveMoves(ctx2, opts.Depth, results); err != nil {
		logger.Error().Err(err).Msg("SaveMoves failed")
		return err
	}
	if err := finishBatch(ctx2, job); err != nil {
		return err
	}

	logger.Info().Int("num_results", len(results)).Dur("took", time.Since(start)).Msg("batch complete")
	return nil
}

func finishBatch(ctx context.Context, job models.JobMessage) error {
	if job.JobID == "" {
		return nil
	}
	if err := UpdateJobProgress(ctx, job.JobID); err != nil && !errors.Is(err, errNoDatabase) {
		return err
	}
	return nil
}
