package engine

import (
	"math"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
)

const (
	// MateScore is the magnitude reported for a checkmate. It is larger than
	// any score Evaluate can produce.
	MateScore = 9999.0
	DrawScore = 0.0
)

// Result is the outcome of a root search. Move is nil only when the root
// position is already over.
type Result struct {
	Score   float64
	Move    *chess.Move
	Depth   int
	Stats   Stats
	Elapsed time.Duration
}

// Terminal reports whether the searched position had no move to play.
func (r Result) Terminal() bool {
	return r.Move == nil
}

// IsMate reports whether score is a checkmate sentinel.
func IsMate(score float64) bool {
	return math.Abs(score) >= MateScore
}

// Searcher runs fixed-depth minimax searches. A Searcher keeps counters for
// the search in progress and must not be shared between goroutines.
type Searcher struct {
	// Prune enables alpha-beta cutoffs. Without it the search is plain
	// minimax over the same move order.
	Prune bool
	// Order sorts moves with MoveScore before visiting them.
	Order bool

	stats Stats
}

// NewSearcher returns a Searcher with pruning and move ordering enabled.
func NewSearcher() *Searcher {
	return &Searcher{Prune: true, Order: true}
}

// Search picks a move for the side to move in pos, looking depth plies ahead.
// White maximises, Black minimises. pos is returned in its original state.
func Search(pos Position, depth int) Result {
	return NewSearcher().Search(pos, depth)
}

// Search is the root driver. A negative depth searches as depth 0.
func (s *Searcher) Search(pos Position, depth int) Result {
	if depth < 0 {
		depth = 0
	}
	s.stats = Stats{}
	start := time.Now()

	maximizing := pos.Turn() == chess.White
	score, move := s.alphaBeta(pos, depth, math.Inf(-1), math.Inf(1), maximizing)

	res := Result{
		Score:   score,
		Move:    move,
		Depth:   depth,
		Stats:   s.stats,
		Elapsed: time.Since(start),
	}

	ev := log.Debug().
		Int("depth", depth).
		Float64("score", score).
		Uint64("nodes", res.Stats.Nodes).
		Uint64("cutoffs", res.Stats.Cutoffs).
		Dur("elapsed", res.Elapsed)
	if move != nil {
		ev = ev.Str("move", move.String())
	}
	ev.Msg("search complete")

	return res
}

// TerminalScore returns the score of a finished game and true, or false if
// play continues. Checkmate is scored against the side that has been mated.
func TerminalScore(pos Position) (float64, bool) {
	if pos.IsCheckmate() {
		if pos.Turn() == chess.White {
			return -MateScore, true
		}
		return MateScore, true
	}
	if pos.IsStalemate() || pos.IsInsufficientMaterial() || pos.IsSeventyFiveMoves() || pos.IsFivefoldRepetition() {
		return DrawScore, true
	}
	return 0, false
}

func (s *Searcher) alphaBeta(pos Position, depth int, alpha, beta float64, maximizing bool) (float64, *chess.Move) {
	s.stats.Nodes++

	if score, over := TerminalScore(pos); over {
		s.stats.Terminals++
		return score, nil
	}
	if depth <= 0 {
		s.stats.Leaves++
		return Evaluate(pos), nil
	}

	moves := pos.LegalMoves()
	if s.Order {
		moves = OrderMoves(pos, moves)
	}

	var bestMove *chess.Move
	if maximizing {
		bestScore := math.Inf(-1)
		for _, m := range moves {
			pos.Push(m)
			score, _ := s.alphaBeta(pos, depth-1, alpha, beta, false)
			pos.Pop()

			// Strictly greater: the first of equal moves stays best.
			if score > bestScore {
				bestScore, bestMove = score, m
			}
			alpha = math.Max(alpha, score)
			if s.Prune && beta <= alpha {
				s.stats.Cutoffs++
				break
			}
		}
		return bestScore, bestMove
	}

	bestScore := math.Inf(1)
	for _, m := range moves {
		pos.Push(m)
		score, _ := s.alphaBeta(pos, depth-1, alpha, beta, true)
		pos.Pop()

		if score < bestScore {
			bestScore, bestMove = score, m
		}
		beta = math.Min(beta, score)
		if s.Prune && beta <= alpha {
			s.stats.Cutoffs++
			break
		}
	}
	return bestScore, bestMove
}
