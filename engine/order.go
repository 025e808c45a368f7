package engine

import (
	"sort"

	"github.com/notnil/chess"
)

// InvalidMoveScore is given to a move whose origin square is empty so that it
// sorts after every real move.
const InvalidMoveScore = -1e9

const (
	captureWeight         = 0.6
	positionalDeltaWeight = 0.4
	capturedSquareWeight  = 0.2
)

// ScoredMove pairs a move with its ordering heuristic.
type ScoredMove struct {
	Move  *chess.Move
	Score float64
}

// MoveScore rates m for ordering purposes from the position before it is
// played. Captures dominate, then the gain in square value for the mover.
func MoveScore(p MoveFacts, m *chess.Move) float64 {
	from, to := m.S1(), m.S2()
	mover := p.PieceAt(from)
	if mover == chess.NoPiece {
		return InvalidMoveScore
	}
	color := mover.Color()

	landing := mover.Type()
	if promo := p.Promotion(m); promo != chess.NoPieceType {
		landing = promo
	}
	delta := SquareValue(landing, color, to) - SquareValue(mover.Type(), color, from)

	score := positionalDeltaWeight * (delta / positionalScale)
	if !p.IsCapture(m) {
		return score
	}

	capturedSq := to
	if p.IsEnPassant(m) {
		// The taken pawn sits beside the origin, not on the destination.
		capturedSq = chess.Square(int(from.Rank())*8 + int(to.File()))
	}
	captured := p.PieceAt(capturedSq)
	if captured == chess.NoPiece {
		return score
	}
	score += captureWeight * PieceValue(captured.Type())
	score += capturedSquareWeight * SquareValue(captured.Type(), captured.Color(), capturedSq)
	return score
}

// RankMoves scores every move and returns them best first. Moves with equal
// scores keep their input order.
func RankMoves(p MoveFacts, moves []*chess.Move) []ScoredMove {
	ranked := make([]ScoredMove, len(moves))
	for i, m := range moves {
		ranked[i] = ScoredMove{Move: m, Score: MoveScore(p, m)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// OrderMoves returns a reordered copy of moves, most promising first. The
// input slice is left untouched.
func OrderMoves(p MoveFacts, moves []*chess.Move) []*chess.Move {
	ranked := RankMoves(p, moves)
	out := make([]*chess.Move, len(ranked))
	for i, sm := range ranked {
		out[i] = sm.Move
	}
	return out
}
