package engine

import "github.com/notnil/chess"

const (
	materialWeight   = 0.5
	positionalWeight = 0.5

	// Positional terms are table units; dividing keeps them below material.
	positionalScale = 10.0
)

// Evaluate returns the static score of a position with no lookahead.
func Evaluate(b Squares) float64 {
	var materialWhite, materialBlack float64
	var positionalWhite, positionalBlack float64

	for i := 0; i < 64; i++ {
		sq := chess.Square(i)
		p := b.PieceAt(sq)
		if p == chess.NoPiece {
			continue
		}
		kind := p.Type()
		if p.Color() == chess.White {
			materialWhite += PieceValue(kind)
			positionalWhite += SquareValue(kind, chess.White, sq)
		} else {
			materialBlack += PieceValue(kind)
			positionalBlack += SquareValue(kind, chess.Black, sq)
		}
	}

	materialDiff := materialWhite - materialBlack
	positionalDiff := (positionalWhite - positionalBlack) / positionalScale
	return materialWeight*materialDiff + positionalWeight*positionalDiff
}
