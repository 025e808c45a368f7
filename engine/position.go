// Package engine chooses moves for the side to move with a fixed-depth
// alpha-beta search over a chess position supplied by a rules collaborator.
//
// Scores are always expressed from White's point of view: positive favours
// White, negative favours Black.
package engine

import "github.com/notnil/chess"

// Squares reads the occupant of a square. Empty squares report chess.NoPiece.
type Squares interface {
	PieceAt(sq chess.Square) chess.Piece
}

// MoveFacts answers the per-move questions the move orderer needs, all
// relative to the position before the move is played.
type MoveFacts interface {
	Squares
	// IsCapture reports whether m takes a piece, en passant included.
	IsCapture(m *chess.Move) bool
	IsEnPassant(m *chess.Move) bool
	// Promotion returns chess.NoPieceType for non-promoting moves.
	Promotion(m *chess.Move) chess.PieceType
}

// Position is the mutable game state the search walks. Push and Pop must be
// strictly paired: after Pop the position is identical to the one before the
// matching Push.
type Position interface {
	MoveFacts
	Turn() chess.Color
	LegalMoves() []*chess.Move
	Push(m *chess.Move)
	Pop()

	IsCheckmate() bool
	IsStalemate() bool
	IsInsufficientMaterial() bool
	IsSeventyFiveMoves() bool
	IsFivefoldRepetition() bool
}
