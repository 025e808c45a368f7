// Package rules adapts github.com/notnil/chess to the push/undo position the
// search engine walks, and adds the draw bookkeeping the library leaves to
// its Game type: halfmove clock, repetition history and insufficient material.
package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

var (
	ErrBadFEN      = errors.New("invalid FEN")
	ErrIllegalMove = errors.New("illegal move")
)

// frame is one entry of the move history. Positions from notnil/chess are
// immutable, so undoing a move is dropping the frame on top.
type frame struct {
	pos       *chess.Position
	halfMoves int
	key       string
	moves     []*chess.Move
}

// Board is a position plus the history needed for repetition and move-count
// draws. It is not safe for concurrent use; Clone it for another goroutine.
type Board struct {
	stack []frame
}

// NewBoard returns the standard starting position.
func NewBoard() *Board {
	return newBoard(chess.NewGame().Position(), 0)
}

// FromFEN builds a board from a FEN string. The position has no history.
func FromFEN(fen string) (*Board, error) {
	fen = strings.TrimSpace(fen)
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFEN, err)
	}
	pos := chess.NewGame(opt).Position()
	return newBoard(pos, halfMoveClock(fen)), nil
}

// FromGame builds a board at the final position of g, with every earlier
// position of the game kept as history.
func FromGame(g *chess.Game) *Board {
	b := &Board{}
	for _, pos := range g.Positions() {
		b.stack = append(b.stack, newFrame(pos, halfMoveClock(pos.String())))
	}
	if len(b.stack) == 0 {
		return NewBoard()
	}
	return b
}

func newBoard(pos *chess.Position, halfMoves int) *Board {
	return &Board{stack: []frame{newFrame(pos, halfMoves)}}
}

func newFrame(pos *chess.Position, halfMoves int) frame {
	moves := pos.ValidMoves()
	return frame{
		pos:       pos,
		halfMoves: halfMoves,
		key:       repetitionKey(pos, moves),
		moves:     moves,
	}
}

// halfMoveClock reads the fifth FEN field, defaulting to 0.
func halfMoveClock(fen string) int {
	parts := strings.Fields(fen)
	if len(parts) < 5 {
		return 0
	}
	n, err := strconv.Atoi(parts[4])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (b *Board) top() *frame {
	return &b.stack[len(b.stack)-1]
}

// Position returns the current notnil/chess position.
func (b *Board) Position() *chess.Position {
	return b.top().pos
}

// Clone returns an independent copy sharing the immutable positions.
func (b *Board) Clone() *Board {
	stack := make([]frame, len(b.stack))
	copy(stack, b.stack)
	return &Board{stack: stack}
}

// Ply returns the number of moves pushed since the first recorded position.
func (b *Board) Ply() int {
	return len(b.stack) - 1
}

func (b *Board) Turn() chess.Color {
	return b.top().pos.Turn()
}

// LegalMoves returns the moves available to the side to move. The caller may
// reorder the returned slice.
func (b *Board) LegalMoves() []*chess.Move {
	moves := b.top().moves
	out := make([]*chess.Move, len(moves))
	copy(out, moves)
	return out
}

// Push plays m, which must be legal in the current position.
func (b *Board) Push(m *chess.Move) {
	cur := b.top()
	clock := cur.halfMoves + 1
	if cur.pos.Board().Piece(m.S1()).Type() == chess.Pawn || b.IsCapture(m) {
		clock = 0
	}
	b.stack = append(b.stack, newFrame(cur.pos.Update(m), clock))
}

// Pop takes back the last pushed move. Popping past the first recorded
// position is a programming error.
func (b *Board) Pop() {
	if len(b.stack) <= 1 {
		panic("rules: Pop without a matching Push")
	}
	b.stack[len(b.stack)-1] = frame{}
	b.stack = b.stack[:len(b.stack)-1]
}

// PieceAt returns the occupant of sq, or chess.NoPiece.
func (b *Board) PieceAt(sq chess.Square) chess.Piece {
	return b.top().pos.Board().Piece(sq)
}

// IsCapture reports whether m takes a piece. notnil/chess tags en passant
// separately from ordinary captures; both count here.
func (b *Board) IsCapture(m *chess.Move) bool {
	return m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)
}

func (b *Board) IsEnPassant(m *chess.Move) bool {
	return m.HasTag(chess.EnPassant)
}

func (b *Board) Promotion(m *chess.Move) chess.PieceType {
	return m.Promo()
}

// FEN returns the current position in Forsyth-Edwards notation.
func (b *Board) FEN() string {
	return b.top().pos.String()
}

// Draw renders the current board as text, White at the bottom.
func (b *Board) Draw() string {
	return b.top().pos.Board().Draw()
}
