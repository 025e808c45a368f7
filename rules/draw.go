package rules

import (
	"strings"

	"github.com/notnil/chess"
)

const (
	seventyFiveMoveHalfMoves = 150
	fivefoldCount            = 5
)

func (b *Board) IsCheckmate() bool {
	return b.top().pos.Status() == chess.Checkmate
}

func (b *Board) IsStalemate() bool {
	return b.top().pos.Status() == chess.Stalemate
}

// IsSeventyFiveMoves reports the automatic draw after 75 moves by each side
// without a pawn move or capture.
func (b *Board) IsSeventyFiveMoves() bool {
	return b.top().halfMoves >= seventyFiveMoveHalfMoves
}

// IsFivefoldRepetition reports whether the current position has occurred at
// least five times in the recorded history.
func (b *Board) IsFivefoldRepetition() bool {
	return b.repetitions() >= fivefoldCount
}

func (b *Board) repetitions() int {
	key := b.top().key
	n := 0
	for i := range b.stack {
		if b.stack[i].key == key {
			n++
		}
	}
	return n
}

// IsInsufficientMaterial reports whether neither side can possibly mate.
func (b *Board) IsInsufficientMaterial() bool {
	m := countMaterial(b.top().pos.Board())
	return m.insufficient(chess.White) && m.insufficient(chess.Black)
}

type material struct {
	pieces      [3]int // all pieces including the king, indexed by colour
	pawns       [3]int
	knights     [3]int
	bishops     [3]int
	heavies     [3]int // rooks and queens
	nonRoyal    [3]int // anything but kings and queens
	lightBishop bool
	darkBishop  bool
}

func countMaterial(board *chess.Board) material {
	var m material
	for i := 0; i < 64; i++ {
		sq := chess.Square(i)
		p := board.Piece(sq)
		if p == chess.NoPiece {
			continue
		}
		c := p.Color()
		m.pieces[c]++
		switch p.Type() {
		case chess.Pawn:
			m.pawns[c]++
		case chess.Knight:
			m.knights[c]++
		case chess.Bishop:
			m.bishops[c]++
			if (int(sq.File())+int(sq.Rank()))%2 == 0 {
				m.darkBishop = true
			} else {
				m.lightBishop = true
			}
		case chess.Rook, chess.Queen:
			m.heavies[c]++
		}
		if t := p.Type(); t != chess.King && t != chess.Queen {
			m.nonRoyal[c]++
		}
	}
	return m
}

// insufficient reports whether c alone cannot deliver mate, counting the
// helpmates the opponent's pieces could allow.
func (m material) insufficient(c chess.Color) bool {
	if m.pawns[c] > 0 || m.heavies[c] > 0 {
		return false
	}
	if m.knights[c] > 0 {
		// A lone knight, and only if the opponent has nothing to block with.
		return m.pieces[c] <= 2 && m.nonRoyal[c.Other()] == 0
	}
	if m.bishops[c] > 0 {
		sameColour := !(m.lightBishop && m.darkBishop)
		noPawns := m.pawns[chess.White]+m.pawns[chess.Black] == 0
		noKnights := m.knights[chess.White]+m.knights[chess.Black] == 0
		return sameColour && noPawns && noKnights
	}
	return true
}

// repetitionKey identifies a position for repetition counting: placement,
// side to move, castling rights, and the en passant square only when an en
// passant capture is actually available.
func repetitionKey(pos *chess.Position, legal []*chess.Move) string {
	ep := "-"
	for _, m := range legal {
		if m.HasTag(chess.EnPassant) {
			ep = pos.EnPassantSquare().String()
			break
		}
	}
	var sb strings.Builder
	sb.WriteString(pos.Board().String())
	sb.WriteByte(' ')
	sb.WriteString(pos.Turn().String())
	sb.WriteByte(' ')
	sb.WriteString(pos.CastleRights().String())
	sb.WriteByte(' ')
	sb.WriteString(ep)
	return sb.String()
}

// Outcome describes how the game stands: "" while play continues.
func (b *Board) Outcome() string {
	switch {
	case b.IsCheckmate():
		if b.Turn() == chess.White {
			return "0-1 checkmate, Black wins"
		}
		return "1-0 checkmate, White wins"
	case b.IsStalemate():
		return "1/2-1/2 stalemate"
	case b.IsInsufficientMaterial():
		return "1/2-1/2 insufficient material"
	case b.IsSeventyFiveMoves():
		return "1/2-1/2 seventy-five-move rule"
	case b.IsFivefoldRepetition():
		return "1/2-1/2 fivefold repetition"
	}
	return ""
}
