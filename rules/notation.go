package rules

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// ParseMove reads a move in UCI ("g1f3", "e7e8q") or SAN ("Nf3", "exd5",
// "O-O") and returns the matching legal move of the current position.
func (b *Board) ParseMove(s string) (*chess.Move, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty move", ErrIllegalMove)
	}
	pos := b.top().pos

	// UCI first: the SAN decoder reads "g1f3" as the pawn move f2f3.
	if m, err := (chess.UCINotation{}).Decode(pos, strings.ToLower(s)); err == nil {
		if legal := b.find(m); legal != nil {
			return legal, nil
		}
	}
	if m, err := (chess.AlgebraicNotation{}).Decode(pos, s); err == nil {
		if legal := b.find(m); legal != nil {
			return legal, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrIllegalMove, s)
}

// find returns the legal move with the same squares and promotion as m.
// Decoded moves may lack the tags the move generator attaches.
func (b *Board) find(m *chess.Move) *chess.Move {
	for _, legal := range b.top().moves {
		if legal.S1() == m.S1() && legal.S2() == m.S2() && legal.Promo() == m.Promo() {
			return legal
		}
	}
	return nil
}

// SAN encodes m, which must be legal in the current position.
func (b *Board) SAN(m *chess.Move) string {
	return chess.AlgebraicNotation{}.Encode(b.top().pos, m)
}

// UCI encodes m in coordinate notation.
func UCI(m *chess.Move) string {
	if m == nil {
		return ""
	}
	return chess.UCINotation{}.Encode(nil, m)
}
