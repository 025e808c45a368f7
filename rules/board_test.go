package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/notnil/chess"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func mustFEN(t *testing.T, fen string) *Board {
	t.Helper()
	b, err := FromFEN(fen)
	if err != nil {
		t.Fatalf("FromFEN(%q): %v", fen, err)
	}
	return b
}

func mustMove(t *testing.T, b *Board, s string) *chess.Move {
	t.Helper()
	m, err := b.ParseMove(s)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	return m
}

func TestNewBoardIsStartPosition(t *testing.T) {
	b := NewBoard()
	if b.FEN() != startFEN {
		t.Fatalf("FEN = %q, want %q", b.FEN(), startFEN)
	}
	if got := len(b.LegalMoves()); got != 20 {
		t.Fatalf("start position has %d legal moves, want 20", got)
	}
	if b.Turn() != chess.White {
		t.Fatalf("start position should be White to move")
	}
}

func TestPushPopRestoresPosition(t *testing.T) {
	b := NewBoard()
	before := b.FEN()

	b.Push(mustMove(t, b, "e4"))
	if b.FEN() == before {
		t.Fatalf("Push did not change the position")
	}
	if b.Ply() != 1 {
		t.Fatalf("Ply = %d, want 1", b.Ply())
	}
	b.Push(mustMove(t, b, "c5"))
	b.Pop()
	b.Pop()

	if b.FEN() != before {
		t.Fatalf("after Pop FEN = %q, want %q", b.FEN(), before)
	}
	if b.Ply() != 0 {
		t.Fatalf("Ply = %d, want 0", b.Ply())
	}
}

func TestPopWithoutPushPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Pop on a fresh board should panic")
		}
	}()
	NewBoard().Pop()
}

func TestLegalMovesReturnsCopy(t *testing.T) {
	b := NewBoard()
	moves := b.LegalMoves()
	moves[0], moves[len(moves)-1] = moves[len(moves)-1], moves[0]
	again := b.LegalMoves()
	if again[0] == moves[0] {
		t.Fatalf("reordering the returned slice leaked into the board")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBoard()
	c := b.Clone()
	c.Push(mustMove(t, c, "d4"))
	if b.FEN() != startFEN {
		t.Fatalf("pushing on a clone changed the original: %q", b.FEN())
	}
	c.Pop()
	if c.FEN() != startFEN {
		t.Fatalf("clone did not restore: %q", c.FEN())
	}
}

func TestFromFENRejectsGarbage(t *testing.T) {
	if _, err := FromFEN("not a fen"); !errors.Is(err, ErrBadFEN) {
		t.Fatalf("FromFEN error = %v, want ErrBadFEN", err)
	}
}

func TestFromGameKeepsHistory(t *testing.T) {
	g := chess.NewGame()
	for _, s := range []string{"e4", "e5", "Nf3", "Nc6"} {
		if err := g.MoveStr(s); err != nil {
			t.Fatalf("MoveStr(%s): %v", s, err)
		}
	}
	b := FromGame(g)
	if b.Ply() != 4 {
		t.Fatalf("Ply = %d, want 4", b.Ply())
	}
	if b.FEN() != g.Position().String() {
		t.Fatalf("FEN = %q, want %q", b.FEN(), g.Position().String())
	}
	for i := 0; i < 4; i++ {
		b.Pop()
	}
	if b.FEN() != startFEN {
		t.Fatalf("popping the whole game gave %q", b.FEN())
	}
}

func TestParseMove(t *testing.T) {
	b := NewBoard()

	san := mustMove(t, b, "Nf3")
	uci := mustMove(t, b, "g1f3")
	if san != uci {
		t.Fatalf("SAN and UCI should resolve to the same legal move")
	}
	if got := UCI(san); got != "g1f3" {
		t.Fatalf("UCI = %q, want g1f3", got)
	}
	if got := b.SAN(uci); got != "Nf3" {
		t.Fatalf("SAN = %q, want Nf3", got)
	}

	for _, tc := range []struct{ in, from string }{
		{"g1f3", "g1"},
		{"b1c3", "b1"},
		{"G1F3", "g1"},
		{"e2e4", "e2"},
	} {
		t.Run(tc.in, func(t *testing.T) {
			m := mustMove(t, b, tc.in)
			if m.S1().String() != tc.from || UCI(m) != strings.ToLower(tc.in) {
				t.Fatalf("ParseMove(%q) = %s", tc.in, UCI(m))
			}
		})
	}

	for _, bad := range []string{"", "e5", "e2e5", "Qh5"} {
		t.Run(bad, func(t *testing.T) {
			if _, err := b.ParseMove(bad); !errors.Is(err, ErrIllegalMove) {
				t.Fatalf("ParseMove(%q) error = %v, want ErrIllegalMove", bad, err)
			}
		})
	}
}

func TestPromotionAndEnPassantFacts(t *testing.T) {
	t.Run("promotion", func(t *testing.T) {
		b := mustFEN(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
		m := mustMove(t, b, "a7a8q")
		if b.Promotion(m) != chess.Queen {
			t.Fatalf("Promotion = %v, want queen", b.Promotion(m))
		}
		if b.IsCapture(m) {
			t.Fatalf("quiet promotion reported as capture")
		}
	})

	t.Run("en passant", func(t *testing.T) {
		b := mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2")
		m := mustMove(t, b, "e5d6")
		if !b.IsEnPassant(m) || !b.IsCapture(m) {
			t.Fatalf("e5d6 should be an en passant capture")
		}
		b.Push(m)
		if p := b.PieceAt(chess.D5); p != chess.NoPiece {
			t.Fatalf("captured pawn still on d5: %v", p)
		}
		if b.top().halfMoves != 0 {
			t.Fatalf("capture should reset the halfmove clock")
		}
	})
}
