package app

import (
	"strings"
	"testing"

	"github.com/notnil/chess"

	"github.com/Kunal-047/Chess-engine/engine"
)

func runUCI(t *testing.T, depth int, lines ...string) string {
	t.Helper()
	var sb strings.Builder
	srv := NewUCIServer(strings.NewReader(strings.Join(lines, "\n")+"\n"), &sb, depth)
	if err := srv.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	return sb.String()
}

func TestUCIHandshake(t *testing.T) {
	out := runUCI(t, 2, "uci", "isready", "quit")
	for _, want := range []string{"id name " + uciEngineName, "option name Depth type spin default 2", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Fatalf("handshake missing %q in %q", want, out)
		}
	}
}

func TestUCIGoFromStartpos(t *testing.T) {
	out := runUCI(t, 3, "position startpos", "go depth 1", "quit")
	if !strings.Contains(out, "info depth 1 score cp 500") {
		t.Fatalf("unexpected info line: %q", out)
	}
	if !strings.Contains(out, "bestmove g1f3") && !strings.Contains(out, "bestmove b1c3") {
		t.Fatalf("unexpected bestmove: %q", out)
	}
}

func TestUCIPositionWithMoves(t *testing.T) {
	var sb strings.Builder
	srv := NewUCIServer(strings.NewReader("position startpos moves e2e4 c7c5 g1f3\n"), &sb, 1)
	if err := srv.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	want := "rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got := srv.board.FEN(); got != want {
		t.Fatalf("board = %q, want %q", got, want)
	}
	if srv.board.Ply() != 3 {
		t.Fatalf("ply = %d, want 3", srv.board.Ply())
	}
}

func TestUCIPositionWithPieceMoves(t *testing.T) {
	var sb strings.Builder
	srv := NewUCIServer(strings.NewReader("position startpos moves g1f3 g8f6 b1c3\n"), &sb, 1)
	if err := srv.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	want := "rnbqkb1r/pppppppp/5n2/8/8/2N2N2/PPPPPPPP/R1BQKB1R b KQkq - 3 2"
	if got := srv.board.FEN(); got != want {
		t.Fatalf("board = %q, want %q", got, want)
	}
	if strings.Contains(sb.String(), "info string") {
		t.Fatalf("knight moves were rejected: %q", sb.String())
	}
}

func TestUCIFenWithMoves(t *testing.T) {
	out := runUCI(t, 2, "position fen 4k3/8/8/3q4/8/8/4P3/4K3 w - - 0 1 moves e2e4 e8e7", "go", "quit")
	if !strings.Contains(out, "bestmove e4d5") {
		t.Fatalf("expected exd5, got %q", out)
	}
}

func TestUCIMateScoreFromSideToMove(t *testing.T) {
	out := runUCI(t, 2, "position fen r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", "go depth 1", "quit")
	if !strings.Contains(out, "score cp 32000") || !strings.Contains(out, "bestmove a8a1") {
		t.Fatalf("black to mate should report a winning score: %q", out)
	}
}

func TestUCITerminalRoot(t *testing.T) {
	out := runUCI(t, 2, "position fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", "go", "quit")
	if !strings.Contains(out, "bestmove 0000") {
		t.Fatalf("stalemate root should answer 0000: %q", out)
	}
	if strings.Contains(out, " pv ") {
		t.Fatalf("terminal root has no pv: %q", out)
	}
}

func TestUCISetOptionDepth(t *testing.T) {
	out := runUCI(t, 3, "setoption name Depth value 0", "go", "setoption name Depth value x", "quit")
	if !strings.Contains(out, "info depth 0 score cp 0") {
		t.Fatalf("depth option not applied: %q", out)
	}
	if !strings.Contains(out, "info string Depth value is not a non-negative int") {
		t.Fatalf("bad option value not reported: %q", out)
	}
}

func TestUCIReportsBadInput(t *testing.T) {
	out := runUCI(t, 1,
		"position fen not-a-fen",
		"position startpos moves e2e5",
		"frobnicate",
		"quit",
		"go",
	)
	if !strings.Contains(out, "info string invalid FEN") {
		t.Fatalf("bad FEN not reported: %q", out)
	}
	if !strings.Contains(out, "info string illegal move") {
		t.Fatalf("illegal move not reported: %q", out)
	}
	if !strings.Contains(out, "info string Unknown command frobnicate") {
		t.Fatalf("unknown command not reported: %q", out)
	}
	if strings.Contains(out, "bestmove") {
		t.Fatalf("commands after quit must be ignored: %q", out)
	}
}

func TestCentipawns(t *testing.T) {
	cases := []struct {
		score float64
		turn  chess.Color
		want  int
	}{
		{0.5, chess.White, 100},
		{0.5, chess.Black, -100},
		{-1.25, chess.Black, 250},
		{engine.MateScore, chess.White, uciMateCP},
		{engine.MateScore, chess.Black, -uciMateCP},
		{-engine.MateScore, chess.Black, uciMateCP},
	}
	for _, tc := range cases {
		if got := centipawns(tc.score, tc.turn); got != tc.want {
			t.Fatalf("centipawns(%v, %v) = %d, want %d", tc.score, tc.turn, got, tc.want)
		}
	}
}
