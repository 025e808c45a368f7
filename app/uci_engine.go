package app

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/engine"
	"github.com/Kunal-047/Chess-engine/rules"
)

const (
	uciEngineName = "Chess-engine"
	uciAuthor     = "Kunal-047"
	// uciMateCP stands in for a mate score, which the search reports
	// without a distance.
	uciMateCP = 32000
)

// UCIServer speaks the UCI protocol over a line stream. It searches
// synchronously, so "stop" has nothing to interrupt.
type UCIServer struct {
	in       *bufio.Scanner
	out      *bufio.Writer
	depth    int
	board    *rules.Board
	searcher *engine.Searcher
}

// NewUCIServer reads commands from r and writes replies to w. depth is the
// search depth used when "go" names none.
func NewUCIServer(r io.Reader, w io.Writer, depth int) *UCIServer {
	return &UCIServer{
		in:       bufio.NewScanner(r),
		out:      bufio.NewWriter(w),
		depth:    depth,
		board:    rules.NewBoard(),
		searcher: engine.NewSearcher(),
	}
}

// Run handles commands until "quit" or the end of input.
func (u *UCIServer) Run() error {
	defer u.out.Flush()
	for u.in.Scan() {
		tokens := strings.Fields(u.in.Text())
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		if quit := u.handle(tokens); quit {
			return nil
		}
		if err := u.out.Flush(); err != nil {
			return err
		}
	}
	return u.in.Err()
}

func (u *UCIServer) handle(tokens []string) (quit bool) {
	switch strings.ToLower(tokens[0]) {
	case "uci":
		u.send("id name %s", uciEngineName)
		u.send("id author %s", uciAuthor)
		u.send("option name Depth type spin default %d min 0 max 32", u.depth)
		u.send("uciok")
	case "isready":
		u.send("readyok")
	case "ucinewgame":
		u.board = rules.NewBoard()
	case "setoption":
		u.setOption(tokens)
	case "position":
		u.position(tokens[1:])
	case "go":
		u.search(tokens[1:])
	case "stop":
	case "quit":
		return true
	default:
		u.send("info string Unknown command %s", tokens[0])
	}
	return false
}

func (u *UCIServer) setOption(tokens []string) {
	if len(tokens) != 5 || tokens[1] != "name" || tokens[3] != "value" {
		u.send("info string Malformed setoption command")
		return
	}
	switch strings.ToLower(tokens[2]) {
	case "depth":
		n, err := strconv.Atoi(tokens[4])
		if err != nil || n < 0 {
			u.send("info string Depth value is not a non-negative int (%s)", tokens[4])
			return
		}
		u.depth = n
	default:
		u.send("info string Unknown UCI option %s", tokens[2])
	}
}

// position handles "startpos [moves ...]" and "fen <fen> [moves ...]".
func (u *UCIServer) position(args []string) {
	if len(args) == 0 {
		u.send("info string Malformed position command")
		return
	}

	var (
		board *rules.Board
		rest  []string
	)
	switch strings.ToLower(args[0]) {
	case "startpos":
		board, rest = rules.NewBoard(), args[1:]
	case "fen":
		end := len(args)
		for i, tok := range args {
			if tok == "moves" {
				end = i
				break
			}
		}
		b, err := rules.FromFEN(strings.Join(args[1:end], " "))
		if err != nil {
			u.send("info string %v", err)
			return
		}
		board, rest = b, args[end:]
	default:
		u.send("info string Malformed position command")
		return
	}

	if len(rest) > 0 && rest[0] == "moves" {
		for _, s := range rest[1:] {
			m, err := board.ParseMove(s)
			if err != nil {
				u.send("info string %v", err)
				break
			}
			board.Push(m)
		}
	}
	u.board = board
}

func (u *UCIServer) search(args []string) {
	depth := u.depth
	for i := 0; i < len(args); i++ {
		switch strings.ToLower(args[i]) {
		case "depth":
			if i+1 >= len(args) {
				u.send("info string Malformed go command option depth")
				continue
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 0 {
				u.send("info string Malformed go command; could not convert depth")
				continue
			}
			depth = n
		case "wtime", "btime", "winc", "binc", "movestogo", "movetime", "nodes":
			// Fixed-depth engine: clock limits are accepted and ignored.
			i++
		case "infinite", "ponder":
		default:
			u.send("info string Unknown go subcommand %s", args[i])
		}
	}

	res := u.searcher.Search(u.board, depth)
	log.Debug().Str("fen", u.board.FEN()).Int("depth", depth).Float64("score", res.Score).Msg("uci search")

	info := fmt.Sprintf("info depth %d score cp %d nodes %d time %d",
		res.Depth, centipawns(res.Score, u.board.Turn()), res.Stats.Nodes, res.Elapsed.Milliseconds())
	if res.Move != nil {
		info += " pv " + rules.UCI(res.Move)
	}
	u.send("%s", info)

	if res.Move == nil {
		u.send("bestmove 0000")
		return
	}
	u.send("bestmove %s", rules.UCI(res.Move))
}

// centipawns converts a White-relative engine score to UCI centipawns from
// the side to move. A pawn is worth 0.5 in engine units.
func centipawns(score float64, turn chess.Color) int {
	if turn == chess.Black {
		score = -score
	}
	if engine.IsMate(score) {
		if score > 0 {
			return uciMateCP
		}
		return -uciMateCP
	}
	return int(math.Round(score * 200))
}

func (u *UCIServer) send(format string, args ...any) {
	fmt.Fprintf(u.out, format+"\n", args...)
}
