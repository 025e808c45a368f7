// Package tui is a terminal game against the engine.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/notnil/chess"

	"github.com/Kunal-047/Chess-engine/engine"
	"github.com/Kunal-047/Chess-engine/rules"
)

// Options configure a session.
type Options struct {
	Depth int
	// FEN is the starting position; empty means the standard one.
	FEN string
	// EngineWhite gives the engine the white pieces.
	EngineWhite bool
}

// engineMoveMsg carries a finished search back to the UI goroutine.
type engineMoveMsg struct {
	gen int
	res engine.Result
}

type Model struct {
	opts        Options
	board       *rules.Board
	engineColor chess.Color
	last        *chess.Move

	// gen invalidates searches started before a "new" command.
	gen      int
	thinking bool
	over     bool

	input    textinput.Model
	logLines []string

	width  int
	height int
}

// NewModel validates opts and sets up the starting position.
func NewModel(opts Options) (Model, error) {
	board, err := startBoard(opts.FEN)
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "move (e4, Nf3, e2e4), new, quit"
	ti.Prompt = "> "
	ti.CharLimit = 80
	ti.Width = 40
	ti.Focus()

	engineColor := chess.Black
	if opts.EngineWhite {
		engineColor = chess.White
	}

	m := Model{
		opts:        opts,
		board:       board,
		engineColor: engineColor,
		input:       ti,
	}
	m.appendLog(fmt.Sprintf("new game, engine plays %s at depth %d", colorName(engineColor), opts.Depth))
	m.checkOver()
	m.thinking = m.engineToMove()
	return m, nil
}

func startBoard(fen string) (*rules.Board, error) {
	if strings.TrimSpace(fen) == "" {
		return rules.NewBoard(), nil
	}
	return rules.FromFEN(fen)
}

func (m Model) Init() tea.Cmd {
	if m.thinking {
		return m.searchCmd()
	}
	return textinput.Blink
}

func (m Model) engineToMove() bool {
	return !m.over && m.board.Turn() == m.engineColor
}

// searchCmd searches a clone so the UI keeps its own board.
func (m Model) searchCmd() tea.Cmd {
	b, gen, depth := m.board.Clone(), m.gen, m.opts.Depth
	return func() tea.Msg {
		return engineMoveMsg{gen: gen, res: engine.Search(b, depth)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case engineMoveMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.thinking = false
		m.applyEngineMove(msg.res)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			return m.execCommand(line)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) execCommand(line string) (tea.Model, tea.Cmd) {
	m.appendLog("> " + line)

	switch strings.ToLower(line) {
	case "quit", "exit":
		return m, tea.Quit
	case "new":
		board, err := startBoard(m.opts.FEN)
		if err != nil {
			m.appendLog(err.Error())
			return m, nil
		}
		m.board, m.last = board, nil
		m.gen++
		m.thinking, m.over = false, false
		m.appendLog("new game")
		m.checkOver()
		if m.engineToMove() {
			m.thinking = true
			return m, m.searchCmd()
		}
		return m, nil
	}

	switch {
	case m.over:
		m.appendLog("the game is over, type new or quit")
		return m, nil
	case m.thinking:
		m.appendLog("wait for the engine to move")
		return m, nil
	}

	mv, err := m.board.ParseMove(line)
	if err != nil {
		m.appendLog(fmt.Sprintf("invalid move: %v", err))
		return m, nil
	}
	m.appendLog("You play: " + m.board.SAN(mv))
	m.board.Push(mv)
	m.last = mv

	if m.checkOver() {
		return m, nil
	}
	m.thinking = true
	return m, m.searchCmd()
}

func (m *Model) applyEngineMove(res engine.Result) {
	if res.Move == nil {
		m.checkOver()
		return
	}
	// The search ran on a clone; resolve the move against our own board.
	mv, err := m.board.ParseMove(rules.UCI(res.Move))
	if err != nil {
		m.appendLog(fmt.Sprintf("engine move rejected: %v", err))
		return
	}
	m.appendLog(fmt.Sprintf("AI plays: %s (Eval: %s)", m.board.SAN(mv), formatScore(res.Score)))
	m.board.Push(mv)
	m.last = mv
	m.checkOver()
}

// checkOver logs the result once the game has ended.
func (m *Model) checkOver() bool {
	outcome := m.board.Outcome()
	if outcome == "" {
		return false
	}
	m.over = true
	m.appendLog("Game over: " + outcome)
	return true
}

func formatScore(score float64) string {
	if engine.IsMate(score) {
		if score > 0 {
			return "mate for White"
		}
		return "mate for Black"
	}
	return fmt.Sprintf("%.2f", score)
}

func colorName(c chess.Color) string {
	if c == chess.White {
		return "White"
	}
	return "Black"
}

func (m *Model) appendLog(s string) {
	m.logLines = append(m.logLines, s)
	if len(m.logLines) > 200 {
		m.logLines = m.logLines[len(m.logLines)-200:]
	}
}

func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	status := colorName(m.board.Turn()) + " to move"
	switch {
	case m.over:
		status = "game over"
	case m.thinking:
		status = "engine thinking..."
	}
	header := titleStyle.Render(fmt.Sprintf("chess-engine  [%s]  depth:%d", status, m.opts.Depth))

	boardBox := boxStyle.Render(RenderBoard(m.board, m.last))

	logHeight := max(5, m.height-16)
	logStart := max(0, len(m.logLines)-logHeight)
	logBody := strings.Join(m.logLines[logStart:], "\n")
	logBox := boxStyle.Width(max(30, m.width-32)).Height(logHeight).Render(logBody)

	inputBox := boxStyle.Width(max(20, m.width-2)).Render(m.input.View())

	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, boardBox, logBox) + "\n" + inputBox + "\n"
}
