package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/notnil/chess"

	"github.com/Kunal-047/Chess-engine/rules"
)

var (
	lightSquare = lipgloss.NewStyle().Background(lipgloss.Color("180")).Foreground(lipgloss.Color("0"))
	darkSquare  = lipgloss.NewStyle().Background(lipgloss.Color("94")).Foreground(lipgloss.Color("0"))
	lastMove    = lipgloss.NewStyle().Background(lipgloss.Color("143")).Foreground(lipgloss.Color("0"))
	coordStyle  = lipgloss.NewStyle().Faint(true)
)

// RenderBoard draws the position with rank 8 on top. Squares touched by the
// last move are highlighted.
func RenderBoard(b *rules.Board, last *chess.Move) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(coordStyle.Render(string(rune('1' + rank))))
		sb.WriteString(" ")
		for file := 0; file < 8; file++ {
			sq := chess.Square(rank*8 + file)
			sb.WriteString(squareStyle(sq, last).Render(" " + pieceGlyph(b.PieceAt(sq)) + " "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(coordStyle.Render("   a  b  c  d  e  f  g  h"))
	return sb.String()
}

func squareStyle(sq chess.Square, last *chess.Move) lipgloss.Style {
	if last != nil && (sq == last.S1() || sq == last.S2()) {
		return lastMove
	}
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

// pieceGlyph uses FEN letters: upper case for White, "." for empty.
func pieceGlyph(p chess.Piece) string {
	if p == chess.NoPiece {
		return "."
	}
	letter := p.Type().String()
	if p.Color() == chess.White {
		return strings.ToUpper(letter)
	}
	return strings.ToLower(letter)
}
