package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/merge-duel/internal/board"
	"github.com/vovakirdan/merge-duel/internal/duel"
)

const cellWidth = 6

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	winStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	loseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	codeStyle  = lipgloss.NewStyle().Bold(true).Reverse(true)

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Bold(true)

	blockXStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	blockHardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	// tileStyles keys on tile value, falling back to the zero key.
	tileStyles = map[int]lipgloss.Style{
		0:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		2:    lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		4:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		8:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		16:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		32:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		64:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		128:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		256:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		512:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		1024: lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		2048: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	}
)

// RenderDuel draws both boards side by side with the player's own board on
// the left.
func RenderDuel(snap duel.Snapshot, width int) string {
	var b strings.Builder

	you := renderPlayer("YOU", snap.You)
	panels := you
	if snap.Opp != nil {
		opp := renderPlayer("OPPONENT", *snap.Opp)
		panels = lipgloss.JoinHorizontal(lipgloss.Top, you, "   ", opp)
	}

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("MERGE DUEL"), width))
	b.WriteString("\n\n")
	for _, line := range strings.Split(panels, "\n") {
		b.WriteString(centerText(line, width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(centerText(fmt.Sprintf("Turn %d", snap.Turn), width))
	b.WriteString("\n")
	b.WriteString(centerText("Arrows/WASD: Move  |  Ctrl+C: Quit", width))

	return b.String()
}

// renderPlayer draws one labeled board panel with its score line.
func renderPlayer(label string, view duel.PlayerView) string {
	grid := renderGrid(view.Board)
	score := fmt.Sprintf("Score %d  Max %d", view.Score, view.MaxTile)

	return lipgloss.JoinVertical(lipgloss.Center,
		labelStyle.Render(label),
		boardStyle.Render(grid),
		score,
	)
}

// renderGrid draws the 5x5 grid. Ghost tiles are animation hints for
// clients that want them and are not drawn here.
func renderGrid(b board.Board) string {
	var grid [board.Size][board.Size]*board.Tile
	for i := range b {
		t := &b[i]
		if t.Ghost {
			continue
		}
		grid[t.Row][t.Col] = t
	}

	var rows []string
	for r := 0; r < board.Size; r++ {
		var cells []string
		for c := 0; c < board.Size; c++ {
			cells = append(cells, renderCell(grid[r][c]))
		}
		rows = append(rows, strings.Join(cells, ""))
	}
	return strings.Join(rows, "\n")
}

func renderCell(t *board.Tile) string {
	if t == nil {
		return pad("·", emptyStyle)
	}
	switch t.Kind {
	case board.KindBlockX:
		return pad("××", blockXStyle)
	case board.KindBlockHard:
		return pad("▓▓", blockHardStyle)
	default:
		style, ok := tileStyles[t.Value]
		if !ok {
			style = tileStyles[0]
		}
		return pad(fmt.Sprintf("%d", t.Value), style)
	}
}

// pad centers content in a fixed-width cell.
func pad(content string, style lipgloss.Style) string {
	w := lipgloss.Width(content)
	left := (cellWidth - w) / 2
	if left < 0 {
		left = 0
	}
	right := cellWidth - w - left
	if right < 0 {
		right = 0
	}
	return strings.Repeat(" ", left) + style.Render(content) + strings.Repeat(" ", right)
}

// centerText centers a line of text within the given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
