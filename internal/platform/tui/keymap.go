package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/merge-duel/internal/board"
)

// KeyMapper translates Bubble Tea key messages to move directions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKeyToDirection translates a key message to a board direction.
// The second return value is false for keys with no binding.
func (km *KeyMapper) MapKeyToDirection(msg tea.KeyMsg) (board.Direction, bool) {
	switch msg.String() {
	case "up", "w", "k":
		return board.Up, true
	case "down", "s", "j":
		return board.Down, true
	case "left", "a", "h":
		return board.Left, true
	case "right", "d", "l":
		return board.Right, true
	}
	return board.Up, false
}
