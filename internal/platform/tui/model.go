package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/merge-duel/internal/duel"
	"github.com/vovakirdan/merge-duel/internal/room"
)

// lobbyState tracks where the player is in the menu -> match flow.
type lobbyState int

const (
	stateMenu lobbyState = iota
	stateQueueWaiting
	stateCreateCode
	stateJoinCode
	stateHostWaiting
	statePlaying
	stateEnded
)

// SessionModel is the top-level Bubble Tea model for one connected player.
// It talks to the coordinator by sending messages and waits for session
// events on the channel session it was bound to.
type SessionModel struct {
	coordinator *room.Coordinator
	session     *room.ChannelSession
	player      duel.PlayerID

	state  lobbyState
	width  int
	height int

	spinner   spinner.Model
	codeInput textinput.Model
	keyMapper *KeyMapper

	hostCode string
	errMsg   string
	notice   string

	snapshot duel.Snapshot
	hasState bool
	winner   room.Winner
	quitting bool
}

// NewSessionModel creates the model for a freshly connected SSH session.
func NewSessionModel(coordinator *room.Coordinator, session *room.ChannelSession, player duel.PlayerID, width, height int) SessionModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "code"
	ti.CharLimit = 16
	ti.Width = 20

	return SessionModel{
		coordinator: coordinator,
		session:     session,
		player:      player,
		state:       stateMenu,
		width:       width,
		height:      height,
		spinner:     sp,
		codeInput:   ti,
		keyMapper:   NewKeyMapper(),
	}
}

// Init starts listening for coordinator events.
func (m SessionModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent returns a command that blocks on the next session event.
func (m SessionModel) waitForEvent() tea.Cmd {
	events := m.session.Events()
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return nil
		}
		return evt
	}
}

// Update handles messages.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case room.SessionEvent:
		return m.handleEvent(msg)
	}
	return m, nil
}

// handleEvent reacts to coordinator events and re-arms the listener.
func (m SessionModel) handleEvent(evt room.SessionEvent) (tea.Model, tea.Cmd) {
	switch evt := evt.(type) {
	case room.MatchFoundEvent:
		m.state = statePlaying
		m.hasState = false
		m.notice = ""
		return m, m.waitForEvent()
	case room.WaitingForPlayerEvent:
		m.state = stateHostWaiting
		m.errMsg = ""
		return m, tea.Batch(m.waitForEvent(), m.spinner.Tick)
	case room.RoomReadyEvent:
		m.state = statePlaying
		m.hasState = false
		m.errMsg = ""
		return m, m.waitForEvent()
	case room.StateEvent:
		m.snapshot = evt.Snapshot
		m.hasState = true
		m.state = statePlaying
		return m, m.waitForEvent()
	case room.EndEvent:
		m.state = stateEnded
		m.winner = evt.Winner
		return m, m.waitForEvent()
	case room.RejectEvent:
		if evt.Reason == room.RejectStaleTurn {
			// Out-of-date input, the next state broadcast resolves it.
			return m, m.waitForEvent()
		}
		m.notice = fmt.Sprintf("rejected: %s", evt.Reason)
		if m.state == statePlaying && !m.hasState {
			m.state = stateMenu
		}
		return m, m.waitForEvent()
	case room.ErrorEvent:
		m.errMsg = strings.ReplaceAll(string(evt.Reason), "_", " ")
		switch m.state {
		case stateCreateCode, stateJoinCode, stateHostWaiting:
			// Stay in the code flow so the player can retry.
		default:
			m.state = stateMenu
		}
		return m, m.waitForEvent()
	}
	return m, m.waitForEvent()
}

// handleKey processes keyboard input per state.
func (m SessionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case stateMenu:
		return m.handleMenuKey(msg)
	case stateQueueWaiting:
		if msg.String() == "esc" {
			m.coordinator.Send(room.CancelMatchMsg{Session: m.session.ID()})
			m.state = stateMenu
		}
		return m, nil
	case stateCreateCode, stateJoinCode:
		return m.handleCodeKey(msg)
	case stateHostWaiting:
		if msg.String() == "esc" {
			m.coordinator.Send(room.CancelCodeMsg{Session: m.session.ID()})
			m.state = stateMenu
		}
		return m, nil
	case statePlaying:
		if dir, ok := m.keyMapper.MapKeyToDirection(msg); ok && m.hasState {
			m.coordinator.Send(room.InputMsg{
				Session: m.session.ID(),
				Dir:     dir,
			})
		}
		return m, nil
	case stateEnded:
		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "enter", "esc", "b":
			m.state = stateMenu
			m.hasState = false
			m.winner = ""
			m.notice = ""
		}
		return m, nil
	}
	return m, nil
}

func (m SessionModel) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "f", "1":
		m.coordinator.Send(room.FindMatchMsg{Session: m.session.ID(), Player: m.player})
		m.state = stateQueueWaiting
		m.errMsg = ""
		return m, m.spinner.Tick
	case "c", "2":
		m.state = stateCreateCode
		m.codeInput.SetValue("")
		m.codeInput.Focus()
		m.errMsg = ""
		return m, textinput.Blink
	case "j", "3":
		m.state = stateJoinCode
		m.codeInput.SetValue("")
		m.codeInput.Focus()
		m.errMsg = ""
		return m, textinput.Blink
	}
	return m, nil
}

func (m SessionModel) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateMenu
		m.errMsg = ""
		return m, nil
	case "enter":
		code := strings.TrimSpace(m.codeInput.Value())
		if code == "" {
			return m, nil
		}
		if m.state == stateCreateCode {
			m.hostCode = code
			m.coordinator.Send(room.CreateRoomWithCodeMsg{
				Session: m.session.ID(),
				Player:  m.player,
				Code:    code,
			})
		} else {
			m.coordinator.Send(room.JoinRoomWithCodeMsg{
				Session: m.session.ID(),
				Player:  m.player,
				Code:    code,
			})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(msg)
	return m, cmd
}

// View renders the current state.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateQueueWaiting:
		return m.viewQueueWaiting()
	case stateCreateCode:
		return m.viewCodeEntry("CREATE ROOM", "Pick a code to share with your opponent:")
	case stateJoinCode:
		return m.viewCodeEntry("JOIN ROOM", "Enter the code your opponent shared:")
	case stateHostWaiting:
		return m.viewHostWaiting()
	case statePlaying:
		return m.viewPlaying()
	case stateEnded:
		return m.viewEnded()
	}
	return ""
}

func (m SessionModel) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("MERGE DUEL"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("Playing as %s", m.player), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("[F] Find a match", m.width))
	b.WriteString("\n")
	b.WriteString(centerText("[C] Create room with code", m.width))
	b.WriteString("\n")
	b.WriteString(centerText("[J] Join room with code", m.width))
	b.WriteString("\n\n")
	if m.errMsg != "" {
		b.WriteString(centerText(errorStyle.Render(m.errMsg), m.width))
		b.WriteString("\n\n")
	}
	if m.notice != "" {
		b.WriteString(centerText(m.notice, m.width))
		b.WriteString("\n\n")
	}
	b.WriteString(centerText("Q: Quit", m.width))

	return b.String()
}

func (m SessionModel) viewQueueWaiting() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("MATCHMAKING"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("%s Searching for an opponent...", m.spinner.View()), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Esc: Cancel", m.width))

	return b.String()
}

func (m SessionModel) viewCodeEntry(title, prompt string) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(prompt, m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.codeInput.View(), m.width))
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(centerText(errorStyle.Render(m.errMsg), m.width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(centerText("Enter: Confirm  |  Esc: Back", m.width))

	return b.String()
}

func (m SessionModel) viewHostWaiting() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("ROOM CREATED"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Share this code with your opponent:", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(codeStyle.Render(fmt.Sprintf(" %s ", m.hostCode)), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("%s Waiting for player to join...", m.spinner.View()), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Esc: Cancel", m.width))

	return b.String()
}

func (m SessionModel) viewPlaying() string {
	if !m.hasState {
		var b strings.Builder
		b.WriteString("\n")
		b.WriteString(centerText("Match starting...", m.width))
		return b.String()
	}
	return RenderDuel(m.snapshot, m.width)
}

func (m SessionModel) viewEnded() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("MATCH OVER"), m.width))
	b.WriteString("\n\n")

	var verdict string
	switch m.winner {
	case room.WinnerYou:
		verdict = winStyle.Render("YOU WIN")
	case room.WinnerOpp:
		verdict = loseStyle.Render("YOU LOSE")
	default:
		verdict = "DRAW"
	}
	b.WriteString(centerText(verdict, m.width))
	b.WriteString("\n\n")

	if m.hasState {
		b.WriteString(centerText(fmt.Sprintf("Final score: %d  Max tile: %d", m.snapshot.You.Score, m.snapshot.You.MaxTile), m.width))
		b.WriteString("\n\n")
	}

	b.WriteString(centerText("Enter: Back to menu  |  Q: Quit", m.width))

	return b.String()
}
