// Package duel holds the authoritative per-room match state for a
// two-player tile-merging duel: both players' boards and scores, the turn
// counter and the shared seeded RNG that makes a match replayable.
package duel

import (
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/vovakirdan/merge-duel/internal/board"
	"github.com/vovakirdan/merge-duel/internal/effect"
)

// SessionID identifies a transport connection. It changes on reconnect.
type SessionID string

// PlayerID is the durable player identity surviving reconnection.
type PlayerID string

// RoomID identifies a match room.
type RoomID string

// Phase is the match lifecycle state. A match never returns to Forming
// from Active; Closed matches are removed from the directory, not kept.
type Phase int

const (
	PhaseForming Phase = iota // one player, awaiting the second
	PhaseActive               // two players, open
	PhaseClosed               // terminal
)

// PlayerState is one player's half of a match, owned exclusively by it.
type PlayerState struct {
	Player  PlayerID
	Board   board.Board
	Score   int
	MaxTile int
}

// PlayerView is the snapshot form of a player's state.
type PlayerView struct {
	Board   board.Board `json:"board"`
	Score   int         `json:"score"`
	MaxTile int         `json:"maxTile"`
}

// Snapshot is the authoritative state delivered to one viewer.
type Snapshot struct {
	Turn    int             `json:"turnId"`
	You     PlayerView      `json:"you"`
	Opp     *PlayerView     `json:"opp,omitempty"`
	Effects []effect.Effect `json:"effects,omitempty"`
}

// Match is the authoritative record of one room.
type Match struct {
	ID        RoomID
	CreatedAt time.Time
	Turn      int
	Open      bool

	sessions   [2]SessionID
	players    [2]PlayerID
	states     map[SessionID]*PlayerState
	count      int
	rng        *rand.Rand
	ids        *board.IDSource
	thresholds effect.Thresholds
}

// Seed derives the shared RNG seed from the room id and creation time.
func Seed(id RoomID, now time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64()) ^ now.UnixNano()
}

func newMatch(id RoomID, now time.Time, th effect.Thresholds) *Match {
	return &Match{
		ID:         id,
		CreatedAt:  now,
		Open:       true,
		states:     make(map[SessionID]*PlayerState, 2),
		rng:        rand.New(rand.NewSource(Seed(id, now))),
		ids:        &board.IDSource{},
		thresholds: th,
	}
}

// NewForming creates a one-player match waiting for an opponent.
func NewForming(id RoomID, now time.Time, th effect.Thresholds, session SessionID, player PlayerID) *Match {
	m := newMatch(id, now, th)
	m.addPlayer(session, player)
	return m
}

// NewActive creates a two-player match directly, bypassing the forming
// phase. Used when matchmaking or a join code pairs two waiting players.
// Boards are dealt from the shared RNG in slot order.
func NewActive(id RoomID, now time.Time, th effect.Thresholds, s1 SessionID, p1 PlayerID, s2 SessionID, p2 PlayerID) *Match {
	m := newMatch(id, now, th)
	m.addPlayer(s1, p1)
	m.addPlayer(s2, p2)
	return m
}

func (m *Match) addPlayer(session SessionID, player PlayerID) {
	m.sessions[m.count] = session
	m.players[m.count] = player
	m.states[session] = &PlayerState{
		Player: player,
		Board:  board.New(m.rng, m.ids),
	}
	m.count++
}

// Join adds the second player and transitions the match to Active.
// Returns false if the match is not forming.
func (m *Match) Join(session SessionID, player PlayerID) bool {
	if !m.Open || m.count != 1 {
		return false
	}
	m.addPlayer(session, player)
	return true
}

// Phase returns the current lifecycle phase.
func (m *Match) Phase() Phase {
	switch {
	case !m.Open:
		return PhaseClosed
	case m.count < 2:
		return PhaseForming
	default:
		return PhaseActive
	}
}

// Close marks the match terminal.
func (m *Match) Close() {
	m.Open = false
}

// Sessions returns the bound session ids in slot order.
func (m *Match) Sessions() []SessionID {
	return append([]SessionID(nil), m.sessions[:m.count]...)
}

// Players returns the durable player ids in slot order.
func (m *Match) Players() []PlayerID {
	return append([]PlayerID(nil), m.players[:m.count]...)
}

// HasSession reports whether the session is bound to a slot.
func (m *Match) HasSession(session SessionID) bool {
	_, ok := m.states[session]
	return ok
}

// SlotOf returns the slot index of the durable player id, or -1.
func (m *Match) SlotOf(player PlayerID) int {
	for i := 0; i < m.count; i++ {
		if m.players[i] == player {
			return i
		}
	}
	return -1
}

// SessionAt returns the session bound to the given slot.
func (m *Match) SessionAt(slot int) SessionID {
	return m.sessions[slot]
}

// Opponent returns the other session in the match, if there is one.
func (m *Match) Opponent(session SessionID) (SessionID, bool) {
	for i := 0; i < m.count; i++ {
		if m.sessions[i] != session {
			return m.sessions[i], true
		}
	}
	return "", false
}

// State returns the player state bound to a session.
func (m *Match) State(session SessionID) (*PlayerState, bool) {
	st, ok := m.states[session]
	return st, ok
}

// Rebind replaces a slot's transport binding on reconnect, keeping the
// player state. Returns false if the old session is not bound.
func (m *Match) Rebind(oldSession, newSession SessionID) bool {
	st, ok := m.states[oldSession]
	if !ok {
		return false
	}
	for i := 0; i < m.count; i++ {
		if m.sessions[i] == oldSession {
			m.sessions[i] = newSession
		}
	}
	delete(m.states, oldSession)
	m.states[newSession] = st
	return true
}

// InputResult reports what one accepted input did.
type InputResult struct {
	Moved         bool
	ScoreDelta    int
	MergedMax     int
	Effects       []effect.Effect
	MoverStuck    bool // mover has no legal move left
	OpponentStuck bool // opponent has no legal move left
}

// ApplyInput advances the match by one accepted move: the mover's board
// slides (consuming the shared RNG for the spawn), score and max-tile
// update only if something moved, and the derived effects land on the
// opponent's board afterwards, in that RNG draw order. The turn counter
// increments by exactly one.
func (m *Match) ApplyInput(session SessionID, dir board.Direction) (InputResult, bool) {
	me, ok := m.states[session]
	if !ok || !m.Open {
		return InputResult{}, false
	}

	res := board.ApplyMove(me.Board, dir, m.rng, m.ids)
	me.Board = res.Board
	if res.Moved {
		me.Score += res.ScoreDelta
		if res.MergedMax > me.MaxTile {
			me.MaxTile = res.MergedMax
		}
	}

	// Effects fire regardless of moved; a none effect is harmless.
	effects := effect.Derive(res.MergedMax, m.thresholds)
	out := InputResult{
		Moved:      res.Moved,
		ScoreDelta: res.ScoreDelta,
		MergedMax:  res.MergedMax,
		Effects:    effects,
	}

	if oppSession, hasOpp := m.Opponent(session); hasOpp {
		opp := m.states[oppSession]
		opp.Board = effect.Apply(opp.Board, effects, m.rng, m.ids)
		out.OpponentStuck = !board.HasMoves(opp.Board)
	}
	out.MoverStuck = !board.HasMoves(me.Board)

	m.Turn++
	return out, true
}

// SnapshotFor builds the state payload for one viewer.
func (m *Match) SnapshotFor(viewer SessionID, effects []effect.Effect) Snapshot {
	you := m.states[viewer]
	snap := Snapshot{
		Turn:    m.Turn,
		Effects: effects,
	}
	if you != nil {
		snap.You = PlayerView{Board: you.Board, Score: you.Score, MaxTile: you.MaxTile}
	}
	if oppSession, ok := m.Opponent(viewer); ok {
		opp := m.states[oppSession]
		snap.Opp = &PlayerView{Board: opp.Board, Score: opp.Score, MaxTile: opp.MaxTile}
	}
	return snap
}

// Result is the persisted outcome of a finished match.
type Result struct {
	Room      RoomID
	Players   []PlayerID
	Scores    []int
	MaxTiles  []int
	Winner    PlayerID // empty on draw or abandoned forming rooms
	EndReason string
	Turns     int
	Duration  time.Duration
}

// ResultNow summarizes the match at closing time. The winner session may
// be empty for a draw.
func (m *Match) ResultNow(winner SessionID, reason string, now time.Time) Result {
	r := Result{
		Room:      m.ID,
		EndReason: reason,
		Turns:     m.Turn,
		Duration:  now.Sub(m.CreatedAt),
	}
	for i := 0; i < m.count; i++ {
		st := m.states[m.sessions[i]]
		r.Players = append(r.Players, m.players[i])
		r.Scores = append(r.Scores, st.Score)
		r.MaxTiles = append(r.MaxTiles, st.MaxTile)
		if m.sessions[i] == winner {
			r.Winner = m.players[i]
		}
	}
	return r
}
