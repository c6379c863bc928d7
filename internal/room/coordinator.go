// Package room is the room directory and session lifecycle manager: it
// creates, pairs and tears down matches, routes inputs, and runs reconnect
// grace periods. Every mutation, player messages and fired timers alike,
// is processed on a single goroutine, so event arrival order is the
// serialization order.
package room

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/merge-duel/internal/duel"
	"github.com/vovakirdan/merge-duel/internal/effect"
)

// Config holds coordinator tuning.
type Config struct {
	// ReconnectGrace is how long a disconnected player's slot is held
	// before the match is forfeited.
	ReconnectGrace time.Duration

	// Thresholds is the effect policy handed to every new match.
	Thresholds effect.Thresholds

	// CleanupPeriod controls how often closed-room tombstones are purged.
	CleanupPeriod time.Duration

	// TombstoneTTL is how long a closed room id still answers joins with
	// room_closed instead of room_not_found.
	TombstoneTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconnectGrace: 30 * time.Second,
		Thresholds:     effect.DefaultThresholds(),
		CleanupPeriod:  time.Minute,
		TombstoneTTL:   10 * time.Minute,
	}
}

// MatchResultSaver persists finished matches. Implemented by the storage
// package; the coordinator only knows this interface.
type MatchResultSaver interface {
	SaveMatch(result duel.Result) error
}

type queueEntry struct {
	session SessionID
	player  PlayerID
}

// Coordinator owns every registry of the server: the room directory, the
// matchmaking queue, the join-code table and the reconnect timers. It is
// explicitly constructed (no package state) so tests can run independent
// instances.
type Coordinator struct {
	config   Config
	sessions *SessionRegistry
	saver    MatchResultSaver // optional
	logger   *log.Logger
	now      func() time.Time

	mu          sync.RWMutex
	rooms       map[RoomID]*duel.Match
	sessionRoom map[SessionID]RoomID
	queue       []queueEntry
	codes       map[string]queueEntry // join code -> waiting creator
	codeOwner   map[SessionID]string
	timers      map[SessionID]*time.Timer
	closed      map[RoomID]time.Time // tombstones for room_closed answers

	msgChan chan Message
	done    chan struct{}
}

// NewCoordinator creates a coordinator. logger may be nil.
func NewCoordinator(cfg Config, sessions *SessionRegistry, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Coordinator{
		config:      cfg,
		sessions:    sessions,
		logger:      logger,
		now:         time.Now,
		rooms:       make(map[RoomID]*duel.Match),
		sessionRoom: make(map[SessionID]RoomID),
		codes:       make(map[string]queueEntry),
		codeOwner:   make(map[SessionID]string),
		timers:      make(map[SessionID]*time.Timer),
		closed:      make(map[RoomID]time.Time),
		msgChan:     make(chan Message, 256),
		done:        make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.saver = saver
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator.
func (c *Coordinator) Stop() {
	close(c.done)
}

// Send queues a message for serialized processing.
func (c *Coordinator) Send(msg Message) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg Message) {
	switch m := msg.(type) {
	case JoinRoomMsg:
		c.handleJoinRoom(m)
	case InputMsg:
		c.handleInput(m)
	case FindMatchMsg:
		c.handleFindMatch(m)
	case CancelMatchMsg:
		c.handleCancelMatch(m)
	case CreateRoomWithCodeMsg:
		c.handleCreateRoomWithCode(m)
	case JoinRoomWithCodeMsg:
		c.handleJoinRoomWithCode(m)
	case CancelCodeMsg:
		c.handleCancelCode(m)
	case SessionClosedMsg:
		c.handleSessionClosed(m)
	case reconnectExpiredMsg:
		c.handleReconnectExpired(m)
	}
}

// sendTo delivers an event if the session is still connected.
func (c *Coordinator) sendTo(id SessionID, evt SessionEvent) {
	if h, ok := c.sessions.Get(id); ok {
		h.Send(evt)
	}
}

// broadcastState sends each participant their own view of the match.
func (c *Coordinator) broadcastState(m *duel.Match, effects []effect.Effect) {
	for _, sid := range m.Sessions() {
		c.sendTo(sid, StateEvent{Snapshot: m.SnapshotFor(sid, effects)})
	}
}

func (c *Coordinator) handleJoinRoom(msg JoinRoomMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, exists := c.rooms[msg.Room]
	if !exists {
		if _, wasClosed := c.closed[msg.Room]; wasClosed {
			c.sendTo(msg.Session, RejectEvent{Reason: RejectRoomClosed})
			return
		}
		if _, bound := c.sessionRoom[msg.Session]; bound {
			c.sendTo(msg.Session, RejectEvent{Reason: RejectInvalid})
			return
		}
		c.leaveLobby(msg.Session)
		m = duel.NewForming(msg.Room, c.now(), c.config.Thresholds, msg.Session, msg.Player)
		c.rooms[msg.Room] = m
		c.sessionRoom[msg.Session] = msg.Room
		c.logger.Info("room created", "room", msg.Room, "player", msg.Player)
		c.sendTo(msg.Session, StateEvent{Snapshot: m.SnapshotFor(msg.Session, nil)})
		return
	}

	if !m.Open {
		c.sendTo(msg.Session, RejectEvent{Reason: RejectRoomClosed})
		return
	}

	// Reconnection: the durable id already owns a slot under a stale
	// session binding.
	if slot := m.SlotOf(msg.Player); slot >= 0 {
		old := m.SessionAt(slot)
		if old == msg.Session {
			c.sendTo(msg.Session, StateEvent{Snapshot: m.SnapshotFor(msg.Session, nil)})
			return
		}
		c.leaveLobby(msg.Session)
		c.cancelTimer(old)
		m.Rebind(old, msg.Session)
		delete(c.sessionRoom, old)
		c.sessionRoom[msg.Session] = msg.Room
		c.logger.Info("player reconnected", "room", msg.Room, "player", msg.Player)
		c.sendTo(msg.Session, StateEvent{Snapshot: m.SnapshotFor(msg.Session, nil)})
		return
	}

	if m.Phase() == duel.PhaseForming {
		if _, bound := c.sessionRoom[msg.Session]; bound {
			c.sendTo(msg.Session, RejectEvent{Reason: RejectInvalid})
			return
		}
		c.leaveLobby(msg.Session)
		m.Join(msg.Session, msg.Player)
		c.sessionRoom[msg.Session] = msg.Room
		c.logger.Info("room filled", "room", msg.Room, "player", msg.Player)
		c.broadcastState(m, nil)
		return
	}

	// Full room, unrecognized durable id.
	c.sendTo(msg.Session, RejectEvent{Reason: RejectNotInRoom})
}

func (c *Coordinator) handleInput(msg InputMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Stale input after a disconnect or closure is dropped silently; the
	// client has already transitioned state.
	rid, ok := c.sessionRoom[msg.Session]
	if !ok {
		return
	}
	m := c.rooms[rid]
	if m == nil || !m.Open {
		return
	}

	res, ok := m.ApplyInput(msg.Session, msg.Dir)
	if !ok {
		return
	}
	c.broadcastState(m, res.Effects)

	switch {
	case res.MoverStuck && res.OpponentStuck:
		c.endMatch(m, "", "stuck")
	case res.MoverStuck:
		if opp, hasOpp := m.Opponent(msg.Session); hasOpp {
			c.endMatch(m, opp, "stuck")
		}
	case res.OpponentStuck:
		c.endMatch(m, msg.Session, "stuck")
	}
}

// endMatch closes a match, notifies both sides, purges every directory
// entry for the room and persists the result. Must be called with the lock
// held.
func (c *Coordinator) endMatch(m *duel.Match, winner SessionID, reason string) {
	wasActive := m.Phase() == duel.PhaseActive
	m.Close()

	for _, sid := range m.Sessions() {
		w := WinnerDraw
		if winner != "" {
			w = WinnerOpp
			if sid == winner {
				w = WinnerYou
			}
		}
		c.sendTo(sid, EndEvent{Winner: w})
		c.cancelTimer(sid)
		delete(c.sessionRoom, sid)
	}

	delete(c.rooms, m.ID)
	c.closed[m.ID] = c.now()
	c.logger.Info("match ended", "room", m.ID, "reason", reason, "turns", m.Turn)

	if c.saver != nil && wasActive {
		result := m.ResultNow(winner, reason, c.now())
		// Best effort save, don't block the event loop on it.
		go func() {
			if err := c.saver.SaveMatch(result); err != nil {
				c.logger.Warn("could not save match result", "room", result.Room, "error", err)
			}
		}()
	}
}

func (c *Coordinator) cleanupLoop() {
	period := c.config.CleanupPeriod
	if period <= 0 {
		period = time.Minute
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.purgeTombstones()
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) purgeTombstones() {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.config.TombstoneTTL)
	for id, closedAt := range c.closed {
		if closedAt.Before(cutoff) {
			delete(c.closed, id)
		}
	}
}

// newRoomID mints a fresh room identifier.
func newRoomID() RoomID {
	return RoomID(uuid.NewString())
}

// RoomCount returns the number of live rooms (for testing/debug).
func (c *Coordinator) RoomCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rooms)
}

// QueueLen returns the matchmaking queue length (for testing/debug).
func (c *Coordinator) QueueLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.queue)
}

// GetMatch returns a live match by room id (for testing/debug).
func (c *Coordinator) GetMatch(id RoomID) (*duel.Match, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.rooms[id]
	return m, ok
}

// RoomFor returns the room a session is bound to (for testing/debug).
func (c *Coordinator) RoomFor(id SessionID) (RoomID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rid, ok := c.sessionRoom[id]
	return rid, ok
}
