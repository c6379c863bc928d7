package room

import (
	"time"

	"github.com/vovakirdan/merge-duel/internal/duel"
)

// handleSessionClosed reacts to a transport disconnect: the session leaves
// the queue and releases any held join code; a session bound to an active
// match gets a grace timer instead of immediate forfeiture.
func (c *Coordinator) handleSessionClosed(msg SessionClosedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.leaveLobby(msg.Session)

	rid, ok := c.sessionRoom[msg.Session]
	if !ok {
		return
	}
	m := c.rooms[rid]
	if m == nil {
		delete(c.sessionRoom, msg.Session)
		return
	}

	if m.Phase() == duel.PhaseActive {
		c.startGraceTimer(msg.Session)
		c.logger.Info("grace period started", "room", rid, "session", msg.Session,
			"grace", c.config.ReconnectGrace)
		return
	}

	// A forming room dies with its only player.
	c.endMatch(m, "", "abandoned")
}

// leaveLobby clears a session's waiting-state registrations: its queue
// entry and any held join code. Every path that binds a session to a room
// calls this first, so a session is never queued, code-holding and
// room-bound at the same time. Must be called with the lock held.
func (c *Coordinator) leaveLobby(session SessionID) {
	c.removeFromQueue(session)
	c.dropHeldCode(session)
}

// startGraceTimer schedules forfeiture for a disconnected session. The
// fired timer posts a message into the serialized queue, so it is handled
// with the same exclusivity as a player message. Must be called with the
// lock held.
func (c *Coordinator) startGraceTimer(session SessionID) {
	c.cancelTimer(session)
	c.timers[session] = time.AfterFunc(c.config.ReconnectGrace, func() {
		c.Send(reconnectExpiredMsg{Session: session})
	})
}

// cancelTimer stops and forgets a session's grace timer. Cancellation and
// expiry are idempotent against each other: whichever runs first wins and
// the other observes an empty map entry. Must be called with the lock held.
func (c *Coordinator) cancelTimer(session SessionID) {
	if t, ok := c.timers[session]; ok {
		t.Stop()
		delete(c.timers, session)
	}
}

// handleReconnectExpired forfeits the match of a session whose grace
// period ran out. It no-ops when the slot was reclaimed by a reconnect or
// the match already closed.
func (c *Coordinator) handleReconnectExpired(msg reconnectExpiredMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, pending := c.timers[msg.Session]; !pending {
		return // cancelled by a reconnect that won the race
	}
	delete(c.timers, msg.Session)

	rid, ok := c.sessionRoom[msg.Session]
	if !ok {
		return
	}
	m := c.rooms[rid]
	if m == nil || !m.Open {
		delete(c.sessionRoom, msg.Session)
		return
	}

	winner, _ := m.Opponent(msg.Session)
	c.logger.Info("grace period expired", "room", rid, "session", msg.Session)
	c.endMatch(m, winner, "forfeit")
}
