package room

import "github.com/vovakirdan/merge-duel/internal/duel"

// handleFindMatch enqueues a session for FIFO pairing. The request is
// ignored when the session is already queued or already bound to a room.
// As soon as two sessions wait, the two earliest are paired into a match
// that starts Active directly.
func (c *Coordinator) handleFindMatch(msg FindMatchMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, bound := c.sessionRoom[msg.Session]; bound {
		return
	}
	for _, e := range c.queue {
		if e.session == msg.Session {
			return
		}
	}

	c.queue = append(c.queue, queueEntry{session: msg.Session, player: msg.Player})
	c.logger.Info("session queued", "session", msg.Session, "player", msg.Player)

	if len(c.queue) >= 2 {
		first, second := c.queue[0], c.queue[1]
		c.queue = c.queue[2:]
		c.createPairedMatch(first, second, func(sid SessionID, rid RoomID) SessionEvent {
			return MatchFoundEvent{Room: rid}
		})
	}
}

// handleCancelMatch removes the session from the queue if present. No-op
// when the session is already matched or absent.
func (c *Coordinator) handleCancelMatch(msg CancelMatchMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeFromQueue(msg.Session)
}

// removeFromQueue drops a session's queue entry. Must be called with the
// lock held.
func (c *Coordinator) removeFromQueue(session SessionID) {
	for i, e := range c.queue {
		if e.session == session {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			c.logger.Info("session left queue", "session", session)
			return
		}
	}
}

// createPairedMatch builds a directly-Active match for two waiting
// sessions, announces it with the supplied event and broadcasts initial
// snapshots. Must be called with the lock held.
func (c *Coordinator) createPairedMatch(first, second queueEntry, announce func(SessionID, RoomID) SessionEvent) {
	c.leaveLobby(first.session)
	c.leaveLobby(second.session)

	rid := newRoomID()
	m := duel.NewActive(rid, c.now(), c.config.Thresholds,
		first.session, first.player, second.session, second.player)

	c.rooms[rid] = m
	c.sessionRoom[first.session] = rid
	c.sessionRoom[second.session] = rid
	c.logger.Info("match created", "room", rid, "p1", first.player, "p2", second.player)

	c.sendTo(first.session, announce(first.session, rid))
	c.sendTo(second.session, announce(second.session, rid))
	c.broadcastState(m, nil)
}
