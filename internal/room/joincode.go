package room

// handleCreateRoomWithCode registers a single-use join code mapped to the
// creating session. The creator waits until someone presents the code.
// A session already in a match or already holding a code cannot register
// another one; a queued session leaves the queue when its code registers.
func (c *Coordinator) handleCreateRoomWithCode(msg CreateRoomWithCodeMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, bound := c.sessionRoom[msg.Session]; bound {
		c.sendTo(msg.Session, RejectEvent{Reason: RejectInvalid})
		return
	}
	if _, holds := c.codeOwner[msg.Session]; holds {
		c.sendTo(msg.Session, ErrorEvent{Reason: ErrCodeAlreadyUsed})
		return
	}
	if _, taken := c.codes[msg.Code]; taken {
		c.sendTo(msg.Session, ErrorEvent{Reason: ErrCodeAlreadyUsed})
		return
	}

	c.removeFromQueue(msg.Session)
	c.codes[msg.Code] = queueEntry{session: msg.Session, player: msg.Player}
	c.codeOwner[msg.Session] = msg.Code
	c.logger.Info("join code registered", "session", msg.Session)
	c.sendTo(msg.Session, WaitingForPlayerEvent{})
}

// handleJoinRoomWithCode pairs the joiner with the waiting creator and
// invalidates the code.
func (c *Coordinator) handleJoinRoomWithCode(msg JoinRoomWithCodeMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, bound := c.sessionRoom[msg.Session]; bound {
		c.sendTo(msg.Session, RejectEvent{Reason: RejectInvalid})
		return
	}

	creator, ok := c.codes[msg.Code]
	if !ok {
		c.sendTo(msg.Session, ErrorEvent{Reason: ErrCodeNotFound})
		return
	}
	if creator.session == msg.Session {
		c.sendTo(msg.Session, ErrorEvent{Reason: ErrCannotJoinOwnRoom})
		return
	}

	delete(c.codes, msg.Code)
	delete(c.codeOwner, creator.session)

	joiner := queueEntry{session: msg.Session, player: msg.Player}
	c.createPairedMatch(creator, joiner, func(sid SessionID, rid RoomID) SessionEvent {
		return RoomReadyEvent{Room: rid}
	})
}

// handleCancelCode withdraws the session's registered join code without
// touching the rest of its state. No-op when none is held.
func (c *Coordinator) handleCancelCode(msg CancelCodeMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropHeldCode(msg.Session)
}

// dropHeldCode releases any join code the session holds.
// Must be called with the lock held.
func (c *Coordinator) dropHeldCode(session SessionID) {
	if code, ok := c.codeOwner[session]; ok {
		delete(c.codes, code)
		delete(c.codeOwner, session)
	}
}
