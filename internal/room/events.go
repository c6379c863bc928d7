package room

import (
	"github.com/vovakirdan/merge-duel/internal/board"
	"github.com/vovakirdan/merge-duel/internal/duel"
)

// SessionID is an alias to duel.SessionID for convenience.
type SessionID = duel.SessionID

// PlayerID is an alias to duel.PlayerID for convenience.
type PlayerID = duel.PlayerID

// RoomID is an alias to duel.RoomID for convenience.
type RoomID = duel.RoomID

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// StateEvent carries an authoritative board snapshot to one viewer.
type StateEvent struct {
	Snapshot duel.Snapshot
}

func (StateEvent) sessionEvent() {}

// RejectReason classifies a typed join/input rejection.
type RejectReason string

const (
	// RejectRoomNotFound is part of the wire taxonomy. The server never
	// emits it: joins against unknown room ids create a forming room.
	RejectRoomNotFound RejectReason = "room_not_found"
	RejectRoomClosed   RejectReason = "room_closed"
	RejectNotInRoom    RejectReason = "not_in_room"
	RejectStaleTurn    RejectReason = "stale_turn"
	RejectInvalid      RejectReason = "invalid"
)

// RejectEvent is sent when a request is refused. Session state is
// unchanged by a rejection.
type RejectEvent struct {
	Reason RejectReason
}

func (RejectEvent) sessionEvent() {}

// Winner is the match outcome relative to the event's receiver.
type Winner string

const (
	WinnerYou  Winner = "you"
	WinnerOpp  Winner = "opp"
	WinnerDraw Winner = "draw"
)

// EndEvent announces a terminal match outcome.
type EndEvent struct {
	Winner Winner
}

func (EndEvent) sessionEvent() {}

// MatchFoundEvent tells a queued session it has been paired.
type MatchFoundEvent struct {
	Room RoomID
}

func (MatchFoundEvent) sessionEvent() {}

// WaitingForPlayerEvent tells a join-code creator their code is registered.
type WaitingForPlayerEvent struct{}

func (WaitingForPlayerEvent) sessionEvent() {}

// RoomReadyEvent tells both sides of a fulfilled join code their room id.
type RoomReadyEvent struct {
	Room RoomID
}

func (RoomReadyEvent) sessionEvent() {}

// ErrorReason classifies a join-code registration failure.
type ErrorReason string

const (
	ErrCodeAlreadyUsed   ErrorReason = "code_already_used"
	ErrCodeNotFound      ErrorReason = "code_not_found"
	ErrCannotJoinOwnRoom ErrorReason = "cannot_join_own_room"
)

// ErrorEvent is sent when a join-code operation fails.
type ErrorEvent struct {
	Reason ErrorReason
}

func (ErrorEvent) sessionEvent() {}

// Message represents an inbound event from a session to the coordinator.
// The set is closed: transports decode the wire format into one of these
// shapes and reject everything else before it reaches the engine.
type Message interface {
	roomMessage()
}

// FindMatchMsg enters the matchmaking queue.
type FindMatchMsg struct {
	Session SessionID
	Player  PlayerID
}

func (FindMatchMsg) roomMessage() {}

// CancelMatchMsg leaves the matchmaking queue. No-op if not queued.
type CancelMatchMsg struct {
	Session SessionID
}

func (CancelMatchMsg) roomMessage() {}

// CreateRoomWithCodeMsg registers a single-use join code.
type CreateRoomWithCodeMsg struct {
	Session SessionID
	Player  PlayerID
	Code    string
}

func (CreateRoomWithCodeMsg) roomMessage() {}

// CancelCodeMsg withdraws the session's registered join code. No-op when
// none is held.
type CancelCodeMsg struct {
	Session SessionID
}

func (CancelCodeMsg) roomMessage() {}

// JoinRoomWithCodeMsg pairs with the creator waiting on a code.
type JoinRoomWithCodeMsg struct {
	Session SessionID
	Player  PlayerID
	Code    string
}

func (JoinRoomWithCodeMsg) roomMessage() {}

// JoinRoomMsg creates, joins or reconnects to a room by id.
type JoinRoomMsg struct {
	Session SessionID
	Player  PlayerID
	Room    RoomID
}

func (JoinRoomMsg) roomMessage() {}

// InputMsg is a move intent for the session's current match.
type InputMsg struct {
	Session SessionID
	Dir     board.Direction
}

func (InputMsg) roomMessage() {}

// SessionClosedMsg is posted by a transport when its connection drops.
type SessionClosedMsg struct {
	Session SessionID
}

func (SessionClosedMsg) roomMessage() {}

// reconnectExpiredMsg is posted by a grace timer. It flows through the
// same serialized queue as player messages, so expiry and cancellation
// can never race.
type reconnectExpiredMsg struct {
	Session SessionID
}

func (reconnectExpiredMsg) roomMessage() {}
