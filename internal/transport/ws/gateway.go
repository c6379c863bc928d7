// Package ws exposes the match coordinator over a WebSocket endpoint.
// Browser clients speak a small JSON envelope keyed on "t".
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/merge-duel/internal/board"
	"github.com/vovakirdan/merge-duel/internal/duel"
	"github.com/vovakirdan/merge-duel/internal/effect"
	"github.com/vovakirdan/merge-duel/internal/room"
)

const (
	readDeadline  = 120 * time.Second
	writeDeadline = 10 * time.Second
	pingPeriod    = 30 * time.Second
)

// Gateway is the WebSocket front end. Each accepted connection becomes one
// coordinator session.
type Gateway struct {
	addr        string
	coordinator *room.Coordinator
	sessions    *room.SessionRegistry
	upgrader    websocket.Upgrader
	server      *http.Server
	logger      *log.Logger
}

// NewGateway creates a gateway listening on addr once served.
func NewGateway(addr string, coordinator *room.Coordinator, sessions *room.SessionRegistry) *Gateway {
	g := &Gateway{
		addr:        addr,
		coordinator: coordinator,
		sessions:    sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "duel-ws",
		}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	g.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return g
}

// ListenAndServe blocks serving the WebSocket endpoint.
func (g *Gateway) ListenAndServe() error {
	g.logger.Info("starting WebSocket gateway", "address", g.addr)
	if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

// clientMsg is the inbound wire envelope. Unknown "t" values are answered
// with a typed reject, everything else never reaches the coordinator.
type clientMsg struct {
	T      string `json:"t"`
	Player string `json:"playerId,omitempty"`
	Room   string `json:"roomId,omitempty"`
	Code   string `json:"code,omitempty"`
	TurnID int    `json:"turnId,omitempty"`
	Dir    string `json:"dir,omitempty"`
}

// Outbound envelopes mirror the client protocol.
type stateMsg struct {
	T       string           `json:"t"`
	TurnID  int              `json:"turnId"`
	You     duel.PlayerView  `json:"you"`
	Opp     *duel.PlayerView `json:"opp,omitempty"`
	Effects []effect.Effect  `json:"effects,omitempty"`
}

type rejectMsg struct {
	T      string `json:"t"`
	Reason string `json:"reason"`
}

type endMsg struct {
	T      string `json:"t"`
	Winner string `json:"winner"`
}

type roomMsg struct {
	T    string `json:"t"`
	Room string `json:"roomId,omitempty"`
}

type errorMsg struct {
	T      string `json:"t"`
	Reason string `json:"reason"`
}

func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("upgrade failed", "error", err)
		return
	}

	// The durable player identity arrives as a query parameter; an absent
	// id gets a throwaway one (no reconnect for that client).
	player := duel.PlayerID(r.URL.Query().Get("player"))
	if player == "" {
		player = duel.PlayerID("anon-" + uuid.NewString())
	}

	sessionID := room.SessionID("ws-" + uuid.NewString())
	cs := room.NewChannelSession(sessionID, 64)
	g.sessions.Register(cs)

	g.logger.Info("connection opened", "session", sessionID, "player", player, "remote", r.RemoteAddr)

	go g.writePump(conn, cs)
	g.readPump(conn, cs, player)
}

// readPump decodes client envelopes into coordinator messages. It returns
// when the connection drops, which tears the session down.
func (g *Gateway) readPump(conn *websocket.Conn, cs *room.ChannelSession, player duel.PlayerID) {
	sessionID := cs.ID()
	defer func() {
		g.coordinator.Send(room.SessionClosedMsg{Session: sessionID})
		g.sessions.Unregister(sessionID)
		cs.Close()
		_ = conn.Close()
		g.logger.Info("connection closed", "session", sessionID)
	}()

	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var in clientMsg
		if err := json.Unmarshal(data, &in); err != nil {
			cs.Send(room.RejectEvent{Reason: room.RejectInvalid})
			continue
		}

		msg, ok := g.decode(in, sessionID, player)
		if !ok {
			cs.Send(room.RejectEvent{Reason: room.RejectInvalid})
			continue
		}
		g.coordinator.Send(msg)
	}
}

// decode maps a wire envelope to a typed coordinator message.
func (g *Gateway) decode(in clientMsg, session room.SessionID, player duel.PlayerID) (room.Message, bool) {
	switch in.T {
	case "findMatch":
		return room.FindMatchMsg{Session: session, Player: player}, true
	case "cancelMatch":
		return room.CancelMatchMsg{Session: session}, true
	case "cancelCode":
		return room.CancelCodeMsg{Session: session}, true
	case "createRoomWithCode":
		if in.Code == "" {
			return nil, false
		}
		return room.CreateRoomWithCodeMsg{Session: session, Player: player, Code: in.Code}, true
	case "joinRoomWithCode":
		if in.Code == "" {
			return nil, false
		}
		return room.JoinRoomWithCodeMsg{Session: session, Player: player, Code: in.Code}, true
	case "joinRoom":
		if in.Room == "" {
			return nil, false
		}
		return room.JoinRoomMsg{Session: session, Player: player, Room: room.RoomID(in.Room)}, true
	case "input":
		dir, ok := board.ParseDirection(in.Dir)
		if !ok {
			return nil, false
		}
		return room.InputMsg{Session: session, Dir: dir}, true
	}
	return nil, false
}

// writePump drains session events to the socket and keeps the connection
// alive with pings.
func (g *Gateway) writePump(conn *websocket.Conn, cs *room.ChannelSession) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case evt, ok := <-cs.Events():
			if !ok {
				return
			}
			payload, err := encode(evt)
			if err != nil {
				g.logger.Warn("cannot encode event", "session", cs.ID(), "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// encode maps a session event to its wire envelope.
func encode(evt room.SessionEvent) ([]byte, error) {
	switch evt := evt.(type) {
	case room.StateEvent:
		return json.Marshal(stateMsg{
			T:       "state",
			TurnID:  evt.Snapshot.Turn,
			You:     evt.Snapshot.You,
			Opp:     evt.Snapshot.Opp,
			Effects: evt.Snapshot.Effects,
		})
	case room.RejectEvent:
		return json.Marshal(rejectMsg{T: "reject", Reason: string(evt.Reason)})
	case room.EndEvent:
		return json.Marshal(endMsg{T: "end", Winner: string(evt.Winner)})
	case room.MatchFoundEvent:
		return json.Marshal(roomMsg{T: "matchFound", Room: string(evt.Room)})
	case room.WaitingForPlayerEvent:
		return json.Marshal(roomMsg{T: "waitingForPlayer"})
	case room.RoomReadyEvent:
		return json.Marshal(roomMsg{T: "roomReady", Room: string(evt.Room)})
	case room.ErrorEvent:
		return json.Marshal(errorMsg{T: "error", Reason: string(evt.Reason)})
	}
	return nil, fmt.Errorf("unknown event type %T", evt)
}
