package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/tableside/internal/services/order/table"
	"golang.org/x/net/websocket"
)

// NewHandler creates the order service routes: a health endpoint and the
// websocket surface carrying the shared-order events.
func NewHandler() http.Handler {
	hub := newRoomHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, hub)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})

	return mux
}

func handleWSConn(conn *websocket.Conn, hub *roomHub) {
	defer func() {
		_ = conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	peer := newWSPeer(json.NewEncoder(conn))
	session := newWSSession(peer)
	defer func() {
		if room := session.currentRoom(); room != nil {
			room.leave(session.peer)
		}
	}()

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(session.peer, "", "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(session.peer, frame.RequestID, "RESOURCE_EXHAUSTED", "rate limit exceeded")
			return
		}

		switch frame.Type {
		case "joinTable":
			handleJoinTable(session, hub, frame)
		case "addProduct":
			handleAddItem(session, hub, frame, table.KindProduct, "productAdded")
		case "removeProduct":
			handleRemoveItem(session, hub, frame, table.KindProduct, "productRemoved")
		case "addPromotion":
			handleAddItem(session, hub, frame, table.KindPromotion, "promotionAdded")
		case "removePromotion":
			handleRemoveItem(session, hub, frame, table.KindPromotion, "promotionRemoved")
		default:
			_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

// handleJoinTable registers the connection in the table's room, creating the
// table and the participant on first sight, and answers the sender alone
// with the joinedTable snapshot.
func handleJoinTable(session *wsSession, hub *roomHub, frame wsFrame) {
	var payload joinPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid join payload")
		return
	}

	tableID := strings.TrimSpace(payload.ID)
	if tableID == "" {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "id is required")
		return
	}
	participant := strings.TrimSpace(payload.Name)
	if participant == "" {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "name is required")
		return
	}

	room := hub.room(tableID)
	previous := session.setRoom(room)
	if previous != nil && previous != room {
		previous.leave(session.peer)
	}
	view := room.join(session.peer, participant)

	_ = session.peer.writeFrame(wsFrame{
		Type:    "joinedTable",
		Payload: mustJSON(view),
	})
}

func handleAddItem(session *wsSession, hub *roomHub, frame wsFrame, kind table.Kind, broadcastType string) {
	var payload itemPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid item payload")
		return
	}
	if err := payload.validate(true); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", err.Error())
		return
	}

	room, ok := hub.lookup(payload.Room.ID)
	if !ok {
		_ = writeWSError(session.peer, frame.RequestID, "FAILED_PRECONDITION", "table has not been joined")
		return
	}

	view, subscribers, err := room.apply(func(state *table.State) error {
		state.Add(payload.Room.Name, kind, payload.item())
		return nil
	})
	if err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INTERNAL", "add failed")
		return
	}

	broadcastFrame(subscribers, broadcastType, view)
}

func handleRemoveItem(session *wsSession, hub *roomHub, frame wsFrame, kind table.Kind, broadcastType string) {
	var payload itemPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid item payload")
		return
	}
	if err := payload.validate(false); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", err.Error())
		return
	}

	room, ok := hub.lookup(payload.Room.ID)
	if !ok {
		_ = writeWSError(session.peer, frame.RequestID, "FAILED_PRECONDITION", "table has not been joined")
		return
	}

	view, subscribers, err := room.apply(func(state *table.State) error {
		return state.Remove(payload.Room.Name, kind, payload.ID)
	})
	if errors.Is(err, table.ErrItemNotFound) {
		_ = writeWSError(session.peer, frame.RequestID, "NOT_FOUND", "item is not on the table order")
		return
	}
	if err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INTERNAL", "remove failed")
		return
	}

	broadcastFrame(subscribers, broadcastType, view)
}

// broadcastFrame fans one table view out to every subscribed connection.
// Delivery is fire-and-forget: a write failure to a dying peer never feeds
// back into order state.
func broadcastFrame(subscribers []*wsPeer, frameType string, view table.View) {
	frame := wsFrame{Type: frameType, Payload: mustJSON(view)}
	for _, subscriber := range subscribers {
		_ = subscriber.writeFrame(frame)
	}
}

func writeWSError(peer *wsPeer, requestID string, code string, message string) error {
	return peer.writeFrame(wsFrame{
		Type:      "orderError",
		RequestID: requestID,
		Payload: mustJSON(wsErrorEnvelope{
			Error: wsError{
				Code:      code,
				Message:   message,
				Retryable: false,
			},
		}),
	})
}
