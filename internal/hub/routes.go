package hub

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/autobreezebeats/breeze-hub-go/internal/api"
)

// SessionSink receives session lifecycle events and inbound commands. The
// orchestrator core implements it.
type SessionSink interface {
	Attach(session *Session)
	Detach(session *Session)
	Command(sessionID, command string)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Observers are same-network browsers; origin policy is handled upstream.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterRoutes mounts the observer WebSocket endpoint.
func RegisterRoutes(r chi.Router, sink SessionSink, mailboxSize int, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}

	r.Method("GET", "/v1/ws", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			logger.Printf("WebSocket upgrade failed: %v", err)
			return nil
		}

		session := NewSession(conn, mailboxSize, logger)
		sink.Attach(session)
		go session.WriteLoop()

		go func() {
			defer func() {
				session.Close()
				sink.Detach(session)
			}()
			for {
				messageType, payload, err := conn.ReadMessage()
				if err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
						logger.Printf("Session %s read failed: %v", session.ID, err)
					}
					return
				}
				if messageType != websocket.TextMessage {
					continue
				}
				command := strings.TrimSpace(string(payload))
				if command == "" {
					continue
				}
				sink.Command(session.ID, command)
			}
		}()
		return nil
	}))
}
