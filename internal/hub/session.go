package hub

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// DeltaWriter is the connection surface a session writes to. Satisfied by
// *websocket.Conn.
type DeltaWriter interface {
	WriteJSON(v any) error
	Close() error
}

// Session is the server side of one connected observer. Outbound deltas pass
// through a bounded mailbox drained by WriteLoop; when the mailbox is full
// the oldest delta is dropped so a slow client never blocks the publisher.
// Created on connect, destroyed on disconnect, never reused.
type Session struct {
	ID string

	conn    DeltaWriter
	mailbox chan Delta
	logger  *log.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewSession wraps a connection with a mailbox of the given capacity.
func NewSession(conn DeltaWriter, mailboxSize int, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	if mailboxSize <= 0 {
		mailboxSize = 32
	}
	return &Session{
		ID:      uuid.NewString(),
		conn:    conn,
		mailbox: make(chan Delta, mailboxSize),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Enqueue offers a delta to the mailbox without ever blocking. Returns false
// once the session is closed.
func (s *Session) Enqueue(delta Delta) bool {
	for {
		select {
		case <-s.done:
			return false
		case s.mailbox <- delta:
			return true
		default:
		}
		// Mailbox full: drop the oldest delta and retry. The client catches
		// up from newer deltas; a reconnect gets a fresh snapshot anyway.
		select {
		case <-s.mailbox:
		default:
		}
	}
}

// WriteLoop drains the mailbox onto the connection. Returns when the session
// is closed or a write fails.
func (s *Session) WriteLoop() {
	for {
		select {
		case <-s.done:
			return
		case delta := <-s.mailbox:
			if err := s.conn.WriteJSON(delta); err != nil {
				s.logger.Printf("Session %s write failed: %v", s.ID, err)
				s.Close()
				return
			}
		}
	}
}

// Close tears the session down. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
