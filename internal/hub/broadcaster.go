package hub

import (
	"log"
	"sync"
)

// Broadcaster fans deltas out to every registered session. Publish is
// fire-and-forget: a closed session is unregistered on the spot and never
// delays the others.
type Broadcaster struct {
	logger *log.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster(logger *log.Logger) *Broadcaster {
	if logger == nil {
		logger = log.Default()
	}
	return &Broadcaster{
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Register adds a session. Idempotent.
func (b *Broadcaster) Register(session *Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[session.ID]; ok {
		return
	}
	b.sessions[session.ID] = session
	b.logger.Printf("Session %s registered (%d active)", session.ID, len(b.sessions))
}

// Unregister removes a session. Idempotent.
func (b *Broadcaster) Unregister(session *Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[session.ID]; !ok {
		return
	}
	delete(b.sessions, session.ID)
	b.logger.Printf("Session %s unregistered (%d active)", session.ID, len(b.sessions))
}

// Publish offers the delta to every session's mailbox. Sessions whose
// mailbox rejects the delta (closed client) are dropped, never retried.
func (b *Broadcaster) Publish(delta Delta) {
	if delta.Empty() {
		return
	}

	b.mu.RLock()
	stale := make([]*Session, 0)
	for _, session := range b.sessions {
		if !session.Enqueue(delta) {
			stale = append(stale, session)
		}
	}
	b.mu.RUnlock()

	for _, session := range stale {
		b.Unregister(session)
	}
}

// Count returns the number of registered sessions.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}
