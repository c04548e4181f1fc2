package orchestrator

import (
	"sync"

	"pharmacy/internal/core/domain/model/conversation"
	"pharmacy/internal/core/domain/model/order"
)

// transcriptCap bounds the per-session transcript. Sessions live for the
// process lifetime, so the oldest entries are dropped once the cap is hit.
const transcriptCap = 50

// session holds one conversation's mutable state: the rolling transcript
// and at most one pending order preview. The mutex serializes whole turns,
// so two concurrent messages in the same session can never race on the
// preview.
type session struct {
	mu         sync.Mutex
	transcript []conversation.Message
	preview    *order.Preview
}

// append adds one transcript entry, evicting the oldest past the cap.
// Callers hold the session lock.
func (s *session) append(role conversation.Role, content string) {
	s.transcript = append(s.transcript, conversation.Message{Role: role, Content: content})
	if len(s.transcript) > transcriptCap {
		s.transcript = s.transcript[len(s.transcript)-transcriptCap:]
	}
}

// window returns a copy of the last n transcript entries. Callers hold the
// session lock.
func (s *session) window(n int) []conversation.Message {
	start := len(s.transcript) - n
	if start < 0 {
		start = 0
	}
	out := make([]conversation.Message, len(s.transcript)-start)
	copy(out, s.transcript[start:])
	return out
}

// sessionStore maps session keys to sessions. The store lock only guards
// the map; per-turn serialization happens on each session's own lock so
// different sessions proceed fully in parallel.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

// get returns the session for the key, creating it on first use.
func (s *sessionStore) get(key string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{}
		s.sessions[key] = sess
	}
	return sess
}
