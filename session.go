package agentctx

import (
	"sync"

	"github.com/google/uuid"

	"github.com/agentctx/agentctx/types"
)

// session is one conversation's in-memory state: the stored message history
// and the live token accounting for it. One turn is processed at a time per
// session; the mutex only protects History readers against an in-flight
// turn.
type session struct {
	id string

	mu        sync.Mutex
	messages  []*types.Message
	lastUsage int // input+output tokens reported by the last model call
}

func (s *session) append(msg *types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// snapshot returns the history slice for this turn. The compaction core
// never mutates it in place, so sharing the backing array is safe.
func (s *session) snapshot() []*types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *session) setLastUsage(tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsage = tokens
}

func (s *session) usage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsage
}

// NewSession creates a new conversation and returns its ID.
func (a *Agent) NewSession() string {
	id := uuid.New().String()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[id] = &session{id: id}
	return id
}

// History returns the stored messages of a session. Compaction output is
// never written back here: the stored history always holds the full tool
// results, and only the prompt assembled for the model is degraded.
func (a *Agent) History(sessionID string) ([]*types.Message, error) {
	sess, err := a.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.snapshot(), nil
}

func (a *Agent) session(sessionID string) (*session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	sess, ok := a.sessions[sessionID]
	if !ok {
		return nil, NewAgentErrorWithSession("session", sessionID, ErrSessionNotFound)
	}
	return sess, nil
}
