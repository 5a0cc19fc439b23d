package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/core"
)

// SessionRegistry maps transport sessions to members. Each session id
// is bound to at most one member at a time; Unbind returns the member
// exactly once, which makes it the anchor of the single cleanup path.
type SessionRegistry struct {
	mu      sync.RWMutex
	members map[core.SessionID]*core.Member
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{members: make(map[core.SessionID]*core.Member)}
}

func (r *SessionRegistry) Bind(sid core.SessionID, m *core.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[sid] = m
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).
		Str("name", m.Meta().Name).Msg("bound session")
}

func (r *SessionRegistry) Get(sid core.SessionID) (*core.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[sid]
	return m, ok
}

// Unbind removes and returns the binding. The second and later calls
// for the same session report false.
func (r *SessionRegistry) Unbind(sid core.SessionID) (*core.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[sid]
	if !ok {
		return nil, false
	}
	delete(r.members, sid)
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("unbind session")
	return m, true
}
