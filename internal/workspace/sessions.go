package workspace

import (
	"context"
	"sync"
)

type sessionKey struct {
	kind      Kind
	accountID string
}

// Sessions tracks the ledgers opened by account id. Opening always
// re-fetches; there is no cache beyond the open ledger itself.
type Sessions struct {
	deps Deps

	mu   sync.Mutex
	open map[sessionKey]*Ledger
}

func NewSessions(deps Deps) *Sessions {
	return &Sessions{deps: deps.withDefaults(), open: map[sessionKey]*Ledger{}}
}

// Open returns the ledger for accountID, creating it if needed, and loads it.
// The ledger is returned together with a load error so callers can still
// show whatever was loaded before.
func (s *Sessions) Open(ctx context.Context, kind Kind, accountID string) (*Ledger, error) {
	k := sessionKey{kind, accountID}
	s.mu.Lock()
	l, ok := s.open[k]
	if !ok {
		l = NewLedger(kind, accountID, s.deps)
		s.open[k] = l
	}
	s.mu.Unlock()

	return l, l.Open(ctx)
}

// Get returns an open ledger.
func (s *Sessions) Get(kind Kind, accountID string) (*Ledger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.open[sessionKey{kind, accountID}]
	return l, ok
}

// Close forgets a ledger, dropping any unsaved edits.
func (s *Sessions) Close(kind Kind, accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := sessionKey{kind, accountID}
	_, ok := s.open[k]
	delete(s.open, k)
	return ok
}

// Len is the number of open ledgers.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}
