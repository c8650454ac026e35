package editlist

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Logical actions guarded against re-entry.
const (
	ActionFetch   = "fetch"
	ActionPersist = "persist"
	ActionDelete  = "delete"
)

type slot struct {
	sem  *semaphore.Weighted
	held atomic.Bool
}

// Guard allows at most one outstanding request per logical action. A second
// trigger while one is in flight is refused rather than queued.
type Guard struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func NewGuard() *Guard {
	return &Guard{slots: map[string]*slot{}}
}

func (g *Guard) slot(action string) *slot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.slots[action]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		g.slots[action] = s
	}
	return s
}

// Acquire claims action. The returned release must be called once the request
// resolves; calling it again is a no-op.
func (g *Guard) Acquire(action string) (release func(), err error) {
	s := g.slot(action)
	if !s.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	s.held.Store(true)
	var once sync.Once
	return func() {
		once.Do(func() {
			s.held.Store(false)
			s.sem.Release(1)
		})
	}, nil
}

// Busy reports whether action currently has a request in flight.
func (g *Guard) Busy(action string) bool {
	return g.slot(action).held.Load()
}
