package comparison

import (
	"sync"
	"time"
)

// Sessions holds one Store per session, created on first use.
type Sessions struct {
	mu      sync.Mutex
	stores  map[string]*Store
	nowFunc func() time.Time
}

func NewSessions(nowFunc func() time.Time) *Sessions {
	return &Sessions{
		stores:  make(map[string]*Store),
		nowFunc: nowFunc,
	}
}

func (ss *Sessions) For(sessionID string) *Store {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	store, ok := ss.stores[sessionID]
	if !ok {
		store = NewStore(ss.nowFunc)
		ss.stores[sessionID] = store
	}
	return store
}

// Drop forgets the session's store, eg. when its view is closed.
func (ss *Sessions) Drop(sessionID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.stores, sessionID)
}

func (ss *Sessions) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.stores)
}
