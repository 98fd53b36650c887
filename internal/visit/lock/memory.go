// Package lock serialises checkpoint processing per visitor.
//
// Two backends implement ports.VisitorLocker: Memory for a single process and Redis for
// several server replicas sharing one database.
package lock

import (
	"context"
	"sync"

	id "visitflow/pkg/domain"
)

type memoryEntry struct {
	sem  chan struct{}
	refs int
}

// Memory is a keyed mutex. Entries are dropped once no caller holds or waits on them, so
// the map only grows with concurrently active visitors.
type Memory struct {
	mu      sync.Mutex
	entries map[id.VisitorID]*memoryEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[id.VisitorID]*memoryEntry)}
}

func (m *Memory) Lock(ctx context.Context, visitorID id.VisitorID) (func(), error) {
	m.mu.Lock()
	e, ok := m.entries[visitorID]
	if !ok {
		e = &memoryEntry{sem: make(chan struct{}, 1)}
		m.entries[visitorID] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(visitorID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			m.release(visitorID, e)
		})
	}, nil
}

func (m *Memory) release(visitorID id.VisitorID, e *memoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, visitorID)
	}
}

// active reports how many visitors currently have an entry.
func (m *Memory) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
