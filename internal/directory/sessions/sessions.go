// Package sessions records which session ids are live so that signing out
// revokes a token before it expires.
package sessions

import (
	"context"
	"sync"
	"time"
)

// Registry tracks issued session ids.
type Registry interface {
	// Register marks sid as live for ttl.
	Register(ctx context.Context, sid, userID string, ttl time.Duration) error

	// Active reports whether sid is registered and not expired.
	Active(ctx context.Context, sid string) (bool, error)

	// Revoke forgets sid. Revoking an unknown id is not an error.
	Revoke(ctx context.Context, sid string) error
}

type memoryEntry struct {
	userID  string
	expires time.Time
}

// sweepEvery is how many registrations pass between sweeps of expired
// entries. Active drops expired entries it meets on its own.
const sweepEvery = 64

// Memory is a process-local Registry.
type Memory struct {
	mu            sync.Mutex
	entries       map[string]memoryEntry
	registrations int
	now           func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *Memory) Register(_ context.Context, sid, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations++
	if m.registrations%sweepEvery == 0 {
		m.sweep()
	}
	m.entries[sid] = memoryEntry{userID: userID, expires: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Active(_ context.Context, sid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sid]
	if !ok {
		return false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, sid)
		return false, nil
	}
	return true, nil
}

func (m *Memory) Revoke(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sid)
	return nil
}

// Len returns the number of live sessions.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	return len(m.entries)
}

// sweep drops expired entries. Callers hold mu.
func (m *Memory) sweep() {
	now := m.now()
	for sid, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, sid)
		}
	}
}
