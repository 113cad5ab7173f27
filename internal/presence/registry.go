package presence

import "sync"

// Handle is a live connection that events can be pushed to. Push returns an
// error when the write cannot be accepted (buffer full, connection closed);
// callers drop the event in that case.
type Handle interface {
	Push(v any) error
}

// Registry maps a user to at most one live connection handle.
type Registry interface {
	Register(userID string, h Handle)
	Unregister(userID string)
	Lookup(userID string) Handle
}

// Memory is the in-process registry. Register overwrites any prior handle
// (last write wins); there is no coordination with in-flight pushes, a push
// racing a disconnect simply fails at the handle.
type Memory struct {
	mu    sync.RWMutex
	conns map[string]Handle
}

func NewMemory() *Memory {
	return &Memory{conns: make(map[string]Handle)}
}

func (r *Memory) Register(userID string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = h
}

func (r *Memory) Unregister(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, userID)
}

func (r *Memory) Lookup(userID string) Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[userID]
}
