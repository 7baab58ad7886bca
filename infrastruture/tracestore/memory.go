// Package tracestore keeps generated traces where renderers can read them back.
package tracestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/beka-birhanu/vinom-labyrinth/maze"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
)

// MemoryStore keeps traces in process memory. Traces are immutable, so stored pointers
// are shared with readers.
type MemoryStore struct {
	traces map[uuid.UUID]*maze.Trace
	sync.RWMutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{traces: make(map[uuid.UUID]*maze.Trace)}
}

// Save stores the trace under its ID.
func (m *MemoryStore) Save(_ context.Context, trace *maze.Trace) error {
	m.Lock()
	defer m.Unlock()
	m.traces[trace.ID()] = trace
	return nil
}

// ByID retrieves a trace by its ID.
func (m *MemoryStore) ByID(_ context.Context, id uuid.UUID) (*maze.Trace, error) {
	m.RLock()
	defer m.RUnlock()
	trace, ok := m.traces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", i.ErrTraceNotFound, id)
	}
	return trace, nil
}
