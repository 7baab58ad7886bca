package i

import (
	"context"

	"github.com/beka-birhanu/vinom-labyrinth/maze"
	"github.com/google/uuid"
)

// TraceStore is the shared data store generated traces are published to.
// Renderers and other observers read traces back by ID.
type TraceStore interface {
	// Save stores the trace under its ID, replacing any previous copy.
	Save(ctx context.Context, trace *maze.Trace) error

	// ByID retrieves a trace by its ID.
	// Returns ErrTraceNotFound (wrapped) if no trace is stored under id.
	ByID(ctx context.Context, id uuid.UUID) (*maze.Trace, error)
}
