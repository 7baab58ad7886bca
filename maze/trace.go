package maze

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidRange    = errors.New("invalid range")
)

// EventKind tells wall removals apart from the boundary openings appended at the end of a trace.
type EventKind uint8

const (
	WallRemoval EventKind = iota
	Entrance
	Exit
)

var eventKindNames = map[EventKind]string{
	WallRemoval: "wall_removal",
	Entrance:    "entrance",
	Exit:        "exit",
}

// String returns the wire name of the kind.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	name, ok := eventKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %d", uint8(k))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a kind from its name.
func (k *EventKind) UnmarshalText(text []byte) error {
	for kind, name := range eventKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", text)
}

// Event records one opening made while a maze was built.
//
// For a WallRemoval, From is the cell the carver stood on, To the newly visited cell and
// Wall the position between them. For Entrance and Exit, From and To are the edge cell
// next to the opening and Wall is the opened perimeter position.
type Event struct {
	Sequence uint64     `json:"seq" bson:"seq"`
	Kind     EventKind  `json:"kind" bson:"kind"`
	From     Cell       `json:"from" bson:"from"`
	To       Cell       `json:"to" bson:"to"`
	Wall     Coordinate `json:"wall" bson:"wall"`
}

// Coordinates returns every expanded-grid position the event opens.
func (e Event) Coordinates() []Coordinate {
	if e.Kind == WallRemoval {
		return []Coordinate{e.From.Coordinate(), e.Wall, e.To.Coordinate()}
	}
	return []Coordinate{e.To.Coordinate(), e.Wall}
}

// Changes returns the event as [row, col, value] triples, the incremental update format
// renderers apply to the 0/1 matrix.
func (e Event) Changes() [][3]int {
	coords := e.Coordinates()
	out := make([][3]int, len(coords))
	for i, c := range coords {
		out[i] = [3]int{c.Row, c.Col, int(Open)}
	}
	return out
}

// Trace is the immutable, ordered history of how a maze was built.
// It is safe for concurrent readers.
type Trace struct {
	id     uuid.UUID
	width  int
	height int
	seed   int64
	events []Event
}

// NewTrace builds a trace from recorded events. The events are copied and must carry
// sequence numbers 0..len-1 in order.
func NewTrace(id uuid.UUID, width, height int, seed int64, events []Event) (*Trace, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	for i, e := range events {
		if e.Sequence != uint64(i) {
			return nil, fmt.Errorf("event %d has sequence %d", i, e.Sequence)
		}
	}

	return &Trace{
		id:     id,
		width:  width,
		height: height,
		seed:   seed,
		events: append([]Event(nil), events...),
	}, nil
}

// ID returns the identifier assigned when the trace was generated.
func (t *Trace) ID() uuid.UUID { return t.id }

// Width returns the number of passage columns of the traced maze.
func (t *Trace) Width() int { return t.width }

// Height returns the number of passage rows of the traced maze.
func (t *Trace) Height() int { return t.height }

// Seed returns the random seed the maze was generated from, or 0 when unknown.
func (t *Trace) Seed() int64 { return t.seed }

// Len returns the total number of events, boundary events included.
func (t *Trace) Len() uint64 {
	if t == nil {
		return 0
	}
	return uint64(len(t.events))
}

// EventAt returns the event at index.
func (t *Trace) EventAt(index uint64) (Event, error) {
	if index >= t.Len() {
		return Event{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, t.Len())
	}
	return t.events[index], nil
}

// Slice returns a copy of the events in the half-open range [from, to).
func (t *Trace) Slice(from, to uint64) ([]Event, error) {
	if from > to || to > t.Len() {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrInvalidRange, from, to, t.Len())
	}
	return append([]Event(nil), t.events[from:to]...), nil
}

// Events returns a copy of every event.
func (t *Trace) Events() []Event {
	return append([]Event(nil), t.events...)
}

// Replay folds the first cursor events of the trace into a fresh grid.
func Replay(t *Trace, cursor uint64) (*Grid, error) {
	if cursor > t.Len() {
		return nil, fmt.Errorf("%w: cursor %d of %d", ErrIndexOutOfRange, cursor, t.Len())
	}

	grid, err := NewGrid(t.width, t.height)
	if err != nil {
		return nil, err
	}
	for _, e := range t.events[:cursor] {
		if err := Apply(grid, e); err != nil {
			return nil, fmt.Errorf("replaying event %d: %w", e.Sequence, err)
		}
	}
	return grid, nil
}

// Apply opens every position the event touches. Applying an event twice is a no-op.
func Apply(g *Grid, e Event) error {
	for _, c := range e.Coordinates() {
		if err := g.Open(c); err != nil {
			return err
		}
	}
	return nil
}

type traceDocument struct {
	ID     uuid.UUID `json:"id"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Seed   int64     `json:"seed"`
	Events []Event   `json:"events"`
}

// MarshalJSON encodes the trace as an object carrying its ordered event list.
func (t *Trace) MarshalJSON() ([]byte, error) {
	return json.Marshal(traceDocument{
		ID:     t.id,
		Width:  t.width,
		Height: t.height,
		Seed:   t.seed,
		Events: t.events,
	})
}

// UnmarshalJSON decodes a trace produced by MarshalJSON.
func (t *Trace) UnmarshalJSON(data []byte) error {
	var doc traceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	decoded, err := NewTrace(doc.ID, doc.Width, doc.Height, doc.Seed, doc.Events)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}
