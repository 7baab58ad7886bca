/*
Package player replays a maze generation trace at an adjustable rate.

A Controller is a poll-driven state machine: it owns no goroutines or timers, and every
method returns immediately. An external tick source calls Tick with the time elapsed since
its previous call and forwards the returned events to a renderer.
*/
package player

import (
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/maze"
)

// State is the playback state of a Controller.
type State uint8

const (
	Idle State = iota
	Playing
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{Idle, Playing, Paused, Finished} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown player state %q", text)
}

const (
	// stepUnit is one step expressed in step-nanoseconds, the unit of the fractional carry.
	stepUnit = uint64(time.Second)

	// maxTickElapsed bounds a single tick so elapsed*rate cannot overflow.
	maxTickElapsed = time.Hour
)

// Snapshot is a read-only view of a Controller.
type Snapshot struct {
	State          State  `json:"state"`
	Cursor         uint64 `json:"cursor"`
	Length         uint64 `json:"length"`
	SpeedIndex     int    `json:"speed_index"`
	StepsPerSecond int    `json:"steps_per_second"`
	Playing        bool   `json:"playing"`
	Epoch          uint64 `json:"epoch"`
}

// Controller advances a cursor through a trace. It is not safe for concurrent use;
// callers serialize access.
type Controller struct {
	presets    Presets
	trace      *maze.Trace
	state      State
	cursor     uint64
	speedIndex int
	carry      uint64 // fractional step left over from previous ticks, in step-nanoseconds
	epoch      uint64 // incremented by Reset
}

// NewController creates an idle controller bound to trace.
func NewController(trace *maze.Trace, presets Presets, speedIndex int) (*Controller, error) {
	if len(presets) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPresets)
	}
	if _, err := presets.Rate(speedIndex); err != nil {
		return nil, err
	}

	c := &Controller{presets: presets, speedIndex: speedIndex}
	c.Reset(trace)
	return c, nil
}

// Reset binds the controller to a new trace and returns it to Idle at cursor 0.
// Batches issued before the reset carry an older Epoch.
func (c *Controller) Reset(trace *maze.Trace) {
	c.trace = trace
	c.cursor = 0
	c.carry = 0
	c.state = Idle
	c.epoch++
	if trace.Len() == 0 {
		c.state = Finished
	}
}

// Play starts or resumes playback. It is a no-op when Playing or Finished.
func (c *Controller) Play() {
	if c.state == Idle || c.state == Paused {
		c.state = Playing
	}
}

// Pause suspends playback. It is a no-op unless Playing.
func (c *Controller) Pause() {
	if c.state == Playing {
		c.state = Paused
	}
}

// SetSpeed selects a preset. The new rate applies from the next tick on; on an invalid
// index the controller is left unchanged.
func (c *Controller) SetSpeed(index int) error {
	if _, err := c.presets.Rate(index); err != nil {
		return err
	}
	c.speedIndex = index
	return nil
}

// Seek moves the cursor to any position in [0, Len]. Seeking to Len finishes playback.
// Seeking back from Finished, or away from 0 while Idle, leaves the controller Paused.
func (c *Controller) Seek(cursor uint64) error {
	length := c.trace.Len()
	if cursor > length {
		return fmt.Errorf("%w: %d not in [0, %d]", maze.ErrIndexOutOfRange, cursor, length)
	}

	c.cursor = cursor
	c.carry = 0
	switch {
	case cursor == length:
		c.state = Finished
	case c.state == Finished, c.state == Idle && cursor > 0:
		c.state = Paused
	}
	return nil
}

// Tick advances a Playing controller by the steps due for elapsed at the current speed
// and returns the events consumed. Fractions of a step carry over to the next tick.
// Ticks in any other state return nil.
func (c *Controller) Tick(elapsed time.Duration) []maze.Event {
	if c.state != Playing || elapsed <= 0 {
		return nil
	}

	if elapsed > maxTickElapsed {
		elapsed = maxTickElapsed
	}

	rate := uint64(c.presets[c.speedIndex])
	total := uint64(elapsed)*rate + c.carry
	due := total / stepUnit
	c.carry = total % stepUnit

	return c.advance(due)
}

// Step advances the cursor by up to n events without changing Idle or Paused into
// Playing. It returns the events consumed.
func (c *Controller) Step(n uint64) []maze.Event {
	if c.state == Finished || n == 0 {
		return nil
	}
	if c.state == Idle {
		c.state = Paused
	}
	return c.advance(n)
}

func (c *Controller) advance(steps uint64) []maze.Event {
	remaining := c.trace.Len() - c.cursor
	if steps > remaining {
		steps = remaining
	}

	from := c.cursor
	c.cursor += steps
	if c.cursor == c.trace.Len() {
		c.state = Finished
		c.carry = 0
	}
	if steps == 0 {
		return nil
	}

	events, err := c.trace.Slice(from, c.cursor)
	if err != nil {
		panic(err)
	}
	return events
}

// State returns the playback state.
func (c *Controller) State() State { return c.state }

// Cursor returns the number of events revealed so far.
func (c *Controller) Cursor() uint64 { return c.cursor }

// Len returns the length of the bound trace.
func (c *Controller) Len() uint64 { return c.trace.Len() }

// SpeedIndex returns the selected preset index.
func (c *Controller) SpeedIndex() int { return c.speedIndex }

// StepsPerSecond returns the selected rate.
func (c *Controller) StepsPerSecond() int { return c.presets[c.speedIndex] }

// Epoch identifies the current binding; it changes on every Reset.
func (c *Controller) Epoch() uint64 { return c.epoch }

// Trace returns the bound trace.
func (c *Controller) Trace() *maze.Trace { return c.trace }

// Snapshot returns the current progress.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:          c.state,
		Cursor:         c.cursor,
		Length:         c.trace.Len(),
		SpeedIndex:     c.speedIndex,
		StepsPerSecond: c.StepsPerSecond(),
		Playing:        c.state == Playing,
		Epoch:          c.epoch,
	}
}
