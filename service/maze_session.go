package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/maze"
	"github.com/beka-birhanu/vinom-labyrinth/player"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
)

var (
	ErrNoMaze = errors.New("no maze has been generated")
)

// GenerateRequest is the maze configuration produced by the controls.
type GenerateRequest struct {
	Width      int   // Width of the maze in cells
	Height     int   // Height of the maze in cells, ignored in square mode
	Square     bool  // Square derives Height from Width
	Seed       int64 // Seed for the carver, 0 picks one
	StepByStep bool  // StepByStep leaves the player at the start; otherwise it jumps to the end
}

// Batch is the set of events a tick or step revealed, tagged with the player position
// after applying them.
type Batch struct {
	Epoch  uint64       `json:"epoch"`
	Cursor uint64       `json:"cursor"`
	Length uint64       `json:"length"`
	State  player.State `json:"state"`
	Events []maze.Event `json:"events"`
}

// MazeSessionConfig holds the dependencies of a MazeSession.
type MazeSessionConfig struct {
	Store        i.TraceStore
	Presets      player.Presets
	SpeedIndex   int // Preset selected for the first player
	MinDimension int // Smallest accepted width/height
	MaxDimension int // Largest accepted width/height
	Logger       i.Logger
}

// MazeSession keeps the single active maze, its trace and the player replaying it.
// All methods are safe for concurrent use; they are serialized on one lock.
type MazeSession struct {
	store      i.TraceStore
	presets    player.Presets
	speedIndex int
	minDim     int
	maxDim     int
	logger     i.Logger
	trace      *maze.Trace
	controller *player.Controller
	sync.Mutex
}

// NewMazeSession creates a session with no maze.
func NewMazeSession(c MazeSessionConfig) (*MazeSession, error) {
	if c.Store == nil || c.Logger == nil {
		return nil, errors.New("maze session: store and logger are required")
	}
	if _, err := c.Presets.Rate(c.SpeedIndex); err != nil {
		return nil, err
	}
	if c.MinDimension < 1 || c.MaxDimension < c.MinDimension {
		return nil, fmt.Errorf("maze session: dimension range [%d, %d] is empty", c.MinDimension, c.MaxDimension)
	}

	return &MazeSession{
		store:      c.Store,
		presets:    c.Presets,
		speedIndex: c.SpeedIndex,
		minDim:     c.MinDimension,
		maxDim:     c.MaxDimension,
		logger:     c.Logger,
	}, nil
}

// Generate carves a new maze, publishes its trace and rebinds the player to it.
// On any error the previous maze, trace and player are left untouched.
func (s *MazeSession) Generate(ctx context.Context, req GenerateRequest) (*maze.Trace, error) {
	cfg := maze.Config{Width: req.Width, Height: req.Height, Square: req.Square}
	width, height, err := cfg.Dimensions()
	if err != nil {
		return nil, err
	}
	if max(width, height) > s.maxDim || min(width, height) < s.minDim {
		return nil, fmt.Errorf("%w: %dx%d outside [%d, %d]", maze.ErrInvalidDimensions, width, height, s.minDim, s.maxDim)
	}

	start := time.Now()
	trace, err := maze.NewGenerator(req.Seed).Generate(cfg)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	if err := s.store.Save(ctx, trace); err != nil {
		return nil, fmt.Errorf("publishing trace %s: %w", trace.ID(), err)
	}

	s.Lock()
	defer s.Unlock()

	if s.controller == nil {
		s.controller, err = player.NewController(trace, s.presets, s.speedIndex)
		if err != nil {
			return nil, err
		}
	} else {
		s.controller.Reset(trace)
	}
	s.trace = trace

	if !req.StepByStep {
		_ = s.controller.Seek(trace.Len())
	}

	s.logger.Info(fmt.Sprintf("generated %dx%d maze %s (seed %d, %d events) in %s", width, height, trace.ID(), trace.Seed(), trace.Len(), elapsed))
	return trace, nil
}

// Current returns the active trace.
func (s *MazeSession) Current() (*maze.Trace, error) {
	s.Lock()
	defer s.Unlock()
	if s.trace == nil {
		return nil, ErrNoMaze
	}
	return s.trace, nil
}

// Load fetches a published trace from the store.
func (s *MazeSession) Load(ctx context.Context, id uuid.UUID) (*maze.Trace, error) {
	return s.store.ByID(ctx, id)
}

// Grid folds the active trace up to cursor. A nil cursor uses the player position.
// It returns the grid and the cursor it was folded at.
func (s *MazeSession) Grid(cursor *uint64) (*maze.Grid, uint64, error) {
	s.Lock()
	if s.trace == nil {
		s.Unlock()
		return nil, 0, ErrNoMaze
	}
	trace, at := s.trace, s.controller.Cursor()
	s.Unlock()

	if cursor != nil {
		at = *cursor
	}
	g, err := maze.Replay(trace, at)
	if err != nil {
		return nil, 0, err
	}
	return g, at, nil
}

// Presets returns the speed table.
func (s *MazeSession) Presets() player.Presets {
	return s.presets
}

// Snapshot reports the player progress.
func (s *MazeSession) Snapshot() (player.Snapshot, error) {
	var snap player.Snapshot
	err := s.withController(func(c *player.Controller) error {
		snap = c.Snapshot()
		return nil
	})
	return snap, err
}

// Play starts or resumes playback.
func (s *MazeSession) Play() error {
	return s.withController(func(c *player.Controller) error {
		c.Play()
		return nil
	})
}

// Pause suspends playback.
func (s *MazeSession) Pause() error {
	return s.withController(func(c *player.Controller) error {
		c.Pause()
		return nil
	})
}

// Seek moves the player cursor.
func (s *MazeSession) Seek(cursor uint64) error {
	return s.withController(func(c *player.Controller) error {
		return c.Seek(cursor)
	})
}

// SetSpeed selects a speed preset; the choice also applies to players of future mazes.
func (s *MazeSession) SetSpeed(index int) error {
	return s.withController(func(c *player.Controller) error {
		if err := c.SetSpeed(index); err != nil {
			return err
		}
		s.speedIndex = index
		return nil
	})
}

// Step advances the player by up to n events.
func (s *MazeSession) Step(n uint64) (Batch, error) {
	var b Batch
	err := s.withController(func(c *player.Controller) error {
		b = batchOf(c, c.Step(n))
		return nil
	})
	return b, err
}

// Tick advances a playing player by elapsed. Without a maze it returns an empty batch.
func (s *MazeSession) Tick(elapsed time.Duration) Batch {
	var b Batch
	_ = s.withController(func(c *player.Controller) error {
		b = batchOf(c, c.Tick(elapsed))
		return nil
	})
	return b
}

func (s *MazeSession) withController(f func(c *player.Controller) error) error {
	s.Lock()
	defer s.Unlock()
	if s.controller == nil {
		return ErrNoMaze
	}
	return f(s.controller)
}

func batchOf(c *player.Controller, events []maze.Event) Batch {
	return Batch{
		Epoch:  c.Epoch(),
		Cursor: c.Cursor(),
		Length: c.Len(),
		State:  c.State(),
		Events: events,
	}
}
