package maze

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Config describes the maze a Generator should carve.
type Config struct {
	Width  int  // Width of the maze (number of columns)
	Height int  // Height of the maze (number of rows), ignored in square mode
	Square bool // Square derives Height from Width
}

// Dimensions resolves square mode and validates the result.
func (c Config) Dimensions() (width, height int, err error) {
	width, height = c.Width, c.Height
	if c.Square {
		height = width
	}
	if width < 1 || height < 1 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return width, height, nil
}

// Generator carves mazes with a randomized iterative depth-first search.
// A Generator is not safe for concurrent use.
type Generator struct {
	rng  *rand.Rand
	seed int64
}

// NewGenerator creates a generator seeded with seed. A zero seed is replaced by the
// current time. The seed is recorded in every trace the generator produces.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

// NewGeneratorFromRand creates a generator drawing from an existing random source.
func NewGeneratorFromRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate carves a maze and returns the trace of its construction.
//
// The trace holds exactly width*height-1 wall removals followed by one entrance on the
// top edge and one exit on the bottom edge. The only reported error is
// ErrInvalidDimensions.
func (g *Generator) Generate(cfg Config) (*Trace, error) {
	width, height, err := cfg.Dimensions()
	if err != nil {
		return nil, err
	}

	grid, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, width*height+1)
	record := func(e Event) {
		e.Sequence = uint64(len(events))
		events = append(events, e)
	}

	start := Cell{Row: g.rng.Intn(height), Col: g.rng.Intn(width)}
	mustOpen(grid, start.Coordinate())
	stack := []Cell{start}

	for len(stack) > 0 {
		current := pop(&stack)

		unvisited := unvisitedNeighbors(grid, current)
		if len(unvisited) == 0 {
			continue
		}

		stack = append(stack, current)
		next := unvisited[g.rng.Intn(len(unvisited))]

		wall, err := grid.WallBetween(current, next)
		if err != nil {
			panic(fmt.Errorf("carving %v -> %v: %w", current, next, err))
		}
		mustOpen(grid, wall)
		mustOpen(grid, next.Coordinate())
		record(Event{Kind: WallRemoval, From: current, To: next, Wall: wall})

		stack = append(stack, next)
	}

	entrance := Cell{Row: 0, Col: g.rng.Intn(width)}
	exit := Cell{Row: height - 1, Col: g.rng.Intn(width)}
	entranceWall := Coordinate{Row: 0, Col: entrance.Coordinate().Col}
	exitWall := Coordinate{Row: 2 * height, Col: exit.Coordinate().Col}
	mustOpen(grid, entranceWall)
	mustOpen(grid, exitWall)
	record(Event{Kind: Entrance, From: entrance, To: entrance, Wall: entranceWall})
	record(Event{Kind: Exit, From: exit, To: exit, Wall: exitWall})

	return NewTrace(uuid.New(), width, height, g.seed, events)
}

// unvisitedNeighbors returns the neighbours of cell that are still walled in.
func unvisitedNeighbors(g *Grid, cell Cell) []Cell {
	var result []Cell
	for _, n := range g.NeighborsTwoAway(cell) {
		if g.At(n.Coordinate()) == Wall {
			result = append(result, n)
		}
	}
	return result
}

// pop removes and returns the last element of a stack of cells.
func pop(s *[]Cell) Cell {
	lastIndex := len(*s) - 1
	popped := (*s)[lastIndex]
	*s = (*s)[:lastIndex]
	return popped
}

func mustOpen(g *Grid, c Coordinate) {
	if err := g.Open(c); err != nil {
		panic(err)
	}
}
