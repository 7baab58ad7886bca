package maze

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openPassageGraph returns the number of open passage cells reachable from the first
// open passage cell, the number of open passage cells and the number of open interior
// walls joining two passage cells.
func openPassageGraph(t *testing.T, g *Grid) (reachable, cells, edges int) {
	t.Helper()

	var start *Coordinate
	for r := 0; r < g.Height(); r++ {
		for c := 0; c < g.Width(); c++ {
			coord := Cell{Row: r, Col: c}.Coordinate()
			if g.IsOpen(coord) {
				cells++
				if start == nil {
					start = &coord
				}
			}
		}
	}

	rows, cols := g.Size()
	for r := 1; r < rows-1; r++ {
		for c := 1; c < cols-1; c++ {
			coord := Coordinate{Row: r, Col: c}
			if coord.IsWallSlot() && g.IsOpen(coord) {
				edges++
			}
		}
	}

	if start == nil {
		return 0, cells, edges
	}

	seen := map[Coordinate]bool{*start: true}
	queue := []Coordinate{*start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			wall := Coordinate{Row: cur.Row + d.Row/2, Col: cur.Col + d.Col/2}
			next := Coordinate{Row: cur.Row + d.Row, Col: cur.Col + d.Col}
			if g.IsPassageCell(next) && g.IsOpen(wall) && g.IsOpen(next) && !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return len(seen), cells, edges
}

func TestGenerateSpanningTree(t *testing.T) {
	tests := []struct {
		width, height int
	}{
		{1, 1}, {1, 7}, {7, 1}, {2, 2}, {3, 3}, {10, 4}, {25, 25},
	}

	for _, tt := range tests {
		for seed := int64(1); seed <= 5; seed++ {
			gen := NewGenerator(seed)
			trace, err := gen.Generate(Config{Width: tt.width, Height: tt.height})
			require.NoError(t, err)

			n := tt.width * tt.height
			require.Equal(t, uint64(n-1+2), trace.Len())

			removals := 0
			for i, e := range trace.Events() {
				assert.Equal(t, uint64(i), e.Sequence)
				if e.Kind == WallRemoval {
					removals++
				}
			}
			assert.Equal(t, n-1, removals)

			grid, err := Replay(trace, trace.Len())
			require.NoError(t, err)

			reachable, cells, edges := openPassageGraph(t, grid)
			assert.Equal(t, n, cells, "%dx%d seed %d", tt.width, tt.height, seed)
			assert.Equal(t, n, reachable, "%dx%d seed %d", tt.width, tt.height, seed)
			assert.Equal(t, n-1, edges, "%dx%d seed %d", tt.width, tt.height, seed)
		}
	}
}

func TestGenerateBoundaryEvents(t *testing.T) {
	trace, err := NewGenerator(42).Generate(Config{Width: 6, Height: 4})
	require.NoError(t, err)

	entrance, err := trace.EventAt(trace.Len() - 2)
	require.NoError(t, err)
	exit, err := trace.EventAt(trace.Len() - 1)
	require.NoError(t, err)

	assert.Equal(t, Entrance, entrance.Kind)
	assert.Equal(t, 0, entrance.Wall.Row)
	assert.True(t, entrance.Wall.Col%2 == 1)
	assert.Equal(t, 0, entrance.To.Row)

	assert.Equal(t, Exit, exit.Kind)
	assert.Equal(t, 8, exit.Wall.Row)
	assert.True(t, exit.Wall.Col%2 == 1)
	assert.Equal(t, 3, exit.To.Row)

	grid, err := Replay(trace, trace.Len())
	require.NoError(t, err)

	openPerimeter := 0
	rows, cols := grid.Size()
	for c := 0; c < cols; c++ {
		for _, r := range []int{0, rows - 1} {
			if grid.IsOpen(Coordinate{Row: r, Col: c}) {
				openPerimeter++
			}
		}
	}
	for r := 1; r < rows-1; r++ {
		for _, c := range []int{0, cols - 1} {
			if grid.IsOpen(Coordinate{Row: r, Col: c}) {
				openPerimeter++
			}
		}
	}
	assert.Equal(t, 2, openPerimeter)
}

func TestGenerateThreeByThree(t *testing.T) {
	trace, err := NewGenerator(7).Generate(Config{Width: 3, Height: 3})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), trace.Len())

	grid, err := Replay(trace, trace.Len())
	require.NoError(t, err)
	reachable, cells, edges := openPassageGraph(t, grid)
	assert.Equal(t, 9, cells)
	assert.Equal(t, 9, reachable)
	assert.Equal(t, 8, edges)
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := NewGenerator(99).Generate(Config{Width: 12, Height: 9})
	require.NoError(t, err)
	b, err := NewGeneratorFromRand(rand.New(rand.NewSource(99))).Generate(Config{Width: 12, Height: 9})
	require.NoError(t, err)

	assert.Equal(t, a.Events(), b.Events())
	assert.Equal(t, int64(99), a.Seed())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestGenerateDimensions(t *testing.T) {
	t.Run("square mode derives height from width", func(t *testing.T) {
		trace, err := NewGenerator(3).Generate(Config{Width: 4, Square: true})
		require.NoError(t, err)
		assert.Equal(t, 4, trace.Height())
		assert.Equal(t, uint64(4*4-1+2), trace.Len())
	})

	t.Run("non-positive dimensions are rejected", func(t *testing.T) {
		for _, cfg := range []Config{
			{Width: 0, Height: 3},
			{Width: 3, Height: 0},
			{Width: -1, Square: true},
		} {
			_, err := NewGenerator(3).Generate(cfg)
			assert.True(t, errors.Is(err, ErrInvalidDimensions), "cfg %+v", cfg)
		}
	})
}
