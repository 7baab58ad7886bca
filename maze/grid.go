/*
Package maze provides tools for carving rectangular mazes and recording how they were built.

A maze of width x height passage cells lives on an expanded grid of
(2*height+1) x (2*width+1) positions. Passage cells sit at odd/odd positions, the
positions between them are walls, and the outer ring is the perimeter.

The package includes a randomized depth-first Generator that carves a spanning tree over
the passage cells and returns an immutable Trace of every wall removal, in the order the
passages were discovered. Replay folds a prefix of a trace back into a Grid.
*/
package maze

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDimensions = errors.New("invalid maze dimensions")
	ErrInvalidAdjacency  = errors.New("cells are not adjacent")
	ErrOutOfBounds       = errors.New("coordinate is out of the grid")
)

// Directions lists the two-step offsets to neighbouring passage cells on the expanded
// grid, in the fixed order up, down, left, right.
var Directions = []Coordinate{
	{Row: -2, Col: 0},
	{Row: 2, Col: 0},
	{Row: 0, Col: -2},
	{Row: 0, Col: 2},
}

// Grid is the wall/open state of every position of the expanded grid.
type Grid struct {
	width  int     // Width of the maze (number of passage columns)
	height int     // Height of the maze (number of passage rows)
	cols   int     // Expanded grid columns, 2*width+1
	rows   int     // Expanded grid rows, 2*height+1
	cells  []State // Row-major expanded grid
}

// NewGrid initializes a grid for a width x height maze with every position set to Wall.
func NewGrid(width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	g := &Grid{
		width:  width,
		height: height,
		cols:   2*width + 1,
		rows:   2*height + 1,
	}
	g.cells = make([]State, g.rows*g.cols)
	for i := range g.cells {
		g.cells[i] = Wall
	}
	return g, nil
}

// Width returns the number of passage columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of passage rows.
func (g *Grid) Height() int { return g.height }

// Size returns the dimensions of the expanded grid.
func (g *Grid) Size() (rows, cols int) { return g.rows, g.cols }

// InBounds reports whether the coordinate lies on the expanded grid.
func (g *Grid) InBounds(c Coordinate) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// IsPassageCell reports whether the coordinate is a passage cell of this grid.
func (g *Grid) IsPassageCell(c Coordinate) bool {
	return g.InBounds(c) && c.IsPassage()
}

// At returns the state at the coordinate. Positions outside the grid read as Wall.
func (g *Grid) At(c Coordinate) State {
	if !g.InBounds(c) {
		return Wall
	}
	return g.cells[c.Row*g.cols+c.Col]
}

// IsOpen reports whether the coordinate is Open.
func (g *Grid) IsOpen(c Coordinate) bool {
	return g.At(c) == Open
}

// Open marks the coordinate as Open.
func (g *Grid) Open(c Coordinate) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, c.Row, c.Col)
	}
	g.cells[c.Row*g.cols+c.Col] = Open
	return nil
}

// NeighborsTwoAway returns the passage cells adjacent to cell that lie within bounds,
// in the order of Directions.
func (g *Grid) NeighborsTwoAway(cell Cell) []Cell {
	origin := cell.Coordinate()
	result := make([]Cell, 0, len(Directions))
	for _, d := range Directions {
		next := Coordinate{Row: origin.Row + d.Row, Col: origin.Col + d.Col}
		if g.IsPassageCell(next) {
			result = append(result, next.Cell())
		}
	}
	return result
}

// WallBetween returns the wall coordinate separating two adjacent passage cells.
// The cells must be axis-aligned and exactly two expanded positions apart.
func (g *Grid) WallBetween(a, b Cell) (Coordinate, error) {
	ca, cb := a.Coordinate(), b.Coordinate()
	if !g.IsPassageCell(ca) || !g.IsPassageCell(cb) {
		return Coordinate{}, fmt.Errorf("%w: %v and %v", ErrInvalidAdjacency, a, b)
	}

	dr, dc := abs(ca.Row-cb.Row), abs(ca.Col-cb.Col)
	if !(dr == 2 && dc == 0) && !(dr == 0 && dc == 2) {
		return Coordinate{}, fmt.Errorf("%w: %v and %v", ErrInvalidAdjacency, a, b)
	}

	return Coordinate{Row: (ca.Row + cb.Row) / 2, Col: (ca.Col + cb.Col) / 2}, nil
}

// Matrix returns the expanded grid as rows of 0 (open) and 1 (wall).
func (g *Grid) Matrix() [][]uint8 {
	out := make([][]uint8, g.rows)
	for r := range out {
		out[r] = make([]uint8, g.cols)
		for c := range out[r] {
			out[r][c] = uint8(g.cells[r*g.cols+c])
		}
	}
	return out
}

// Equal reports whether both grids have the same dimensions and states.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String provides a textual representation of the grid.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.cells[r*g.cols+c] == Wall {
				b.WriteByte('#')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
