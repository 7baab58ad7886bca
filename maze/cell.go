package maze

import "fmt"

// State is the content of a single position on the expanded grid.
// The numeric values match the 0/1 matrix handed to renderers.
type State uint8

const (
	Open State = 0 // Open marks a carved passage or an opened wall.
	Wall State = 1 // Wall marks an uncarved position.
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Wall:
		return "wall"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Cell represents a logical passage cell of a width x height maze.
type Cell struct {
	Row int `json:"row" bson:"row"` // Row index of the cell
	Col int `json:"col" bson:"col"` // Column index of the cell
}

// Coordinate returns the position of the cell on the expanded grid.
func (c Cell) Coordinate() Coordinate {
	return Coordinate{Row: 2*c.Row + 1, Col: 2*c.Col + 1}
}

// Coordinate represents a position on the expanded (2*height+1) x (2*width+1) grid.
// Passage cells sit at odd/odd positions; walls between two passage cells have
// exactly one odd component.
type Coordinate struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

// IsPassage reports whether the coordinate has the parity of a passage cell.
func (c Coordinate) IsPassage() bool {
	return isOdd(c.Row) && isOdd(c.Col)
}

// IsWallSlot reports whether the coordinate lies between two passage cells.
func (c Coordinate) IsWallSlot() bool {
	return isOdd(c.Row) != isOdd(c.Col)
}

// Cell converts a passage coordinate back to its logical cell.
// The result is only meaningful when IsPassage is true.
func (c Coordinate) Cell() Cell {
	return Cell{Row: (c.Row - 1) / 2, Col: (c.Col - 1) / 2}
}

func isOdd(n int) bool {
	return n%2 != 0
}
