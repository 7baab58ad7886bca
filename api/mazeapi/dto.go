// Package mazeapi exposes maze generation and playback controls over HTTP.
package mazeapi

import (
	"github.com/beka-birhanu/vinom-labyrinth/maze"
	"github.com/beka-birhanu/vinom-labyrinth/player"
	"github.com/google/uuid"
)

// GenerateRequest represents the maze configuration sent by the controls.
// A missing height selects square mode; a missing step_by_step means true.
type GenerateRequest struct {
	Width      *int  `json:"width"`
	Height     *int  `json:"height"`
	Square     bool  `json:"square"`
	Seed       int64 `json:"seed"`
	StepByStep *bool `json:"step_by_step"`
}

// TraceResponse summarizes a generated trace.
type TraceResponse struct {
	ID     uuid.UUID `json:"id"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Seed   int64     `json:"seed"`
	Length uint64    `json:"length"`
}

// EventsResponse carries a slice of trace events.
type EventsResponse struct {
	From   uint64       `json:"from"`
	To     uint64       `json:"to"`
	Events []maze.Event `json:"events"`
}

// GridResponse carries the 0/1 matrix of a maze at a cursor.
type GridResponse struct {
	Cursor uint64  `json:"cursor"`
	Rows   [][]int `json:"rows"`
}

// PlayerResponse reports playback progress and the available speeds.
type PlayerResponse struct {
	player.Snapshot
	Presets []int    `json:"presets"`
	Labels  []string `json:"labels"`
}

// SeekRequest moves the player cursor.
type SeekRequest struct {
	Cursor *uint64 `json:"cursor" binding:"required"`
}

// SpeedRequest selects a speed preset.
type SpeedRequest struct {
	SpeedIndex *int `json:"speed_index" binding:"required"`
}

// StepRequest advances the player by Count events, one when omitted.
type StepRequest struct {
	Count uint64 `json:"count"`
}

func newTraceResponse(t *maze.Trace) TraceResponse {
	return TraceResponse{
		ID:     t.ID(),
		Width:  t.Width(),
		Height: t.Height(),
		Seed:   t.Seed(),
		Length: t.Len(),
	}
}

func newGridResponse(cursor uint64, g *maze.Grid) GridResponse {
	matrix := g.Matrix()
	rows := make([][]int, len(matrix))
	for r, row := range matrix {
		rows[r] = make([]int, len(row))
		for c, v := range row {
			rows[r][c] = int(v)
		}
	}
	return GridResponse{Cursor: cursor, Rows: rows}
}
