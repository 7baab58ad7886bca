package mazeapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/api"
	"github.com/beka-birhanu/vinom-labyrinth/api/i"
	"github.com/beka-birhanu/vinom-labyrinth/config"
	"github.com/beka-birhanu/vinom-labyrinth/infrastruture/lock"
	logger "github.com/beka-birhanu/vinom-labyrinth/infrastruture/log"
	"github.com/beka-birhanu/vinom-labyrinth/infrastruture/tracestore"
	"github.com/beka-birhanu/vinom-labyrinth/maze"
	"github.com/beka-birhanu/vinom-labyrinth/player"
	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastest is the index of the last, fastest default preset.
var fastest = len(player.DefaultPresets) - 1

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("TEST", config.ColorCyan, io.Discard)
	require.NoError(t, err)

	session, err := service.NewMazeSession(service.MazeSessionConfig{
		Store:        tracestore.NewMemoryStore(),
		Presets:      player.DefaultPresets,
		SpeedIndex:   3,
		MinDimension: 2,
		MaxDimension: 40,
		Logger:       log,
	})
	require.NoError(t, err)

	controller, err := NewMazeController(Config{
		Session:      session,
		OwnerLock:    lock.NewLocalLock(),
		TickInterval: time.Millisecond,
		DefaultWidth: 10,
		Logger:       log,
	})
	require.NoError(t, err)

	return api.NewRouter(api.Config{BaseURL: "/api", Controllers: []i.Controller{controller}}).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func generate(t *testing.T, h http.Handler, body map[string]any) TraceResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/maze", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[TraceResponse](t, rec)
}

func TestGenerate(t *testing.T) {
	h := newHandler(t)

	trace := generate(t, h, map[string]any{"width": 4, "height": 3, "seed": 9})
	assert.Equal(t, 4, trace.Width)
	assert.Equal(t, 3, trace.Height)
	assert.Equal(t, int64(9), trace.Seed)
	assert.Equal(t, uint64(4*3+1), trace.Length)

	rec := do(t, h, http.MethodGet, "/maze", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, trace.ID, decode[TraceResponse](t, rec).ID)

	rec = do(t, h, http.MethodGet, "/maze/traces/"+trace.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decode[maze.Trace](t, rec)
	assert.Equal(t, trace.Length, stored.Len())
}

func TestGenerateDefaults(t *testing.T) {
	h := newHandler(t)

	trace := generate(t, h, nil)
	assert.Equal(t, 10, trace.Width)
	assert.Equal(t, 10, trace.Height, "a missing height selects square mode")

	rec := do(t, h, http.MethodGet, "/player", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, player.Idle, decode[PlayerResponse](t, rec).State)
}

func TestGenerateInstant(t *testing.T) {
	h := newHandler(t)

	trace := generate(t, h, map[string]any{"width": 5, "square": true, "step_by_step": false})
	rec := do(t, h, http.MethodGet, "/player", nil)
	snap := decode[PlayerResponse](t, rec)
	assert.Equal(t, player.Finished, snap.State)
	assert.Equal(t, trace.Length, snap.Cursor)
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	h := newHandler(t)

	for _, body := range []map[string]any{
		{"width": 1, "height": 5},
		{"width": 41, "height": 5},
		{"width": 5, "height": 0},
		{"width": -3},
	} {
		rec := do(t, h, http.MethodPost, "/maze", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %v", body)
	}

	rec := do(t, h, http.MethodPost, "/maze", map[string]any{"width": "wide"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoMaze(t *testing.T) {
	h := newHandler(t)

	for _, path := range []string{"/maze", "/maze/trace", "/maze/grid", "/player"} {
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, path, nil).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/player/play", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/maze/traces/"+"6e8bc430-9c3a-11d9-9669-0800200c9a66", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/maze/traces/not-a-uuid", nil).Code)
}

func TestTraceSlice(t *testing.T) {
	h := newHandler(t)
	trace := generate(t, h, map[string]any{"width": 3, "height": 3})

	rec := do(t, h, http.MethodGet, "/maze/trace?from=2&to=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[EventsResponse](t, rec)
	require.Len(t, events.Events, 3)
	assert.Equal(t, uint64(2), events.Events[0].Sequence)

	rec = do(t, h, http.MethodGet, "/maze/trace", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[EventsResponse](t, rec)
	require.Len(t, all.Events, int(trace.Length))
	assert.Equal(t, maze.Entrance, all.Events[trace.Length-2].Kind)
	assert.Equal(t, maze.Exit, all.Events[trace.Length-1].Kind)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/maze/trace?from=5&to=2", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/maze/trace?to=11", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/maze/trace?from=-1", nil).Code)
}

func TestGrid(t *testing.T) {
	h := newHandler(t)
	trace := generate(t, h, map[string]any{"width": 3, "height": 2})

	rec := do(t, h, http.MethodGet, "/maze/grid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	grid := decode[GridResponse](t, rec)
	assert.Equal(t, uint64(0), grid.Cursor)
	require.Len(t, grid.Rows, 5)
	for _, row := range grid.Rows {
		require.Len(t, row, 7)
		for _, v := range row {
			assert.Equal(t, 1, v, "nothing is carved before the first event")
		}
	}

	rec = do(t, h, http.MethodGet, "/maze/grid?cursor="+strconv.FormatUint(trace.Length, 10), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	open := 0
	for _, row := range decode[GridResponse](t, rec).Rows {
		for _, v := range row {
			if v == 0 {
				open++
			}
		}
	}
	// every cell, every tree edge and both boundary openings
	assert.Equal(t, 3*2+(3*2-1)+2, open)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/maze/grid?cursor=99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/maze/grid?cursor=x", nil).Code)
}

func TestPlayerControls(t *testing.T) {
	h := newHandler(t)
	trace := generate(t, h, map[string]any{"width": 3, "height": 3})

	rec := do(t, h, http.MethodPost, "/player/play", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, player.Playing, decode[PlayerResponse](t, rec).State)

	rec = do(t, h, http.MethodPost, "/player/pause", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, player.Paused, decode[PlayerResponse](t, rec).State)

	rec = do(t, h, http.MethodPost, "/player/seek", map[string]any{"cursor": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(4), decode[PlayerResponse](t, rec).Cursor)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/player/seek", map[string]any{"cursor": trace.Length + 1}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/player/seek", map[string]any{}).Code)

	rec = do(t, h, http.MethodPost, "/player/step", map[string]any{"count": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	batch := decode[service.Batch](t, rec)
	require.Len(t, batch.Events, 2)
	assert.Equal(t, uint64(4), batch.Events[0].Sequence)
	assert.Equal(t, uint64(6), batch.Cursor)

	rec = do(t, h, http.MethodPost, "/player/step", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), decode[service.Batch](t, rec).Cursor)

	rec = do(t, h, http.MethodPost, "/player/seek", map[string]any{"cursor": trace.Length})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, player.Finished, decode[PlayerResponse](t, rec).State)
}

func TestSpeed(t *testing.T) {
	h := newHandler(t)
	generate(t, h, map[string]any{"width": 3, "height": 3})

	rec := do(t, h, http.MethodPost, "/player/speed", map[string]any{"speed_index": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[PlayerResponse](t, rec)
	assert.Equal(t, 5, snap.SpeedIndex)
	assert.Equal(t, 50, snap.StepsPerSecond)
	assert.Equal(t, []int(player.DefaultPresets), snap.Presets)
	assert.Equal(t, "20K", snap.Labels[len(snap.Labels)-1])

	for _, idx := range []int{-1, len(player.DefaultPresets)} {
		rec = do(t, h, http.MethodPost, "/player/speed", map[string]any{"speed_index": idx})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/player", nil)
	assert.Equal(t, 5, decode[PlayerResponse](t, rec).SpeedIndex, "rejected speeds leave the player untouched")
}

func TestStream(t *testing.T) {
	h := newHandler(t)
	trace := generate(t, h, map[string]any{"width": 3, "height": 3})
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/player/speed", map[string]any{"speed_index": fastest}).Code)

	server := httptest.NewServer(h)
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/player/stream"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first service.Batch
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, player.Idle, first.State)
	assert.Equal(t, trace.Length, first.Length)

	t.Run("second stream is refused", func(t *testing.T) {
		other, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer other.Close()
		require.NoError(t, other.SetReadDeadline(time.Now().Add(5*time.Second)))

		_, _, err = other.ReadMessage()
		var closeErr *websocket.CloseError
		require.True(t, errors.As(err, &closeErr), "got %v", err)
		assert.Equal(t, websocket.CloseTryAgainLater, closeErr.Code)
	})

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/player/play", nil).Code)

	var seqs []uint64
	for {
		var b service.Batch
		require.NoError(t, conn.ReadJSON(&b))
		for _, e := range b.Events {
			seqs = append(seqs, e.Sequence)
		}
		if b.State == player.Finished {
			assert.Equal(t, trace.Length, b.Cursor)
			break
		}
	}
	require.Len(t, seqs, int(trace.Length))
	for n, seq := range seqs {
		assert.Equal(t, uint64(n), seq)
	}
}
