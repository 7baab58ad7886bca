package mazeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/maze"
	"github.com/beka-birhanu/vinom-labyrinth/player"
	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MazeController serves the maze generation and player controls.
type MazeController struct {
	session      *service.MazeSession
	ownerLock    i.OwnerLock
	tickInterval time.Duration
	defaultWidth int
	logger       i.Logger
}

// Config holds the dependencies of a MazeController.
type Config struct {
	Session      *service.MazeSession
	OwnerLock    i.OwnerLock   // Lock shared by every stream driving the player
	TickInterval time.Duration // Period of stream drivers
	DefaultWidth int           // Width used when a request omits it
	Logger       i.Logger
}

// NewMazeController initializes a MazeController.
func NewMazeController(c Config) (*MazeController, error) {
	if c.Session == nil || c.OwnerLock == nil || c.Logger == nil {
		return nil, errors.New("maze controller: session, owner lock and logger are required")
	}
	return &MazeController{
		session:      c.Session,
		ownerLock:    c.OwnerLock,
		tickInterval: c.TickInterval,
		defaultWidth: c.DefaultWidth,
		logger:       c.Logger,
	}, nil
}

// Register registers the maze and player routes.
func (mc *MazeController) Register(route *gin.RouterGroup) {
	mazeRoutes := route.Group("/maze")
	{
		mazeRoutes.POST("", mc.generate)
		mazeRoutes.GET("", mc.current)
		mazeRoutes.GET("/trace", mc.events)
		mazeRoutes.GET("/traces/:ID", mc.storedTrace)
		mazeRoutes.GET("/grid", mc.grid)
	}

	playerRoutes := route.Group("/player")
	{
		playerRoutes.GET("", mc.snapshot)
		playerRoutes.POST("/play", mc.play)
		playerRoutes.POST("/pause", mc.pause)
		playerRoutes.POST("/seek", mc.seek)
		playerRoutes.POST("/speed", mc.speed)
		playerRoutes.POST("/step", mc.step)
		playerRoutes.GET("/stream", mc.stream)
	}
}

// generate handles maze generation requests.
func (mc *MazeController) generate(ctx *gin.Context) {
	var request GenerateRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	req := service.GenerateRequest{
		Width:      mc.defaultWidth,
		Square:     request.Square || request.Height == nil,
		Seed:       request.Seed,
		StepByStep: request.StepByStep == nil || *request.StepByStep,
	}
	if request.Width != nil {
		req.Width = *request.Width
	}
	if request.Height != nil {
		req.Height = *request.Height
	}

	trace, err := mc.session.Generate(ctx, req)
	if err != nil {
		mc.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, newTraceResponse(trace))
}

// current reports the active maze.
func (mc *MazeController) current(ctx *gin.Context) {
	trace, err := mc.session.Current()
	if err != nil {
		mc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newTraceResponse(trace))
}

// events returns the active trace's events in [from, to).
func (mc *MazeController) events(ctx *gin.Context) {
	trace, err := mc.session.Current()
	if err != nil {
		mc.fail(ctx, err)
		return
	}

	from, err := queryUint(ctx, "from", 0)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := queryUint(ctx, "to", trace.Len())
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := trace.Slice(from, to)
	if err != nil {
		mc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, EventsResponse{From: from, To: to, Events: events})
}

// storedTrace loads a published trace by ID.
func (mc *MazeController) storedTrace(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid trace id"})
		return
	}

	trace, err := mc.session.Load(ctx, id)
	if err != nil {
		mc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, trace)
}

// grid returns the 0/1 matrix at the requested cursor, or at the player cursor.
func (mc *MazeController) grid(ctx *gin.Context) {
	var cursor *uint64
	if raw, ok := ctx.GetQuery("cursor"); ok {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "cursor must be a non-negative integer"})
			return
		}
		cursor = &v
	}

	g, at, err := mc.session.Grid(cursor)
	if err != nil {
		mc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newGridResponse(at, g))
}

// snapshot reports playback progress.
func (mc *MazeController) snapshot(ctx *gin.Context) {
	snap, err := mc.session.Snapshot()
	if err != nil {
		mc.fail(ctx, err)
		return
	}
	presets := mc.session.Presets()
	ctx.JSON(http.StatusOK, PlayerResponse{
		Snapshot: snap,
		Presets:  presets,
		Labels:   presets.Labels(),
	})
}

func (mc *MazeController) play(ctx *gin.Context) {
	mc.respond(ctx, mc.session.Play())
}

func (mc *MazeController) pause(ctx *gin.Context) {
	mc.respond(ctx, mc.session.Pause())
}

func (mc *MazeController) seek(ctx *gin.Context) {
	var request SeekRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mc.respond(ctx, mc.session.Seek(*request.Cursor))
}

func (mc *MazeController) speed(ctx *gin.Context) {
	var request SpeedRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mc.respond(ctx, mc.session.SetSpeed(*request.SpeedIndex))
}

func (mc *MazeController) step(ctx *gin.Context) {
	var request StepRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if request.Count == 0 {
		request.Count = 1
	}

	batch, err := mc.session.Step(request.Count)
	if err != nil {
		mc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, batch)
}

// respond replies with the player snapshot after a successful control.
func (mc *MazeController) respond(ctx *gin.Context, err error) {
	if err != nil {
		mc.fail(ctx, err)
		return
	}
	mc.snapshot(ctx)
}

// fail maps service errors to HTTP statuses.
func (mc *MazeController) fail(ctx *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		mc.logger.Error(fmt.Sprintf("%s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err))
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, maze.ErrInvalidDimensions),
		errors.Is(err, maze.ErrIndexOutOfRange),
		errors.Is(err, maze.ErrInvalidRange),
		errors.Is(err, player.ErrInvalidSpeedIndex):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoMaze), errors.Is(err, i.ErrTraceNotFound):
		return http.StatusNotFound
	case errors.Is(err, i.ErrPlaybackOwned):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func queryUint(ctx *gin.Context, key string, def uint64) (uint64, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return v, nil
}
