package mazeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// stream drives the player for as long as the websocket stays open and pushes every
// batch to the client as a JSON message. Only one stream can drive the player at a time.
func (mc *MazeController) stream(ctx *gin.Context) {
	driver, err := service.NewDriver(service.DriverConfig{
		Source:   mc.session,
		Lock:     mc.ownerLock,
		Interval: mc.tickInterval,
		Logger:   mc.logger,
	})
	if err != nil {
		mc.fail(ctx, err)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		mc.logger.Warning(fmt.Sprintf("upgrading player stream: %v", err))
		return
	}
	defer conn.Close()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client never sends anything; reading only detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					mc.logger.Warning(fmt.Sprintf("reading player stream: %v", err))
				}
				return
			}
		}
	}()

	err = driver.Run(runCtx, func(b service.Batch) error {
		return conn.WriteJSON(b)
	})
	if err == nil {
		return
	}

	code := websocket.CloseInternalServerErr
	if errors.Is(err, i.ErrPlaybackOwned) {
		code = websocket.CloseTryAgainLater
	} else {
		mc.logger.Error(fmt.Sprintf("player stream: %v", err))
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, err.Error()))
}
