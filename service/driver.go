package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/player"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
)

const defaultTickInterval = 8 * time.Millisecond

// TickSource is advanced by a Driver.
type TickSource interface {
	Tick(elapsed time.Duration) Batch
}

// Renderer receives the batches a Driver produces.
type Renderer func(Batch) error

// DriverConfig holds the dependencies of a Driver.
type DriverConfig struct {
	Source   TickSource
	Lock     i.OwnerLock
	Interval time.Duration // Tick period, defaults to 8ms
	Logger   i.Logger
}

// Driver is the periodic tick source of a player. While running it owns the
// authoritative cursor through its OwnerLock.
type Driver struct {
	source   TickSource
	lock     i.OwnerLock
	interval time.Duration
	logger   i.Logger
}

// NewDriver creates a Driver.
func NewDriver(c DriverConfig) (*Driver, error) {
	if c.Source == nil || c.Lock == nil || c.Logger == nil {
		return nil, errors.New("driver: source, lock and logger are required")
	}
	if c.Interval <= 0 {
		c.Interval = defaultTickInterval
	}
	return &Driver{
		source:   c.Source,
		lock:     c.Lock,
		interval: c.Interval,
		logger:   c.Logger,
	}, nil
}

// Run ticks the source until ctx is done, forwarding every batch that revealed events or
// changed the player state to render. It returns nil when ctx ends, the render error
// when rendering fails, or ErrPlaybackOwned when another driver is running.
func (d *Driver) Run(ctx context.Context, render Renderer) error {
	release, err := d.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info(fmt.Sprintf("driver started, ticking every %s", d.interval))
	defer d.logger.Info("driver stopped")

	var (
		last      = time.Now()
		lastEpoch uint64
		lastState = player.State(255)
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			batch := d.source.Tick(now.Sub(last))
			last = now

			if len(batch.Events) == 0 && batch.State == lastState && batch.Epoch == lastEpoch {
				continue
			}
			lastState, lastEpoch = batch.State, batch.Epoch

			if err := render(batch); err != nil {
				return fmt.Errorf("rendering batch at cursor %d: %w", batch.Cursor, err)
			}
		}
	}
}
