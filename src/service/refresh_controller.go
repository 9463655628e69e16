package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gitlab.com/open-soft/spread-dashboard/src/utils"
)

const DefaultRefreshInterval = 60 * time.Second

type RefreshTask func(ctx context.Context) error

// RefreshController owns at most one active ticker. Each tick runs the task on its own goroutine.
type RefreshController struct {
	TimeService     utils.TimeServiceInterface
	Task            RefreshTask
	Ctx             *context.Context
	DefaultInterval time.Duration

	mu       sync.Mutex
	ticker   utils.TickerInterface
	done     chan struct{}
	interval time.Duration
	ticks    atomic.Int64
	loops    sync.WaitGroup
	inFlight sync.WaitGroup
}

// Start cancels any previous ticker before starting a new one.
func (c *RefreshController) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: refresh interval must be positive, %s given", model.ErrInvalidInput, interval)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.startLocked(interval)

	return nil
}

func (c *RefreshController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopLocked() {
		log.Info("[refresh] auto refresh stopped")
	}
}

// Toggle flips the controller state and returns whether it is running afterwards.
func (c *RefreshController) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopLocked() {
		log.Info("[refresh] auto refresh stopped")
		return false
	}

	interval := c.interval
	if interval <= 0 {
		interval = c.defaultInterval()
	}
	c.startLocked(interval)

	return true
}

func (c *RefreshController) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ticker != nil
}

// Interval returns the interval of the last start, or the default one.
func (c *RefreshController) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.interval > 0 {
		return c.interval
	}

	return c.defaultInterval()
}

func (c *RefreshController) Ticks() int64 {
	return c.ticks.Load()
}

// Close stops the ticker and waits for tasks that are still running.
func (c *RefreshController) Close() {
	c.Stop()
	c.loops.Wait()
	c.inFlight.Wait()
}

func (c *RefreshController) State() model.RefreshState {
	return model.RefreshState{
		Enabled:         c.IsRunning(),
		IntervalSeconds: int64(c.Interval().Seconds()),
	}
}

func (c *RefreshController) startLocked(interval time.Duration) {
	c.stopLocked()

	ticker := c.TimeService.NewTicker(interval)
	done := make(chan struct{})
	c.ticker = ticker
	c.done = done
	c.interval = interval

	c.loops.Add(1)
	go c.loop(ticker, done)

	log.Infof("[refresh] auto refresh started, every %s", interval)
}

func (c *RefreshController) defaultInterval() time.Duration {
	if c.DefaultInterval > 0 {
		return c.DefaultInterval
	}

	return DefaultRefreshInterval
}

func (c *RefreshController) stopLocked() bool {
	if c.ticker == nil {
		return false
	}

	c.ticker.Stop()
	close(c.done)
	c.ticker = nil
	c.done = nil

	return true
}

func (c *RefreshController) loop(ticker utils.TickerInterface, done chan struct{}) {
	defer c.loops.Done()

	for {
		select {
		case <-done:
			return
		case <-ticker.C():
			select {
			case <-done:
				return
			default:
			}

			c.ticks.Add(1)
			c.inFlight.Add(1)
			go c.run()
		}
	}
}

func (c *RefreshController) run() {
	defer c.inFlight.Done()

	ctx := context.Background()
	if c.Ctx != nil {
		ctx = *c.Ctx
	}

	err := c.Task(ctx)
	if err == nil {
		return
	}

	if errors.Is(err, model.ErrRefreshInProgress) {
		log.Debug("[refresh] previous refresh is still running, tick skipped")
		return
	}

	log.Warnf("[refresh] tick failed: %s", err.Error())
}
