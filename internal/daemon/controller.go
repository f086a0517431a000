// Package daemon runs the drop-down event loop. Every slide, edge-trigger
// tick, focus change and IPC command is executed on the single goroutine
// started by Controller.Run.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/1broseidon/termdrop/internal/animation"
	"github.com/1broseidon/termdrop/internal/config"
	"github.com/1broseidon/termdrop/internal/edge"
	"github.com/1broseidon/termdrop/internal/geometry"
	"github.com/1broseidon/termdrop/internal/ipc"
	"github.com/1broseidon/termdrop/internal/platform"
	"github.com/1broseidon/termdrop/internal/tracking"
)

// ErrStopped is returned by commands sent after the loop has exited.
var ErrStopped = errors.New("daemon is not running")

// Options configures a Controller.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Backend    platform.Backend
	Logger     *slog.Logger
	// Driver defaults to an animation driver on Backend.
	Driver *animation.Driver
	// Focus delivers active-window changes. Nil disables focus-loss hiding.
	Focus <-chan platform.WindowID
	// Now defaults to time.Now.
	Now func() time.Time
	// OnReload runs on the loop goroutine after a successful reload.
	OnReload func(*config.Config)
}

type result struct {
	val any
	err error
}

type request struct {
	name  string
	op    func(ctx context.Context) (any, error)
	reply chan result
}

// Controller owns the drop-down session.
type Controller struct {
	backend  platform.Backend
	driver   *animation.Driver
	session  *tracking.Session
	logger   *slog.Logger
	focus    <-chan platform.WindowID
	now      func() time.Time
	onReload func(*config.Config)

	// Owned by the loop goroutine.
	cfg         *config.Config
	cfgPath     string
	edgeState   edge.State
	workArea    platform.Rect
	displays    []platform.Display
	tickChanged bool

	// Readable from any goroutine.
	edgeEnabled atomic.Bool
	edgePhase   atomic.Int32
	direction   atomic.Int32

	requests chan request
	done     chan struct{}
}

// NewController builds a controller. Call Run to start processing.
func NewController(opts Options) (*Controller, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	driver := opts.Driver
	if driver == nil {
		driver = animation.NewDriver(opts.Backend, animation.WithLogger(logger.With("component", "animation")))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		backend:  opts.Backend,
		driver:   driver,
		session:  tracking.New(),
		logger:   logger,
		focus:    opts.Focus,
		now:      now,
		onReload: opts.OnReload,
		cfg:      cfg,
		cfgPath:  opts.ConfigPath,
		requests: make(chan request, 16),
		done:     make(chan struct{}),
	}
	c.edgeEnabled.Store(cfg.EdgeTrigger.Enabled)
	return c, nil
}

// Session exposes the tracked-window state.
func (c *Controller) Session() *tracking.Session {
	return c.session
}

// Run processes commands, ticks and focus changes until ctx is cancelled.
// The tracked window is restored to its original geometry before Run
// returns.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.restoreOnExit()

	ticker := time.NewTicker(c.cfg.TickInterval())
	defer ticker.Stop()

	c.logger.Info("controller started", "tick", c.cfg.TickInterval(), "edge_trigger", c.edgeEnabled.Load())

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("controller stopped")
			return nil
		case req := <-c.requests:
			c.handle(ctx, req)
		case <-c.focus:
			c.handleFocusChange(ctx)
		case <-ticker.C:
			c.tick(ctx)
		}

		if c.tickChanged {
			ticker.Reset(c.cfg.TickInterval())
			c.tickChanged = false
		}
	}
}

func (c *Controller) handle(ctx context.Context, req request) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("command panic recovered", "command", req.name, "error", r)
			if req.reply != nil {
				req.reply <- result{err: fmt.Errorf("%s: internal error", req.name)}
			}
		}
	}()

	val, err := req.op(ctx)
	if err != nil {
		c.logger.Debug("command failed", "command", req.name, "error", err)
	}
	if req.reply != nil {
		req.reply <- result{val: val, err: err}
	}
}

// do runs op on the loop goroutine and waits for its result.
func (c *Controller) do(name string, op func(ctx context.Context) (any, error)) (any, error) {
	reply := make(chan result, 1)
	select {
	case c.requests <- request{name: name, op: op, reply: reply}:
	case <-c.done:
		return nil, ErrStopped
	}
	select {
	case r := <-reply:
		return r.val, r.err
	case <-c.done:
		select {
		case r := <-reply:
			return r.val, r.err
		default:
			return nil, ErrStopped
		}
	}
}

// post queues op without waiting. It never blocks, so it is safe to call
// from the X event loop.
func (c *Controller) post(name string, op func(ctx context.Context) error) {
	req := request{name: name, op: func(ctx context.Context) (any, error) {
		return nil, op(ctx)
	}}
	select {
	case c.requests <- req:
	default:
		c.logger.Warn("command dropped, loop busy", "command", name)
	}
}

func (c *Controller) doErr(name string, op func(ctx context.Context) error) error {
	_, err := c.do(name, func(ctx context.Context) (any, error) {
		return nil, op(ctx)
	})
	return err
}

var _ ipc.Controller = (*Controller)(nil)

// Toggle slides the tracked window in or out.
func (c *Controller) Toggle() error {
	return c.doErr("toggle", c.toggle)
}

// Show slides the tracked window in when it is hidden.
func (c *Controller) Show() error {
	return c.doErr("show", func(ctx context.Context) error {
		if err := c.requireTracked(); err != nil {
			return err
		}
		c.resetEdge()
		if c.session.Visible() {
			return nil
		}
		return c.slideIn(ctx)
	})
}

// Hide slides the tracked window out when it is visible.
func (c *Controller) Hide() error {
	return c.doErr("hide", func(ctx context.Context) error {
		if err := c.requireTracked(); err != nil {
			return err
		}
		c.resetEdge()
		if !c.session.Visible() {
			return nil
		}
		return c.slideOut(ctx, true)
	})
}

// Track starts controlling windowID, or the focused window when it is 0.
func (c *Controller) Track(windowID uint32) (ipc.TrackData, error) {
	val, err := c.do("track", func(ctx context.Context) (any, error) {
		return c.track(platform.WindowID(windowID))
	})
	if err != nil {
		return ipc.TrackData{}, err
	}
	return val.(ipc.TrackData), nil
}

// Untrack releases the tracked window and restores its original geometry.
func (c *Controller) Untrack() error {
	return c.doErr("untrack", func(context.Context) error {
		return c.untrack()
	})
}

// SetEdgeTrigger enables or disables the edge trigger and persists the
// choice. A nil enabled flips the current setting.
func (c *Controller) SetEdgeTrigger(enabled *bool) (bool, error) {
	val, err := c.do("set_edge", func(context.Context) (any, error) {
		return c.setEdge(enabled), nil
	})
	if err != nil {
		return false, err
	}
	return val.(bool), nil
}

// Reload re-reads the config file.
func (c *Controller) Reload() error {
	return c.doErr("reload", func(context.Context) error {
		return c.reload()
	})
}

// ToggleAsync is the hotkey form of Toggle.
func (c *Controller) ToggleAsync() {
	c.post("toggle", func(ctx context.Context) error {
		err := c.toggle(ctx)
		if err != nil {
			c.logger.Warn("toggle failed", "error", err)
		}
		return err
	})
}

// TrackFocusedAsync is the hotkey form of track/untrack: it releases the
// tracked window when it has focus and otherwise tracks the focused window.
func (c *Controller) TrackFocusedAsync() {
	c.post("track", func(context.Context) error {
		err := c.trackFocused()
		if err != nil {
			c.logger.Warn("track failed", "error", err)
		}
		return err
	})
}

// Status reports the session without going through the loop.
func (c *Controller) Status() ipc.StatusData {
	snap := c.session.Snapshot()
	status := ipc.StatusData{
		Tracking:    snap.Window != 0,
		WindowID:    uint32(snap.Window),
		Visible:     snap.Visible,
		EdgeTrigger: c.edgeEnabled.Load(),
		EdgePhase:   edge.Phase(c.edgePhase.Load()).String(),
	}
	if snap.Window != 0 {
		status.Title = c.backend.WindowTitle(snap.Window)
		status.Direction = geometry.Direction(c.direction.Load()).String()
		if snap.HasBounds {
			r := rectData(snap.Bounds)
			status.Bounds = &r
		}
	}
	return status
}

func rectData(r platform.Rect) ipc.RectData {
	return ipc.RectData{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// TrackedWindow returns the tracked window id, or 0.
func (c *Controller) TrackedWindow() uint32 {
	return uint32(c.session.Window())
}
