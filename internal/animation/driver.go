// Package animation slides a window between its hidden and visible
// positions, one frame per display refresh.
package animation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/1broseidon/termdrop/internal/easing"
	"github.com/1broseidon/termdrop/internal/geometry"
	"github.com/1broseidon/termdrop/internal/platform"
)

var (
	// ErrNoMonitor means no usable work area was available.
	ErrNoMonitor = errors.New("no monitor information available")
	// ErrAnimate means the window could not be moved.
	ErrAnimate = errors.New("could not animate window")
)

// fallbackFrame is used when the refresh wait fails.
const fallbackFrame = 16 * time.Millisecond

// Surface is the subset of the platform backend the driver pushes frames to.
type Surface interface {
	SetWindowFrame(id platform.WindowID, bounds platform.Rect, flags platform.FrameFlags) error
	WaitForRefresh() error
	SetCompositorHint(id platform.WindowID, hint platform.CompositorHint) (platform.CompositorHint, error)
	Invalidate(id platform.WindowID) error
}

// Dock sizes the window from the work area instead of its captured bounds.
type Dock struct {
	WidthPercent  int
	HeightPercent int
}

// Config controls a single run.
type Config struct {
	Duration time.Duration
	Easing   easing.Easing
	Dock     *Dock
}

// DefaultConfig returns a 200ms cubic ease-out slide.
func DefaultConfig() Config {
	return Config{Duration: 200 * time.Millisecond, Easing: easing.Default}
}

// Driver runs slides against a Surface. A Driver is not safe for concurrent
// runs; callers serialize them.
type Driver struct {
	surface Surface
	logger  *slog.Logger
	now     func() time.Time
	sleep   func(time.Duration)
}

// Option customizes a Driver.
type Option func(*Driver)

// WithClock replaces the clock and sleep functions.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(d *Driver) {
		if now != nil {
			d.now = now
		}
		if sleep != nil {
			d.sleep = sleep
		}
	}
}

// WithLogger sets the logger for non-fatal failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDriver returns a driver using the wall clock.
func NewDriver(surface Surface, opts ...Option) *Driver {
	d := &Driver{
		surface: surface,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run slides window id in (slideIn) or out along dir. bounds is the window's
// visible geometry and workArea the monitor's usable area. If ctx is
// cancelled mid-run the final frame is pushed at once, so the window never
// rests part way.
func (d *Driver) Run(
	ctx context.Context,
	id platform.WindowID,
	cfg Config,
	dir geometry.Direction,
	bounds platform.Rect,
	workArea platform.Rect,
	slideIn bool,
) error {
	if workArea.Empty() {
		return ErrNoMonitor
	}
	if id == 0 {
		return fmt.Errorf("%w: no window", ErrAnimate)
	}
	if cfg.Dock == nil && bounds.Empty() {
		return fmt.Errorf("%w: empty bounds %s", ErrAnimate, bounds)
	}

	frameAt := d.framer(cfg, dir, bounds, workArea, slideIn)
	log := d.logger.With("window", fmt.Sprintf("0x%x", uint32(id)), "direction", dir.String(), "slide_in", slideIn)

	prevHint, hintErr := d.surface.SetCompositorHint(id, platform.CompositorKeep)
	if hintErr != nil {
		log.Debug("compositor hint not set", "error", hintErr)
	}
	if err := d.surface.Invalidate(id); err != nil {
		log.Debug("invalidate failed", "error", err)
	}
	defer func() {
		if err := d.surface.Invalidate(id); err != nil {
			log.Debug("invalidate failed", "error", err)
		}
		if hintErr == nil {
			if _, err := d.surface.SetCompositorHint(id, prevHint); err != nil {
				log.Debug("compositor hint not restored", "error", err)
			}
		}
	}()

	if slideIn {
		d.waitFrame(log)
		show := platform.FrameShow | platform.FrameTopmost | platform.FrameNoActivate
		if err := d.surface.SetWindowFrame(id, frameAt(0), show); err != nil {
			return fmt.Errorf("%w: %v", ErrAnimate, err)
		}
	}

	start := d.now()
	for {
		raw := 1.0
		if ctx.Err() == nil {
			d.waitFrame(log)
			if cfg.Duration > 0 {
				raw = min(float64(d.now().Sub(start))/float64(cfg.Duration), 1)
			}
		}

		terminal := raw >= 1
		err := d.surface.SetWindowFrame(id, frameAt(cfg.Easing.Apply(raw)), frameFlags(slideIn, terminal))
		if terminal {
			if err != nil {
				return fmt.Errorf("%w: %v", ErrAnimate, err)
			}
			break
		}
		if err != nil {
			log.Debug("frame dropped", "progress", raw, "error", err)
		}
	}

	if !slideIn {
		d.waitFrame(log)
	}
	return nil
}

func (d *Driver) framer(cfg Config, dir geometry.Direction, bounds, workArea platform.Rect, slideIn bool) func(float64) platform.Rect {
	if cfg.Dock != nil {
		size := geometry.DockedBounds(dir, workArea, cfg.Dock.WidthPercent, cfg.Dock.HeightPercent)
		return func(t float64) platform.Rect {
			p := geometry.CalcPosition(dir, workArea, size.Width, size.Height, t, slideIn)
			return size.WithPosition(p)
		}
	}
	return func(t float64) platform.Rect {
		return bounds.WithPosition(geometry.CalcPositionFrom(dir, workArea, bounds, t, slideIn))
	}
}

func (d *Driver) waitFrame(log *slog.Logger) {
	if err := d.surface.WaitForRefresh(); err != nil {
		log.Debug("refresh wait failed", "error", err)
		d.sleep(fallbackFrame)
	}
}

func frameFlags(slideIn, terminal bool) platform.FrameFlags {
	switch {
	case slideIn && terminal:
		return platform.FrameTopmost
	case slideIn:
		return platform.FrameNoActivate | platform.FrameTopmost
	case terminal:
		return platform.FrameNoActivate | platform.FrameHide
	default:
		return platform.FrameNoActivate
	}
}
