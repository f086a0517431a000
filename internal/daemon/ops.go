package daemon

import (
	"context"
	"fmt"
	"slices"

	"github.com/1broseidon/termdrop/internal/animation"
	"github.com/1broseidon/termdrop/internal/config"
	"github.com/1broseidon/termdrop/internal/edge"
	"github.com/1broseidon/termdrop/internal/focus"
	"github.com/1broseidon/termdrop/internal/geometry"
	"github.com/1broseidon/termdrop/internal/ipc"
	"github.com/1broseidon/termdrop/internal/platform"
	"github.com/1broseidon/termdrop/internal/tracking"
)

// Everything in this file runs on the loop goroutine.

func (c *Controller) requireTracked() error {
	id := c.session.Window()
	if id == 0 {
		return tracking.ErrNotTracking
	}
	if !c.backend.IsWindow(id) {
		c.dropTracked(id, "window no longer exists")
		return fmt.Errorf("tracked window 0x%x no longer exists", uint32(id))
	}
	return nil
}

func (c *Controller) toggle(ctx context.Context) error {
	if err := c.requireTracked(); err != nil {
		return err
	}
	// An explicit toggle overrides whatever the edge trigger was waiting for.
	c.resetEdge()
	if c.session.Visible() {
		return c.slideOut(ctx, true)
	}
	return c.slideIn(ctx)
}

func (c *Controller) slideIn(ctx context.Context) error {
	id := c.session.Window()

	bounds, ok := c.session.LoadBounds()
	if !ok {
		var err error
		if bounds, err = c.session.SaveBounds(c.backend, id); err != nil {
			return err
		}
	}

	workArea, err := c.refreshWorkArea(bounds)
	if err != nil {
		return err
	}
	dir := c.directionFor(bounds, workArea)

	if prev, err := c.backend.ActiveWindow(); err == nil && prev != id {
		c.session.SetPrevious(prev)
	}

	anim := c.animationConfig()
	if err := c.driver.Run(ctx, id, anim, dir, bounds, workArea, true); err != nil {
		return fmt.Errorf("slide in: %w", err)
	}
	if anim.Dock != nil {
		// The window now has the docked size, and the edge trigger tests the
		// cursor against the stored bounds.
		c.session.SetBounds(geometry.DockedBounds(dir, workArea, anim.Dock.WidthPercent, anim.Dock.HeightPercent))
	}
	c.session.SetVisible(true)
	c.logger.Debug("window shown", "window", hexID(id), "direction", dir.String())
	return nil
}

// slideOut captures the live geometry, optionally hands focus back to the
// window that had it before the slide-in, and slides the window out.
func (c *Controller) slideOut(ctx context.Context, refocus bool) error {
	id := c.session.Window()

	bounds, err := c.session.SaveBounds(c.backend, id)
	if err != nil {
		c.logger.Debug("using last known bounds", "window", hexID(id), "error", err)
		var ok bool
		if bounds, ok = c.session.LoadBounds(); !ok {
			return err
		}
	}

	workArea, err := c.workAreaForWindow(id)
	if err != nil {
		return err
	}
	dir := c.directionFor(bounds, workArea)

	prev := c.session.TakePrevious()
	if refocus && prev != 0 && c.backend.IsWindow(prev) {
		if err := c.backend.Focus(prev); err != nil {
			c.logger.Debug("refocus failed", "window", hexID(prev), "error", err)
		}
	}

	if err := c.driver.Run(ctx, id, c.animationConfig(), dir, bounds, workArea, false); err != nil {
		return fmt.Errorf("slide out: %w", err)
	}
	c.session.SetVisible(false)
	c.logger.Debug("window hidden", "window", hexID(id), "direction", dir.String())
	return nil
}

func (c *Controller) track(id platform.WindowID) (ipc.TrackData, error) {
	if id == 0 {
		active, err := c.backend.ActiveWindow()
		if err != nil {
			return ipc.TrackData{}, fmt.Errorf("failed to get focused window: %w", err)
		}
		if active == 0 {
			return ipc.TrackData{}, fmt.Errorf("no window has focus")
		}
		id = active
	}
	if !c.backend.IsWindow(id) {
		return ipc.TrackData{}, fmt.Errorf("window 0x%x does not exist", uint32(id))
	}

	if current := c.session.Window(); current != 0 && current != id {
		if err := c.untrack(); err != nil {
			c.logger.Warn("failed to release previous window", "window", hexID(current), "error", err)
		}
	}

	if c.session.Window() != id {
		original, err := c.backend.WindowRect(id)
		if err != nil {
			return ipc.TrackData{}, fmt.Errorf("failed to read window geometry: %w", err)
		}
		if original.Empty() {
			return ipc.TrackData{}, fmt.Errorf("window 0x%x has empty geometry", uint32(id))
		}
		// Pinning the current geometry drops any maximized or fullscreen
		// state, which would otherwise fight the slide.
		if err := c.backend.MoveResize(id, original); err != nil {
			c.logger.Warn("failed to normalize window state", "window", hexID(id), "error", err)
		}
		c.session.Track(id, original)
		c.logger.Info("tracking window", "window", hexID(id), "title", c.backend.WindowTitle(id), "bounds", original.String())
	}
	c.resetEdge()

	bounds, _ := c.session.LoadBounds()
	workArea, err := c.workAreaForWindow(id)
	if err != nil {
		return ipc.TrackData{}, err
	}
	dir := c.directionFor(bounds, workArea)

	return ipc.TrackData{
		WindowID:  uint32(id),
		Title:     c.backend.WindowTitle(id),
		Direction: dir.String(),
		Bounds:    rectData(bounds),
	}, nil
}

func (c *Controller) trackFocused() error {
	active, err := c.backend.ActiveWindow()
	if err != nil {
		return fmt.Errorf("failed to get focused window: %w", err)
	}
	if tracked := c.session.Window(); tracked != 0 && tracked == active {
		return c.untrack()
	}
	_, err = c.track(active)
	return err
}

func (c *Controller) untrack() error {
	id, original, ok := c.session.Untrack()
	c.resetEdge()
	if id == 0 {
		return tracking.ErrNotTracking
	}
	c.logger.Info("released window", "window", hexID(id))
	if !ok || !c.backend.IsWindow(id) {
		return nil
	}
	return c.restore(id, original)
}

// restore puts the window back where it was when tracked, mapped, in the
// normal stacking layer and focused.
func (c *Controller) restore(id platform.WindowID, original platform.Rect) error {
	if err := c.backend.SetWindowFrame(id, original, platform.FrameShow); err != nil {
		return fmt.Errorf("failed to restore window 0x%x: %w", uint32(id), err)
	}
	return nil
}

// dropTracked forgets a window that went away without restoring it.
func (c *Controller) dropTracked(id platform.WindowID, reason string) {
	if c.session.Window() != id {
		return
	}
	c.session.Untrack()
	c.resetEdge()
	c.logger.Info("stopped tracking window", "window", hexID(id), "reason", reason)
}

func (c *Controller) setEdge(enabled *bool) bool {
	next := !c.edgeEnabled.Load()
	if enabled != nil {
		next = *enabled
	}
	c.edgeEnabled.Store(next)
	c.cfg.EdgeTrigger.Enabled = next
	c.resetEdge()

	if c.cfgPath != "" {
		if err := config.SetValue(c.cfgPath, "edge_trigger.enabled", next); err != nil {
			c.logger.Warn("failed to persist edge trigger setting", "error", err)
		}
	}
	c.logger.Info("edge trigger updated", "enabled", next)
	return next
}

func (c *Controller) reload() error {
	if c.cfgPath == "" {
		return fmt.Errorf("no config file to reload")
	}
	res, err := config.LoadFromPath(c.cfgPath)
	if err != nil {
		return err
	}

	old := c.cfg
	c.cfg = res.Config
	c.edgeEnabled.Store(c.cfg.EdgeTrigger.Enabled)
	c.resetEdge()
	c.tickChanged = c.cfg.TickIntervalMs != old.TickIntervalMs

	// The dock settings may have moved the slide edge.
	c.workArea = platform.Rect{}
	if bounds, ok := c.session.LoadBounds(); ok && c.session.Tracking() {
		if workArea, err := c.refreshWorkArea(bounds); err == nil {
			c.directionFor(bounds, workArea)
		}
	}

	if c.onReload != nil {
		c.onReload(c.cfg)
	}
	c.logger.Info("config reloaded", "files", res.Files)
	return nil
}

// tick advances the edge trigger by one poll.
func (c *Controller) tick(ctx context.Context) {
	id := c.session.Window()
	if id == 0 || !c.edgeEnabled.Load() {
		if c.edgeState.Phase != edge.Idle {
			c.resetEdge()
		}
		return
	}

	cursor, err := c.backend.CursorPosition()
	if err != nil {
		c.logger.Debug("cursor query failed", "error", err)
		return
	}

	visible := c.session.Visible()
	var inside *platform.Rect
	if visible {
		if bounds, ok := c.session.LoadBounds(); ok {
			inside = &bounds
		}
	}

	workArea := c.workArea
	if workArea.Empty() {
		bounds, _ := c.session.LoadBounds()
		if workArea, err = c.refreshWorkArea(bounds); err != nil {
			return
		}
	}

	dir := geometry.Direction(c.direction.Load())
	action := edge.CheckAndTransition(&c.edgeState, c.cfg.EdgeConfig(), dir, visible, cursor, workArea, inside, c.now())
	c.edgePhase.Store(int32(c.edgeState.Phase))

	switch action {
	case edge.Show:
		if err := c.slideIn(ctx); err != nil {
			c.logger.Warn("edge show failed", "error", err)
			c.resetEdge()
		}
	case edge.Hide:
		if err := c.slideOut(ctx, true); err != nil {
			c.logger.Warn("edge hide failed", "error", err)
			c.resetEdge()
		}
	}
}

func (c *Controller) handleFocusChange(ctx context.Context) {
	id := c.session.Window()
	if id == 0 || !c.session.Visible() || !c.cfg.HideOnFocusLoss {
		return
	}

	active, err := c.backend.ActiveWindow()
	if err != nil || !focus.Lost(id, active) {
		return
	}

	c.logger.Debug("focus lost", "window", hexID(id), "active", hexID(active))
	c.resetEdge()
	// Focus already went where the user wanted it.
	c.session.TakePrevious()
	if err := c.slideOut(ctx, false); err != nil {
		c.logger.Warn("focus-loss hide failed", "error", err)
	}
}

func (c *Controller) resetEdge() {
	edge.Reset(&c.edgeState)
	c.edgePhase.Store(int32(c.edgeState.Phase))
}

// refreshWorkArea looks up the work area of the monitor holding bounds and
// caches it for the edge trigger.
func (c *Controller) refreshWorkArea(bounds platform.Rect) (platform.Rect, error) {
	workArea, err := c.backend.WorkAreaAt(bounds.Center())
	if err != nil {
		return platform.Rect{}, fmt.Errorf("%w: %v", animation.ErrNoMonitor, err)
	}
	if workArea.Empty() {
		return platform.Rect{}, animation.ErrNoMonitor
	}
	c.workArea = workArea
	return workArea, nil
}

// workAreaForWindow is refreshWorkArea for a window that is on screen, so
// its own position picks the monitor.
func (c *Controller) workAreaForWindow(id platform.WindowID) (platform.Rect, error) {
	workArea, err := c.backend.WorkAreaForWindow(id)
	if err != nil {
		return platform.Rect{}, fmt.Errorf("%w: %v", animation.ErrNoMonitor, err)
	}
	if workArea.Empty() {
		return platform.Rect{}, animation.ErrNoMonitor
	}
	c.workArea = workArea
	return workArea, nil
}

// checkDisplays compares the monitor layout with the last one seen. A change
// invalidates the cached work area and frame timing.
func (c *Controller) checkDisplays() {
	displays, err := c.backend.Displays()
	if err != nil {
		c.logger.Debug("display query failed", "error", err)
		return
	}
	if slices.Equal(displays, c.displays) {
		return
	}
	if c.displays != nil {
		c.logger.Info("display layout changed", "displays", len(displays))
	}
	c.displays = displays
	c.workArea = platform.Rect{}
	c.backend.ResetRefresh()
}

func (c *Controller) directionFor(bounds, workArea platform.Rect) geometry.Direction {
	dir, fixed := c.cfg.FixedDirection()
	if !fixed {
		dir = geometry.CalcDirection(bounds, workArea)
	}
	c.direction.Store(int32(dir))
	return dir
}

func (c *Controller) animationConfig() animation.Config {
	cfg := animation.Config{
		Duration: c.cfg.AnimationDuration(),
		Easing:   c.cfg.EasingCurve(),
	}
	if c.cfg.Dock.Enabled {
		cfg.Dock = &animation.Dock{
			WidthPercent:  c.cfg.Dock.WidthPercent,
			HeightPercent: c.cfg.Dock.HeightPercent,
		}
	}
	return cfg
}

func hexID(id platform.WindowID) string {
	return fmt.Sprintf("0x%x", uint32(id))
}
