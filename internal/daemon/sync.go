package daemon

import "context"

// restoreOnExit hands the tracked window back in its original geometry so
// a stopped daemon never leaves it off-screen.
func (c *Controller) restoreOnExit() {
	id := c.session.Window()
	if id == 0 {
		return
	}

	c.logger.Info("restoring tracked window before exit", "window", hexID(id))
	if err := c.untrack(); err != nil {
		c.logger.Warn("failed to restore window", "window", hexID(id), "error", err)
	}
}

// HandleWindowClosed forgets id when it is still the tracked window. It is
// safe to call from any goroutine.
func (c *Controller) HandleWindowClosed(id uint32) {
	c.post("window_closed", func(ctx context.Context) error {
		tracked := c.session.Window()
		if tracked == 0 || uint32(tracked) != id {
			return nil
		}
		if c.backend.IsWindow(tracked) {
			return nil
		}
		c.dropTracked(tracked, "window closed")
		return nil
	})
}

// RefreshWorkArea re-reads the monitor list and the work area used by the
// edge trigger, picking up monitor, mode or panel changes. It is safe to call
// from any goroutine.
func (c *Controller) RefreshWorkArea() {
	c.post("refresh_work_area", func(ctx context.Context) error {
		c.checkDisplays()
		if c.session.Window() == 0 {
			return nil
		}
		bounds, ok := c.session.LoadBounds()
		if !ok {
			return nil
		}
		_, err := c.refreshWorkArea(bounds)
		return err
	})
}
