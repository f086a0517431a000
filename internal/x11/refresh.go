package x11

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/xgb/xproto"
)

var errNoRefreshRate = errors.New("display refresh rate unknown")

// WaitForRefresh blocks until the next frame boundary of the fastest
// connected output. Pending requests are flushed with a server round trip
// first so the previous frame's configure has been processed.
//
// Core X11 exposes no vblank event, so the boundary is derived from the
// RandR mode timings and a fixed epoch.
func (c *Connection) WaitForRefresh() error {
	interval, epoch, err := c.frameTiming()
	if err != nil {
		return err
	}

	if _, err := xproto.GetInputFocus(c.XUtil.Conn()).Reply(); err != nil {
		return fmt.Errorf("x server round trip failed: %w", err)
	}

	time.Sleep(nextFrameDelay(time.Now(), epoch, interval))
	return nil
}

func (c *Connection) frameTiming() (time.Duration, time.Time, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.refreshInterval > 0 {
		return c.refreshInterval, c.refreshEpoch, nil
	}

	monitors, err := c.GetMonitors()
	if err != nil {
		return 0, time.Time{}, err
	}
	best := 0.0
	for _, m := range monitors {
		best = max(best, m.RefreshHz)
	}
	if best <= 0 {
		return 0, time.Time{}, errNoRefreshRate
	}

	c.refreshInterval = time.Duration(float64(time.Second) / best)
	c.refreshEpoch = time.Now()
	return c.refreshInterval, c.refreshEpoch, nil
}

// ResetRefresh drops the cached frame interval, e.g. after an output change.
func (c *Connection) ResetRefresh() {
	c.refreshMu.Lock()
	c.refreshInterval = 0
	c.refreshMu.Unlock()
}

// nextFrameDelay returns the time from now until the next multiple of
// interval after epoch. A call landing exactly on a boundary waits a full
// frame.
func nextFrameDelay(now, epoch time.Time, interval time.Duration) time.Duration {
	if interval <= 0 {
		return 0
	}
	elapsed := now.Sub(epoch)
	if elapsed < 0 {
		return -elapsed % interval
	}
	return interval - elapsed%interval
}
