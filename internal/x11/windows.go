package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowGeometry returns the window's position in root coordinates and its
// size.
func (c *Connection) WindowGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry of window 0x%x: %w", uint32(windowID), err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates of window 0x%x: %w", uint32(windowID), err)
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// IsWindow reports whether the window still exists on the server.
func (c *Connection) IsWindow(windowID xproto.Window) bool {
	if windowID == 0 {
		return false
	}
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}

// IsMapped reports whether the window is currently viewable.
func (c *Connection) IsMapped(windowID xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	c.unmaximizeWindow(windowID)

	// EWMH first for better WM compatibility, plain configure as fallback.
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// MoveResizeFrame is MoveResizeWindow without the maximize check, for
// per-frame moves during an animation. The request is queued unchecked so a
// following map or iconify goes out in the same batch.
func (c *Connection) MoveResizeFrame(windowID xproto.Window, x, y, width, height int) error {
	ev, err := c.rootMessage(windowID, "_NET_MOVERESIZE_WINDOW", moveResizeData(x, y, width, height)...)
	if err != nil {
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
		return nil
	}
	xproto.SendEvent(c.XUtil.Conn(), false, c.Root, rootMessageMask, ev)
	return nil
}

// moveResizeData is the _NET_MOVERESIZE_WINDOW payload setting all four
// fields, with gravity taken from the window.
func moveResizeData(x, y, width, height int) []uint32 {
	flags := uint32(xproto.GravityBitForget) | sourceIndication<<12 | 1<<8 | 1<<9 | 1<<10 | 1<<11
	return []uint32{flags, uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height)}
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_FULLSCREEN":
			ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state)
		}
	}
}

// SetAbove adds or removes _NET_WM_STATE_ABOVE.
func (c *Connection) SetAbove(windowID xproto.Window, above bool) error {
	action := ewmh.StateRemove
	if above {
		action = ewmh.StateAdd
	}
	return ewmh.WmStateReq(c.XUtil, windowID, action, "_NET_WM_STATE_ABOVE")
}

// MapWindow makes the window visible. A window iconified by IconifyWindow is
// restored to the normal state.
func (c *Connection) MapWindow(windowID xproto.Window) {
	xproto.MapWindow(c.XUtil.Conn(), windowID)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}

func hasWindowType(c *Connection, windowID xproto.Window, want string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// IsHidden reports whether the window manager has the window iconified or
// otherwise hidden.
func (c *Connection) IsHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// ClientList returns the managed top-level windows in stacking order when
// the window manager publishes it.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	if clients, err := ewmh.ClientListStackingGet(c.XUtil); err == nil && len(clients) > 0 {
		return clients, nil
	}
	return ewmh.ClientListGet(c.XUtil)
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowClass returns the WM_CLASS class part.
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// WindowPID returns _NET_WM_PID, or 0 when unset.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}
