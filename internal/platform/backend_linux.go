//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/termdrop/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display, or to
// $DISPLAY when display is empty.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnectionDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.StopEventLoop()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// WatchActiveWindow calls fn on the event loop goroutine whenever the active
// window changes.
func (b *LinuxBackend) WatchActiveWindow(fn func(WindowID)) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WatchActiveWindow(func(win xproto.Window) {
		fn(WindowID(win))
	})
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		d := displayFromMonitor(m)
		if wa, err := conn.WorkAreaAt(m.X+m.Width/2, m.Y+m.Height/2); err == nil {
			d.Usable = rectFromMonitor(*wa)
		}
		displays = append(displays, d)
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// ActiveDisplay returns the currently active display.
func (b *LinuxBackend) ActiveDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}

	active, err := conn.GetActiveMonitor()
	if err != nil {
		return Display{}, err
	}

	d := displayFromMonitor(*active)
	return d, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// ListWindows lists the normal top-level windows known to the window manager.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientList()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		if !conn.IsNormalWindow(windowID) {
			continue
		}

		x, y, w, h, err := conn.WindowGeometry(windowID)
		if err != nil {
			continue
		}

		windows = append(windows, Window{
			ID:     WindowID(windowID),
			PID:    conn.WindowPID(windowID),
			AppID:  conn.WindowClass(windowID),
			Title:  conn.WindowTitle(windowID),
			Bounds: Rect{X: x, Y: y, Width: w, Height: h},
			Mapped: conn.IsMapped(windowID) && !conn.IsHidden(windowID),
		})
	}

	return windows, nil
}

// IsWindow reports whether the window still exists.
func (b *LinuxBackend) IsWindow(windowID WindowID) bool {
	conn, err := b.connection()
	if err != nil {
		return false
	}
	return conn.IsWindow(xproto.Window(windowID))
}

// WindowTitle returns the window title or "" when unknown.
func (b *LinuxBackend) WindowTitle(windowID WindowID) string {
	conn, err := b.connection()
	if err != nil {
		return ""
	}
	return conn.WindowTitle(xproto.Window(windowID))
}

// WindowRect returns the window's current geometry in root coordinates.
func (b *LinuxBackend) WindowRect(windowID WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}

	x, y, w, h, err := conn.WindowGeometry(xproto.Window(windowID))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

// CursorPosition returns the pointer position in root coordinates.
func (b *LinuxBackend) CursorPosition() (Point, error) {
	conn, err := b.connection()
	if err != nil {
		return Point{}, err
	}

	x, y, err := conn.PointerPosition()
	if err != nil {
		return Point{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return Point{X: x, Y: y}, nil
}

// WorkAreaForWindow returns the work area of the monitor holding the window.
func (b *LinuxBackend) WorkAreaForWindow(windowID WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}

	mon, err := conn.WorkAreaForWindow(xproto.Window(windowID))
	if err != nil {
		return Rect{}, err
	}
	return rectFromMonitor(*mon), nil
}

// WorkAreaAt returns the work area of the monitor under p.
func (b *LinuxBackend) WorkAreaAt(p Point) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}

	mon, err := conn.WorkAreaAt(p.X, p.Y)
	if err != nil {
		return Rect{}, err
	}
	return rectFromMonitor(*mon), nil
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	)
}

// SetWindowFrame moves the window and applies flags. For a hide the move
// and the iconify are both queued unchecked, so the server receives them in
// one batch.
func (b *LinuxBackend) SetWindowFrame(windowID WindowID, bounds Rect, flags FrameFlags) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	win := xproto.Window(windowID)

	if err := conn.MoveResizeFrame(win, bounds.X, bounds.Y, bounds.Width, bounds.Height); err != nil {
		return err
	}
	if flags.Has(FrameShow) {
		conn.MapWindow(win)
		// A show without Topmost returns the window to the normal layer.
		if err := conn.SetAbove(win, flags.Has(FrameTopmost)); err != nil {
			return fmt.Errorf("failed to set window layer: %w", err)
		}
	} else if flags.Has(FrameTopmost) && !flags.Has(FrameNoActivate) {
		if err := conn.SetAbove(win, true); err != nil {
			return fmt.Errorf("failed to raise window: %w", err)
		}
	}
	if flags.Has(FrameHide) {
		if err := conn.IconifyWindow(win); err != nil {
			return fmt.Errorf("failed to hide window: %w", err)
		}
		return nil
	}
	if !flags.Has(FrameNoActivate) {
		if err := conn.FocusWindow(win); err != nil {
			return fmt.Errorf("failed to activate window: %w", err)
		}
	}
	return nil
}

// WaitForRefresh blocks until the next display frame.
func (b *LinuxBackend) WaitForRefresh() error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WaitForRefresh()
}

// ResetRefresh forgets the cached refresh interval.
func (b *LinuxBackend) ResetRefresh() {
	if b != nil && b.conn != nil {
		b.conn.ResetRefresh()
	}
}

// SetCompositorHint writes the compositor bypass property and returns the
// previous value.
func (b *LinuxBackend) SetCompositorHint(windowID WindowID, hint CompositorHint) (CompositorHint, error) {
	conn, err := b.connection()
	if err != nil {
		return CompositorUnset, err
	}
	win := xproto.Window(windowID)

	prev := CompositorUnset
	if val, ok := conn.BypassCompositor(win); ok {
		prev = CompositorHint(val)
	}

	if hint == CompositorUnset {
		if prev == CompositorUnset {
			return prev, nil
		}
		return prev, conn.DeleteBypassCompositor(win)
	}
	return prev, conn.SetBypassCompositor(win, uint(hint))
}

// Invalidate forces the window to repaint.
func (b *LinuxBackend) Invalidate(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Invalidate(xproto.Window(windowID))
}

// Focus maps, raises and activates the window.
func (b *LinuxBackend) Focus(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(xproto.Window(windowID))
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	bounds := rectFromMonitor(m)
	return Display{
		ID:        m.ID,
		Name:      m.Name,
		Bounds:    bounds,
		Usable:    bounds,
		RefreshHz: m.RefreshHz,
	}
}

func rectFromMonitor(m x11.Monitor) Rect {
	return Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}
