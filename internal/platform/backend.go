package platform

import (
	"strings"

	"github.com/1broseidon/termdrop/internal/geometry"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect = geometry.Rect

// Point is a position in screen coordinates.
type Point = geometry.Point

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect

	// RefreshHz is 0 when the mode timings are unknown.
	RefreshHz float64
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
	Mapped bool
}

// FrameFlags select what a SetWindowFrame call does besides moving the window.
type FrameFlags uint8

const (
	// FrameShow maps the window in the same request batch as the move.
	FrameShow FrameFlags = 1 << iota
	// FrameHide unmaps the window in the same request batch as the move.
	FrameHide
	// FrameNoActivate leaves keyboard focus where it is.
	FrameNoActivate
	// FrameTopmost keeps the window above normal windows.
	FrameTopmost
)

// Has reports whether every bit in want is set.
func (f FrameFlags) Has(want FrameFlags) bool {
	return f&want == want
}

func (f FrameFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(FrameShow) {
		parts = append(parts, "show")
	}
	if f.Has(FrameHide) {
		parts = append(parts, "hide")
	}
	if f.Has(FrameNoActivate) {
		parts = append(parts, "noactivate")
	}
	if f.Has(FrameTopmost) {
		parts = append(parts, "topmost")
	}
	return strings.Join(parts, "|")
}

// CompositorHint is the value of the window's compositor bypass property.
type CompositorHint int

const (
	// CompositorUnset means the property is absent.
	CompositorUnset CompositorHint = iota
	// CompositorBypass asks the compositor to unredirect the window.
	CompositorBypass
	// CompositorKeep asks the compositor to keep compositing the window,
	// so consecutive move+resize requests are presented double-buffered.
	CompositorKeep
)

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveDisplay() (Display, error)
	ActiveWindow() (WindowID, error)
	ListWindows() ([]Window, error)
	IsWindow(windowID WindowID) bool
	WindowTitle(windowID WindowID) string
	WindowRect(windowID WindowID) (Rect, error)
	CursorPosition() (Point, error)
	WorkAreaForWindow(windowID WindowID) (Rect, error)
	WorkAreaAt(p Point) (Rect, error)
	MoveResize(windowID WindowID, bounds Rect) error
	SetWindowFrame(windowID WindowID, bounds Rect, flags FrameFlags) error
	WaitForRefresh() error
	SetCompositorHint(windowID WindowID, hint CompositorHint) (CompositorHint, error)
	Invalidate(windowID WindowID) error
	Focus(windowID WindowID) error
	// ResetRefresh drops any cached frame timing so the next
	// WaitForRefresh re-reads the display modes.
	ResetRefresh()
}
