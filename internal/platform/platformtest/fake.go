// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"fmt"
	"sync"

	"github.com/1broseidon/termdrop/internal/platform"
)

// Frame is one recorded SetWindowFrame call.
type Frame struct {
	ID     platform.WindowID
	Bounds platform.Rect
	Flags  platform.FrameFlags
}

// Backend is a scriptable fake. Zero value is usable; exported fields may be
// set before handing it to the code under test.
type Backend struct {
	mu sync.Mutex

	Active   platform.WindowID
	Cursor   platform.Point
	WorkArea platform.Rect
	// Monitors replaces the single display derived from WorkArea.
	Monitors []platform.Display

	windows      map[platform.WindowID]*platform.Window
	hints        map[platform.WindowID]platform.CompositorHint
	frames       []Frame
	resized      []Frame
	focused      []platform.WindowID
	refreshes    int
	refreshReset int

	RefreshErr  error
	FrameErr    error
	WorkAreaErr error
	HintErr     error
}

var _ platform.Backend = (*Backend)(nil)

// New returns a fake with a single 1920x1080 work area at the origin.
func New() *Backend {
	return &Backend{
		WorkArea: platform.Rect{Width: 1920, Height: 1080},
		windows:  make(map[platform.WindowID]*platform.Window),
		hints:    make(map[platform.WindowID]platform.CompositorHint),
	}
}

// AddWindow registers a mapped window with the given bounds.
func (b *Backend) AddWindow(id platform.WindowID, title string, bounds platform.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.windows == nil {
		b.windows = make(map[platform.WindowID]*platform.Window)
	}
	b.windows[id] = &platform.Window{ID: id, Title: title, Bounds: bounds, Mapped: true}
}

// RemoveWindow makes the window disappear, as if its client exited.
func (b *Backend) RemoveWindow(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.windows, id)
}

// SetActive changes the focused window.
func (b *Backend) SetActive(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Active = id
}

// SetCursor moves the fake pointer.
func (b *Backend) SetCursor(p platform.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Cursor = p
}

// Frames returns a copy of every recorded frame.
func (b *Backend) Frames() []Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Frame(nil), b.frames...)
}

// ResetFrames drops the recorded frames.
func (b *Backend) ResetFrames() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = nil
}

// Resized returns the MoveResize calls, in call order.
func (b *Backend) Resized() []Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Frame(nil), b.resized...)
}

// RefreshResets reports how many times ResetRefresh was called.
func (b *Backend) RefreshResets() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshReset
}

// SetMonitors replaces the display list.
func (b *Backend) SetMonitors(displays []platform.Display) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Monitors = append([]platform.Display(nil), displays...)
}

// Focused returns the windows passed to Focus, in call order.
func (b *Backend) Focused() []platform.WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.WindowID(nil), b.focused...)
}

// Refreshes reports how many times WaitForRefresh was called.
func (b *Backend) Refreshes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshes
}

// Hint returns the current compositor hint of the window.
func (b *Backend) Hint(id platform.WindowID) platform.CompositorHint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hints[id]
}

// Window returns a copy of the window's current state.
func (b *Backend) Window(id platform.WindowID) (platform.Window, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return platform.Window{}, false
	}
	return *w, true
}

func (b *Backend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	monitors := append([]platform.Display(nil), b.Monitors...)
	b.mu.Unlock()
	if monitors != nil {
		return monitors, nil
	}

	d, err := b.ActiveDisplay()
	if err != nil {
		return nil, err
	}
	return []platform.Display{d}, nil
}

func (b *Backend) ActiveDisplay() (platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WorkAreaErr != nil {
		return platform.Display{}, b.WorkAreaErr
	}
	return platform.Display{Name: "fake", Bounds: b.WorkArea, Usable: b.WorkArea}, nil
}

func (b *Backend) ActiveWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Active, nil
}

func (b *Backend) ListWindows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platform.Window, 0, len(b.windows))
	for _, w := range b.windows {
		out = append(out, *w)
	}
	return out, nil
}

func (b *Backend) IsWindow(id platform.WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.windows[id]
	return ok
}

func (b *Backend) WindowTitle(id platform.WindowID) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[id]; ok {
		return w.Title
	}
	return ""
}

func (b *Backend) WindowRect(id platform.WindowID) (platform.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return platform.Rect{}, fmt.Errorf("window %d not found", id)
	}
	return w.Bounds, nil
}

func (b *Backend) CursorPosition() (platform.Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Cursor, nil
}

func (b *Backend) WorkAreaForWindow(platform.WindowID) (platform.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.WorkArea, b.WorkAreaErr
}

func (b *Backend) WorkAreaAt(platform.Point) (platform.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.WorkArea, b.WorkAreaErr
}

func (b *Backend) MoveResize(id platform.WindowID, bounds platform.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return fmt.Errorf("window %d not found", id)
	}
	b.resized = append(b.resized, Frame{ID: id, Bounds: bounds})
	w.Bounds = bounds
	return nil
}

func (b *Backend) SetWindowFrame(id platform.WindowID, bounds platform.Rect, flags platform.FrameFlags) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, Frame{ID: id, Bounds: bounds, Flags: flags})
	if b.FrameErr != nil {
		return b.FrameErr
	}
	w, ok := b.windows[id]
	if !ok {
		return fmt.Errorf("window %d not found", id)
	}
	w.Bounds = bounds
	if flags.Has(platform.FrameShow) {
		w.Mapped = true
	}
	if flags.Has(platform.FrameHide) {
		w.Mapped = false
		return nil
	}
	if !flags.Has(platform.FrameNoActivate) {
		b.Active = id
	}
	return nil
}

func (b *Backend) WaitForRefresh() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshes++
	return b.RefreshErr
}

func (b *Backend) SetCompositorHint(id platform.WindowID, hint platform.CompositorHint) (platform.CompositorHint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.HintErr != nil {
		return platform.CompositorUnset, b.HintErr
	}
	if b.hints == nil {
		b.hints = make(map[platform.WindowID]platform.CompositorHint)
	}
	prev := b.hints[id]
	b.hints[id] = hint
	return prev, nil
}

func (b *Backend) ResetRefresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshReset++
}

func (b *Backend) Invalidate(platform.WindowID) error {
	return nil
}

func (b *Backend) Focus(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focused = append(b.focused, id)
	if w, ok := b.windows[id]; ok {
		w.Mapped = true
	}
	b.Active = id
	return nil
}
