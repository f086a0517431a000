// Package tracking holds the state of the single window under drop-down
// control: which window it is, whether it is on screen, and the geometry
// captured for it.
package tracking

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/termdrop/internal/platform"
)

// ErrNotTracking is returned by operations that need a tracked window.
var ErrNotTracking = errors.New("no window is tracked")

// RectSource reports the live geometry of a window.
type RectSource interface {
	WindowRect(id platform.WindowID) (platform.Rect, error)
}

// Session is the explicit replacement for process-wide globals. The tracked
// id and visibility flag may be read from any goroutine; geometry slots are
// mutex guarded.
type Session struct {
	tracked atomic.Uint32
	visible atomic.Bool

	mu          sync.Mutex
	bounds      platform.Rect
	hasBounds   bool
	original    platform.Rect
	hasOriginal bool
	previous    platform.WindowID
}

// Status is a point-in-time copy of the session.
type Status struct {
	Window    platform.WindowID
	Visible   bool
	Bounds    platform.Rect
	HasBounds bool
	Original  platform.Rect
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// Track starts controlling id. original is the geometry restored by Untrack,
// and it also seeds the bounds slot. The window is assumed visible.
func (s *Session) Track(id platform.WindowID, original platform.Rect) {
	s.mu.Lock()
	s.original = original
	s.hasOriginal = true
	s.bounds = original
	s.hasBounds = !original.Empty()
	s.previous = 0
	s.mu.Unlock()

	s.tracked.Store(uint32(id))
	s.visible.Store(true)
}

// Untrack stops controlling the current window and returns it with its
// original geometry. ok is false when nothing was tracked.
func (s *Session) Untrack() (id platform.WindowID, original platform.Rect, ok bool) {
	id = platform.WindowID(s.tracked.Swap(0))
	s.visible.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	original = s.original
	hadOriginal := s.hasOriginal
	s.bounds = platform.Rect{}
	s.hasBounds = false
	s.original = platform.Rect{}
	s.hasOriginal = false
	s.previous = 0

	if id == 0 {
		return 0, platform.Rect{}, false
	}
	return id, original, hadOriginal
}

// Window returns the tracked window, or 0.
func (s *Session) Window() platform.WindowID {
	return platform.WindowID(s.tracked.Load())
}

// Tracking reports whether a window is tracked.
func (s *Session) Tracking() bool {
	return s.tracked.Load() != 0
}

// Visible reports whether the tracked window is slid in.
func (s *Session) Visible() bool {
	return s.visible.Load()
}

// SetVisible records the outcome of a slide.
func (s *Session) SetVisible(v bool) {
	s.visible.Store(v)
}

// SaveBounds queries the live geometry of id and overwrites the slot.
func (s *Session) SaveBounds(src RectSource, id platform.WindowID) (platform.Rect, error) {
	r, err := src.WindowRect(id)
	if err != nil {
		return platform.Rect{}, fmt.Errorf("failed to capture window bounds: %w", err)
	}
	if r.Empty() {
		return platform.Rect{}, fmt.Errorf("failed to capture window bounds: window 0x%x has empty geometry %s", uint32(id), r)
	}

	s.mu.Lock()
	s.bounds = r
	s.hasBounds = true
	s.mu.Unlock()
	return r, nil
}

// LoadBounds returns the last captured bounds.
func (s *Session) LoadBounds() (platform.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds, s.hasBounds
}

// SetBounds overwrites the slot with geometry the caller just pushed to the
// window, such as a docked rectangle.
func (s *Session) SetBounds(r platform.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds = r
	s.hasBounds = !r.Empty()
}

// SetPrevious remembers the window that had focus before a slide-in.
func (s *Session) SetPrevious(id platform.WindowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previous = id
}

// TakePrevious returns and clears the remembered focus window.
func (s *Session) TakePrevious() platform.WindowID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.previous
	s.previous = 0
	return id
}

// Snapshot returns a consistent copy for status reporting.
func (s *Session) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Window:    s.Window(),
		Visible:   s.Visible(),
		Bounds:    s.bounds,
		HasBounds: s.hasBounds,
		Original:  s.original,
	}
}
