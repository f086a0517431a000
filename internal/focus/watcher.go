// Package focus turns window manager focus changes into messages for the
// daemon loop.
package focus

import (
	"fmt"

	"github.com/1broseidon/termdrop/internal/platform"
)

// Source reports active-window changes by calling fn.
type Source interface {
	WatchActiveWindow(fn func(platform.WindowID)) error
}

// Watcher forwards focus changes on a single-consumer channel. Sends never
// block the event loop: a pending notification absorbs later ones, and the
// consumer re-reads the active window when it handles it.
type Watcher struct {
	events chan platform.WindowID
}

// NewWatcher returns an idle watcher.
func NewWatcher() *Watcher {
	return &Watcher{events: make(chan platform.WindowID, 1)}
}

// Start subscribes to src.
func (w *Watcher) Start(src Source) error {
	if err := src.WatchActiveWindow(w.notify); err != nil {
		return fmt.Errorf("failed to watch focus changes: %w", err)
	}
	return nil
}

// Events delivers the newly active window.
func (w *Watcher) Events() <-chan platform.WindowID {
	return w.events
}

func (w *Watcher) notify(id platform.WindowID) {
	select {
	case w.events <- id:
	default:
	}
}

// Lost reports whether focus moved away from the tracked window. Nothing is
// lost while no window is tracked.
func Lost(tracked, active platform.WindowID) bool {
	return tracked != 0 && active != tracked
}
