// Package edge decides when cursor contact with a screen edge should show or
// hide the drop-down window.
//
// CheckAndTransition is a pure function of its inputs plus the State it is
// handed; the caller owns the State and supplies the clock.
package edge

import (
	"time"

	"github.com/1broseidon/termdrop/internal/geometry"
)

// Config holds the edge-trigger tuning values.
type Config struct {
	ThresholdPx int
	ShowDelay   time.Duration
	HideDelay   time.Duration
}

// DefaultConfig returns {1px, 100ms, 300ms}.
func DefaultConfig() Config {
	return Config{
		ThresholdPx: 1,
		ShowDelay:   100 * time.Millisecond,
		HideDelay:   300 * time.Millisecond,
	}
}

// Phase is the state of the edge-trigger automaton.
type Phase int

const (
	Idle Phase = iota
	PendingShow
	Active
	PendingHide
)

func (p Phase) String() string {
	switch p {
	case PendingShow:
		return "pending_show"
	case Active:
		return "active"
	case PendingHide:
		return "pending_hide"
	default:
		return "idle"
	}
}

// State is the automaton state. Since is only meaningful for the pending
// phases and records when the debounce timer started.
type State struct {
	Phase Phase
	Since time.Time
}

// Action is what the caller should do after a transition.
type Action int

const (
	None Action = iota
	Show
	Hide
)

func (a Action) String() string {
	switch a {
	case Show:
		return "show"
	case Hide:
		return "hide"
	default:
		return "none"
	}
}

// DetectEdge reports whether the cursor is within threshold pixels of the
// given work-area edge. The threshold is inclusive.
func DetectEdge(cursor geometry.Point, workArea geometry.Rect, threshold int, dir geometry.Direction) bool {
	switch dir {
	case geometry.Right:
		return cursor.X >= workArea.Right()-threshold-1
	case geometry.Top:
		return cursor.Y <= workArea.Y+threshold
	case geometry.Bottom:
		return cursor.Y >= workArea.Bottom()-threshold-1
	default:
		return cursor.X <= workArea.X+threshold
	}
}

// CursorInWindow reports whether the cursor is inside bounds. A nil bounds
// counts as outside.
func CursorInWindow(cursor geometry.Point, bounds *geometry.Rect) bool {
	if bounds == nil {
		return false
	}
	return bounds.Contains(cursor)
}

// CheckAndTransition advances state by one tick and returns the action the
// caller should perform.
func CheckAndTransition(
	state *State,
	cfg Config,
	dir geometry.Direction,
	visible bool,
	cursor geometry.Point,
	workArea geometry.Rect,
	bounds *geometry.Rect,
	now time.Time,
) Action {
	atEdge := DetectEdge(cursor, workArea, cfg.ThresholdPx, dir)
	inWindow := CursorInWindow(cursor, bounds)

	switch state.Phase {
	case Idle:
		if !visible && atEdge {
			*state = State{Phase: PendingShow, Since: now}
		}
		return None

	case PendingShow:
		if !atEdge {
			*state = State{Phase: Idle}
			return None
		}
		if now.Sub(state.Since) >= cfg.ShowDelay {
			*state = State{Phase: Active}
			return Show
		}
		return None

	case Active:
		if visible && !inWindow && !atEdge {
			*state = State{Phase: PendingHide, Since: now}
		}
		return None

	case PendingHide:
		if inWindow || atEdge {
			*state = State{Phase: Active}
			return None
		}
		if now.Sub(state.Since) >= cfg.HideDelay {
			*state = State{Phase: Idle}
			return Hide
		}
		return None
	}

	*state = State{Phase: Idle}
	return None
}

// Reset returns the automaton to Idle.
func Reset(state *State) {
	*state = State{Phase: Idle}
}
