package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Direction is the screen edge a window slides from and back to.
type Direction int

// Declaration order doubles as the tie-break order for CalcDirection.
const (
	Left Direction = iota
	Right
	Top
	Bottom
)

var directionNames = [...]string{"left", "right", "top", "bottom"}

func (d Direction) String() string {
	if d >= Left && d <= Bottom {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection resolves a config name such as "top" to its Direction.
func ParseDirection(name string) (Direction, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range directionNames {
		if n == key {
			return Direction(i), nil
		}
	}
	return Left, fmt.Errorf("unknown direction %q (want one of: left, right, top, bottom)", name)
}

// Horizontal reports whether the slide moves along the x axis.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

// Lerp interpolates between a and b and rounds half away from zero.
func Lerp(a, b int, t float64) int {
	return int(math.Round(float64(a) + float64(b-a)*t))
}

// HiddenPosition returns the top-left corner that places a width x height
// window just outside the work area on the given edge.
func HiddenPosition(dir Direction, workArea Rect, width, height int) Point {
	switch dir {
	case Right:
		return Point{X: workArea.Right(), Y: workArea.Y}
	case Top:
		return Point{X: workArea.X, Y: workArea.Y - height}
	case Bottom:
		return Point{X: workArea.X, Y: workArea.Bottom()}
	default:
		return Point{X: workArea.X - width, Y: workArea.Y}
	}
}

// VisiblePosition returns the top-left corner that places the window flush
// against the given edge inside the work area.
func VisiblePosition(dir Direction, workArea Rect, width, height int) Point {
	switch dir {
	case Right:
		return Point{X: workArea.Right() - width, Y: workArea.Y}
	case Top:
		return Point{X: workArea.X, Y: workArea.Y}
	case Bottom:
		return Point{X: workArea.X, Y: workArea.Bottom() - height}
	default:
		return Point{X: workArea.X, Y: workArea.Y}
	}
}

// CalcPosition returns the window position at the given progress of a slide.
// progress 0 is fully hidden for a slide-in and fully visible for a
// slide-out, so one formula drives both directions of travel. The axis that
// does not move is pinned to the work area's top or left edge.
func CalcPosition(dir Direction, workArea Rect, width, height int, progress float64, slideIn bool) Point {
	hidden := HiddenPosition(dir, workArea, width, height)
	visible := VisiblePosition(dir, workArea, width, height)
	return interpolate(dir, hidden, visible, progress, slideIn)
}

// CalcPositionFrom is CalcPosition anchored on the window's own captured
// bounds: the visible endpoint is where the user left the window and the
// axis that does not move keeps the window's own coordinate.
func CalcPositionFrom(dir Direction, workArea, bounds Rect, progress float64, slideIn bool) Point {
	visible := Point{X: bounds.X, Y: bounds.Y}
	hidden := visible
	switch dir {
	case Right:
		hidden.X = workArea.Right()
	case Top:
		hidden.Y = workArea.Y - bounds.Height
	case Bottom:
		hidden.Y = workArea.Bottom()
	default:
		hidden.X = workArea.X - bounds.Width
	}
	return interpolate(dir, hidden, visible, progress, slideIn)
}

func interpolate(dir Direction, hidden, visible Point, progress float64, slideIn bool) Point {
	t := progress
	if !slideIn {
		t = 1 - progress
	}
	if dir.Horizontal() {
		return Point{X: Lerp(hidden.X, visible.X, t), Y: visible.Y}
	}
	return Point{X: visible.X, Y: Lerp(hidden.Y, visible.Y, t)}
}

// OverlapRatio returns the fraction of bounds covered by region. Zero-area
// bounds yield 0.
func OverlapRatio(bounds, region Rect) float64 {
	area := bounds.Area()
	if area == 0 {
		return 0
	}
	return float64(bounds.Intersect(region).Area()) / float64(area)
}

// Halves splits the work area into the four half regions, indexed by
// Direction.
func Halves(workArea Rect) [4]Rect {
	halfW := workArea.Width / 2
	halfH := workArea.Height / 2
	return [4]Rect{
		Left:   {X: workArea.X, Y: workArea.Y, Width: halfW, Height: workArea.Height},
		Right:  {X: workArea.X + halfW, Y: workArea.Y, Width: workArea.Width - halfW, Height: workArea.Height},
		Top:    {X: workArea.X, Y: workArea.Y, Width: workArea.Width, Height: halfH},
		Bottom: {X: workArea.X, Y: workArea.Y + halfH, Width: workArea.Width, Height: workArea.Height - halfH},
	}
}

// CalcDirection picks the edge the window logically belongs to: the half of
// the work area it overlaps most. Ties go to the earlier Direction.
func CalcDirection(bounds, workArea Rect) Direction {
	halves := Halves(workArea)
	best := Left
	bestRatio := OverlapRatio(bounds, halves[Left])
	for _, dir := range []Direction{Right, Top, Bottom} {
		if ratio := OverlapRatio(bounds, halves[dir]); ratio > bestRatio {
			best = dir
			bestRatio = ratio
		}
	}
	return best
}

// DockedBounds sizes a window from the work area and places it flush against
// the given edge. Percentages are clamped to 1..100.
func DockedBounds(dir Direction, workArea Rect, widthPercent, heightPercent int) Rect {
	w := workArea.Width * clampPercent(widthPercent) / 100
	h := workArea.Height * clampPercent(heightPercent) / 100
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	pos := VisiblePosition(dir, workArea, w, h)
	return Rect{X: pos.X, Y: pos.Y, Width: w, Height: h}
}

func clampPercent(p int) int {
	if p < 1 {
		return 1
	}
	if p > 100 {
		return 100
	}
	return p
}
