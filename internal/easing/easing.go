package easing

import (
	"fmt"
	"math"
	"strings"
)

// Easing maps normalized animation time to normalized progress.
// Every variant returns exactly 0 at t=0 and exactly 1 at t=1.
type Easing int

const (
	Linear Easing = iota
	Quad
	Cubic
	Expo
)

// Default is the curve used when nothing is configured.
const Default = Cubic

var names = map[Easing]string{
	Linear: "linear",
	Quad:   "quad",
	Cubic:  "cubic",
	Expo:   "expo",
}

// Apply evaluates the curve at t. Inputs outside [0,1] are clamped.
func (e Easing) Apply(t float64) float64 {
	if math.IsNaN(t) || t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	switch e {
	case Quad:
		inv := 1 - t
		return 1 - inv*inv
	case Cubic:
		inv := 1 - t
		return 1 - inv*inv*inv
	case Expo:
		// 1-2^(-10t) never reaches 1 on its own; the boundaries are handled above.
		return 1 - math.Pow(2, -10*t)
	default:
		return t
	}
}

func (e Easing) String() string {
	if name, ok := names[e]; ok {
		return name
	}
	return fmt.Sprintf("easing(%d)", int(e))
}

// Parse resolves a config name such as "cubic" to its curve.
func Parse(name string) (Easing, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Default, nil
	}
	for e, n := range names {
		if n == key {
			return e, nil
		}
	}
	return Default, fmt.Errorf("unknown easing %q (want one of: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the accepted config names in declaration order.
func Names() []string {
	return []string{"linear", "quad", "cubic", "expo"}
}
