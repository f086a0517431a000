package geometry

import "testing"

var screen = Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func TestLerp(t *testing.T) {
	tests := []struct {
		a, b int
		t    float64
		want int
	}{
		{0, 100, 0, 0},
		{0, 100, 1, 100},
		{0, 100, 0.5, 50},
		{-100, 0, 0.5, -50},
		{-100, 0, 0, -100},
		{0, 3, 0.5, 2},
		{0, -3, 0.5, -2},
		{7, 7, 0.3, 7},
	}
	for _, tt := range tests {
		if got := Lerp(tt.a, tt.b, tt.t); got != tt.want {
			t.Errorf("Lerp(%d, %d, %v) = %d, want %d", tt.a, tt.b, tt.t, got, tt.want)
		}
	}
}

func TestLerp_EndpointsExact(t *testing.T) {
	for _, a := range []int{-5000, -1, 0, 1, 3840} {
		for _, b := range []int{-2160, 0, 17, 1920} {
			if got := Lerp(a, b, 0); got != a {
				t.Fatalf("Lerp(%d, %d, 0) = %d", a, b, got)
			}
			if got := Lerp(a, b, 1); got != b {
				t.Fatalf("Lerp(%d, %d, 1) = %d", a, b, got)
			}
		}
	}
}

func TestCalcPosition_HiddenEndpointSymmetric(t *testing.T) {
	wa := Rect{X: 100, Y: 50, Width: 1600, Height: 900}
	for _, dir := range []Direction{Left, Right, Top, Bottom} {
		in := CalcPosition(dir, wa, 400, 300, 0, true)
		out := CalcPosition(dir, wa, 400, 300, 1, false)
		if in != out {
			t.Fatalf("%s: slide-in start %v != slide-out end %v", dir, in, out)
		}
		inFrom := CalcPositionFrom(dir, wa, Rect{X: 300, Y: 200, Width: 400, Height: 300}, 0, true)
		outFrom := CalcPositionFrom(dir, wa, Rect{X: 300, Y: 200, Width: 400, Height: 300}, 1, false)
		if inFrom != outFrom {
			t.Fatalf("%s: bounds-anchored slide-in start %v != slide-out end %v", dir, inFrom, outFrom)
		}
	}
}

func TestCalcPosition_Endpoints(t *testing.T) {
	wa := Rect{X: 0, Y: 30, Width: 1920, Height: 1050}
	tests := []struct {
		dir     Direction
		hidden  Point
		visible Point
	}{
		{Left, Point{-400, 30}, Point{0, 30}},
		{Right, Point{1920, 30}, Point{1520, 30}},
		{Top, Point{0, -270}, Point{0, 30}},
		{Bottom, Point{0, 1080}, Point{0, 780}},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			if got := CalcPosition(tt.dir, wa, 400, 300, 0, true); got != tt.hidden {
				t.Fatalf("hidden = %v, want %v", got, tt.hidden)
			}
			if got := CalcPosition(tt.dir, wa, 400, 300, 1, true); got != tt.visible {
				t.Fatalf("visible = %v, want %v", got, tt.visible)
			}
			if got := CalcPosition(tt.dir, wa, 400, 300, 0, false); got != tt.visible {
				t.Fatalf("slide-out start = %v, want %v", got, tt.visible)
			}
		})
	}
}

func TestCalcPositionFrom_KeepsOwnPosition(t *testing.T) {
	bounds := Rect{X: 250, Y: 120, Width: 800, Height: 500}
	if got := CalcPositionFrom(Top, screen, bounds, 1, true); got != (Point{250, 120}) {
		t.Fatalf("visible = %v", got)
	}
	if got := CalcPositionFrom(Top, screen, bounds, 0, true); got != (Point{250, -500}) {
		t.Fatalf("hidden = %v", got)
	}
	if got := CalcPositionFrom(Right, screen, bounds, 0.5, true); got != (Point{1085, 120}) {
		t.Fatalf("midway = %v", got)
	}
}

func TestOverlapRatio(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 100, Height: 100}
	if got := OverlapRatio(r, r); got != 1.0 {
		t.Fatalf("identical = %v, want 1", got)
	}
	if got := OverlapRatio(r, Rect{X: 500, Y: 500, Width: 10, Height: 10}); got != 0.0 {
		t.Fatalf("disjoint = %v, want 0", got)
	}
	if got := OverlapRatio(r, Rect{X: 60, Y: 0, Width: 1000, Height: 1000}); got != 0.5 {
		t.Fatalf("half = %v, want 0.5", got)
	}
	if got := OverlapRatio(Rect{X: 10, Y: 10}, r); got != 0 {
		t.Fatalf("zero-area bounds = %v, want 0", got)
	}
	if got := OverlapRatio(r, Rect{X: 110, Y: 10, Width: 50, Height: 50}); got != 0 {
		t.Fatalf("touching = %v, want 0", got)
	}
}

func TestCalcDirection(t *testing.T) {
	tests := []struct {
		name   string
		bounds Rect
		want   Direction
	}{
		{"left column", Rect{X: 100, Y: 100, Width: 400, Height: 600}, Left},
		{"right column", Rect{X: 1400, Y: 100, Width: 400, Height: 600}, Right},
		{"top strip", Rect{X: 0, Y: 0, Width: 1920, Height: 400}, Top},
		{"bottom strip", Rect{X: 0, Y: 700, Width: 1920, Height: 380}, Bottom},
		{"top-left quadrant ties to left", Rect{X: 0, Y: 0, Width: 400, Height: 400}, Left},
		{"bottom-right quadrant ties to right", Rect{X: 1500, Y: 700, Width: 300, Height: 300}, Right},
		{"full screen ties to left", screen, Left},
		{"off screen falls back to left", Rect{X: 5000, Y: 5000, Width: 10, Height: 10}, Left},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalcDirection(tt.bounds, screen); got != tt.want {
				t.Fatalf("CalcDirection(%v) = %s, want %s", tt.bounds, got, tt.want)
			}
		})
	}
}

func TestDockedBounds(t *testing.T) {
	wa := Rect{X: 0, Y: 24, Width: 1920, Height: 1056}
	got := DockedBounds(Top, wa, 100, 50)
	want := Rect{X: 0, Y: 24, Width: 1920, Height: 528}
	if got != want {
		t.Fatalf("Top = %v, want %v", got, want)
	}
	got = DockedBounds(Right, wa, 40, 100)
	want = Rect{X: 1152, Y: 24, Width: 768, Height: 1056}
	if got != want {
		t.Fatalf("Right = %v, want %v", got, want)
	}
	got = DockedBounds(Bottom, wa, 0, 200)
	if got.Width != 19 || got.Height != 1056 {
		t.Fatalf("clamped = %v", got)
	}
}

func TestParseDirection(t *testing.T) {
	for _, dir := range []Direction{Left, Right, Top, Bottom} {
		got, err := ParseDirection(dir.String())
		if err != nil || got != dir {
			t.Fatalf("ParseDirection(%q) = %s, %v", dir.String(), got, err)
		}
	}
	if _, err := ParseDirection("diagonal"); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}
