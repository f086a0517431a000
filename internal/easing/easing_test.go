package easing

import (
	"math"
	"testing"
)

func TestApply_Endpoints(t *testing.T) {
	for _, e := range []Easing{Linear, Quad, Cubic, Expo} {
		if got := e.Apply(0); got != 0 {
			t.Fatalf("%s.Apply(0) = %v, want 0", e, got)
		}
		if got := e.Apply(1); got != 1 {
			t.Fatalf("%s.Apply(1) = %v, want 1", e, got)
		}
	}
}

func TestApply_ClampsOutOfRange(t *testing.T) {
	for _, e := range []Easing{Linear, Quad, Cubic, Expo} {
		if got := e.Apply(-0.5); got != 0 {
			t.Fatalf("%s.Apply(-0.5) = %v, want 0", e, got)
		}
		if got := e.Apply(1.5); got != 1 {
			t.Fatalf("%s.Apply(1.5) = %v, want 1", e, got)
		}
		if got := e.Apply(math.NaN()); got != 0 {
			t.Fatalf("%s.Apply(NaN) = %v, want 0", e, got)
		}
	}
}

func TestApply_Monotonic(t *testing.T) {
	for _, e := range []Easing{Linear, Quad, Cubic, Expo} {
		prev := 0.0
		for i := 1; i <= 100; i++ {
			v := e.Apply(float64(i) / 100)
			if v < prev {
				t.Fatalf("%s not monotonic at step %d: %v < %v", e, i, v, prev)
			}
			prev = v
		}
	}
}

func TestApply_KnownValues(t *testing.T) {
	tests := []struct {
		e    Easing
		t    float64
		want float64
	}{
		{Linear, 0.25, 0.25},
		{Quad, 0.5, 0.75},
		{Cubic, 0.5, 0.875},
		{Expo, 0.1, 0.5},
	}
	for _, tt := range tests {
		got := tt.e.Apply(tt.t)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s.Apply(%v) = %v, want %v", tt.e, tt.t, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Easing
		wantErr bool
	}{
		{"", Cubic, false},
		{"linear", Linear, false},
		{" Quad ", Quad, false},
		{"CUBIC", Cubic, false},
		{"expo", Expo, false},
		{"bounce", Cubic, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestString_RoundTrips(t *testing.T) {
	for _, name := range Names() {
		e, err := Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", name, err)
		}
		if e.String() != name {
			t.Fatalf("String() = %q, want %q", e.String(), name)
		}
	}
}
