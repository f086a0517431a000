package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/1broseidon/termdrop/internal/config"
	"github.com/1broseidon/termdrop/internal/ipc"
	"github.com/1broseidon/termdrop/internal/platform"
)

func TestParseEdgeArg(t *testing.T) {
	tests := []struct {
		arg     string
		want    string // "on", "off" or "toggle"
		wantErr bool
	}{
		{"on", "on", false},
		{"ON", "on", false},
		{"enable", "on", false},
		{"off", "off", false},
		{" false ", "off", false},
		{"toggle", "toggle", false},
		{"maybe", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := parseEdgeArg(tt.arg)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseEdgeArg(%q) err = %v, wantErr %v", tt.arg, err, tt.wantErr)
		}
		if tt.wantErr {
			continue
		}
		var name string
		switch {
		case got == nil:
			name = "toggle"
		case *got:
			name = "on"
		default:
			name = "off"
		}
		if name != tt.want {
			t.Fatalf("parseEdgeArg(%q) = %s, want %s", tt.arg, name, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"kitty", 10, "kitty"},
		{"kitty", 5, "kitty"},
		{"kitty", 4, "kit…"},
		{"kitty", 1, "…"},
		{"kitty", 0, ""},
		{"ターミナル", 3, "ター…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestPrintWindows(t *testing.T) {
	windows := []platform.Window{
		{ID: 0x100, AppID: "kitty", Title: "a very long terminal title indeed", Bounds: platform.Rect{Width: 800, Height: 600}, Mapped: true},
		{ID: 0x200, AppID: "firefox", Title: "browser", Bounds: platform.Rect{X: 800, Width: 1120, Height: 1080}, Mapped: true},
		{ID: 0x300, AppID: "kitty", Title: "hidden", Mapped: false},
	}

	var buf bytes.Buffer
	printWindows(&buf, windows, 0x100, false, 70)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 mapped windows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "* 0x100") {
		t.Fatalf("tracked window not marked: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  0x200") {
		t.Fatalf("untracked window marked: %q", lines[1])
	}
	for _, l := range lines {
		if n := len([]rune(l)); n > 70 {
			t.Fatalf("line exceeds width (%d): %q", n, l)
		}
	}

	buf.Reset()
	printWindows(&buf, windows, 0, true, 0)
	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Fatalf("--all listed %d windows, want 3", got)
	}
	if !strings.Contains(buf.String(), "a very long terminal title indeed") {
		t.Fatalf("width 0 should not truncate:\n%s", buf.String())
	}
}

func TestPrintDisplays(t *testing.T) {
	displays := []platform.Display{
		{ID: 0, Name: "DP-1", Bounds: platform.Rect{Width: 1920, Height: 1080}, Usable: platform.Rect{Y: 32, Width: 1920, Height: 1048}, RefreshHz: 59.95},
		{ID: 1, Name: "HDMI-1", Bounds: platform.Rect{X: 1920, Width: 2560, Height: 1440}, Usable: platform.Rect{X: 1920, Width: 2560, Height: 1440}},
	}

	var buf bytes.Buffer
	printDisplays(&buf, displays, 1)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "  DP-1") || !strings.HasSuffix(lines[0], "59.95Hz") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "* HDMI-1") || !strings.HasSuffix(lines[1], " ?") {
		t.Fatalf("active display not marked or rate shown: %q", lines[1])
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, &ipc.StatusData{
		DaemonRunning: true,
		Tracking:      true,
		WindowID:      0x3a00004,
		Title:         "term",
		Visible:       false,
		Direction:     "top",
		Bounds:        &ipc.RectData{X: 0, Y: 0, Width: 1920, Height: 432},
		EdgeTrigger:   true,
		EdgePhase:     "idle",
	})
	out := buf.String()
	for _, want := range []string{"0x3a00004", "direction:      top", "1920x432+0+0", "edge_trigger:   true (idle)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printStatus(&buf, &ipc.StatusData{DaemonRunning: true})
	if strings.Contains(buf.String(), "window:") {
		t.Fatalf("untracked status should not print a window:\n%s", buf.String())
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceDefault, Name: "animation.easing"}, "default:animation.easing"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}
