package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdrop/internal/config"
	"github.com/1broseidon/termdrop/internal/ipc"
	"github.com/1broseidon/termdrop/internal/platform"
)

type fakeClient struct {
	calls     []string
	trackID   uint32
	edge      bool
	down      bool
	toggleErr error
}

func (f *fakeClient) Toggle() error {
	f.calls = append(f.calls, "toggle")
	return f.toggleErr
}
func (f *fakeClient) Show() error    { f.calls = append(f.calls, "show"); return nil }
func (f *fakeClient) Hide() error    { f.calls = append(f.calls, "hide"); return nil }
func (f *fakeClient) Untrack() error { f.calls = append(f.calls, "untrack"); return nil }
func (f *fakeClient) Reload() error  { f.calls = append(f.calls, "reload"); return nil }

func (f *fakeClient) Track(id uint32) (*ipc.TrackData, error) {
	f.calls = append(f.calls, "track")
	f.trackID = id
	return &ipc.TrackData{WindowID: id, Title: "term", Direction: "left"}, nil
}

func (f *fakeClient) SetEdgeTrigger(enabled *bool) (bool, error) {
	f.calls = append(f.calls, "edge")
	f.edge = !f.edge
	return f.edge, nil
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.down {
		return nil, errors.New("daemon not running")
	}
	return &ipc.StatusData{DaemonRunning: true, Tracking: f.trackID != 0, WindowID: f.trackID}, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run feeds msg to m and keeps feeding the messages its commands produce.
// It stops at a messageMsg, whose command is the clear-message timer.
func run(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	for i := 0; i < 4 && msg != nil; i++ {
		next, cmd := m.Update(msg)
		m = next.(model)
		if _, ok := msg.(messageMsg); ok || cmd == nil {
			break
		}
		msg = cmd()
	}
	return m
}

func newTestModel(t *testing.T, client *fakeClient, windows []platform.Window) model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := newModel(Options{
		ConfigPath: path,
		Client:     client,
		Windows:    func() ([]platform.Window, error) { return windows, nil },
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(model)
}

func TestStatusActions(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(t, client, nil)

	m = run(t, m, key("t"))
	if len(client.calls) != 1 || client.calls[0] != "toggle" {
		t.Fatalf("calls = %v", client.calls)
	}
	if m.message != "toggled" {
		t.Fatalf("message = %q", m.message)
	}

	m = run(t, m, key("e"))
	if m.message != "edge trigger on" {
		t.Fatalf("message = %q", m.message)
	}

	client.toggleErr = errors.New("daemon error: no window is being tracked")
	m = run(t, m, key("t"))
	if !strings.HasPrefix(m.message, "error:") {
		t.Fatalf("error not surfaced: %q", m.message)
	}
}

func TestTabSwitching(t *testing.T) {
	m := newTestModel(t, &fakeClient{}, nil)

	m = run(t, m, key("tab"))
	if m.activeTab != TabWindows {
		t.Fatalf("tab = %s, want Windows", m.activeTab)
	}
	m = run(t, m, key("3"))
	if m.activeTab != TabSettings {
		t.Fatalf("tab = %s, want Settings", m.activeTab)
	}
	m = run(t, m, key("tab"))
	if m.activeTab != TabStatus {
		t.Fatalf("tab = %s, want wrap to Status", m.activeTab)
	}
	if m.View() == "" {
		t.Fatalf("empty view")
	}
}

func TestWindowsTabTracksSelection(t *testing.T) {
	client := &fakeClient{}
	windows := []platform.Window{
		{ID: 0x100, Title: "kitty", AppID: "kitty", Mapped: true},
		{ID: 0x200, Title: "hidden", Mapped: false},
	}
	m := newTestModel(t, client, windows)
	if got := len(m.windowsTab.list.Items()); got != 1 {
		t.Fatalf("listed %d windows, want only the mapped one", got)
	}

	m = run(t, m, key("2"))
	m = run(t, m, key("enter"))
	if client.trackID != 0x100 {
		t.Fatalf("tracked %#x, want 0x100", client.trackID)
	}
	if !strings.Contains(m.message, "tracking 0x100") {
		t.Fatalf("message = %q", m.message)
	}

	item := m.windowsTab.list.Items()[0].(windowItem)
	if !item.tracked || !strings.HasPrefix(item.Title(), "* ") {
		t.Fatalf("tracked window not marked: %q", item.Title())
	}
}

func TestWindowsTabWithoutDisplay(t *testing.T) {
	w := NewWindowsTab(func() ([]platform.Window, error) { return nil, errors.New("no display") })
	if w.err == nil {
		t.Fatalf("expected lister error to be kept")
	}
}

func TestSettingsChanges(t *testing.T) {
	cfg := config.DefaultConfig()
	v := valuesFromConfig(cfg)

	changes, err := settingsChanges(cfg, v)
	if err != nil || len(changes) != 0 {
		t.Fatalf("unchanged form produced %v, %v", changes, err)
	}

	v.DurationMs = "120"
	v.EdgeEnabled = false
	v.DockDirection = "top"
	changes, err = settingsChanges(cfg, v)
	if err != nil {
		t.Fatalf("settingsChanges: %v", err)
	}
	want := []settingChange{
		{Key: "animation.duration_ms", Value: 120},
		{Key: "dock.direction", Value: "top"},
		{Key: "edge_trigger.enabled", Value: false},
	}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("changes[%d] = %v, want %v", i, changes[i], want[i])
		}
	}

	v.HideDelayMs = "soon"
	if _, err := settingsChanges(cfg, v); err == nil {
		t.Fatalf("expected error for a non-numeric field")
	}
}

func TestSettingsApplyWritesConfigAndReloads(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(t, client, nil)

	s := &m.settingsTab
	s.values = valuesFromConfig(s.cfg)
	s.values.DurationMs = "90"
	s.values.Easing = "linear"
	s.apply()
	if s.saveErr != nil {
		t.Fatalf("apply: %v", s.saveErr)
	}

	res, err := config.LoadFromPath(s.configPath)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if res.Config.Animation.DurationMs != 90 || res.Config.Animation.Easing != "linear" {
		t.Fatalf("saved animation = %+v", res.Config.Animation)
	}
	if s.cfg.Animation.DurationMs != 90 {
		t.Fatalf("tab did not re-read the file")
	}

	cmd := m.afterSettings(nil)
	if cmd == nil {
		t.Fatalf("expected a message after saving")
	}
	if client.calls[len(client.calls)-1] != "reload" {
		t.Fatalf("daemon not reloaded: %v", client.calls)
	}
	if s.TakeSaved() != "" {
		t.Fatalf("saved message should be consumed once")
	}
}

func TestStatusBarWithoutDaemon(t *testing.T) {
	m := newTestModel(t, &fakeClient{down: true}, nil)
	if m.status != nil {
		t.Fatalf("expected no status without a daemon")
	}
	if !strings.Contains(renderStatusBar(nil, 80), "daemon not running") {
		t.Fatalf("status bar should say the daemon is down")
	}
}
