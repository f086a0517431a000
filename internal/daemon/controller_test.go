package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/termdrop/internal/animation"
	"github.com/1broseidon/termdrop/internal/config"
	"github.com/1broseidon/termdrop/internal/edge"
	"github.com/1broseidon/termdrop/internal/geometry"
	"github.com/1broseidon/termdrop/internal/platform"
	"github.com/1broseidon/termdrop/internal/platform/platformtest"
	"github.com/1broseidon/termdrop/internal/tracking"
)

const (
	termWin  platform.WindowID = 0x100
	otherWin platform.WindowID = 0x200
)

var termBounds = platform.Rect{X: 0, Y: 0, Width: 800, Height: 1080}

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController(t *testing.T, mutate func(*config.Config)) (*Controller, *platformtest.Backend, *testClock) {
	t.Helper()

	fake := platformtest.New()
	fake.AddWindow(termWin, "terminal", termBounds)
	fake.AddWindow(otherWin, "editor", platform.Rect{X: 900, Y: 0, Width: 1000, Height: 1080})
	fake.SetActive(termWin)

	cfg := config.DefaultConfig()
	cfg.Animation.DurationMs = 0
	if mutate != nil {
		mutate(cfg)
	}

	clock := &testClock{t: time.Unix(1000, 0)}
	driver := animation.NewDriver(fake, animation.WithClock(clock.now, func(time.Duration) {}))
	c, err := NewController(Options{
		Config:  cfg,
		Backend: fake,
		Driver:  driver,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     clock.now,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c, fake, clock
}

func lastFrame(t *testing.T, fake *platformtest.Backend) platformtest.Frame {
	t.Helper()
	frames := fake.Frames()
	if len(frames) == 0 {
		t.Fatalf("no frames recorded")
	}
	return frames[len(frames)-1]
}

func TestToggleRequiresTrackedWindow(t *testing.T) {
	c, fake, _ := newTestController(t, nil)
	if err := c.toggle(context.Background()); !errors.Is(err, tracking.ErrNotTracking) {
		t.Fatalf("toggle error = %v, want ErrNotTracking", err)
	}
	if n := len(fake.Frames()); n != 0 {
		t.Fatalf("window moved without a tracked window: %d frames", n)
	}
}

func TestTrackThenToggle(t *testing.T) {
	ctx := context.Background()
	c, fake, _ := newTestController(t, nil)

	data, err := c.track(0)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if platform.WindowID(data.WindowID) != termWin || data.Direction != "left" || data.Title != "terminal" {
		t.Fatalf("unexpected track data: %+v", data)
	}
	if !c.session.Visible() {
		t.Fatalf("a freshly tracked window is visible")
	}

	if err := c.toggle(ctx); err != nil {
		t.Fatalf("toggle out: %v", err)
	}
	if c.session.Visible() {
		t.Fatalf("expected hidden after toggle")
	}
	f := lastFrame(t, fake)
	if f.Flags != platform.FrameNoActivate|platform.FrameHide || f.Bounds.X != -800 {
		t.Fatalf("hide frame = %+v", f)
	}

	fake.SetActive(otherWin)
	fake.ResetFrames()
	if err := c.toggle(ctx); err != nil {
		t.Fatalf("toggle in: %v", err)
	}
	if !c.session.Visible() {
		t.Fatalf("expected visible after toggle")
	}
	frames := fake.Frames()
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want show frame plus final frame", len(frames))
	}
	if frames[0].Flags != platform.FrameShow|platform.FrameTopmost|platform.FrameNoActivate {
		t.Fatalf("show frame flags = %s", frames[0].Flags)
	}
	if frames[1].Bounds != termBounds || frames[1].Flags != platform.FrameTopmost {
		t.Fatalf("final frame = %+v", frames[1])
	}

	if err := c.toggle(ctx); err != nil {
		t.Fatalf("toggle out: %v", err)
	}
	focused := fake.Focused()
	if len(focused) != 1 || focused[0] != otherWin {
		t.Fatalf("focus handed back to %v, want [%#x]", focused, otherWin)
	}
}

func TestTrackSwitchRestoresPreviousWindow(t *testing.T) {
	ctx := context.Background()
	c, fake, _ := newTestController(t, nil)

	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := c.toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if _, err := c.track(otherWin); err != nil {
		t.Fatalf("track other: %v", err)
	}
	if c.session.Window() != otherWin {
		t.Fatalf("tracked %#x, want %#x", c.session.Window(), otherWin)
	}
	w, _ := fake.Window(termWin)
	if !w.Mapped || w.Bounds != termBounds {
		t.Fatalf("previous window not restored: %+v", w)
	}
}

func TestTrackFocusedTogglesTracking(t *testing.T) {
	c, _, _ := newTestController(t, nil)

	if err := c.trackFocused(); err != nil {
		t.Fatalf("trackFocused: %v", err)
	}
	if c.session.Window() != termWin {
		t.Fatalf("expected terminal tracked")
	}
	if err := c.trackFocused(); err != nil {
		t.Fatalf("trackFocused: %v", err)
	}
	if c.session.Tracking() {
		t.Fatalf("second press on the tracked window should release it")
	}
}

func TestUntrackRestoresOriginalGeometry(t *testing.T) {
	c, fake, _ := newTestController(t, nil)

	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := c.toggle(context.Background()); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if w, _ := fake.Window(termWin); w.Mapped {
		t.Fatalf("expected window hidden")
	}

	if err := c.untrack(); err != nil {
		t.Fatalf("untrack: %v", err)
	}
	f := lastFrame(t, fake)
	if f.Bounds != termBounds || f.Flags != platform.FrameShow {
		t.Fatalf("restore frame = %+v", f)
	}
	if w, _ := fake.Window(termWin); !w.Mapped {
		t.Fatalf("window not mapped after untrack")
	}
	if err := c.untrack(); !errors.Is(err, tracking.ErrNotTracking) {
		t.Fatalf("second untrack = %v, want ErrNotTracking", err)
	}
}

func TestTrackedWindowClosed(t *testing.T) {
	c, fake, _ := newTestController(t, nil)

	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}
	fake.RemoveWindow(termWin)

	if err := c.toggle(context.Background()); err == nil {
		t.Fatalf("expected error for a closed window")
	}
	if c.session.Tracking() {
		t.Fatalf("closed window still tracked")
	}
}

func TestFocusLossHides(t *testing.T) {
	ctx := context.Background()
	c, fake, _ := newTestController(t, nil)

	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}
	c.edgeState = edge.State{Phase: edge.Active}

	fake.SetActive(otherWin)
	c.handleFocusChange(ctx)

	if c.session.Visible() {
		t.Fatalf("expected window hidden after focus loss")
	}
	if c.edgeState.Phase != edge.Idle {
		t.Fatalf("edge state = %s, want idle", c.edgeState.Phase)
	}
	if got := fake.Focused(); len(got) != 0 {
		t.Fatalf("focus loss must not move focus, got %v", got)
	}
	if f := lastFrame(t, fake); !f.Flags.Has(platform.FrameHide) {
		t.Fatalf("last frame flags = %s, want hide", f.Flags)
	}
}

func TestFocusLossIgnored(t *testing.T) {
	ctx := context.Background()
	c, fake, _ := newTestController(t, func(cfg *config.Config) {
		cfg.HideOnFocusLoss = false
	})
	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}

	fake.SetActive(otherWin)
	c.handleFocusChange(ctx)
	if !c.session.Visible() {
		t.Fatalf("hide_on_focus_loss=false should keep the window visible")
	}

	c2, fake2, _ := newTestController(t, nil)
	if _, err := c2.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}
	c2.handleFocusChange(ctx)
	if !c2.session.Visible() || len(fake2.Frames()) != 0 {
		t.Fatalf("focus on the tracked window is not a loss")
	}
}

func TestEdgeTriggerShowAndHide(t *testing.T) {
	ctx := context.Background()
	c, fake, clock := newTestController(t, nil)

	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := c.toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	fake.SetCursor(platform.Point{X: 0, Y: 500})
	c.tick(ctx)
	if c.edgeState.Phase != edge.PendingShow {
		t.Fatalf("phase = %s, want pending-show", c.edgeState.Phase)
	}

	clock.advance(50 * time.Millisecond)
	c.tick(ctx)
	if c.session.Visible() {
		t.Fatalf("shown before the show delay")
	}

	clock.advance(50 * time.Millisecond)
	c.tick(ctx)
	if !c.session.Visible() {
		t.Fatalf("expected window shown after the show delay")
	}
	if c.edgeState.Phase != edge.Active {
		t.Fatalf("phase = %s, want active", c.edgeState.Phase)
	}

	fake.SetCursor(platform.Point{X: 1500, Y: 500})
	c.tick(ctx)
	if c.edgeState.Phase != edge.PendingHide {
		t.Fatalf("phase = %s, want pending-hide", c.edgeState.Phase)
	}

	clock.advance(300 * time.Millisecond)
	c.tick(ctx)
	if c.session.Visible() {
		t.Fatalf("expected window hidden after the hide delay")
	}
	if c.edgeState.Phase != edge.Idle {
		t.Fatalf("phase = %s, want idle", c.edgeState.Phase)
	}
}

func TestEdgeTriggerKeepsDockedWindowUnderCursor(t *testing.T) {
	ctx := context.Background()
	c, fake, clock := newTestController(t, func(cfg *config.Config) {
		cfg.Dock.Enabled = true
		cfg.Dock.Direction = "top"
		cfg.Dock.WidthPercent = 100
		cfg.Dock.HeightPercent = 40
	})

	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := c.toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	fake.SetCursor(platform.Point{X: 1500, Y: 0})
	c.tick(ctx)
	clock.advance(100 * time.Millisecond)
	c.tick(ctx)
	if !c.session.Visible() {
		t.Fatalf("expected docked window shown")
	}

	docked := platform.Rect{X: 0, Y: 0, Width: 1920, Height: 432}
	if got := lastFrame(t, fake).Bounds; got != docked {
		t.Fatalf("final frame = %s, want %s", got, docked)
	}
	if got, _ := c.session.LoadBounds(); got != docked {
		t.Fatalf("stored bounds = %s, want %s", got, docked)
	}

	fake.SetCursor(platform.Point{X: 1500, Y: 200})
	c.tick(ctx)
	clock.advance(time.Second)
	c.tick(ctx)
	if !c.session.Visible() {
		t.Fatalf("window hidden while the cursor is inside it")
	}
	if c.edgeState.Phase != edge.Active {
		t.Fatalf("phase = %s, want active", c.edgeState.Phase)
	}

	fake.SetCursor(platform.Point{X: 1500, Y: 600})
	c.tick(ctx)
	clock.advance(300 * time.Millisecond)
	c.tick(ctx)
	if c.session.Visible() {
		t.Fatalf("expected window hidden once the cursor left it")
	}
}

func TestEdgeTriggerDisabled(t *testing.T) {
	ctx := context.Background()
	c, fake, clock := newTestController(t, nil)
	path := filepath.Join(t.TempDir(), "config.yaml")
	c.cfgPath = path

	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := c.toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	off := false
	if got := c.setEdge(&off); got {
		t.Fatalf("setEdge(false) = true")
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if res.Config.EdgeTrigger.Enabled {
		t.Fatalf("edge trigger setting not persisted")
	}

	fake.SetCursor(platform.Point{X: 0, Y: 500})
	c.tick(ctx)
	clock.advance(time.Second)
	c.tick(ctx)
	if c.session.Visible() || c.edgeState.Phase != edge.Idle {
		t.Fatalf("disabled edge trigger acted: visible=%v phase=%s", c.session.Visible(), c.edgeState.Phase)
	}

	if got := c.setEdge(nil); !got {
		t.Fatalf("setEdge(nil) should flip back on")
	}
}

func TestReload(t *testing.T) {
	c, _, _ := newTestController(t, nil)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tick_interval_ms: 20\nedge_trigger:\n  enabled: false\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c.cfgPath = path

	var reloaded *config.Config
	c.onReload = func(cfg *config.Config) { reloaded = cfg }

	if err := c.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded == nil || reloaded.TickIntervalMs != 20 {
		t.Fatalf("OnReload not called with the new config: %+v", reloaded)
	}
	if c.edgeEnabled.Load() {
		t.Fatalf("edge trigger should follow the reloaded config")
	}
	if !c.tickChanged {
		t.Fatalf("tick interval change not noticed")
	}

	if err := os.WriteFile(path, []byte("log_level: loud\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.reload(); err == nil {
		t.Fatalf("expected error for invalid config")
	}
	if c.cfg != reloaded {
		t.Fatalf("failed reload replaced the config")
	}
}

func TestRunServesCommandsAndRestoresOnExit(t *testing.T) {
	c, fake, _ := newTestController(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	data, err := c.Track(0)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if platform.WindowID(data.WindowID) != termWin {
		t.Fatalf("tracked %#x", data.WindowID)
	}
	if err := c.Hide(); err != nil {
		t.Fatalf("Hide: %v", err)
	}

	status := c.Status()
	if !status.Tracking || status.Visible || status.Direction != "left" || status.Title != "terminal" {
		t.Fatalf("unexpected status: %+v", status)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop")
	}

	w, _ := fake.Window(termWin)
	if !w.Mapped || w.Bounds != termBounds {
		t.Fatalf("window not restored on exit: %+v", w)
	}
	if err := c.Toggle(); !errors.Is(err, ErrStopped) {
		t.Fatalf("Toggle after exit = %v, want ErrStopped", err)
	}
}

func TestTrackNormalizesWindowState(t *testing.T) {
	c, fake, _ := newTestController(t, nil)

	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}
	resized := fake.Resized()
	if len(resized) != 1 || resized[0].ID != termWin || resized[0].Bounds != termBounds {
		t.Fatalf("resized = %+v, want one pin of %s", resized, termBounds)
	}

	// Tracking the same window again leaves it alone.
	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track again: %v", err)
	}
	if n := len(fake.Resized()); n != 1 {
		t.Fatalf("resized %d times, want 1", n)
	}
}

func TestDisplayChangeResetsTiming(t *testing.T) {
	c, fake, _ := newTestController(t, nil)
	primary := platform.Display{ID: 0, Name: "DP-1", Bounds: fake.WorkArea, Usable: fake.WorkArea, RefreshHz: 60}
	fake.SetMonitors([]platform.Display{primary})

	c.checkDisplays()
	if n := fake.RefreshResets(); n != 1 {
		t.Fatalf("first layout resets = %d, want 1", n)
	}

	c.workArea = fake.WorkArea
	c.checkDisplays()
	if n := fake.RefreshResets(); n != 1 {
		t.Fatalf("unchanged layout resets = %d, want 1", n)
	}
	if c.workArea.Empty() {
		t.Fatalf("unchanged layout dropped the work area")
	}

	primary.RefreshHz = 144
	fake.SetMonitors([]platform.Display{primary})
	c.checkDisplays()
	if n := fake.RefreshResets(); n != 2 {
		t.Fatalf("mode change resets = %d, want 2", n)
	}
	if !c.workArea.Empty() {
		t.Fatalf("mode change kept the cached work area %s", c.workArea)
	}
}

func TestReloadRefreshesWorkAreaAndDirection(t *testing.T) {
	c, fake, _ := newTestController(t, nil)
	if _, err := c.track(termWin); err != nil {
		t.Fatalf("track: %v", err)
	}
	if dir := geometry.Direction(c.direction.Load()); dir != geometry.Left {
		t.Fatalf("direction = %s, want left", dir)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("dock:\n  direction: right\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c.cfgPath = path
	fake.WorkArea = platform.Rect{Y: 32, Width: 1920, Height: 1048}

	if err := c.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if c.workArea != fake.WorkArea {
		t.Fatalf("work area = %s, want %s", c.workArea, fake.WorkArea)
	}
	if dir := geometry.Direction(c.direction.Load()); dir != geometry.Right {
		t.Fatalf("direction = %s, want right", dir)
	}
}
