package ipc

import (
	"errors"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type fakeController struct {
	mu      sync.Mutex
	calls   []string
	edge    bool
	tracked uint32
	failOn  string
}

func (f *fakeController) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errors.New("no window is tracked")
	}
	return nil
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) Toggle() error  { return f.record("toggle") }
func (f *fakeController) Show() error    { return f.record("show") }
func (f *fakeController) Hide() error    { return f.record("hide") }
func (f *fakeController) Untrack() error { return f.record("untrack") }
func (f *fakeController) Reload() error  { return f.record("reload") }

func (f *fakeController) Track(windowID uint32) (TrackData, error) {
	if err := f.record("track"); err != nil {
		return TrackData{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if windowID == 0 {
		windowID = 0x2a
	}
	f.tracked = windowID
	return TrackData{WindowID: windowID, Title: "term", Direction: "left", Bounds: RectData{Width: 800, Height: 600}}, nil
}

func (f *fakeController) SetEdgeTrigger(enabled *bool) (bool, error) {
	if err := f.record("edge"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if enabled == nil {
		f.edge = !f.edge
	} else {
		f.edge = *enabled
	}
	return f.edge, nil
}

func (f *fakeController) Status() StatusData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return StatusData{Tracking: f.tracked != 0, WindowID: f.tracked, EdgeTrigger: f.edge, EdgePhase: "idle"}
}

func startServer(t *testing.T, ctrl Controller) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "termdrop.sock")
	srv := NewServerAt(path, ctrl)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientAt(path)
}

func TestRoundTrip(t *testing.T) {
	ctrl := &fakeController{}
	client := startServer(t, ctrl)

	if err := client.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if err := client.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := client.Hide(); err != nil {
		t.Fatalf("Hide: %v", err)
	}

	data, err := client.Track(0)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if data.WindowID != 0x2a || data.Direction != "left" || data.Bounds.Width != 800 {
		t.Fatalf("unexpected track data: %+v", data)
	}

	on := true
	enabled, err := client.SetEdgeTrigger(&on)
	if err != nil || !enabled {
		t.Fatalf("SetEdgeTrigger(true) = %v, %v", enabled, err)
	}
	enabled, err = client.SetEdgeTrigger(nil)
	if err != nil || enabled {
		t.Fatalf("SetEdgeTrigger(nil) = %v, %v; want toggled off", enabled, err)
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || !status.Tracking || status.WindowID != 0x2a {
		t.Fatalf("unexpected status: %+v", status)
	}

	if err := client.Untrack(); err != nil {
		t.Fatalf("Untrack: %v", err)
	}
	if err := client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	want := "toggle,show,hide,track,edge,edge,untrack,reload"
	if got := strings.Join(ctrl.Calls(), ","); got != want {
		t.Fatalf("calls = %s, want %s", got, want)
	}
}

func TestErrorResponse(t *testing.T) {
	client := startServer(t, &fakeController{failOn: "toggle"})

	err := client.Toggle()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "daemon error") || !strings.Contains(err.Error(), "no window is tracked") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnknownCommandAndBadJSON(t *testing.T) {
	client := startServer(t, &fakeController{})

	_, err := client.sendRequest(&Request{Command: "NOPE"})
	if err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}

	conn, err := net.Dial("unix", client.socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("{not json\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, 256)
	n, _ := conn.Read(buf)
	if !strings.Contains(string(buf[:n]), `"status":"ERROR"`) {
		t.Fatalf("expected error response, got %q", buf[:n])
	}
}

func TestClientWithoutDaemon(t *testing.T) {
	client := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := client.Ping(); err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("expected connection error, got %v", err)
	}
}
