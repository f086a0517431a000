package daemon

import (
	"io"
	"log/slog"
	"testing"
)

type fakeTarget struct {
	tracked   uint32
	closed    []uint32
	refreshes int
}

func (f *fakeTarget) TrackedWindow() uint32 { return f.tracked }
func (f *fakeTarget) HandleWindowClosed(windowID uint32) { f.closed = append(f.closed, windowID) }
func (f *fakeTarget) RefreshWorkArea() { f.refreshes++ }

func TestReconcileNow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	live := map[uint32]bool{7: true}
	exists := func(id uint32) bool { return live[id] }

	target := &fakeTarget{}
	r := NewReconciler(ReconcilerConfig{Logger: logger}, target, exists)

	r.ReconcileNow()
	if len(target.closed) != 0 || target.refreshes != 0 {
		t.Fatalf("nothing tracked, nothing to do: %+v", target)
	}

	target.tracked = 7
	r.ReconcileNow()
	if target.refreshes != 1 || len(target.closed) != 0 {
		t.Fatalf("live window should only refresh the work area: %+v", target)
	}

	delete(live, 7)
	r.ReconcileNow()
	if len(target.closed) != 1 || target.closed[0] != 7 {
		t.Fatalf("closed window not reported: %+v", target)
	}
}

func TestReconcileRecoversPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	target := &fakeTarget{tracked: 1}
	r := NewReconciler(ReconcilerConfig{Logger: logger}, target, func(uint32) bool { panic("boom") })
	r.ReconcileNow()
}
