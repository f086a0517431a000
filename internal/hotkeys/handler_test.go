package hotkeys

import (
	"testing"

	"github.com/1broseidon/termdrop/internal/platform/platformtest"
)

func TestRegisterAllWithoutX11(t *testing.T) {
	h := NewHandler(platformtest.New(), nil)

	if err := h.RegisterAll([]Binding{{Name: "toggle", Sequence: "", Action: func() {}}}); err != nil {
		t.Fatalf("empty sequence should be skipped, got %v", err)
	}

	err := h.RegisterAll([]Binding{{Name: "toggle", Sequence: "F8", Action: func() {}}})
	if err == nil {
		t.Fatalf("expected error without an X11 connection")
	}

	h.UnregisterAll()
}
