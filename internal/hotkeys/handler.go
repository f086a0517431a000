// Package hotkeys binds global X11 key grabs to daemon actions.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/termdrop/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Binding ties a key sequence such as "Control-Mod1-q" to an action.
type Binding struct {
	Name     string
	Sequence string
	Action   func()
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, logger *slog.Logger) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		xu:     xu,
		root:   root,
		logger: logger,
	}
}

// RegisterAll grabs every binding with a non-empty sequence. On failure the
// bindings grabbed so far stay registered; call UnregisterAll to drop them.
func (h *Handler) RegisterAll(bindings []Binding) error {
	for _, b := range bindings {
		if b.Sequence == "" {
			continue
		}
		action, name := b.Action, b.Name
		if err := h.RegisterFunc(b.Sequence, func() {
			h.logger.Debug("hotkey triggered", "hotkey", name)
			action()
		}); err != nil {
			return fmt.Errorf("failed to register %s hotkey %q: %w", name, b.Sequence, err)
		}
		h.logger.Info("hotkey registered", "hotkey", name, "sequence", b.Sequence)
	}
	return nil
}

// UnregisterAll releases every key grab on the root window.
func (h *Handler) UnregisterAll() {
	if h.xu == nil {
		return
	}
	keybind.Detach(h.xu, h.root)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	if h.xu == nil {
		return fmt.Errorf("hotkeys need an X11 backend")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
