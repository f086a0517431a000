package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WatchActiveWindow calls fn with the new active window each time the
// window manager updates _NET_ACTIVE_WINDOW. fn runs on the event loop
// goroutine.
func (c *Connection) WatchActiveWindow(fn func(xproto.Window)) error {
	activeAtom, err := xprop.Atm(c.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != activeAtom {
			return
		}
		win, err := ewmh.ActiveWindowGet(xu)
		if err != nil {
			return
		}
		fn(win)
	}).Connect(c.XUtil, c.Root)

	return nil
}
