package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// sourceIndication tells the window manager the request comes from a
// pager-like tool acting on the user's behalf, which WMs honour even when the
// requesting client has no focus.
const sourceIndication = 2

const iconicState = 3

const rootMessageMask = xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The client message is built by hand because the xgbutil ewmh request
// helpers panic on this library version.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	ev, err := c.rootMessage(windowID, "_NET_ACTIVE_WINDOW", sourceIndication, 0, 0, 0, 0)
	if err != nil {
		return err
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, c.Root, rootMessageMask, ev).Check()
}

// IconifyWindow asks the window manager to iconify the window via
// WM_CHANGE_STATE. The request is queued without waiting for a reply so it
// goes out in the same batch as a preceding move.
func (c *Connection) IconifyWindow(windowID xproto.Window) error {
	ev, err := c.rootMessage(windowID, "WM_CHANGE_STATE", iconicState, 0, 0, 0, 0)
	if err != nil {
		return err
	}
	xproto.SendEvent(c.XUtil.Conn(), false, c.Root, rootMessageMask, ev)
	return nil
}

// rootMessage encodes a client message for the root window. xprop caches
// interned atoms, so only the first use of a name costs a round trip.
func (c *Connection) rootMessage(windowID xproto.Window, atomName string, data ...uint32) (string, error) {
	atom, err := xprop.Atm(c.XUtil, atomName)
	if err != nil {
		return "", fmt.Errorf("failed to intern %s: %w", atomName, err)
	}
	return encodeClientMessage(windowID, atom, data), nil
}

func encodeClientMessage(windowID xproto.Window, atom xproto.Atom, data []uint32) string {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}
	return string(ev.Bytes())
}
