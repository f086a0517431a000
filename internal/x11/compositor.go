package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

const bypassCompositorProp = "_NET_WM_BYPASS_COMPOSITOR"

// BypassCompositor returns the window's _NET_WM_BYPASS_COMPOSITOR value and
// whether the property is present.
func (c *Connection) BypassCompositor(windowID xproto.Window) (uint, bool) {
	val, err := xprop.PropValNum(xprop.GetProperty(c.XUtil, windowID, bypassCompositorProp))
	if err != nil {
		return 0, false
	}
	return val, true
}

// SetBypassCompositor writes _NET_WM_BYPASS_COMPOSITOR. 0 means no
// preference, 1 asks for unredirection and 2 asks to stay composited.
func (c *Connection) SetBypassCompositor(windowID xproto.Window, value uint) error {
	if err := xprop.ChangeProp32(c.XUtil, windowID, bypassCompositorProp, "CARDINAL", value); err != nil {
		return fmt.Errorf("failed to set %s: %w", bypassCompositorProp, err)
	}
	return nil
}

// DeleteBypassCompositor removes the property.
func (c *Connection) DeleteBypassCompositor(windowID xproto.Window) error {
	atom, err := xprop.Atm(c.XUtil, bypassCompositorProp)
	if err != nil {
		return err
	}
	return xproto.DeletePropertyChecked(c.XUtil.Conn(), windowID, atom).Check()
}

// Invalidate clears the whole window and generates Expose events so the
// client repaints.
func (c *Connection) Invalidate(windowID xproto.Window) error {
	return xproto.ClearAreaChecked(c.XUtil.Conn(), true, windowID, 0, 0, 0, 0).Check()
}
