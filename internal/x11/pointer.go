package x11

import "github.com/BurntSushi/xgb/xproto"

// PointerPosition returns the pointer position in root coordinates.
func (c *Connection) PointerPosition() (x, y int, err error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(pointer.RootX), int(pointer.RootY), nil
}
