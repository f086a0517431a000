package x11

import (
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	refreshMu       sync.Mutex
	refreshInterval time.Duration
	refreshEpoch    time.Time
}

// NewConnection connects to $DISPLAY.
func NewConnection() (*Connection, error) {
	return NewConnectionDisplay("")
}

// NewConnectionDisplay connects to the given display, or $DISPLAY when
// display is empty, and initializes the keybind module.
func NewConnectionDisplay(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display == "" {
		xu, err = xgbutil.NewConn()
	} else {
		xu, err = xgbutil.NewConnDisplay(display)
	}
	if err != nil {
		return nil, err
	}

	// Required for global hotkeys.
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// StopEventLoop makes EventLoop return after the current event.
func (c *Connection) StopEventLoop() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
