package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
	// RefreshHz is derived from the CRTC's current mode; 0 when unknown.
	RefreshHz float64
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// distanceSq is the squared distance from (x, y) to the closest point of m.
func (m Monitor) distanceSq(x, y int) int {
	dx := 0
	if x < m.X {
		dx = m.X - x
	} else if x >= m.X+m.Width {
		dx = x - (m.X + m.Width - 1)
	}
	dy := 0
	if y < m.Y {
		dy = m.Y - y
	} else if y >= m.Y+m.Height {
		dy = y - (m.Y + m.Height - 1)
	}
	return dx*dx + dy*dy
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:        i,
			Name:      outputName,
			X:         int(crtcInfo.X),
			Y:         int(crtcInfo.Y),
			Width:     int(crtcInfo.Width),
			Height:    int(crtcInfo.Height),
			RefreshHz: refreshRate(resources.Modes, crtcInfo.Mode),
		})
	}

	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}
	return monitors, nil
}

func refreshRate(modes []randr.ModeInfo, id randr.Mode) float64 {
	for _, mode := range modes {
		if randr.Mode(mode.Id) != id {
			continue
		}
		if mode.Htotal == 0 || mode.Vtotal == 0 {
			return 0
		}
		hz := float64(mode.DotClock) / (float64(mode.Htotal) * float64(mode.Vtotal))
		if mode.ModeFlags&randr.ModeFlagInterlace != 0 {
			hz *= 2
		}
		if mode.ModeFlags&randr.ModeFlagDoubleScan != 0 {
			hz /= 2
		}
		return hz
	}
	return 0
}

// GetActiveMonitor returns the monitor containing the currently focused
// window, falling back to the one under the pointer. The geometry is reduced
// to the work area.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}

	var active *Monitor
	if activeWin, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && activeWin != 0 {
		active = findMonitorForWindow(c, monitors, activeWin)
	}
	if active == nil {
		active = findMonitorForPointer(c, monitors)
	}
	if active == nil {
		active = &monitors[0]
	}

	c.applyWorkArea(active)
	return active, nil
}

// WorkAreaForWindow returns the work area of the monitor holding the
// window's centre, or of the first monitor when the window is off-screen.
func (c *Connection) WorkAreaForWindow(windowID xproto.Window) (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}

	mon := findMonitorForWindow(c, monitors, windowID)
	if mon == nil {
		mon = &monitors[0]
	}
	c.applyWorkArea(mon)
	return mon, nil
}

// WorkAreaAt returns the work area of the monitor under (x, y), or of the
// nearest monitor when the point is in a gap between outputs.
func (c *Connection) WorkAreaAt(x, y int) (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}

	mon := nearestMonitor(monitors, x, y)
	c.applyWorkArea(mon)
	return mon, nil
}

func nearestMonitor(monitors []Monitor, x, y int) *Monitor {
	best := &monitors[0]
	bestDist := best.distanceSq(x, y)
	for i := range monitors {
		mon := &monitors[i]
		if mon.contains(x, y) {
			return mon
		}
		if d := mon.distanceSq(x, y); d < bestDist {
			best = mon
			bestDist = d
		}
	}
	return best
}

// applyWorkArea shrinks the monitor by dock struts, or by _NET_WORKAREA
// when no dock publishes struts.
func (c *Connection) applyWorkArea(monitor *Monitor) {
	if applyDockStruts(c, monitor) {
		return
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]

	isect := intersectionRect(
		monitor.X, monitor.Y, monitor.X+monitor.Width, monitor.Y+monitor.Height,
		int(wa.X), int(wa.Y), int(wa.X)+int(wa.Width), int(wa.Y)+int(wa.Height),
	)
	if isect.w > 0 && isect.h > 0 {
		monitor.X = isect.x
		monitor.Y = isect.y
		monitor.Width = isect.w
		monitor.Height = isect.h
	}
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func applyDockStruts(c *Connection, monitor *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var struts dockStruts
	for _, windowID := range clients {
		if !hasWindowType(c, windowID, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			sp := &ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(rootHeight - 1),
				RightEndY:  uint(rootHeight - 1),
				TopEndX:    uint(rootWidth - 1),
				BottomEndX: uint(rootWidth - 1),
			}
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &struts)
		}
	}

	if struts == (dockStruts{}) {
		return false
	}

	monitor.X += struts.left
	monitor.Y += struts.top
	monitor.Width = max(1, monitor.Width-(struts.left+struts.right))
	monitor.Height = max(1, monitor.Height-(struts.top+struts.bottom))
	return true
}

func updateStrutsForMonitor(monitor *Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	monX1 := monitor.X
	monY1 := monitor.Y
	monX2 := monitor.X + monitor.Width
	monY2 := monitor.Y + monitor.Height

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		isect := intersectionRect(monX1, monY1, monX2, monY2, int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		acc.top = max(acc.top, isect.h)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		isect := intersectionRect(monX1, monY1, monX2, monY2, int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		acc.bottom = max(acc.bottom, isect.h)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		isect := intersectionRect(monX1, monY1, monX2, monY2, 0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		acc.left = max(acc.left, isect.w)
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		isect := intersectionRect(monX1, monY1, monX2, monY2, rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		acc.right = max(acc.right, isect.w)
	}
}

type intersection struct {
	x int
	y int
	w int
	h int
}

// intersectionRect clips two half-open boxes given as (x1,y1)-(x2,y2).
func intersectionRect(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{x: x1, y: y1, w: x2 - x1, h: y2 - y1}
}

func findMonitorForWindow(c *Connection, monitors []Monitor, windowID xproto.Window) *Monitor {
	x, y, w, h, err := c.WindowGeometry(windowID)
	if err != nil {
		return nil
	}

	cx := x + w/2
	cy := y + h/2
	for i := range monitors {
		if monitors[i].contains(cx, cy) {
			return &monitors[i]
		}
	}
	return nil
}

func findMonitorForPointer(c *Connection, monitors []Monitor) *Monitor {
	x, y, err := c.PointerPosition()
	if err != nil {
		return nil
	}

	for i := range monitors {
		if monitors[i].contains(x, y) {
			return &monitors[i]
		}
	}
	return nil
}
