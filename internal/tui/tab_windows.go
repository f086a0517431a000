package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/termdrop/internal/ipc"
	"github.com/1broseidon/termdrop/internal/platform"
)

// windowItem implements list.Item for the window picker.
type windowItem struct {
	win     platform.Window
	tracked bool
}

func (i windowItem) Title() string {
	prefix := "  "
	if i.tracked {
		prefix = "* "
	}
	title := i.win.Title
	if title == "" {
		title = "(untitled)"
	}
	return prefix + title
}

func (i windowItem) Description() string {
	return fmt.Sprintf("%s  %s  %s", ipc.FormatWindowID(uint32(i.win.ID)), i.win.AppID, i.win.Bounds)
}

func (i windowItem) FilterValue() string { return i.win.Title + " " + i.win.AppID }

// trackWindowMsg asks the root model to track a window.
type trackWindowMsg struct {
	id uint32
}

// WindowsTab lists top-level windows; enter tracks the selection.
type WindowsTab struct {
	list    list.Model
	lister  WindowLister
	windows []platform.Window
	tracked uint32
	err     error

	width  int
	height int
}

// NewWindowsTab creates the picker and loads the initial window list.
func NewWindowsTab(lister WindowLister) WindowsTab {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	w := WindowsTab{list: l, lister: lister}
	w.reload()
	return w
}

func (w *WindowsTab) reload() {
	if w.lister == nil {
		w.err = fmt.Errorf("window listing needs an X11 display")
		return
	}
	windows, err := w.lister()
	if err != nil {
		w.err = err
		return
	}
	w.err = nil
	w.windows = windows[:0:0]
	for _, win := range windows {
		if win.Mapped {
			w.windows = append(w.windows, win)
		}
	}
	w.rebuildItems()
}

func (w *WindowsTab) rebuildItems() {
	items := make([]list.Item, 0, len(w.windows))
	for _, win := range w.windows {
		items = append(items, windowItem{win: win, tracked: uint32(win.ID) == w.tracked && w.tracked != 0})
	}
	w.list.SetItems(items)
}

// SetTracked marks id as the tracked window.
func (w *WindowsTab) SetTracked(id uint32) {
	if id == w.tracked {
		return
	}
	w.tracked = id
	w.rebuildItems()
}

// Update implements tea.Model.
func (w WindowsTab) Update(msg tea.Msg) (WindowsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		h := w.height - 1
		if h < 1 {
			h = 1
		}
		w.list.SetSize(w.width, h)
		return w, nil

	case tea.KeyMsg:
		if w.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			item, ok := w.list.SelectedItem().(windowItem)
			if !ok {
				return w, nil
			}
			id := uint32(item.win.ID)
			return w, func() tea.Msg { return trackWindowMsg{id: id} }
		case "r":
			w.reload()
			return w, nil
		}
	}

	var cmd tea.Cmd
	w.list, cmd = w.list.Update(msg)
	return w, cmd
}

// View implements tea.Model.
func (w WindowsTab) View() string {
	if w.err != nil {
		style := lipgloss.NewStyle().
			Width(w.width).
			Height(w.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render(w.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		w.list.View(),
		dimStyle.Render("  enter: track  /: filter  r: refresh"),
	)
}
