package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/termdrop/internal/ipc"
)

const statusPollInterval = time.Second

// messageMsg shows text in the help bar.
type messageMsg struct {
	text string
}

// clearMessageMsg clears the help-bar message after a delay.
type clearMessageMsg struct{}

// pollStatusMsg triggers a daemon status refresh.
type pollStatusMsg struct{}

// model is the root bubbletea model for the TUI.
type model struct {
	client DaemonClient
	status *ipc.StatusData

	activeTab   Tab
	windowsTab  WindowsTab
	settingsTab SettingsTab

	message string

	width  int
	height int
}

func newModel(opts Options) model {
	m := model{
		client:    opts.Client,
		activeTab: TabStatus,
	}
	m.refreshStatus()
	m.windowsTab = NewWindowsTab(opts.Windows)
	m.settingsTab = NewSettingsTab(opts.ConfigPath)
	return m
}

func (m *model) refreshStatus() {
	status, err := m.client.GetStatus()
	if err != nil {
		m.status = nil
		return
	}
	m.status = status
}

func pollStatus() tea.Cmd {
	return tea.Tick(statusPollInterval, func(time.Time) tea.Msg {
		return pollStatusMsg{}
	})
}

func showMessage(text string) tea.Cmd {
	return func() tea.Msg { return messageMsg{text: text} }
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return pollStatus()
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.windowsTab, _ = m.windowsTab.Update(subMsg)
		m.settingsTab, _ = m.settingsTab.Update(subMsg)
		return m, nil

	case pollStatusMsg:
		m.refreshStatus()
		m.windowsTab.SetTracked(m.trackedWindow())
		return m, pollStatus()

	case messageMsg:
		m.message = msg.text
		m.refreshStatus()
		m.windowsTab.SetTracked(m.trackedWindow())
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearMessageMsg{}
		})

	case clearMessageMsg:
		m.message = ""
		return m, nil

	case trackWindowMsg:
		return m, m.track(msg.id)
	}

	// The settings form consumes keys while it is open; only ctrl+c escapes.
	if m.activeTab == TabSettings && m.settingsTab.editing {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.settingsTab, cmd = m.settingsTab.Update(msg)
		return m, m.afterSettings(cmd)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabStatus
			return m, nil
		case "2":
			m.activeTab = TabWindows
			return m, nil
		case "3":
			m.activeTab = TabSettings
			return m, nil
		}
		if m.activeTab == TabStatus {
			return m, m.statusAction(km.String())
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabWindows:
		m.windowsTab, cmd = m.windowsTab.Update(msg)
	case TabSettings:
		m.settingsTab, cmd = m.settingsTab.Update(msg)
		cmd = m.afterSettings(cmd)
	}
	return m, cmd
}

// afterSettings reloads the daemon once the settings tab has saved.
func (m *model) afterSettings(cmd tea.Cmd) tea.Cmd {
	saved := m.settingsTab.TakeSaved()
	if saved == "" {
		return cmd
	}
	text := saved
	if m.status != nil {
		if err := m.client.Reload(); err != nil {
			text = fmt.Sprintf("%s; daemon reload failed: %v", saved, err)
		} else {
			text = saved + "; daemon reloaded"
		}
	}
	return tea.Batch(cmd, showMessage(text))
}

// statusAction runs the daemon command bound to key on the status tab.
func (m *model) statusAction(key string) tea.Cmd {
	var (
		err  error
		done string
	)
	switch key {
	case "t", "enter":
		err, done = m.client.Toggle(), "toggled"
	case "s":
		err, done = m.client.Show(), "shown"
	case "h":
		err, done = m.client.Hide(), "hidden"
	case "u":
		err, done = m.client.Untrack(), "window restored"
	case "e":
		var on bool
		on, err = m.client.SetEdgeTrigger(nil)
		done = "edge trigger off"
		if on {
			done = "edge trigger on"
		}
	case "r":
		err, done = m.client.Reload(), "config reloaded"
	default:
		return nil
	}
	if err != nil {
		return showMessage(fmt.Sprintf("error: %v", err))
	}
	return showMessage(done)
}

func (m *model) track(id uint32) tea.Cmd {
	data, err := m.client.Track(id)
	if err != nil {
		return showMessage(fmt.Sprintf("error: %v", err))
	}
	return showMessage(fmt.Sprintf("tracking %s %q (slides %s)", ipc.FormatWindowID(data.WindowID), data.Title, data.Direction))
}

func (m model) trackedWindow() uint32 {
	if m.status == nil || !m.status.Tracking {
		return 0
	}
	return m.status.WindowID
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width, m.message)

	var content string
	switch m.activeTab {
	case TabStatus:
		content = m.viewStatus()
	case TabWindows:
		content = m.windowsTab.View()
	case TabSettings:
		content = m.settingsTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}

func (m model) viewStatus() string {
	var lines []string
	if s := m.status; s == nil {
		lines = append(lines, "", dimStyle.Render("  Start the daemon with 'termdrop daemon'."))
	} else {
		lines = append(lines, "", row("Uptime", (time.Duration(s.UptimeSeconds)*time.Second).String()))
		if s.Tracking {
			lines = append(lines,
				row("Window", fmt.Sprintf("%s %q", ipc.FormatWindowID(s.WindowID), s.Title)),
				row("Visible", fmt.Sprintf("%v", s.Visible)),
				row("Direction", s.Direction),
			)
			if b := s.Bounds; b != nil {
				lines = append(lines, row("Bounds", fmt.Sprintf("%dx%d+%d+%d", b.Width, b.Height, b.X, b.Y)))
			}
		} else {
			lines = append(lines, row("Window", "(none, pick one on the Windows tab)"))
		}
		lines = append(lines,
			row("Edge trigger", fmt.Sprintf("%v (%s)", s.EdgeTrigger, s.EdgePhase)),
			"",
			dimStyle.Render("  t: toggle  s: show  h: hide  u: untrack  e: edge on/off  r: reload config"),
		)
	}

	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.contentHeight()).
		Padding(1, 2)
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
