package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/termdrop/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabStatus Tab = iota
	TabWindows
	TabSettings
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabStatus:
		return "Status"
	case TabWindows:
		return "Windows"
	case TabSettings:
		return "Settings"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Width(20).
			Align(lipgloss.Right).
			PaddingRight(2)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderTabBar renders the tab bar with the given active tab and width.
func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d:%s", int(i)+1, i)
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar renders the one-line daemon summary.
func renderStatusBar(status *ipc.StatusData, width int) string {
	var line string
	if status != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected"}
		if status.Tracking {
			state := "hidden"
			if status.Visible {
				state = "visible"
			}
			parts = append(parts, fmt.Sprintf("%s %s", ipc.FormatWindowID(status.WindowID), state))
		} else {
			parts = append(parts, "no window tracked")
		}
		if status.EdgeTrigger {
			parts = append(parts, "edge:on")
		} else {
			parts = append(parts, "edge:off")
		}
		line = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		line = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(line)
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(width int, message string) string {
	help := "tab/shift-tab: switch tabs  1-3: jump to tab  q/ctrl-c: quit"
	if message != "" {
		help = message
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}
