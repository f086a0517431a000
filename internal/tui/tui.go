// Package tui is the interactive front end for a running daemon: status and
// actions, a window picker for tracking, and a settings editor.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/termdrop/internal/ipc"
	"github.com/1broseidon/termdrop/internal/platform"
)

// DaemonClient is the part of the IPC client the TUI drives.
type DaemonClient interface {
	Toggle() error
	Show() error
	Hide() error
	Track(windowID uint32) (*ipc.TrackData, error)
	Untrack() error
	SetEdgeTrigger(enabled *bool) (bool, error)
	Reload() error
	GetStatus() (*ipc.StatusData, error)
}

var _ DaemonClient = (*ipc.Client)(nil)

// WindowLister returns the windows offered for tracking.
type WindowLister func() ([]platform.Window, error)

// Options configures Run.
type Options struct {
	ConfigPath string
	Client     DaemonClient
	Windows    WindowLister
}

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if opts.Client == nil {
		opts.Client = ipc.NewClient()
	}

	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
