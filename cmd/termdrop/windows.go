package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/1broseidon/termdrop/internal/config"
	"github.com/1broseidon/termdrop/internal/ipc"
	"github.com/1broseidon/termdrop/internal/platform"
)

const defaultTermWidth = 80

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	all := fs.Bool("all", false, "Include unmapped (hidden) windows")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: termdrop windows [--all]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List top-level windows with the ids 'termdrop track --window' accepts.")
		fmt.Fprintln(os.Stderr, "The tracked window is marked with '*'.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	backend, err := openBackend()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer backend.Disconnect()

	windows, err := backend.ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// The daemon is optional here; without it nothing is marked.
	var tracked uint32
	if status, err := ipc.NewClient().GetStatus(); err == nil && status.Tracking {
		tracked = status.WindowID
	}

	if displays, err := backend.Displays(); err == nil {
		active := -1
		if d, err := backend.ActiveDisplay(); err == nil {
			active = d.ID
		}
		printDisplays(os.Stdout, displays, active)
		fmt.Fprintln(os.Stdout)
	}
	printWindows(os.Stdout, windows, tracked, *all, terminalWidth())
	return 0
}

// openBackend opens a short-lived X connection using the display settings
// from the config file.
func openBackend() (*platform.LinuxBackend, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	return platform.NewLinuxBackendFromDisplay(cfg.Display)
}

func listWindows() ([]platform.Window, error) {
	backend, err := openBackend()
	if err != nil {
		return nil, err
	}
	defer backend.Disconnect()
	return backend.ListWindows()
}

// printDisplays writes one line per monitor. The display holding the focused
// window is marked with '*'.
func printDisplays(w io.Writer, displays []platform.Display, active int) {
	for _, d := range displays {
		mark := " "
		if d.ID == active {
			mark = "*"
		}
		rate := "?"
		if d.RefreshHz > 0 {
			rate = fmt.Sprintf("%.2fHz", d.RefreshHz)
		}
		fmt.Fprintf(w, "%s %-8s %-20s usable %-20s %s\n", mark, d.Name, d.Bounds.String(), d.Usable.String(), rate)
	}
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

// printWindows writes one line per window. width 0 disables truncation.
func printWindows(w io.Writer, windows []platform.Window, tracked uint32, all bool, width int) {
	for _, win := range windows {
		if !win.Mapped && !all {
			continue
		}
		mark := " "
		if uint32(win.ID) == tracked && tracked != 0 {
			mark = "*"
		}
		prefix := fmt.Sprintf("%s %-10s %-20s %-16s ", mark, ipc.FormatWindowID(uint32(win.ID)), win.Bounds.String(), win.AppID)
		title := win.Title
		if width > 0 {
			title = truncate(title, width-len([]rune(prefix)))
		}
		fmt.Fprintln(w, prefix+title)
	}
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
