package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/termdrop/internal/config"
	"github.com/1broseidon/termdrop/internal/ipc"
	"github.com/1broseidon/termdrop/internal/tui"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "toggle":
		os.Exit(runSimple("toggle", "Slide the tracked window in or out.", os.Args[2:], (*ipc.Client).Toggle))
	case "show":
		os.Exit(runSimple("show", "Slide the tracked window in.", os.Args[2:], (*ipc.Client).Show))
	case "hide":
		os.Exit(runSimple("hide", "Slide the tracked window out.", os.Args[2:], (*ipc.Client).Hide))
	case "untrack":
		os.Exit(runSimple("untrack", "Release the tracked window and restore its original geometry.", os.Args[2:], (*ipc.Client).Untrack))
	case "reload":
		os.Exit(runSimple("reload", "Ask the daemon to re-read its config file.", os.Args[2:], (*ipc.Client).Reload))
	case "track":
		os.Exit(runTrack(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "edge":
		os.Exit(runEdge(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: termdrop <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the termdrop daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  toggle              Slide the tracked window in or out")
	fmt.Fprintln(w, "  show                Slide the tracked window in")
	fmt.Fprintln(w, "  hide                Slide the tracked window out")
	fmt.Fprintln(w, "  track               Track the focused window (or --window ID)")
	fmt.Fprintln(w, "  untrack             Release the tracked window")
	fmt.Fprintln(w, "  edge on|off|toggle  Enable or disable the edge trigger")
	fmt.Fprintln(w, "  reload              Reload the daemon config")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  windows             List top-level windows")
	fmt.Fprintln(w, "  tui                 Open interactive TUI")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'termdrop <command> --help' for command-specific options.")
}

// runSimple handles the argument-less commands that map to one IPC call.
func runSimple(name, desc string, args []string, call func(*ipc.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: termdrop %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, desc)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	if err := call(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runTrack(args []string) int {
	fs := flag.NewFlagSet("track", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	window := fs.String("window", "", "Window id to track, decimal or 0x hex (default: focused window)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: termdrop track [--window ID]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start controlling a window as the drop-down. Any previously tracked")
		fmt.Fprintln(os.Stderr, "window is restored first. See 'termdrop windows' for ids.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "track takes no positional arguments")
		fs.Usage()
		return 2
	}

	id, err := ipc.ParseWindowID(*window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	data, err := ipc.NewClient().Track(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("tracking %s %q (slides %s)\n", ipc.FormatWindowID(data.WindowID), data.Title, data.Direction)
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: termdrop status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running: %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Fprintf(w, "tracking:       %v\n", status.Tracking)
	if status.Tracking {
		fmt.Fprintf(w, "window:         %s %q\n", ipc.FormatWindowID(status.WindowID), status.Title)
		fmt.Fprintf(w, "visible:        %v\n", status.Visible)
		fmt.Fprintf(w, "direction:      %s\n", status.Direction)
		if b := status.Bounds; b != nil {
			fmt.Fprintf(w, "bounds:         %dx%d+%d+%d\n", b.Width, b.Height, b.X, b.Y)
		}
	}
	fmt.Fprintf(w, "edge_trigger:   %v (%s)\n", status.EdgeTrigger, status.EdgePhase)
}

func runEdge(args []string) int {
	if len(args) != 1 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: termdrop edge on|off|toggle")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Enable or disable the edge trigger. The setting is saved to the config file.")
		if len(args) == 1 {
			return 0
		}
		return 2
	}

	enabled, err := parseEdgeArg(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	now, err := ipc.NewClient().SetEdgeTrigger(enabled)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if now {
		fmt.Println("edge trigger: on")
	} else {
		fmt.Println("edge trigger: off")
	}
	return 0
}

// parseEdgeArg maps on/off/toggle to the SET_EDGE payload. toggle is nil.
func parseEdgeArg(arg string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "on", "enable", "true":
		v := true
		return &v, nil
	case "off", "disable", "false":
		v := false
		return &v, nil
	case "toggle":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown edge setting %q (want on, off or toggle)", arg)
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/termdrop/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: termdrop tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive TUI for the daemon: status and actions, a window picker")
		fmt.Fprintln(os.Stderr, "for tracking, and a settings editor that writes the config file.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab, 1-3   Switch tabs")
		fmt.Fprintln(os.Stderr, "  t/s/h/u    Toggle, show, hide, untrack (Status tab)")
		fmt.Fprintln(os.Stderr, "  e          Flip edge trigger (Status) or edit settings (Settings)")
		fmt.Fprintln(os.Stderr, "  enter      Track the selected window (Windows tab)")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C  Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	err := tui.Run(tui.Options{
		ConfigPath: *path,
		Client:     ipc.NewClient(),
		Windows:    listWindows,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  termdrop config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  termdrop config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  termdrop config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/termdrop/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			var verr *config.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(os.Stderr, "hint: run 'termdrop config explain %s' to see where it is set\n", verr.Path)
			}
			return 1
		}
		for _, w := range res.Config.Warnings() {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/termdrop/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			_ = printEffective // default
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			for _, f := range res.Files {
				fmt.Printf("# file: %s\n", f)
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/termdrop/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
