package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/termdrop/internal/config"
	"github.com/1broseidon/termdrop/internal/daemon"
	"github.com/1broseidon/termdrop/internal/focus"
	"github.com/1broseidon/termdrop/internal/hotkeys"
	"github.com/1broseidon/termdrop/internal/ipc"
	"github.com/1broseidon/termdrop/internal/platform"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/termdrop/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: termdrop daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the drop-down daemon in the foreground. SIGHUP reloads the config.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	if ipc.NewClient().Ping() == nil {
		fmt.Fprintln(os.Stderr, "termdrop daemon is already running")
		return 1
	}

	cfgPath := *path
	if cfgPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
		cfgPath = p
	}
	res, err := config.LoadFromPath(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	for _, w := range cfg.Warnings() {
		log.Printf("Warning: %s", w)
	}
	log.Printf("Configuration loaded (toggle: %s, track: %s, animation: %dms %s)",
		cfg.ToggleHotkey, cfg.TrackHotkey, cfg.Animation.DurationMs, cfg.Animation.Easing)

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	watcher := focus.NewWatcher()
	if err := watcher.Start(backend); err != nil {
		logger.Warn("focus-loss hiding disabled", "error", err)
	}

	hotkeyHandler := hotkeys.NewHandler(backend, logger.With("component", "hotkeys"))

	var ctrl *daemon.Controller
	bindingsFor := func(c *config.Config) []hotkeys.Binding {
		return []hotkeys.Binding{
			{Name: "toggle", Sequence: c.ToggleHotkey, Action: func() { ctrl.ToggleAsync() }},
			{Name: "track", Sequence: c.TrackHotkey, Action: func() { ctrl.TrackFocusedAsync() }},
		}
	}

	ctrl, err = daemon.NewController(daemon.Options{
		Config:     cfg,
		ConfigPath: cfgPath,
		Backend:    backend,
		Logger:     logger.With("component", "daemon"),
		Focus:      watcher.Events(),
		OnReload: func(c *config.Config) {
			level.Set(c.SlogLevel())
			hotkeyHandler.UnregisterAll()
			if err := hotkeyHandler.RegisterAll(bindingsFor(c)); err != nil {
				logger.Error("failed to re-register hotkeys", "error", err)
			}
		},
	})
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	if err := hotkeyHandler.RegisterAll(bindingsFor(cfg)); err != nil {
		log.Fatalf("Failed to register hotkeys: %v", err)
	}

	ipcServer, err := ipc.NewServer(ctrl)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := ctrl.Run(ctx); err != nil {
			logger.Error("controller stopped", "error", err)
		}
	}()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Logger: logger.With("component", "reconciler"),
	}, ctrl, func(id uint32) bool {
		return backend.IsWindow(platform.WindowID(id))
	})
	go reconciler.Run(ctx)

	log.Println("termdrop daemon started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				if err := ctrl.Reload(); err != nil {
					log.Printf("Config reload failed: %v", err)
					continue
				}
				log.Println("Config reloaded successfully")

			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down termdrop daemon...")
				ipcServer.Stop()
				cancel()
				// The loop restores the tracked window before it exits.
				select {
				case <-loopDone:
				case <-time.After(3 * time.Second):
					log.Println("Timed out waiting for the window to be restored")
				}
				hotkeyHandler.UnregisterAll()
				backend.Disconnect()
				os.Exit(0)
			}
		}
	}()

	log.Println("Entering event loop...")
	backend.EventLoop()
	return 0
}
