package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/termdrop/internal/easing"
	"github.com/1broseidon/termdrop/internal/edge"
	"github.com/1broseidon/termdrop/internal/geometry"
	"gopkg.in/yaml.v3"
)

// DirectionAuto picks the slide edge from the window's position.
const DirectionAuto = "auto"

// AnimationConfig controls slide timing.
type AnimationConfig struct {
	DurationMs int    `yaml:"duration_ms"`
	Easing     string `yaml:"easing"`
}

// DockConfig sizes the window from the work area instead of keeping the
// geometry it had when tracked.
type DockConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Direction     string `yaml:"direction"`
	WidthPercent  int    `yaml:"width_percent"`
	HeightPercent int    `yaml:"height_percent"`
}

// EdgeTriggerConfig controls cursor-driven show/hide.
type EdgeTriggerConfig struct {
	Enabled     bool `yaml:"enabled"`
	ThresholdPx int  `yaml:"threshold_px"`
	ShowDelayMs int  `yaml:"show_delay_ms"`
	HideDelayMs int  `yaml:"hide_delay_ms"`
}

// Config holds the application configuration.
type Config struct {
	ToggleHotkey    string            `yaml:"toggle_hotkey"`
	TrackHotkey     string            `yaml:"track_hotkey"`
	Display         string            `yaml:"display,omitempty"`
	XAuthority      string            `yaml:"xauthority,omitempty"`
	LogLevel        string            `yaml:"log_level"`
	TickIntervalMs  int               `yaml:"tick_interval_ms"`
	HideOnFocusLoss bool              `yaml:"hide_on_focus_loss"`
	Animation       AnimationConfig   `yaml:"animation"`
	Dock            DockConfig        `yaml:"dock"`
	EdgeTrigger     EdgeTriggerConfig `yaml:"edge_trigger"`
}

func DefaultConfig() *Config {
	return &Config{
		ToggleHotkey:    "F8",
		TrackHotkey:     "Control-Mod1-q",
		LogLevel:        "info",
		TickIntervalMs:  16,
		HideOnFocusLoss: true,
		Animation: AnimationConfig{
			DurationMs: 200,
			Easing:     easing.Default.String(),
		},
		Dock: DockConfig{
			Enabled:       false,
			Direction:     DirectionAuto,
			WidthPercent:  100,
			HeightPercent: 40,
		},
		EdgeTrigger: EdgeTriggerConfig{
			Enabled:     true,
			ThresholdPx: 1,
			ShowDelayMs: 100,
			HideDelayMs: 300,
		},
	}
}

// TickInterval is the period of the edge-trigger poll.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// AnimationDuration is the length of one slide.
func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.Animation.DurationMs) * time.Millisecond
}

// EasingCurve returns the configured curve, or the default when the name is
// not recognised.
func (c *Config) EasingCurve() easing.Easing {
	e, err := easing.Parse(c.Animation.Easing)
	if err != nil {
		return easing.Default
	}
	return e
}

// EdgeConfig converts the edge_trigger section for the state machine.
func (c *Config) EdgeConfig() edge.Config {
	return edge.Config{
		ThresholdPx: c.EdgeTrigger.ThresholdPx,
		ShowDelay:   time.Duration(c.EdgeTrigger.ShowDelayMs) * time.Millisecond,
		HideDelay:   time.Duration(c.EdgeTrigger.HideDelayMs) * time.Millisecond,
	}
}

// FixedDirection returns the configured dock direction. ok is false when the
// direction is chosen automatically.
func (c *Config) FixedDirection() (dir geometry.Direction, ok bool) {
	if c.Dock.Direction == "" || c.Dock.Direction == DirectionAuto {
		return geometry.Left, false
	}
	dir, err := geometry.ParseDirection(c.Dock.Direction)
	if err != nil {
		return geometry.Left, false
	}
	return dir, true
}

// SlogLevel maps log_level onto slog levels.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML. Use SetValue to change a single
// key in place.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ToggleHotkey) == "" {
		return &ValidationError{Path: "toggle_hotkey", Err: fmt.Errorf("toggle_hotkey is required")}
	}
	if c.TrackHotkey != "" && c.TrackHotkey == c.ToggleHotkey {
		return &ValidationError{Path: "track_hotkey", Err: fmt.Errorf("track_hotkey must differ from toggle_hotkey")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.TickIntervalMs < 1 || c.TickIntervalMs > 1000 {
		return &ValidationError{Path: "tick_interval_ms", Err: fmt.Errorf("tick_interval_ms must be between 1 and 1000")}
	}

	if c.Animation.DurationMs < 0 || c.Animation.DurationMs > 5000 {
		return &ValidationError{Path: "animation.duration_ms", Err: fmt.Errorf("duration_ms must be between 0 and 5000")}
	}
	if _, err := easing.Parse(c.Animation.Easing); err != nil {
		return &ValidationError{Path: "animation.easing", Err: fmt.Errorf("easing must be one of: %s", strings.Join(easing.Names(), ", "))}
	}

	if c.Dock.Direction != DirectionAuto {
		if _, err := geometry.ParseDirection(c.Dock.Direction); err != nil {
			return &ValidationError{Path: "dock.direction", Err: fmt.Errorf("direction must be one of: auto, left, right, top, bottom")}
		}
	}
	if c.Dock.WidthPercent < 1 || c.Dock.WidthPercent > 100 {
		return &ValidationError{Path: "dock.width_percent", Err: fmt.Errorf("width_percent must be between 1 and 100")}
	}
	if c.Dock.HeightPercent < 1 || c.Dock.HeightPercent > 100 {
		return &ValidationError{Path: "dock.height_percent", Err: fmt.Errorf("height_percent must be between 1 and 100")}
	}

	if c.EdgeTrigger.ThresholdPx < 0 {
		return &ValidationError{Path: "edge_trigger.threshold_px", Err: fmt.Errorf("threshold_px must be >= 0")}
	}
	if c.EdgeTrigger.ShowDelayMs < 0 {
		return &ValidationError{Path: "edge_trigger.show_delay_ms", Err: fmt.Errorf("show_delay_ms must be >= 0")}
	}
	if c.EdgeTrigger.HideDelayMs < 0 {
		return &ValidationError{Path: "edge_trigger.hide_delay_ms", Err: fmt.Errorf("hide_delay_ms must be >= 0")}
	}
	return nil
}

// Warnings lists settings that are valid but probably not what the user
// wants. Validate does not report them.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Dock.Enabled && c.Dock.Direction == DirectionAuto {
		warnings = append(warnings, "dock.direction is auto; the edge is chosen from the window position at track time")
	}
	if c.EdgeTrigger.Enabled && c.EdgeTrigger.ThresholdPx > 50 {
		warnings = append(warnings, fmt.Sprintf("edge_trigger.threshold_px is %d; the window may show while the cursor is far from the edge", c.EdgeTrigger.ThresholdPx))
	}
	return warnings
}
