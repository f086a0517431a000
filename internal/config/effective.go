package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw over the defaults. Validation is left to
// the caller.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.ToggleHotkey != nil {
		cfg.ToggleHotkey = *raw.ToggleHotkey
	}
	if raw.TrackHotkey != nil {
		cfg.TrackHotkey = *raw.TrackHotkey
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	cfg.TickIntervalMs = derefInt(raw.TickIntervalMs, cfg.TickIntervalMs)
	if raw.HideOnFocusLoss != nil {
		cfg.HideOnFocusLoss = *raw.HideOnFocusLoss
	}

	if a := raw.Animation; a != nil {
		cfg.Animation.DurationMs = derefInt(a.DurationMs, cfg.Animation.DurationMs)
		if a.Easing != nil {
			cfg.Animation.Easing = *a.Easing
		}
	}

	if d := raw.Dock; d != nil {
		if d.Enabled != nil {
			cfg.Dock.Enabled = *d.Enabled
		}
		if d.Direction != nil {
			cfg.Dock.Direction = *d.Direction
		}
		cfg.Dock.WidthPercent = derefInt(d.WidthPercent, cfg.Dock.WidthPercent)
		cfg.Dock.HeightPercent = derefInt(d.HeightPercent, cfg.Dock.HeightPercent)
	}

	if e := raw.EdgeTrigger; e != nil {
		if e.Enabled != nil {
			cfg.EdgeTrigger.Enabled = *e.Enabled
		}
		cfg.EdgeTrigger.ThresholdPx = derefInt(e.ThresholdPx, cfg.EdgeTrigger.ThresholdPx)
		cfg.EdgeTrigger.ShowDelayMs = derefInt(e.ShowDelayMs, cfg.EdgeTrigger.ShowDelayMs)
		cfg.EdgeTrigger.HideDelayMs = derefInt(e.HideDelayMs, cfg.EdgeTrigger.HideDelayMs)
	}

	return cfg
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
