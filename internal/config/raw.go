package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawAnimation struct {
	DurationMs *int    `yaml:"duration_ms"`
	Easing     *string `yaml:"easing"`
}

type RawDock struct {
	Enabled       *bool   `yaml:"enabled"`
	Direction     *string `yaml:"direction"`
	WidthPercent  *int    `yaml:"width_percent"`
	HeightPercent *int    `yaml:"height_percent"`
}

type RawEdgeTrigger struct {
	Enabled     *bool `yaml:"enabled"`
	ThresholdPx *int  `yaml:"threshold_px"`
	ShowDelayMs *int  `yaml:"show_delay_ms"`
	HideDelayMs *int  `yaml:"hide_delay_ms"`
}

type RawConfig struct {
	Include         IncludeList     `yaml:"include"`
	ToggleHotkey    *string         `yaml:"toggle_hotkey"`
	TrackHotkey     *string         `yaml:"track_hotkey"`
	Display         *string         `yaml:"display"`
	XAuthority      *string         `yaml:"xauthority"`
	LogLevel        *string         `yaml:"log_level"`
	TickIntervalMs  *int            `yaml:"tick_interval_ms"`
	HideOnFocusLoss *bool           `yaml:"hide_on_focus_loss"`
	Animation       *RawAnimation   `yaml:"animation"`
	Dock            *RawDock        `yaml:"dock"`
	EdgeTrigger     *RawEdgeTrigger `yaml:"edge_trigger"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	out.ToggleHotkey = pick(out.ToggleHotkey, overlay.ToggleHotkey)
	out.TrackHotkey = pick(out.TrackHotkey, overlay.TrackHotkey)
	out.Display = pick(out.Display, overlay.Display)
	out.XAuthority = pick(out.XAuthority, overlay.XAuthority)
	out.LogLevel = pick(out.LogLevel, overlay.LogLevel)
	out.TickIntervalMs = pick(out.TickIntervalMs, overlay.TickIntervalMs)
	out.HideOnFocusLoss = pick(out.HideOnFocusLoss, overlay.HideOnFocusLoss)

	if overlay.Animation != nil {
		merged := RawAnimation{}
		if out.Animation != nil {
			merged = *out.Animation
		}
		merged.DurationMs = pick(merged.DurationMs, overlay.Animation.DurationMs)
		merged.Easing = pick(merged.Easing, overlay.Animation.Easing)
		out.Animation = &merged
	}

	if overlay.Dock != nil {
		merged := RawDock{}
		if out.Dock != nil {
			merged = *out.Dock
		}
		merged.Enabled = pick(merged.Enabled, overlay.Dock.Enabled)
		merged.Direction = pick(merged.Direction, overlay.Dock.Direction)
		merged.WidthPercent = pick(merged.WidthPercent, overlay.Dock.WidthPercent)
		merged.HeightPercent = pick(merged.HeightPercent, overlay.Dock.HeightPercent)
		out.Dock = &merged
	}

	if overlay.EdgeTrigger != nil {
		merged := RawEdgeTrigger{}
		if out.EdgeTrigger != nil {
			merged = *out.EdgeTrigger
		}
		merged.Enabled = pick(merged.Enabled, overlay.EdgeTrigger.Enabled)
		merged.ThresholdPx = pick(merged.ThresholdPx, overlay.EdgeTrigger.ThresholdPx)
		merged.ShowDelayMs = pick(merged.ShowDelayMs, overlay.EdgeTrigger.ShowDelayMs)
		merged.HideDelayMs = pick(merged.HideDelayMs, overlay.EdgeTrigger.HideDelayMs)
		out.EdgeTrigger = &merged
	}

	return out
}

// pick returns overlay when it is set, otherwise base.
func pick[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}
