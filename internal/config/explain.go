package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	toggle_hotkey
//	track_hotkey
//	display
//	xauthority
//	log_level
//	tick_interval_ms
//	hide_on_focus_loss
//	animation.duration_ms
//	animation.easing
//	dock.enabled
//	dock.direction
//	edge_trigger.enabled
//	edge_trigger.show_delay_ms
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	leaf := ""
	if len(parts) == 2 {
		leaf = parts[1]
	}

	switch parts[0] {
	case "toggle_hotkey":
		return scalar(path, leaf, cfg.ToggleHotkey)
	case "track_hotkey":
		return scalar(path, leaf, cfg.TrackHotkey)
	case "display":
		return scalar(path, leaf, cfg.Display)
	case "xauthority":
		return scalar(path, leaf, cfg.XAuthority)
	case "log_level":
		return scalar(path, leaf, cfg.LogLevel)
	case "tick_interval_ms":
		return scalar(path, leaf, cfg.TickIntervalMs)
	case "hide_on_focus_loss":
		return scalar(path, leaf, cfg.HideOnFocusLoss)
	case "animation":
		switch leaf {
		case "":
			return cfg.Animation, nil
		case "duration_ms":
			return cfg.Animation.DurationMs, nil
		case "easing":
			return cfg.Animation.Easing, nil
		}
	case "dock":
		switch leaf {
		case "":
			return cfg.Dock, nil
		case "enabled":
			return cfg.Dock.Enabled, nil
		case "direction":
			return cfg.Dock.Direction, nil
		case "width_percent":
			return cfg.Dock.WidthPercent, nil
		case "height_percent":
			return cfg.Dock.HeightPercent, nil
		}
	case "edge_trigger":
		switch leaf {
		case "":
			return cfg.EdgeTrigger, nil
		case "enabled":
			return cfg.EdgeTrigger.Enabled, nil
		case "threshold_px":
			return cfg.EdgeTrigger.ThresholdPx, nil
		case "show_delay_ms":
			return cfg.EdgeTrigger.ShowDelayMs, nil
		case "hide_delay_ms":
			return cfg.EdgeTrigger.HideDelayMs, nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}

func scalar(path, leaf string, v any) (any, error) {
	if leaf != "" {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	return v, nil
}
