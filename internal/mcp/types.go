package mcp

import "github.com/1broseidon/termdrop/internal/ipc"

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}

// ActionOutput is returned by tools that only perform an action.
type ActionOutput struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// TrackWindowInput is the input for the track_window tool.
type TrackWindowInput struct {
	WindowID string `json:"window_id,omitempty" jsonschema:"X11 window id in decimal or 0x hex (default: the focused window)"`
}

// TrackWindowOutput is the output for the track_window tool.
type TrackWindowOutput struct {
	WindowID  string        `json:"window_id"`
	Title     string        `json:"title"`
	Direction string        `json:"direction"`
	Bounds    *ipc.RectData `json:"bounds,omitempty"`
}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Tracking      bool          `json:"tracking"`
	WindowID      string        `json:"window_id,omitempty"`
	Title         string        `json:"title,omitempty"`
	Visible       bool          `json:"visible"`
	Direction     string        `json:"direction,omitempty"`
	Bounds        *ipc.RectData `json:"bounds,omitempty"`
	EdgeTrigger   bool          `json:"edge_trigger"`
	EdgePhase     string        `json:"edge_phase"`
	UptimeSeconds int64         `json:"uptime_seconds"`
}

// SetEdgeTriggerInput is the input for the set_edge_trigger tool.
type SetEdgeTriggerInput struct {
	Enabled *bool `json:"enabled,omitempty" jsonschema:"true to enable, false to disable; omit to toggle"`
}

// SetEdgeTriggerOutput is the output for the set_edge_trigger tool.
type SetEdgeTriggerOutput struct {
	Enabled bool `json:"enabled"`
}
