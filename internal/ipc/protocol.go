package ipc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandToggle    CommandType = "TOGGLE"
	CommandShow      CommandType = "SHOW"
	CommandHide      CommandType = "HIDE"
	CommandTrack     CommandType = "TRACK"
	CommandUntrack   CommandType = "UNTRACK"
	CommandGetStatus CommandType = "GET_STATUS"
	CommandSetEdge   CommandType = "SET_EDGE"
	CommandReload    CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// RectData is a window rectangle in screen coordinates.
type RectData struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool      `json:"daemon_running"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Tracking      bool      `json:"tracking"`
	WindowID      uint32    `json:"window_id,omitempty"`
	Title         string    `json:"title,omitempty"`
	Visible       bool      `json:"visible"`
	Direction     string    `json:"direction,omitempty"`
	Bounds        *RectData `json:"bounds,omitempty"`
	EdgeTrigger   bool      `json:"edge_trigger"`
	EdgePhase     string    `json:"edge_phase"`
}

// TrackPayload is the payload for TRACK. A zero WindowID tracks the
// currently focused window.
type TrackPayload struct {
	WindowID uint32 `json:"window_id,omitempty"`
}

// TrackData is returned by TRACK.
type TrackData struct {
	WindowID  uint32   `json:"window_id"`
	Title     string   `json:"title"`
	Direction string   `json:"direction"`
	Bounds    RectData `json:"bounds"`
}

// SetEdgePayload is the payload for SET_EDGE. A nil Enabled flips the
// current setting.
type SetEdgePayload struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// EdgeData is returned by SET_EDGE.
type EdgeData struct {
	Enabled bool `json:"enabled"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// ParseWindowID accepts an X11 window id in decimal or 0x-prefixed hex.
// An empty string yields 0, which TRACK reads as the focused window.
func ParseWindowID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}

// FormatWindowID renders id the way xprop and wmctrl print it.
func FormatWindowID(id uint32) string {
	return fmt.Sprintf("0x%x", id)
}
