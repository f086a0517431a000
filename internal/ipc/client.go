package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/termdrop/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) simple(cmd CommandType) error {
	_, err := c.sendRequest(&Request{Command: cmd})
	return err
}

// Toggle slides the tracked window in or out.
func (c *Client) Toggle() error {
	return c.simple(CommandToggle)
}

// Show slides the tracked window in if it is hidden.
func (c *Client) Show() error {
	return c.simple(CommandShow)
}

// Hide slides the tracked window out if it is visible.
func (c *Client) Hide() error {
	return c.simple(CommandHide)
}

// Untrack releases the tracked window and restores its geometry.
func (c *Client) Untrack() error {
	return c.simple(CommandUntrack)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.simple(CommandReload)
}

// Track starts controlling windowID, or the focused window when it is 0.
func (c *Client) Track(windowID uint32) (*TrackData, error) {
	payload, err := json.Marshal(TrackPayload{WindowID: windowID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal track payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandTrack, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data TrackData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse track data: %w", err)
	}
	return &data, nil
}

// SetEdgeTrigger enables or disables the edge trigger; nil toggles it.
// It returns the new setting.
func (c *Client) SetEdgeTrigger(enabled *bool) (bool, error) {
	payload, err := json.Marshal(SetEdgePayload{Enabled: enabled})
	if err != nil {
		return false, fmt.Errorf("failed to marshal edge payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandSetEdge, Payload: payload})
	if err != nil {
		return false, err
	}

	var data EdgeData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return false, fmt.Errorf("failed to parse edge data: %w", err)
	}
	return data.Enabled, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
