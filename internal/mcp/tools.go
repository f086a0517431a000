package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/termdrop/internal/ipc"
)

func (s *Server) handleToggle(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.Toggle(); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true, Message: "toggled"}, nil
}

func (s *Server) handleShow(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.Show(); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true, Message: "shown"}, nil
}

func (s *Server) handleHide(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.Hide(); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true, Message: "hidden"}, nil
}

func (s *Server) handleTrack(_ context.Context, _ *mcpsdk.CallToolRequest, args TrackWindowInput) (*mcpsdk.CallToolResult, TrackWindowOutput, error) {
	id, err := ipc.ParseWindowID(args.WindowID)
	if err != nil {
		return nil, TrackWindowOutput{}, err
	}
	data, err := s.client.Track(id)
	if err != nil {
		return nil, TrackWindowOutput{}, err
	}
	return nil, TrackWindowOutput{
		WindowID:  ipc.FormatWindowID(data.WindowID),
		Title:     data.Title,
		Direction: data.Direction,
		Bounds:    &data.Bounds,
	}, nil
}

func (s *Server) handleUntrack(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.Untrack(); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true, Message: "window restored"}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	out := StatusOutput{
		Tracking:      status.Tracking,
		Title:         status.Title,
		Visible:       status.Visible,
		Direction:     status.Direction,
		Bounds:        status.Bounds,
		EdgeTrigger:   status.EdgeTrigger,
		EdgePhase:     status.EdgePhase,
		UptimeSeconds: status.UptimeSeconds,
	}
	if status.Tracking {
		out.WindowID = ipc.FormatWindowID(status.WindowID)
	}
	return nil, out, nil
}

func (s *Server) handleSetEdgeTrigger(_ context.Context, _ *mcpsdk.CallToolRequest, args SetEdgeTriggerInput) (*mcpsdk.CallToolResult, SetEdgeTriggerOutput, error) {
	enabled, err := s.client.SetEdgeTrigger(args.Enabled)
	if err != nil {
		return nil, SetEdgeTriggerOutput{}, err
	}
	return nil, SetEdgeTriggerOutput{Enabled: enabled}, nil
}
