package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/termdrop/internal/runtimepath"
)

// Controller is the daemon side of every IPC command. Implementations must
// be safe to call from multiple connection goroutines.
type Controller interface {
	Toggle() error
	Show() error
	Hide() error
	Track(windowID uint32) (TrackData, error)
	Untrack() error
	SetEdgeTrigger(enabled *bool) (bool, error)
	Reload() error
	Status() StatusData
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server on the standard socket path.
func NewServer(ctrl Controller) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, ctrl), nil
}

// NewServerAt creates a server for an explicit socket path.
func NewServerAt(socketPath string, ctrl Controller) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		startTime:  time.Now(),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandToggle:
		return okOrError(s.ctrl.Toggle(), "toggle")
	case CommandShow:
		return okOrError(s.ctrl.Show(), "show")
	case CommandHide:
		return okOrError(s.ctrl.Hide(), "hide")
	case CommandUntrack:
		return okOrError(s.ctrl.Untrack(), "untrack")
	case CommandReload:
		log.Println("IPC: Received RELOAD command")
		return okOrError(s.ctrl.Reload(), "reload config")
	case CommandTrack:
		return s.handleTrack(req.Payload)
	case CommandSetEdge:
		return s.handleSetEdge(req.Payload)
	case CommandGetStatus:
		return s.handleGetStatus()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleTrack(payload json.RawMessage) *Response {
	var req TrackPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid track payload: %v", err))
		}
	}

	data, err := s.ctrl.Track(req.WindowID)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to track window: %v", err))
	}

	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleSetEdge(payload json.RawMessage) *Response {
	var req SetEdgePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid edge payload: %v", err))
		}
	}

	enabled, err := s.ctrl.SetEdgeTrigger(req.Enabled)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set edge trigger: %v", err))
	}

	resp, _ := NewOKResponse(EdgeData{Enabled: enabled})
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := s.ctrl.Status()
	status.DaemonRunning = true
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())

	resp, _ := NewOKResponse(status)
	return resp
}

func okOrError(err error, action string) *Response {
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s: %v", action, err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
