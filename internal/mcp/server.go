package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/rc"
)

const (
	ServerName    = "rcgl"
	ServerVersion = "0.1.0"
)

// Inspector is the part of the rc client the tools query.
type Inspector interface {
	GetStatus() (*rc.StatusData, error)
	ListResources() (*rc.ResourcesData, error)
	RecentDraws(limit int) (*rc.DrawsData, error)
	Configs() (*egl.ConfigTable, error)
	Close() error
}

// Server is the MCP server exposing host inspection tools.
type Server struct {
	mcpServer *mcpsdk.Server
	dial      func() (Inspector, error)
	logger    *slog.Logger
}

// NewServer creates a server that opens a host connection per tool call.
func NewServer(socketPath string, logger *slog.Logger) *Server {
	return newServer(func() (Inspector, error) {
		client, err := rc.Dial(socketPath)
		if err != nil {
			return nil, err
		}
		return client, nil
	}, logger)
}

func newServer(dial func() (Inspector, error), logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{dial: dial, logger: logger}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "host_status",
		Description: "Report the rendering host's renderer version, connected sessions, live contexts, surfaces and color buffers, and the total number of draws received.",
	}, s.handleHostStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_resources",
		Description: "List every live host object (contexts, surfaces, color buffers) with its handle and owning session. Optionally filter by kind or session.",
	}, s.handleListResources)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "recent_draws",
		Description: "Return the most recent draw calls the host received, oldest first, including mode, vertex count, point size and the enabled attribute arrays.",
	}, s.handleRecentDraws)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_configs",
		Description: "List the host's EGL configs with named attributes and the derived color buffer format.",
	}, s.handleListConfigs)
}

// withHost runs fn on a fresh host connection.
func (s *Server) withHost(tool string, fn func(Inspector) error) error {
	client, err := s.dial()
	if err != nil {
		s.logger.Warn("host connection failed", "tool", tool, "error", err)
		return fmt.Errorf("%s: %w", tool, err)
	}
	defer client.Close()

	if err := fn(client); err != nil {
		s.logger.Warn("host query failed", "tool", tool, "error", err)
		return fmt.Errorf("%s: %w", tool, err)
	}
	return nil
}
