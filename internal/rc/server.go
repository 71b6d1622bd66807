package rc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/gles"
)

// Backend executes commands on behalf of connected clients. Each client
// connection gets its own session; closing the session releases whatever
// the client left behind.
type Backend interface {
	NewSession() egl.Conn
	Status() StatusData
	Resources() ResourcesData
	RecentDraws(limit int) DrawsData
}

// Server accepts client connections on a unix socket and serves each on
// its own goroutine
type Server struct {
	socketPath string
	listener   net.Listener
	backend    Backend
	logger     *slog.Logger

	shutdownMu   sync.Mutex
	shuttingDown bool
	conns        map[net.Conn]struct{}
	wg           sync.WaitGroup
}

// NewServer creates a new server for backend on socketPath
func NewServer(socketPath string, backend Backend, logger *slog.Logger) (*Server, error) {
	if socketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// Remove a stale socket left by a previous host
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		backend:    backend,
		logger:     logger,
		conns:      make(map[net.Conn]struct{}),
	}, nil
}

// SocketPath returns the path the server listens on
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create host socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("host listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}

		s.shutdownMu.Lock()
		if s.shuttingDown {
			s.shutdownMu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.shutdownMu.Unlock()

		go s.handleConnection(conn)
	}
}

// handleConnection serves requests from one client until it disconnects
func (s *Server) handleConnection(conn net.Conn) {
	session := s.backend.NewSession()
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Warn("session close failed", "error", err)
		}
		conn.Close()
		s.shutdownMu.Lock()
		delete(s.conns, conn)
		s.shutdownMu.Unlock()
		s.wg.Done()
	}()

	reader := bufio.NewReader(conn)
	for {
		data, err := reader.ReadBytes('\n')
		if len(data) == 0 {
			if err != nil && err != io.EOF && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("read failed", "error", err)
			}
			return
		}

		var resp *Response
		req, perr := ParseRequest(data)
		if perr != nil {
			resp = NewErrorResponse(fmt.Sprintf("invalid request: %v", perr))
		} else {
			resp = s.handleCommand(session, req)
		}

		respData, merr := resp.Marshal()
		if merr != nil {
			s.logger.Error("failed to marshal response", "error", merr)
			return
		}
		respData = append(respData, '\n')
		if _, werr := conn.Write(respData); werr != nil {
			s.logger.Warn("failed to send response", "error", werr)
			return
		}

		if err != nil {
			return
		}
	}
}

func decode(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func reply(data interface{}, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// handleCommand runs one request against the client's session
func (s *Server) handleCommand(session egl.Conn, req *Request) *Response {
	switch req.Command {
	case CommandRendererVersion:
		v, err := session.RendererVersion()
		return reply(IntData{Value: v}, err)
	case CommandEGLVersion:
		major, minor, err := session.EGLVersion()
		return reply(VersionData{Major: major, Minor: minor}, err)
	case CommandQueryEGLString:
		var p NamePayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		v, err := session.QueryEGLString(p.Name)
		return reply(StringData{Value: v}, err)
	case CommandGetConfigs:
		table, err := session.Configs()
		return reply(table, err)

	case CommandCreateContext:
		var p CreateContextPayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		h, err := session.CreateContext(egl.Config(p.Config), p.Share, p.Version)
		return reply(HandleData{Handle: h}, err)
	case CommandDestroyContext:
		var p HandlePayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		return reply(nil, session.DestroyContext(p.Handle))
	case CommandCreateWindowSurface:
		var p CreateWindowSurfacePayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		h, err := session.CreateWindowSurface(egl.Config(p.Config), p.Width, p.Height)
		return reply(HandleData{Handle: h}, err)
	case CommandDestroyWindowSurface:
		var p HandlePayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		return reply(nil, session.DestroyWindowSurface(p.Handle))
	case CommandCreateColorBuffer:
		var p CreateColorBufferPayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		h, err := session.CreateColorBuffer(p.Width, p.Height, egl.PixelFormat(p.Format))
		return reply(HandleData{Handle: h}, err)
	case CommandCloseColorBuffer:
		var p HandlePayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		return reply(nil, session.CloseColorBuffer(p.Handle))
	case CommandMakeCurrent:
		var p MakeCurrentPayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		ok, err := session.MakeCurrent(p.Context, p.Draw, p.Read)
		return reply(BoolData{OK: ok}, err)

	case CommandVertexPointer, CommandNormalPointer, CommandColorPointer, CommandTexCoordPointer:
		var p PointerPayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		return reply(nil, s.pointer(session, req.Command, p))
	case CommandClientActiveTexture:
		var p UnitPayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		return reply(nil, session.ClientActiveTexture(p.Unit))
	case CommandEnableClientState, CommandDisableClientState:
		var p ArrayPayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		if req.Command == CommandEnableClientState {
			return reply(nil, session.EnableClientState(gles.ArrayKind(p.Array)))
		}
		return reply(nil, session.DisableClientState(gles.ArrayKind(p.Array)))
	case CommandPointSize:
		var p PointSizePayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		return reply(nil, session.PointSize(p.Size))
	case CommandDrawArrays:
		var p DrawArraysPayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		return reply(nil, session.DrawArrays(gles.Primitive(p.Mode), p.First, p.Count))
	case CommandDrawElements:
		var p DrawElementsPayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		return reply(nil, session.DrawElements(gles.Primitive(p.Mode), p.Count, gles.DataType(p.Type), p.Indices))
	case CommandGetInteger:
		var p GetIntegerPayload
		if err := decode(req.Payload, &p); err != nil {
			return reply(nil, err)
		}
		v, err := session.GetInteger(p.Pname)
		return reply(IntData{Value: v}, err)

	case CommandGetStatus:
		return reply(s.backend.Status(), nil)
	case CommandListResources:
		return reply(s.backend.Resources(), nil)
	case CommandRecentDraws:
		var p RecentDrawsPayload
		if len(req.Payload) > 0 {
			if err := decode(req.Payload, &p); err != nil {
				return reply(nil, err)
			}
		}
		return reply(s.backend.RecentDraws(p.Limit), nil)
	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func (s *Server) pointer(session egl.Conn, cmd CommandType, p PointerPayload) error {
	typ := gles.DataType(p.Type)
	switch cmd {
	case CommandVertexPointer:
		return session.VertexPointer(p.Size, typ, p.Stride, p.Data)
	case CommandNormalPointer:
		return session.NormalPointer(typ, p.Stride, p.Data)
	case CommandColorPointer:
		return session.ColorPointer(p.Size, typ, p.Stride, p.Data)
	default:
		return session.TexCoordPointer(p.Size, typ, p.Stride, p.Data)
	}
}

// Stop closes the listener and every client connection, then waits for
// the sessions to be released
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	for conn := range s.conns {
		conn.Close()
	}
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
