package rc

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/gles"
)

type stubSession struct {
	backend *stubBackend

	mu    sync.Mutex
	calls []string
	data  []byte
}

func (s *stubSession) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *stubSession) RendererVersion() (int, error) { return 3, nil }
func (s *stubSession) EGLVersion() (int, int, error) { return 1, 4, nil }
func (s *stubSession) QueryEGLString(name int32) (string, error) {
	if name == egl.Vendor {
		return "stub", nil
	}
	return "", nil
}
func (s *stubSession) Configs() (*egl.ConfigTable, error) {
	return &egl.ConfigTable{
		Attribs: []int32{egl.RedSize, egl.ConfigID},
		Values:  [][]int32{{8, 1}, {5, 2}},
	}, nil
}
func (s *stubSession) CreateContext(config egl.Config, share uint32, version int) (uint32, error) {
	s.record("CreateContext")
	if config == 7 {
		return 0, nil
	}
	return 42, nil
}
func (s *stubSession) DestroyContext(handle uint32) error {
	if handle != 42 {
		return errors.New("unknown context")
	}
	return nil
}
func (s *stubSession) CreateWindowSurface(config egl.Config, width, height int) (uint32, error) {
	return uint32(width*1000 + height), nil
}
func (s *stubSession) DestroyWindowSurface(handle uint32) error { return nil }
func (s *stubSession) CreateColorBuffer(width, height int, format egl.PixelFormat) (uint32, error) {
	return uint32(format), nil
}
func (s *stubSession) CloseColorBuffer(handle uint32) error { return nil }
func (s *stubSession) MakeCurrent(ctx, draw, read uint32) (bool, error) {
	return ctx == 42, nil
}
func (s *stubSession) VertexPointer(size int, typ gles.DataType, stride int, data []byte) error {
	s.mu.Lock()
	s.data = append([]byte(nil), data...)
	s.mu.Unlock()
	s.record("VertexPointer")
	return nil
}
func (s *stubSession) NormalPointer(typ gles.DataType, stride int, data []byte) error { return nil }
func (s *stubSession) ColorPointer(size int, typ gles.DataType, stride int, data []byte) error {
	return nil
}
func (s *stubSession) TexCoordPointer(size int, typ gles.DataType, stride int, data []byte) error {
	s.record("TexCoordPointer")
	return nil
}
func (s *stubSession) ClientActiveTexture(unit int) error            { return nil }
func (s *stubSession) EnableClientState(array gles.ArrayKind) error  { return nil }
func (s *stubSession) DisableClientState(array gles.ArrayKind) error { return nil }
func (s *stubSession) PointSize(size float32) error                  { return nil }
func (s *stubSession) DrawArrays(mode gles.Primitive, first, count int) error {
	s.record("DrawArrays")
	return nil
}
func (s *stubSession) DrawElements(mode gles.Primitive, count int, typ gles.DataType, indices []byte) error {
	s.mu.Lock()
	s.data = append([]byte(nil), indices...)
	s.mu.Unlock()
	s.record("DrawElements")
	return nil
}
func (s *stubSession) GetInteger(pname uint32) (int, error) {
	if pname == gles.ParamMaxTextureUnits {
		return 4, nil
	}
	return 0, nil
}
func (s *stubSession) Close() error {
	s.backend.mu.Lock()
	s.backend.closed++
	s.backend.mu.Unlock()
	return nil
}

type stubBackend struct {
	mu       sync.Mutex
	sessions []*stubSession
	closed   int
}

func (b *stubBackend) NewSession() egl.Conn {
	s := &stubSession{backend: b}
	b.mu.Lock()
	b.sessions = append(b.sessions, s)
	b.mu.Unlock()
	return s
}

func (b *stubBackend) Status() StatusData {
	b.mu.Lock()
	defer b.mu.Unlock()
	return StatusData{RendererVersion: 3, Sessions: len(b.sessions) - b.closed}
}

func (b *stubBackend) Resources() ResourcesData {
	return ResourcesData{Resources: []Resource{{Kind: "context", Handle: 42, Session: 1}}}
}

func (b *stubBackend) RecentDraws(limit int) DrawsData {
	draws := []DrawRecord{{Call: "DrawArrays"}, {Call: "DrawElements"}}
	if limit > 0 && limit < len(draws) {
		draws = draws[len(draws)-limit:]
	}
	return DrawsData{Draws: draws}
}

func (b *stubBackend) closedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func startServer(t *testing.T) (*stubBackend, string) {
	t.Helper()
	backend := &stubBackend{}
	socketPath := filepath.Join(t.TempDir(), "rc.sock")
	srv, err := NewServer(socketPath, backend, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return backend, socketPath
}

func dialClient(t *testing.T, socketPath string) *Client {
	t.Helper()
	c, err := Dial(socketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewServerRequiresArguments(t *testing.T) {
	if _, err := NewServer("", &stubBackend{}, nil); err == nil {
		t.Fatalf("expected error for empty socket path")
	}
	if _, err := NewServer(filepath.Join(t.TempDir(), "x.sock"), nil, nil); err == nil {
		t.Fatalf("expected error for nil backend")
	}
}

func TestClientRenderControlRoundTrip(t *testing.T) {
	_, socketPath := startServer(t)
	c := dialClient(t, socketPath)

	if v, err := c.RendererVersion(); err != nil || v != 3 {
		t.Fatalf("RendererVersion = %d, %v", v, err)
	}
	major, minor, err := c.EGLVersion()
	if err != nil || major != 1 || minor != 4 {
		t.Fatalf("EGLVersion = %d.%d, %v", major, minor, err)
	}
	if s, err := c.QueryEGLString(egl.Vendor); err != nil || s != "stub" {
		t.Fatalf("QueryEGLString = %q, %v", s, err)
	}

	table, err := c.Configs()
	if err != nil {
		t.Fatalf("Configs: %v", err)
	}
	if len(table.Values) != 2 || table.Values[1][0] != 5 || table.Attribs[1] != egl.ConfigID {
		t.Fatalf("Configs = %+v", table)
	}

	h, err := c.CreateContext(0, 0, 1)
	if err != nil || h != 42 {
		t.Fatalf("CreateContext = %d, %v", h, err)
	}
	if h, err := c.CreateContext(7, 0, 1); err != nil || h != 0 {
		t.Fatalf("CreateContext(7) = %d, %v; want 0, nil", h, err)
	}
	if h, err := c.CreateWindowSurface(0, 64, 32); err != nil || h != 64032 {
		t.Fatalf("CreateWindowSurface = %d, %v", h, err)
	}
	if h, err := c.CreateColorBuffer(4, 4, egl.FormatRGB565); err != nil || h != uint32(egl.FormatRGB565) {
		t.Fatalf("CreateColorBuffer = %d, %v", h, err)
	}
	if ok, err := c.MakeCurrent(42, 1, 1); err != nil || !ok {
		t.Fatalf("MakeCurrent(42) = %v, %v", ok, err)
	}
	if ok, err := c.MakeCurrent(9, 1, 1); err != nil || ok {
		t.Fatalf("MakeCurrent(9) = %v, %v; want false", ok, err)
	}
}

func TestClientHostErrorsAreReturned(t *testing.T) {
	_, socketPath := startServer(t)
	c := dialClient(t, socketPath)

	err := c.DestroyContext(5)
	if err == nil || !strings.Contains(err.Error(), "unknown context") {
		t.Fatalf("DestroyContext(5) error = %v", err)
	}
	// The connection stays usable after an error reply.
	if err := c.DestroyContext(42); err != nil {
		t.Fatalf("DestroyContext(42): %v", err)
	}
}

func TestClientDispatchCarriesData(t *testing.T) {
	backend, socketPath := startServer(t)
	c := dialClient(t, socketPath)

	vertices := []byte{0, 0, 128, 63, 0, 0, 0, 64}
	if err := c.VertexPointer(2, gles.Float, 0, vertices); err != nil {
		t.Fatalf("VertexPointer: %v", err)
	}
	indices := []byte{0, 0, 1, 0, 2, 0}
	if err := c.DrawElements(gles.Triangles, 3, gles.UnsignedShort, indices); err != nil {
		t.Fatalf("DrawElements: %v", err)
	}
	if v, err := c.GetInteger(gles.ParamMaxTextureUnits); err != nil || v != 4 {
		t.Fatalf("GetInteger = %d, %v", v, err)
	}

	backend.mu.Lock()
	s := backend.sessions[0]
	backend.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !bytes.Equal(s.data, indices) {
		t.Fatalf("indices = %v, want %v", s.data, indices)
	}
	want := []string{"VertexPointer", "DrawElements"}
	if strings.Join(s.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", s.calls, want)
	}
}

func TestClientSessionsAreIsolated(t *testing.T) {
	backend, socketPath := startServer(t)
	a := dialClient(t, socketPath)
	b := dialClient(t, socketPath)

	if err := a.DrawArrays(gles.Points, 0, 1); err != nil {
		t.Fatalf("DrawArrays: %v", err)
	}
	if err := b.TexCoordPointer(2, gles.Float, 0, []byte{1}); err != nil {
		t.Fatalf("TexCoordPointer: %v", err)
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(backend.sessions))
	}
	for _, s := range backend.sessions {
		s.mu.Lock()
		n := len(s.calls)
		s.mu.Unlock()
		if n != 1 {
			t.Fatalf("session made %d calls, want one call each", n)
		}
	}
}

func TestSessionClosedOnDisconnect(t *testing.T) {
	backend, socketPath := startServer(t)
	c, err := Dial(socketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if _, err := c.RendererVersion(); err != nil {
		t.Fatalf("RendererVersion: %v", err)
	}
	c.Close()

	deadline := time.Now().Add(2 * time.Second)
	for backend.closedCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session was not closed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := c.RendererVersion(); err == nil {
		t.Fatalf("expected error calling a closed client")
	}
}

func TestInspectionQueries(t *testing.T) {
	_, socketPath := startServer(t)
	c := dialClient(t, socketPath)

	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.RendererVersion != 3 || status.Sessions != 1 {
		t.Fatalf("status = %+v", status)
	}

	res, err := c.ListResources()
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(res.Resources) != 1 || res.Resources[0].Handle != 42 {
		t.Fatalf("resources = %+v", res)
	}

	draws, err := c.RecentDraws(1)
	if err != nil {
		t.Fatalf("RecentDraws: %v", err)
	}
	if len(draws.Draws) != 1 || draws.Draws[0].Call != "DrawElements" {
		t.Fatalf("draws = %+v", draws)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, socketPath := startServer(t)
	c := dialClient(t, socketPath)

	err := c.call(CommandType("BOGUS"), nil, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("err = %v, want unknown command", err)
	}
	if err := c.call(CommandCreateContext, nil, nil); err == nil || !strings.Contains(err.Error(), "missing payload") {
		t.Fatalf("err = %v, want missing payload", err)
	}
}
