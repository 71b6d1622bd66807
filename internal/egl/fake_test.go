package egl

import (
	"fmt"

	"github.com/1broseidon/rcgl/internal/gles"
	"github.com/1broseidon/rcgl/internal/platform"
)

// fakeHost is a scripted host recording every render-control call.
type fakeHost struct {
	calls []string

	eglMajor, eglMinor int
	vendor             string
	extensions         string
	table              *ConfigTable

	nextHandle      uint32
	failContext     bool
	failSurface     bool
	failColorBuffer bool
	refuseCurrent   bool
	closed          bool

	// onCall, when set, runs inside every host call after it is recorded.
	onCall func(call string)
}

var _ Conn = (*fakeHost)(nil)

// defaultTable has a window+pbuffer RGBA8888 config, a window-only RGB565
// config and a pbuffer config with an unsupported channel layout.
func defaultTable() *ConfigTable {
	return &ConfigTable{
		Attribs: []int32{ConfigID, RedSize, GreenSize, BlueSize, AlphaSize, SurfaceType},
		Values: [][]int32{
			{1, 8, 8, 8, 8, WindowBit | PbufferBit},
			{2, 5, 6, 5, 0, WindowBit},
			{3, 3, 3, 2, 0, PbufferBit},
		},
	}
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		eglMajor:   1,
		eglMinor:   4,
		vendor:     "test host",
		table:      defaultTable(),
		nextHandle: 100,
	}
}

func (f *fakeHost) record(format string, args ...any) {
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	if f.onCall != nil {
		f.onCall(call)
	}
}

func (f *fakeHost) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeHost) handle() uint32 {
	f.nextHandle++
	return f.nextHandle
}

func (f *fakeHost) RendererVersion() (int, error) {
	f.record("RendererVersion")
	return 1, nil
}

func (f *fakeHost) EGLVersion() (int, int, error) {
	f.record("EGLVersion")
	return f.eglMajor, f.eglMinor, nil
}

func (f *fakeHost) QueryEGLString(name int32) (string, error) {
	f.record("QueryEGLString(0x%x)", name)
	switch name {
	case Vendor:
		return f.vendor, nil
	case Extensions:
		return f.extensions, nil
	}
	return "", nil
}

func (f *fakeHost) Configs() (*ConfigTable, error) {
	f.record("Configs")
	return f.table, nil
}

func (f *fakeHost) CreateContext(config Config, share uint32, version int) (uint32, error) {
	f.record("CreateContext(%d,%d,%d)", config, share, version)
	if f.failContext {
		return 0, nil
	}
	return f.handle(), nil
}

func (f *fakeHost) DestroyContext(handle uint32) error {
	f.record("DestroyContext(%d)", handle)
	return nil
}

func (f *fakeHost) CreateWindowSurface(config Config, width, height int) (uint32, error) {
	f.record("CreateWindowSurface(%d,%d,%d)", config, width, height)
	if f.failSurface {
		return 0, nil
	}
	return f.handle(), nil
}

func (f *fakeHost) DestroyWindowSurface(handle uint32) error {
	f.record("DestroyWindowSurface(%d)", handle)
	return nil
}

func (f *fakeHost) CreateColorBuffer(width, height int, format PixelFormat) (uint32, error) {
	f.record("CreateColorBuffer(%d,%d,%s)", width, height, format)
	if f.failColorBuffer {
		return 0, nil
	}
	return f.handle(), nil
}

func (f *fakeHost) CloseColorBuffer(handle uint32) error {
	f.record("CloseColorBuffer(%d)", handle)
	return nil
}

func (f *fakeHost) MakeCurrent(ctx, draw, read uint32) (bool, error) {
	f.record("MakeCurrent(%d,%d,%d)", ctx, draw, read)
	return !f.refuseCurrent, nil
}

func (f *fakeHost) VertexPointer(int, gles.DataType, int, []byte) error   { return nil }
func (f *fakeHost) NormalPointer(gles.DataType, int, []byte) error        { return nil }
func (f *fakeHost) ColorPointer(int, gles.DataType, int, []byte) error    { return nil }
func (f *fakeHost) TexCoordPointer(int, gles.DataType, int, []byte) error { return nil }
func (f *fakeHost) ClientActiveTexture(int) error                         { return nil }
func (f *fakeHost) EnableClientState(gles.ArrayKind) error                { return nil }
func (f *fakeHost) DisableClientState(gles.ArrayKind) error               { return nil }
func (f *fakeHost) PointSize(float32) error                               { return nil }
func (f *fakeHost) DrawArrays(gles.Primitive, int, int) error {
	f.record("DrawArrays")
	return nil
}
func (f *fakeHost) DrawElements(gles.Primitive, int, gles.DataType, []byte) error {
	f.record("DrawElements")
	return nil
}
func (f *fakeHost) GetInteger(pname uint32) (int, error) { return 2, nil }

func (f *fakeHost) Close() error {
	f.closed = true
	return nil
}

// fakeWindow is a NativeWindow with a configurable magic.
type fakeWindow struct {
	platform.StaticWindow
	magic uint32
}

func (w *fakeWindow) Magic() uint32 { return w.magic }

func newWindow(w, h int) *fakeWindow {
	return &fakeWindow{StaticWindow: platform.StaticWindow{W: w, H: h}, magic: platform.NativeWindowMagic}
}

// setup returns an initialized display on a fresh registry.
func setup(host *fakeHost) (*Registry, *Thread, *Display) {
	reg := NewRegistry(func() (Conn, error) { return host, nil }, Options{})
	t := reg.NewThread()
	dpy := reg.GetDisplay(DefaultDisplay)
	if _, _, ok := t.Initialize(dpy); !ok {
		panic("initialize failed")
	}
	host.calls = nil
	return reg, t, dpy
}
