package egl

import (
	"github.com/1broseidon/rcgl/internal/platform"
)

// SurfaceKind tells window surfaces from offscreen ones.
type SurfaceKind int

const (
	WindowSurface SurfaceKind = iota
	PbufferSurface
)

func (k SurfaceKind) String() string {
	switch k {
	case WindowSurface:
		return "window"
	case PbufferSurface:
		return "pbuffer"
	default:
		return "unknown"
	}
}

// Surface is a host-backed rendering surface. Window surfaces hold a
// reference on their native window; pbuffer surfaces own an extra host
// color buffer. handle and colorBuffer are zero together or live together.
type Surface struct {
	kind   SurfaceKind
	dpy    *Display
	config Config
	valid  bool
	handle uint32

	width, height int

	window platform.NativeWindow

	format      PixelFormat
	colorBuffer uint32
}

// Kind returns the surface variant.
func (s *Surface) Kind() SurfaceKind { return s.kind }

// Handle returns the host surface handle.
func (s *Surface) Handle() uint32 { return s.handle }

// ColorBuffer returns the host color buffer of a pbuffer surface.
func (s *Surface) ColorBuffer() uint32 { return s.colorBuffer }

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Format returns the pixel format of a pbuffer surface.
func (s *Surface) Format() PixelFormat { return s.format }

// create allocates the host resources of s.
func (s *Surface) create(t *Thread, h Host) bool {
	logger := t.reg.logger
	handle, err := h.CreateWindowSurface(s.config, s.width, s.height)
	if err != nil {
		logger.Error("create window surface failed", "kind", s.kind.String(), "error", err)
		handle = 0
	}
	if handle == 0 {
		logger.Error("host returned no surface", "kind", s.kind.String(), "width", s.width, "height", s.height)
		return false
	}

	switch s.kind {
	case PbufferSurface:
		cb, err := h.CreateColorBuffer(s.width, s.height, s.format)
		if err != nil {
			logger.Error("create color buffer failed", "error", err)
			cb = 0
		}
		if cb == 0 {
			logger.Error("host returned no color buffer", "width", s.width, "height", s.height, "format", s.format.String())
			if err := h.DestroyWindowSurface(handle); err != nil {
				logger.Warn("destroy window surface failed", "handle", handle, "error", err)
			}
			return false
		}
		s.colorBuffer = cb
	}

	s.handle = handle
	s.valid = true
	return true
}

// destroy releases the host resources of s. It fails without a remote call
// when the handles are already zero.
func (s *Surface) destroy(t *Thread, h Host) bool {
	logger := t.reg.logger
	switch s.kind {
	case WindowSurface:
		if s.handle == 0 {
			logger.Error("destroy called on surface without host handle")
			return false
		}
		if err := h.DestroyWindowSurface(s.handle); err != nil {
			logger.Warn("destroy window surface failed", "handle", s.handle, "error", err)
		}
		s.handle = 0
		if s.window != nil {
			s.window.Release()
			s.window = nil
		}
	case PbufferSurface:
		if s.handle == 0 || s.colorBuffer == 0 {
			logger.Error("destroy called on surface without host handle")
			return false
		}
		if err := h.DestroyWindowSurface(s.handle); err != nil {
			logger.Warn("destroy window surface failed", "handle", s.handle, "error", err)
		}
		if err := h.CloseColorBuffer(s.colorBuffer); err != nil {
			logger.Warn("close color buffer failed", "handle", s.colorBuffer, "error", err)
		}
		s.handle = 0
		s.colorBuffer = 0
	}
	s.valid = false
	return true
}

// surfaceTypeAllows checks the SurfaceType bits of cfg.
func (t *Thread) surfaceTypeAllows(dpy *Display, cfg Config, bit int32) bool {
	st, ok := dpy.ConfigAttrib(cfg, SurfaceType)
	if !ok || st&bit == 0 {
		t.setError(BadMatch)
		return false
	}
	return true
}

// CreateWindowSurface creates a surface rendering into win. The surface
// size is taken from the window at creation time.
func (t *Thread) CreateWindowSurface(dpy *Display, cfg Config, win platform.NativeWindow, attribs []int32) *Surface {
	if !t.checkDisplay(dpy, true) || !t.checkConfig(dpy, cfg) {
		return nil
	}
	if !t.surfaceTypeAllows(dpy, cfg, WindowBit) {
		return nil
	}
	if win == nil || win.Magic() != platform.NativeWindowMagic {
		t.setError(BadNativeWindow)
		return nil
	}

	win.Acquire()
	s := &Surface{
		kind:   WindowSurface,
		dpy:    dpy,
		config: cfg,
		window: win,
		width:  win.Width(),
		height: win.Height(),
	}

	h, ok := t.host()
	if !ok {
		win.Release()
		t.setError(BadAlloc)
		return nil
	}
	if !s.create(t, h) {
		win.Release()
		t.setError(BadAlloc)
		return nil
	}
	return s
}

// CreatePbufferSurface creates an offscreen surface sized by the Width and
// Height entries of attribs.
func (t *Thread) CreatePbufferSurface(dpy *Display, cfg Config, attribs []int32) *Surface {
	if !t.checkDisplay(dpy, true) || !t.checkConfig(dpy, cfg) {
		return nil
	}
	if !t.surfaceTypeAllows(dpy, cfg, PbufferBit) {
		return nil
	}

	var w, h int
	attribPairs(attribs, func(key, value int32) {
		switch key {
		case Width:
			w = int(value)
		case Height:
			h = int(value)
		}
	})

	format, ok := dpy.ConfigPixelFormat(cfg)
	if !ok {
		t.setError(BadMatch)
		return nil
	}

	s := &Surface{
		kind:   PbufferSurface,
		dpy:    dpy,
		config: cfg,
		width:  w,
		height: h,
		format: format,
	}

	conn, ok := t.host()
	if !ok {
		t.setError(BadAlloc)
		return nil
	}
	if !s.create(t, conn) {
		t.setError(BadAlloc)
		return nil
	}
	return s
}

// DestroySurface releases s and its host resources.
func (t *Thread) DestroySurface(dpy *Display, s *Surface) bool {
	if !t.checkDisplay(dpy, true) {
		return false
	}
	if s == nil {
		t.setError(BadSurface)
		return false
	}
	if !t.validSurface(dpy, s) {
		return false
	}
	h, ok := t.host()
	if !ok {
		t.setError(BadAlloc)
		return false
	}
	s.destroy(t, h)
	return true
}

// QuerySurface returns the Width, Height or ConfigID of s.
func (t *Thread) QuerySurface(dpy *Display, s *Surface, attr int32) (int32, bool) {
	if !t.checkDisplay(dpy, true) {
		return 0, false
	}
	if s == nil {
		t.setError(BadSurface)
		return 0, false
	}
	if !t.validSurface(dpy, s) {
		return 0, false
	}
	switch attr {
	case Width:
		return int32(s.width), true
	case Height:
		return int32(s.height), true
	case ConfigID:
		if id, ok := dpy.ConfigAttrib(s.config, ConfigID); ok {
			return id, true
		}
		return int32(s.config), true
	}
	t.setError(BadAttribute)
	return 0, false
}
