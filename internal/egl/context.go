package egl

import (
	"github.com/1broseidon/rcgl/internal/gles"
)

// Context is an EGL rendering context backed by a host context.
type Context struct {
	dpy     *Display
	config  Config
	version int
	read    *Surface
	draw    *Surface
	handle  uint32

	gl *gles.Context
}

// Config returns the config the context was created with.
func (c *Context) Config() Config { return c.config }

// ClientVersion returns the requested client API version.
func (c *Context) ClientVersion() int { return c.version }

// Handle returns the host context handle, 0 once destroyed.
func (c *Context) Handle() uint32 { return c.handle }

// ReadSurface returns the surface bound for reading by the last MakeCurrent.
func (c *Context) ReadSurface() *Surface { return c.read }

// DrawSurface returns the surface bound for drawing by the last MakeCurrent.
func (c *Context) DrawSurface() *Surface { return c.draw }

// CreateContext creates a context for cfg. The client version is read
// from ContextClientVersion in attribs and defaults to 1.
func (t *Thread) CreateContext(dpy *Display, cfg Config, share *Context, attribs []int32) *Context {
	if !t.checkDisplay(dpy, true) || !t.checkConfig(dpy, cfg) {
		return nil
	}

	version := 1
	attribPairs(attribs, func(key, value int32) {
		if key == ContextClientVersion {
			version = int(value)
		}
	})

	var shareHandle uint32
	if share != nil {
		if share.dpy != dpy {
			t.setError(BadMatch)
			return nil
		}
		shareHandle = share.handle
	}

	h, ok := t.host()
	if !ok {
		t.setError(BadAlloc)
		return nil
	}
	handle, err := h.CreateContext(cfg, shareHandle, version)
	if err != nil {
		t.reg.logger.Error("create context failed", "config", int(cfg), "error", err)
		handle = 0
	}
	if handle == 0 {
		t.reg.logger.Error("host returned no context", "config", int(cfg), "version", version)
		t.setError(BadAlloc)
		return nil
	}

	t.reg.logger.Debug("context created", "handle", handle, "config", int(cfg), "version", version)
	return &Context{dpy: dpy, config: cfg, version: version, handle: handle}
}

// DestroyContext releases ctx and its host context. If ctx is current on
// this thread the current slot is cleared.
func (t *Thread) DestroyContext(dpy *Display, ctx *Context) bool {
	if !t.checkDisplay(dpy, true) {
		return false
	}
	if ctx == nil {
		t.setError(BadContext)
		return false
	}

	if ctx.handle != 0 {
		h, ok := t.host()
		if !ok {
			t.setError(BadAlloc)
			return false
		}
		if err := h.DestroyContext(ctx.handle); err != nil {
			t.reg.logger.Warn("destroy context failed", "handle", ctx.handle, "error", err)
		}
		ctx.handle = 0
	}

	if t.current == ctx {
		t.current = nil
	}
	ctx.read, ctx.draw, ctx.gl = nil, nil, nil
	return true
}

// validSurface checks a surface argument. nil stands for no surface and is
// accepted.
func (t *Thread) validSurface(dpy *Display, s *Surface) bool {
	if s == nil {
		return true
	}
	if !s.valid {
		t.setError(BadSurface)
		return false
	}
	if s.dpy != dpy {
		t.setError(BadDisplay)
		return false
	}
	return true
}

// MakeCurrent binds ctx with the given surfaces on the host and makes it
// current on this thread. A nil ctx with nil surfaces releases the current
// context.
func (t *Thread) MakeCurrent(dpy *Display, draw, read *Surface, ctx *Context) bool {
	if !t.checkDisplay(dpy, true) {
		return false
	}
	if !t.validSurface(dpy, draw) || !t.validSurface(dpy, read) {
		return false
	}
	if read == nil && draw == nil && ctx != nil {
		t.setError(BadMatch)
		return false
	}
	if (read != nil || draw != nil) && ctx == nil {
		t.setError(BadMatch)
		return false
	}

	var ctxHandle, drawHandle, readHandle uint32
	if ctx != nil {
		ctxHandle = ctx.handle
	}
	if draw != nil {
		drawHandle = draw.handle
	}
	if read != nil {
		readHandle = read.handle
	}

	h, ok := t.host()
	if !ok {
		t.setError(BadAlloc)
		return false
	}
	bound, err := h.MakeCurrent(ctxHandle, drawHandle, readHandle)
	if err != nil {
		t.reg.logger.Error("make current failed", "context", ctxHandle, "error", err)
		bound = false
	}
	if !bound {
		t.reg.logger.Error("host refused make current", "context", ctxHandle, "draw", drawHandle, "read", readHandle)
		t.setError(BadContext)
		return false
	}

	if ctx != nil {
		ctx.draw = draw
		ctx.read = read
	}
	t.current = ctx
	return true
}
