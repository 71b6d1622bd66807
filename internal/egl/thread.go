package egl

import (
	"fmt"

	"github.com/1broseidon/rcgl/internal/gles"
)

// Thread is the per-thread EGL state: the error slot, the current context,
// the bound API and the lazily opened host connection.
type Thread struct {
	reg     *Registry
	err     ErrorCode
	current *Context
	api     API
	conn    Conn
}

// setError records code in the error slot.
func (t *Thread) setError(code ErrorCode) {
	t.err = code
}

// GetError returns the last error recorded on this thread. Reading it does
// not clear the slot.
func (t *Thread) GetError() ErrorCode {
	return t.err
}

// host returns the thread's host connection, dialing it on first use.
func (t *Thread) host() (Conn, bool) {
	if t.conn != nil {
		return t.conn, true
	}
	if t.reg.dial == nil {
		t.reg.logger.Error("no host dialer configured")
		return nil, false
	}
	conn, err := t.reg.dial()
	if err != nil {
		t.reg.logger.Error("failed to get host connection", "error", err)
		return nil, false
	}
	t.conn = conn
	return conn, true
}

// Close releases the thread's host connection. The current context, if
// any, is left untouched on the host.
func (t *Thread) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close host connection: %w", err)
	}
	return nil
}

// GetCurrentContext returns the context current on this thread, or nil.
func (t *Thread) GetCurrentContext() *Context {
	return t.current
}

// GetCurrentSurface returns the read or draw surface of the current
// context. Without a current context it returns nil and records no error.
func (t *Thread) GetCurrentSurface(which int32) *Surface {
	ctx := t.current
	if ctx == nil {
		return nil
	}
	switch which {
	case Read:
		return ctx.read
	case Draw:
		return ctx.draw
	default:
		t.setError(BadParameter)
		return nil
	}
}

// GetCurrentDisplay returns the display of the current context, or nil.
func (t *Thread) GetCurrentDisplay() *Display {
	if t.current == nil {
		return nil
	}
	return t.current.dpy
}

// BindAPI selects the client API. Only OpenGL ES is available.
func (t *Thread) BindAPI(api API) bool {
	if api != OpenGLESAPI {
		t.setError(BadParameter)
		return false
	}
	t.api = api
	return true
}

// QueryAPI returns the bound client API.
func (t *Thread) QueryAPI() API {
	return t.api
}

// GL returns the GLES state of the current context, creating it on first
// use. Commands go through this thread's host connection.
func (t *Thread) GL() (*gles.Context, error) {
	ctx := t.current
	if ctx == nil {
		return nil, fmt.Errorf("no current context")
	}
	conn, ok := t.host()
	if !ok {
		return nil, fmt.Errorf("no host connection")
	}
	if ctx.gl == nil {
		gl, err := gles.NewContext(conn, t.reg.caps, t.reg.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create GLES context: %w", err)
		}
		ctx.gl = gl
		return gl, nil
	}
	ctx.gl.SetDispatcher(conn)
	return ctx.gl, nil
}
