//go:build linux

package platform

import (
	"fmt"
	"sync"

	"github.com/1broseidon/rcgl/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// X11Window is a NativeWindow backed by an X11 window. Its size is read
// from the X server on every query.
type X11Window struct {
	conn *x11.Connection
	id   xproto.Window

	mu   sync.Mutex
	refs int
}

var _ NativeWindow = (*X11Window)(nil)

// NewX11Window wraps window id on conn after checking that it exists.
func NewX11Window(conn *x11.Connection, id WindowID) (*X11Window, error) {
	if conn == nil {
		return nil, fmt.Errorf("x11 connection is required")
	}
	if _, err := conn.WindowGeometry(xproto.Window(id)); err != nil {
		return nil, fmt.Errorf("window 0x%x: %w", uint32(id), err)
	}
	return &X11Window{conn: conn, id: xproto.Window(id)}, nil
}

// ID returns the X11 window id.
func (w *X11Window) ID() WindowID {
	return WindowID(w.id)
}

func (w *X11Window) Magic() uint32 {
	return NativeWindowMagic
}

func (w *X11Window) Acquire() {
	w.mu.Lock()
	w.refs++
	w.mu.Unlock()
}

func (w *X11Window) Release() {
	w.mu.Lock()
	if w.refs > 0 {
		w.refs--
	}
	w.mu.Unlock()
}

// Refs returns the number of references currently held.
func (w *X11Window) Refs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refs
}

func (w *X11Window) Width() int {
	g, err := w.conn.WindowGeometry(w.id)
	if err != nil {
		return 0
	}
	return g.Width
}

func (w *X11Window) Height() int {
	g, err := w.conn.WindowGeometry(w.id)
	if err != nil {
		return 0
	}
	return g.Height
}
