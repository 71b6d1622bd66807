//go:build linux

package main

import (
	"fmt"

	"github.com/1broseidon/rcgl/internal/platform"
	"github.com/1broseidon/rcgl/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// openWindow wraps a window on a new X11 connection: id when non-zero,
// otherwise the first window whose title contains title, otherwise the
// focused window.
func openWindow(id platform.WindowID, title string) (platform.NativeWindow, func(), error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if id == 0 {
		var xid xproto.Window
		if title != "" {
			xid, err = conn.FindWindowByTitle(title)
		} else {
			xid, err = conn.ActiveWindow()
		}
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		id = platform.WindowID(xid)
	}
	win, err := platform.NewX11Window(conn, id)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return win, conn.Close, nil
}
