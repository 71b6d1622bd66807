//go:build !linux

package main

import (
	"fmt"

	"github.com/1broseidon/rcgl/internal/platform"
)

func openWindow(platform.WindowID, string) (platform.NativeWindow, func(), error) {
	return nil, nil, fmt.Errorf("native windows are only supported on linux")
}
