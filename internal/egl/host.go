package egl

import "github.com/1broseidon/rcgl/internal/gles"

// ConfigTable is the host's configuration list. Attribs names the columns;
// Values holds one row per config, indexed by config ordinal.
type ConfigTable struct {
	Attribs []int32   `json:"attribs"`
	Values  [][]int32 `json:"values"`
}

// Host is the render-control interface of the rendering host. Create calls
// return 0 when the host could not allocate the resource. Destroy results
// are only logged.
type Host interface {
	RendererVersion() (int, error)
	EGLVersion() (major, minor int, err error)
	QueryEGLString(name int32) (string, error)
	Configs() (*ConfigTable, error)

	CreateContext(config Config, share uint32, version int) (uint32, error)
	DestroyContext(handle uint32) error
	CreateWindowSurface(config Config, width, height int) (uint32, error)
	DestroyWindowSurface(handle uint32) error
	CreateColorBuffer(width, height int, format PixelFormat) (uint32, error)
	CloseColorBuffer(handle uint32) error
	MakeCurrent(ctx, draw, read uint32) (bool, error)
}

// Conn is one thread's connection to the host, carrying both render
// control and GLES commands.
type Conn interface {
	Host
	gles.Dispatcher
	Close() error
}

// Dialer opens a new host connection.
type Dialer func() (Conn, error)
