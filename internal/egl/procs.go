package egl

import "github.com/1broseidon/rcgl/internal/gles"

// Proc identifies an entry point found by GetProcAddress.
type Proc struct {
	API  string
	Name string
}

var eglProcs = map[string]bool{
	"eglGetDisplay":           true,
	"eglInitialize":           true,
	"eglTerminate":            true,
	"eglGetError":             true,
	"eglGetProcAddress":       true,
	"eglQueryString":          true,
	"eglGetConfigs":           true,
	"eglChooseConfig":         true,
	"eglGetConfigAttrib":      true,
	"eglCreateWindowSurface":  true,
	"eglCreatePbufferSurface": true,
	"eglDestroySurface":       true,
	"eglQuerySurface":         true,
	"eglBindAPI":              true,
	"eglQueryAPI":             true,
	"eglCreateContext":        true,
	"eglDestroyContext":       true,
	"eglMakeCurrent":          true,
	"eglGetCurrentContext":    true,
	"eglGetCurrentSurface":    true,
	"eglGetCurrentDisplay":    true,
}

// GetProcAddress looks name up among the EGL entry points, then, after
// making sure the display is initialized, among the GLES ones.
func (t *Thread) GetProcAddress(name string) (Proc, bool) {
	if eglProcs[name] {
		return Proc{API: "egl", Name: name}, true
	}

	dpy := t.reg.GetDisplay(DefaultDisplay)
	if !t.initialize(dpy) {
		return Proc{}, false
	}
	if gles.HasProc(name) {
		return Proc{API: "gles", Name: name}, true
	}
	return Proc{}, false
}
