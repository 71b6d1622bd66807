package egl

import (
	"io"
	"log/slog"
	"sync"

	"github.com/1broseidon/rcgl/internal/gles"
)

// DefaultVendor is reported by QueryString(Vendor) when no vendor is
// configured.
const DefaultVendor = "rcgl"

// Options configures a Registry.
type Options struct {
	// Vendor prefixes the vendor string. Empty means DefaultVendor.
	Vendor string
	// Extensions lists the host EGL extensions that may be exposed. Host
	// extensions not listed here are filtered out.
	Extensions []string
	Logger     *slog.Logger
}

// Registry is the process-wide EGL state: the display, the host dialer and
// the renderer capabilities shared by every GLES context.
type Registry struct {
	dial       Dialer
	vendor     string
	extensions []string
	logger     *slog.Logger
	caps       *gles.Caps

	mu      sync.Mutex
	display *Display
}

// NewRegistry returns a registry opening host connections through dial.
func NewRegistry(dial Dialer, opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	vendor := opts.Vendor
	if vendor == "" {
		vendor = DefaultVendor
	}
	return &Registry{
		dial:       dial,
		vendor:     vendor,
		extensions: append([]string(nil), opts.Extensions...),
		logger:     logger,
		caps:       gles.NewCaps(),
	}
}

// NewThread returns the state of one rendering thread. A Thread must only
// be used by one goroutine at a time.
func (r *Registry) NewThread() *Thread {
	return &Thread{reg: r, err: Success, api: OpenGLESAPI}
}

// GetDisplay returns the display for id, creating it on first use. Only
// DefaultDisplay is supported; any other id yields nil.
func (r *Registry) GetDisplay(id NativeDisplay) *Display {
	if id != DefaultDisplay {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.display == nil {
		r.display = &Display{reg: r}
	}
	return r.display
}

// validDisplay reports whether dpy is the registry's display.
func (r *Registry) validDisplay(dpy *Display) bool {
	if dpy == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return dpy == r.display
}
