// Package host is the reference rendering host: it owns the contexts,
// surfaces and color buffers clients create over the rc socket and records
// the draws they issue. It performs no rasterization.
package host

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/rc"
	"github.com/1broseidon/rcgl/internal/tracelog"
)

// DefaultDrawHistory is the number of draw records kept when Options does
// not set one.
const DefaultDrawHistory = 256

// Options configures a Host.
type Options struct {
	RendererVersion int
	EGLMajor        int
	EGLMinor        int
	Vendor          string
	Extensions      []string
	MaxTextureUnits int
	Configs         egl.ConfigTable
	DrawHistory     int

	Logger *slog.Logger
	Trace  *tracelog.Logger
}

type contextRes struct {
	session uint64
	config  egl.Config
	version int
	share   uint32
	// session the context is current on, 0 when not current
	boundTo uint64
}

type surfaceRes struct {
	session uint64
	config  egl.Config
	width   int
	height  int
}

type colorBufferRes struct {
	session uint64
	width   int
	height  int
	format  egl.PixelFormat
}

// Host holds every resource created by every session.
type Host struct {
	opts   Options
	logger *slog.Logger
	trace  *tracelog.Logger
	start  time.Time

	mu           sync.Mutex
	nextHandle   uint32
	nextSession  uint64
	sessions     map[uint64]*Session
	contexts     map[uint32]*contextRes
	surfaces     map[uint32]*surfaceRes
	colorBuffers map[uint32]*colorBufferRes

	draws     []rc.DrawRecord
	drawNext  int
	drawTotal int64
}

var _ rc.Backend = (*Host)(nil)

// New creates a host. The config table must have one column per row value.
func New(opts Options) (*Host, error) {
	for i, row := range opts.Configs.Values {
		if len(row) != len(opts.Configs.Attribs) {
			return nil, fmt.Errorf("config %d has %d values, want %d", i, len(row), len(opts.Configs.Attribs))
		}
	}
	if opts.MaxTextureUnits < 1 {
		opts.MaxTextureUnits = 1
	}
	if opts.DrawHistory <= 0 {
		opts.DrawHistory = DefaultDrawHistory
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Host{
		opts:         opts,
		logger:       logger,
		trace:        opts.Trace,
		start:        time.Now(),
		nextHandle:   1,
		sessions:     make(map[uint64]*Session),
		contexts:     make(map[uint32]*contextRes),
		surfaces:     make(map[uint32]*surfaceRes),
		colorBuffers: make(map[uint32]*colorBufferRes),
		draws:        make([]rc.DrawRecord, 0, opts.DrawHistory),
	}, nil
}

// NewSession starts the state of one client connection.
func (h *Host) NewSession() egl.Conn {
	h.mu.Lock()
	h.nextSession++
	s := newSession(h, h.nextSession)
	h.sessions[s.id] = s
	h.mu.Unlock()

	h.logger.Info("session opened", "session", s.id)
	h.trace.Log(tracelog.EventSession, "open", s.id, nil)
	return s
}

// allocHandle returns the next resource handle; handles are never reused
// and never 0. Callers hold h.mu.
func (h *Host) allocHandle() uint32 {
	handle := h.nextHandle
	h.nextHandle++
	if h.nextHandle == 0 {
		h.nextHandle = 1
	}
	return handle
}

func (h *Host) validConfig(cfg egl.Config) bool {
	return cfg >= 0 && int(cfg) < len(h.opts.Configs.Values)
}

// releaseSession drops every resource the session still owns.
func (h *Host) releaseSession(id uint64) (contexts, surfaces, colorBuffers int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for handle, c := range h.contexts {
		if c.boundTo == id {
			c.boundTo = 0
		}
		if c.session == id {
			delete(h.contexts, handle)
			contexts++
		}
	}
	for handle, s := range h.surfaces {
		if s.session == id {
			delete(h.surfaces, handle)
			surfaces++
		}
	}
	for handle, cb := range h.colorBuffers {
		if cb.session == id {
			delete(h.colorBuffers, handle)
			colorBuffers++
		}
	}
	delete(h.sessions, id)
	return contexts, surfaces, colorBuffers
}

// recordDraw appends to the draw ring, overwriting the oldest record once
// it is full.
func (h *Host) recordDraw(rec rc.DrawRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.drawTotal++
	if len(h.draws) < h.opts.DrawHistory {
		h.draws = append(h.draws, rec)
		return
	}
	h.draws[h.drawNext] = rec
	h.drawNext = (h.drawNext + 1) % h.opts.DrawHistory
}

// Status returns resource counters.
func (h *Host) Status() rc.StatusData {
	h.mu.Lock()
	defer h.mu.Unlock()
	return rc.StatusData{
		RendererVersion: h.opts.RendererVersion,
		Sessions:        len(h.sessions),
		Contexts:        len(h.contexts),
		Surfaces:        len(h.surfaces),
		ColorBuffers:    len(h.colorBuffers),
		Draws:           h.drawTotal,
		UptimeSeconds:   int64(time.Since(h.start).Seconds()),
	}
}

// Resources lists every live object ordered by handle.
func (h *Host) Resources() rc.ResourcesData {
	h.mu.Lock()
	defer h.mu.Unlock()

	res := make([]rc.Resource, 0, len(h.contexts)+len(h.surfaces)+len(h.colorBuffers))
	for handle, c := range h.contexts {
		res = append(res, rc.Resource{
			Kind:    "context",
			Handle:  handle,
			Session: c.session,
			Config:  int(c.config),
			Version: c.version,
		})
	}
	for handle, s := range h.surfaces {
		res = append(res, rc.Resource{
			Kind:    "surface",
			Handle:  handle,
			Session: s.session,
			Config:  int(s.config),
			Width:   s.width,
			Height:  s.height,
		})
	}
	for handle, cb := range h.colorBuffers {
		res = append(res, rc.Resource{
			Kind:    "color_buffer",
			Handle:  handle,
			Session: cb.session,
			Width:   cb.width,
			Height:  cb.height,
			Format:  cb.format.String(),
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Handle < res[j].Handle })
	return rc.ResourcesData{Resources: res}
}

// RecentDraws returns up to limit of the newest draw records, oldest first.
// A limit of 0 returns the whole history.
func (h *Host) RecentDraws(limit int) rc.DrawsData {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.draws)
	ordered := make([]rc.DrawRecord, 0, n)
	ordered = append(ordered, h.draws[h.drawNext:]...)
	ordered = append(ordered, h.draws[:h.drawNext]...)
	if limit > 0 && limit < n {
		ordered = ordered[n-limit:]
	}
	return rc.DrawsData{Draws: ordered}
}

