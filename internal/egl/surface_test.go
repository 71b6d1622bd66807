package egl

import (
	"testing"

	"github.com/1broseidon/rcgl/internal/platform"
)

func TestCreatePbufferSurface_ParsesDimensions(t *testing.T) {
	host := newFakeHost()
	_, th, dpy := setup(host)

	s := th.CreatePbufferSurface(dpy, 0, []int32{Width, 64, Height, 32, 0})
	if s == nil {
		t.Fatalf("create failed: %s", th.GetError())
	}
	if s.Width() != 64 || s.Height() != 32 {
		t.Fatalf("expected 64x32, got %dx%d", s.Width(), s.Height())
	}
	if s.Kind() != PbufferSurface || s.Format() != FormatRGBA {
		t.Fatalf("unexpected surface %+v", s)
	}
	if s.Handle() == 0 || s.ColorBuffer() == 0 {
		t.Fatalf("expected both host handles set")
	}
	want := []string{"CreateWindowSurface(0,64,32)", "CreateColorBuffer(64,32,RGBA8888)"}
	for i := range want {
		if host.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, host.calls)
		}
	}

	if w, ok := th.QuerySurface(dpy, s, Width); !ok || w != 64 {
		t.Fatalf("expected queried width 64, got %d", w)
	}
	if id, ok := th.QuerySurface(dpy, s, ConfigID); !ok || id != 1 {
		t.Fatalf("expected config id 1, got %d", id)
	}
	if _, ok := th.QuerySurface(dpy, s, RedSize); ok || th.GetError() != BadAttribute {
		t.Fatalf("expected BadAttribute")
	}
}

func TestCreatePbufferSurface_IgnoresUnknownKeys(t *testing.T) {
	_, th, dpy := setup(newFakeHost())
	s := th.CreatePbufferSurface(dpy, 0, []int32{0x3099, 1, Height, 16, Width, 8, 0, Width, 99})
	if s == nil || s.Width() != 8 || s.Height() != 16 {
		t.Fatalf("unexpected surface %+v", s)
	}
}

func TestCreatePbufferSurface_Failures(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		setup func(h *fakeHost)
		want  ErrorCode
		calls int
	}{
		{name: "window-only config", cfg: 1, want: BadMatch},
		{name: "unsupported pixel format", cfg: 2, want: BadMatch},
		{name: "bad config", cfg: 9, want: BadConfig},
		{name: "surface allocation", cfg: 0, setup: func(h *fakeHost) { h.failSurface = true }, want: BadAlloc, calls: 1},
		// The host surface created before the failing color buffer is
		// released again.
		{name: "color buffer allocation", cfg: 0, setup: func(h *fakeHost) { h.failColorBuffer = true }, want: BadAlloc, calls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost()
			_, th, dpy := setup(host)
			if tt.setup != nil {
				tt.setup(host)
			}
			if s := th.CreatePbufferSurface(dpy, tt.cfg, []int32{Width, 4, Height, 4, 0}); s != nil {
				t.Fatalf("expected failure")
			}
			if got := th.GetError(); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
			if len(host.calls) != tt.calls {
				t.Fatalf("expected %d host calls, got %v", tt.calls, host.calls)
			}
		})
	}
}

func TestCreateWindowSurface(t *testing.T) {
	host := newFakeHost()
	_, th, dpy := setup(host)

	win := newWindow(320, 240)
	s := th.CreateWindowSurface(dpy, 1, win, nil)
	if s == nil {
		t.Fatalf("create failed: %s", th.GetError())
	}
	if s.Width() != 320 || s.Height() != 240 || s.Kind() != WindowSurface {
		t.Fatalf("unexpected surface %+v", s)
	}
	if win.Refs() != 1 {
		t.Fatalf("expected the surface to hold a window reference, got %d", win.Refs())
	}
	if host.calls[0] != "CreateWindowSurface(1,320,240)" {
		t.Fatalf("unexpected calls %v", host.calls)
	}

	if !th.DestroySurface(dpy, s) {
		t.Fatalf("destroy failed")
	}
	if win.Refs() != 0 {
		t.Fatalf("expected the window reference released, got %d", win.Refs())
	}
}

func TestCreateWindowSurface_Failures(t *testing.T) {
	host := newFakeHost()
	_, th, dpy := setup(host)

	if th.CreateWindowSurface(dpy, 2, newWindow(1, 1), nil) != nil || th.GetError() != BadMatch {
		t.Fatalf("expected BadMatch for a pbuffer-only config")
	}

	bad := newWindow(1, 1)
	bad.magic = 0
	if th.CreateWindowSurface(dpy, 0, bad, nil) != nil || th.GetError() != BadNativeWindow {
		t.Fatalf("expected BadNativeWindow for a bad magic")
	}
	if th.CreateWindowSurface(dpy, 0, nil, nil) != nil || th.GetError() != BadNativeWindow {
		t.Fatalf("expected BadNativeWindow for a nil window")
	}
	if len(host.calls) != 0 {
		t.Fatalf("validation failures must not reach the host, got %v", host.calls)
	}

	host.failSurface = true
	win := newWindow(10, 10)
	if th.CreateWindowSurface(dpy, 0, win, nil) != nil || th.GetError() != BadAlloc {
		t.Fatalf("expected BadAlloc")
	}
	if win.Refs() != 0 {
		t.Fatalf("discarded surface must release its window, got %d refs", win.Refs())
	}
}

func TestDestroySurface_Twice(t *testing.T) {
	host := newFakeHost()
	_, th, dpy := setup(host)

	s := th.CreatePbufferSurface(dpy, 0, []int32{Width, 64, Height, 32, 0})
	host.calls = nil

	if !th.DestroySurface(dpy, s) {
		t.Fatalf("first destroy failed")
	}
	if s.Handle() != 0 || s.ColorBuffer() != 0 {
		t.Fatalf("expected both handles zeroed")
	}
	if th.DestroySurface(dpy, s) {
		t.Fatalf("expected second destroy to fail")
	}
	if got := th.GetError(); got != BadSurface {
		t.Fatalf("expected BadSurface, got %s", got)
	}
	if n := host.count("DestroyWindowSurface"); n != 1 {
		t.Fatalf("expected one remote surface destroy, got %d", n)
	}
	if n := host.count("CloseColorBuffer"); n != 1 {
		t.Fatalf("expected one remote color buffer close, got %d", n)
	}
}

func TestDestroySurface_ForeignDisplay(t *testing.T) {
	_, th, dpy := setup(newFakeHost())
	s := &Surface{dpy: &Display{}, valid: true, handle: 3}
	if th.DestroySurface(dpy, s) || th.GetError() != BadDisplay {
		t.Fatalf("expected BadDisplay")
	}
}

var _ platform.NativeWindow = (*fakeWindow)(nil)
