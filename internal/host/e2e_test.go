package host

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/gles"
	"github.com/1broseidon/rcgl/internal/rc"
)

func startHost(t *testing.T) (*Host, string) {
	t.Helper()
	h := newTestHost(t)
	socketPath := filepath.Join(t.TempDir(), "host.sock")
	srv, err := rc.NewServer(socketPath, h, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return h, socketPath
}

func packFloats(vals ...float32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func TestEGLOverSocket(t *testing.T) {
	h, socketPath := startHost(t)

	reg := egl.NewRegistry(rc.Dialer(socketPath), egl.Options{Extensions: []string{"EGL_KHR_fence_sync"}})
	th := reg.NewThread()
	defer th.Close()

	dpy := reg.GetDisplay(egl.DefaultDisplay)
	major, minor, ok := th.Initialize(dpy)
	if !ok || major != 1 || minor != 4 {
		t.Fatalf("Initialize = %d.%d, %v (err %v)", major, minor, ok, th.GetError())
	}
	if n, _ := th.GetConfigs(dpy, nil); n != 2 {
		t.Fatalf("configs = %d, want 2", n)
	}
	if ext, _ := th.QueryString(dpy, egl.Extensions); ext != "EGL_KHR_fence_sync" {
		t.Fatalf("extensions = %q", ext)
	}
	if vendor, _ := th.QueryString(dpy, egl.Vendor); vendor != "rcgl Host: reference" {
		t.Fatalf("vendor = %q", vendor)
	}

	surf := th.CreatePbufferSurface(dpy, 0, []int32{egl.Width, 32, egl.Height, 16, egl.None})
	if surf == nil {
		t.Fatalf("CreatePbufferSurface failed: %v", th.GetError())
	}
	ctx := th.CreateContext(dpy, 0, nil, []int32{egl.ContextClientVersion, 1, egl.None})
	if ctx == nil {
		t.Fatalf("CreateContext failed: %v", th.GetError())
	}
	if !th.MakeCurrent(dpy, surf, surf, ctx) {
		t.Fatalf("MakeCurrent failed: %v", th.GetError())
	}

	gl, err := th.GL()
	if err != nil {
		t.Fatalf("GL: %v", err)
	}
	gl.VertexPointer(2, gles.Float, 0, gles.ClientData(packFloats(0, 0, 1, 1, 2, 2)))
	gl.PointSizePointer(gles.Float, 0, gles.ClientData(packFloats(2, 5, 2)))
	if err := gl.EnableClientState(gles.VertexArray); err != nil {
		t.Fatalf("EnableClientState: %v", err)
	}
	if err := gl.EnableClientState(gles.PointSizeArray); err != nil {
		t.Fatalf("EnableClientState: %v", err)
	}
	if err := gl.DrawArrays(gles.Points, 0, 3); err != nil {
		t.Fatalf("DrawArrays: %v", err)
	}
	if code := gl.GetError(); code != gles.NoError {
		t.Fatalf("GL error %v", code)
	}

	draws := h.RecentDraws(0).Draws
	if len(draws) != 2 {
		t.Fatalf("draws = %+v, want one per point size", draws)
	}
	if draws[0].PointSize != 2 || draws[0].Count != 2 || draws[1].PointSize != 5 || draws[1].Count != 1 {
		t.Fatalf("draws = %+v", draws)
	}
	for _, d := range draws {
		if d.Call != "DrawElements" || d.Surface != surf.Handle() || d.Context != ctx.Handle() {
			t.Fatalf("draw = %+v", d)
		}
	}

	st := h.Status()
	if st.Contexts != 1 || st.Surfaces != 1 || st.ColorBuffers != 1 {
		t.Fatalf("status = %+v", st)
	}

	if !th.DestroySurface(dpy, surf) {
		t.Fatalf("DestroySurface failed: %v", th.GetError())
	}
	if st := h.Status(); st.Surfaces != 0 || st.ColorBuffers != 0 {
		t.Fatalf("surface resources not released: %+v", st)
	}
}

func TestDisconnectReleasesGuestResources(t *testing.T) {
	h, socketPath := startHost(t)

	reg := egl.NewRegistry(rc.Dialer(socketPath), egl.Options{})
	th := reg.NewThread()
	dpy := reg.GetDisplay(egl.DefaultDisplay)
	if _, _, ok := th.Initialize(dpy); !ok {
		t.Fatalf("Initialize failed: %v", th.GetError())
	}
	if th.CreateContext(dpy, 1, nil, nil) == nil {
		t.Fatalf("CreateContext failed: %v", th.GetError())
	}
	if h.Status().Contexts != 1 {
		t.Fatalf("context not created on host")
	}

	th.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.Status().Contexts != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("context survived disconnect: %+v", h.Status())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
