package egl

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGetDisplay_OnlyDefault(t *testing.T) {
	reg := NewRegistry(nil, Options{})
	dpy := reg.GetDisplay(DefaultDisplay)
	if dpy == nil {
		t.Fatalf("expected default display")
	}
	if again := reg.GetDisplay(DefaultDisplay); again != dpy {
		t.Fatalf("expected the same display instance")
	}
	if other := reg.GetDisplay(NativeDisplay(7)); other != nil {
		t.Fatalf("expected no display for a non-default id")
	}
}

func TestInitialize_ClampsVersionAndFetchesOnce(t *testing.T) {
	host := newFakeHost()
	host.eglMajor, host.eglMinor = 1, 5
	reg := NewRegistry(func() (Conn, error) { return host, nil }, Options{})
	th := reg.NewThread()
	dpy := reg.GetDisplay(DefaultDisplay)

	major, minor, ok := th.Initialize(dpy)
	if !ok || major != 1 || minor != 4 {
		t.Fatalf("expected 1.4, got %d.%d ok=%v", major, minor, ok)
	}
	if !th.Terminate(dpy) {
		t.Fatalf("terminate failed")
	}
	if _, _, ok := th.Initialize(dpy); !ok {
		t.Fatalf("re-initialize failed")
	}
	if n := host.count("Configs"); n != 1 {
		t.Fatalf("expected configs fetched once, got %d", n)
	}
}

func TestInitialize_MajorAboveMaximum(t *testing.T) {
	host := newFakeHost()
	host.eglMajor, host.eglMinor = 2, 0
	_, th, dpy := setup(host)
	if major, minor := dpy.Version(); major != 1 || minor != 4 {
		t.Fatalf("expected 1.4, got %d.%d", major, minor)
	}
	if s, ok := th.QueryString(dpy, Version); !ok || s != "1.4" {
		t.Fatalf("expected version string 1.4, got %q", s)
	}
}

func TestInitialize_DialFailure(t *testing.T) {
	reg := NewRegistry(func() (Conn, error) { return nil, errors.New("no socket") }, Options{})
	th := reg.NewThread()
	if _, _, ok := th.Initialize(reg.GetDisplay(DefaultDisplay)); ok {
		t.Fatalf("expected initialize to fail")
	}
	if got := th.GetError(); got != NotInitialized {
		t.Fatalf("expected NotInitialized, got %s", got)
	}
}

func TestEntryPoints_RequireInitializedDisplay(t *testing.T) {
	host := newFakeHost()
	reg := NewRegistry(func() (Conn, error) { return host, nil }, Options{})
	th := reg.NewThread()
	dpy := reg.GetDisplay(DefaultDisplay)

	if _, ok := th.GetConfigs(dpy, nil); ok {
		t.Fatalf("expected failure before initialize")
	}
	if got := th.GetError(); got != NotInitialized {
		t.Fatalf("expected NotInitialized, got %s", got)
	}

	if _, ok := th.GetConfigs(&Display{reg: reg}, nil); ok {
		t.Fatalf("expected failure for a foreign display")
	}
	if got := th.GetError(); got != BadDisplay {
		t.Fatalf("expected BadDisplay, got %s", got)
	}
	if len(host.calls) != 0 {
		t.Fatalf("validation must not reach the host, got %v", host.calls)
	}
}

func TestGetConfigs(t *testing.T) {
	_, th, dpy := setup(newFakeHost())

	n, ok := th.GetConfigs(dpy, nil)
	if !ok || n != 3 {
		t.Fatalf("expected 3 configs, got %d", n)
	}
	out := make([]Config, 2)
	n, ok = th.GetConfigs(dpy, out)
	if !ok || n != 2 || out[0] != 0 || out[1] != 1 {
		t.Fatalf("unexpected configs %v (n=%d)", out, n)
	}
	if n, ok := th.ChooseConfig(dpy, []int32{RedSize, 8, None}, out); !ok || n != 0 {
		t.Fatalf("expected choose config to report zero matches, got %d", n)
	}
}

func TestGetConfigAttrib(t *testing.T) {
	_, th, dpy := setup(newFakeHost())

	if v, ok := th.GetConfigAttrib(dpy, 1, GreenSize); !ok || v != 6 {
		t.Fatalf("expected green size 6, got %d", v)
	}

	tests := []struct {
		name string
		cfg  Config
		attr int32
		want ErrorCode
	}{
		{name: "negative config", cfg: -1, attr: RedSize, want: BadConfig},
		{name: "config past end", cfg: 3, attr: RedSize, want: BadConfig},
		{name: "unknown attribute", cfg: 0, attr: 0x3099, want: BadAttribute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := th.GetConfigAttrib(dpy, tt.cfg, tt.attr); ok {
				t.Fatalf("expected failure")
			}
			if got := th.GetError(); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestConfigPixelFormat(t *testing.T) {
	host := newFakeHost()
	host.table = &ConfigTable{
		Attribs: []int32{RedSize, GreenSize, BlueSize, AlphaSize},
		Values: [][]int32{
			{8, 8, 8, 8},
			{8, 8, 8, 0},
			{5, 6, 5, 0},
			{5, 5, 5, 1},
			{4, 4, 4, 4},
			{10, 10, 10, 2},
		},
	}
	_, _, dpy := setup(host)

	want := []PixelFormat{FormatRGBA, FormatRGB, FormatRGB565, FormatRGB5A1, FormatRGBA4}
	for i, f := range want {
		got, ok := dpy.ConfigPixelFormat(Config(i))
		if !ok || got != f {
			t.Fatalf("config %d: expected %s, got %s", i, f, got)
		}
	}
	if _, ok := dpy.ConfigPixelFormat(5); ok {
		t.Fatalf("expected no format for 10-bit channels")
	}
}

func TestQueryString(t *testing.T) {
	host := newFakeHost()
	host.extensions = "EGL_KHR_image_base EGL_FOO_unsupported EGL_KHR_fence_sync"
	reg := NewRegistry(func() (Conn, error) { return host, nil }, Options{
		Vendor:     "rcgl test",
		Extensions: []string{"EGL_KHR_fence_sync", "EGL_KHR_image_base"},
	})
	th := reg.NewThread()
	dpy := reg.GetDisplay(DefaultDisplay)
	th.Initialize(dpy)

	tests := []struct {
		name int32
		want string
	}{
		{ClientAPIs, "OpenGL_ES"},
		{Version, "1.4"},
		{Vendor, "rcgl test Host: test host"},
		{Extensions, "EGL_KHR_image_base EGL_KHR_fence_sync"},
	}
	for _, tt := range tests {
		got, ok := th.QueryString(dpy, tt.name)
		if !ok || got != tt.want {
			t.Fatalf("name 0x%x: expected %q, got %q", tt.name, tt.want, got)
		}
	}

	before := host.count("QueryEGLString")
	th.QueryString(dpy, Vendor)
	if host.count("QueryEGLString") != before {
		t.Fatalf("vendor string must be built once")
	}

	if _, ok := th.QueryString(dpy, 0x1234); ok {
		t.Fatalf("expected unknown name to fail")
	}
	if got := th.GetError(); got != BadParameter {
		t.Fatalf("expected BadParameter, got %s", got)
	}
}

func TestQueryString_NoHostVendor(t *testing.T) {
	host := newFakeHost()
	host.vendor = ""
	_, th, dpy := setup(host)
	if got, _ := th.QueryString(dpy, Vendor); got != DefaultVendor {
		t.Fatalf("expected %q, got %q", DefaultVendor, got)
	}
}

func TestErrorSlot_SuccessDoesNotClear(t *testing.T) {
	_, th, dpy := setup(newFakeHost())

	th.GetConfigAttrib(dpy, 9, RedSize)
	if _, ok := th.GetConfigs(dpy, nil); !ok {
		t.Fatalf("get configs failed")
	}
	if got := th.GetError(); got != BadConfig {
		t.Fatalf("expected earlier BadConfig to survive, got %s", got)
	}
	if got := th.GetError(); got != BadConfig {
		t.Fatalf("expected BadConfig on second read, got %s", got)
	}
}

// pauseOn makes host calls starting with prefix block until the returned
// release func runs. entered is closed when the first such call starts.
func pauseOn(host *fakeHost, prefix string) (entered <-chan struct{}, release func()) {
	in := make(chan struct{})
	gate := make(chan struct{})
	var once bool
	host.onCall = func(call string) {
		if once || !strings.HasPrefix(call, prefix) {
			return
		}
		once = true
		close(in)
		<-gate
	}
	return in, func() { close(gate) }
}

func TestQueryString_HostCallLeavesDisplayUnlocked(t *testing.T) {
	host := newFakeHost()
	_, th, dpy := setup(host)
	entered, release := pauseOn(host, "QueryEGLString")

	done := make(chan string, 1)
	go func() {
		s, _ := th.QueryString(dpy, Vendor)
		done <- s
	}()
	<-entered

	n := make(chan int, 1)
	go func() { n <- dpy.NumConfigs() }()
	select {
	case got := <-n:
		if got != 3 {
			t.Fatalf("expected 3 configs, got %d", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("NumConfigs blocked behind a pending host string query")
	}

	release()
	if got := <-done; got != DefaultVendor+" Host: test host" {
		t.Fatalf("unexpected vendor %q", got)
	}
}

func TestInitialize_HostCallLeavesDisplayUnlocked(t *testing.T) {
	host := newFakeHost()
	reg := NewRegistry(func() (Conn, error) { return host, nil }, Options{})
	th := reg.NewThread()
	dpy := reg.GetDisplay(DefaultDisplay)
	entered, release := pauseOn(host, "Configs")

	done := make(chan bool, 1)
	go func() {
		_, _, ok := th.Initialize(dpy)
		done <- ok
	}()
	<-entered

	n := make(chan int, 1)
	go func() { n <- dpy.NumConfigs() }()
	select {
	case got := <-n:
		if got != 0 {
			t.Fatalf("expected no configs before initialization completes, got %d", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("NumConfigs blocked behind a pending initialization")
	}

	release()
	if !<-done {
		t.Fatalf("initialize failed")
	}
	if got := dpy.NumConfigs(); got != 3 {
		t.Fatalf("expected 3 configs after initialization, got %d", got)
	}
}

func TestGetProcAddress(t *testing.T) {
	host := newFakeHost()
	reg := NewRegistry(func() (Conn, error) { return host, nil }, Options{})
	th := reg.NewThread()

	if p, ok := th.GetProcAddress("eglMakeCurrent"); !ok || p.API != "egl" {
		t.Fatalf("expected egl proc, got %+v", p)
	}
	if len(host.calls) != 0 {
		t.Fatalf("egl lookup must not initialize the display")
	}
	if p, ok := th.GetProcAddress("glDrawArrays"); !ok || p.API != "gles" {
		t.Fatalf("expected gles proc, got %+v", p)
	}
	if !reg.GetDisplay(DefaultDisplay).isInitialized() {
		t.Fatalf("expected display initialized by gles lookup")
	}
	if _, ok := th.GetProcAddress("glUnknownThing"); ok {
		t.Fatalf("expected unknown proc to fail")
	}
}

func TestBindAPI(t *testing.T) {
	th := NewRegistry(nil, Options{}).NewThread()
	if th.BindAPI(OpenVGAPI) {
		t.Fatalf("expected OpenVG to be rejected")
	}
	if got := th.GetError(); got != BadParameter {
		t.Fatalf("expected BadParameter, got %s", got)
	}
	if !th.BindAPI(OpenGLESAPI) || th.QueryAPI() != OpenGLESAPI {
		t.Fatalf("expected OpenGL ES bound")
	}
}
