package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/gles"
	"github.com/1broseidon/rcgl/internal/platform"
	"github.com/1broseidon/rcgl/internal/rc"
)

func runDemo(args []string) int {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/rcgl/config.yaml)")
	windowFlag := fs.String("window", "", "X11 window id to render into (decimal or 0x-prefixed)")
	title := fs.String("title", "", "Render into the first X11 window whose title contains this text")
	active := fs.Bool("active", false, "Render into the focused X11 window")
	width := fs.Int("width", 64, "Pbuffer width")
	height := fs.Int("height", 64, "Pbuffer height")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: rcgl demo [--window ID | --title TEXT | --active] [--width W --height H]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Create a surface and context on the host and draw points with per-vertex sizes.")
		fmt.Fprintln(os.Stderr, "Without a window option an offscreen pbuffer surface is used.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	windowOpts := 0
	for _, set := range []bool{*windowFlag != "", *title != "", *active} {
		if set {
			windowOpts++
		}
	}
	if windowOpts > 1 {
		fmt.Fprintln(os.Stderr, "--window, --title and --active are mutually exclusive")
		return 2
	}
	if *width <= 0 || *height <= 0 {
		fmt.Fprintln(os.Stderr, "--width and --height must be positive")
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	socketPath, err := res.Config.SocketPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var win platform.NativeWindow
	if windowOpts == 1 {
		var id platform.WindowID
		if *windowFlag != "" {
			id, err = parseWindowID(*windowFlag)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 2
			}
		}
		w, closeWin, err := openWindow(id, *title)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer closeWin()
		win = w
	}

	reg := egl.NewRegistry(rc.Dialer(socketPath), egl.Options{Logger: newLogger(res.Config)})
	th := reg.NewThread()
	defer th.Close()

	if err := demo(th, reg.GetDisplay(egl.DefaultDisplay), win, *width, *height); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client, err := rc.Dial(socketPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Close()
	draws, err := client.RecentDraws(4)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, d := range draws.Draws {
		line := fmt.Sprintf("%s %s count=%d", d.Call, d.Mode, d.Count)
		if d.PointSize > 0 {
			line += fmt.Sprintf(" point_size=%g", d.PointSize)
		}
		if len(d.Arrays) > 0 {
			line += " arrays=" + strings.Join(d.Arrays, ",")
		}
		fmt.Println(line)
	}
	return 0
}

func parseWindowID(s string) (platform.WindowID, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", s, err)
	}
	return platform.WindowID(v), nil
}

// pickConfig returns the first config whose surface type allows bit.
func pickConfig(th *egl.Thread, dpy *egl.Display, bit int32) (egl.Config, bool) {
	n, _ := th.GetConfigs(dpy, nil)
	configs := make([]egl.Config, n)
	n, _ = th.GetConfigs(dpy, configs)
	for _, cfg := range configs[:n] {
		if v, ok := th.GetConfigAttrib(dpy, cfg, egl.SurfaceType); ok && v&bit != 0 {
			return cfg, true
		}
	}
	return 0, false
}

// demo draws three points with sizes 2, 5 and 2 followed by a fixed-point
// triangle, then tears everything down.
func demo(th *egl.Thread, dpy *egl.Display, win platform.NativeWindow, width, height int) error {
	major, minor, ok := th.Initialize(dpy)
	if !ok {
		return fmt.Errorf("initialize display: %v", th.GetError())
	}
	fmt.Printf("EGL %d.%d, vendor %q\n", major, minor, queryString(th, dpy, egl.Vendor))

	bit := egl.PbufferBit
	if win != nil {
		bit = egl.WindowBit
	}
	cfg, ok := pickConfig(th, dpy, bit)
	if !ok {
		return fmt.Errorf("no config supports the requested surface type")
	}

	var surface *egl.Surface
	if win != nil {
		surface = th.CreateWindowSurface(dpy, cfg, win, nil)
	} else {
		surface = th.CreatePbufferSurface(dpy, cfg, []int32{egl.Width, int32(width), egl.Height, int32(height), egl.None})
	}
	if surface == nil {
		return fmt.Errorf("create surface: %v", th.GetError())
	}
	defer th.DestroySurface(dpy, surface)
	fmt.Printf("surface %s %dx%d handle=%d\n", surface.Kind(), surface.Width(), surface.Height(), surface.Handle())

	ctx := th.CreateContext(dpy, cfg, nil, []int32{egl.ContextClientVersion, 1, egl.None})
	if ctx == nil {
		return fmt.Errorf("create context: %v", th.GetError())
	}
	defer th.DestroyContext(dpy, ctx)

	if !th.MakeCurrent(dpy, surface, surface, ctx) {
		return fmt.Errorf("make current: %v", th.GetError())
	}
	defer th.MakeCurrent(dpy, nil, nil, nil)

	gl, err := th.GL()
	if err != nil {
		return err
	}

	points := floats(-0.5, 0, 0, 0, 0.5, 0)
	sizes := floats(2, 5, 2)
	gl.VertexPointer(2, gles.Float, 0, gles.ClientData(points))
	gl.PointSizePointer(gles.Float, 0, gles.ClientData(sizes))
	if err := gl.EnableClientState(gles.VertexArray); err != nil {
		return err
	}
	if err := gl.EnableClientState(gles.PointSizeArray); err != nil {
		return err
	}
	if err := gl.DrawArrays(gles.Points, 0, 3); err != nil {
		return err
	}
	if err := gl.DisableClientState(gles.PointSizeArray); err != nil {
		return err
	}

	triangle := fixeds(-1, -1, 1, -1, 0, 1)
	gl.VertexPointer(2, gles.Fixed, 0, gles.ClientData(triangle))
	if err := gl.DrawArrays(gles.Triangles, 0, 3); err != nil {
		return err
	}
	if code := gl.GetError(); code != gles.NoError {
		return fmt.Errorf("gl error: %v", code)
	}
	return nil
}

func queryString(th *egl.Thread, dpy *egl.Display, name int32) string {
	s, _ := th.QueryString(dpy, name)
	return s
}

func floats(v ...float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

// fixeds encodes v as 16.16 fixed point.
func fixeds(v ...float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(int32(f*65536)))
	}
	return b
}
