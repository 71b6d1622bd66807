package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/rc"
	"golang.org/x/term"
)

// configAttribs are the columns printed by "rcgl configs", in order.
var configAttribs = []int32{
	egl.ConfigID,
	egl.RedSize,
	egl.GreenSize,
	egl.BlueSize,
	egl.AlphaSize,
	egl.DepthSize,
	egl.StencilSize,
	egl.SurfaceType,
}

type configRow struct {
	Index   int              `json:"index"`
	Format  string           `json:"format"`
	Attribs map[string]int32 `json:"attribs"`
}

func runConfigs(args []string) int {
	fs := flag.NewFlagSet("configs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/rcgl/config.yaml)")
	asJSON := fs.Bool("json", false, "Print JSON even when stdout is a terminal")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: rcgl configs [--path PATH] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Initialize the display and list every EGL config the host offers.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
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

	reg := egl.NewRegistry(rc.Dialer(socketPath), egl.Options{Logger: newLogger(res.Config)})
	th := reg.NewThread()
	defer th.Close()

	rows, err := collectConfigs(th, reg.GetDisplay(egl.DefaultDisplay))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	printConfigTable(os.Stdout, rows)
	return 0
}

func collectConfigs(th *egl.Thread, dpy *egl.Display) ([]configRow, error) {
	if _, _, ok := th.Initialize(dpy); !ok {
		return nil, fmt.Errorf("initialize display: %v", th.GetError())
	}
	n, ok := th.GetConfigs(dpy, nil)
	if !ok {
		return nil, fmt.Errorf("get configs: %v", th.GetError())
	}
	configs := make([]egl.Config, n)
	n, _ = th.GetConfigs(dpy, configs)

	rows := make([]configRow, 0, n)
	for _, cfg := range configs[:n] {
		row := configRow{Index: int(cfg), Attribs: make(map[string]int32, len(configAttribs))}
		for _, attr := range configAttribs {
			if v, ok := th.GetConfigAttrib(dpy, cfg, attr); ok {
				row.Attribs[egl.AttribName(attr)] = v
			}
		}
		format, _ := dpy.ConfigPixelFormat(cfg)
		row.Format = format.String()
		rows = append(rows, row)
	}
	return rows, nil
}

// printConfigTable writes rows as space-padded columns.
func printConfigTable(w io.Writer, rows []configRow) {
	header := []string{"index", "format"}
	for _, attr := range configAttribs {
		header = append(header, egl.AttribName(attr))
	}

	cells := [][]string{header}
	for _, row := range rows {
		line := []string{fmt.Sprint(row.Index), row.Format}
		for _, attr := range configAttribs {
			v := row.Attribs[egl.AttribName(attr)]
			if attr == egl.SurfaceType {
				line = append(line, surfaceTypeString(v))
				continue
			}
			line = append(line, fmt.Sprint(v))
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(header))
	for _, line := range cells {
		for i, cell := range line {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for _, line := range cells {
		var b strings.Builder
		for i, cell := range line {
			if i == len(line)-1 {
				b.WriteString(cell)
				break
			}
			fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(w, b.String())
	}
}

func surfaceTypeString(v int32) string {
	var parts []string
	if v&egl.WindowBit != 0 {
		parts = append(parts, "window")
	}
	if v&egl.PbufferBit != 0 {
		parts = append(parts, "pbuffer")
	}
	if v&egl.PixmapBit != 0 {
		parts = append(parts, "pixmap")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "|")
}
