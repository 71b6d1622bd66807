package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/rcgl/internal/config"
)

// GeneralTab edits the scalar settings: socket, logging and what the host
// reports to clients.
type GeneralTab struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fSocket          string
	fLevel           string
	fTrace           bool
	fTraceFile       string
	fRendererVersion string
	fEGLMajor        string
	fEGLMinor        string
	fVendor          string
	fTextureUnits    string
	fDrawHistory     string
}

// NewGeneralTab creates a GeneralTab editing cfg in place.
func NewGeneralTab(cfg *config.Config) GeneralTab {
	return GeneralTab{cfg: cfg}
}

// Update implements tea.Model.
func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if g.editing {
		return g.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" && g.cfg != nil {
			g.startEditing()
			return g, g.form.Init()
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			g.editing = false
			g.form = nil
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.applyForm()
		g.editing = false
		g.form = nil
		return g, nil
	}
	return g, cmd
}

func nonNegative(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func (g *GeneralTab) loadForm() {
	cfg := g.cfg
	g.fSocket = cfg.Socket
	g.fLevel = cfg.Logging.Level
	g.fTrace = cfg.Logging.Trace
	g.fTraceFile = cfg.Logging.File
	g.fRendererVersion = strconv.Itoa(cfg.Host.RendererVersion)
	g.fEGLMajor = strconv.Itoa(cfg.Host.EGLMajor)
	g.fEGLMinor = strconv.Itoa(cfg.Host.EGLMinor)
	g.fVendor = cfg.Host.Vendor
	g.fTextureUnits = strconv.Itoa(cfg.Host.MaxTextureUnits)
	g.fDrawHistory = strconv.Itoa(cfg.Host.DrawHistory)
}

func (g *GeneralTab) startEditing() {
	g.loadForm()

	levelOpts := []huh.Option[string]{
		huh.NewOption("debug", "debug"),
		huh.NewOption("info", "info"),
		huh.NewOption("warn", "warn"),
		huh.NewOption("error", "error"),
	}

	w := g.width - 4
	if w < 40 {
		w = 40
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("socket").
				Title("Socket").
				Description("Render-control socket (empty: runtime dir)").
				Value(&g.fSocket),

			huh.NewSelect[string]().
				Key("level").
				Title("Log Level").
				Options(levelOpts...).
				Value(&g.fLevel),

			huh.NewConfirm().
				Key("trace").
				Title("Host Call Trace").
				Description("Write one line per host call to the trace file").
				Value(&g.fTrace),

			huh.NewInput().
				Key("trace_file").
				Title("Trace File").
				Description("Empty: rcgl-trace.log in the runtime dir").
				Value(&g.fTraceFile),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("renderer_version").
				Title("Renderer Version").
				Validate(nonNegative).
				Value(&g.fRendererVersion),
			huh.NewInput().
				Key("egl_major").
				Title("EGL Major").
				Validate(nonNegative).
				Value(&g.fEGLMajor),
			huh.NewInput().
				Key("egl_minor").
				Title("EGL Minor").
				Validate(nonNegative).
				Value(&g.fEGLMinor),
			huh.NewInput().
				Key("vendor").
				Title("Host Vendor").
				Value(&g.fVendor),
			huh.NewInput().
				Key("max_texture_units").
				Title("Max Texture Units").
				Validate(nonNegative).
				Value(&g.fTextureUnits),
			huh.NewInput().
				Key("draw_history").
				Title("Draw History").
				Description("Draw records kept for inspection").
				Validate(nonNegative).
				Value(&g.fDrawHistory),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	g.editing = true
}

// applyForm copies the form values into the config. Unparseable numbers
// leave the previous value.
func (g *GeneralTab) applyForm() {
	if g.cfg == nil {
		return
	}
	g.cfg.Socket = strings.TrimSpace(g.fSocket)
	if g.fLevel != "" {
		g.cfg.Logging.Level = g.fLevel
	}
	g.cfg.Logging.Trace = g.fTrace
	g.cfg.Logging.File = strings.TrimSpace(g.fTraceFile)
	if v := strings.TrimSpace(g.fVendor); v != "" {
		g.cfg.Host.Vendor = v
	}

	ints := []struct {
		in  string
		out *int
	}{
		{g.fRendererVersion, &g.cfg.Host.RendererVersion},
		{g.fEGLMajor, &g.cfg.Host.EGLMajor},
		{g.fEGLMinor, &g.cfg.Host.EGLMinor},
		{g.fTextureUnits, &g.cfg.Host.MaxTextureUnits},
		{g.fDrawHistory, &g.cfg.Host.DrawHistory},
	}
	for _, f := range ints {
		if v, err := strconv.Atoi(strings.TrimSpace(f.in)); err == nil && v >= 0 {
			*f.out = v
		}
	}
}

// View implements tea.Model.
func (g GeneralTab) View() string {
	if g.editing && g.form != nil {
		return g.viewEditing()
	}
	return g.viewDisplay()
}

func (g GeneralTab) viewDisplay() string {
	cfg := g.cfg
	if cfg == nil {
		return placeholder("No config loaded", g.width, g.height)
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	trace := "off"
	if cfg.Logging.Trace {
		trace = "on " + displayOrDefault(cfg.Logging.File, "(runtime dir)")
	}

	lines := []string{
		"",
		row("Socket", displayOrDefault(cfg.Socket, "(runtime dir)")),
		row("Log Level", cfg.Logging.Level),
		row("Host Call Trace", trace),
		row("Trace Rotation", fmt.Sprintf("%d MB x %d files", cfg.Logging.MaxSizeMB, cfg.Logging.MaxFiles)),
		"",
		row("Renderer Version", strconv.Itoa(cfg.Host.RendererVersion)),
		row("EGL Version", fmt.Sprintf("%d.%d", cfg.Host.EGLMajor, cfg.Host.EGLMinor)),
		row("Host Vendor", cfg.Host.Vendor),
		row("Max Texture Units", strconv.Itoa(cfg.Host.MaxTextureUnits)),
		row("Draw History", strconv.Itoa(cfg.Host.DrawHistory)),
		"",
		dimStyle.Render("  Press 'e' to edit settings"),
	}

	return lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (g GeneralTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing General Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	return lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2).
		Render(header + "\n\n" + g.form.View())
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
