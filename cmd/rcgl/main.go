package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/rcgl/internal/config"
	"github.com/1broseidon/rcgl/internal/host"
	"github.com/1broseidon/rcgl/internal/rc"
	"github.com/1broseidon/rcgl/internal/tracelog"
	"github.com/1broseidon/rcgl/internal/tui"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "host":
		os.Exit(runHost(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "configs":
		os.Exit(runConfigs(os.Args[2:]))
	case "demo":
		os.Exit(runDemo(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: rcgl <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  host                Run the reference rendering host (foreground)")
	fmt.Fprintln(w, "  status              Show host status")
	fmt.Fprintln(w, "  configs             List the display's EGL configs")
	fmt.Fprintln(w, "  demo                Draw a point-size array through the host")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  tui                 Edit configuration and watch the host")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'rcgl <command> --help' for command-specific options.")
}

// loadConfig loads path, or the default config file when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

func runHost(args []string) int {
	fs := flag.NewFlagSet("host", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/rcgl/config.yaml)")
	socket := fs.String("socket", "", "Socket path (default: config socket or runtime dir)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: rcgl host [--path PATH] [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the reference rendering host until interrupted.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "host takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	logger := newLogger(cfg)

	traceCfg, err := cfg.TraceConfig()
	if err != nil {
		log.Fatalf("Failed to resolve trace path: %v", err)
	}
	trace, err := tracelog.NewLogger(traceCfg)
	if err != nil {
		logger.Warn("host call trace disabled", "error", err)
		trace = nil
	}
	defer trace.Close()

	h, err := host.New(host.Options{
		RendererVersion: cfg.Host.RendererVersion,
		EGLMajor:        cfg.Host.EGLMajor,
		EGLMinor:        cfg.Host.EGLMinor,
		Vendor:          cfg.Host.Vendor,
		Extensions:      cfg.Host.Extensions,
		MaxTextureUnits: cfg.Host.MaxTextureUnits,
		Configs:         cfg.ConfigTable(),
		DrawHistory:     cfg.Host.DrawHistory,
		Logger:          logger,
		Trace:           trace,
	})
	if err != nil {
		log.Fatalf("Failed to create host: %v", err)
	}

	socketPath := *socket
	if socketPath == "" {
		socketPath, err = cfg.SocketPath()
		if err != nil {
			log.Fatalf("Failed to resolve socket path: %v", err)
		}
	}

	server, err := rc.NewServer(socketPath, h, logger)
	if err != nil {
		log.Fatalf("Failed to create host server: %v", err)
	}
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start host server: %v", err)
	}

	logger.Info("rcgl host started",
		"renderer_version", cfg.Host.RendererVersion,
		"configs", len(cfg.Host.Configs),
		"trace", traceCfg.Enabled)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	server.Stop()
	return 0
}

// socketFromConfig resolves the host socket for client commands.
func socketFromConfig(path string) (string, error) {
	res, err := loadConfig(path)
	if err != nil {
		return "", err
	}
	return res.Config.SocketPath()
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/rcgl/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: rcgl status [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show host status over the render-control socket.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	socketPath, err := socketFromConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	client, err := rc.Dial(socketPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Close()

	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	// The status query's own connection is counted as a session.
	fmt.Printf("renderer_version: %d\n", status.RendererVersion)
	fmt.Printf("sessions:         %d\n", status.Sessions)
	fmt.Printf("contexts:         %d\n", status.Contexts)
	fmt.Printf("surfaces:         %d\n", status.Surfaces)
	fmt.Printf("color_buffers:    %d\n", status.ColorBuffers)
	fmt.Printf("draws:            %d\n", status.Draws)
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  rcgl config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  rcgl config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  rcgl config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/rcgl/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/rcgl/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			for _, f := range res.Files {
				fmt.Printf("# loaded: %s\n", f)
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/rcgl/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/rcgl/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: rcgl tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive editor for the host configuration with a live view of the")
		fmt.Fprintln(os.Stderr, "running host. Works offline when the host is not running.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab, 1-4  Switch tabs")
		fmt.Fprintln(os.Stderr, "  e         Edit settings / set a config attribute")
		fmt.Fprintln(os.Stderr, "  c, x      Clone / remove the selected config")
		fmt.Fprintln(os.Stderr, "  a, x      Add / remove extensions")
		fmt.Fprintln(os.Stderr, "  r         Refresh the host view")
		fmt.Fprintln(os.Stderr, "  Ctrl+S    Review and save changes")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	dial := func() (tui.HostClient, error) {
		socketPath, err := socketFromConfig(*path)
		if err != nil {
			return nil, err
		}
		client, err := rc.Dial(socketPath)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	if err := tui.Run(*path, dial); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
