// Package main is the entry point for the dbgfront debugger front end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/command"
	"github.com/dshills/dbgfront/internal/config"
	"github.com/dshills/dbgfront/internal/frontend/console"
	"github.com/dshills/dbgfront/internal/frontend/mi"
	"github.com/dshills/dbgfront/internal/frontend/script"
	"github.com/dshills/dbgfront/internal/frontend/tui"
	"github.com/dshills/dbgfront/internal/interp"
	"github.com/dshills/dbgfront/internal/logging"
	"github.com/dshills/dbgfront/internal/metrics"
	"github.com/dshills/dbgfront/internal/remote"
	"github.com/dshills/dbgfront/internal/target"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the command line.
type options struct {
	ConfigPath  string
	Interpreter string
	LogLevel    string
	MetricsAddr string
	Listen      string
	Program     string
	Args        []string
}

// apply overrides cfg with the flags that were given.
func (o options) apply(cfg *config.Config) {
	if o.Interpreter != "" {
		cfg.Interpreter = o.Interpreter
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.Listen != "" {
		cfg.Remote.Listen = o.Listen
	}
	if o.Program != "" {
		cfg.Target.Program = o.Program
		cfg.Target.Args = o.Args
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		return 1
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, level, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	promReg := prometheus.NewRegistry()
	collectors, err := metrics.New(promReg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to register metrics: %v\n", err)
		return 1
	}
	if opts.MetricsAddr != "" {
		go serveHTTP(ctx, "metrics", opts.MetricsAddr, metricsRouter(promReg), logger)
	}
	if opts.ConfigPath != "" {
		watchConfig(ctx, opts.ConfigPath, level, logger)
	}

	registerInterpreters(interp.Default(), cfg)
	dir := interp.NewDirectory(interp.Default(), interp.WithLogger(logger), interp.WithMetrics(collectors))
	table := command.NewTable(command.Options{
		Program:       cfg.Target.Program,
		LogFile:       cfg.SessionLog.File,
		Redirect:      cfg.SessionLog.Redirect,
		DebugRedirect: cfg.SessionLog.DebugRedirect,
		Rotate:        cfg.LoggerConfig().Rotate,
		Logger:        logger,
	})

	ui := dir.NewUI(interp.WithEngine(table))
	defer func() {
		if err := ui.Close(); err != nil {
			logger.Warn("close ui", zap.Error(err))
		}
	}()
	if err := ui.SetTopLevel(cfg.Interpreter); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	bridge, err := connect(cfg, dir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if bridge != nil {
		table.SetTarget(bridge)
		defer func() {
			cctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := bridge.Close(cctx); err != nil {
				logger.Warn("close debug adapter", zap.Error(err))
			}
		}()
	}

	var srv *remote.Server
	if cfg.Remote.Listen != "" {
		srv = remote.NewServer(dir, remote.Options{
			Interpreter: cfg.Remote.Interpreter,
			Engine:      table,
			Logger:      logger,
		})
		defer srv.Close()
		go serveHTTP(ctx, "remote", cfg.Remote.Listen, srv.Handler(), logger)
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	s := newSession(ui, bridge, srv, interrupts, logger)
	if err := s.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// registerInterpreters adds every interpreter type dbgfront ships to reg.
func registerInterpreters(reg *interp.Registry, cfg *config.Config) {
	console.Register(reg)
	mi.Register(reg)
	tui.Register(reg, tui.Options{
		Mouse:       cfg.TUI.Mouse,
		HeaderColor: cfg.TUI.HeaderColor,
	})
	script.Register(reg, script.Options{
		Script:  cfg.Lua.Script,
		Timeout: time.Duration(cfg.Lua.TimeoutMS) * time.Millisecond,
	})
}

// connect starts or dials the configured debug adapter. It returns nil
// when no adapter is configured.
func connect(cfg *config.Config, dir *interp.Directory, logger *zap.Logger) (*target.Bridge, error) {
	var (
		t   target.Transport
		err error
	)
	switch {
	case len(cfg.Target.Adapter) > 0:
		t, err = target.Spawn(cfg.Target.Adapter)
	case cfg.Target.Address != "":
		t, err = target.Dial(cfg.Target.Address)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connect to debug adapter: %w", err)
	}
	client := target.NewClient(t, logger.Named("dap"))
	return target.NewBridge(client, dir, target.Options{
		Program: cfg.Target.Program,
		Args:    cfg.Target.Args,
	}), nil
}

func metricsRouter(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r
}

// serveHTTP serves h on addr until ctx is done.
func serveHTTP(ctx context.Context, name, addr string, h http.Handler, logger *zap.Logger) {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	logger.Info("listening", zap.String("server", name), zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("server stopped", zap.String("server", name), zap.String("addr", addr), zap.Error(err))
	}
}

// watchConfig applies log level changes from the configuration file.
func watchConfig(ctx context.Context, path string, level zap.AtomicLevel, logger *zap.Logger) {
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			logger.Warn("configuration reload failed", zap.Error(err))
			return
		}
		lvl, err := logging.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return
		}
		level.SetLevel(lvl)
		logger.Info("configuration reloaded", zap.Stringer("level", lvl))
	})
	if err != nil {
		logger.Warn("configuration watch disabled", zap.Error(err))
	}
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.Interpreter, "interpreter", "", "Top-level interpreter (console, mi, mi2, mi3, mi4, tui, lua)")
	flag.StringVar(&opts.Interpreter, "i", "", "Top-level interpreter (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.StringVar(&opts.Listen, "listen", "", "Accept remote UI connections on this address")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dbgfront - debugger front end\n\n")
		fmt.Fprintf(os.Stderr, "Usage: dbgfront [options] [program [args...]]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dbgfront -c dbgfront.toml ./hello      Debug ./hello with the configured adapter\n")
		fmt.Fprintf(os.Stderr, "  dbgfront -i mi3 ./hello                Speak MI version 3 on stdio\n")
		fmt.Fprintf(os.Stderr, "  dbgfront -i tui ./hello                Full-screen terminal UI\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("dbgfront %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if args := flag.Args(); len(args) > 0 {
		opts.Program = args[0]
		opts.Args = args[1:]
	}
	return opts
}
