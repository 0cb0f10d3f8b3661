package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreapp "dydcheck/internal/core/app"
	"dydcheck/internal/core/config"
	"dydcheck/internal/core/ports"
	"dydcheck/internal/data/history"
	"dydcheck/internal/shared/observability"
)

const (
	exitOK          = 0
	exitDiagnostics = 1
	exitUsage       = 2
)

// Run is the process entry point; it returns the exit status.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "dydcheck v%s\n", versionString)
		return exitOK
	}

	configureLogging(stderr, opts.verbose, opts.quiet)

	if len(opts.args) != 1 {
		fmt.Fprintln(stderr, "usage: dydcheck [flags] <input.dyd>")
		return exitUsage
	}
	input := opts.args[0]

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "path", opts.configPath, "error", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := setupTracing(ctx, cfg)
	defer shutdownTracing()

	appOpts := []coreapp.Option{coreapp.WithLogger(slog.Default())}
	if cfg.DB.Enabled {
		store, err := history.Open(cfg.DB.Path, cfg.DB.BusyTimeout)
		if err != nil {
			slog.Error("history setup failed", "path", cfg.DB.Path, "error", err)
			return exitUsage
		}
		appOpts = append(appOpts, coreapp.WithHistory(history.NewAdapter(store, cfg.DB.ProjectKey)))
	}

	app, err := coreapp.New(cfg, appOpts...)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return exitUsage
	}
	defer app.Close()

	if opts.watch {
		return runWatch(ctx, app, cfg, input, stdout, opts.quiet)
	}

	report, err := app.Check(ctx, ports.CheckRequest{Path: input})
	if err != nil {
		slog.Error("check failed", "path", input, "error", err)
		return exitUsage
	}
	if !opts.quiet {
		renderSummary(stdout, report)
	}
	if opts.history {
		if err := printTrend(stdout, app, opts.window); err != nil {
			slog.Warn("trend report unavailable", "error", err)
		}
	}
	if report.Failed() {
		return exitDiagnostics
	}
	return exitOK
}

func runWatch(ctx context.Context, app *coreapp.App, cfg *config.Config, input string, stdout io.Writer, quiet bool) int {
	if cfg.Observability.Enabled {
		srv := observability.NewServer(cfg.Observability.Address, coreapp.NewHealthService(app))
		if err := srv.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "addr", cfg.Observability.Address, "error", err)
			return exitUsage
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	err := app.Watch(ctx, []string{input}, func(report *ports.CheckReport, err error) {
		if err != nil {
			slog.Error("check failed", "path", input, "error", err)
			return
		}
		if !quiet {
			renderSummary(stdout, report)
		}
	})
	if err != nil {
		slog.Error("watch failed", "path", input, "error", err)
		return exitUsage
	}
	return exitOK
}

func printTrend(w io.Writer, app *coreapp.App, window time.Duration) error {
	runs, err := app.RecentRuns(time.Time{})
	if err != nil {
		return err
	}
	trend, err := history.BuildTrendReport(runs, window)
	if err != nil {
		return err
	}
	renderTrend(w, trend)
	return nil
}

// loadConfig reads path; a missing default config file falls back to the
// built-in defaults. Environment overrides apply in both cases.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || path != defaultConfigPath {
			return nil, err
		}
		slog.Debug("no config file, using defaults", "path", path)
		cfg = config.DefaultConfig()
	}

	config.ApplyEnvOverrides(cfg)
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, errs[0]
	}
	return cfg, nil
}

func setupTracing(ctx context.Context, cfg *config.Config) func() {
	if !cfg.Observability.EnableTracing {
		return func() {}
	}
	shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, versionString)
	if err != nil {
		slog.Warn("tracing disabled", "endpoint", cfg.Observability.OTLPEndpoint, "error", err)
		return func() {}
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}
}

func configureLogging(w io.Writer, verbose, quiet bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	} else if quiet {
		logLevel = slog.LevelWarn
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
