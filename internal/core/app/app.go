package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"dydcheck/internal/core/config"
	"dydcheck/internal/core/errors"
	"dydcheck/internal/core/ports"
	"dydcheck/internal/output"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

var _ ports.Checker = (*App)(nil)

type App struct {
	Config *config.Config

	fs      afero.Fs
	writer  ports.ArtifactWriter
	history ports.RunHistory
	logger  *slog.Logger
	pattern glob.Glob

	mu   sync.RWMutex
	last *ports.CheckReport
	runs int
}

type Option func(*App)

// WithFs swaps the filesystem used for input and artifacts.
func WithFs(fs afero.Fs) Option {
	return func(a *App) {
		if fs != nil {
			a.fs = fs
		}
	}
}

func WithHistory(h ports.RunHistory) Option {
	return func(a *App) {
		a.history = h
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithWriter(w ports.ArtifactWriter) Option {
	return func(a *App) {
		a.writer = w
	}
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	pattern, err := glob.Compile(cfg.Input.Pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid input pattern %q", cfg.Input.Pattern))
	}

	a := &App{
		Config:  cfg,
		fs:      afero.NewOsFs(),
		logger:  slog.Default(),
		pattern: pattern,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.writer == nil {
		a.writer = output.NewWriter(a.fs, cfg.Output.Dir, output.Extensions{
			Procedures:  cfg.Output.ProcedureExt,
			Variables:   cfg.Output.VariableExt,
			Diagnostics: cfg.Output.DiagnosticsExt,
		})
	}
	return a, nil
}

// AcceptsInput reports whether path's base name matches the input pattern.
func (a *App) AcceptsInput(path string) bool {
	return a.pattern.Match(filepath.Base(path))
}

// LastReport returns the most recent completed run, if any.
func (a *App) LastReport() *ports.CheckReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

func (a *App) Runs() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.runs
}

func (a *App) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}
