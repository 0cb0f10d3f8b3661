package ports

import (
	"context"
	"time"

	"dydcheck/internal/data/history"
	"dydcheck/internal/engine/parser"
	"dydcheck/internal/output"
)

// ArtifactWriter persists the tables and diagnostics of one run.
type ArtifactWriter interface {
	Write(input string, res *parser.Result) (output.Artifacts, error)
}

// RunHistory abstracts run persistence for the history store.
type RunHistory interface {
	SaveRun(rec history.RunRecord) (history.RunRecord, error)
	LoadRuns(since time.Time) ([]history.RunRecord, error)
	Close() error
}

// CheckRequest names one input to check.
type CheckRequest struct {
	Path string
}

// Checker is the driving port used by the CLI.
type Checker interface {
	Check(ctx context.Context, req CheckRequest) (*CheckReport, error)
	Watch(ctx context.Context, paths []string, onReport func(*CheckReport, error)) error
}

// CheckReport summarizes a completed run.
type CheckReport struct {
	RunID     string
	Input     string
	Result    *parser.Result
	Artifacts output.Artifacts
	Duration  time.Duration
}

// Failed reports whether the run raised any diagnostic.
func (r *CheckReport) Failed() bool {
	return r.Result != nil && r.Result.Failed()
}
