package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"dydcheck/internal/core/errors"
	"dydcheck/internal/core/ports"
	"dydcheck/internal/data/history"
	"dydcheck/internal/engine/parser"
	"dydcheck/internal/engine/token"
	"dydcheck/internal/shared/observability"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Check loads one token file, walks it and writes the three artifacts.
// Diagnostics are part of the report; a returned error means the run
// never produced tables (bad path, malformed input, I/O failure).
func (a *App) Check(ctx context.Context, req ports.CheckRequest) (*ports.CheckReport, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Check", trace.WithAttributes(
		attribute.String("input", req.Path),
	))
	defer span.End()

	report, err := a.check(ctx, req.Path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	return report, nil
}

func (a *App) check(ctx context.Context, path string) (*ports.CheckReport, error) {
	if !a.AcceptsInput(path) {
		return nil, errors.AddContext(
			errors.Newf(errors.CodeValidationError, "input %q does not match pattern %q", path, a.Config.Input.Pattern),
			errors.CtxPath, path)
	}

	started := time.Now()
	tokens, err := a.load(ctx, path)
	if err != nil {
		return nil, err
	}
	a.dumpTokens(tokens)

	_, parseSpan := observability.Tracer.Start(ctx, "parser.Parse")
	parseStart := time.Now()
	res := parser.Parse(tokens,
		parser.WithLogger(a.logger.With("path", path)),
		parser.WithMaxDiagnostics(a.Config.Parse.MaxDiagnostics),
	)
	observability.ParsingDuration.Observe(time.Since(parseStart).Seconds())
	parseSpan.SetAttributes(
		attribute.Int("tokens", res.TokenCount),
		attribute.Int("diagnostics", len(res.Diagnostics)),
	)
	parseSpan.End()

	artifacts, err := a.writer.Write(path, res)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write artifacts"), errors.CtxPath, path)
	}

	report := &ports.CheckReport{
		RunID:     uuid.NewString(),
		Input:     path,
		Result:    res,
		Artifacts: artifacts,
		Duration:  time.Since(started),
	}
	a.recordMetrics(report)
	a.saveRun(report, started)

	a.mu.Lock()
	a.last = report
	a.runs++
	a.mu.Unlock()

	a.logger.Info("check complete",
		"path", path,
		"tokens", res.TokenCount,
		"procedures", len(res.Procedures),
		"variables", len(res.Variables),
		"diagnostics", len(res.Diagnostics),
		"duration", report.Duration,
	)
	return report, nil
}

func (a *App) load(ctx context.Context, path string) ([]token.Token, error) {
	_, span := observability.Tracer.Start(ctx, "token.Decode")
	defer span.End()

	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(errors.Wrap(err, code, "read input"), errors.CtxPath, path)
	}

	tokens, err := token.Decode(bytes.NewReader(data), token.DecodeOptions{MaxTokens: a.Config.Input.MaxTokens})
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	span.SetAttributes(attribute.Int("tokens", len(tokens)))
	return tokens, nil
}

// dumpTokens logs the decoded stream at debug level, one record per token.
func (a *App) dumpTokens(tokens []token.Token) {
	if !a.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, tok := range tokens {
		a.logger.Debug("token", "index", i, "kind", tok.Kind.String(), "code", int(tok.Kind), "lexeme", tok.Lexeme)
	}
}

func (a *App) recordMetrics(r *ports.CheckReport) {
	outcome := "success"
	if r.Failed() {
		outcome = "failed"
	}
	observability.RunsTotal.WithLabelValues(outcome).Inc()
	observability.TokensTotal.Add(float64(r.Result.TokenCount))
	observability.SymbolsDeclared.WithLabelValues("procedures").Set(float64(len(r.Result.Procedures)))
	observability.SymbolsDeclared.WithLabelValues("variables").Set(float64(len(r.Result.Variables)))
	for _, d := range r.Result.Diagnostics {
		observability.DiagnosticsTotal.WithLabelValues(string(d.Code)).Inc()
	}
}

func (a *App) saveRun(r *ports.CheckReport, started time.Time) {
	if a.history == nil {
		return
	}
	_, err := a.history.SaveRun(history.RunRecord{
		ID:              r.RunID,
		Input:           r.Input,
		StartedAt:       started.UTC(),
		Duration:        r.Duration,
		Success:         !r.Failed(),
		TokenCount:      r.Result.TokenCount,
		LineCount:       r.Result.Lines,
		ProcedureCount:  len(r.Result.Procedures),
		VariableCount:   len(r.Result.Variables),
		DiagnosticCount: len(r.Result.Diagnostics),
	})
	if err != nil {
		observability.HistoryWriteErrorsTotal.Inc()
		a.logger.Warn("failed to record run", "path", r.Input, "error", err)
	}
}

// RecentRuns returns stored runs started at or after since.
func (a *App) RecentRuns(since time.Time) ([]history.RunRecord, error) {
	if a.history == nil {
		return nil, fmt.Errorf("run history is disabled")
	}
	return a.history.LoadRuns(since)
}
