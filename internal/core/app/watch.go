package app

import (
	"context"
	"time"

	"dydcheck/internal/core/ports"
	"dydcheck/internal/core/watcher"
	"dydcheck/internal/shared/observability"
	"dydcheck/internal/shared/util"
)

// Watch checks every path once, then re-checks inputs as they change until
// ctx is cancelled. Re-runs of the same input are rate limited; a rejected
// change is dropped and picked up by the next event.
func (a *App) Watch(ctx context.Context, paths []string, onReport func(*ports.CheckReport, error)) error {
	if onReport == nil {
		onReport = func(*ports.CheckReport, error) {}
	}

	limiters := util.NewLimiterRegistry(a.Config.Watch.MaxRunsPerSecond, 1, time.Minute)
	defer limiters.Close()

	for _, path := range paths {
		limiters.Get(path).Allow(1)
		onReport(a.Check(ctx, ports.CheckRequest{Path: path}))
	}

	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.Config.Input.Pattern, nil, func(changed []string) {
		for _, path := range changed {
			if ctx.Err() != nil {
				return
			}
			if !limiters.Get(path).Allow(1) {
				observability.WatchRunsDroppedTotal.Inc()
				a.logger.Debug("re-run rate limited", "path", path)
				continue
			}
			a.logger.Info("input changed", "path", path)
			onReport(a.Check(ctx, ports.CheckRequest{Path: path}))
		}
	})
	if err != nil {
		return err
	}
	if err := w.Watch(paths); err != nil {
		_ = w.Close()
		return err
	}
	a.logger.Info("watching for changes", "paths", paths)

	<-ctx.Done()
	return w.Close()
}
