package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dydcheck_parsing_seconds",
		Help:    "Time spent walking one token stream.",
		Buckets: prometheus.DefBuckets,
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dydcheck_runs_total",
		Help: "Total number of check runs, by outcome.",
	}, []string{"outcome"})

	TokensTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dydcheck_tokens_total",
		Help: "Total number of tokens consumed across runs.",
	})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dydcheck_diagnostics_total",
		Help: "Total number of diagnostics reported, by code.",
	}, []string{"code"})

	SymbolsDeclared = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dydcheck_symbols_declared",
		Help: "Number of table rows produced by the last run.",
	}, []string{"table"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dydcheck_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatchRunsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dydcheck_watch_runs_dropped_total",
		Help: "Total number of watch-triggered runs rejected by the rate limiter.",
	})

	HistoryWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dydcheck_history_write_errors_total",
		Help: "Total number of run records that failed to persist.",
	})
)
