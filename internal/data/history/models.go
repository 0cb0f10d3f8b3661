package history

import "time"

const SchemaVersion = 1

// RunRecord is one persisted check run.
type RunRecord struct {
	ID              string
	ProjectKey      string
	SchemaVersion   int
	Input           string
	StartedAt       time.Time
	Duration        time.Duration
	Success         bool
	TokenCount      int
	LineCount       int
	ProcedureCount  int
	VariableCount   int
	DiagnosticCount int
}

type TrendPoint struct {
	Timestamp        time.Time `json:"timestamp"`
	Input            string    `json:"input"`
	Success          bool      `json:"success"`
	DiagnosticCount  int       `json:"diagnostic_count"`
	DeltaDiagnostics int       `json:"delta_diagnostics"`
	AvgDiagnostics   float64   `json:"avg_diagnostics"`
	FailureRatePct   float64   `json:"failure_rate_pct"`
	WindowHours      float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	RunCount      int          `json:"run_count"`
	FailureCount  int          `json:"failure_count"`
	Points        []TrendPoint `json:"points"`
}
