package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	Input         Input         `toml:"input"`
	Output        Output        `toml:"output"`
	Parse         ParseOptions  `toml:"parse"`
	DB            Database      `toml:"db"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Input struct {
	// Pattern is a glob matched against the input file's base name.
	Pattern   string `toml:"pattern"`
	MaxTokens int    `toml:"max_tokens"`
}

type Output struct {
	// Dir receives the artifacts; empty means next to the input file.
	Dir            string `toml:"dir"`
	ProcedureExt   string `toml:"procedure_ext"`
	VariableExt    string `toml:"variable_ext"`
	DiagnosticsExt string `toml:"diagnostics_ext"`
}

type ParseOptions struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
	ProjectKey  string        `toml:"project_key"`
}

type Watch struct {
	Debounce         time.Duration `toml:"debounce"`
	MaxRunsPerSecond float64       `toml:"max_runs_per_second"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Address       string `toml:"address"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
