package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: DYDCHECK_[SECTION]_[KEY] (e.g., DYDCHECK_DB_ENABLED).
func ApplyEnvOverrides(cfg *Config) {
	// Input / output
	setEnvString(&cfg.Input.Pattern, "DYDCHECK_INPUT_PATTERN")
	setEnvInt(&cfg.Input.MaxTokens, "DYDCHECK_INPUT_MAX_TOKENS")
	setEnvString(&cfg.Output.Dir, "DYDCHECK_OUTPUT_DIR")

	// Parse
	setEnvInt(&cfg.Parse.MaxDiagnostics, "DYDCHECK_PARSE_MAX_DIAGNOSTICS")

	// Database
	setEnvBool(&cfg.DB.Enabled, "DYDCHECK_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "DYDCHECK_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "DYDCHECK_DB_BUSY_TIMEOUT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "DYDCHECK_WATCH_DEBOUNCE")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "DYDCHECK_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, "DYDCHECK_OBSERVABILITY_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "DYDCHECK_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "DYDCHECK_OBSERVABILITY_ENABLE_TRACING")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
