package config

import (
	"fmt"
	"strings"

	"dydcheck/internal/shared/util"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

// Validate returns every problem found in cfg.
func Validate(cfg *Config) []error {
	var errs []error

	if _, err := glob.Compile(cfg.Input.Pattern); err != nil {
		errs = append(errs, fmt.Errorf("input.pattern %q is not a valid glob: %w", cfg.Input.Pattern, err))
	}
	if cfg.Input.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("input.max_tokens must be >= 0, got %d", cfg.Input.MaxTokens))
	}
	if cfg.Parse.MaxDiagnostics < 0 {
		errs = append(errs, fmt.Errorf("parse.max_diagnostics must be >= 0, got %d", cfg.Parse.MaxDiagnostics))
	}

	exts := map[string]string{
		"output.procedure_ext":   cfg.Output.ProcedureExt,
		"output.variable_ext":    cfg.Output.VariableExt,
		"output.diagnostics_ext": cfg.Output.DiagnosticsExt,
	}
	seen := make(map[string]string, len(exts))
	for _, key := range []string{"output.procedure_ext", "output.variable_ext", "output.diagnostics_ext"} {
		ext := exts[key]
		if ext == "" || util.ContainsPathSeparator(ext) {
			errs = append(errs, fmt.Errorf("%s %q is not a valid file extension", key, ext))
			continue
		}
		if other, ok := seen[ext]; ok {
			errs = append(errs, fmt.Errorf("output conflict: %s and %s share the same extension %q", other, key, ext))
			continue
		}
		seen[ext] = key
	}

	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		errs = append(errs, fmt.Errorf("db.path must not be empty when db is enabled"))
	}
	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must be >= 0, got %s", cfg.Watch.Debounce))
	}
	if cfg.Observability.EnableTracing && cfg.Observability.OTLPEndpoint == "" {
		errs = append(errs, fmt.Errorf("observability.otlp_endpoint is required when tracing is enabled"))
	}
	return errs
}
