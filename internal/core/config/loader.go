package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse decodes TOML text, applies defaults and validates the result.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errs[0]
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Input.Pattern) == "" {
		cfg.Input.Pattern = "*.dyd"
	}

	if strings.TrimSpace(cfg.Output.ProcedureExt) == "" {
		cfg.Output.ProcedureExt = ".pro"
	}
	if strings.TrimSpace(cfg.Output.VariableExt) == "" {
		cfg.Output.VariableExt = ".var"
	}
	if strings.TrimSpace(cfg.Output.DiagnosticsExt) == "" {
		cfg.Output.DiagnosticsExt = ".err"
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "data/database/history.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 2 * time.Second
	}
	if strings.TrimSpace(cfg.DB.ProjectKey) == "" {
		cfg.DB.ProjectKey = "default"
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if cfg.Watch.MaxRunsPerSecond <= 0 {
		cfg.Watch.MaxRunsPerSecond = 2
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9464"
	}
}

func normalize(cfg *Config) {
	cfg.Input.Pattern = strings.TrimSpace(cfg.Input.Pattern)
	cfg.Output.Dir = strings.TrimSpace(cfg.Output.Dir)
	cfg.Output.ProcedureExt = normalizeExt(cfg.Output.ProcedureExt)
	cfg.Output.VariableExt = normalizeExt(cfg.Output.VariableExt)
	cfg.Output.DiagnosticsExt = normalizeExt(cfg.Output.DiagnosticsExt)
	cfg.DB.Path = strings.TrimSpace(cfg.DB.Path)
	cfg.DB.ProjectKey = strings.TrimSpace(cfg.DB.ProjectKey)
	cfg.Observability.Address = strings.TrimSpace(cfg.Observability.Address)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
