package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load reads the configuration file with Koanf, applies environment-variable
// overrides, and validates the result. An empty path loads defaults plus
// environment overrides only.
//
// Environment overrides are resolved exactly once here; the analysis core
// never reads the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %q: %w", path, err)
		}
		if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
			return nil, fmt.Errorf("failed to parse config from %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides overlays the well-known environment variables onto the
// configuration. Variables take precedence over file values.
func applyEnvOverrides(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("SLS_PROJECT_NAME", &cfg.SLS.Project)
	setString("SLS_LOGSTORE_NAME", &cfg.SLS.Logstore)
	setString("SLS_REGION", &cfg.SLS.Region)
	setString("SLS_ENDPOINT", &cfg.SLS.Endpoint)
	setString("STS_ROLE_ARN", &cfg.STS.RoleARN)
	setString("STS_SESSION_NAME", &cfg.STS.SessionName)
	setString("LOG_LEVEL", &cfg.LogLevel)

	if v := os.Getenv("STS_DURATION_SECONDS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return NewConfigError(fmt.Sprintf("STS_DURATION_SECONDS: invalid integer %q", v))
		}
		cfg.STS.DurationSeconds = parsed
	}
	if v := os.Getenv("ERROR_TRACES_LIMIT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return NewConfigError(fmt.Sprintf("ERROR_TRACES_LIMIT: invalid integer %q", v))
		}
		cfg.Analysis.ErrorTracesLimit = parsed
	}
	if v := os.Getenv("DURATION_THRESHOLD_NANOS"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return NewConfigError(fmt.Sprintf("DURATION_THRESHOLD_NANOS: invalid integer %q", v))
		}
		cfg.Analysis.DurationThresholdNanos = parsed
	}
	if v := os.Getenv("ANALYSIS_BEST_EFFORT"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return NewConfigError(fmt.Sprintf("ANALYSIS_BEST_EFFORT: invalid boolean %q", v))
		}
		cfg.Analysis.BestEffort = parsed
	}

	return nil
}
