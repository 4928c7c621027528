// Package config holds the explicit configuration value object for culprit.
//
// All thresholds, limits, and query-scope identifiers live here; nothing is
// hardcoded inside the analysis core. Values load from a YAML file with
// environment-variable overrides resolved once at the boundary.
package config

import (
	"fmt"
)

// Defaults for the analysis knobs. Overridable via file and environment.
const (
	DefaultErrorTracesLimit       = 2000
	DefaultDurationThresholdNanos = 2_000_000_000 // 2s
	DefaultSTSDurationSeconds     = 3600
)

// SLSConfig identifies the log store the queries run against.
type SLSConfig struct {
	// Project is the log project name.
	Project string `yaml:"project"`
	// Logstore is the logstore holding tracing records.
	Logstore string `yaml:"logstore"`
	// Region is the log service region, e.g. "cn-qingdao".
	Region string `yaml:"region"`
	// Endpoint overrides the derived endpoint URL. When empty, the
	// endpoint is "https://<project>.<region>.log.aliyuncs.com".
	Endpoint string `yaml:"endpoint"`
}

// ResolveEndpoint returns the explicit endpoint or derives it from the
// project and region.
func (c SLSConfig) ResolveEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.%s.log.aliyuncs.com", c.Project, c.Region)
}

// STSConfig configures assume-role credential acquisition.
type STSConfig struct {
	// RoleARN is the role assumed for log access.
	RoleARN string `yaml:"role_arn"`
	// SessionName labels the assumed-role session.
	SessionName string `yaml:"session_name"`
	// DurationSeconds is the requested credential lifetime.
	DurationSeconds int `yaml:"duration_seconds"`
	// Endpoint overrides the derived STS endpoint. When empty, the
	// endpoint is "https://sts.<region>.aliyuncs.com".
	Endpoint string `yaml:"endpoint"`
}

// ResolveEndpoint returns the explicit STS endpoint or derives it from the
// region.
func (c STSConfig) ResolveEndpoint(region string) string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://sts.%s.aliyuncs.com", region)
}

// AnalysisConfig holds the decision-policy knobs of the analyzer.
type AnalysisConfig struct {
	// ErrorTracesLimit caps the records per error-collector query.
	ErrorTracesLimit int `yaml:"error_traces_limit"`
	// DurationThresholdNanos is the latency violation cutoff in
	// nanoseconds.
	DurationThresholdNanos int64 `yaml:"duration_threshold_nanos"`
	// BestEffort tolerates a single collector failure instead of failing
	// the whole analysis. Opt-in.
	BestEffort bool `yaml:"best_effort"`
}

// Config is the complete application configuration.
type Config struct {
	SLS      SLSConfig      `yaml:"sls"`
	STS      STSConfig      `yaml:"sts"`
	Analysis AnalysisConfig `yaml:"analysis"`
	// LogLevel is the default logging level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config carrying the documented defaults. Scope
// identifiers (project, logstore, region, role ARN) have no defaults and
// must come from the file or environment.
func Default() *Config {
	return &Config{
		STS: STSConfig{
			SessionName:     "culprit-analysis",
			DurationSeconds: DefaultSTSDurationSeconds,
		},
		Analysis: AnalysisConfig{
			ErrorTracesLimit:       DefaultErrorTracesLimit,
			DurationThresholdNanos: DefaultDurationThresholdNanos,
		},
		LogLevel: "info",
	}
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.SLS.Project == "" {
		return NewConfigError("sls.project must not be empty")
	}
	if c.SLS.Logstore == "" {
		return NewConfigError("sls.logstore must not be empty")
	}
	if c.SLS.Region == "" && c.SLS.Endpoint == "" {
		return NewConfigError("either sls.region or sls.endpoint must be set")
	}
	if c.Analysis.ErrorTracesLimit < 1 {
		return NewConfigError("analysis.error_traces_limit must be at least 1")
	}
	if c.Analysis.DurationThresholdNanos < 1 {
		return NewConfigError("analysis.duration_threshold_nanos must be positive")
	}
	if c.STS.DurationSeconds < 900 {
		return NewConfigError("sts.duration_seconds must be at least 900")
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message.
func (e *ConfigError) Error() string {
	return e.message
}
