package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfigFile(t *testing.T, cfg *Config) string {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "culprit.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func validFileConfig() *Config {
	cfg := Default()
	cfg.SLS = SLSConfig{
		Project:  "proj-tracing",
		Logstore: "logstore-tracing",
		Region:   "cn-qingdao",
	}
	cfg.STS.RoleARN = "acs:ram::1234:role/analyst"
	return cfg
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, validFileConfig())

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "proj-tracing", cfg.SLS.Project)
	assert.Equal(t, "logstore-tracing", cfg.SLS.Logstore)
	assert.Equal(t, DefaultErrorTracesLimit, cfg.Analysis.ErrorTracesLimit)
	assert.Equal(t, int64(DefaultDurationThresholdNanos), cfg.Analysis.DurationThresholdNanos)
	assert.False(t, cfg.Analysis.BestEffort)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, validFileConfig())

	t.Setenv("SLS_PROJECT_NAME", "proj-override")
	t.Setenv("ERROR_TRACES_LIMIT", "500")
	t.Setenv("DURATION_THRESHOLD_NANOS", "1500000000")
	t.Setenv("ANALYSIS_BEST_EFFORT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "proj-override", cfg.SLS.Project)
	assert.Equal(t, 500, cfg.Analysis.ErrorTracesLimit)
	assert.Equal(t, int64(1_500_000_000), cfg.Analysis.DurationThresholdNanos)
	assert.True(t, cfg.Analysis.BestEffort)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("SLS_PROJECT_NAME", "proj-tracing")
	t.Setenv("SLS_LOGSTORE_NAME", "logstore-tracing")
	t.Setenv("SLS_REGION", "cn-qingdao")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "proj-tracing", cfg.SLS.Project)
}

func TestLoad_InvalidEnvInteger(t *testing.T) {
	t.Setenv("SLS_PROJECT_NAME", "proj-tracing")
	t.Setenv("SLS_LOGSTORE_NAME", "logstore-tracing")
	t.Setenv("SLS_REGION", "cn-qingdao")
	t.Setenv("ERROR_TRACES_LIMIT", "lots")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERROR_TRACES_LIMIT")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	cfg := validFileConfig()
	cfg.SLS.Logstore = ""
	path := writeConfigFile(t, cfg)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logstore")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"zero traces limit", func(c *Config) { c.Analysis.ErrorTracesLimit = 0 }, false},
		{"negative threshold", func(c *Config) { c.Analysis.DurationThresholdNanos = -1 }, false},
		{"missing project", func(c *Config) { c.SLS.Project = "" }, false},
		{"short sts duration", func(c *Config) { c.STS.DurationSeconds = 60 }, false},
		{"endpoint without region", func(c *Config) {
			c.SLS.Region = ""
			c.SLS.Endpoint = "https://example.com"
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validFileConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestResolveEndpoints(t *testing.T) {
	sls := SLSConfig{Project: "proj", Region: "cn-qingdao"}
	assert.Equal(t, "https://proj.cn-qingdao.log.aliyuncs.com", sls.ResolveEndpoint())

	sls.Endpoint = "http://localhost:9999"
	assert.Equal(t, "http://localhost:9999", sls.ResolveEndpoint())

	sts := STSConfig{}
	assert.Equal(t, "https://sts.cn-qingdao.aliyuncs.com", sts.ResolveEndpoint("cn-qingdao"))
	sts.Endpoint = "http://localhost:8888"
	assert.Equal(t, "http://localhost:8888", sts.ResolveEndpoint("cn-qingdao"))
}
