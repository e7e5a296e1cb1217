// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022-present Datadog, Inc.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
	"github.com/DataDog/flowanomaly/pkg/netflow/reader"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowanomaly.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", config.LogLevel)
	assert.False(t, config.StrictOrdering)
	assert.Equal(t, ReaderConfig{DataDir: "data", Workers: 1}, config.Reader)
	assert.Equal(t, InjectionConfig{Scanner: "10.10.10.10", Frequency: 0.01}, config.Injection)
	assert.Equal(t, StatsdConfig{Address: "localhost:8125", Namespace: "flowanomaly."}, config.Statsd)
	assert.Empty(t, config.EventsFile)
	assert.Empty(t, config.Metrics.ListenAddress)
	assert.Equal(t, DefaultDetectors(), config.Detectors)

	configs, err := config.DetectorConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 4)
	assert.Equal(t, detector.Config{
		Name:            "portscan",
		Type:            common.TypePortScan,
		SigmaThreshold:  5,
		Period:          10 * time.Minute,
		TopK:            10,
		Tolerance:       0.001,
		SketchPrecision: 16,
	}, configs[0])
	assert.Equal(t, "explosion", configs[1].Name)
	assert.Equal(t, time.Hour, configs[2].Period)
	assert.Equal(t, 24*time.Hour, configs[3].Period)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
strict_ordering: true
reader:
  data_dir: /var/lib/flows
  workers: 4
  max_count: 1000
  rebase_timestamps: true
injection:
  enabled: true
  scanner: 192.168.1.66
  frequency: 0.5
detectors:
  - type: portscan
    sigma_threshold: 3
    period: 5m
    top_k: 20
  - name: slow-stabilization
    type: stabilization
    tolerance: 0.09
    sketch_precision: 14
statsd:
  enabled: true
  address: 127.0.0.1:9125
events_file: /tmp/events.json
metrics:
  listen_address: 127.0.0.1:9090
`)
	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.True(t, config.StrictOrdering)
	assert.Equal(t, reader.Config{DataDir: "/var/lib/flows", Workers: 4, MaxCount: 1000, Rebase: true}, config.ReaderConfig())
	assert.Equal(t, InjectionConfig{Enabled: true, Scanner: "192.168.1.66", Frequency: 0.5}, config.Injection)
	assert.Equal(t, StatsdConfig{Enabled: true, Address: "127.0.0.1:9125", Namespace: "flowanomaly."}, config.Statsd)
	assert.Equal(t, "/tmp/events.json", config.EventsFile)
	assert.Equal(t, "127.0.0.1:9090", config.Metrics.ListenAddress)

	configs, err := config.DetectorConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, detector.Config{
		Name:            "portscan",
		Type:            common.TypePortScan,
		SigmaThreshold:  3,
		Period:          5 * time.Minute,
		TopK:            20,
		Tolerance:       0.001,
		SketchPrecision: 16,
	}, configs[0])
	assert.Equal(t, detector.Config{
		Name:            "slow-stabilization",
		Type:            common.TypeHostStabilization,
		SigmaThreshold:  5,
		Period:          24 * time.Hour,
		TopK:            10,
		Tolerance:       0.09,
		SketchPrecision: 14,
	}, configs[1])
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("FLOWANOMALY_LOG_LEVEL", "warn")
	t.Setenv("FLOWANOMALY_READER_DATA_DIR", "/srv/flows")
	t.Setenv("FLOWANOMALY_READER_WORKERS", "8")
	t.Setenv("FLOWANOMALY_STATSD_ENABLED", "true")

	path := writeConfig(t, `
log_level: debug
reader:
  data_dir: /var/lib/flows
`)
	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", config.LogLevel)
	assert.Equal(t, "/srv/flows", config.Reader.DataDir)
	assert.Equal(t, 8, config.Reader.Workers)
	assert.True(t, config.Statsd.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name          string
		config        string
		expectedError string
	}{
		{
			name: "invalid detector type",
			config: `
detectors:
  - type: portscan
  - type: superscan
`,
			expectedError: "invalid detectors[1]: detector type `superscan` is not valid (valid types: [portscan explosion growth stabilization])",
		},
		{
			name: "negative sigma threshold",
			config: `
detectors:
  - type: growth
    sigma_threshold: -1
`,
			expectedError: "invalid detectors[0]: detector `growth`: sigma threshold must be positive, got -1.000000",
		},
		{
			name: "zero sigma threshold",
			config: `
detectors:
  - type: portscan
    sigma_threshold: 0
`,
			expectedError: "invalid detectors[0]: sigma_threshold must be positive, got 0",
		},
		{
			name: "zero tolerance",
			config: `
detectors:
  - type: stabilization
    tolerance: 0
`,
			expectedError: "invalid detectors[0]: tolerance must be positive, got 0",
		},
		{
			name: "duplicated name",
			config: `
detectors:
  - type: growth
  - type: growth
`,
			expectedError: "invalid detectors[1]: detector name `growth` is used more than once",
		},
		{
			name: "negative max count",
			config: `
reader:
  max_count: -5
`,
			expectedError: "reader.max_count must be positive, got -5",
		},
		{
			name: "invalid injection frequency",
			config: `
injection:
  enabled: true
  frequency: 2
`,
			expectedError: "injection.frequency must be in ]0, 1], got 2.000000",
		},
		{
			name: "missing statsd address",
			config: `
statsd:
  enabled: true
  address: ""
`,
			expectedError: "`statsd.address` is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.config))
			assert.EqualError(t, err, tt.expectedError)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "unable to load config file")
}
