// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

func TestConfig_WithDefaults(t *testing.T) {
	tests := []struct {
		name           string
		detectorType   common.DetectorType
		expectedPeriod time.Duration
	}{
		{name: "portscan", detectorType: common.TypePortScan, expectedPeriod: 10 * time.Minute},
		{name: "explosion", detectorType: common.TypeExplosion, expectedPeriod: 24 * time.Hour},
		{name: "growth", detectorType: common.TypeGrowth, expectedPeriod: time.Hour},
		{name: "stabilization", detectorType: common.TypeHostStabilization, expectedPeriod: 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Config{Type: tt.detectorType}.WithDefaults()
			require.NoError(t, err)
			assert.Equal(t, Config{
				Name:            string(tt.detectorType),
				Type:            tt.detectorType,
				SigmaThreshold:  common.DefaultSigmaThreshold,
				Period:          tt.expectedPeriod,
				TopK:            common.DefaultTopK,
				Tolerance:       common.DefaultTolerance,
				SketchPrecision: common.DefaultSketchPrecision,
			}, cfg)
		})
	}
}

func TestConfig_WithDefaultsKeepsOverrides(t *testing.T) {
	cfg, err := Config{
		Name:            "fast-portscan",
		Type:            common.TypePortScan,
		SigmaThreshold:  3,
		Period:          time.Minute,
		TopK:            25,
		SketchPrecision: 14,
	}.WithDefaults()

	require.NoError(t, err)
	assert.Equal(t, "fast-portscan", cfg.Name)
	assert.Equal(t, 3.0, cfg.SigmaThreshold)
	assert.Equal(t, time.Minute, cfg.Period)
	assert.Equal(t, 25, cfg.TopK)
	assert.Equal(t, uint8(14), cfg.SketchPrecision)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name          string
		config        Config
		expectedError string
	}{
		{
			name:          "unknown type",
			config:        Config{Type: "bogus"},
			expectedError: "detector type `bogus` is not valid (valid types: [portscan explosion growth stabilization])",
		},
		{
			name:          "negative sigma",
			config:        Config{Type: common.TypeGrowth, SigmaThreshold: -1},
			expectedError: "detector `growth`: sigma threshold must be positive, got -1.000000",
		},
		{
			name:          "negative period",
			config:        Config{Type: common.TypeGrowth, Period: -time.Second},
			expectedError: "detector `growth`: period must be positive, got -1s",
		},
		{
			name:          "negative top k",
			config:        Config{Type: common.TypePortScan, TopK: -3},
			expectedError: "detector `portscan`: top_k must be positive, got -3",
		},
		{
			name:          "unsupported precision",
			config:        Config{Type: common.TypePortScan, SketchPrecision: 12},
			expectedError: "detector `portscan`: unsupported sketch precision 12 (supported: 14, 16)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.config, nil)
			assert.Nil(t, d)
			assert.EqualError(t, err, tt.expectedError)
		})
	}
}

func TestNew_Variants(t *testing.T) {
	for _, detectorType := range common.GetAllDetectorTypes() {
		d, err := New(Config{Type: detectorType}, nil)
		require.NoError(t, err)
		assert.Equal(t, string(detectorType), d.Name())
		switch detectorType {
		case common.TypePortScan:
			assert.IsType(t, &PortScan{}, d.Detector())
		case common.TypeExplosion:
			assert.IsType(t, &Explosion{}, d.Detector())
		case common.TypeGrowth:
			assert.IsType(t, &Growth{}, d.Detector())
		case common.TypeHostStabilization:
			assert.IsType(t, &HostStabilization{}, d.Detector())
		}
	}
}
