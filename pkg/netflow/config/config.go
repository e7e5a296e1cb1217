// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022-present Datadog, Inc.

// Package config loads the flowanomaly configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/DataDog/viper"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
	"github.com/DataDog/flowanomaly/pkg/netflow/reader"
)

// EnvPrefix prefixes the environment variables overriding the configuration,
// e.g. FLOWANOMALY_READER_DATA_DIR.
const EnvPrefix = "FLOWANOMALY"

const (
	defaultLogLevel      = "info"
	defaultDataDir       = "data"
	defaultMetricsListen = ""
)

// Config contains the flowanomaly configuration
type Config struct {
	LogLevel       string           `mapstructure:"log_level"`
	StrictOrdering bool             `mapstructure:"strict_ordering"`
	Reader         ReaderConfig     `mapstructure:"reader"`
	Injection      InjectionConfig  `mapstructure:"injection"`
	Detectors      []DetectorConfig `mapstructure:"detectors"`
	Statsd         StatsdConfig     `mapstructure:"statsd"`
	EventsFile     string           `mapstructure:"events_file"`
	Metrics        MetricsConfig    `mapstructure:"metrics"`
}

// ReaderConfig contains the flow files reader configuration
type ReaderConfig struct {
	DataDir          string `mapstructure:"data_dir"`
	Workers          int    `mapstructure:"workers"`
	MaxCount         int64  `mapstructure:"max_count"`
	RebaseTimestamps bool   `mapstructure:"rebase_timestamps"`
}

// InjectionConfig contains the port scan simulation configuration
type InjectionConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Scanner   string  `mapstructure:"scanner"`
	Frequency float64 `mapstructure:"frequency"`
}

// DetectorConfig contains one detector configuration.
// Period is a duration string such as "10m" or "24h". Omitted settings take
// the defaults of the detector type; an explicit zero threshold or tolerance
// is rejected.
type DetectorConfig struct {
	Name            string              `mapstructure:"name"`
	Type            common.DetectorType `mapstructure:"type"`
	SigmaThreshold  *float64            `mapstructure:"sigma_threshold"`
	Period          time.Duration       `mapstructure:"period"`
	TopK            int                 `mapstructure:"top_k"`
	Tolerance       *float64            `mapstructure:"tolerance"`
	SketchPrecision uint8               `mapstructure:"sketch_precision"`
}

// StatsdConfig contains the DogStatsD reporter configuration
type StatsdConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Namespace string `mapstructure:"namespace"`
}

// MetricsConfig contains the prometheus endpoint configuration. An empty
// listen address disables the endpoint.
type MetricsConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
}

// ReaderConfig returns the reader settings
func (c *Config) ReaderConfig() reader.Config {
	return reader.Config{
		DataDir:  c.Reader.DataDir,
		Workers:  c.Reader.Workers,
		MaxCount: c.Reader.MaxCount,
		Rebase:   c.Reader.RebaseTimestamps,
	}
}

// DetectorConfig converts the configuration to the detector settings
func (c DetectorConfig) DetectorConfig() detector.Config {
	cfg := detector.Config{
		Name:            c.Name,
		Type:            c.Type,
		Period:          c.Period,
		TopK:            c.TopK,
		SketchPrecision: c.SketchPrecision,
	}
	if c.SigmaThreshold != nil {
		cfg.SigmaThreshold = *c.SigmaThreshold
	}
	if c.Tolerance != nil {
		cfg.Tolerance = *c.Tolerance
	}
	return cfg
}

func (c DetectorConfig) checkExplicitZeros() error {
	if c.SigmaThreshold != nil && *c.SigmaThreshold == 0 {
		return errors.New("sigma_threshold must be positive, got 0")
	}
	if c.Tolerance != nil && *c.Tolerance == 0 {
		return errors.New("tolerance must be positive, got 0")
	}
	return nil
}

// DetectorConfigs returns the validated settings of every configured detector
func (c *Config) DetectorConfigs() ([]detector.Config, error) {
	var configs []detector.Config
	names := make(map[string]struct{}, len(c.Detectors))
	for i, d := range c.Detectors {
		if err := d.checkExplicitZeros(); err != nil {
			return nil, fmt.Errorf("invalid detectors[%d]: %w", i, err)
		}
		cfg, err := d.DetectorConfig().WithDefaults()
		if err != nil {
			return nil, fmt.Errorf("invalid detectors[%d]: %w", i, err)
		}
		if _, ok := names[cfg.Name]; ok {
			return nil, fmt.Errorf("invalid detectors[%d]: detector name `%s` is used more than once", i, cfg.Name)
		}
		names[cfg.Name] = struct{}{}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("strict_ordering", false)
	v.SetDefault("reader.data_dir", defaultDataDir)
	v.SetDefault("reader.workers", common.DefaultReaderWorkers)
	v.SetDefault("reader.max_count", 0)
	v.SetDefault("reader.rebase_timestamps", false)
	v.SetDefault("injection.enabled", false)
	v.SetDefault("injection.scanner", common.DefaultScanner)
	v.SetDefault("injection.frequency", common.DefaultInjectionFrequency)
	v.SetDefault("statsd.enabled", false)
	v.SetDefault("statsd.address", common.DefaultStatsdAddress)
	v.SetDefault("statsd.namespace", common.DefaultStatsdNamespace)
	v.SetDefault("events_file", "")
	v.SetDefault("metrics.listen_address", defaultMetricsListen)
}

// Load reads the YAML configuration file at path, if any, overridden by the
// FLOWANOMALY_* environment variables. Without a `detectors` list every
// detector type runs with its defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil, fmt.Errorf("cannot access the config file (%w); try running the command as the owner of %s", err, path)
			}
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config file: %w", err)
	}
	if len(config.Detectors) == 0 {
		config.Detectors = DefaultDetectors()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultDetectors returns one detector per type, with default settings
func DefaultDetectors() []DetectorConfig {
	var detectors []DetectorConfig
	for _, detectorType := range common.GetAllDetectorTypes() {
		detectors = append(detectors, DetectorConfig{Type: detectorType})
	}
	return detectors
}

// Validate checks the configuration, including every detector
func (c *Config) Validate() error {
	if c.Reader.Workers < 0 {
		return fmt.Errorf("reader.workers must be positive, got %d", c.Reader.Workers)
	}
	if c.Reader.MaxCount < 0 {
		return fmt.Errorf("reader.max_count must be positive, got %d", c.Reader.MaxCount)
	}
	if c.Injection.Enabled {
		if c.Injection.Frequency <= 0 || c.Injection.Frequency > 1 {
			return fmt.Errorf("injection.frequency must be in ]0, 1], got %f", c.Injection.Frequency)
		}
		if c.Injection.Scanner == "" {
			return errors.New("`injection.scanner` is required")
		}
	}
	if c.Statsd.Enabled && c.Statsd.Address == "" {
		return errors.New("`statsd.address` is required")
	}
	_, err := c.DetectorConfigs()
	return err
}
