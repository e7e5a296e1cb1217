// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"fmt"
	"time"

	"github.com/DataDog/flowanomaly/pkg/netflow/cardinality"
	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

// Config contains the settings of one detector. Zero values are replaced by
// the defaults of the detector type.
type Config struct {
	// Name defaults to the detector type.
	Name            string
	Type            common.DetectorType
	SigmaThreshold  float64
	Period          time.Duration
	TopK            int
	Tolerance       float64
	SketchPrecision uint8
}

// WithDefaults validates the configuration and fills the unset fields.
func (c Config) WithDefaults() (Config, error) {
	detail, err := common.GetDetectorTypeByName(c.Type)
	if err != nil {
		return c, err
	}
	if c.Name == "" {
		c.Name = string(detail.Name())
	}
	if c.SigmaThreshold == 0 {
		c.SigmaThreshold = common.DefaultSigmaThreshold
	}
	if c.Period == 0 {
		c.Period = detail.DefaultPeriod()
	}
	if c.TopK == 0 {
		c.TopK = common.DefaultTopK
	}
	if c.Tolerance == 0 {
		c.Tolerance = common.DefaultTolerance
	}
	if c.SketchPrecision == 0 {
		c.SketchPrecision = common.DefaultSketchPrecision
	}

	if c.SigmaThreshold < 0 {
		return c, fmt.Errorf("detector `%s`: sigma threshold must be positive, got %f", c.Name, c.SigmaThreshold)
	}
	if c.Period < 0 {
		return c, fmt.Errorf("detector `%s`: period must be positive, got %s", c.Name, c.Period)
	}
	if c.TopK < 0 {
		return c, fmt.Errorf("detector `%s`: top_k must be positive, got %d", c.Name, c.TopK)
	}
	if c.Tolerance < 0 {
		return c, fmt.Errorf("detector `%s`: tolerance must be positive, got %f", c.Name, c.Tolerance)
	}
	return c, nil
}

type options struct {
	newEstimator cardinality.Factory
}

// Option configures New
type Option func(*options)

// WithEstimatorFactory replaces the HyperLogLog sketches by the estimators
// built by f.
func WithEstimatorFactory(f cardinality.Factory) Option {
	return func(o *options) {
		o.newEstimator = f
	}
}

// New builds the detector described by cfg, composed with its driver.
func New(cfg Config, reporter Reporter, opts ...Option) (*Driver, error) {
	cfg, err := cfg.WithDefaults()
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.newEstimator == nil {
		o.newEstimator, err = cardinality.NewFactory(cfg.SketchPrecision)
		if err != nil {
			return nil, fmt.Errorf("detector `%s`: %w", cfg.Name, err)
		}
	}

	var d Detector
	switch cfg.Type {
	case common.TypePortScan:
		d = NewPortScan(cfg.Name, cfg.SigmaThreshold, cfg.TopK, o.newEstimator)
	case common.TypeExplosion:
		d = NewExplosion(cfg.Name, cfg.SigmaThreshold, cfg.TopK, o.newEstimator)
	case common.TypeGrowth:
		d = NewGrowth(cfg.Name, cfg.SigmaThreshold, o.newEstimator)
	case common.TypeHostStabilization:
		d = NewHostStabilization(cfg.Name, cfg.Tolerance, o.newEstimator)
	default:
		return nil, fmt.Errorf("detector type `%s` is not supported", cfg.Type)
	}
	return NewDriver(d, cfg.Period, reporter), nil
}
