// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"github.com/DataDog/flowanomaly/pkg/netflow/cardinality"
	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

// Explosion runs the PortScan population test on the flows of the current
// period only: every estimator is emptied after each check. Keys are never
// forgotten, so quiet keys lower the population mean.
type Explosion struct {
	name         string
	test         populationTest
	newEstimator cardinality.Factory
	estimators   map[string]cardinality.Estimator
}

// NewExplosion returns an Explosion detector
func NewExplosion(name string, sigma float64, topK int, newEstimator cardinality.Factory) *Explosion {
	return &Explosion{
		name:         name,
		test:         populationTest{sigma: sigma, topK: topK},
		newEstimator: newEstimator,
		estimators:   make(map[string]cardinality.Estimator),
	}
}

// Name implements Detector
func (e *Explosion) Name() string {
	return e.name
}

// Observe implements Detector
func (e *Explosion) Observe(flow *common.Flow) {
	estimatorFor(e.estimators, flow.SourceKey(), e.newEstimator).Add(flow.DestinationKey())
}

// Outliers implements Detector
func (e *Explosion) Outliers(active []string) map[string]float64 {
	outliers := e.test.outliers(e.estimators, active)
	for key := range e.estimators {
		e.estimators[key] = e.newEstimator()
	}
	return outliers
}

// Describe implements Detector
func (e *Explosion) Describe(key string, becameAnomalous bool) string {
	return describeOutlier(key, becameAnomalous, "explosion scanning")
}

// Cardinalities returns the cardinality of every key in the current period, sorted.
func (e *Explosion) Cardinalities() []float64 {
	return sortedCardinalities(e.estimators)
}
