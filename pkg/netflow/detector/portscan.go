// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"github.com/DataDog/flowanomaly/pkg/netflow/cardinality"
	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

// PortScan finds the source addresses talking to an unusually large number of
// destination address and port pairs since the detector started.
type PortScan struct {
	name         string
	test         populationTest
	newEstimator cardinality.Factory

	estimators map[string]cardinality.Estimator
	total      cardinality.Estimator
	flowCount  int64
}

// NewPortScan returns a PortScan detector
func NewPortScan(name string, sigma float64, topK int, newEstimator cardinality.Factory) *PortScan {
	return &PortScan{
		name:         name,
		test:         populationTest{sigma: sigma, topK: topK},
		newEstimator: newEstimator,
		estimators:   make(map[string]cardinality.Estimator),
		total:        newEstimator(),
	}
}

// Name implements Detector
func (p *PortScan) Name() string {
	return p.name
}

// Observe implements Detector
func (p *PortScan) Observe(flow *common.Flow) {
	destination := flow.DestinationKey()
	estimatorFor(p.estimators, flow.SourceKey(), p.newEstimator).Add(destination)
	p.total.Add(destination)
	p.flowCount++
}

// Outliers implements Detector
func (p *PortScan) Outliers(active []string) map[string]float64 {
	return p.test.outliers(p.estimators, active)
}

// Describe implements Detector
func (p *PortScan) Describe(key string, becameAnomalous bool) string {
	return describeOutlier(key, becameAnomalous, "IP port scanning")
}

// Cardinalities returns the cardinality of every source address, sorted.
func (p *PortScan) Cardinalities() []float64 {
	return sortedCardinalities(p.estimators)
}

// TotalCardinality returns the number of distinct destinations seen overall.
func (p *PortScan) TotalCardinality() float64 {
	return p.total.Cardinality()
}

// FlowCount returns the number of flows observed
func (p *PortScan) FlowCount() int64 {
	return p.flowCount
}
