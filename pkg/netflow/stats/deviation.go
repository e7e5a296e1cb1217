// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package stats implements the online estimators used by the anomaly detectors.
package stats

import "math"

// Deviation tracks the running mean and variance of a stream of values
// using Welford's one-pass algorithm.
type Deviation struct {
	n    int
	mean float64
	m2   float64
}

// Add folds x into the running statistics.
func (d *Deviation) Add(x float64) {
	d.n++
	delta := x - d.mean
	d.mean += delta / float64(d.n)
	d.m2 += delta * (x - d.mean)
}

// Count returns the number of values added.
func (d *Deviation) Count() int {
	return d.n
}

// Mean returns the running mean, 0 when no value was added.
func (d *Deviation) Mean() float64 {
	return d.mean
}

// Variance returns the sample variance, NaN with fewer than 2 values.
func (d *Deviation) Variance() float64 {
	if d.n < 2 {
		return math.NaN()
	}
	return d.m2 / float64(d.n-1)
}

// Stdev returns the sample standard deviation, NaN with fewer than 2 values.
func (d *Deviation) Stdev() float64 {
	return math.Sqrt(d.Variance())
}
