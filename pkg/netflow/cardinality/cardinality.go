// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package cardinality provides the approximate distinct-count sketches used to
// track how many destinations each host talks to.
package cardinality

// Estimator approximates the number of distinct items it was given.
// Adding the same item twice does not change the estimate.
type Estimator interface {
	Add(item string)
	Cardinality() float64
}

// Factory builds a fresh, empty Estimator. Detectors call it each time a key
// is first seen and each time a short-term window is reset.
type Factory func() Estimator
