// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package common

const (
	// DefaultSigmaThreshold is the number of standard deviations above the mean
	// a value must reach to be classified as anomalous.
	DefaultSigmaThreshold = 5.0

	// DefaultTopK is the number of highest cardinality keys checked against the
	// population threshold.
	DefaultTopK = 10

	// DefaultTolerance is the remaining-cardinality tolerance used to decide
	// that a host stopped changing.
	DefaultTolerance = 0.001

	// DefaultSketchPrecision is the number of index bits of the HyperLogLog sketches.
	DefaultSketchPrecision uint8 = 16

	// DefaultReaderWorkers is the number of files decoded concurrently.
	DefaultReaderWorkers = 1

	// DefaultScanner is the source address used for injected port scan flows.
	DefaultScanner = "10.10.10.10"

	// DefaultInjectionFrequency is the probability to inject a scan flow after each real flow.
	DefaultInjectionFrequency = 0.01

	// DefaultStatsdAddress is the DogStatsD address used by the statsd reporter.
	DefaultStatsdAddress = "localhost:8125"

	// DefaultStatsdNamespace prefixes every metric sent by the statsd reporter.
	DefaultStatsdNamespace = "flowanomaly."

	// CheckLogInterval is the number of checks between two progress log lines.
	CheckLogInterval = 1000
)
