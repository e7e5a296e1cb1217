// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package detector implements the streaming anomaly detectors.
//
// A Detector only knows how to fold flows into its per-key state and how to
// classify keys at check time. Periodic checks, hysteresis and reporting are
// handled by a Driver every variant is composed with.
package detector

import (
	"fmt"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

// Detector is implemented by every detection variant.
type Detector interface {
	// Name identifies the detector in events and logs.
	Name() string
	// Observe folds a flow into the detector state. It never decides anomalies.
	Observe(flow *common.Flow)
	// Outliers classifies the tracked keys. It is called once per check with the
	// keys currently considered anomalous and returns the flagged keys along
	// with their severity.
	Outliers(active []string) map[string]float64
	// Describe returns the human readable message of a transition.
	Describe(key string, becameAnomalous bool) string
}

// cardinalityReporter is implemented by detectors exposing their per-key
// cardinality estimates.
type cardinalityReporter interface {
	Cardinalities() []float64
}

// stateCounter is implemented by detectors counting their keys with their own
// state names.
type stateCounter interface {
	Counts() map[string]int
}

// Event is a state transition of one key.
type Event struct {
	Timestamp       float64
	Detector        string
	Key             string
	BecameAnomalous bool
	// Severity is the score of the key at the check that flagged it, zero
	// when the key stopped being anomalous.
	Severity float64
	Message  string
}

// Reporter receives transition events. Report must not block the detection loop.
type Reporter interface {
	Report(event Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(event Event)

// Report implements Reporter
func (f ReporterFunc) Report(event Event) {
	f(event)
}

type noopReporter struct{}

func (noopReporter) Report(Event) {}

// Stats is a point in time snapshot of a driver, safe to read from any goroutine.
type Stats struct {
	Detector      string
	Checks        int
	FlowsObserved int64
	LastCheck     float64
	TrackedKeys   int
	ActiveKeys    int
	Counts        map[string]int
	Cardinalities []float64
}

func describeOutlier(key string, becameAnomalous bool, class string) string {
	if becameAnomalous {
		return fmt.Sprintf("IP address %s became an outlier for %s.", key, class)
	}
	return fmt.Sprintf("IP address %s is no longer an outlier for %s.", key, class)
}
