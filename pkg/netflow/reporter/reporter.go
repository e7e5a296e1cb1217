// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package reporter contains the sinks receiving detector transitions.
package reporter

import (
	"math"

	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
	"github.com/DataDog/flowanomaly/pkg/netflow/format"
	"github.com/DataDog/flowanomaly/pkg/netflow/payload"
)

// State returns the payload state of a transition
func State(event detector.Event) string {
	if event.BecameAnomalous {
		return payload.StateAnomalous
	}
	return payload.StateNormal
}

// BuildPayload converts a transition to its JSON payload
func BuildPayload(event detector.Event, host string) payload.AnomalyEvent {
	var severity *float64
	if !math.IsInf(event.Severity, 0) && !math.IsNaN(event.Severity) {
		value := event.Severity
		severity = &value
	}
	var timestamp uint64
	if event.Timestamp > 0 {
		timestamp = uint64(math.Round(event.Timestamp * 1000))
	}
	return payload.AnomalyEvent{
		Detector:  event.Detector,
		Timestamp: timestamp,
		Time:      format.Timestamp(event.Timestamp),
		Source:    payload.Endpoint{IP: event.Key},
		State:     State(event),
		Severity:  severity,
		Message:   event.Message,
		Host:      host,
	}
}
