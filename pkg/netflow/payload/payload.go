// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package payload

// Transition states
const (
	StateAnomalous = "anomalous"
	StateNormal    = "normal"
)

// Endpoint contains the tracked endpoint details
type Endpoint struct {
	IP string `json:"ip"`
}

// AnomalyEvent contains a detector state transition
type AnomalyEvent struct {
	Detector  string   `json:"detector"`
	Timestamp uint64   `json:"timestamp"` // in milliseconds
	Time      string   `json:"time"`
	Source    Endpoint `json:"source"`
	State     string   `json:"state"`
	Severity  *float64 `json:"severity"` // null when the score is not finite
	Message   string   `json:"message"`
	Host      string   `json:"host,omitempty"`
}

// DetectorSummary contains the state of one detector
type DetectorSummary struct {
	Name          string         `json:"name"`
	Checks        int            `json:"checks"`
	FlowsObserved int64          `json:"flows_observed"`
	LastCheck     string         `json:"last_check"`
	TrackedKeys   int            `json:"tracked_keys"`
	ActiveKeys    []string       `json:"active_keys"`
	Counts        map[string]int `json:"counts"`
}

// RunSummary contains the end of run report
type RunSummary struct {
	FlowsRead      int64             `json:"flows_read"`
	FlowsSkipped   int64             `json:"flows_skipped"`
	FlowsInjected  int64             `json:"flows_injected"`
	FilesRead      int64             `json:"files_read"`
	EventsReported int               `json:"events_reported"`
	Detectors      []DetectorSummary `json:"detectors"`
}
