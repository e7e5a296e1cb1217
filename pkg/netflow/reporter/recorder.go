// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package reporter

import (
	"sync"

	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
)

// Recorder keeps every transition in memory
type Recorder struct {
	mu     sync.Mutex
	events []detector.Event
}

// NewRecorder returns an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Report implements detector.Reporter
func (r *Recorder) Report(event detector.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded transitions
func (r *Recorder) Events() []detector.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]detector.Event, len(r.events))
	copy(events, r.events)
	return events
}

// Len returns the number of recorded transitions
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
