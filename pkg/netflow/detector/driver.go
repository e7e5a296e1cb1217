// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"context"
	"sort"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/exp/maps"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

// Driver runs the periodic checks of a Detector and reports the transitions
// of its keys. A Driver is not safe for concurrent use, except for Stats.
type Driver struct {
	detector Detector
	period   float64
	reporter Reporter
	tracker  *IntervalTracker

	initialized bool
	lastCheck   float64
	checks      int
	flows       int64

	stats atomic.Pointer[Stats]
}

// NewDriver composes d with a driver checking it every period of flow time.
// A nil reporter discards events.
func NewDriver(d Detector, period time.Duration, reporter Reporter) *Driver {
	if d == nil {
		panic("detector: nil detector")
	}
	if period <= 0 {
		panic("detector: period must be positive")
	}
	if reporter == nil {
		reporter = noopReporter{}
	}
	driver := &Driver{
		detector: d,
		period:   period.Seconds(),
		reporter: reporter,
		tracker:  NewIntervalTracker(),
	}
	driver.publish()
	return driver
}

// Name returns the name of the driven detector
func (d *Driver) Name() string {
	return d.detector.Name()
}

// Detector returns the driven detector
func (d *Driver) Detector() Detector {
	return d.detector
}

// Tracker returns the interval tracker of the driver
func (d *Driver) Tracker() *IntervalTracker {
	return d.tracker
}

// Period returns the check period in seconds
func (d *Driver) Period() float64 {
	return d.period
}

// LastCheck returns the timestamp of the last check, or of the first flow if
// no check ran yet.
func (d *Driver) LastCheck() float64 {
	return d.lastCheck
}

// Checks returns the number of checks run so far
func (d *Driver) Checks() int {
	return d.checks
}

// Observe forwards flow to the detector.
func (d *Driver) Observe(flow *common.Flow) {
	d.flows++
	d.detector.Observe(flow)
}

// Start initializes the check clock at timestamp.
func (d *Driver) Start(timestamp float64) {
	d.lastCheck = timestamp
	d.initialized = true
	d.publish()
}

// Advance runs a check when at least one period elapsed since the last one.
// It returns whether a check ran.
func (d *Driver) Advance(timestamp float64) bool {
	if !d.initialized {
		d.Start(timestamp)
		return false
	}
	if timestamp-d.lastCheck < d.period {
		return false
	}
	d.lastCheck = timestamp
	d.check()
	return true
}

// Run feeds every flow of src to the driver.
func (d *Driver) Run(ctx context.Context, src common.FlowSource, opts ...RunOption) error {
	return Run(ctx, src, d, opts...)
}

// ActiveKeys returns the keys currently anomalous, sorted.
func (d *Driver) ActiveKeys() []string {
	return d.tracker.ActiveKeys()
}

// Counts returns the number of keys per state.
func (d *Driver) Counts() map[string]int {
	if counter, ok := d.detector.(stateCounter); ok {
		return counter.Counts()
	}
	return map[string]int{
		"extreme":            d.tracker.ActiveCount(),
		"previously extreme": d.tracker.Len(),
	}
}

// Stats returns the snapshot published by the last check.
func (d *Driver) Stats() Stats {
	return *d.stats.Load()
}

func (d *Driver) check() {
	d.checks++
	if d.checks%common.CheckLogInterval == 0 {
		log.Debugf("%s checkCount = %d", d.detector.Name(), d.checks)
	}

	outliers := d.detector.Outliers(d.tracker.ActiveKeys())
	transitions := d.tracker.Update(maps.Keys(outliers), d.lastCheck)

	keys := maps.Keys(transitions)
	sort.Strings(keys)
	for _, key := range keys {
		becameAnomalous := transitions[key]
		d.reporter.Report(Event{
			Timestamp:       d.lastCheck,
			Detector:        d.detector.Name(),
			Key:             key,
			BecameAnomalous: becameAnomalous,
			Severity:        outliers[key],
			Message:         d.detector.Describe(key, becameAnomalous),
		})
	}
	d.publish()
}

func (d *Driver) publish() {
	stats := &Stats{
		Detector:      d.detector.Name(),
		Checks:        d.checks,
		FlowsObserved: d.flows,
		LastCheck:     d.lastCheck,
		ActiveKeys:    d.tracker.ActiveCount(),
		Counts:        d.Counts(),
	}
	if cr, ok := d.detector.(cardinalityReporter); ok {
		stats.Cardinalities = cr.Cardinalities()
		stats.TrackedKeys = len(stats.Cardinalities)
	}
	d.stats.Store(stats)
}
