// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"fmt"
	"sort"
)

// Interval is a closed period during which a key was anomalous.
type Interval struct {
	Start float64
	End   float64
}

// keyPeriods holds the interval history of one key. At most one interval is
// open at a time.
type keyPeriods struct {
	start  float64
	active bool
	closed []Interval
}

func (p *keyPeriods) open(timestamp float64) {
	if p.active {
		panic(fmt.Sprintf("detector: interval already started at %f", p.start))
	}
	p.start = timestamp
	p.active = true
}

func (p *keyPeriods) close(timestamp float64) {
	if !p.active {
		panic("detector: no interval started")
	}
	p.closed = append(p.closed, Interval{Start: p.start, End: timestamp})
	p.active = false
}

// IntervalTracker turns the set of keys flagged at each check into start and
// end transitions.
type IntervalTracker struct {
	periods map[string]*keyPeriods
	active  map[string]*keyPeriods
}

// NewIntervalTracker returns an empty IntervalTracker
func NewIntervalTracker() *IntervalTracker {
	return &IntervalTracker{
		periods: make(map[string]*keyPeriods),
		active:  make(map[string]*keyPeriods),
	}
}

// Update records the keys flagged at timestamp. The result maps every key
// whose state changed to true (it became anomalous) or false (it stopped
// being anomalous). Keys never seen before are considered inactive.
func (t *IntervalTracker) Update(flagged []string, timestamp float64) map[string]bool {
	transitions := make(map[string]bool)
	flaggedSet := make(map[string]struct{}, len(flagged))
	for _, key := range flagged {
		flaggedSet[key] = struct{}{}
		if _, ok := t.active[key]; ok {
			continue
		}
		periods, ok := t.periods[key]
		if !ok {
			periods = &keyPeriods{}
			t.periods[key] = periods
		}
		periods.open(timestamp)
		t.active[key] = periods
		transitions[key] = true
	}
	for key, periods := range t.active {
		if _, ok := flaggedSet[key]; ok {
			continue
		}
		periods.close(timestamp)
		delete(t.active, key)
		transitions[key] = false
	}
	return transitions
}

// IsActive returns whether key currently has an open interval.
func (t *IntervalTracker) IsActive(key string) bool {
	_, ok := t.active[key]
	return ok
}

// ActiveKeys returns the keys with an open interval, sorted.
func (t *IntervalTracker) ActiveKeys() []string {
	keys := make([]string, 0, len(t.active))
	for key := range t.active {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ActiveCount returns the number of keys with an open interval.
func (t *IntervalTracker) ActiveCount() int {
	return len(t.active)
}

// Len returns the number of distinct keys ever flagged.
func (t *IntervalTracker) Len() int {
	return len(t.periods)
}

// Intervals returns the closed intervals of key, oldest first.
func (t *IntervalTracker) Intervals(key string) []Interval {
	periods, ok := t.periods[key]
	if !ok {
		return nil
	}
	out := make([]Interval, len(periods.closed))
	copy(out, periods.closed)
	return out
}
