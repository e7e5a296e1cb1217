// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"fmt"
	"math"
	"sort"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/pkg/netflow/cardinality"
	"github.com/DataDog/flowanomaly/pkg/netflow/common"
	"github.com/DataDog/flowanomaly/pkg/netflow/stats"
)

// hostModel is the per key state of HostStabilization.
type hostModel struct {
	estimator  cardinality.Estimator
	previous   float64
	deltas     stats.Deviation
	regression stats.LeastSquares
}

// HostStabilization decides when a host stopped talking to new destinations.
//
// At each check the number of new destinations since the previous check is
// regressed against the check index. Assuming the number of new destinations
// decays, the number of destinations still to be seen is estimated as
// -slope * mean(new destinations). A host whose estimate falls within the
// tolerance while decaying is frozen, and unfrozen as soon as the estimate
// leaves the tolerance again.
type HostStabilization struct {
	name         string
	tolerance    float64
	newEstimator cardinality.Factory

	checkIndex int
	hosts      map[string]*hostModel
	frozen     map[string]float64
	everFrozen map[string]struct{}
}

// NewHostStabilization returns a HostStabilization detector
func NewHostStabilization(name string, tolerance float64, newEstimator cardinality.Factory) *HostStabilization {
	return &HostStabilization{
		name:         name,
		tolerance:    tolerance,
		newEstimator: newEstimator,
		hosts:        make(map[string]*hostModel),
		frozen:       make(map[string]float64),
		everFrozen:   make(map[string]struct{}),
	}
}

// Name implements Detector
func (h *HostStabilization) Name() string {
	return h.name
}

// Observe implements Detector
func (h *HostStabilization) Observe(flow *common.Flow) {
	h.hostFor(flow.SourceKey()).estimator.Add(flow.DestinationKey())
}

func (h *HostStabilization) hostFor(key string) *hostModel {
	host, ok := h.hosts[key]
	if !ok {
		host = &hostModel{estimator: h.newEstimator()}
		h.hosts[key] = host
	}
	return host
}

// Outliers implements Detector. The returned set is the set of frozen hosts,
// scored by their remaining cardinality estimate.
func (h *HostStabilization) Outliers(_ []string) map[string]float64 {
	h.checkIndex++
	for key, host := range h.hosts {
		count := host.estimator.Cardinality()
		delta := count - host.previous
		host.previous = count
		host.deltas.Add(delta)
		host.regression.Update(float64(h.checkIndex), delta)

		if host.regression.Count() < 2 {
			continue
		}
		slope, intercept := host.regression.Estimate()
		if math.IsInf(slope, 0) || math.IsInf(intercept, 0) {
			continue
		}
		remaining := -slope * host.deltas.Mean()

		_, isFrozen := h.frozen[key]
		switch {
		case isFrozen && math.Abs(remaining) > h.tolerance:
			delete(h.frozen, key)
		case isFrozen:
			h.frozen[key] = remaining
		case slope < 0 && math.Abs(remaining) <= h.tolerance:
			h.frozen[key] = remaining
			h.everFrozen[key] = struct{}{}
		case remaining < -h.tolerance:
			log.Debugf("%s has a positive slope and a negative remaining estimate: remaining=%f slope=%f", key, remaining, slope)
		}
	}

	outliers := make(map[string]float64, len(h.frozen))
	for key, remaining := range h.frozen {
		outliers[key] = remaining
	}
	return outliers
}

// Describe implements Detector
func (h *HostStabilization) Describe(key string, becameAnomalous bool) string {
	if becameAnomalous {
		return fmt.Sprintf("IP address %s became frozen.", key)
	}
	return fmt.Sprintf("IP address %s is no longer frozen!", key)
}

// Cardinalities returns the total cardinality of every host, sorted.
func (h *HostStabilization) Cardinalities() []float64 {
	counts := make([]float64, 0, len(h.hosts))
	for _, host := range h.hosts {
		counts = append(counts, host.estimator.Cardinality())
	}
	sort.Float64s(counts)
	return counts
}

// Means returns the mean number of new destinations per check of every host, sorted.
func (h *HostStabilization) Means() []float64 {
	means := make([]float64, 0, len(h.hosts))
	for _, host := range h.hosts {
		means = append(means, host.deltas.Mean())
	}
	sort.Float64s(means)
	return means
}

// Slopes returns the regression slope of every host, sorted.
func (h *HostStabilization) Slopes() []float64 {
	slopes := make([]float64, 0, len(h.hosts))
	for _, host := range h.hosts {
		slope, _ := host.regression.Estimate()
		slopes = append(slopes, slope)
	}
	sort.Float64s(slopes)
	return slopes
}

// Frozen returns the hosts currently frozen, sorted.
func (h *HostStabilization) Frozen() []string {
	keys := make([]string, 0, len(h.frozen))
	for key := range h.frozen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Unfrozen returns the hosts that were frozen once and are not anymore, sorted.
func (h *HostStabilization) Unfrozen() []string {
	var keys []string
	for key := range h.everFrozen {
		if _, ok := h.frozen[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// NeverFrozen returns the hosts that were never frozen, sorted.
func (h *HostStabilization) NeverFrozen() []string {
	var keys []string
	for key := range h.hosts {
		if _, ok := h.everFrozen[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Counts returns the number of hosts per freezing state.
func (h *HostStabilization) Counts() map[string]int {
	return map[string]int{
		"frozen":       len(h.frozen),
		"unfrozen":     len(h.everFrozen) - len(h.frozen),
		"never frozen": len(h.hosts) - len(h.everFrozen),
	}
}
