// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"fmt"
	"sort"

	"github.com/DataDog/flowanomaly/pkg/netflow/cardinality"
	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

// exactEstimator counts distinct items exactly
type exactEstimator map[string]struct{}

func (e exactEstimator) Add(item string) {
	e[item] = struct{}{}
}

func (e exactEstimator) Cardinality() float64 {
	return float64(len(e))
}

func newExactEstimator() cardinality.Estimator {
	return exactEstimator{}
}

type recorder struct {
	events []Event
}

func (r *recorder) Report(event Event) {
	r.events = append(r.events, event)
}

type transition struct {
	Timestamp       float64
	Key             string
	BecameAnomalous bool
}

func (r *recorder) transitions() []transition {
	var out []transition
	for _, e := range r.events {
		out = append(out, transition{Timestamp: e.Timestamp, Key: e.Key, BecameAnomalous: e.BecameAnomalous})
	}
	return out
}

func destination(i int) (string, string) {
	return fmt.Sprintf("10.%d.%d.%d", (i>>16)&0xff, (i>>8)&0xff, i&0xff), fmt.Sprintf("%d", 1000+i%50000)
}

// periodFlows returns, for each period, the flows of every source towards
// counts[period][source] distinct destinations. Flows of period k are stamped
// at the start of the period except the last one, stamped at its end so that
// it triggers the check of the period.
func periodFlows(period float64, counts []map[string]int, sources []string) []*common.Flow {
	var flows []*common.Flow
	for k, perSource := range counts {
		total := 0
		for _, src := range sources {
			total += perSource[src]
		}
		n := 0
		for _, src := range sources {
			for i := 0; i < perSource[src]; i++ {
				ts := float64(k) * period
				if n == total-1 {
					ts = float64(k+1) * period
				}
				dst, port := destination(i)
				flows = append(flows, common.NewFlow(ts, src, "40000", dst, port, 1))
				n++
			}
		}
	}
	return flows
}

// growingHostFlows returns the flows of a host reaching deltas[i] new
// destinations before check i+1. A flow towards an already known destination
// closes every period.
func growingHostFlows(key string, period float64, deltas []int) []*common.Flow {
	var flows []*common.Flow
	next := 0
	for i, delta := range deltas {
		check := float64(i+1) * period
		for j := 0; j < delta; j++ {
			ts := check - period/2
			if i == 0 && j == 0 {
				ts = 0
			}
			dst, port := destination(next)
			flows = append(flows, common.NewFlow(ts, key, "40000", dst, port, 1))
			next++
		}
		dst, port := destination(0)
		flows = append(flows, common.NewFlow(check, key, "40000", dst, port, 1))
	}
	return flows
}

func keysOf(outliers map[string]float64) []string {
	keys := make([]string, 0, len(outliers))
	for key := range outliers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
