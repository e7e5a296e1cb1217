// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"math"
	"sort"

	"github.com/DataDog/flowanomaly/pkg/netflow/cardinality"
	"github.com/DataDog/flowanomaly/pkg/netflow/stats"
)

// populationTest flags the keys whose cardinality is more than sigma standard
// deviations above the mean cardinality of all keys. Only the topK largest
// keys and the keys already anomalous are compared to the threshold.
type populationTest struct {
	sigma float64
	topK  int
}

func (p populationTest) outliers(estimators map[string]cardinality.Estimator, active []string) map[string]float64 {
	outliers := make(map[string]float64)
	if len(estimators) == 0 {
		return outliers
	}

	var deviation stats.Deviation
	top := stats.NewTopK(p.topK)
	counts := make(map[string]float64, len(estimators))
	for key, estimator := range estimators {
		count := estimator.Cardinality()
		counts[key] = count
		deviation.Add(count)
		top.Push(key, count)
	}

	mean, stdev := deviation.Mean(), deviation.Stdev()
	threshold := mean + p.sigma*stdev
	if math.IsNaN(threshold) {
		return outliers
	}
	for _, entry := range top.Entries() {
		if entry.Value > threshold {
			outliers[entry.Key] = (entry.Value - mean) / stdev
		}
	}
	for _, key := range active {
		count, ok := counts[key]
		if ok && count > threshold {
			outliers[key] = (count - mean) / stdev
		}
	}
	return outliers
}

func sortedCardinalities(estimators map[string]cardinality.Estimator) []float64 {
	counts := make([]float64, 0, len(estimators))
	for _, estimator := range estimators {
		counts = append(counts, estimator.Cardinality())
	}
	sort.Float64s(counts)
	return counts
}

func estimatorFor(estimators map[string]cardinality.Estimator, key string, newEstimator cardinality.Factory) cardinality.Estimator {
	estimator, ok := estimators[key]
	if !ok {
		estimator = newEstimator()
		estimators[key] = estimator
	}
	return estimator
}
