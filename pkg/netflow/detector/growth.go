// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"math"
	"sort"

	"github.com/DataDog/flowanomaly/pkg/netflow/cardinality"
	"github.com/DataDog/flowanomaly/pkg/netflow/common"
	"github.com/DataDog/flowanomaly/pkg/netflow/stats"
)

// minGrowthHistory is the number of past periods a key needs before it can be flagged.
const minGrowthHistory = 2

// Growth compares the cardinality of each key over the current period with
// the history of its own past periods.
type Growth struct {
	name         string
	sigma        float64
	newEstimator cardinality.Factory

	estimators map[string]cardinality.Estimator
	histories  map[string]*stats.Deviation
}

// MeanStdev is the history summary of one key.
type MeanStdev struct {
	Key   string
	Mean  float64
	Stdev float64
}

// NewGrowth returns a Growth detector
func NewGrowth(name string, sigma float64, newEstimator cardinality.Factory) *Growth {
	return &Growth{
		name:         name,
		sigma:        sigma,
		newEstimator: newEstimator,
		estimators:   make(map[string]cardinality.Estimator),
		histories:    make(map[string]*stats.Deviation),
	}
}

// Name implements Detector
func (g *Growth) Name() string {
	return g.name
}

// Observe implements Detector
func (g *Growth) Observe(flow *common.Flow) {
	estimatorFor(g.estimators, flow.SourceKey(), g.newEstimator).Add(flow.DestinationKey())
}

// Outliers implements Detector. The count of the period is folded into the
// key history after the comparison and the estimator is emptied.
func (g *Growth) Outliers(_ []string) map[string]float64 {
	outliers := make(map[string]float64)
	for key, estimator := range g.estimators {
		count := estimator.Cardinality()
		history := g.historyFor(key)
		if history.Count() >= minGrowthHistory {
			mean, stdev := history.Mean(), history.Stdev()
			if count > mean+g.sigma*stdev {
				outliers[key] = growthSeverity(count, mean, stdev)
			}
		}
		history.Add(count)
		g.estimators[key] = g.newEstimator()
	}
	return outliers
}

func growthSeverity(count, mean, stdev float64) float64 {
	if stdev == 0 {
		return math.Inf(1)
	}
	return (count - mean) / stdev
}

func (g *Growth) historyFor(key string) *stats.Deviation {
	history, ok := g.histories[key]
	if !ok {
		history = &stats.Deviation{}
		g.histories[key] = history
	}
	return history
}

// Describe implements Detector
func (g *Growth) Describe(key string, becameAnomalous bool) string {
	return describeOutlier(key, becameAnomalous, "growth scanning")
}

// Cardinalities returns the cardinality of every key in the current period, sorted.
func (g *Growth) Cardinalities() []float64 {
	return sortedCardinalities(g.estimators)
}

// MeansAndStdevs returns the history summary of every key, sorted by key.
func (g *Growth) MeansAndStdevs() []MeanStdev {
	summaries := make([]MeanStdev, 0, len(g.histories))
	for key, history := range g.histories {
		summaries = append(summaries, MeanStdev{Key: key, Mean: history.Mean(), Stdev: history.Stdev()})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Key < summaries[j].Key
	})
	return summaries
}
