// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package telemetry exposes the detectors state as prometheus metrics.
package telemetry

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
	"github.com/DataDog/flowanomaly/pkg/netflow/reader"
)

const (
	namespace = "flowanomaly"

	// relativeAccuracy of the cardinality quantiles
	relativeAccuracy = 0.01
)

// Quantiles are the cardinality quantiles exported per detector
var Quantiles = []float64{0.5, 0.9, 0.99}

// Collector is a prometheus.Collector reading the published snapshot of
// every driver. It never touches the detectors themselves.
type Collector struct {
	drivers     []*detector.Driver
	readerStats func() reader.Stats

	checks        *prometheus.Desc
	flowsObserved *prometheus.Desc
	trackedKeys   *prometheus.Desc
	activeKeys    *prometheus.Desc
	keys          *prometheus.Desc
	cardinality   *prometheus.Desc

	filesRead     *prometheus.Desc
	flowsRead     *prometheus.Desc
	flowsFiltered *prometheus.Desc
	linesSkipped  *prometheus.Desc
}

// NewCollector returns a Collector over drivers. readerStats may be nil.
func NewCollector(readerStats func() reader.Stats, drivers ...*detector.Driver) *Collector {
	detectorLabels := []string{"detector"}
	return &Collector{
		drivers:     drivers,
		readerStats: readerStats,

		checks:        prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "checks_total"), "Number of periodic checks run", detectorLabels, nil),
		flowsObserved: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "flows_observed_total"), "Number of flows observed", detectorLabels, nil),
		trackedKeys:   prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "tracked_keys"), "Number of keys tracked", detectorLabels, nil),
		activeKeys:    prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "active_keys"), "Number of keys currently anomalous", detectorLabels, nil),
		keys:          prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "keys"), "Number of keys per state", []string{"detector", "state"}, nil),
		cardinality:   prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "key_cardinality"), "Quantiles of the per key cardinality estimates", []string{"detector", "quantile"}, nil),

		filesRead:     prometheus.NewDesc(prometheus.BuildFQName(namespace, "reader", "files_total"), "Number of flow files read", nil, nil),
		flowsRead:     prometheus.NewDesc(prometheus.BuildFQName(namespace, "reader", "flows_total"), "Number of flows read", nil, nil),
		flowsFiltered: prometheus.NewDesc(prometheus.BuildFQName(namespace, "reader", "flows_filtered_total"), "Number of non routable flows dropped", nil, nil),
		linesSkipped:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "reader", "lines_skipped_total"), "Number of malformed lines skipped", nil, nil),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.checks
	ch <- c.flowsObserved
	ch <- c.trackedKeys
	ch <- c.activeKeys
	ch <- c.keys
	ch <- c.cardinality
	if c.readerStats != nil {
		ch <- c.filesRead
		ch <- c.flowsRead
		ch <- c.flowsFiltered
		ch <- c.linesSkipped
	}
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, d := range c.drivers {
		stats := d.Stats()
		name := stats.Detector
		ch <- prometheus.MustNewConstMetric(c.checks, prometheus.CounterValue, float64(stats.Checks), name)
		ch <- prometheus.MustNewConstMetric(c.flowsObserved, prometheus.CounterValue, float64(stats.FlowsObserved), name)
		ch <- prometheus.MustNewConstMetric(c.trackedKeys, prometheus.GaugeValue, float64(stats.TrackedKeys), name)
		ch <- prometheus.MustNewConstMetric(c.activeKeys, prometheus.GaugeValue, float64(stats.ActiveKeys), name)

		states := make([]string, 0, len(stats.Counts))
		for state := range stats.Counts {
			states = append(states, state)
		}
		sort.Strings(states)
		for _, state := range states {
			ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(stats.Counts[state]), name, state)
		}

		quantiles, err := CardinalityQuantiles(stats.Cardinalities)
		if err != nil {
			log.Debugf("Unable to summarize cardinalities of %s: %s", name, err)
			continue
		}
		if len(quantiles) == 0 {
			continue
		}
		for i, q := range Quantiles {
			ch <- prometheus.MustNewConstMetric(c.cardinality, prometheus.GaugeValue, quantiles[i], name, strconv.FormatFloat(q, 'f', -1, 64))
		}
	}

	if c.readerStats != nil {
		stats := c.readerStats()
		ch <- prometheus.MustNewConstMetric(c.filesRead, prometheus.CounterValue, float64(stats.FilesRead))
		ch <- prometheus.MustNewConstMetric(c.flowsRead, prometheus.CounterValue, float64(stats.FlowsRead))
		ch <- prometheus.MustNewConstMetric(c.flowsFiltered, prometheus.CounterValue, float64(stats.FlowsFiltered))
		ch <- prometheus.MustNewConstMetric(c.linesSkipped, prometheus.CounterValue, float64(stats.LinesSkipped))
	}
}

// CardinalityQuantiles summarizes cardinalities at every Quantiles value.
// It returns nil without error when there is nothing to summarize.
func CardinalityQuantiles(cardinalities []float64) ([]float64, error) {
	if len(cardinalities) == 0 {
		return nil, nil
	}
	sketch, err := ddsketch.NewDefaultDDSketch(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	for _, value := range cardinalities {
		if err := sketch.Add(value); err != nil {
			return nil, err
		}
	}
	return sketch.GetValuesAtQuantiles(Quantiles)
}

// Handler returns the HTTP handler serving the metrics of c
func Handler(c *Collector) (http.Handler, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(c); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
