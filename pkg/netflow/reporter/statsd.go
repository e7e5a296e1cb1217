// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package reporter

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
	"github.com/DataDog/flowanomaly/pkg/netflow/format"
)

// TransitionsMetric counts the transitions sent to DogStatsD
const TransitionsMetric = "transitions"

// StatsdReporter sends every transition to DogStatsD as an event and a count.
type StatsdReporter struct {
	client statsd.ClientInterface
}

// NewStatsdReporter returns a StatsdReporter sending to client
func NewStatsdReporter(client statsd.ClientInterface) *StatsdReporter {
	return &StatsdReporter{client: client}
}

// NewStatsdClient returns a DogStatsD client prefixing metrics with namespace
func NewStatsdClient(address string, namespace string) (*statsd.Client, error) {
	client, err := statsd.New(address, statsd.WithNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("failed to create statsd client for %s: %w", address, err)
	}
	return client, nil
}

// Report implements detector.Reporter
func (r *StatsdReporter) Report(event detector.Event) {
	tags := []string{
		"detector:" + event.Detector,
		"key:" + event.Key,
		"state:" + State(event),
	}
	alertType := statsd.Info
	if event.BecameAnomalous {
		alertType = statsd.Warning
	}
	err := r.client.Event(&statsd.Event{
		Title:          fmt.Sprintf("%s: %s %s", event.Detector, event.Key, State(event)),
		Text:           event.Message,
		Timestamp:      format.Time(event.Timestamp),
		AlertType:      alertType,
		AggregationKey: event.Detector + ":" + event.Key,
		SourceTypeName: "flowanomaly",
		Tags:           tags,
	})
	if err != nil {
		log.Debugf("failed to send statsd event: %s", err)
	}
	if err := r.client.Count(TransitionsMetric, 1, tags, 1); err != nil {
		log.Debugf("failed to send statsd count: %s", err)
	}
}

// Close flushes and closes the client
func (r *StatsdReporter) Close() error {
	return r.client.Close()
}
