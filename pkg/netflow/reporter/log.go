// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package reporter

import (
	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
	"github.com/DataDog/flowanomaly/pkg/netflow/format"
)

// LogReporter logs one line per transition
type LogReporter struct{}

// NewLogReporter returns a LogReporter
func NewLogReporter() *LogReporter {
	return &LogReporter{}
}

// Report implements detector.Reporter
func (*LogReporter) Report(event detector.Event) {
	log.Info(Line(event))
}

// Line returns the human readable line of a transition: `<time> ::: <message>`.
func Line(event detector.Event) string {
	return format.Timestamp(event.Timestamp) + " ::: " + event.Message
}
