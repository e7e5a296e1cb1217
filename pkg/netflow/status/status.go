// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022-present Datadog, Inc.

// Package status renders the end of run summary.
package status

import (
	"embed"
	"encoding/json"
	"io"
	"path"
	"strings"
	"text/template"

	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
	"github.com/DataDog/flowanomaly/pkg/netflow/format"
	"github.com/DataDog/flowanomaly/pkg/netflow/payload"
	"github.com/DataDog/flowanomaly/pkg/netflow/reader"
)

//go:embed status_templates
var templatesFS embed.FS

// Summary builds the run summary. The drivers must not be running.
func Summary(readerStats reader.Stats, injected int64, eventsReported int, drivers ...*detector.Driver) payload.RunSummary {
	summary := payload.RunSummary{
		FlowsRead:      readerStats.FlowsRead,
		FlowsSkipped:   readerStats.FlowsFiltered + readerStats.LinesSkipped,
		FlowsInjected:  injected,
		FilesRead:      readerStats.FilesRead,
		EventsReported: eventsReported,
	}
	for _, d := range drivers {
		stats := d.Stats()
		summary.Detectors = append(summary.Detectors, payload.DetectorSummary{
			Name:          stats.Detector,
			Checks:        stats.Checks,
			FlowsObserved: stats.FlowsObserved,
			LastCheck:     format.Timestamp(stats.LastCheck),
			TrackedKeys:   stats.TrackedKeys,
			ActiveKeys:    d.ActiveKeys(),
			Counts:        d.Counts(),
		})
	}
	return summary
}

// JSON writes the summary as an indented JSON document
func JSON(w io.Writer, summary payload.RunSummary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

// Text writes the human readable summary
func Text(w io.Writer, summary payload.RunSummary) error {
	tmpl, err := templatesFS.ReadFile(path.Join("status_templates", "summary.tmpl"))
	if err != nil {
		return err
	}
	t := template.Must(template.New("summary").Funcs(template.FuncMap{
		"dashes": func(s string) string {
			return strings.Repeat("-", len(s))
		},
	}).Parse(string(tmpl)))
	return t.Execute(w, summary)
}
