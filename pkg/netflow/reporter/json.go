// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package reporter

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
)

// JSONReporter writes one JSON document per transition and per line.
type JSONReporter struct {
	mu      sync.Mutex
	closer  io.Closer
	buf     *bufio.Writer
	encoder *json.Encoder
	host    string
	err     error
}

// NewJSONReporter returns a JSONReporter writing to w. Close closes w when it
// is an io.Closer.
func NewJSONReporter(w io.Writer, host string) *JSONReporter {
	buf := bufio.NewWriter(w)
	r := &JSONReporter{
		buf:     buf,
		encoder: json.NewEncoder(buf),
		host:    host,
	}
	if closer, ok := w.(io.Closer); ok {
		r.closer = closer
	}
	return r
}

// Report implements detector.Reporter. Only the first write error is kept.
func (r *JSONReporter) Report(event detector.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	if err := r.encoder.Encode(BuildPayload(event, r.host)); err != nil {
		log.Warnf("failed to write event, further events will be dropped: %s", err)
		r.err = err
	}
}

// Flush writes the buffered events
func (r *JSONReporter) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	return r.buf.Flush()
}

// Close flushes the buffered events and closes the underlying writer
func (r *JSONReporter) Close() error {
	err := r.Flush()
	if r.closer != nil {
		if closeErr := r.closer.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
