// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package reporter

import (
	"bufio"
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/cihub/seelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
)

var (
	becameOutlier = detector.Event{
		Timestamp:       1500000000.25,
		Detector:        "portscan",
		Key:             "203.0.113.66",
		BecameAnomalous: true,
		Severity:        6.93,
		Message:         "IP address 203.0.113.66 became an outlier for IP port scanning.",
	}
	noLongerOutlier = detector.Event{
		Timestamp: 1500000600,
		Detector:  "growth",
		Key:       "192.0.2.10",
		Message:   "IP address 192.0.2.10 is no longer an outlier for growth scanning.",
	}
)

func TestLine(t *testing.T) {
	assert.Equal(t, "2017-07-14 02:40:00.250 ::: IP address 203.0.113.66 became an outlier for IP port scanning.", Line(becameOutlier))
}

func TestLogReporter(t *testing.T) {
	var b bytes.Buffer
	w := bufio.NewWriter(&b)
	l, err := seelog.LoggerFromWriterWithMinLevelAndFormat(w, seelog.DebugLvl, "[%LEVEL] %Msg\n")
	require.NoError(t, err)
	log.SetupLogger(l, "debug")

	r := NewLogReporter()
	r.Report(becameOutlier)
	r.Report(noLongerOutlier)

	log.Flush()
	w.Flush()
	logs := b.String()
	assert.Equal(t, 2, strings.Count(logs, "[INFO] "), logs)
	assert.Contains(t, logs, "[INFO] 2017-07-14 02:40:00.250 ::: IP address 203.0.113.66 became an outlier for IP port scanning.\n")
	assert.Contains(t, logs, "[INFO] 2017-07-14 02:50:00.000 ::: IP address 192.0.2.10 is no longer an outlier for growth scanning.\n")
}

func TestBuildPayload(t *testing.T) {
	p := BuildPayload(becameOutlier, "collector-1")

	assert.Equal(t, "portscan", p.Detector)
	assert.Equal(t, uint64(1500000000250), p.Timestamp)
	assert.Equal(t, "2017-07-14 02:40:00.250", p.Time)
	assert.Equal(t, "203.0.113.66", p.Source.IP)
	assert.Equal(t, "anomalous", p.State)
	require.NotNil(t, p.Severity)
	assert.Equal(t, 6.93, *p.Severity)
	assert.Equal(t, "collector-1", p.Host)

	infinite := becameOutlier
	infinite.Severity = math.Inf(1)
	assert.Nil(t, BuildPayload(infinite, "").Severity)
}

func TestJSONReporter(t *testing.T) {
	var b bytes.Buffer
	r := NewJSONReporter(&b, "")

	infinite := becameOutlier
	infinite.Severity = math.Inf(1)
	r.Report(becameOutlier)
	r.Report(infinite)
	r.Report(noLongerOutlier)
	require.NoError(t, r.Close())

	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{
		"detector": "portscan",
		"timestamp": 1500000000250,
		"time": "2017-07-14 02:40:00.250",
		"source": {"ip": "203.0.113.66"},
		"state": "anomalous",
		"severity": 6.93,
		"message": "IP address 203.0.113.66 became an outlier for IP port scanning."
	}`, lines[0])
	assert.Contains(t, lines[1], `"severity":null`)
	assert.JSONEq(t, `{
		"detector": "growth",
		"timestamp": 1500000600000,
		"time": "2017-07-14 02:50:00.000",
		"source": {"ip": "192.0.2.10"},
		"state": "normal",
		"severity": 0,
		"message": "IP address 192.0.2.10 is no longer an outlier for growth scanning."
	}`, lines[2])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestJSONReporter_KeepsFirstError(t *testing.T) {
	r := NewJSONReporter(failingWriter{}, "")
	r.Report(becameOutlier)

	assert.EqualError(t, r.Close(), "disk full")
}

type fakeStatsd struct {
	statsd.NoOpClient
	events []*statsd.Event
	counts map[string]int64
	closed bool
}

func (f *fakeStatsd) Event(e *statsd.Event) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeStatsd) Count(name string, value int64, tags []string, _ float64) error {
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[name+"|"+strings.Join(tags, ",")] += value
	return nil
}

func (f *fakeStatsd) Close() error {
	f.closed = true
	return nil
}

func TestStatsdReporter(t *testing.T) {
	client := &fakeStatsd{}
	r := NewStatsdReporter(client)

	r.Report(becameOutlier)
	r.Report(noLongerOutlier)
	require.NoError(t, r.Close())

	require.Len(t, client.events, 2)
	assert.Equal(t, &statsd.Event{
		Title:          "portscan: 203.0.113.66 anomalous",
		Text:           "IP address 203.0.113.66 became an outlier for IP port scanning.",
		Timestamp:      time.Date(2017, 7, 14, 2, 40, 0, 250000000, time.UTC),
		AlertType:      statsd.Warning,
		AggregationKey: "portscan:203.0.113.66",
		SourceTypeName: "flowanomaly",
		Tags:           []string{"detector:portscan", "key:203.0.113.66", "state:anomalous"},
	}, client.events[0])
	assert.Equal(t, statsd.Info, client.events[1].AlertType)
	assert.Equal(t, map[string]int64{
		"transitions|detector:portscan,key:203.0.113.66,state:anomalous": 1,
		"transitions|detector:growth,key:192.0.2.10,state:normal":        1,
	}, client.counts)
	assert.True(t, client.closed)
}

type closingReporter struct {
	Recorder
	err error
}

func (c *closingReporter) Close() error {
	return c.err
}

func TestMulti(t *testing.T) {
	first := NewRecorder()
	second := &closingReporter{err: errors.New("first failure")}
	third := &closingReporter{err: errors.New("second failure")}
	m := Multi{first, second, third}

	m.Report(becameOutlier)
	m.Report(noLongerOutlier)

	assert.Equal(t, []detector.Event{becameOutlier, noLongerOutlier}, first.Events())
	assert.Equal(t, 2, second.Len())
	err := m.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first failure")
	assert.Contains(t, err.Error(), "second failure")

	assert.NoError(t, Multi{first}.Close())
}
