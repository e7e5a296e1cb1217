// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package telemetry

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
	"github.com/DataDog/flowanomaly/pkg/netflow/reader"
)

func newCheckedDriver(t *testing.T) *detector.Driver {
	t.Helper()
	d, err := detector.New(detector.Config{Type: common.TypePortScan, Period: time.Minute}, nil)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		for j := 0; j <= i; j++ {
			d.Observe(common.NewFlow(0, fmt.Sprintf("192.0.2.%d", i), "40000", "198.51.100.1", fmt.Sprintf("%d", 80+j), 1))
		}
	}
	d.Start(0)
	d.Advance(60)
	return d
}

func TestCollector(t *testing.T) {
	d := newCheckedDriver(t)
	readerStats := func() reader.Stats {
		return reader.Stats{FilesRead: 2, FlowsRead: 10, FlowsFiltered: 3, LinesSkipped: 1}
	}
	c := NewCollector(readerStats, d)

	expected := `
# HELP flowanomaly_checks_total Number of periodic checks run
# TYPE flowanomaly_checks_total counter
flowanomaly_checks_total{detector="portscan"} 1
# HELP flowanomaly_flows_observed_total Number of flows observed
# TYPE flowanomaly_flows_observed_total counter
flowanomaly_flows_observed_total{detector="portscan"} 10
# HELP flowanomaly_tracked_keys Number of keys tracked
# TYPE flowanomaly_tracked_keys gauge
flowanomaly_tracked_keys{detector="portscan"} 4
# HELP flowanomaly_active_keys Number of keys currently anomalous
# TYPE flowanomaly_active_keys gauge
flowanomaly_active_keys{detector="portscan"} 0
# HELP flowanomaly_keys Number of keys per state
# TYPE flowanomaly_keys gauge
flowanomaly_keys{detector="portscan",state="extreme"} 0
flowanomaly_keys{detector="portscan",state="previously extreme"} 0
# HELP flowanomaly_reader_flows_filtered_total Number of non routable flows dropped
# TYPE flowanomaly_reader_flows_filtered_total counter
flowanomaly_reader_flows_filtered_total 3
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"flowanomaly_checks_total",
		"flowanomaly_flows_observed_total",
		"flowanomaly_tracked_keys",
		"flowanomaly_active_keys",
		"flowanomaly_keys",
		"flowanomaly_reader_flows_filtered_total",
	)
	assert.NoError(t, err)
	assert.Equal(t, len(Quantiles), testutil.CollectAndCount(c, "flowanomaly_key_cardinality"))
	assert.Equal(t, 4, testutil.CollectAndCount(c,
		"flowanomaly_reader_files_total",
		"flowanomaly_reader_flows_total",
		"flowanomaly_reader_flows_filtered_total",
		"flowanomaly_reader_lines_skipped_total",
	))
}

func TestCollector_NoCheckYet(t *testing.T) {
	d, err := detector.New(detector.Config{Type: common.TypeGrowth}, nil)
	require.NoError(t, err)
	c := NewCollector(nil, d)

	assert.Equal(t, 0, testutil.CollectAndCount(c, "flowanomaly_key_cardinality"))
	assert.Equal(t, 0, testutil.CollectAndCount(c, "flowanomaly_reader_files_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(c, "flowanomaly_checks_total"))
}

func TestCardinalityQuantiles(t *testing.T) {
	values := make([]float64, 0, 100)
	for i := 1; i <= 100; i++ {
		values = append(values, float64(i))
	}

	quantiles, err := CardinalityQuantiles(values)

	require.NoError(t, err)
	require.Len(t, quantiles, 3)
	assert.InEpsilon(t, 50, quantiles[0], 0.03)
	assert.InEpsilon(t, 90, quantiles[1], 0.03)
	assert.InEpsilon(t, 99, quantiles[2], 0.03)

	quantiles, err = CardinalityQuantiles(nil)
	assert.NoError(t, err)
	assert.Nil(t, quantiles)
}

func TestHandler(t *testing.T) {
	h, err := Handler(NewCollector(nil, newCheckedDriver(t)))
	require.NoError(t, err)
	server := httptest.NewServer(h)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `flowanomaly_checks_total{detector="portscan"} 1`)
}
