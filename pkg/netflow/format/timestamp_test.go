// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package format

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTime(t *testing.T) {
	assert.Equal(t, time.Date(2018, 3, 1, 12, 0, 0, 0, time.UTC), Time(1519905600))
	assert.Equal(t, time.Date(2018, 3, 1, 12, 0, 0, 500000000, time.UTC), Time(1519905600.5))
	assert.Equal(t, time.Unix(0, 0).UTC(), Time(0))
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "2018-03-01 12:00:00.000", Timestamp(1519905600))
	assert.Equal(t, "2018-03-01 12:00:00.250", Timestamp(1519905600.25))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "6.93", Severity(6.9282))
	assert.Equal(t, "+inf", Severity(math.Inf(1)))
	assert.Equal(t, "-inf", Severity(math.Inf(-1)))
	assert.Equal(t, "nan", Severity(math.NaN()))
}
