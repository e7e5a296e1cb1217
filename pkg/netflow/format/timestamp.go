// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package format contains helpers to render flow and anomaly values.
package format

import (
	"math"
	"strconv"
	"time"
)

// TimestampLayout is the layout used for human readable transition lines.
const TimestampLayout = "2006-01-02 15:04:05.000"

// Time converts a flow timestamp in (fractional) seconds to a UTC time.Time.
func Time(timestamp float64) time.Time {
	sec, frac := math.Modf(timestamp)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

// Timestamp formats a flow timestamp with TimestampLayout.
func Timestamp(timestamp float64) string {
	return Time(timestamp).Format(TimestampLayout)
}

// Severity formats a severity score, keeping infinite scores readable.
func Severity(severity float64) string {
	switch {
	case math.IsInf(severity, 1):
		return "+inf"
	case math.IsInf(severity, -1):
		return "-inf"
	case math.IsNaN(severity):
		return "nan"
	}
	return strconv.FormatFloat(severity, 'f', 2, 64)
}
