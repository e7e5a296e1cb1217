// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package reader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

const fieldCount = 6

// ParseLine parses a `timestampMillis\tsrcAddr\tsrcPort\tdstAddr\tdstPort\tflowCount` line.
func ParseLine(line string) (*common.Flow, error) {
	fields := strings.Split(strings.TrimSpace(line), "\t")
	if len(fields) != fieldCount {
		return nil, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}
	millis, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}
	flowCount, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid flow count: %w", err)
	}
	return common.NewFlow(float64(millis)/1000.0, fields[1], fields[2], fields[3], fields[4], flowCount), nil
}
