// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package cardinality

import (
	"fmt"

	"github.com/axiomhq/hyperloglog"
	"github.com/twmb/murmur3"
)

// Supported sketch precisions, in bits of register index.
const (
	Precision14 uint8 = 14
	Precision16 uint8 = 16
)

// hll is an Estimator backed by a HyperLogLog sketch.
type hll struct {
	sketch *hyperloglog.Sketch
}

// NewFactory returns a Factory of HyperLogLog estimators using the given precision.
func NewFactory(precision uint8) (Factory, error) {
	switch precision {
	case Precision14:
		return func() Estimator { return &hll{sketch: hyperloglog.New14()} }, nil
	case Precision16:
		return func() Estimator { return &hll{sketch: hyperloglog.New16()} }, nil
	default:
		return nil, fmt.Errorf("unsupported sketch precision %d (supported: %d, %d)", precision, Precision14, Precision16)
	}
}

// Add implements Estimator
func (h *hll) Add(item string) {
	h.sketch.InsertHash(murmur3.StringSum64(item))
}

// Cardinality implements Estimator
func (h *hll) Cardinality() float64 {
	return float64(h.sketch.Estimate())
}
