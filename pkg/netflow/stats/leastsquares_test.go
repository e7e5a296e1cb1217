// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeastSquares_RecoversLine(t *testing.T) {
	tests := []struct {
		name      string
		slope     float64
		intercept float64
		xs        []float64
	}{
		{name: "increasing", slope: 2, intercept: 1, xs: []float64{1, 2, 3, 4, 5}},
		{name: "decreasing", slope: -0.5, intercept: 40, xs: []float64{10, 3, 7, 1}},
		{name: "flat", slope: 0, intercept: 3, xs: []float64{1, 2}},
		{name: "large offsets", slope: 1e-3, intercept: -7, xs: []float64{1000, 1001, 1002, 1003}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l LeastSquares
			for _, x := range tt.xs {
				l.Update(x, tt.slope*x+tt.intercept)
			}
			slope, intercept := l.Estimate()
			assert.InDelta(t, tt.slope, slope, 1e-9)
			assert.InDelta(t, tt.intercept, intercept, 1e-6)
			assert.Equal(t, len(tt.xs), l.Count())
		})
	}
}

func TestLeastSquares_Degenerate(t *testing.T) {
	var l LeastSquares
	slope, intercept := l.Estimate()
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 0.0, intercept)

	l.Update(3, 10)
	slope, intercept = l.Estimate()
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 0.0, intercept)

	l.Update(3, 12)
	slope, intercept = l.Estimate()
	assert.Equal(t, 0.0, slope)
	assert.True(t, math.IsInf(intercept, 1))
}

func TestLeastSquares_ConstantY(t *testing.T) {
	var l LeastSquares
	for x := 1; x <= 50; x++ {
		l.Update(float64(x), 10)
	}
	slope, intercept := l.Estimate()
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 10.0, intercept)
}
