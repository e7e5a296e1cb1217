// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package stats

import "math"

// LeastSquares incrementally fits y = slope*x + intercept, x being the
// independent variable. Means and co-moments are updated with the same
// one-pass scheme as Deviation.
type LeastSquares struct {
	n    int
	xbar float64
	ybar float64
	sxy  float64
	sxx  float64
}

// Update adds the point (x, y).
func (l *LeastSquares) Update(x, y float64) {
	l.n++
	dx := x - l.xbar
	l.xbar += dx / float64(l.n)
	l.ybar += (y - l.ybar) / float64(l.n)
	l.sxy += dx * (y - l.ybar)
	l.sxx += dx * (x - l.xbar)
}

// Count returns the number of points added.
func (l *LeastSquares) Count() int {
	return l.n
}

// Estimate returns the current slope and intercept.
//
// With fewer than 2 points it returns (0, 0). When every x seen so far is
// identical the fit is undefined and it returns (0, +Inf); callers must not
// act on an infinite intercept.
func (l *LeastSquares) Estimate() (slope float64, intercept float64) {
	if l.n < 2 {
		return 0, 0
	}
	if l.sxx == 0 {
		return 0, math.Inf(1)
	}
	slope = l.sxy / l.sxx
	intercept = l.ybar - slope*l.xbar
	return slope, intercept
}
