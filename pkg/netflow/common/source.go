// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package common

import (
	"context"
	"io"
)

// FlowSource produces flows in non-decreasing timestamp order.
// Next returns io.EOF once the source is exhausted.
type FlowSource interface {
	Next(ctx context.Context) (*Flow, error)
}

// SliceSource is a FlowSource backed by an in-memory slice.
type SliceSource struct {
	flows []*Flow
	pos   int
}

// NewSliceSource returns a FlowSource yielding flows in slice order.
func NewSliceSource(flows []*Flow) *SliceSource {
	return &SliceSource{flows: flows}
}

// Next implements FlowSource
func (s *SliceSource) Next(ctx context.Context) (*Flow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.flows) {
		return nil, io.EOF
	}
	flow := s.flows[s.pos]
	s.pos++
	return flow, nil
}
