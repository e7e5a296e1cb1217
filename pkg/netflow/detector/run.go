// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

var (
	// ErrEmptyStream is returned by Run when the source produced no flow at all.
	ErrEmptyStream = errors.New("empty flow stream")
	// ErrOutOfOrder is returned by Run, under strict ordering, when a flow is
	// older than the flow preceding it.
	ErrOutOfOrder = errors.New("flow received out of order")
)

// Consumer is the ingestion contract shared by Driver and Composite.
type Consumer interface {
	Observe(flow *common.Flow)
	Start(timestamp float64)
	Advance(timestamp float64) bool
}

type runOptions struct {
	strictOrdering bool
}

// RunOption configures Run
type RunOption func(*runOptions)

// WithStrictOrdering makes Run fail with ErrOutOfOrder on the first flow older
// than its predecessor instead of counting it.
func WithStrictOrdering() RunOption {
	return func(o *runOptions) {
		o.strictOrdering = true
	}
}

// Run feeds every flow of src to c: the first flow is observed and starts the
// check clock, each following flow is observed then advances the clock.
// The context is checked between flows.
func Run(ctx context.Context, src common.FlowSource, c Consumer, opts ...RunOption) error {
	var options runOptions
	for _, opt := range opts {
		opt(&options)
	}

	flow, err := src.Next(ctx)
	if errors.Is(err, io.EOF) {
		return ErrEmptyStream
	}
	if err != nil {
		return fmt.Errorf("failed to read first flow: %w", err)
	}
	c.Observe(flow)
	c.Start(flow.Timestamp)

	latest := flow.Timestamp
	outOfOrder := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		flow, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read flow: %w", err)
		}
		if flow.Timestamp < latest {
			if options.strictOrdering {
				return fmt.Errorf("%w: %s is older than %f", ErrOutOfOrder, flow, latest)
			}
			outOfOrder++
			log.Debugf("Flow received out of order: %s is older than %f", flow, latest)
		} else {
			latest = flow.Timestamp
		}
		c.Observe(flow)
		c.Advance(flow.Timestamp)
	}
	if outOfOrder > 0 {
		log.Warnf("%d flows were received out of order, detection results may be inaccurate", outOfOrder)
	}
	return nil
}
