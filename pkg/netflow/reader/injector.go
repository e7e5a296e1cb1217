// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package reader

import (
	"context"
	"math/rand"
	"strconv"

	"go.uber.org/atomic"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

// minInjectionEndpoints is the number of distinct endpoints to see before
// injecting scan flows.
const minInjectionEndpoints = 100

type endpoint struct {
	addr string
	port string
}

// ScanInjector wraps a FlowSource and simulates a port scan: after each flow,
// with probability frequency, it emits a flow from the scanner address to a
// random endpoint already seen.
type ScanInjector struct {
	src       common.FlowSource
	scanner   string
	frequency float64
	rand      *rand.Rand

	seen      map[endpoint]struct{}
	endpoints []endpoint
	pending   *common.Flow
	injected  *atomic.Int64
}

// NewScanInjector returns a ScanInjector. A nil rnd uses a time seeded source.
func NewScanInjector(src common.FlowSource, scanner string, frequency float64, rnd *rand.Rand) *ScanInjector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return &ScanInjector{
		src:       src,
		scanner:   scanner,
		frequency: frequency,
		rand:      rnd,
		seen:      make(map[endpoint]struct{}),
		injected:  atomic.NewInt64(0),
	}
}

// Next implements common.FlowSource
func (s *ScanInjector) Next(ctx context.Context) (*common.Flow, error) {
	if s.pending != nil {
		flow := s.pending
		s.pending = nil
		return flow, nil
	}
	flow, err := s.src.Next(ctx)
	if err != nil {
		return nil, err
	}
	s.add(endpoint{addr: flow.SrcAddr, port: flow.SrcPort})
	s.add(endpoint{addr: flow.DstAddr, port: flow.DstPort})
	if len(s.endpoints) > minInjectionEndpoints && s.rand.Float64() < s.frequency {
		target := s.endpoints[s.rand.Intn(len(s.endpoints))]
		s.pending = common.NewFlow(
			flow.Timestamp,
			s.scanner,
			strconv.Itoa(s.rand.Intn(65537)),
			target.addr,
			target.port,
			int64(s.rand.Intn(100)+1),
		)
		s.injected.Inc()
	}
	return flow, nil
}

func (s *ScanInjector) add(e endpoint) {
	if _, ok := s.seen[e]; ok {
		return
	}
	s.seen[e] = struct{}{}
	s.endpoints = append(s.endpoints, e)
}

// Injected returns the number of flows injected so far
func (s *ScanInjector) Injected() int64 {
	return s.injected.Load()
}
