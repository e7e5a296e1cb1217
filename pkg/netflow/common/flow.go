// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package common

import (
	"fmt"
	"net/netip"
	"strings"
)

// Flow contains a summarized network conversation observation.
// A Flow is never modified once built by NewFlow.
type Flow struct {
	Timestamp float64 // in seconds
	SrcAddr   string
	SrcPort   string
	DstAddr   string
	DstPort   string
	FlowCount int64
	Routable  bool
}

// NewFlow builds a Flow and precomputes whether it travelled over the network,
// i.e. neither endpoint is a loopback or link-local address.
func NewFlow(timestamp float64, srcAddr, srcPort, dstAddr, dstPort string, flowCount int64) *Flow {
	return &Flow{
		Timestamp: timestamp,
		SrcAddr:   srcAddr,
		SrcPort:   srcPort,
		DstAddr:   dstAddr,
		DstPort:   dstPort,
		FlowCount: flowCount,
		Routable:  !isInside(srcAddr) && !isInside(dstAddr),
	}
}

// SourceKey returns the key under which the flow is tracked.
func (f *Flow) SourceKey() string {
	return f.SrcAddr
}

// DestinationKey returns the `addr:port` item counted by the cardinality sketches.
func (f *Flow) DestinationKey() string {
	return f.DstAddr + ":" + f.DstPort
}

func (f *Flow) String() string {
	return fmt.Sprintf("Flow(ts=%f, src=%s:%s, dst=%s:%s, flows=%d)", f.Timestamp, f.SrcAddr, f.SrcPort, f.DstAddr, f.DstPort, f.FlowCount)
}

// isInside reports whether the address never leaves the host (loopback or link-local)
func isInside(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return strings.HasPrefix(addr, "169.254.") ||
			strings.HasPrefix(addr, "127.0.0.") ||
			strings.HasPrefix(addr, "fe80:") ||
			addr == "0:0:0:0:0:0:0:1" ||
			addr == "::1"
	}
	ip = ip.Unmap()
	return ip.IsLoopback() || ip.IsLinkLocalUnicast()
}
