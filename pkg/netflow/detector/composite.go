// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package detector

import (
	"context"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

// Composite feeds the same flow stream to several independent drivers.
type Composite struct {
	drivers []*Driver
}

// NewComposite returns a Composite driving drivers in order.
func NewComposite(drivers ...*Driver) *Composite {
	return &Composite{drivers: drivers}
}

// AddDetector appends a driver
func (c *Composite) AddDetector(d *Driver) {
	c.drivers = append(c.drivers, d)
}

// Drivers returns the composed drivers
func (c *Composite) Drivers() []*Driver {
	return c.drivers
}

// Observe forwards flow to every driver.
func (c *Composite) Observe(flow *common.Flow) {
	for _, d := range c.drivers {
		d.Observe(flow)
	}
}

// Start initializes the check clock of every driver.
func (c *Composite) Start(timestamp float64) {
	for _, d := range c.drivers {
		d.Start(timestamp)
	}
}

// Advance advances every driver to timestamp and returns whether any of them ran a check.
func (c *Composite) Advance(timestamp float64) bool {
	checked := false
	for _, d := range c.drivers {
		if d.Advance(timestamp) {
			checked = true
		}
	}
	return checked
}

// Run feeds every flow of src to the composed drivers.
func (c *Composite) Run(ctx context.Context, src common.FlowSource, opts ...RunOption) error {
	return Run(ctx, src, c, opts...)
}
