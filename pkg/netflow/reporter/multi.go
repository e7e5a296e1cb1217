// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package reporter

import (
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
)

// Multi forwards every transition to each of its reporters, in order.
type Multi []detector.Reporter

// Report implements detector.Reporter
func (m Multi) Report(event detector.Event) {
	for _, r := range m {
		r.Report(event)
	}
}

// Close closes every reporter implementing io.Closer and returns all the errors.
func (m Multi) Close() error {
	var errs *multierror.Error
	for _, r := range m {
		if closer, ok := r.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}
	return errs.ErrorOrNil()
}
