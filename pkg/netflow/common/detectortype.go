// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package common

import (
	"fmt"
	"time"
)

// DetectorType represent the anomaly detection policy (portscan, explosion, growth, stabilization)
type DetectorType string

// Detector Types
const (
	TypePortScan          DetectorType = "portscan"
	TypeExplosion         DetectorType = "explosion"
	TypeGrowth            DetectorType = "growth"
	TypeHostStabilization DetectorType = "stabilization"
	TypeUnknown           DetectorType = "unknown"
)

// DetectorTypeDetails contain list of valid DetectorTypeDetail
var DetectorTypeDetails = []DetectorTypeDetail{
	{
		name:          TypePortScan,
		defaultPeriod: 10 * time.Minute,
		description:   "IP port scanning",
	},
	{
		name:          TypeExplosion,
		defaultPeriod: 24 * time.Hour,
		description:   "explosion scanning",
	},
	{
		name:          TypeGrowth,
		defaultPeriod: time.Hour,
		description:   "growth scanning",
	},
	{
		name:          TypeHostStabilization,
		defaultPeriod: 24 * time.Hour,
		description:   "host stabilization",
	},
}

// DetectorTypeDetail represent the detection policy and its defaults
type DetectorTypeDetail struct {
	name          DetectorType
	defaultPeriod time.Duration
	description   string
}

// Name returns the detector type name
func (d DetectorTypeDetail) Name() DetectorType {
	return d.name
}

// DefaultPeriod returns the default time between two periodic checks
func (d DetectorTypeDetail) DefaultPeriod() time.Duration {
	return d.defaultPeriod
}

// Description returns the human readable name of the anomaly class
func (d DetectorTypeDetail) Description() string {
	return d.description
}

// GetDetectorTypeByName search DetectorTypeDetail by name
func GetDetectorTypeByName(name DetectorType) (DetectorTypeDetail, error) {
	for _, detectorType := range DetectorTypeDetails {
		if detectorType.name == name {
			return detectorType, nil
		}
	}
	return DetectorTypeDetail{}, fmt.Errorf("detector type `%s` is not valid (valid types: %v)", name, GetAllDetectorTypes())
}

// GetAllDetectorTypes returns all detector names
func GetAllDetectorTypes() []DetectorType {
	var detectorTypes []DetectorType
	for _, detectorType := range DetectorTypeDetails {
		detectorTypes = append(detectorTypes, detectorType.name)
	}
	return detectorTypes
}
