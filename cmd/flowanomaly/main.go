// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022-present Datadog, Inc.

// Package main implements the flowanomaly command
package main

import (
	"os"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/cmd/flowanomaly/command"
)

func main() {
	if err := command.RootCommand().Execute(); err != nil {
		log.Error(err)
		log.Flush()
		os.Exit(-1)
	}
	log.Flush()
}
