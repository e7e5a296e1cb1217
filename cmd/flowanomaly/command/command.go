// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022-present Datadog, Inc.

// Package command implements the flowanomaly root command.
package command

import (
	"github.com/spf13/cobra"

	"github.com/DataDog/flowanomaly/cmd/flowanomaly/common"
	"github.com/DataDog/flowanomaly/cmd/flowanomaly/subcommands/run"
)

// RootCommand returns the root command
func RootCommand() *cobra.Command {
	var globalParams common.GlobalParams
	parent := &cobra.Command{
		Use:          "flowanomaly [command]",
		Short:        "Streaming anomaly detection on netflow records.",
		Long:         `flowanomaly reads netflow records and reports the source addresses behaving as port scanners, exploding or growing their fan-out, or becoming stable.`,
		SilenceUsage: true,
	}

	pflags := parent.PersistentFlags()
	pflags.StringVarP(&globalParams.ConfigFilePath, "config-path", "c", "", "specify the path to the flowanomaly configuration yaml file")
	pflags.StringVar(&globalParams.LogLevel, "log-level", "", "override the configured log level (trace, debug, info, warn, error, critical, off)")

	parent.AddCommand(run.Commands(&globalParams)...)

	return parent
}
