// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022-present Datadog, Inc.

// Package run implements the `run` subcommand, which reads the flow files and
// reports the anomalies.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/cmd/flowanomaly/common"
	"github.com/DataDog/flowanomaly/pkg/netflow/config"
	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
	"github.com/DataDog/flowanomaly/pkg/netflow/status"
	"github.com/DataDog/flowanomaly/pkg/util/fxutil"
)

type cliParams struct {
	*common.GlobalParams

	dataDir        string
	workers        int
	maxCount       int64
	rebase         bool
	injectScan     bool
	strictOrdering bool
	metricsAddr    string
	eventsFile     string
	jsonSummary    bool

	// changed reports whether a flag was set on the command line
	changed func(name string) bool
	// out receives the summary
	out io.Writer
	// logOutput receives the logs
	logOutput io.Writer
}

// Commands returns the `run` command
func Commands(globalParams *common.GlobalParams) []*cobra.Command {
	params := &cliParams{
		GlobalParams: globalParams,
	}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Read the flow files and report the anomalous source addresses",
		Long:  `Reads every flow file of the data directory in order, feeds the flows to the configured detectors and prints a summary once the files are exhausted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params.changed = cmd.Flags().Changed
			params.out = cmd.OutOrStdout()
			params.logOutput = cmd.ErrOrStderr()
			return fxutil.OneShot(runCmd,
				fx.Supply(params),
				fx.Provide(newConfig),
				fx.Provide(newSinks),
				fx.Provide(newComposite),
				fx.Provide(newFlowSource),
				fx.Invoke(startMetricsServer),
			)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&params.dataDir, "data-dir", "d", "", "directory containing the flow files (overrides reader.data_dir)")
	flags.IntVarP(&params.workers, "workers", "w", 0, "number of flow files decoded concurrently (overrides reader.workers)")
	flags.Int64VarP(&params.maxCount, "max-count", "n", 0, "stop after that many flows, 0 means no limit (overrides reader.max_count)")
	flags.BoolVar(&params.rebase, "rebase", false, "shift the timestamps so that the first flow happens now (overrides reader.rebase_timestamps)")
	flags.BoolVar(&params.injectScan, "inject-scan", false, "inject a simulated port scan in the flows (overrides injection.enabled)")
	flags.BoolVar(&params.strictOrdering, "strict-ordering", false, "fail on flows older than the previous ones (overrides strict_ordering)")
	flags.StringVar(&params.metricsAddr, "metrics-addr", "", "serve prometheus metrics on that address (overrides metrics.listen_address)")
	flags.StringVar(&params.eventsFile, "events-file", "", "write the anomaly events as JSON lines to that file (overrides events_file)")
	flags.BoolVar(&params.jsonSummary, "json", false, "print the summary as JSON")

	return []*cobra.Command{cmd}
}

// apply overrides the configuration with the flags set on the command line
func (p *cliParams) apply(cfg *config.Config) {
	if p.LogLevel != "" {
		cfg.LogLevel = p.LogLevel
	}
	if p.changed == nil {
		return
	}
	if p.changed("data-dir") {
		cfg.Reader.DataDir = p.dataDir
	}
	if p.changed("workers") {
		cfg.Reader.Workers = p.workers
	}
	if p.changed("max-count") {
		cfg.Reader.MaxCount = p.maxCount
	}
	if p.changed("rebase") {
		cfg.Reader.RebaseTimestamps = p.rebase
	}
	if p.changed("inject-scan") {
		cfg.Injection.Enabled = p.injectScan
	}
	if p.changed("strict-ordering") {
		cfg.StrictOrdering = p.strictOrdering
	}
	if p.changed("metrics-addr") {
		cfg.Metrics.ListenAddress = p.metricsAddr
	}
	if p.changed("events-file") {
		cfg.EventsFile = p.eventsFile
	}
}

func runCmd(params *cliParams, cfg *config.Config, src *flowSource, composite *detector.Composite, sinks *eventSinks) error {
	ctx, cancel := common.CtxTerminated()
	defer cancel()

	var opts []detector.RunOption
	if cfg.StrictOrdering {
		opts = append(opts, detector.WithStrictOrdering())
	}

	log.Infof("Running %d detectors on %d flow files", len(composite.Drivers()), len(src.reader.Files()))
	runErr := composite.Run(ctx, src, opts...)

	summary := status.Summary(src.reader.Stats(), src.Injected(), sinks.events.Len(), composite.Drivers()...)
	out := defaultOutput(params.out, os.Stdout)
	var err error
	if params.jsonSummary {
		err = status.JSON(out, summary)
	} else {
		err = status.Text(out, summary)
	}
	if err != nil {
		log.Warnf("Unable to print the summary: %s", err)
	}

	switch {
	case runErr == nil:
		log.Info("All flow files processed")
		return nil
	case errors.Is(runErr, context.Canceled):
		log.Info("Run interrupted")
		return nil
	case errors.Is(runErr, detector.ErrEmptyStream):
		return fmt.Errorf("no routable flow found in %s: %w", cfg.Reader.DataDir, runErr)
	default:
		return runErr
	}
}

func defaultOutput(w io.Writer, fallback *os.File) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
