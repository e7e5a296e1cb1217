// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022-present Datadog, Inc.

package run

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/fx"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/cmd/flowanomaly/common"
	"github.com/DataDog/flowanomaly/pkg/netflow/config"
	"github.com/DataDog/flowanomaly/pkg/netflow/detector"
	"github.com/DataDog/flowanomaly/pkg/netflow/reader"
	"github.com/DataDog/flowanomaly/pkg/netflow/reporter"
	"github.com/DataDog/flowanomaly/pkg/netflow/telemetry"

	flowcommon "github.com/DataDog/flowanomaly/pkg/netflow/common"
)

const metricsShutdownTimeout = 5 * time.Second

func newConfig(params *cliParams) (*config.Config, error) {
	cfg, err := config.Load(params.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	params.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := common.SetupLogger(cfg.LogLevel, defaultOutput(params.logOutput, os.Stderr)); err != nil {
		return nil, err
	}
	if params.ConfigFilePath != "" {
		log.Infof("Loaded configuration from %s", params.ConfigFilePath)
	}
	return cfg, nil
}

// eventSinks contains the reporters receiving the anomaly transitions
type eventSinks struct {
	reporters reporter.Multi
	events    *reporter.Recorder
}

func newSinks(lc fx.Lifecycle, cfg *config.Config) (*eventSinks, error) {
	sinks := &eventSinks{
		events: reporter.NewRecorder(),
	}
	sinks.reporters = append(sinks.reporters, reporter.NewLogReporter(), sinks.events)

	if cfg.Statsd.Enabled {
		client, err := reporter.NewStatsdClient(cfg.Statsd.Address, cfg.Statsd.Namespace)
		if err != nil {
			return nil, fmt.Errorf("unable to create the statsd client: %w", err)
		}
		sinks.reporters = append(sinks.reporters, reporter.NewStatsdReporter(client))
		log.Infof("Sending anomaly events to DogStatsD at %s", cfg.Statsd.Address)
	}

	if cfg.EventsFile != "" {
		f, err := os.Create(cfg.EventsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to create the events file: %w", err)
		}
		host, err := os.Hostname()
		if err != nil {
			log.Warnf("Unable to get the hostname: %s", err)
		}
		sinks.reporters = append(sinks.reporters, reporter.NewJSONReporter(f, host))
		log.Infof("Writing anomaly events to %s", cfg.EventsFile)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return sinks.reporters.Close()
		},
	})
	return sinks, nil
}

func newComposite(cfg *config.Config, sinks *eventSinks) (*detector.Composite, error) {
	configs, err := cfg.DetectorConfigs()
	if err != nil {
		return nil, err
	}
	composite := detector.NewComposite()
	for _, c := range configs {
		d, err := detector.New(c, sinks.reporters)
		if err != nil {
			return nil, err
		}
		log.Infof("Starting detector %s (type: %s, period: %s)", c.Name, c.Type, c.Period)
		composite.AddDetector(d)
	}
	return composite, nil
}

// flowSource reads the flow files, optionally mixed with a simulated port scan
type flowSource struct {
	reader   *reader.Reader
	injector *reader.ScanInjector
}

// Next implements common.FlowSource
func (s *flowSource) Next(ctx context.Context) (*flowcommon.Flow, error) {
	if s.injector != nil {
		return s.injector.Next(ctx)
	}
	return s.reader.Next(ctx)
}

// Injected returns the number of simulated flows
func (s *flowSource) Injected() int64 {
	if s.injector == nil {
		return 0
	}
	return s.injector.Injected()
}

func newFlowSource(lc fx.Lifecycle, cfg *config.Config) (*flowSource, error) {
	r, err := reader.New(cfg.ReaderConfig())
	if err != nil {
		return nil, err
	}
	src := &flowSource{reader: r}
	if cfg.Injection.Enabled {
		src.injector = reader.NewScanInjector(r, cfg.Injection.Scanner, cfg.Injection.Frequency, nil)
		log.Infof("Injecting a port scan from %s (frequency: %f)", cfg.Injection.Scanner, cfg.Injection.Frequency)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return r.Close()
		},
	})
	return src, nil
}

func newMetricsRouter(src *flowSource, composite *detector.Composite) (*mux.Router, error) {
	handler, err := telemetry.Handler(telemetry.NewCollector(src.reader.Stats, composite.Drivers()...))
	if err != nil {
		return nil, err
	}
	r := mux.NewRouter()
	r.Handle("/metrics", handler).Methods(http.MethodGet)
	return r, nil
}

func startMetricsServer(lc fx.Lifecycle, cfg *config.Config, src *flowSource, composite *detector.Composite) error {
	if cfg.Metrics.ListenAddress == "" {
		return nil
	}
	router, err := newMetricsRouter(src, composite)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			listener, err := net.Listen("tcp", cfg.Metrics.ListenAddress)
			if err != nil {
				return fmt.Errorf("unable to listen on %s: %w", cfg.Metrics.ListenAddress, err)
			}
			log.Infof("Serving metrics on http://%s/metrics", listener.Addr())
			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("Metrics server stopped: %s", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, metricsShutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		},
	})
	return nil
}
