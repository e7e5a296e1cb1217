// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022-present Datadog, Inc.

// Package common contains the helpers shared by the flowanomaly subcommands.
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cihub/seelog"

	"github.com/DataDog/datadog-agent/pkg/util/log"
)

// LogFormat is the format of the flowanomaly log lines
const LogFormat = "%Date(2006-01-02 15:04:05 MST) | FLOWANOMALY | %LEVEL | %Msg%n"

// GlobalParams contains the values of the root command flags
type GlobalParams struct {
	ConfigFilePath string
	LogLevel       string
}

// NormalizeLogLevel returns the seelog name of a log level
func NormalizeLogLevel(level string) (string, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	if _, found := seelog.LogLevelFromString(level); !found {
		return "", fmt.Errorf("unknown log level: %s", level)
	}
	return level, nil
}

// SetupLogger replaces the global logger by a logger writing to w
func SetupLogger(level string, w io.Writer) error {
	level, err := NormalizeLogLevel(level)
	if err != nil {
		return err
	}
	seelogLevel, _ := seelog.LogLevelFromString(level)
	logger, err := seelog.LoggerFromWriterWithMinLevelAndFormat(w, seelogLevel, LogFormat)
	if err != nil {
		return fmt.Errorf("unable to set up logger: %w", err)
	}
	log.SetupLogger(logger, level)
	return nil
}

// CtxTerminated returns a context cancelled on SIGINT or SIGTERM
func CtxTerminated() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(signalCh)
		select {
		case sig := <-signalCh:
			log.Infof("Received signal %s, stopping", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
