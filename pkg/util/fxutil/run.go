// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package fxutil runs the fx applications of the flowanomaly commands.
package fxutil

import (
	"context"
	"errors"
	"time"

	"go.uber.org/dig"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/DataDog/datadog-agent/pkg/util/log"
)

const appTimeout = 5 * time.Minute

// OneShot runs the given function in an fx.App using the supplied options.
// The function's arguments are supplied by fx and the app is stopped, running
// the OnStop hooks, once the function returns.
//
// The function must return an error or nothing.
func OneShot(oneShotFunc interface{}, opts ...fx.Option) error {
	if oneShotOverride != nil {
		return oneShotOverride(oneShotFunc, opts)
	}

	delayedCall := newDelayedFxInvocation(oneShotFunc)
	opts = append(opts, delayedCall.option(), FxAgentBase())
	app := fx.New(
		append([]fx.Option{TemporaryAppTimeouts()}, opts...)...,
	)

	if err := app.Err(); err != nil {
		return UnwrapIfErrArgumentsFailed(err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()

	if err := app.Start(startCtx); err != nil {
		return errors.Join(UnwrapIfErrArgumentsFailed(err), stopApp(app))
	}

	// call the original oneShotFunc with the args captured during app startup
	err := delayedCall.call()

	return errors.Join(err, stopApp(app))
}

// Run runs an fx.App using the supplied options until it is shut down,
// returning any errors.
//
// This differs from fx.App#Run in that it returns errors instead of exiting
// the process.
func Run(opts ...fx.Option) error {
	if oneShotOverride != nil {
		return oneShotOverride(func() {}, opts)
	}

	opts = append(opts, FxAgentBase())
	app := fx.New(
		append([]fx.Option{TemporaryAppTimeouts()}, opts...)...,
	)

	if err := app.Err(); err != nil {
		return UnwrapIfErrArgumentsFailed(err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()

	if err := app.Start(startCtx); err != nil {
		return errors.Join(UnwrapIfErrArgumentsFailed(err), stopApp(app))
	}

	<-app.Done()

	return stopApp(app)
}

// FxAgentBase returns the options shared by every app
func FxAgentBase() fx.Option {
	return fx.WithLogger(func() fxevent.Logger {
		return &fxevent.ConsoleLogger{W: debugWriter{}}
	})
}

// TemporaryAppTimeouts sets the start and stop timeouts of the app
func TemporaryAppTimeouts() fx.Option {
	return fx.Options(
		fx.StartTimeout(appTimeout),
		fx.StopTimeout(appTimeout),
	)
}

// UnwrapIfErrArgumentsFailed returns the root cause of a dependency
// injection error, which names the failing constructor.
func UnwrapIfErrArgumentsFailed(err error) error {
	if err == nil {
		return nil
	}
	return dig.RootCause(err)
}

func stopApp(app *fx.App) error {
	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return app.Stop(stopCtx)
}

// debugWriter sends the fx events to the debug logs
type debugWriter struct{}

func (debugWriter) Write(p []byte) (int, error) {
	log.Debugf("fx: %s", p)
	return len(p), nil
}
