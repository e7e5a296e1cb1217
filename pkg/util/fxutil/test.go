// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package fxutil

import (
	"reflect"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// TestOneShotSubcommand runs a command line and checks that it calls
// OneShot with the expected function. verifyFn is invoked with the
// components the command wires, instead of the one shot function.
func TestOneShotSubcommand(
	t testing.TB,
	subcommands []*cobra.Command,
	commandline []string,
	expectedOneShotFunc interface{},
	verifyFn interface{},
) {
	var oneShotRan bool
	oneShotOverride = func(oneShotFunc interface{}, opts []fx.Option) error {
		oneShotRan = true
		require.Equal(t,
			funcName(expectedOneShotFunc), funcName(oneShotFunc),
			"got a different oneShotFunc than expected")
		app := fxtest.New(t, append(opts, fx.Invoke(verifyFn))...)
		defer app.RequireStart().RequireStop()
		return nil
	}
	defer func() { oneShotOverride = nil }()

	cmd := &cobra.Command{Use: "test"}
	for _, c := range subcommands {
		cmd.AddCommand(c)
	}
	cmd.SetArgs(commandline)

	require.NoError(t, cmd.Execute())
	require.True(t, oneShotRan, "fxutil.OneShot wasn't called")
}

func funcName(fn interface{}) string {
	return runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
}
