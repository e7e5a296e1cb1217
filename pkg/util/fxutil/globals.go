// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package fxutil

import "go.uber.org/fx"

// oneShotOverride replaces OneShot while TestOneShotSubcommand runs, so that a
// command builds its components without running. nil outside of tests.
var oneShotOverride func(oneShotFunc interface{}, opts []fx.Option) error
