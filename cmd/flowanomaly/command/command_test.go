// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022-present Datadog, Inc.

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := RootCommand()

	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "run", run.Name())

	for _, flag := range []string{"config-path", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
	for _, flag := range []string{"data-dir", "workers", "max-count", "rebase", "inject-scan", "metrics-addr", "events-file"} {
		assert.NotNil(t, run.Flags().Lookup(flag), flag)
	}
}
