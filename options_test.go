// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package fanout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestRunConfigDefaults(t *testing.T) {
	cfg := newRunConfig()

	assert.True(t, cfg.strict, "strict is the default policy")
	assert.False(t, cfg.verbose)
	assert.False(t, cfg.lines)
	assert.False(t, cfg.dryRun)
	assert.Empty(t, cfg.javaMemory)
	assert.Nil(t, cfg.runner)
	assert.IsType(t, &NullReporter{}, cfg.reporter)
}

func TestWithScopeMerges(t *testing.T) {
	cfg := newRunConfig(
		WithScope(map[string]any{"a": 1, "b": "x"}),
		WithScope(map[string]any{"b": "y", "c": true}),
	)

	require.Len(t, cfg.scope, 3)
	assert.Equal(t, cty.StringVal("y"), cfg.scope["b"], "later scopes must win on collision")
	assert.Equal(t, cty.True, cfg.scope["c"])
}

func TestWithScopeSkipsUnrepresentable(t *testing.T) {
	cfg := newRunConfig(
		WithScope(map[string]any{
			"ok":   "fine",
			"noCh": make(chan int),
		}),
	)

	assert.Contains(t, cfg.scope, "ok")
	assert.NotContains(t, cfg.scope, "noCh")
	assert.Equal(t, []string{"noCh"}, cfg.skipped)
}

func TestWithReporterNil(t *testing.T) {
	cfg := newRunConfig(WithReporter(nil))

	require.NotNil(t, cfg.reporter, "a nil reporter must fall back to the null reporter")
}

func TestWithValuesSortedAndFlattened(t *testing.T) {
	cfg := newRunConfig(
		WithValues(map[string]any{
			"sample": []string{"s1", "s2"},
			"ref":    "hg38",
		}),
	)

	require.Len(t, cfg.lockstep, 2)
	assert.Equal(t, "ref", cfg.lockstep[0].Name, "names must be declared in sorted order")
	assert.Equal(t, []string{"hg38"}, cfg.lockstep[0].Values)
	assert.Equal(t, "sample", cfg.lockstep[1].Name)
	assert.Equal(t, []string{"s1", "s2"}, cfg.lockstep[1].Values)
}

func TestWithValueOrderPreserved(t *testing.T) {
	cfg := newRunConfig(
		WithCross("first", 1),
		WithCross("second", 2),
		WithCross("third", 3),
	)

	require.Len(t, cfg.cross, 3)
	assert.Equal(t, "first", cfg.cross[0].Name)
	assert.Equal(t, "second", cfg.cross[1].Name)
	assert.Equal(t, "third", cfg.cross[2].Name)
}
