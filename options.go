// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package fanout

import (
	"sort"

	"github.com/matt-FFFFFF/fanout/internal/expand"
	"github.com/matt-FFFFFF/fanout/internal/zipper"
	"github.com/zclconf/go-cty/cty"
)

type runConfig struct {
	lockstep   []zipper.Set
	cross      []zipper.Set
	scope      map[string]cty.Value
	skipped    []string
	dryRun     bool
	verbose    bool
	lines      bool
	strict     bool
	javaMemory string
	runner     BatchRunner
	reporter   Reporter
}

func newRunConfig(opts ...Option) *runConfig {
	cfg := &runConfig{
		strict:   true,
		reporter: NewNullReporter(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Option configures a Run or Expand call.
type Option func(*runConfig)

// WithValue adds a named lockstep value list. Value lists added across
// calls are paired positionally, element i of each forming combination i.
// A single value is broadcast to the shared length. Values that are not
// strings are rendered with their natural string form.
func WithValue(name string, values ...any) Option {
	return func(c *runConfig) {
		c.lockstep = append(c.lockstep, zipper.NewSet(name, values...))
	}
}

// WithValues adds a lockstep value list per map entry. A slice or array
// value is the whole list; anything else is a single value. Names are
// declared in sorted order so the same map always produces the same
// batch.
func WithValues(values map[string]any) Option {
	return func(c *runConfig) {
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			c.lockstep = append(c.lockstep, zipper.NewSet(name, values[name]))
		}
	}
}

// WithCross adds a cross group. Each group multiplies the combinations
// with its values. Declaration order matters: the last-declared group
// varies fastest in the generated batch.
func WithCross(name string, values ...any) Option {
	return func(c *runConfig) {
		c.cross = append(c.cross, zipper.NewSet(name, values...))
	}
}

// WithScope merges the given names into the expression evaluation scope.
// Parameter values shadow scope names inside expressions. Values that
// cannot be represented in the expression language are skipped and
// logged when the call runs.
func WithScope(scope map[string]any) Option {
	return func(c *runConfig) {
		values, skipped := expand.Scope(scope)

		if c.scope == nil {
			c.scope = make(map[string]cty.Value, len(values))
		}

		for name, value := range values {
			c.scope[name] = value
		}

		c.skipped = append(c.skipped, skipped...)
	}
}

// WithDryRun returns the generated commands without executing anything.
func WithDryRun(dryRun bool) Option {
	return func(c *runConfig) {
		c.dryRun = dryRun
	}
}

// WithVerbose asks the runner for per-command diagnostics and surfaces
// the captured standard output on the Outcome.
func WithVerbose(verbose bool) Option {
	return func(c *runConfig) {
		c.verbose = verbose
	}
}

// WithLines additionally splits the captured output into lines. Only
// meaningful together with WithVerbose.
func WithLines(lines bool) Option {
	return func(c *runConfig) {
		c.lines = lines
	}
}

// WithStrict controls whether a non-zero aggregate exit code is an
// error. Strict is the default; disable it for tools whose non-zero
// exit is informational, like a matcher reporting no match.
func WithStrict(strict bool) Option {
	return func(c *runConfig) {
		c.strict = strict
	}
}

// WithJavaMemory caps the heap of JVM child processes for the duration
// of the call, e.g. "4g". The previous environment is restored on every
// exit path.
func WithJavaMemory(size string) Option {
	return func(c *runConfig) {
		c.javaMemory = size
	}
}

// WithRunner substitutes the batch runner. The default locates GNU
// parallel on the PATH.
func WithRunner(runner BatchRunner) Option {
	return func(c *runConfig) {
		c.runner = runner
	}
}

// WithReporter registers a sink for progress events.
func WithReporter(reporter Reporter) Option {
	return func(c *runConfig) {
		if reporter == nil {
			reporter = NewNullReporter()
		}

		c.reporter = reporter
	}
}
