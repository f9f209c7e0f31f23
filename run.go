// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package fanout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matt-FFFFFF/fanout/internal/ctxlog"
	"github.com/matt-FFFFFF/fanout/internal/envguard"
	"github.com/matt-FFFFFF/fanout/internal/expand"
	"github.com/matt-FFFFFF/fanout/internal/normalize"
	"github.com/matt-FFFFFF/fanout/internal/zipper"
)

// javaOptionsEnv is the variable the JVM reads for default options.
const javaOptionsEnv = "_JAVA_OPTIONS"

// ErrBatchFailed is returned by a strict Run when the runner reports a
// non-zero aggregate exit code.
var ErrBatchFailed = errors.New("batch failed")

// Structural errors from combination generation, surfaced here so
// callers can match them with errors.Is.
var (
	// ErrCardinality is returned when lockstep value lists have
	// incompatible lengths.
	ErrCardinality = zipper.ErrCardinality
	// ErrShape is returned when the parameter specification is malformed,
	// for example a name used in both lockstep and cross positions.
	ErrShape = zipper.ErrShape
)

// Expand generates the normalized command batch without executing
// anything. It is the pure half of Run: the same commands, unresolved
// span diagnostics, and structural errors, with no runner involved.
func Expand(template string, opts ...Option) (*Outcome, error) {
	return expandBatch(newRunConfig(opts...), template)
}

func expandBatch(cfg *runConfig, template string) (*Outcome, error) {
	mappings, err := zipper.Generate(cfg.lockstep, cfg.cross)
	if err != nil {
		return nil, fmt.Errorf("generating parameter combinations: %w", err)
	}

	exp := expand.New()
	outcome := &Outcome{
		Commands: make([]string, 0, len(mappings)),
	}
	seen := make(map[string]struct{})

	for _, mapping := range mappings {
		text, missing := exp.Expand(template, mapping, cfg.scope)

		for _, span := range missing {
			if _, ok := seen[span]; ok {
				continue
			}

			seen[span] = struct{}{}
			outcome.Unresolved = append(outcome.Unresolved, span)
		}

		command, ok := normalize.Join(text)
		if !ok {
			continue
		}

		outcome.Commands = append(outcome.Commands, command)
	}

	return outcome, nil
}

// Run expands the template against every parameter combination and
// submits the resulting batch to the runner in one blocking call.
//
// Structural problems with the parameter sets fail immediately. With
// WithDryRun the commands are returned unexecuted. A strict Run returns
// ErrBatchFailed alongside the Outcome when the aggregate exit code is
// non-zero; the Outcome keeps the exit code and captured stderr for
// diagnostics but withholds the output.
func Run(ctx context.Context, template string, opts ...Option) (*Outcome, error) {
	cfg := newRunConfig(opts...)
	logger := ctxlog.Logger(ctx)

	if len(cfg.skipped) > 0 {
		logger.Warn("scope values not representable in expressions", "names", cfg.skipped)
	}

	outcome, err := expandBatch(cfg, template)
	if err != nil {
		return nil, err
	}

	if len(outcome.Unresolved) > 0 {
		logger.Warn("template spans left unresolved", "spans", outcome.Unresolved)
	}

	cfg.reporter.Report(Event{
		Type:      EventExpanded,
		Message:   "command batch generated",
		Timestamp: time.Now(),
		Commands:  len(outcome.Commands),
	})

	if cfg.dryRun {
		logger.Info("dry run", "commands", len(outcome.Commands))
		cfg.reporter.Report(Event{
			Type:      EventCompleted,
			Message:   "dry run",
			Timestamp: time.Now(),
			Commands:  len(outcome.Commands),
		})

		return outcome, nil
	}

	if len(outcome.Commands) == 0 {
		logger.Info("no commands to run")
		cfg.reporter.Report(Event{
			Type:      EventCompleted,
			Message:   "no commands to run",
			Timestamp: time.Now(),
		})

		return outcome, nil
	}

	if cfg.javaMemory != "" {
		guard, gerr := envguard.Set(javaOptionsEnv, "-Xmx"+cfg.javaMemory)
		if gerr != nil {
			return nil, fmt.Errorf("setting %s: %w", javaOptionsEnv, gerr)
		}

		logger.Debug("environment override applied", "key", javaOptionsEnv, "value", "-Xmx"+cfg.javaMemory)

		defer func() {
			if rerr := guard.Restore(); rerr != nil {
				logger.Error("restoring environment", "key", javaOptionsEnv, "error", rerr)
			}
		}()
	}

	runner := cfg.runner
	if runner == nil {
		pr, rerr := NewParallelRunner()
		if rerr != nil {
			cfg.reporter.Report(Event{Type: EventFailed, Timestamp: time.Now(), Err: rerr})

			return nil, rerr
		}

		pr.reporter = cfg.reporter
		runner = pr
	}

	logger.Info("running batch",
		"commands", len(outcome.Commands), "verbose", cfg.verbose, "strict", cfg.strict)
	cfg.reporter.Report(Event{
		Type:      EventStarted,
		Message:   "batch started",
		Timestamp: time.Now(),
		Commands:  len(outcome.Commands),
	})

	result, err := runner.RunBatch(ctx, outcome.Commands, cfg.verbose)
	if err != nil {
		cfg.reporter.Report(Event{Type: EventFailed, Timestamp: time.Now(), Err: err})

		return nil, fmt.Errorf("running batch: %w", err)
	}

	outcome.Executed = true
	outcome.ExitCode = result.ExitCode
	outcome.Stderr = result.Stderr

	if result.Truncated {
		logger.Warn("runner output truncated")
	}

	if result.ExitCode != 0 && cfg.strict {
		err := fmt.Errorf("%w: exit code %d", ErrBatchFailed, result.ExitCode)

		logger.Error("batch failed", "exitCode", result.ExitCode, "stderrBytes", len(result.Stderr))
		cfg.reporter.Report(Event{
			Type:      EventFailed,
			Timestamp: time.Now(),
			ExitCode:  result.ExitCode,
			Err:       err,
		})

		return outcome, err
	}

	if cfg.verbose {
		outcome.Output = result.Stdout

		if cfg.lines {
			outcome.Lines = splitLines(result.Stdout)
		}

		if result.Stderr != "" {
			logger.Warn("runner reported diagnostics", "stderr", result.Stderr)
		}
	}

	cfg.reporter.Report(Event{
		Type:      EventCompleted,
		Message:   "batch completed",
		Timestamp: time.Now(),
		Commands:  len(outcome.Commands),
		ExitCode:  result.ExitCode,
	})

	return outcome, nil
}

// Quick runs the template and returns the captured output as lines. It
// is the one-liner entry point: verbose line output, no lockstep or
// cross parameters, every placeholder resolved from scope. Extra
// options are applied after the presets and may override them.
func Quick(ctx context.Context, template string, scope map[string]any, opts ...Option) ([]string, error) {
	merged := append([]Option{
		WithVerbose(true),
		WithLines(true),
		WithScope(scope),
	}, opts...)

	outcome, err := Run(ctx, template, merged...)
	if err != nil {
		return nil, err
	}

	return outcome.Lines, nil
}

func splitLines(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, "\n")
}
