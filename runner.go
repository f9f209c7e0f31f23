// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package fanout

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/matt-FFFFFF/fanout/internal/proc"
)

// RunnerName is the executable the default runner looks up on PATH.
const RunnerName = "parallel"

// batchSeparator introduces the command arguments in a GNU parallel
// invocation.
const batchSeparator = ":::"

// ErrRunnerNotFound is returned when the batch runner executable cannot
// be found on the PATH.
var ErrRunnerNotFound = errors.New("batch runner executable not found")

// BatchResult is the aggregate result of one batch execution.
type BatchResult struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Truncated bool // a captured stream hit the capture limit
}

// BatchRunner executes a batch of shell commands in one blocking call.
// Implementations own all concurrency between the commands.
type BatchRunner interface {
	// RunBatch submits the whole batch and waits for its combined
	// completion. A non-zero aggregate exit code is reported through
	// BatchResult, not as an error; errors mean the runner could not be
	// started, was killed, or could not be waited on.
	RunBatch(ctx context.Context, commands []string, verbose bool) (*BatchResult, error)
}

const (
	// outputPollInterval is how often the runner samples the last
	// output line for progress events.
	outputPollInterval = 200 * time.Millisecond
	// lastLineMax bounds the length of reported output lines.
	lastLineMax = 120
)

// ParallelRunner runs batches with GNU parallel.
type ParallelRunner struct {
	path     string
	reporter Reporter // optional; receives EventOutput while the batch runs
}

var _ BatchRunner = (*ParallelRunner)(nil)

// NewParallelRunner locates the parallel executable on the PATH.
func NewParallelRunner() (*ParallelRunner, error) {
	path, err := exec.LookPath(RunnerName)
	if err != nil {
		return nil, errors.Join(ErrRunnerNotFound, err)
	}

	return &ParallelRunner{path: path}, nil
}

// NewParallelRunnerAt uses the executable at the given path without
// consulting the PATH.
func NewParallelRunnerAt(path string) *ParallelRunner {
	return &ParallelRunner{path: path}
}

// Path returns the runner executable path.
func (r *ParallelRunner) Path() string {
	return r.path
}

func (r *ParallelRunner) argv(commands []string, verbose bool) []string {
	args := make([]string, 0, len(commands)+2)

	if verbose {
		args = append(args, "--verbose")
	}

	args = append(args, batchSeparator)

	return append(args, commands...)
}

// RunBatch implements BatchRunner.
func (r *ParallelRunner) RunBatch(ctx context.Context, commands []string, verbose bool) (*BatchResult, error) {
	p, err := proc.Start(ctx, proc.Spec{
		Path: r.path,
		Args: r.argv(commands, verbose),
	})
	if err != nil {
		return nil, err
	}

	stop := make(chan struct{})
	watched := make(chan struct{})

	if r.reporter != nil {
		go r.watchOutput(p, stop, watched)
	} else {
		close(watched)
	}

	out, err := p.Wait()

	close(stop)
	<-watched

	if err != nil {
		return nil, err
	}

	return &BatchResult{
		ExitCode:  out.ExitCode,
		Stdout:    string(out.Stdout),
		Stderr:    string(out.Stderr),
		Truncated: out.StdoutTruncated || out.StderrTruncated,
	}, nil
}

// watchOutput periodically reports the most recent output line so that
// interactive displays can show liveness during a long batch.
func (r *ParallelRunner) watchOutput(p *proc.Process, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(outputPollInterval)
	defer ticker.Stop()

	var last string

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			line := p.LastOutputLine(lastLineMax)
			if line == "" || line == last {
				continue
			}

			last = line
			r.reporter.Report(Event{
				Type:       EventOutput,
				Timestamp:  time.Now(),
				OutputLine: line,
			})
		}
	}
}
