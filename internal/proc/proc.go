// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package proc starts operating-system processes with captured output.
// Output drains concurrently through bounded capture readers so large
// streams cannot stall the child on a full pipe, and a watchdog kills the
// child when the context is cancelled.
package proc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/matt-FFFFFF/fanout/internal/ctxlog"
	"github.com/matt-FFFFFF/fanout/internal/teereader"
)

// MaxCaptureSize bounds each captured stream.
const MaxCaptureSize = 8 * 1024 * 1024 // 8MB

var (
	// ErrFailedToCreatePipe is returned when an operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrKilled is returned when the watchdog terminated the process after
	// context cancellation.
	ErrKilled = errors.New("process killed by cancellation")
)

// Spec describes one process to start.
type Spec struct {
	Path string   // Full path to the executable.
	Args []string // Arguments, excluding the executable name itself.
	Env  []string // Environment; nil inherits the parent environment.
	Dir  string   // Working directory; empty means inherit.
}

// Output is the collected result of a finished process.
type Output struct {
	ExitCode        int
	Stdout          []byte
	Stderr          []byte
	StdoutTruncated bool
	StderrTruncated bool
	Killed          bool
}

// Process is a started child with draining underway. Wait must be called
// exactly once to release its resources.
type Process struct {
	ps     *os.Process
	stdout *teereader.CaptureReader
	stderr *teereader.CaptureReader
	drains sync.WaitGroup
	done   chan struct{}
	killed chan error
	ctx    context.Context
}

// Start launches the process described by spec. The child's stdout and
// stderr drain into bounded buffers from the moment it starts.
func Start(ctx context.Context, spec Spec) (*Process, error) {
	logger := ctxlog.Logger(ctx)
	logger.Debug("starting process", "path", spec.Path, "args", spec.Args, "dir", spec.Dir)

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	env := spec.Env
	if env == nil {
		env = os.Environ()
	}

	argv := slices.Concat([]string{filepath.Base(spec.Path)}, spec.Args)

	ps, err := os.StartProcess(spec.Path, argv, &os.ProcAttr{
		Dir:   spec.Dir,
		Env:   env,
		Files: []*os.File{os.Stdin, wOut, wErr},
	})
	if err != nil {
		closeAll(rOut, wOut, rErr, wErr)
		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	logger.Debug("process started", "pid", ps.Pid)

	// The child owns its copies of the write ends. Closing ours now means
	// the drain goroutines see EOF the moment the child exits.
	closeAll(wOut, wErr)

	p := &Process{
		ps:     ps,
		stdout: teereader.New(rOut, MaxCaptureSize),
		stderr: teereader.New(rErr, MaxCaptureSize),
		done:   make(chan struct{}),
		killed: make(chan error, 1),
		ctx:    ctx,
	}

	p.drains.Add(2)

	go func() {
		defer p.drains.Done()
		defer rOut.Close() //nolint:errcheck

		_ = p.stdout.Drain()
	}()

	go func() {
		defer p.drains.Done()
		defer rErr.Close() //nolint:errcheck

		_ = p.stderr.Drain()
	}()

	// Watchdog: kill the child if the context is cancelled before exit.
	go func() {
		select {
		case <-ctx.Done():
			logger.Debug("context done, killing process", "pid", ps.Pid)
			kill(ctx, ps)
			p.killed <- ErrKilled
		case <-p.done:
		}
	}()

	return p, nil
}

// Wait blocks until the process exits and the output streams are fully
// drained. When the watchdog killed the child, the returned output has
// Killed set, the exit code is -1, and the error wraps ErrKilled.
func (p *Process) Wait() (*Output, error) {
	logger := ctxlog.Logger(p.ctx)
	logger.Debug("waiting for process to finish", "pid", p.ps.Pid)

	state, waitErr := p.ps.Wait()

	close(p.done)
	p.drains.Wait()

	out := &Output{
		Stdout:          p.stdout.Bytes(),
		Stderr:          p.stderr.Bytes(),
		StdoutTruncated: p.stdout.Truncated(),
		StderrTruncated: p.stderr.Truncated(),
	}

	if out.StdoutTruncated || out.StderrTruncated {
		logger.Warn("process output truncated",
			"pid", p.ps.Pid, "maxBytes", MaxCaptureSize)
	}

	if state != nil {
		out.ExitCode = state.ExitCode()
	}

	var err error
	if waitErr != nil {
		err = fmt.Errorf("waiting for process: %w", waitErr)

		if state == nil {
			out.ExitCode = -1
		}
	}

	select {
	case killErr := <-p.killed:
		out.Killed = true
		out.ExitCode = -1
		err = errors.Join(err, killErr, p.ctx.Err())
	default:
	}

	logger.Debug("process finished", "pid", p.ps.Pid, "exitCode", out.ExitCode, "killed", out.Killed)

	return out, err
}

// LastOutputLine returns the most recent complete stdout line, shortened
// to maxLen when positive. Safe to call while the process runs.
func (p *Process) LastOutputLine(maxLen int) string {
	return p.stdout.LastLine(maxLen)
}

// Run starts the process and waits for completion.
func Run(ctx context.Context, spec Spec) (*Output, error) {
	p, err := Start(ctx, spec)
	if err != nil {
		return nil, err
	}

	return p.Wait()
}

func kill(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Logger(ctx).Debug("process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Logger(ctx).Error("process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Logger(ctx).Info("process killed", "pid", ps.Pid)
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
