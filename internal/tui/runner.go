// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/fanout"
)

// eventBuffer sizes the reporter channel. Events are dropped rather than
// block the batch when the display falls behind.
const eventBuffer = 64

// RunFunc executes the batch, reporting progress to the given reporter.
type RunFunc func(ctx context.Context, reporter fanout.Reporter) (*fanout.Outcome, error)

// Run executes fn under the TUI. The display quits when the event stream
// ends; pressing 'q' cancels the context passed to fn, so the batch is
// torn down before Run returns. fn's outcome and error are returned
// as-is, with a TUI failure taking their place only when fn succeeded.
func Run(ctx context.Context, name string, fn RunFunc) (*fanout.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reporter := fanout.NewChannelReporter(ctx, eventBuffer)
	model := NewModel(name, reporter.Events(), cancel)
	program := tea.NewProgram(model, tea.WithAltScreen())

	type runResult struct {
		outcome *fanout.Outcome
		err     error
	}

	resultCh := make(chan runResult, 1)

	go func() {
		outcome, err := fn(ctx, reporter)

		// Closing the reporter ends the event stream, which quits the TUI.
		reporter.Close()
		resultCh <- runResult{outcome: outcome, err: err}
	}()

	_, tuiErr := program.Run()
	if tuiErr != nil {
		// The display is gone, tear the batch down.
		cancel()
	}

	res := <-resultCh

	if res.err != nil {
		return res.outcome, res.err
	}

	return res.outcome, tuiErr
}
