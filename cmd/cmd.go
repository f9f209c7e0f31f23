// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/matt-FFFFFF/fanout/cmd/console"
	"github.com/matt-FFFFFF/fanout/cmd/expand"
	"github.com/matt-FFFFFF/fanout/cmd/run"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		expand.ExpandCmd,
		console.ConsoleCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "fanout",
	Description: `Fanout expands a command template against named value lists and runs
the resulting batch in parallel. Lockstep lists are zipped position by
position, cross groups multiply the combinations, and {expression}
spans are evaluated against a caller-defined scope. The whole batch is
handed to GNU parallel in a single call.`,
	Usage:     "fanout run -f mybatch.fanout.yaml",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}
