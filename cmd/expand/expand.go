// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package expand

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/fanout"
	"github.com/matt-FFFFFF/fanout/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const (
	templateArg = "template"
	valueFlag   = "value"
	crossFlag   = "cross"
	scopeFlag   = "scope"
	cliExitStr  = ""
)

var (
	// ErrBadSpec is returned for a malformed name=values flag.
	ErrBadSpec = errors.New("invalid parameter, expected name=value[,value...]")
)

// ExpandCmd is the command that expands a template and prints the batch
// without executing anything.
var ExpandCmd = &cli.Command{
	Name: "expand",
	Description: `Expand a command template and print the resulting batch, one command
per line. Nothing is executed.

Lockstep parameters given with --value are zipped position by position,
with single values repeated across the whole batch. Each --cross group
multiplies the combinations, the last group varying fastest. Spans that
match no parameter are evaluated as expressions against the --scope
entries; spans that still fail resolve are left in place and reported.
`,
	Usage: `fanout expand -v file=a.png,b.png -c mode=fast,slow 'convert {file} --mode {mode}'`,
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: templateArg,
		},
	},
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    valueFlag,
			Aliases: []string{"v"},
			Usage:   "Lockstep value list as name=v1,v2. Repeat for more parameters.",
		},
		&cli.StringSliceFlag{
			Name:    crossFlag,
			Aliases: []string{"c"},
			Usage:   "Cross group as name=v1,v2. Repeat for more groups; the last varies fastest.",
		},
		&cli.StringSliceFlag{
			Name:    scopeFlag,
			Aliases: []string{"s"},
			Usage:   "Expression scope entry as name=value.",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	template := cmd.StringArg(templateArg)
	if template == "" {
		logger.Error("please provide a command template to expand")
		return cli.Exit(cliExitStr, 1)
	}

	opts, err := buildOptions(cmd)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	outcome, err := fanout.Expand(template, opts...)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to expand template: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	for _, span := range outcome.Unresolved {
		logger.Warn("unresolved template span", "span", span)
	}

	for _, command := range outcome.Commands {
		fmt.Fprintln(cmd.Writer, command)
	}

	return nil
}

// buildOptions turns the flag values into expansion options.
func buildOptions(cmd *cli.Command) ([]fanout.Option, error) {
	var opts []fanout.Option

	for _, spec := range cmd.StringSlice(valueFlag) {
		name, values, err := parseSpec(spec)
		if err != nil {
			return nil, err
		}

		opts = append(opts, fanout.WithValue(name, values))
	}

	for _, spec := range cmd.StringSlice(crossFlag) {
		name, values, err := parseSpec(spec)
		if err != nil {
			return nil, err
		}

		opts = append(opts, fanout.WithCross(name, values))
	}

	scope := make(map[string]any)

	for _, spec := range cmd.StringSlice(scopeFlag) {
		name, value, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadSpec, spec)
		}

		scope[name] = value
	}

	if len(scope) > 0 {
		opts = append(opts, fanout.WithScope(scope))
	}

	return opts, nil
}

// parseSpec splits name=v1,v2 into the parameter name and its values.
func parseSpec(spec string) (string, []string, error) {
	name, rest, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("%w: %q", ErrBadSpec, spec)
	}

	return name, strings.Split(rest, ","), nil
}
