// Package console provides an interactive prompt for composing a batch:
// set a template and value lists, preview the expansion, evaluate
// expressions against the scope, and run the result.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matt-FFFFFF/fanout"
	"github.com/matt-FFFFFF/fanout/internal/expand"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v3"
)

const prompt = "fanout> "

// ErrBadSpec is returned for a malformed name=values entry.
var ErrBadSpec = errors.New("invalid parameter, expected name=value[,value...]")

var consoleCommands = []string{
	"template", "value", "cross", "scope", "show", "expand", "run", "clear", "help", "quit", "exit",
}

// ConsoleCmd is the command that starts the interactive console.
var ConsoleCmd = &cli.Command{
	Name: "console",
	Description: `Start an interactive console for composing and previewing a batch.
Set a template with 'template', add value lists with 'value' and
'cross', then 'expand' to preview or 'run' to execute. Any other input
is evaluated as an expression against the scope.`,
	Action: func(ctx context.Context, cmd *cli.Command) error {
		runConsole(ctx, cmd.Writer)
		return nil
	},
}

// session holds the batch being composed.
type session struct {
	template string
	lockstep []paramSpec
	cross    []paramSpec
	scope    map[string]any
	expander *expand.Expander
}

type paramSpec struct {
	name   string
	values []string
}

func newSession() *session {
	return &session{
		scope:    make(map[string]any),
		expander: expand.New(),
	}
}

func runConsole(ctx context.Context, w io.Writer) {
	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) (c []string) {
		for _, word := range consoleCommands {
			if strings.HasPrefix(word, strings.ToLower(input)) {
				c = append(c, word)
			}
		}

		return c
	})

	fmt.Fprintln(w, "Entering the fanout console, type `help` for commands, `quit` or Ctrl+C to leave.")

	s := newSession()

	for {
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(w, "Aborted")
			return
		}

		if err != nil {
			fmt.Fprintln(w, "Error reading line: ", err)
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		if quit := s.dispatch(ctx, w, input); quit {
			return
		}
	}
}

// dispatch handles one console input and reports whether to quit.
func (s *session) dispatch(ctx context.Context, w io.Writer, input string) bool {
	word, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch word {
	case "quit", "exit":
		return true

	case "help":
		s.help(w)

	case "template":
		s.template = rest
		fmt.Fprintln(w, "template set")

	case "value":
		s.setParam(w, &s.lockstep, rest)

	case "cross":
		s.setParam(w, &s.cross, rest)

	case "scope":
		name, value, ok := strings.Cut(rest, "=")
		if !ok || name == "" {
			fmt.Fprintf(w, "%s\n", ErrBadSpec.Error())
			break
		}

		s.scope[name] = value

	case "show":
		s.show(w)

	case "expand":
		s.preview(w)

	case "run":
		s.execute(ctx, w)

	case "clear":
		*s = *newSession()
		fmt.Fprintln(w, "session cleared")

	default:
		s.evalExpression(w, input)
	}

	return false
}

func (s *session) help(w io.Writer) {
	fmt.Fprint(w, `Commands:
  template <text>     set the command template
  value name=v1,v2    set a lockstep value list
  cross name=v1,v2    set a cross group (last declared varies fastest)
  scope name=value    set an expression scope entry
  show                print the current session
  expand              preview the expanded batch
  run                 execute the batch
  clear               reset the session
  quit, exit          leave the console
Anything else is evaluated as an expression against the scope.
`)
}

// setParam adds or replaces a named value list, keeping declaration order.
func (s *session) setParam(w io.Writer, params *[]paramSpec, spec string) {
	name, values, err := parseSpec(spec)
	if err != nil {
		fmt.Fprintf(w, "%s\n", err.Error())
		return
	}

	for i, p := range *params {
		if p.name == name {
			(*params)[i].values = values
			return
		}
	}

	*params = append(*params, paramSpec{name: name, values: values})
}

func (s *session) show(w io.Writer) {
	fmt.Fprintf(w, "template: %s\n", s.template)

	for _, p := range s.lockstep {
		fmt.Fprintf(w, "value %s = %s\n", p.name, strings.Join(p.values, ", "))
	}

	for _, g := range s.cross {
		fmt.Fprintf(w, "cross %s = %s\n", g.name, strings.Join(g.values, ", "))
	}

	names := make([]string, 0, len(s.scope))
	for name := range s.scope {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "scope %s = %v\n", name, s.scope[name])
	}
}

func (s *session) options() []fanout.Option {
	var opts []fanout.Option

	for _, p := range s.lockstep {
		opts = append(opts, fanout.WithValue(p.name, p.values))
	}

	for _, g := range s.cross {
		opts = append(opts, fanout.WithCross(g.name, g.values))
	}

	if len(s.scope) > 0 {
		opts = append(opts, fanout.WithScope(s.scope))
	}

	return opts
}

func (s *session) preview(w io.Writer) {
	if s.template == "" {
		fmt.Fprintln(w, "no template set")
		return
	}

	outcome, err := fanout.Expand(s.template, s.options()...)
	if err != nil {
		fmt.Fprintf(w, "%s\n", err.Error())
		return
	}

	for _, span := range outcome.Unresolved {
		fmt.Fprintf(w, "unresolved: {%s}\n", span)
	}

	for _, command := range outcome.Commands {
		fmt.Fprintln(w, command)
	}
}

func (s *session) execute(ctx context.Context, w io.Writer) {
	if s.template == "" {
		fmt.Fprintln(w, "no template set")
		return
	}

	opts := append(s.options(), fanout.WithVerbose(true), fanout.WithLines(true))

	outcome, err := fanout.Run(ctx, s.template, opts...)
	if err != nil {
		fmt.Fprintf(w, "%s\n", err.Error())

		if outcome != nil && outcome.Stderr != "" {
			fmt.Fprintln(w, outcome.Stderr)
		}

		return
	}

	for _, line := range outcome.Lines {
		fmt.Fprintln(w, line)
	}
}

func (s *session) evalExpression(w io.Writer, input string) {
	scope, _ := expand.Scope(s.scope)

	result, err := s.expander.Eval(input, scope)
	if err != nil {
		fmt.Fprintf(w, "%s\n", err.Error())
		return
	}

	fmt.Fprintln(w, result)
}

// parseSpec splits name=v1,v2 into the parameter name and its values.
func parseSpec(spec string) (string, []string, error) {
	name, rest, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("%w: %q", ErrBadSpec, spec)
	}

	return name, strings.Split(rest, ","), nil
}
