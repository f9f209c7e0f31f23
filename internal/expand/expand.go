// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package expand resolves command templates against parameter mappings.
// Placeholders like {sample} are replaced from the mapping in a single
// pass; any other {...} span is evaluated as an HCL expression against an
// explicit caller scope; doubled braces escape literal ones. Spans that
// fail to resolve are left verbatim and reported back so callers can opt
// into stricter handling.
package expand

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/matt-FFFFFF/fanout/internal/ctyconv"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ErrEval is returned by Eval when an expression cannot be parsed,
// evaluated, or rendered as a string.
var ErrEval = errors.New("expression evaluation failed")

// Sentinel tokens stand in for escaped braces while spans are resolved.
// They contain no brace characters and the span pattern excludes NUL, so
// protected text can never be mistaken for a placeholder.
const (
	sentinelOpen  = "\x00lbrace\x00"
	sentinelClose = "\x00rbrace\x00"
)

var (
	protectBraces = strings.NewReplacer("{{", sentinelOpen, "}}", sentinelClose)
	restoreBraces = strings.NewReplacer(sentinelOpen, "{", sentinelClose, "}")
	spanPattern   = regexp.MustCompile(`\{([^{}\x00]+)\}`)
)

// Expander expands templates. It holds only the immutable expression
// function table and is safe for concurrent use.
type Expander struct {
	funcs map[string]function.Function
}

// New returns an Expander with the built-in expression functions.
func New() *Expander {
	return &Expander{funcs: builtinFunctions()}
}

// Expand resolves one template against one parameter mapping and an
// expression scope. It returns the expanded string, trimmed of surrounding
// whitespace, and the bodies of any spans that could not be resolved, in
// encounter order. Expansion is deterministic: the output depends only on
// the three arguments.
func (e *Expander) Expand(
	template string, mapping map[string]string, scope map[string]cty.Value,
) (string, []string) {
	protected := protectBraces.Replace(template)

	vars := make(map[string]cty.Value, len(scope)+len(mapping))
	for k, v := range scope {
		vars[k] = v
	}

	// Mapping values shadow scope variables of the same name.
	for k, v := range mapping {
		vars[k] = cty.StringVal(v)
	}

	var unresolved []string

	out := spanPattern.ReplaceAllStringFunc(protected, func(span string) string {
		body := span[1 : len(span)-1]

		if v, ok := mapping[body]; ok {
			return v
		}

		if v, ok := e.eval(body, vars); ok {
			return v
		}

		unresolved = append(unresolved, body)

		return span
	})

	return strings.TrimSpace(restoreBraces.Replace(out)), unresolved
}

// eval resolves one expression span. Failures report ok=false and the
// caller leaves the span text in place.
func (e *Expander) eval(body string, vars map[string]cty.Value) (string, bool) {
	s, err := e.Eval(body, vars)
	if err != nil {
		return "", false
	}

	return s, true
}

// Eval evaluates a single expression against the scope and renders the
// result in its canonical string form. Unlike template expansion, which
// swallows failures, the error is returned so interactive callers can
// show what went wrong.
func (e *Expander) Eval(body string, scope map[string]cty.Value) (string, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(body), "expression", hcl.InitialPos)
	if diags.HasErrors() {
		return "", errors.Join(ErrEval, diags)
	}

	val, diags := expr.Value(&hcl.EvalContext{
		Variables: scope,
		Functions: e.funcs,
	})
	if diags.HasErrors() {
		return "", errors.Join(ErrEval, diags)
	}

	s, err := ctyconv.CtyToString(val)
	if err != nil {
		return "", errors.Join(ErrEval, err)
	}

	return s, nil
}

// Scope converts caller variables into expression scope values. Variables
// with no cty representation are dropped; their names are returned sorted
// so callers can log them. A dropped variable simply surfaces later as an
// unresolved span if a template references it.
func Scope(vars map[string]any) (map[string]cty.Value, []string) {
	out := make(map[string]cty.Value, len(vars))

	var skipped []string

	for k, v := range vars {
		cv, err := ctyconv.ToCty(v)
		if err != nil {
			skipped = append(skipped, k)
			continue
		}

		out[k] = cv
	}

	sort.Strings(skipped)

	return out, skipped
}

func builtinFunctions() map[string]function.Function {
	return map[string]function.Function{
		"abs":          stdlib.AbsoluteFunc,
		"ceil":         stdlib.CeilFunc,
		"chomp":        stdlib.ChompFunc,
		"coalesce":     stdlib.CoalesceFunc,
		"concat":       stdlib.ConcatFunc,
		"flatten":      stdlib.FlattenFunc,
		"floor":        stdlib.FloorFunc,
		"format":       stdlib.FormatFunc,
		"indent":       stdlib.IndentFunc,
		"int":          stdlib.IntFunc,
		"join":         stdlib.JoinFunc,
		"length":       stdlib.LengthFunc,
		"lower":        stdlib.LowerFunc,
		"max":          stdlib.MaxFunc,
		"min":          stdlib.MinFunc,
		"parseint":     stdlib.ParseIntFunc,
		"range":        stdlib.RangeFunc,
		"regexreplace": stdlib.RegexReplaceFunc,
		"replace":      stdlib.ReplaceFunc,
		"reverse":      stdlib.ReverseFunc,
		"sort":         stdlib.SortFunc,
		"split":        stdlib.SplitFunc,
		"strlen":       stdlib.StrlenFunc,
		"substr":       stdlib.SubstrFunc,
		"title":        stdlib.TitleFunc,
		"trim":         stdlib.TrimFunc,
		"trimprefix":   stdlib.TrimPrefixFunc,
		"trimspace":    stdlib.TrimSpaceFunc,
		"trimsuffix":   stdlib.TrimSuffixFunc,
		"upper":        stdlib.UpperFunc,
	}
}
