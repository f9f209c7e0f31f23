// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandLiteralSubstitution(t *testing.T) {
	e := New()

	got, unresolved := e.Expand(
		"bwa mem {ref} {sample}.fq > {sample}.sam",
		map[string]string{"ref": "hg38.fa", "sample": "s1"},
		nil,
	)
	assert.Equal(t, "bwa mem hg38.fa s1.fq > s1.sam", got)
	assert.Empty(t, unresolved)
}

func TestExpandSinglePassNoReExpansion(t *testing.T) {
	e := New()

	got, unresolved := e.Expand(
		"{a} {b}",
		map[string]string{"a": "{b}", "b": "X"},
		nil,
	)
	assert.Equal(t, "{b} X", got, "substituted text must not be expanded again")
	assert.Empty(t, unresolved)
}

func TestExpandEscapedBraces(t *testing.T) {
	e := New()

	got, unresolved := e.Expand(
		"echo {{literal}} {x}",
		map[string]string{"x": "5"},
		nil,
	)
	assert.Equal(t, "echo {literal} 5", got)
	assert.Empty(t, unresolved)
}

func TestExpandEscapedKnownParameter(t *testing.T) {
	e := New()

	got, _ := e.Expand("{{x}}", map[string]string{"x": "5"}, nil)
	assert.Equal(t, "{x}", got, "escaping wins whether or not the name is a known parameter")
}

func TestExpandAwkStyleBraces(t *testing.T) {
	e := New()

	got, unresolved := e.Expand(
		"awk '{{print $1}}' {file}",
		map[string]string{"file": "in.txt"},
		nil,
	)
	assert.Equal(t, "awk '{print $1}' in.txt", got)
	assert.Empty(t, unresolved)
}

func TestExpandExpressionFromScope(t *testing.T) {
	e := New()
	scope, skipped := Scope(map[string]any{"count": 3})
	require.Empty(t, skipped)

	got, unresolved := e.Expand("repeat {count * 2} times", nil, scope)
	assert.Equal(t, "repeat 6 times", got)
	assert.Empty(t, unresolved)
}

func TestExpandExpressionOverMappingValue(t *testing.T) {
	e := New()

	got, unresolved := e.Expand(
		"out/{upper(sample)}.bam",
		map[string]string{"sample": "s1"},
		nil,
	)
	assert.Equal(t, "out/S1.bam", got)
	assert.Empty(t, unresolved)
}

func TestExpandMappingShadowsScope(t *testing.T) {
	e := New()
	scope, _ := Scope(map[string]any{"name": "from-scope"})

	got, _ := e.Expand("{upper(name)}", map[string]string{"name": "from-mapping"}, scope)
	assert.Equal(t, "FROM-MAPPING", got, "mapping values take precedence over scope variables")
}

func TestExpandNumericCoercion(t *testing.T) {
	e := New()

	got, unresolved := e.Expand("{n + 1}", map[string]string{"n": "4"}, nil)
	assert.Equal(t, "5", got)
	assert.Empty(t, unresolved)
}

func TestExpandFunctions(t *testing.T) {
	e := New()
	scope, _ := Scope(map[string]any{"files": []string{"a", "b", "c"}})

	got, unresolved := e.Expand(`{join(",", files)}`, nil, scope)
	assert.Equal(t, "a,b,c", got)
	assert.Empty(t, unresolved)

	got, unresolved = e.Expand(`{format("%s.bam", sample)}`, map[string]string{"sample": "s2"}, nil)
	assert.Equal(t, "s2.bam", got)
	assert.Empty(t, unresolved)
}

func TestExpandUnresolvedLeftVerbatim(t *testing.T) {
	e := New()

	got, unresolved := e.Expand("echo {nope} {sample}", map[string]string{"sample": "s1"}, nil)
	assert.Equal(t, "echo {nope} s1", got, "failed spans stay in the text")
	assert.Equal(t, []string{"nope"}, unresolved)
}

func TestExpandUnresolvedEncounterOrder(t *testing.T) {
	e := New()

	_, unresolved := e.Expand("{first} mid {second}", nil, nil)
	assert.Equal(t, []string{"first", "second"}, unresolved)
}

func TestExpandInvalidExpressionSilent(t *testing.T) {
	e := New()

	got, unresolved := e.Expand("grep {pattern here} f.txt", nil, nil)
	assert.Equal(t, "grep {pattern here} f.txt", got)
	assert.Equal(t, []string{"pattern here"}, unresolved)
}

func TestExpandTrimsWhitespace(t *testing.T) {
	e := New()

	got, _ := e.Expand("  echo {x}  \n", map[string]string{"x": "1"}, nil)
	assert.Equal(t, "echo 1", got)
}

func TestExpandDeterministic(t *testing.T) {
	e := New()
	mapping := map[string]string{"a": "1", "b": "2"}
	scope, _ := Scope(map[string]any{"c": 3})

	first, firstUn := e.Expand("{a}-{b}-{c}-{d}", mapping, scope)
	second, secondUn := e.Expand("{a}-{b}-{c}-{d}", mapping, scope)
	assert.Equal(t, first, second)
	assert.Equal(t, firstUn, secondUn)
}

func TestScopeDropsUnsupported(t *testing.T) {
	scope, skipped := Scope(map[string]any{
		"good": "value",
		"bad":  make(chan int),
	})
	assert.Contains(t, scope, "good")
	assert.NotContains(t, scope, "bad")
	assert.Equal(t, []string{"bad"}, skipped)
}

func TestScopeNestedValues(t *testing.T) {
	scope, skipped := Scope(map[string]any{
		"cfg": map[string]any{"threads": 8},
	})
	require.Empty(t, skipped)

	e := New()

	got, unresolved := e.Expand("-t {cfg.threads}", nil, scope)
	assert.Equal(t, "-t 8", got)
	assert.Empty(t, unresolved)
}

func TestExpandMultilinePreserved(t *testing.T) {
	e := New()

	got, _ := e.Expand("mkdir {d}\necho ok\n", map[string]string{"d": "out"}, nil)
	assert.Equal(t, "mkdir out\necho ok", got, "inner newlines survive; joining is a later stage")
}

func TestEval(t *testing.T) {
	e := New()

	scope, skipped := Scope(map[string]any{"n": 4, "name": "batch"})
	require.Empty(t, skipped)

	got, err := e.Eval("upper(name)", scope)
	require.NoError(t, err)
	assert.Equal(t, "BATCH", got)

	got, err = e.Eval("n * 2", scope)
	require.NoError(t, err)
	assert.Equal(t, "8", got)
}

func TestEvalErrors(t *testing.T) {
	e := New()

	_, err := e.Eval("1 +", nil)
	assert.ErrorIs(t, err, ErrEval)

	_, err = e.Eval("missing", nil)
	assert.ErrorIs(t, err, ErrEval)

	_, err = e.Eval("[1, 2]", nil)
	assert.ErrorIs(t, err, ErrEval, "no string form for a tuple")
}
