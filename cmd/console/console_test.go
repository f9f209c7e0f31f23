// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package console

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_sessionExpand(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSession()
	buf := new(bytes.Buffer)

	assert.False(t, s.dispatch(ctx, buf, "template convert {file} --mode {mode} --dir {upper(dir)}"))
	assert.False(t, s.dispatch(ctx, buf, "value file=a.png,b.png"))
	assert.False(t, s.dispatch(ctx, buf, "cross mode=fast,slow"))
	assert.False(t, s.dispatch(ctx, buf, "scope dir=out"))

	buf.Reset()
	s.dispatch(ctx, buf, "expand")

	assert.Equal(t,
		"convert a.png --mode fast --dir OUT\n"+
			"convert a.png --mode slow --dir OUT\n"+
			"convert b.png --mode fast --dir OUT\n"+
			"convert b.png --mode slow --dir OUT\n",
		buf.String())
}

func Test_sessionValueReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSession()
	buf := new(bytes.Buffer)

	s.dispatch(ctx, buf, "value file=a.png")
	s.dispatch(ctx, buf, "value file=b.png,c.png")

	require.Len(t, s.lockstep, 1)
	assert.Equal(t, []string{"b.png", "c.png"}, s.lockstep[0].values)
}

func Test_sessionShow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSession()
	buf := new(bytes.Buffer)

	s.dispatch(ctx, buf, "template echo {a} {b}")
	s.dispatch(ctx, buf, "value a=1,2")
	s.dispatch(ctx, buf, "cross b=x,y")
	s.dispatch(ctx, buf, "scope n=4")

	buf.Reset()
	s.dispatch(ctx, buf, "show")

	out := buf.String()
	assert.Contains(t, out, "template: echo {a} {b}")
	assert.Contains(t, out, "value a = 1, 2")
	assert.Contains(t, out, "cross b = x, y")
	assert.Contains(t, out, "scope n = 4")
}

func Test_sessionEvalExpression(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSession()
	buf := new(bytes.Buffer)

	s.dispatch(ctx, buf, "scope name=batch")

	buf.Reset()
	s.dispatch(ctx, buf, `upper(name)`)
	assert.Equal(t, "BATCH\n", buf.String())

	buf.Reset()
	s.dispatch(ctx, buf, "1 +")
	assert.Contains(t, buf.String(), "expression evaluation failed")
}

func Test_sessionClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSession()
	buf := new(bytes.Buffer)

	s.dispatch(ctx, buf, "template echo {a}")
	s.dispatch(ctx, buf, "value a=1")
	s.dispatch(ctx, buf, "clear")

	assert.Empty(t, s.template)
	assert.Empty(t, s.lockstep)
	assert.Empty(t, s.scope)
}

func Test_sessionQuit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSession()
	buf := new(bytes.Buffer)

	assert.True(t, s.dispatch(ctx, buf, "quit"))
	assert.True(t, s.dispatch(ctx, buf, "exit"))
}

func Test_sessionPreviewWithoutTemplate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSession()
	buf := new(bytes.Buffer)

	s.dispatch(ctx, buf, "expand")
	assert.Contains(t, buf.String(), "no template set")
}

func Test_parseSpec(t *testing.T) {
	t.Parallel()

	name, values, err := parseSpec("mode=fast,slow")
	require.NoError(t, err)
	assert.Equal(t, "mode", name)
	assert.Equal(t, []string{"fast", "slow"}, values)

	_, _, err = parseSpec("nonsense")
	assert.ErrorIs(t, err, ErrBadSpec)
}
