// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinTwoLines(t *testing.T) {
	got, ok := Join("mkdir out\necho ok\n")
	assert.True(t, ok)
	assert.Equal(t, "mkdir out && echo ok", got)
}

func TestJoinSingleLine(t *testing.T) {
	got, ok := Join("echo hello")
	assert.True(t, ok)
	assert.Equal(t, "echo hello", got)
}

func TestJoinDropsBlankLines(t *testing.T) {
	got, ok := Join("first\n\n   \nsecond")
	assert.True(t, ok)
	assert.Equal(t, "first && second", got)
}

func TestJoinAllBlank(t *testing.T) {
	_, ok := Join("\n  \n\t\n")
	assert.False(t, ok, "an all-blank command is dropped")
}

func TestJoinEmptyString(t *testing.T) {
	_, ok := Join("")
	assert.False(t, ok)
}

func TestJoinNoDuplicateConnectiveSuffix(t *testing.T) {
	got, ok := Join("cd /tmp &&\nls")
	assert.True(t, ok)
	assert.Equal(t, "cd /tmp && ls", got)
}

func TestJoinNoDuplicateConnectivePrefix(t *testing.T) {
	got, ok := Join("cd /tmp\n&& ls")
	assert.True(t, ok)
	assert.Equal(t, "cd /tmp && ls", got)
}

func TestJoinTrimsEachLine(t *testing.T) {
	got, ok := Join("  one  \n\t two \n")
	assert.True(t, ok)
	assert.Equal(t, "one && two", got)
}

func TestBatch(t *testing.T) {
	got := Batch([]string{
		"a\nb",
		"\n\n",
		"c",
	})
	assert.Equal(t, []string{"a && b", "c"}, got, "blank commands drop, order is preserved")
}

func TestBatchEmpty(t *testing.T) {
	assert.Empty(t, Batch(nil))
	assert.Empty(t, Batch([]string{""}))
}
