// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package expand

import (
	"bytes"
	"context"
	"testing"

	"github.com/matt-FFFFFF/fanout/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseSpec(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		spec       string
		wantName   string
		wantValues []string
		wantErr    error
	}{
		{
			name:       "single value",
			spec:       "file=a.png",
			wantName:   "file",
			wantValues: []string{"a.png"},
		},
		{
			name:       "multiple values",
			spec:       "mode=fast,slow",
			wantName:   "mode",
			wantValues: []string{"fast", "slow"},
		},
		{
			name:       "empty value allowed",
			spec:       "flag=",
			wantName:   "flag",
			wantValues: []string{""},
		},
		{
			name:    "missing separator",
			spec:    "file",
			wantErr: ErrBadSpec,
		},
		{
			name:    "missing name",
			spec:    "=a,b",
			wantErr: ErrBadSpec,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			name, values, err := parseSpec(tc.spec)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantName, name)
			assert.Equal(t, tc.wantValues, values)
		})
	}
}

func Test_expandCommand(t *testing.T) {
	buf := new(bytes.Buffer)
	ExpandCmd.Writer = buf

	t.Cleanup(func() {
		ExpandCmd.Writer = nil
	})

	ctx := ctxlog.NewQuiet(context.Background())

	err := ExpandCmd.Run(ctx, []string{
		"expand",
		"--value", "file=a.png,b.png",
		"--cross", "mode=fast,slow",
		"--scope", "dir=out",
		"convert {file} --mode {mode} --dir {upper(dir)}",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"convert a.png --mode fast --dir OUT\n"+
			"convert a.png --mode slow --dir OUT\n"+
			"convert b.png --mode fast --dir OUT\n"+
			"convert b.png --mode slow --dir OUT\n",
		buf.String())
}
