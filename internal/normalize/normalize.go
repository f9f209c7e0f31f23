// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package normalize collapses expanded multi-line command templates into
// single shell command lines joined with the and-then connective.
package normalize

import (
	"strings"
)

const connective = "&&"

// Join splits an expanded command on newlines, drops lines that are blank
// after trimming, and joins the survivors with " && ". No connective is
// inserted where the previous line already ends with one or the next line
// already begins with one. ok is false when every line is blank, in which
// case the command must be dropped from the batch.
func Join(expanded string) (string, bool) {
	var (
		b    strings.Builder
		prev string
	)

	for _, line := range strings.Split(expanded, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case prev == "":
			b.WriteString(line)
		case strings.HasSuffix(prev, connective), strings.HasPrefix(line, connective):
			b.WriteString(" ")
			b.WriteString(line)
		default:
			b.WriteString(" ")
			b.WriteString(connective)
			b.WriteString(" ")
			b.WriteString(line)
		}

		prev = line
	}

	if b.Len() == 0 {
		return "", false
	}

	return b.String(), true
}

// Batch applies Join to every expanded command and drops the all-blank
// ones, preserving order.
func Batch(expanded []string) []string {
	out := make([]string, 0, len(expanded))

	for _, e := range expanded {
		if cmd, ok := Join(e); ok {
			out = append(out, cmd)
		}
	}

	return out
}
