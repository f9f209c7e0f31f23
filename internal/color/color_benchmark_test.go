// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import "testing"

func BenchmarkSprint(b *testing.B) {
	for b.Loop() {
		Sprint("a batch of forty-two commands", FgGreen, Bold)
	}
}

func BenchmarkColorizeDisabled(b *testing.B) {
	b.Setenv(NoColor, "1")
	Refresh()

	defer Refresh()

	b.ResetTimer()

	for b.Loop() {
		Colorize("a batch of forty-two commands", FgGreen, Bold)
	}
}
