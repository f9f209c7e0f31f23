// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package fanout

// Outcome is the result of one Run or Expand call.
//
// Commands and Unresolved are always populated. The execution fields are
// only meaningful when Executed is true, and Output and Lines are only
// populated under the verbosity the call asked for.
type Outcome struct {
	// Commands is the normalized batch, one command per parameter
	// combination, in generation order. Combinations whose expansion was
	// entirely blank are omitted.
	Commands []string

	// Unresolved lists template spans that matched no parameter and did
	// not evaluate, in first-encounter order with duplicates removed.
	// The spans stay verbatim in the expanded commands.
	Unresolved []string

	// Executed reports whether the runner was invoked. Dry runs and
	// empty batches leave it false.
	Executed bool

	// ExitCode is the runner's aggregate exit code.
	ExitCode int

	// Output is the runner's captured standard output. Empty unless the
	// call was verbose.
	Output string

	// Lines is Output split into lines. Empty unless the call asked for
	// line splitting.
	Lines []string

	// Stderr is the runner's captured standard error, kept for
	// diagnostics regardless of verbosity.
	Stderr string
}
