// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package fanout expands a parameterised command template into a batch of
// concrete shell commands and hands the whole batch to GNU parallel in a
// single call.
//
// Named value lists are combined in lockstep, like zip: element i of every
// list forms combination i, and single values are broadcast to match.
// Cross groups multiply the lockstep combinations instead, with the
// last-declared group varying fastest. Each combination is substituted
// into the template, remaining {expr} spans are evaluated against a
// caller-supplied scope, and multi-line results are joined with &&.
//
//	out, err := fanout.Run(ctx, "hisat-3n --index {ref}.fa -1 {sample}_R1.fq.gz -S {sample}.sam",
//		fanout.WithValue("sample", "U", "E"),
//		fanout.WithCross("ref", "28SrRNA", "18SrRNA"),
//	)
//
// Execution is delegated to the runner as one blocking call; fanout adds
// no concurrency of its own.
package fanout

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)
