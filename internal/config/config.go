// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads batchfiles: declarative descriptions of one or
// more template expansion jobs. Batchfiles come in a YAML and an HCL
// form with identical semantics.
//
// A YAML batchfile:
//
//	name: alignment
//	jobs:
//	  - name: align
//	    template: |
//	      mkdir -p out/{sample}
//	      bwa mem {ref}.fa {sample}.fq > out/{sample}/{mode}.sam
//	    values:
//	      sample: [s1, s2]
//	      ref: hg38
//	    cross:
//	      - mode: [fast, slow]
//	    verbose: true
//
// and its HCL equivalent:
//
//	name = "alignment"
//
//	batch "align" {
//	  template = <<-EOT
//	    mkdir -p out/{sample}
//	    bwa mem {ref}.fa {sample}.fq > out/{sample}/{mode}.sam
//	  EOT
//	  values = {
//	    sample = ["s1", "s2"]
//	    ref    = "hg38"
//	  }
//	  cross "mode" {
//	    values = ["fast", "slow"]
//	  }
//	  verbose = true
//	}
//
// Lockstep values pair position by position with single values
// broadcast; each cross group multiplies the combinations in document
// order. Strict execution is the default and is relaxed per job with
// strict: false.
package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/fanout"
)

var (
	// ErrLoadConfig is returned when a batchfile cannot be read.
	ErrLoadConfig = errors.New("failed to load batchfile")
	// ErrParseConfig is returned when a batchfile cannot be parsed.
	ErrParseConfig = errors.New("failed to parse batchfile")
	// ErrNoConfigFile is returned when a directory contains no batchfile.
	ErrNoConfigFile = errors.New("no batchfile found in the specified directory")
	// ErrUnknownFormat is returned for file extensions that are neither
	// YAML nor HCL.
	ErrUnknownFormat = errors.New("unknown batchfile format")
	// ErrMissingTemplate is returned when a job has no command template.
	ErrMissingTemplate = errors.New("job has no template")
	// ErrCrossGroupShape is returned when a cross group does not name
	// exactly one parameter.
	ErrCrossGroupShape = errors.New("cross group must name exactly one parameter")
	// ErrUnknownJob is returned when a requested job name does not exist.
	ErrUnknownJob = errors.New("no job with that name")
)

// File is a parsed batchfile.
type File struct {
	// Name labels the batch in logs and display output.
	Name string
	// Jobs are run in order, each as one independent batch.
	Jobs []*Job
}

// Job describes one template expansion and execution.
type Job struct {
	Name       string
	Template   string
	Values     map[string]any // lockstep value lists
	Cross      []CrossGroup   // ordered cross groups
	Scope      map[string]any // expression evaluation scope
	Verbose    bool
	Lines      bool
	Strict     *bool // nil means strict
	DryRun     bool
	JavaMemory string
}

// CrossGroup is one named cross-product dimension.
type CrossGroup struct {
	Name   string
	Values []any
}

// Job returns the named job, or the only job when name is empty and the
// file has exactly one.
func (f *File) Job(name string) (*Job, error) {
	if name == "" && len(f.Jobs) == 1 {
		return f.Jobs[0], nil
	}

	for _, job := range f.Jobs {
		if job.Name == name {
			return job, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownJob, name)
}

// Options converts the job into the option list for a Run call.
func (j *Job) Options() []fanout.Option {
	opts := make([]fanout.Option, 0, len(j.Cross)+8)

	if len(j.Values) > 0 {
		opts = append(opts, fanout.WithValues(j.Values))
	}

	for _, group := range j.Cross {
		opts = append(opts, fanout.WithCross(group.Name, group.Values...))
	}

	if len(j.Scope) > 0 {
		opts = append(opts, fanout.WithScope(j.Scope))
	}

	strict := true
	if j.Strict != nil {
		strict = *j.Strict
	}

	opts = append(opts,
		fanout.WithVerbose(j.Verbose),
		fanout.WithLines(j.Lines),
		fanout.WithStrict(strict),
		fanout.WithDryRun(j.DryRun),
	)

	if j.JavaMemory != "" {
		opts = append(opts, fanout.WithJavaMemory(j.JavaMemory))
	}

	return opts
}

func (f *File) validate() error {
	var merr *multierror.Error

	for i, job := range f.Jobs {
		if job.Template == "" {
			merr = multierror.Append(merr, fmt.Errorf("job %d (%s): %w", i, job.Name, ErrMissingTemplate))
		}
	}

	return merr.ErrorOrNil()
}
