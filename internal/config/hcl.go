// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/matt-FFFFFF/fanout/internal/ctyconv"
	"github.com/zclconf/go-cty/cty"
)

// hclFile is the gohcl decode target for a batchfile. Cross groups are
// repeated labelled blocks, which keeps their declaration order.
type hclFile struct {
	Name    *string     `hcl:"name,optional"`
	Batches []*hclBatch `hcl:"batch,block"`
}

type hclBatch struct {
	Name       string      `hcl:"name,label"`
	Template   string      `hcl:"template"`
	Values     *cty.Value  `hcl:"values,optional"`
	Cross      []*hclCross `hcl:"cross,block"`
	Scope      *cty.Value  `hcl:"scope,optional"`
	Verbose    *bool       `hcl:"verbose,optional"`
	Lines      *bool       `hcl:"lines,optional"`
	Strict     *bool       `hcl:"strict,optional"`
	DryRun     *bool       `hcl:"dry_run,optional"`
	JavaMemory *string     `hcl:"java_memory,optional"`
}

type hclCross struct {
	Name   string    `hcl:"name,label"`
	Values cty.Value `hcl:"values"`
}

func parseHCL(path string, content []byte) (*File, error) {
	parsed, diag := hclsyntax.ParseConfig(content, path, hcl.InitialPos)
	if diag.HasErrors() {
		return nil, errors.Join(ErrParseConfig, multierror.Append(nil, diag.Errs()...))
	}

	raw := new(hclFile)
	if diag := gohcl.DecodeBody(parsed.Body, nil, raw); diag.HasErrors() {
		return nil, errors.Join(ErrParseConfig, multierror.Append(nil, diag.Errs()...))
	}

	file := &File{
		Jobs: make([]*Job, 0, len(raw.Batches)),
	}
	if raw.Name != nil {
		file.Name = *raw.Name
	}

	var merr *multierror.Error

	for i, batch := range raw.Batches {
		job, err := batch.toJob()
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("batch %d (%s): %w", i, batch.Name, err))
			continue
		}

		file.Jobs = append(file.Jobs, job)
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	return file, nil
}

func (b *hclBatch) toJob() (*Job, error) {
	job := &Job{
		Name:     b.Name,
		Template: b.Template,
		Strict:   b.Strict,
	}

	if b.Verbose != nil {
		job.Verbose = *b.Verbose
	}

	if b.Lines != nil {
		job.Lines = *b.Lines
	}

	if b.DryRun != nil {
		job.DryRun = *b.DryRun
	}

	if b.JavaMemory != nil {
		job.JavaMemory = *b.JavaMemory
	}

	if b.Values != nil && !b.Values.IsNull() {
		values, err := ctyObjectToMap(*b.Values)
		if err != nil {
			return nil, fmt.Errorf("values: %w", err)
		}

		job.Values = values
	}

	if b.Scope != nil && !b.Scope.IsNull() {
		scope, err := ctyObjectToMap(*b.Scope)
		if err != nil {
			return nil, fmt.Errorf("scope: %w", err)
		}

		job.Scope = scope
	}

	for _, group := range b.Cross {
		raw, err := ctyconv.FromCty(group.Values)
		if err != nil {
			return nil, fmt.Errorf("cross %q: %w", group.Name, err)
		}

		job.Cross = append(job.Cross, CrossGroup{
			Name:   group.Name,
			Values: toValueList(raw),
		})
	}

	return job, nil
}

func ctyObjectToMap(v cty.Value) (map[string]any, error) {
	raw, err := ctyconv.FromCty(v)
	if err != nil {
		return nil, err
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %s", ErrParseConfig, v.Type().FriendlyName())
	}

	return m, nil
}
