// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
)

// yamlFile is the on-disk YAML shape. Cross groups are a list of
// single-key maps so that their order survives parsing.
type yamlFile struct {
	Name string     `yaml:"name"`
	Jobs []*yamlJob `yaml:"jobs"`
}

type yamlJob struct {
	Name       string           `yaml:"name"`
	Template   string           `yaml:"template"`
	Values     map[string]any   `yaml:"values"`
	Cross      []map[string]any `yaml:"cross"`
	Scope      map[string]any   `yaml:"scope"`
	Verbose    bool             `yaml:"verbose"`
	Lines      bool             `yaml:"lines"`
	Strict     *bool            `yaml:"strict"`
	DryRun     bool             `yaml:"dry_run"`
	JavaMemory string           `yaml:"java_memory"`
}

func parseYAML(content []byte) (*File, error) {
	raw := new(yamlFile)
	if err := yaml.Unmarshal(content, raw); err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	file := &File{
		Name: raw.Name,
		Jobs: make([]*Job, 0, len(raw.Jobs)),
	}

	var merr *multierror.Error

	for i, rawJob := range raw.Jobs {
		job := &Job{
			Name:       rawJob.Name,
			Template:   rawJob.Template,
			Values:     rawJob.Values,
			Scope:      rawJob.Scope,
			Verbose:    rawJob.Verbose,
			Lines:      rawJob.Lines,
			Strict:     rawJob.Strict,
			DryRun:     rawJob.DryRun,
			JavaMemory: rawJob.JavaMemory,
		}

		for _, group := range rawJob.Cross {
			if len(group) != 1 {
				merr = multierror.Append(merr,
					fmt.Errorf("job %d (%s): %w, got %d", i, rawJob.Name, ErrCrossGroupShape, len(group)))

				continue
			}

			for name, values := range group {
				job.Cross = append(job.Cross, CrossGroup{
					Name:   name,
					Values: toValueList(values),
				})
			}
		}

		file.Jobs = append(file.Jobs, job)
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	return file, nil
}

// toValueList normalizes a YAML value to a value list: sequences become
// their elements, a bare scalar becomes a one-element list.
func toValueList(raw any) []any {
	if list, ok := raw.([]any); ok {
		return list
	}

	return []any{raw}
}
