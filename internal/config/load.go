// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// Batchfile extensions, matched case-insensitively.
const (
	ExtYAML = ".fanout.yaml"
	ExtYML  = ".fanout.yml"
	ExtHCL  = ".fanout.hcl"
)

// Load reads and validates the batchfile at path. The format is chosen
// by extension: .yaml/.yml or .hcl.
func Load(path string) (*File, error) {
	fs := FsFactory()

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Join(ErrLoadConfig, err)
	}

	return Parse(path, content)
}

// Parse parses and validates batchfile content fetched from elsewhere.
// The path is only used to select the format by extension.
func Parse(path string, content []byte) (*File, error) {
	file, err := parse(path, content)
	if err != nil {
		return nil, err
	}

	if err := file.validate(); err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	return file, nil
}

// LoadDir loads every batchfile in dir, in filename order, and merges
// their jobs into one File. The merged name is the first non-empty file
// name encountered.
func LoadDir(dir string) (*File, error) {
	fs := FsFactory()

	var matches []string

	for _, ext := range []string{ExtYAML, ExtYML, ExtHCL} {
		found, err := afero.Glob(fs, filepath.Join(dir, "*"+ext))
		if err != nil {
			// pattern metacharacters in dir itself
			return nil, errors.Join(ErrLoadConfig, err)
		}

		matches = append(matches, found...)
	}

	if len(matches) == 0 {
		return nil, ErrNoConfigFile
	}

	sort.Strings(matches)

	merged := &File{}

	var merr *multierror.Error

	for _, path := range matches {
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}

		file, err := parse(path, content)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}

		if merged.Name == "" {
			merged.Name = file.Name
		}

		merged.Jobs = append(merged.Jobs, file.Jobs...)
	}

	if merr.ErrorOrNil() != nil {
		return nil, errors.Join(ErrParseConfig, merr)
	}

	if err := merged.validate(); err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	return merged, nil
}

func parse(path string, content []byte) (*File, error) {
	switch {
	case hasSuffixFold(path, ".yaml"), hasSuffixFold(path, ".yml"):
		return parseYAML(content)
	case hasSuffixFold(path, ".hcl"):
		return parseHCL(path, content)
	default:
		return nil, ErrUnknownFormat
	}
}

func hasSuffixFold(s, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(s), suffix)
}
