// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package zipper turns named value lists into the ordered sequence of
// parameter mappings a command template is expanded against. Lockstep sets
// are zipped positionally with single values broadcast to the common
// length; cross groups multiply the result as independent dimensions, the
// last declared group varying fastest.
package zipper

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/matt-FFFFFF/fanout/internal/ctyconv"
)

var (
	// ErrCardinality is returned when lockstep value lists have
	// incompatible lengths that cannot be broadcast.
	ErrCardinality = errors.New(
		"lockstep value lists must share one length or be single values for broadcasting")
	// ErrShape is returned when the parameter specification itself is
	// malformed: empty names, duplicate names, or a cross group reusing a
	// lockstep name.
	ErrShape = errors.New("invalid parameter specification")
)

// Set is one named parameter with its ordered, stringified values.
type Set struct {
	Name   string
	Values []string
}

// NewSet builds a Set from raw caller values. A single value is a scalar
// broadcast later; a single slice or array argument is flattened into the
// value sequence; every element is canonicalized to its string form.
func NewSet(name string, raw ...any) Set {
	if len(raw) == 1 {
		rv := reflect.ValueOf(raw[0])
		if raw[0] != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
			flat := make([]any, rv.Len())
			for i := range rv.Len() {
				flat[i] = rv.Index(i).Interface()
			}

			raw = flat
		}
	}

	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = ctyconv.String(v)
	}

	return Set{Name: name, Values: values}
}

// Generate produces the combination sequence for the given lockstep sets
// and cross groups. Order: outer loop is the lockstep index, inner loops
// are the cross groups in declaration order. Every returned mapping is
// freshly allocated and carries an identical key set.
func Generate(lockstep, cross []Set) ([]map[string]string, error) {
	if err := validate(lockstep, cross); err != nil {
		return nil, err
	}

	n, err := lockstepLength(lockstep)
	if err != nil {
		return nil, err
	}

	result := make([]map[string]string, 0, n)

	for i := range n {
		m := make(map[string]string, len(lockstep)+len(cross))

		for _, s := range lockstep {
			idx := i
			if len(s.Values) == 1 {
				idx = 0
			}

			m[s.Name] = s.Values[idx]
		}

		result = append(result, m)
	}

	// Left fold over the cross groups: each group replaces the accumulated
	// mappings with their product against its values, so the last declared
	// group varies fastest. A group with no values empties the sequence.
	for _, g := range cross {
		next := make([]map[string]string, 0, len(result)*len(g.Values))

		for _, m := range result {
			for _, v := range g.Values {
				mc := make(map[string]string, len(m)+1)
				for k, mv := range m {
					mc[k] = mv
				}

				mc[g.Name] = v
				next = append(next, mc)
			}
		}

		result = next
	}

	return result, nil
}

func validate(lockstep, cross []Set) error {
	seen := make(map[string]struct{}, len(lockstep))

	for _, s := range lockstep {
		if s.Name == "" {
			return fmt.Errorf("%w: parameter with empty name", ErrShape)
		}

		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("%w: duplicate parameter %q", ErrShape, s.Name)
		}

		seen[s.Name] = struct{}{}
	}

	crossSeen := make(map[string]struct{}, len(cross))

	for _, g := range cross {
		if g.Name == "" {
			return fmt.Errorf("%w: cross group with empty name", ErrShape)
		}

		if _, ok := crossSeen[g.Name]; ok {
			return fmt.Errorf("%w: duplicate cross group %q", ErrShape, g.Name)
		}

		if _, ok := seen[g.Name]; ok {
			return fmt.Errorf("%w: cross group %q collides with a lockstep parameter", ErrShape, g.Name)
		}

		crossSeen[g.Name] = struct{}{}
	}

	return nil
}

// lockstepLength returns the broadcast target length. With no sets at all
// the length is one: a single empty combination, so cross-only calls work.
// A set with zero values forces a zero-length sequence.
func lockstepLength(lockstep []Set) (int, error) {
	n := 1
	nFrom := ""

	for _, s := range lockstep {
		if len(s.Values) == 0 {
			return 0, nil
		}

		if len(s.Values) <= 1 {
			continue
		}

		if n > 1 && len(s.Values) != n {
			return 0, fmt.Errorf("%w: %q has %d values, %q has %d",
				ErrCardinality, nFrom, n, s.Name, len(s.Values))
		}

		n = len(s.Values)
		nFrom = s.Name
	}

	return n, nil
}
