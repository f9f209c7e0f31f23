// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctyconv converts between native Go values and cty values so that
// caller-supplied scopes and decoded configuration can feed expression
// evaluation without every call site repeating the type switches.
package ctyconv

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

var (
	// ErrUnsupportedType is returned when a Go value has no cty representation.
	ErrUnsupportedType = errors.New("unsupported type for cty conversion")
	// ErrUnsupportedValue is returned when a cty value has no Go representation.
	ErrUnsupportedValue = errors.New("unsupported cty value for Go conversion")
)

// ToCty converts a native Go value to its cty equivalent.
// Slices become tuples so mixed element types survive the trip.
func ToCty(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	switch t := v.(type) {
	case cty.Value:
		return t, nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int8:
		return cty.NumberIntVal(int64(t)), nil
	case int16:
		return cty.NumberIntVal(int64(t)), nil
	case int32:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case uint:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint8:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint16:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint32:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint64:
		return cty.NumberUIntVal(t), nil
	case float32:
		return cty.NumberFloatVal(float64(t)), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case []string:
		elems := make([]cty.Value, 0, len(t))
		for _, s := range t {
			elems = append(elems, cty.StringVal(s))
		}

		return cty.TupleVal(elems), nil
	case []any:
		elems := make([]cty.Value, 0, len(t))

		for _, e := range t {
			cv, err := ToCty(e)
			if err != nil {
				return cty.NilVal, err
			}

			elems = append(elems, cv)
		}

		return cty.TupleVal(elems), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(t))

		for k, e := range t {
			cv, err := ToCty(e)
			if err != nil {
				return cty.NilVal, err
			}

			attrs[k] = cv
		}

		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// FromCty converts a cty value back to a native Go value.
func FromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}

	if !v.IsKnown() {
		return nil, fmt.Errorf("%w: unknown value", ErrUnsupportedValue)
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int64()
			return i, nil
		}

		f, _ := bf.Float64()

		return f, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()

			gv, err := FromCty(ev)
			if err != nil {
				return nil, err
			}

			out = append(out, gv)
		}

		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			ek, ev := it.Element()

			gv, err := FromCty(ev)
			if err != nil {
				return nil, err
			}

			out[ek.AsString()] = gv
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, ty.FriendlyName())
	}
}

// CtyToString renders a cty value as the string a shell command should see.
// Strings pass through unquoted, everything else goes through cty conversion.
func CtyToString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", fmt.Errorf("%w: null value", ErrUnsupportedValue)
	}

	if !v.IsKnown() {
		return "", fmt.Errorf("%w: unknown value", ErrUnsupportedValue)
	}

	sv, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedValue, err.Error())
	}

	return sv.AsString(), nil
}

// String canonicalizes any Go value to the string form used in parameter
// mappings. Booleans and numbers render in their Go forms.
func String(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
