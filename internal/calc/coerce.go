// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package calc applies spreadsheet operator semantics to scalar values.
// Errors travel as model.ErrorValue results, never as Go errors.
package calc

import (
	"math"
	"strings"

	"gopkg.microglot.org/formula.go/internal/model"
)

var (
	errValue  = model.ErrorValue{Kind: model.ErrorValueKind}
	errDiv    = model.ErrorValue{Kind: model.ErrorDivZero}
	errNum    = model.ErrorValue{Kind: model.ErrorNum}
	errNotAvl = model.ErrorValue{Kind: model.ErrorNA}
)

// ToNumber coerces a scalar to a number. Text must hold a number literal;
// blanks count as zero and booleans as one or zero.
func ToNumber(v model.Value) (model.Number, error) {
	switch v := v.(type) {
	case model.Number:
		return v, nil
	case model.Boolean:
		if v {
			return 1, nil
		}
		return 0, nil
	case model.Text:
		s := strings.TrimSpace(string(v))
		percent := strings.HasSuffix(s, "%")
		if percent {
			s = strings.TrimSpace(s[:len(s)-1])
		}
		negative := strings.HasPrefix(s, "-")
		if negative || strings.HasPrefix(s, "+") {
			s = s[1:]
		}
		n, err := model.ParseNumber(s)
		if err != nil {
			return 0, errValue
		}
		if negative {
			n = -n
		}
		if percent {
			n = n / 100
		}
		return n, nil
	case model.Blank, model.Missing, nil:
		return 0, nil
	case model.ErrorValue:
		return 0, v
	}
	return 0, errValue
}

// ToText coerces a scalar to text.
func ToText(v model.Value) (model.Text, error) {
	switch v := v.(type) {
	case model.Text:
		return v, nil
	case model.Number, model.Boolean:
		return model.Text(v.String()), nil
	case model.Blank, model.Missing, nil:
		return "", nil
	case model.ErrorValue:
		return "", v
	}
	return "", errValue
}

// ToBoolean coerces a scalar to a boolean. Only TRUE and FALSE are accepted
// as text.
func ToBoolean(v model.Value) (model.Boolean, error) {
	switch v := v.(type) {
	case model.Boolean:
		return v, nil
	case model.Number:
		return v != 0, nil
	case model.Text:
		b, err := model.ParseBoolean(strings.TrimSpace(string(v)))
		if err != nil {
			return false, errValue
		}
		return b, nil
	case model.Blank, model.Missing, nil:
		return false, nil
	case model.ErrorValue:
		return false, v
	}
	return false, errValue
}

// number guards arithmetic results that have left the representable range.
func number(f float64) model.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errNum
	}
	return model.Number(f)
}

// errorOf returns the first error among the values, if any.
func errorOf(values ...model.Value) (model.ErrorValue, bool) {
	for _, v := range values {
		if e, ok := v.(model.ErrorValue); ok {
			return e, true
		}
	}
	return model.ErrorValue{}, false
}
