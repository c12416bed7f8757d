// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numberLiteral = regexp.MustCompile(`^(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// ParseNumber converts an unsigned decimal number literal such as 12, 1.5,
// .5 or 2E-3.
func ParseNumber(text string) (Number, error) {
	if !numberLiteral.MatchString(text) {
		return 0, fmt.Errorf("invalid number literal %s", text)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number literal %s", text)
	}
	return Number(f), nil
}

// ParseText converts a double-quoted string literal, collapsing doubled
// quotes.
func ParseText(text string) (Text, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", fmt.Errorf("invalid string literal %s", text)
	}
	return Text(strings.ReplaceAll(text[1:len(text)-1], `""`, `"`)), nil
}

func ParseBoolean(text string) (Boolean, error) {
	switch FoldName(text) {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean literal %s", text)
	}
}

func ParseError(text string) (ErrorValue, error) {
	folded := FoldName(text)
	for _, kind := range ErrorKinds {
		if string(kind) == folded {
			return ErrorValue{Kind: kind}, nil
		}
	}
	return ErrorValue{}, fmt.Errorf("invalid error literal %s", text)
}
