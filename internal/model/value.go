// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"strconv"
	"strings"
)

// Value is the result of evaluating a formula or any part of one. The
// grammar never inspects a Value, it only hands values to a Context or to
// Operators.
type Value interface {
	String() string
	value()
}

type Number float64

type Text string

type Boolean bool

type ErrorKind string

const (
	ErrorNull        ErrorKind = "#NULL!"
	ErrorDivZero     ErrorKind = "#DIV/0!"
	ErrorValueKind   ErrorKind = "#VALUE!"
	ErrorRef         ErrorKind = "#REF!"
	ErrorName        ErrorKind = "#NAME?"
	ErrorNum         ErrorKind = "#NUM!"
	ErrorNA          ErrorKind = "#N/A"
	ErrorGettingData ErrorKind = "#GETTING_DATA"
)

// ErrorKinds lists every formula error literal, longest first so that a
// scanner can match greedily.
var ErrorKinds = []ErrorKind{
	ErrorGettingData,
	ErrorDivZero,
	ErrorValueKind,
	ErrorNull,
	ErrorName,
	ErrorNum,
	ErrorRef,
	ErrorNA,
}

// ErrorValue is a spreadsheet error such as #DIV/0!. It also satisfies the
// error interface so coercion helpers can return it directly.
type ErrorValue struct {
	Kind ErrorKind
}

func (e ErrorValue) Error() string {
	return string(e.Kind)
}

// Array is a row-major grid of literal values.
type Array struct {
	Rows [][]Value
}

// Reference wraps a handle produced by a Context. Only the Context and the
// Operators that created it know what the handle means.
type Reference struct {
	Handle any
}

// Missing marks an argument slot that was left empty, as in F(1,,2).
type Missing struct{}

// Blank is the content of a cell that holds nothing.
type Blank struct{}

func (Number) value()     {}
func (Text) value()       {}
func (Boolean) value()    {}
func (ErrorValue) value() {}
func (Array) value()      {}
func (Reference) value()  {}
func (Missing) value()    {}
func (Blank) value()      {}

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func (t Text) String() string {
	return string(t)
}

func (b Boolean) String() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (e ErrorValue) String() string {
	return string(e.Kind)
}

func (a Array) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for y, row := range a.Rows {
		if y > 0 {
			b.WriteByte(';')
		}
		for x, cell := range row {
			if x > 0 {
				b.WriteByte(',')
			}
			if t, ok := cell.(Text); ok {
				b.WriteString(strconv.Quote(string(t)))
				continue
			}
			b.WriteString(cell.String())
		}
	}
	b.WriteByte('}')
	return b.String()
}

func (r Reference) String() string {
	if s, ok := r.Handle.(interface{ String() string }); ok {
		return s.String()
	}
	return "<reference>"
}

func (Missing) String() string {
	return ""
}

func (Blank) String() string {
	return ""
}
