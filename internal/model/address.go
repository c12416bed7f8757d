// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MaxRows    = 1048576
	MaxColumns = 16384
)

// Address describes a reference before it is resolved.
type Address interface {
	address()
}

// CellRef is a single cell. Column and Row are one-based.
type CellRef struct {
	Sheet          string
	Column         int
	Row            int
	AbsoluteColumn bool
	AbsoluteRow    bool
}

// ColumnRangeRef is a whole-column span such as A:C.
type ColumnRangeRef struct {
	Sheet string
	First int
	Last  int
}

// RowRangeRef is a whole-row span such as 1:3.
type RowRangeRef struct {
	Sheet string
	First int
	Last  int
}

type NamedRef struct {
	Sheet string
	Name  string
}

// RefErrorRef is a reference that was already invalid in the formula text.
type RefErrorRef struct {
	Text string
}

func (CellRef) address()        {}
func (ColumnRangeRef) address() {}
func (RowRangeRef) address()    {}
func (NamedRef) address()       {}
func (RefErrorRef) address()    {}

func (c CellRef) String() string {
	var b strings.Builder
	if c.Sheet != "" {
		b.WriteString(c.Sheet)
		b.WriteByte('!')
	}
	if c.AbsoluteColumn {
		b.WriteByte('$')
	}
	b.WriteString(ColumnName(c.Column))
	if c.AbsoluteRow {
		b.WriteByte('$')
	}
	b.WriteString(strconv.Itoa(c.Row))
	return b.String()
}

// ParseCellAddress parses text like A1, $B$2 or xfd1048576.
func ParseCellAddress(text string) (CellRef, error) {
	ref := CellRef{}
	rest := text
	if strings.HasPrefix(rest, "$") {
		ref.AbsoluteColumn = true
		rest = rest[1:]
	}
	letters := 0
	for letters < len(rest) && isLetter(rest[letters]) {
		letters = letters + 1
	}
	if letters == 0 {
		return CellRef{}, fmt.Errorf("invalid cell address %q", text)
	}
	column, err := ColumnIndex(rest[:letters])
	if err != nil {
		return CellRef{}, err
	}
	ref.Column = column
	rest = rest[letters:]
	if strings.HasPrefix(rest, "$") {
		ref.AbsoluteRow = true
		rest = rest[1:]
	}
	row, err := parseRow(rest)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell address %q: %w", text, err)
	}
	ref.Row = row
	return ref, nil
}

// ParseColumnRange parses text like A:C or $A:$C.
func ParseColumnRange(text string) (ColumnRangeRef, error) {
	first, last, ok := strings.Cut(text, ":")
	if !ok {
		return ColumnRangeRef{}, fmt.Errorf("invalid column range %q", text)
	}
	a, err := ColumnIndex(strings.TrimPrefix(first, "$"))
	if err != nil {
		return ColumnRangeRef{}, err
	}
	b, err := ColumnIndex(strings.TrimPrefix(last, "$"))
	if err != nil {
		return ColumnRangeRef{}, err
	}
	return ColumnRangeRef{First: min(a, b), Last: max(a, b)}, nil
}

// ParseRowRange parses text like 1:3 or $1:$3.
func ParseRowRange(text string) (RowRangeRef, error) {
	first, last, ok := strings.Cut(text, ":")
	if !ok {
		return RowRangeRef{}, fmt.Errorf("invalid row range %q", text)
	}
	a, err := parseRow(strings.TrimPrefix(first, "$"))
	if err != nil {
		return RowRangeRef{}, fmt.Errorf("invalid row range %q: %w", text, err)
	}
	b, err := parseRow(strings.TrimPrefix(last, "$"))
	if err != nil {
		return RowRangeRef{}, fmt.Errorf("invalid row range %q: %w", text, err)
	}
	return RowRangeRef{First: min(a, b), Last: max(a, b)}, nil
}

// ColumnIndex converts column letters to a one-based index: A is 1, AA is 27.
func ColumnIndex(letters string) (int, error) {
	if letters == "" || len(letters) > 3 {
		return 0, fmt.Errorf("invalid column %q", letters)
	}
	index := 0
	for x := 0; x < len(letters); x = x + 1 {
		c := letters[x]
		if !isLetter(c) {
			return 0, fmt.Errorf("invalid column %q", letters)
		}
		if c >= 'a' {
			c = c - 'a' + 'A'
		}
		index = index*26 + int(c-'A'+1)
	}
	if index > MaxColumns {
		return 0, fmt.Errorf("column %q out of bounds", letters)
	}
	return index, nil
}

// ColumnName is the inverse of ColumnIndex.
func ColumnName(index int) string {
	var b []byte
	for index > 0 {
		index = index - 1
		b = append([]byte{byte('A' + index%26)}, b...)
		index = index / 26
	}
	return string(b)
}

func parseRow(text string) (int, error) {
	row, err := strconv.Atoi(text)
	if err != nil {
		return 0, err
	}
	if row < 1 || row > MaxRows {
		return 0, fmt.Errorf("row %d out of bounds", row)
	}
	return row, nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
