// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package workbook

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.microglot.org/formula.go/internal/model"
)

// Area is a rectangle of cells on one sheet. Bounds are one-based and
// inclusive.
type Area struct {
	Sheet  string
	Top    int
	Left   int
	Bottom int
	Right  int
}

// Areas is the result of a union. It is never empty.
type Areas []Area

func cellArea(sheet string, ref model.CellRef) Area {
	return Area{Sheet: sheet, Top: ref.Row, Left: ref.Column, Bottom: ref.Row, Right: ref.Column}
}

func (a Area) Single() bool {
	return a.Top == a.Bottom && a.Left == a.Right
}

func (a Area) Contains(row int, column int) bool {
	return row >= a.Top && row <= a.Bottom && column >= a.Left && column <= a.Right
}

// Span returns the smallest area covering both. They must share a sheet.
func (a Area) Span(b Area) Area {
	return Area{
		Sheet:  a.Sheet,
		Top:    min(a.Top, b.Top),
		Left:   min(a.Left, b.Left),
		Bottom: max(a.Bottom, b.Bottom),
		Right:  max(a.Right, b.Right),
	}
}

// Intersect returns the overlap of two areas, if there is one.
func (a Area) Intersect(b Area) (Area, bool) {
	if !sameSheet(a.Sheet, b.Sheet) {
		return Area{}, false
	}
	out := Area{
		Sheet:  a.Sheet,
		Top:    max(a.Top, b.Top),
		Left:   max(a.Left, b.Left),
		Bottom: min(a.Bottom, b.Bottom),
		Right:  min(a.Right, b.Right),
	}
	if out.Top > out.Bottom || out.Left > out.Right {
		return Area{}, false
	}
	return out, true
}

func (a Area) String() string {
	var b strings.Builder
	b.WriteString(quoteSheet(a.Sheet))
	b.WriteByte('!')
	b.WriteString(model.ColumnName(a.Left))
	b.WriteString(strconv.Itoa(a.Top))
	if !a.Single() {
		b.WriteByte(':')
		b.WriteString(model.ColumnName(a.Right))
		b.WriteString(strconv.Itoa(a.Bottom))
	}
	return b.String()
}

func (a Areas) String() string {
	parts := make([]string, 0, len(a))
	for _, area := range a {
		parts = append(parts, area.String())
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func quoteSheet(sheet string) string {
	for _, r := range sheet {
		if !(r == '_' || r == '.' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
		}
	}
	return sheet
}

func sameSheet(a string, b string) bool {
	return model.FoldName(a) == model.FoldName(b)
}

// ParseArea reads an area such as A1, $A$1:B2, Sheet1!A1:B2 or
// 'My Sheet'!C3. Cells without a sheet belong to the given default.
func ParseArea(sheet string, text string) (Area, error) {
	body := text
	if i := strings.LastIndex(text, "!"); i >= 0 {
		prefix := text[:i]
		body = text[i+1:]
		if len(prefix) >= 2 && prefix[0] == '\'' && prefix[len(prefix)-1] == '\'' {
			prefix = strings.ReplaceAll(prefix[1:len(prefix)-1], "''", "'")
		}
		if prefix == "" {
			return Area{}, fmt.Errorf("empty sheet name in %q", text)
		}
		sheet = prefix
	}
	first, last, isRange := strings.Cut(body, ":")
	a, err := model.ParseCellAddress(first)
	if err != nil {
		return Area{}, err
	}
	area := cellArea(sheet, a)
	if isRange {
		b, err := model.ParseCellAddress(last)
		if err != nil {
			return Area{}, err
		}
		area = area.Span(cellArea(sheet, b))
	}
	return area, nil
}
