// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package workbook is an in-memory workbook that resolves references for
// the formula grammar. It holds literal cell values and defined names and
// dispatches function calls to a small registry.
package workbook

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.microglot.org/formula.go/internal/calc"
	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/model"
)

// Function implements a spreadsheet function. Arguments arrive exactly as
// the grammar produced them, references included.
type Function func(r *Resolver, args []model.Value) model.Value

type Option func(w *Workbook) error

// OptionWithFunction registers or replaces a function. Names are matched
// without regard to case.
func OptionWithFunction(name string, f Function) Option {
	return func(w *Workbook) error {
		if name == "" || f == nil {
			return fmt.Errorf("function registration requires a name and an implementation")
		}
		w.functions[model.FoldName(name)] = f
		return nil
	}
}

type cellKey struct {
	sheet  string
	row    int
	column int
}

type nameKey struct {
	scope string
	name  string
}

// Workbook is safe for concurrent use. Sheet and name lookups ignore case.
type Workbook struct {
	lock      sync.RWMutex
	cells     map[cellKey]model.Value
	names     map[nameKey]Area
	functions map[string]Function
}

func New(opts ...Option) (*Workbook, error) {
	w := &Workbook{
		cells: make(map[cellKey]model.Value),
		names: make(map[nameKey]Area),
		functions: map[string]Function{
			"SUM":    Sum,
			"CONCAT": Concat,
		},
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Set stores a literal in a cell. Storing a blank clears the cell.
func (self *Workbook) Set(sheet string, row int, column int, v model.Value) {
	self.lock.Lock()
	defer self.lock.Unlock()
	key := cellKey{sheet: model.FoldName(sheet), row: row, column: column}
	if _, ok := v.(model.Blank); ok || v == nil {
		delete(self.cells, key)
		return
	}
	self.cells[key] = v
}

func (self *Workbook) Get(sheet string, row int, column int) model.Value {
	self.lock.RLock()
	defer self.lock.RUnlock()
	v, ok := self.cells[cellKey{sheet: model.FoldName(sheet), row: row, column: column}]
	if !ok {
		return model.Blank{}
	}
	return v
}

// Define binds a name to an area. An empty scope makes the name visible
// from every sheet.
func (self *Workbook) Define(scope string, name string, area Area) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.names[nameKey{scope: model.FoldName(scope), name: model.FoldName(name)}] = area
}

// lookup resolves a name from the given sheet, preferring a sheet-scoped
// definition over a global one.
func (self *Workbook) lookup(sheet string, name string) (Area, bool) {
	self.lock.RLock()
	defer self.lock.RUnlock()
	if area, ok := self.names[nameKey{scope: model.FoldName(sheet), name: model.FoldName(name)}]; ok {
		return area, true
	}
	area, ok := self.names[nameKey{name: model.FoldName(name)}]
	return area, ok
}

type cellValue struct {
	row    int
	column int
	value  model.Value
}

// cellsIn returns every stored cell inside the area in row-major order.
func (self *Workbook) cellsIn(area Area) []cellValue {
	self.lock.RLock()
	defer self.lock.RUnlock()
	sheet := model.FoldName(area.Sheet)
	var out []cellValue
	for key, v := range self.cells {
		if key.sheet == sheet && area.Contains(key.row, key.column) {
			out = append(out, cellValue{row: key.row, column: key.column, value: v})
		}
	}
	slices.SortFunc(out, func(a cellValue, b cellValue) int {
		if a.row != b.row {
			return a.row - b.row
		}
		return a.column - b.column
	})
	return out
}

// Assign applies one line of workbook input relative to the given sheet.
// A cell on the left receives a literal, as in Sheet1!A1=42. Any other
// left side defines a name for the area on the right, as in Total=A1:A3.
// A sheet prefix on a name scopes it to that sheet.
func (self *Workbook) Assign(sheet string, line string) error {
	target, text, ok := strings.Cut(line, "=")
	target = strings.TrimSpace(target)
	if !ok || target == "" {
		return invalidInput(line, "expected TARGET=VALUE")
	}
	if area, err := ParseArea(sheet, target); err == nil {
		if !area.Single() {
			return invalidInput(line, "cannot assign a literal to a range")
		}
		self.Set(area.Sheet, area.Top, area.Left, ParseLiteral(text))
		return nil
	}
	scope, name := "", target
	if i := strings.LastIndex(target, "!"); i >= 0 {
		scope, name = strings.Trim(target[:i], "'"), target[i+1:]
	}
	if name == "" {
		return invalidInput(line, "empty name")
	}
	area, err := ParseArea(sheet, strings.TrimSpace(text))
	if err != nil {
		return invalidInput(line, err.Error())
	}
	self.Define(scope, name, area)
	return nil
}

// ParseLiteral reads a cell value the way it would be typed into a cell:
// signed numbers and percentages, TRUE and FALSE, error literals and double-quoted strings are
// recognized and anything else is text.
func ParseLiteral(text string) model.Value {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.Blank{}
	}
	if strings.HasPrefix(trimmed, `"`) {
		if t, err := model.ParseText(trimmed); err == nil {
			return t
		}
	}
	if n, err := calc.ToNumber(model.Text(trimmed)); err == nil {
		return n
	}
	if b, err := model.ParseBoolean(trimmed); err == nil {
		return b
	}
	if e, err := model.ParseError(trimmed); err == nil {
		return e
	}
	return model.Text(trimmed)
}

func invalidInput(line string, message string) error {
	return exc.New(exc.Location{Source: line}, exc.CodeInvalidWorkbookInput, message)
}
