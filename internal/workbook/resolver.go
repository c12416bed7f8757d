// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package workbook

import (
	"gopkg.microglot.org/formula.go/internal/calc"
	"gopkg.microglot.org/formula.go/internal/model"
)

var (
	errNull  = model.ErrorValue{Kind: model.ErrorNull}
	errValue = model.ErrorValue{Kind: model.ErrorValueKind}
	errRef   = model.ErrorValue{Kind: model.ErrorRef}
	errName  = model.ErrorValue{Kind: model.ErrorName}
)

// Resolver evaluates formulas against a workbook from the point of view of
// one sheet. References become Area or Areas handles and operators
// dereference single cells before applying calc semantics.
type Resolver struct {
	book  *Workbook
	sheet string
}

var _ model.Context = (*Resolver)(nil)
var _ model.Operators = (*Resolver)(nil)

func (self *Workbook) Resolver(sheet string) *Resolver {
	return &Resolver{book: self, sheet: sheet}
}

func (self *Resolver) sheetOf(sheet string) string {
	if sheet == "" {
		return self.sheet
	}
	return sheet
}

func (self *Resolver) Cell(ref model.Address) model.Value {
	switch ref := ref.(type) {
	case model.CellRef:
		return model.Reference{Handle: cellArea(self.sheetOf(ref.Sheet), ref)}
	case model.RefErrorRef:
		return errRef
	}
	return errValue
}

func (self *Resolver) ColumnRange(ref model.ColumnRangeRef) model.Value {
	return model.Reference{Handle: Area{
		Sheet:  self.sheetOf(ref.Sheet),
		Top:    1,
		Left:   min(ref.First, ref.Last),
		Bottom: model.MaxRows,
		Right:  max(ref.First, ref.Last),
	}}
}

func (self *Resolver) RowRange(ref model.RowRangeRef) model.Value {
	return model.Reference{Handle: Area{
		Sheet:  self.sheetOf(ref.Sheet),
		Top:    min(ref.First, ref.Last),
		Left:   1,
		Bottom: max(ref.First, ref.Last),
		Right:  model.MaxColumns,
	}}
}

// Range spans every operand. All of them must be single areas on the same
// sheet.
func (self *Resolver) Range(operands []model.Value) model.Value {
	var out Area
	for i, operand := range operands {
		if e, ok := operand.(model.ErrorValue); ok {
			return e
		}
		area, ok := singleArea(operand)
		if !ok {
			return errValue
		}
		if i == 0 {
			out = area
			continue
		}
		if !sameSheet(out.Sheet, area.Sheet) {
			return errValue
		}
		out = out.Span(area)
	}
	return model.Reference{Handle: out}
}

func (self *Resolver) Variable(ref model.NamedRef) model.Value {
	area, ok := self.book.lookup(self.sheetOf(ref.Sheet), ref.Name)
	if !ok {
		return errName
	}
	return model.Reference{Handle: area}
}

func (self *Resolver) Call(name string, args []model.Value) model.Value {
	self.book.lock.RLock()
	f, ok := self.book.functions[model.FoldName(name)]
	self.book.lock.RUnlock()
	if !ok {
		return errName
	}
	return f(self, args)
}

func (self *Resolver) Intersect(operands []model.Value) model.Value {
	var out Area
	for i, operand := range operands {
		if e, ok := operand.(model.ErrorValue); ok {
			return e
		}
		area, ok := singleArea(operand)
		if !ok {
			return errValue
		}
		if i == 0 {
			out = area
			continue
		}
		if out, ok = out.Intersect(area); !ok {
			return errNull
		}
	}
	return model.Reference{Handle: out}
}

func (self *Resolver) Union(operands []model.Value) model.Value {
	var out Areas
	for _, operand := range operands {
		if e, ok := operand.(model.ErrorValue); ok {
			return e
		}
		ref, ok := operand.(model.Reference)
		if !ok {
			return errValue
		}
		switch h := ref.Handle.(type) {
		case Area:
			out = append(out, h)
		case Areas:
			out = append(out, h...)
		default:
			return errValue
		}
	}
	return model.Reference{Handle: out}
}

func (self *Resolver) Prefix(op model.Operator, operand model.Value) model.Value {
	return calc.Prefix(op, self.Deref(operand))
}

func (self *Resolver) Postfix(op model.Operator, operand model.Value) model.Value {
	return calc.Postfix(op, self.Deref(operand))
}

func (self *Resolver) Infix(left model.Value, op model.Operator, right model.Value) model.Value {
	return calc.Infix(self.Deref(left), op, self.Deref(right))
}

// Deref replaces a single-cell reference with the cell's content. Other
// references cannot act as scalars and become #VALUE!.
func (self *Resolver) Deref(v model.Value) model.Value {
	if _, ok := v.(model.Reference); !ok {
		return v
	}
	area, ok := singleArea(v)
	if !ok || !area.Single() {
		return errValue
	}
	return self.book.Get(area.Sheet, area.Top, area.Left)
}

// Result prepares a final formula value for display. Single cells are
// dereferenced and wider references are left intact.
func (self *Resolver) Result(v model.Value) model.Value {
	if area, ok := singleArea(v); ok && area.Single() {
		return self.book.Get(area.Sheet, area.Top, area.Left)
	}
	return v
}

// Values flattens a value into the scalars it holds. References yield their
// stored cells in row-major order and skip blanks.
func (self *Resolver) Values(v model.Value) []model.Value {
	switch v := v.(type) {
	case model.Reference:
		var areas Areas
		switch h := v.Handle.(type) {
		case Area:
			areas = Areas{h}
		case Areas:
			areas = h
		default:
			return []model.Value{errValue}
		}
		var out []model.Value
		for _, area := range areas {
			for _, cell := range self.book.cellsIn(area) {
				out = append(out, cell.value)
			}
		}
		return out
	case model.Array:
		var out []model.Value
		for _, row := range v.Rows {
			out = append(out, row...)
		}
		return out
	case model.Missing:
		return nil
	}
	return []model.Value{v}
}

// singleArea unwraps a reference that names exactly one rectangle.
func singleArea(v model.Value) (Area, bool) {
	ref, ok := v.(model.Reference)
	if !ok {
		return Area{}, false
	}
	switch h := ref.Handle.(type) {
	case Area:
		return h, true
	case Areas:
		if len(h) == 1 {
			return h[0], true
		}
	}
	return Area{}, false
}
