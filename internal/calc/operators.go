// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package calc

import (
	"math"
	"strings"

	"gopkg.microglot.org/formula.go/internal/model"
)

// Prefix applies a unary sign. A plus sign leaves the operand untouched.
func Prefix(op model.Operator, v model.Value) model.Value {
	if a, ok := v.(model.Array); ok {
		return mapArray(a, func(cell model.Value) model.Value {
			return Prefix(op, cell)
		})
	}
	switch op {
	case model.OperatorAdd:
		return v
	case model.OperatorSubtract:
		n, err := ToNumber(v)
		if err != nil {
			return err.(model.ErrorValue)
		}
		return -n
	}
	return errValue
}

// Postfix applies the percent operator.
func Postfix(op model.Operator, v model.Value) model.Value {
	if a, ok := v.(model.Array); ok {
		return mapArray(a, func(cell model.Value) model.Value {
			return Postfix(op, cell)
		})
	}
	if op != model.OperatorPercent {
		return errValue
	}
	n, err := ToNumber(v)
	if err != nil {
		return err.(model.ErrorValue)
	}
	return n / 100
}

// Infix applies a binary operator. Arrays combine element by element and a
// scalar is repeated against every element of an array.
func Infix(left model.Value, op model.Operator, right model.Value) model.Value {
	la, leftArray := left.(model.Array)
	ra, rightArray := right.(model.Array)
	switch {
	case leftArray && rightArray:
		return zipArrays(la, ra, func(l, r model.Value) model.Value {
			return Infix(l, op, r)
		})
	case leftArray:
		return mapArray(la, func(cell model.Value) model.Value {
			return Infix(cell, op, right)
		})
	case rightArray:
		return mapArray(ra, func(cell model.Value) model.Value {
			return Infix(left, op, cell)
		})
	}
	if e, ok := errorOf(left, right); ok {
		return e
	}

	switch op {
	case model.OperatorConcat:
		l, err := ToText(left)
		if err != nil {
			return err.(model.ErrorValue)
		}
		r, err := ToText(right)
		if err != nil {
			return err.(model.ErrorValue)
		}
		return l + r
	case model.OperatorEqual, model.OperatorNotEqual, model.OperatorLesser,
		model.OperatorGreater, model.OperatorLesserEqual, model.OperatorGreaterEqual:
		return compareWith(op, Compare(left, right))
	}

	l, err := ToNumber(left)
	if err != nil {
		return err.(model.ErrorValue)
	}
	r, err := ToNumber(right)
	if err != nil {
		return err.(model.ErrorValue)
	}
	switch op {
	case model.OperatorAdd:
		return number(float64(l + r))
	case model.OperatorSubtract:
		return number(float64(l - r))
	case model.OperatorMultiply:
		return number(float64(l * r))
	case model.OperatorDivide:
		if r == 0 {
			return errDiv
		}
		return number(float64(l / r))
	case model.OperatorPower:
		if l == 0 && r == 0 {
			return errNum
		}
		if l == 0 && r < 0 {
			return errDiv
		}
		return number(math.Pow(float64(l), float64(r)))
	}
	return errValue
}

// Compare orders two scalars the way a spreadsheet sorts them: numbers
// before text before booleans. Text compares without regard to case and a
// blank takes the zero value of the other side's type.
func Compare(left model.Value, right model.Value) int {
	left, right = blankAs(left, right), blankAs(right, left)
	lr, rr := typeRank(left), typeRank(right)
	if lr != rr {
		return sign(lr - rr)
	}
	switch l := left.(type) {
	case model.Number:
		r := right.(model.Number)
		switch {
		case l < r:
			return -1
		case l > r:
			return 1
		}
		return 0
	case model.Text:
		return strings.Compare(model.FoldName(string(l)), model.FoldName(string(right.(model.Text))))
	case model.Boolean:
		r := right.(model.Boolean)
		switch {
		case l == r:
			return 0
		case !bool(l):
			return -1
		}
		return 1
	}
	return 0
}

func compareWith(op model.Operator, c int) model.Value {
	switch op {
	case model.OperatorEqual:
		return model.Boolean(c == 0)
	case model.OperatorNotEqual:
		return model.Boolean(c != 0)
	case model.OperatorLesser:
		return model.Boolean(c < 0)
	case model.OperatorGreater:
		return model.Boolean(c > 0)
	case model.OperatorLesserEqual:
		return model.Boolean(c <= 0)
	case model.OperatorGreaterEqual:
		return model.Boolean(c >= 0)
	}
	return errValue
}

func blankAs(v model.Value, other model.Value) model.Value {
	switch v.(type) {
	case model.Blank, model.Missing, nil:
	default:
		return v
	}
	switch other.(type) {
	case model.Text:
		return model.Text("")
	case model.Boolean:
		return model.Boolean(false)
	}
	return model.Number(0)
}

func typeRank(v model.Value) int {
	switch v.(type) {
	case model.Number:
		return 0
	case model.Text:
		return 1
	case model.Boolean:
		return 2
	}
	return 3
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func mapArray(a model.Array, f func(model.Value) model.Value) model.Array {
	rows := make([][]model.Value, 0, len(a.Rows))
	for _, row := range a.Rows {
		out := make([]model.Value, 0, len(row))
		for _, cell := range row {
			out = append(out, f(cell))
		}
		rows = append(rows, out)
	}
	return model.Array{Rows: rows}
}

// zipArrays combines two arrays over the larger shape. Positions outside
// either operand become #N/A.
func zipArrays(l model.Array, r model.Array, f func(model.Value, model.Value) model.Value) model.Array {
	height := max(len(l.Rows), len(r.Rows))
	width := max(arrayWidth(l), arrayWidth(r))
	rows := make([][]model.Value, 0, height)
	for y := 0; y < height; y = y + 1 {
		row := make([]model.Value, 0, width)
		for x := 0; x < width; x = x + 1 {
			lv, lok := arrayAt(l, y, x)
			rv, rok := arrayAt(r, y, x)
			if !lok || !rok {
				row = append(row, errNotAvl)
				continue
			}
			row = append(row, f(lv, rv))
		}
		rows = append(rows, row)
	}
	return model.Array{Rows: rows}
}

func arrayWidth(a model.Array) int {
	if len(a.Rows) == 0 {
		return 0
	}
	return len(a.Rows[0])
}

func arrayAt(a model.Array, y int, x int) (model.Value, bool) {
	if y >= len(a.Rows) || x >= len(a.Rows[y]) {
		return nil, false
	}
	return a.Rows[y][x], true
}
