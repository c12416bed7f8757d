// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package model

// Context resolves references, names and function calls on behalf of the
// grammar. Every method is synchronous. Failures come back as an ErrorValue
// rather than aborting the parse.
type Context interface {
	// Cell resolves a CellRef or a RefErrorRef.
	Cell(ref Address) Value
	ColumnRange(ref ColumnRangeRef) Value
	RowRange(ref RowRangeRef) Value
	// Range joins two or more operands, as in A1:B2:C3, with a single call.
	Range(operands []Value) Value
	// Variable resolves both defined names and reserved names.
	Variable(ref NamedRef) Value
	Call(name string, args []Value) Value
}

type Operator string

const (
	OperatorEqual        Operator = "="
	OperatorNotEqual     Operator = "<>"
	OperatorLesser       Operator = "<"
	OperatorGreater      Operator = ">"
	OperatorLesserEqual  Operator = "<="
	OperatorGreaterEqual Operator = ">="
	OperatorConcat       Operator = "&"
	OperatorAdd          Operator = "+"
	OperatorSubtract     Operator = "-"
	OperatorMultiply     Operator = "*"
	OperatorDivide       Operator = "/"
	OperatorPower        Operator = "^"
	OperatorPercent      Operator = "%"
)

// Operators applies operator semantics to values. Prefix receives the net
// sign of a run of leading signs, so ++---3 arrives as a single "-".
type Operators interface {
	Prefix(op Operator, operand Value) Value
	Postfix(op Operator, operand Value) Value
	Infix(left Value, op Operator, right Value) Value
	Intersect(operands []Value) Value
	Union(operands []Value) Value
}
