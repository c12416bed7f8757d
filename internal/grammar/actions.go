// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package grammar

import (
	"gopkg.microglot.org/formula.go/internal/model"
)

// Actions are the semantic actions the grammar invokes as it reduces each
// production. The grammar is generic over the result type so the same rules
// can evaluate immediately, build a tree, or merely recognize input.
type Actions[V any] interface {
	Constant(v model.Value) V
	Array(rows [][]model.Value) V
	Missing() V
	Cell(ref model.Address) V
	ColumnRange(ref model.ColumnRangeRef) V
	RowRange(ref model.RowRangeRef) V
	Variable(ref model.NamedRef) V
	Call(name string, args []V) V
	Range(operands []V) V
	Intersect(operands []V) V
	Union(operands []V) V
	Prefix(op model.Operator, operand V) V
	Postfix(op model.Operator, operand V) V
	Infix(left V, op model.Operator, right V) V
}

// NewEvaluator returns the actions that reduce every production to a final
// value by calling into the resolver and the operators immediately.
func NewEvaluator(resolver model.Context, operators model.Operators) Actions[model.Value] {
	return &evaluator{resolver: resolver, operators: operators}
}

type evaluator struct {
	resolver  model.Context
	operators model.Operators
}

func (e *evaluator) Constant(v model.Value) model.Value {
	return v
}

func (e *evaluator) Array(rows [][]model.Value) model.Value {
	return model.Array{Rows: rows}
}

func (e *evaluator) Missing() model.Value {
	return model.Missing{}
}

func (e *evaluator) Cell(ref model.Address) model.Value {
	return e.resolver.Cell(ref)
}

func (e *evaluator) ColumnRange(ref model.ColumnRangeRef) model.Value {
	return e.resolver.ColumnRange(ref)
}

func (e *evaluator) RowRange(ref model.RowRangeRef) model.Value {
	return e.resolver.RowRange(ref)
}

func (e *evaluator) Variable(ref model.NamedRef) model.Value {
	return e.resolver.Variable(ref)
}

func (e *evaluator) Call(name string, args []model.Value) model.Value {
	return e.resolver.Call(name, args)
}

func (e *evaluator) Range(operands []model.Value) model.Value {
	return e.resolver.Range(operands)
}

func (e *evaluator) Intersect(operands []model.Value) model.Value {
	return e.operators.Intersect(operands)
}

func (e *evaluator) Union(operands []model.Value) model.Value {
	return e.operators.Union(operands)
}

func (e *evaluator) Prefix(op model.Operator, operand model.Value) model.Value {
	return e.operators.Prefix(op, operand)
}

func (e *evaluator) Postfix(op model.Operator, operand model.Value) model.Value {
	return e.operators.Postfix(op, operand)
}

func (e *evaluator) Infix(left model.Value, op model.Operator, right model.Value) model.Value {
	return e.operators.Infix(left, op, right)
}

// recognizer performs no work at all. It stands in for the real actions
// while the grammar probes an alternative it may later discard.
type recognizer[V any] struct{}

func (recognizer[V]) Constant(model.Value) V { return *new(V) }
func (recognizer[V]) Array([][]model.Value) V { return *new(V) }
func (recognizer[V]) Missing() V { return *new(V) }
func (recognizer[V]) Cell(model.Address) V { return *new(V) }
func (recognizer[V]) ColumnRange(model.ColumnRangeRef) V { return *new(V) }
func (recognizer[V]) RowRange(model.RowRangeRef) V { return *new(V) }
func (recognizer[V]) Variable(model.NamedRef) V { return *new(V) }
func (recognizer[V]) Call(string, []V) V { return *new(V) }
func (recognizer[V]) Range([]V) V { return *new(V) }
func (recognizer[V]) Intersect([]V) V { return *new(V) }
func (recognizer[V]) Union([]V) V { return *new(V) }
func (recognizer[V]) Prefix(model.Operator, V) V { return *new(V) }
func (recognizer[V]) Postfix(model.Operator, V) V { return *new(V) }
func (recognizer[V]) Infix(V, model.Operator, V) V { return *new(V) }
