// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package grammar

import (
	"gopkg.microglot.org/formula.go/internal/model"
)

// Node is one reduction recorded by the tree-building actions. A tree can be
// replayed later against any Actions, which issues the same resolver calls in
// the same order as immediate evaluation would have.
type Node interface {
	node()
}

type NodeConstant struct {
	Value model.Value
}

type NodeArray struct {
	Rows [][]model.Value
}

type NodeMissing struct{}

type NodeCell struct {
	Ref model.Address
}

type NodeColumnRange struct {
	Ref model.ColumnRangeRef
}

type NodeRowRange struct {
	Ref model.RowRangeRef
}

type NodeVariable struct {
	Ref model.NamedRef
}

type NodeCall struct {
	Name string
	Args []Node
}

type NodeRange struct {
	Operands []Node
}

type NodeIntersect struct {
	Operands []Node
}

type NodeUnion struct {
	Operands []Node
}

type NodePrefix struct {
	Operator model.Operator
	Operand  Node
}

type NodePostfix struct {
	Operator model.Operator
	Operand  Node
}

type NodeInfix struct {
	Left     Node
	Operator model.Operator
	Right    Node
}

func (NodeConstant) node()    {}
func (NodeArray) node()       {}
func (NodeMissing) node()     {}
func (NodeCell) node()        {}
func (NodeColumnRange) node() {}
func (NodeRowRange) node()    {}
func (NodeVariable) node()    {}
func (NodeCall) node()        {}
func (NodeRange) node()       {}
func (NodeIntersect) node()   {}
func (NodeUnion) node()       {}
func (NodePrefix) node()      {}
func (NodePostfix) node()     {}
func (NodeInfix) node()       {}

// NewTreeBuilder returns the actions that record every reduction as a Node.
func NewTreeBuilder() Actions[Node] {
	return treeBuilder{}
}

type treeBuilder struct{}

func (treeBuilder) Constant(v model.Value) Node {
	return NodeConstant{Value: v}
}

func (treeBuilder) Array(rows [][]model.Value) Node {
	return NodeArray{Rows: rows}
}

func (treeBuilder) Missing() Node {
	return NodeMissing{}
}

func (treeBuilder) Cell(ref model.Address) Node {
	return NodeCell{Ref: ref}
}

func (treeBuilder) ColumnRange(ref model.ColumnRangeRef) Node {
	return NodeColumnRange{Ref: ref}
}

func (treeBuilder) RowRange(ref model.RowRangeRef) Node {
	return NodeRowRange{Ref: ref}
}

func (treeBuilder) Variable(ref model.NamedRef) Node {
	return NodeVariable{Ref: ref}
}

func (treeBuilder) Call(name string, args []Node) Node {
	return NodeCall{Name: name, Args: args}
}

func (treeBuilder) Range(operands []Node) Node {
	return NodeRange{Operands: operands}
}

func (treeBuilder) Intersect(operands []Node) Node {
	return NodeIntersect{Operands: operands}
}

func (treeBuilder) Union(operands []Node) Node {
	return NodeUnion{Operands: operands}
}

func (treeBuilder) Prefix(op model.Operator, operand Node) Node {
	return NodePrefix{Operator: op, Operand: operand}
}

func (treeBuilder) Postfix(op model.Operator, operand Node) Node {
	return NodePostfix{Operator: op, Operand: operand}
}

func (treeBuilder) Infix(left Node, op model.Operator, right Node) Node {
	return NodeInfix{Left: left, Operator: op, Right: right}
}

// Replay reduces a tree with the given actions, children first and left to
// right.
func Replay[V any](n Node, actions Actions[V]) V {
	switch n := n.(type) {
	case NodeConstant:
		return actions.Constant(n.Value)
	case NodeArray:
		return actions.Array(n.Rows)
	case NodeMissing:
		return actions.Missing()
	case NodeCell:
		return actions.Cell(n.Ref)
	case NodeColumnRange:
		return actions.ColumnRange(n.Ref)
	case NodeRowRange:
		return actions.RowRange(n.Ref)
	case NodeVariable:
		return actions.Variable(n.Ref)
	case NodeCall:
		return actions.Call(n.Name, replayAll(n.Args, actions))
	case NodeRange:
		return actions.Range(replayAll(n.Operands, actions))
	case NodeIntersect:
		return actions.Intersect(replayAll(n.Operands, actions))
	case NodeUnion:
		return actions.Union(replayAll(n.Operands, actions))
	case NodePrefix:
		return actions.Prefix(n.Operator, Replay(n.Operand, actions))
	case NodePostfix:
		return actions.Postfix(n.Operator, Replay(n.Operand, actions))
	case NodeInfix:
		left := Replay(n.Left, actions)
		return actions.Infix(left, n.Operator, Replay(n.Right, actions))
	default:
		var zero V
		return zero
	}
}

func replayAll[V any](nodes []Node, actions Actions[V]) []V {
	out := make([]V, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Replay(n, actions))
	}
	return out
}
