// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package grammar

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/model"
)

// EncodeTree converts a tree to a protobuf Struct so it can be stored or
// printed with protojson. DecodeTree reverses it.
func EncodeTree(n Node) (*structpb.Struct, error) {
	fields, err := encodeNode(n)
	if err != nil {
		return nil, exc.Wrap(treeLocation, exc.CodeInvalidTreeEncoding, err)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, exc.Wrap(treeLocation, exc.CodeInvalidTreeEncoding, err)
	}
	return s, nil
}

var treeLocation = exc.Location{Source: "tree"}

func encodeNode(n Node) (map[string]any, error) {
	switch n := n.(type) {
	case NodeConstant:
		v, err := encodeValue(n.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "constant", "value": v}, nil
	case NodeArray:
		rows := make([]any, 0, len(n.Rows))
		for _, row := range n.Rows {
			cells := make([]any, 0, len(row))
			for _, cell := range row {
				v, err := encodeValue(cell)
				if err != nil {
					return nil, err
				}
				cells = append(cells, v)
			}
			rows = append(rows, cells)
		}
		return map[string]any{"node": "array", "rows": rows}, nil
	case NodeMissing:
		return map[string]any{"node": "missing"}, nil
	case NodeCell:
		switch ref := n.Ref.(type) {
		case model.CellRef:
			return map[string]any{
				"node":           "cell",
				"sheet":          ref.Sheet,
				"column":         ref.Column,
				"row":            ref.Row,
				"absoluteColumn": ref.AbsoluteColumn,
				"absoluteRow":    ref.AbsoluteRow,
			}, nil
		case model.RefErrorRef:
			return map[string]any{"node": "refError", "text": ref.Text}, nil
		}
		return nil, fmt.Errorf("cannot encode cell address %T", n.Ref)
	case NodeColumnRange:
		return map[string]any{"node": "columnRange", "sheet": n.Ref.Sheet, "first": n.Ref.First, "last": n.Ref.Last}, nil
	case NodeRowRange:
		return map[string]any{"node": "rowRange", "sheet": n.Ref.Sheet, "first": n.Ref.First, "last": n.Ref.Last}, nil
	case NodeVariable:
		return map[string]any{"node": "variable", "sheet": n.Ref.Sheet, "name": n.Ref.Name}, nil
	case NodeCall:
		args, err := encodeNodes(n.Args)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "call", "name": n.Name, "args": args}, nil
	case NodeRange:
		operands, err := encodeNodes(n.Operands)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "range", "operands": operands}, nil
	case NodeIntersect:
		operands, err := encodeNodes(n.Operands)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "intersect", "operands": operands}, nil
	case NodeUnion:
		operands, err := encodeNodes(n.Operands)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "union", "operands": operands}, nil
	case NodePrefix:
		operand, err := encodeNode(n.Operand)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "prefix", "operator": string(n.Operator), "operand": operand}, nil
	case NodePostfix:
		operand, err := encodeNode(n.Operand)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "postfix", "operator": string(n.Operator), "operand": operand}, nil
	case NodeInfix:
		left, err := encodeNode(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := encodeNode(n.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "infix", "left": left, "operator": string(n.Operator), "right": right}, nil
	}
	return nil, fmt.Errorf("cannot encode node %T", n)
}

func encodeNodes(nodes []Node) ([]any, error) {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		fields, err := encodeNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, fields)
	}
	return out, nil
}

func encodeValue(v model.Value) (map[string]any, error) {
	switch v := v.(type) {
	case model.Number:
		return map[string]any{"number": float64(v)}, nil
	case model.Text:
		return map[string]any{"text": string(v)}, nil
	case model.Boolean:
		return map[string]any{"boolean": bool(v)}, nil
	case model.ErrorValue:
		return map[string]any{"error": string(v.Kind)}, nil
	}
	return nil, fmt.Errorf("cannot encode value %T", v)
}

// DecodeTree rebuilds a tree produced by EncodeTree.
func DecodeTree(s *structpb.Struct) (Node, error) {
	n, err := decodeNode(s.AsMap())
	if err != nil {
		return nil, exc.Wrap(treeLocation, exc.CodeInvalidTreeEncoding, err)
	}
	return n, nil
}

func decodeNode(fields map[string]any) (Node, error) {
	kind, _ := fields["node"].(string)
	switch kind {
	case "constant":
		v, err := decodeValue(fields["value"])
		if err != nil {
			return nil, err
		}
		return NodeConstant{Value: v}, nil
	case "array":
		rawRows, _ := fields["rows"].([]any)
		rows := make([][]model.Value, 0, len(rawRows))
		for _, rawRow := range rawRows {
			cells, _ := rawRow.([]any)
			row := make([]model.Value, 0, len(cells))
			for _, cell := range cells {
				v, err := decodeValue(cell)
				if err != nil {
					return nil, err
				}
				row = append(row, v)
			}
			rows = append(rows, row)
		}
		return NodeArray{Rows: rows}, nil
	case "missing":
		return NodeMissing{}, nil
	case "cell":
		return NodeCell{Ref: model.CellRef{
			Sheet:          stringField(fields, "sheet"),
			Column:         intField(fields, "column"),
			Row:            intField(fields, "row"),
			AbsoluteColumn: boolField(fields, "absoluteColumn"),
			AbsoluteRow:    boolField(fields, "absoluteRow"),
		}}, nil
	case "refError":
		return NodeCell{Ref: model.RefErrorRef{Text: stringField(fields, "text")}}, nil
	case "columnRange":
		return NodeColumnRange{Ref: model.ColumnRangeRef{
			Sheet: stringField(fields, "sheet"),
			First: intField(fields, "first"),
			Last:  intField(fields, "last"),
		}}, nil
	case "rowRange":
		return NodeRowRange{Ref: model.RowRangeRef{
			Sheet: stringField(fields, "sheet"),
			First: intField(fields, "first"),
			Last:  intField(fields, "last"),
		}}, nil
	case "variable":
		return NodeVariable{Ref: model.NamedRef{Sheet: stringField(fields, "sheet"), Name: stringField(fields, "name")}}, nil
	case "call":
		args, err := decodeNodes(fields["args"])
		if err != nil {
			return nil, err
		}
		return NodeCall{Name: stringField(fields, "name"), Args: args}, nil
	case "range", "intersect", "union":
		operands, err := decodeNodes(fields["operands"])
		if err != nil {
			return nil, err
		}
		switch kind {
		case "range":
			return NodeRange{Operands: operands}, nil
		case "intersect":
			return NodeIntersect{Operands: operands}, nil
		}
		return NodeUnion{Operands: operands}, nil
	case "prefix", "postfix":
		operandFields, _ := fields["operand"].(map[string]any)
		operand, err := decodeNode(operandFields)
		if err != nil {
			return nil, err
		}
		op := model.Operator(stringField(fields, "operator"))
		if kind == "prefix" {
			return NodePrefix{Operator: op, Operand: operand}, nil
		}
		return NodePostfix{Operator: op, Operand: operand}, nil
	case "infix":
		leftFields, _ := fields["left"].(map[string]any)
		left, err := decodeNode(leftFields)
		if err != nil {
			return nil, err
		}
		rightFields, _ := fields["right"].(map[string]any)
		right, err := decodeNode(rightFields)
		if err != nil {
			return nil, err
		}
		return NodeInfix{Left: left, Operator: model.Operator(stringField(fields, "operator")), Right: right}, nil
	}
	return nil, fmt.Errorf("unknown node kind %q", kind)
}

func decodeNodes(raw any) ([]Node, error) {
	items, _ := raw.([]any)
	out := make([]Node, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]any)
		n, err := decodeNode(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeValue(raw any) (model.Value, error) {
	fields, _ := raw.(map[string]any)
	if v, ok := fields["number"].(float64); ok {
		return model.Number(v), nil
	}
	if v, ok := fields["text"].(string); ok {
		return model.Text(v), nil
	}
	if v, ok := fields["boolean"].(bool); ok {
		return model.Boolean(v), nil
	}
	if v, ok := fields["error"].(string); ok {
		return model.ParseError(v)
	}
	return nil, fmt.Errorf("cannot decode value %v", raw)
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}

// intField reads a number field. Struct values carry every number as a
// float64.
func intField(fields map[string]any, key string) int {
	v, _ := fields[key].(float64)
	return int(v)
}

func boolField(fields map[string]any, key string) bool {
	v, _ := fields[key].(bool)
	return v
}
