// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package grammar

import (
	"fmt"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/model"
	"gopkg.microglot.org/formula.go/internal/optional"
)

// RangeJoin = Atom { ":" Atom }
//
// A non-empty sheet restricts every operand to a reference item on that
// sheet, as in Sheet1!A1:B2. Operands after the first may repeat the sheet
// prefix, as in Sheet1!A1:Sheet1!B2.
func (p *parseState[V]) parseRange(sheet string) optional.Optional[V] {
	first := true
	maybeOperands := applySeparated(p, model.TokenTypeColon, func() optional.Optional[V] {
		if sheet != "" && !first && !p.skipSheetPrefix(sheet) {
			return optional.None[V]()
		}
		first = false
		return p.parseFormula(sheet)
	})
	if !maybeOperands.IsPresent() {
		return optional.None[V]()
	}
	operands := maybeOperands.Value()
	if len(operands) == 1 {
		return optional.Some(operands[0])
	}
	return optional.Some(p.actions.Range(operands))
}

// skipSheetPrefix consumes an optional sheet prefix inside a sheet-restricted
// range. The prefix must name the range's sheet.
func (p *parseState[V]) skipSheetPrefix(sheet string) bool {
	if !p.at(model.TokenTypeSheet, model.TokenTypeSheetQuoted) {
		return true
	}
	prefix := p.peek()
	p.advance()
	if model.FoldName(prefix.Value) != model.FoldName(sheet) {
		p.report(prefix, exc.CodeUnexpectedToken, fmt.Sprintf("range on sheet %s cannot extend to sheet %s", sheet, prefix.Value))
		return false
	}
	return true
}

// Atom = reserved_name | Reference | Paren | Constant | FunctionCall | ConstantArray
func (p *parseState[V]) parseFormula(sheet string) optional.Optional[V] {
	if sheet != "" {
		return p.parseReferenceItem(sheet)
	}
	maybe_token := p.peek()
	if maybe_token == nil {
		p.unexpected(formulaFirst)
		return optional.None[V]()
	}
	alt, ok := formulaDispatch[maybe_token.Type]
	if !ok {
		p.unexpected(formulaFirst)
		return optional.None[V]()
	}
	switch alt {
	case altReservedName:
		p.advance()
		return optional.Some(p.actions.Variable(model.NamedRef{Name: maybe_token.Value}))
	case altReference:
		return p.parseReference()
	case altParen:
		return p.parseParen()
	case altConstant:
		return p.parseConstant()
	case altFunctionCall:
		return p.parseFunctionCall()
	case altConstantArray:
		return p.parseConstantArray()
	}
	p.unexpected(formulaFirst)
	return optional.None[V]()
}

// Reference = ReferenceItem | ReferenceFunctionCall | SheetPrefix RangeJoin
func (p *parseState[V]) parseReference() optional.Optional[V] {
	switch {
	case p.at(model.TokenTypeRefFunction, model.TokenTypeConditionalRefFunction):
		return p.parseReferenceFunctionCall()
	case p.at(model.TokenTypeSheet, model.TokenTypeSheetQuoted):
		prefix := p.peek()
		p.advance()
		if prefix.Value == "" {
			p.report(prefix, exc.CodeInvalidLiteral, "empty sheet name")
			return optional.None[V]()
		}
		return p.parseRange(prefix.Value)
	}
	return p.parseReferenceItem("")
}

// ReferenceItem = cell | name | column_range | row_range | ref_error
func (p *parseState[V]) parseReferenceItem(sheet string) optional.Optional[V] {
	maybe_token := p.expectOneOf(referenceItemFirst)
	if maybe_token == nil {
		return optional.None[V]()
	}
	switch maybe_token.Type {
	case model.TokenTypeCell:
		ref, err := model.ParseCellAddress(maybe_token.Value)
		if err != nil {
			p.report(maybe_token, exc.CodeInvalidLiteral, err.Error())
			return optional.None[V]()
		}
		ref.Sheet = sheet
		return optional.Some(p.actions.Cell(ref))
	case model.TokenTypeName:
		return optional.Some(p.actions.Variable(model.NamedRef{Sheet: sheet, Name: maybe_token.Value}))
	case model.TokenTypeColumnRange:
		ref, err := model.ParseColumnRange(maybe_token.Value)
		if err != nil {
			p.report(maybe_token, exc.CodeInvalidLiteral, err.Error())
			return optional.None[V]()
		}
		ref.Sheet = sheet
		return optional.Some(p.actions.ColumnRange(ref))
	case model.TokenTypeRowRange:
		ref, err := model.ParseRowRange(maybe_token.Value)
		if err != nil {
			p.report(maybe_token, exc.CodeInvalidLiteral, err.Error())
			return optional.None[V]()
		}
		ref.Sheet = sheet
		return optional.Some(p.actions.RowRange(ref))
	default:
		return optional.Some(p.actions.Cell(model.RefErrorRef{Text: maybe_token.Value}))
	}
}

// ReferenceFunctionCall = ( ref_function | conditional_ref_function ) Arguments ")"
func (p *parseState[V]) parseReferenceFunctionCall() optional.Optional[V] {
	name := p.expectOneOf([]model.TokenType{model.TokenTypeRefFunction, model.TokenTypeConditionalRefFunction})
	if name == nil {
		return optional.None[V]()
	}
	return p.finishCall(name)
}

// FunctionCall = function Arguments ")"
func (p *parseState[V]) parseFunctionCall() optional.Optional[V] {
	name := p.expectOne(model.TokenTypeFunction)
	if name == nil {
		return optional.None[V]()
	}
	return p.finishCall(name)
}

func (p *parseState[V]) finishCall(name *model.Token) optional.Optional[V] {
	maybeArgs := p.parseArguments()
	if !maybeArgs.IsPresent() {
		return optional.None[V]()
	}
	if p.expectOne(model.TokenTypeParenClose) == nil {
		return optional.None[V]()
	}
	return optional.Some(p.actions.Call(name.Value, maybeArgs.Value()))
}

// Arguments = { "," } [ Comparison { "," [ Comparison ] } ]
//
// Every comma closes a slot. Empty slots are dropped unless missing
// arguments are enabled, in which case each contributes a Missing value.
func (p *parseState[V]) parseArguments() optional.Optional[[]V] {
	args := []V{}
	commas := 0
	for {
		slotFilled := false
		if p.at(argumentFirst...) {
			maybeArg := p.parseComparison()
			if !maybeArg.IsPresent() {
				return optional.None[[]V]()
			}
			args = append(args, maybeArg.Value())
			slotFilled = true
		}
		if !p.at(model.TokenTypeComma) {
			if commas > 0 && !slotFilled && p.missingArguments {
				args = append(args, p.actions.Missing())
			}
			break
		}
		p.advance()
		if !slotFilled && p.missingArguments {
			args = append(args, p.actions.Missing())
		}
		commas = commas + 1
	}
	return optional.Some(args)
}

// Constant = number | string | boolean | formula_error
func (p *parseState[V]) parseConstant() optional.Optional[V] {
	maybe_token := p.expectOneOf(constantFirst)
	if maybe_token == nil {
		return optional.None[V]()
	}
	value, err := literalValue(maybe_token)
	if err != nil {
		p.report(maybe_token, exc.CodeInvalidLiteral, err.Error())
		return optional.None[V]()
	}
	return optional.Some(p.actions.Constant(value))
}

// ConstantArray = "{" ArrayConstant { ( "," | ";" ) ArrayConstant } "}"
//
// Commas separate columns and semicolons separate rows. Every row must have
// the same width.
func (p *parseState[V]) parseConstantArray() optional.Optional[V] {
	open := p.expectOne(model.TokenTypeCurlyOpen)
	if open == nil {
		return optional.None[V]()
	}
	rows := [][]model.Value{{}}
	for {
		value, ok := p.parseArrayConstant()
		if !ok {
			return optional.None[V]()
		}
		last := len(rows) - 1
		rows[last] = append(rows[last], value)
		separator := p.peek()
		if separator == nil || (separator.Type != model.TokenTypeComma && separator.Type != model.TokenTypeSemicolon) {
			break
		}
		p.advance()
		if separator.Type == model.TokenTypeSemicolon {
			rows = append(rows, []model.Value{})
		}
	}
	if p.expectOne(model.TokenTypeCurlyClose) == nil {
		return optional.None[V]()
	}
	for _, row := range rows[1:] {
		if len(row) != len(rows[0]) {
			p.report(open, exc.CodeInvalidLiteral, fmt.Sprintf("array rows must have the same width: %d and %d", len(rows[0]), len(row)))
			return optional.None[V]()
		}
	}
	return optional.Some(p.actions.Array(rows))
}

// ArrayConstant = [ "+" | "-" ] number | string | boolean | formula_error | ref_error
func (p *parseState[V]) parseArrayConstant() (model.Value, bool) {
	if p.at(model.TokenTypePlus, model.TokenTypeMinus) {
		sign := p.peek()
		p.advance()
		maybe_token := p.expectOne(model.TokenTypeNumber)
		if maybe_token == nil {
			return nil, false
		}
		n, err := model.ParseNumber(maybe_token.Value)
		if err != nil {
			p.report(maybe_token, exc.CodeInvalidLiteral, err.Error())
			return nil, false
		}
		if sign.Type == model.TokenTypeMinus {
			n = -n
		}
		return n, true
	}
	maybe_token := p.expectOneOf(arrayConstantFirst)
	if maybe_token == nil {
		return nil, false
	}
	if maybe_token.Type == model.TokenTypeRefError {
		return model.ErrorValue{Kind: model.ErrorRef}, true
	}
	value, err := literalValue(maybe_token)
	if err != nil {
		p.report(maybe_token, exc.CodeInvalidLiteral, err.Error())
		return nil, false
	}
	return value, true
}

// literalValue converts a constant token into its value.
func literalValue(t *model.Token) (model.Value, error) {
	switch t.Type {
	case model.TokenTypeNumber:
		return model.ParseNumber(t.Value)
	case model.TokenTypeString:
		return model.ParseText(t.Value)
	case model.TokenTypeBoolean:
		return model.ParseBoolean(t.Value)
	case model.TokenTypeFormulaError:
		return model.ParseError(t.Value)
	}
	return nil, fmt.Errorf("%s is not a literal", t.Type)
}
