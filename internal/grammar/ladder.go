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

// Operator tables for the binary levels, loosest first.
var (
	comparisonOperators = map[model.TokenType]model.Operator{
		model.TokenTypeEqual:        model.OperatorEqual,
		model.TokenTypeNotEqual:     model.OperatorNotEqual,
		model.TokenTypeLesser:       model.OperatorLesser,
		model.TokenTypeGreater:      model.OperatorGreater,
		model.TokenTypeLesserEqual:  model.OperatorLesserEqual,
		model.TokenTypeGreaterEqual: model.OperatorGreaterEqual,
	}
	concatOperators = map[model.TokenType]model.Operator{
		model.TokenTypeAmpersand: model.OperatorConcat,
	}
	additiveOperators = map[model.TokenType]model.Operator{
		model.TokenTypePlus:  model.OperatorAdd,
		model.TokenTypeMinus: model.OperatorSubtract,
	}
	multiplicativeOperators = map[model.TokenType]model.Operator{
		model.TokenTypeStar:  model.OperatorMultiply,
		model.TokenTypeSlash: model.OperatorDivide,
	}
	exponentOperators = map[model.TokenType]model.Operator{
		model.TokenTypeCaret: model.OperatorPower,
	}
)

// binaryLevels lists every binary operator table. Their key sets must be
// pairwise disjoint.
var binaryLevels = []struct {
	name      string
	operators map[model.TokenType]model.Operator
}{
	{name: "Comparison", operators: comparisonOperators},
	{name: "Concat", operators: concatOperators},
	{name: "Additive", operators: additiveOperators},
	{name: "Multiplicative", operators: multiplicativeOperators},
	{name: "Exponent", operators: exponentOperators},
}

// FormulaText = Comparison EOF
func (p *parseState[V]) parseFormulaText() optional.Optional[V] {
	result := p.parseComparison()
	if !result.IsPresent() {
		return result
	}
	if maybe_token := p.peek(); maybe_token != nil {
		p.report(maybe_token, exc.CodeIncompleteParse, fmt.Sprintf("unexpected %s %q after a complete formula", maybe_token.Type, maybe_token.Value))
		return optional.None[V]()
	}
	return result
}

// Comparison = Concat { ( "=" | "<>" | "<" | ">" | "<=" | ">=" ) Concat }
func (p *parseState[V]) parseComparison() optional.Optional[V] {
	return applyLeftFold(p, comparisonOperators, p.parseConcat)
}

// Concat = Additive { "&" Additive }
func (p *parseState[V]) parseConcat() optional.Optional[V] {
	return applyLeftFold(p, concatOperators, p.parseAdditive)
}

// Additive = Multiplicative { ( "+" | "-" ) Multiplicative }
func (p *parseState[V]) parseAdditive() optional.Optional[V] {
	return applyLeftFold(p, additiveOperators, p.parseMultiplicative)
}

// Multiplicative = Exponent { ( "*" | "/" ) Exponent }
func (p *parseState[V]) parseMultiplicative() optional.Optional[V] {
	return applyLeftFold(p, multiplicativeOperators, p.parseExponent)
}

// Exponent = Percent { "^" Percent }
func (p *parseState[V]) parseExponent() optional.Optional[V] {
	return applyLeftFold(p, exponentOperators, p.parsePercent)
}

// Percent = Unary [ "%" ]
func (p *parseState[V]) parsePercent() optional.Optional[V] {
	maybeOperand := p.parseUnary()
	if !maybeOperand.IsPresent() {
		return maybeOperand
	}
	if !p.at(model.TokenTypePercent) {
		return maybeOperand
	}
	p.advance()
	return optional.Some(p.actions.Postfix(model.OperatorPercent, maybeOperand.Value()))
}

// Unary = { "+" | "-" } Intersection
//
// A run of signs collapses into one Prefix call carrying the net sign.
func (p *parseState[V]) parseUnary() optional.Optional[V] {
	signs := 0
	negative := false
	for p.at(model.TokenTypePlus, model.TokenTypeMinus) {
		if p.peek().Type == model.TokenTypeMinus {
			negative = !negative
		}
		signs = signs + 1
		p.advance()
	}
	maybeOperand := p.parseIntersection()
	if !maybeOperand.IsPresent() || signs == 0 {
		return maybeOperand
	}
	op := model.OperatorAdd
	if negative {
		op = model.OperatorSubtract
	}
	return optional.Some(p.actions.Prefix(op, maybeOperand.Value()))
}
