// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package grammar

import (
	"slices"

	"gopkg.microglot.org/formula.go/internal/model"
	"gopkg.microglot.org/formula.go/internal/optional"
)

// Intersection = RangeJoin { RangeJoin }
//
// Juxtaposed operands intersect only when whitespace separates them. The
// lexer keeps no whitespace in the stream handed to the grammar, so the gap
// is measured between token spans.
func (p *parseState[V]) parseIntersection() optional.Optional[V] {
	maybeOperands := applyGatedRepeat(p, intersectionGate, func() optional.Optional[V] {
		return p.parseRange("")
	})
	if !maybeOperands.IsPresent() {
		return optional.None[V]()
	}
	operands := maybeOperands.Value()
	if len(operands) == 1 {
		return optional.Some(operands[0])
	}
	return optional.Some(p.actions.Intersect(operands))
}

// intersectionGate accepts another intersection operand when there is a gap
// between the two tokens and the next one can start an operand.
func intersectionGate(prev *model.Token, next *model.Token) bool {
	return next.Span.Start.Offset-prev.Span.End.Offset > 0 && slices.Contains(formulaFirst, next.Type)
}

// Paren = RefUnion | FormulaParen
//
// Both alternatives open with "(" so the choice cannot be made on one
// token. The union is tried first without side effects and the grouping is
// the fallback.
func (p *parseState[V]) parseParen() optional.Optional[V] {
	mark := p.tokens.Mark()
	isUnion, seen := p.unionAt[mark]
	if !seen {
		isUnion = p.speculate(func() bool {
			return p.parseRefUnion().IsPresent()
		})
		p.unionAt[mark] = isUnion
	}
	if isUnion {
		return p.parseRefUnion()
	}
	return p.parseFormulaParen()
}

// RefUnion = "(" Intersection { "," Intersection } ")"
func (p *parseState[V]) parseRefUnion() optional.Optional[V] {
	if p.expectOne(model.TokenTypeParenOpen) == nil {
		return optional.None[V]()
	}
	maybeOperands := applySeparated(p, model.TokenTypeComma, p.parseIntersection)
	if !maybeOperands.IsPresent() {
		return optional.None[V]()
	}
	if p.expectOne(model.TokenTypeParenClose) == nil {
		return optional.None[V]()
	}
	operands := maybeOperands.Value()
	if len(operands) == 1 {
		return optional.Some(operands[0])
	}
	return optional.Some(p.actions.Union(operands))
}

// FormulaParen = "(" Comparison ")"
func (p *parseState[V]) parseFormulaParen() optional.Optional[V] {
	if p.expectOne(model.TokenTypeParenOpen) == nil {
		return optional.None[V]()
	}
	maybeInner := p.parseComparison()
	if !maybeInner.IsPresent() {
		return maybeInner
	}
	if p.expectOne(model.TokenTypeParenClose) == nil {
		return optional.None[V]()
	}
	return maybeInner
}
