// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package grammar

import (
	"slices"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/iter"
	"gopkg.microglot.org/formula.go/internal/model"
	"gopkg.microglot.org/formula.go/internal/optional"
)

// parseState is the position and the active actions for one parse. Rules
// return an absent result once they have reported an exception, and every
// caller unwinds without consuming more input.
type parseState[V any] struct {
	source           string
	reporter         exc.Reporter
	actions          Actions[V]
	tokens           *iter.Cursor[*model.Token]
	missingArguments bool
	// unionAt remembers the outcome of the union probe for each opening
	// parenthesis so nested parentheses are probed once per position.
	unionAt map[int]bool
}

func (p *parseState[V]) peek() *model.Token {
	return p.tokens.Peek(0).ValueOr(nil)
}

func (p *parseState[V]) previous() *model.Token {
	return p.tokens.Previous().ValueOr(nil)
}

func (p *parseState[V]) advance() {
	p.tokens.Advance()
}

// at reports whether the current token is one of the given kinds.
func (p *parseState[V]) at(kinds ...model.TokenType) bool {
	maybe_token := p.peek()
	return maybe_token != nil && slices.Contains(kinds, maybe_token.Type)
}

func (p *parseState[V]) expectOne(kind model.TokenType) *model.Token {
	return p.expectOneOf([]model.TokenType{kind})
}

// reports an error if current token isn't one of the given expected types.
// advances on success
func (p *parseState[V]) expectOneOf(kinds []model.TokenType) *model.Token {
	maybe_token := p.peek()
	if maybe_token != nil && slices.Contains(kinds, maybe_token.Type) {
		p.advance()
		return maybe_token
	}
	p.unexpected(kinds)
	return nil
}

// unexpected reports that the current token, or the end of input, is not
// one of the expected kinds.
func (p *parseState[V]) unexpected(kinds []model.TokenType) {
	code := exc.CodeUnexpectedToken
	maybe_token := p.peek()
	if maybe_token == nil {
		code = exc.CodeUnexpectedEOF
	}
	_ = p.reporter.Report(exc.NewSyntax(p.location(), code, maybe_token, kinds))
}

// report raises an exception positioned on the given token.
func (p *parseState[V]) report(t *model.Token, code string, message string) {
	loc := p.location()
	if t != nil {
		loc.Span = t.Span
	}
	_ = p.reporter.Report(exc.New(loc, code, message))
}

// location points just past the last consumed token.
func (p *parseState[V]) location() exc.Location {
	loc := exc.Location{Source: p.source}
	if prev := p.previous(); prev != nil {
		loc.Span = model.Span{Start: prev.Span.End, End: prev.Span.End}
	}
	return loc
}

// speculate reports whether rule would match at the current position. The
// attempt runs with recognizer actions and a discarding reporter, and the
// position is restored afterwards, so the probe has no observable effect.
func (p *parseState[V]) speculate(rule func() bool) bool {
	mark := p.tokens.Mark()
	actions, reporter := p.actions, p.reporter
	p.actions, p.reporter = recognizer[V]{}, exc.NewDiscardReporter()
	defer func() {
		p.tokens.Reset(mark)
		p.actions, p.reporter = actions, reporter
	}()
	return rule()
}

// applyLeftFold parses one binary level of the precedence ladder:
//
//	Level = Next { operator Next }
//
// and folds the operands from the left.
func applyLeftFold[V any](p *parseState[V], operators map[model.TokenType]model.Operator, next func() optional.Optional[V]) optional.Optional[V] {
	maybeLeft := next()
	if !maybeLeft.IsPresent() {
		return maybeLeft
	}
	left := maybeLeft.Value()
	for {
		maybe_token := p.peek()
		if maybe_token == nil {
			break
		}
		op, ok := operators[maybe_token.Type]
		if !ok {
			break
		}
		p.advance()
		maybeRight := next()
		if !maybeRight.IsPresent() {
			return maybeRight
		}
		left = p.actions.Infix(left, op, maybeRight.Value())
	}
	return optional.Some(left)
}

// applySeparated parses Item { separator Item } and returns every item.
func applySeparated[V any](p *parseState[V], separator model.TokenType, item func() optional.Optional[V]) optional.Optional[[]V] {
	var items []V
	for {
		maybeItem := item()
		if !maybeItem.IsPresent() {
			return optional.None[[]V]()
		}
		items = append(items, maybeItem.Value())
		if !p.at(separator) {
			break
		}
		p.advance()
	}
	return optional.Some(items)
}

// applyGatedRepeat parses Item { Item }, continuing only while gate accepts
// the boundary between the last consumed token and the next one.
func applyGatedRepeat[V any](p *parseState[V], gate func(prev *model.Token, next *model.Token) bool, item func() optional.Optional[V]) optional.Optional[[]V] {
	var items []V
	for {
		maybeItem := item()
		if !maybeItem.IsPresent() {
			return optional.None[[]V]()
		}
		items = append(items, maybeItem.Value())
		prev, next := p.previous(), p.peek()
		if prev == nil || next == nil || !gate(prev, next) {
			break
		}
	}
	return optional.Some(items)
}
