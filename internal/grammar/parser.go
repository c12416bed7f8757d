// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package grammar

import (
	"context"
	"errors"
	"fmt"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/iter"
	"gopkg.microglot.org/formula.go/internal/model"
)

// Parser holds the immutable configuration for parsing formulas. It keeps no
// per-formula state: every call to Parse, Evaluate or Build works on a fresh
// position and may run concurrently with other calls.
type Parser struct {
	vocab            *model.Vocabulary
	reporter         exc.Reporter
	resolver         model.Context
	operators        model.Operators
	missingArguments bool
}

type Option func(p *Parser) error

// OptionWithReporter receives a copy of every exception raised while
// parsing, in addition to the error returned to the caller.
func OptionWithReporter(reporter exc.Reporter) Option {
	return func(p *Parser) error {
		p.reporter = reporter
		return nil
	}
}

func OptionWithResolver(resolver model.Context) Option {
	return func(p *Parser) error {
		p.resolver = resolver
		return nil
	}
}

func OptionWithOperators(operators model.Operators) Option {
	return func(p *Parser) error {
		p.operators = operators
		return nil
	}
}

// OptionWithMissingArguments controls empty argument slots such as the
// middle one in F(1,,2). When false, the default, empty slots are dropped.
// When true, each one contributes a model.Missing value.
func OptionWithMissingArguments(enabled bool) Option {
	return func(p *Parser) error {
		p.missingArguments = enabled
		return nil
	}
}

// New validates the grammar against the vocabulary and returns a Parser.
func New(vocab *model.Vocabulary, opts ...Option) (*Parser, error) {
	if vocab == nil {
		return nil, fmt.Errorf("parser requires a vocabulary")
	}
	p := &Parser{vocab: vocab}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if err := validateGrammar(vocab); err != nil {
		return nil, err
	}
	return p, nil
}

// Evaluate parses the tokens and reduces them to a single value through the
// configured resolver and operators.
func (self *Parser) Evaluate(ctx context.Context, source string, tokens model.Iterator[*model.Token]) (model.Value, error) {
	if self.resolver == nil || self.operators == nil {
		e := exc.New(exc.Location{Source: source}, exc.CodeMissingResolver, "evaluation requires a resolver and operators")
		exc.Forward(self.reporter, []exc.Exception{e})
		return nil, exc.MultiException{e}
	}
	return Parse(ctx, self, source, tokens, NewEvaluator(self.resolver, self.operators))
}

// Build parses the tokens into a tree without touching any resolver.
func (self *Parser) Build(ctx context.Context, source string, tokens model.Iterator[*model.Token]) (Node, error) {
	return Parse(ctx, self, source, tokens, NewTreeBuilder())
}

// Parse runs the grammar over the whole token stream with the given actions.
// Any token left over after a complete formula is an error.
func Parse[V any](ctx context.Context, self *Parser, source string, tokens model.Iterator[*model.Token], actions Actions[V]) (V, error) {
	var zero V
	prepared, err := Prepare(ctx, tokens)
	if err != nil {
		var e exc.Exception
		if errors.As(err, &e) {
			return zero, exc.MultiException{e}
		}
		e = exc.WrapUnknown(exc.Location{Source: source}, err)
		exc.Forward(self.reporter, []exc.Exception{e})
		return zero, exc.MultiException{e}
	}

	local := exc.NewReporter(nil)
	state := &parseState[V]{
		source:           source,
		reporter:         local,
		actions:          actions,
		tokens:           iter.NewCursor(prepared),
		missingArguments: self.missingArguments,
		unionAt:          make(map[int]bool),
	}
	result := state.parseFormulaText()

	caught := local.Reported()
	exc.Forward(self.reporter, caught)
	if len(caught) > 0 {
		return zero, exc.MultiException(caught)
	}
	if !result.IsPresent() {
		e := exc.New(exc.Location{Source: source}, exc.CodeUnknownFatal, "parse failed without a diagnostic")
		return zero, exc.MultiException{e}
	}
	return result.Value(), nil
}

// Prepare drains a token stream, drops whitespace and normalizes every
// image. Whitespace only matters through the offsets of the tokens around it.
func Prepare(ctx context.Context, tokens model.Iterator[*model.Token]) ([]*model.Token, error) {
	significant := iter.NewIteratorFilter(tokens, model.Filter[*model.Token](iter.FilterFunc[*model.Token](func(ctx context.Context, t *model.Token) bool {
		return t.Type != model.TokenTypeWhitespace
	})))
	return iter.Collect(ctx, iter.NewIteratorMap(significant, Normalize))
}
