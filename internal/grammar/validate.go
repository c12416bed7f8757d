// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package grammar

import (
	"fmt"
	"slices"
	"sync"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/model"
)

type alternative int

const (
	altReservedName alternative = iota
	altReference
	altParen
	altConstant
	altFunctionCall
	altConstantArray
)

// production is one alternative of a choice point together with the token
// kinds that may open it. Names match the productions in Grammar.
type production struct {
	alt   alternative
	name  string
	first []model.TokenType
}

var (
	referenceItemFirst = []model.TokenType{
		model.TokenTypeCell,
		model.TokenTypeName,
		model.TokenTypeColumnRange,
		model.TokenTypeRowRange,
		model.TokenTypeRefError,
	}
	referenceFirst = append(slices.Clone(referenceItemFirst),
		model.TokenTypeRefFunction,
		model.TokenTypeConditionalRefFunction,
		model.TokenTypeSheet,
		model.TokenTypeSheetQuoted,
	)
	constantFirst = []model.TokenType{
		model.TokenTypeNumber,
		model.TokenTypeString,
		model.TokenTypeBoolean,
		model.TokenTypeFormulaError,
	}
	arrayConstantFirst = append(slices.Clone(constantFirst), model.TokenTypeRefError)
)

// formulaProductions are the alternatives of Atom. The parser dispatches on
// the leading token so their first sets must not overlap.
var formulaProductions = []production{
	{alt: altReservedName, name: "reserved_name", first: []model.TokenType{model.TokenTypeReservedName}},
	{alt: altReference, name: "Reference", first: referenceFirst},
	{alt: altParen, name: "Paren", first: []model.TokenType{model.TokenTypeParenOpen}},
	{alt: altConstant, name: "Constant", first: constantFirst},
	{alt: altFunctionCall, name: "FunctionCall", first: []model.TokenType{model.TokenTypeFunction}},
	{alt: altConstantArray, name: "ConstantArray", first: []model.TokenType{model.TokenTypeCurlyOpen}},
}

// parenProductions are the alternatives of Paren. They overlap on "(" and
// are told apart by speculation.
var parenProductions = []production{
	{name: "RefUnion", first: []model.TokenType{model.TokenTypeParenOpen}},
	{name: "FormulaParen", first: []model.TokenType{model.TokenTypeParenOpen}},
}

var (
	formulaDispatch = dispatchTable(formulaProductions)
	formulaFirst    = firstSet(formulaProductions)
	argumentFirst   = append(slices.Clone(formulaFirst), model.TokenTypePlus, model.TokenTypeMinus)
)

// Ambiguity names a choice point that one token of lookahead cannot decide.
type Ambiguity string

const (
	// AmbiguityParenUnion is "(" opening either a reference union or a
	// grouped expression. Resolved by speculating on the union.
	AmbiguityParenUnion Ambiguity = "ParenUnion"
	// AmbiguityIntersection is an operand directly following another one.
	// Resolved by requiring whitespace between them.
	AmbiguityIntersection Ambiguity = "Intersection"
)

// ToleratedAmbiguities lists every ambiguity the grammar accepts. Any other
// overlap makes New fail.
func ToleratedAmbiguities() []Ambiguity {
	return []Ambiguity{AmbiguityParenUnion, AmbiguityIntersection}
}

// intersectionFollow is every kind that may legally follow an intersection
// operand without starting another one.
var intersectionFollow = []model.TokenType{
	model.TokenTypeColon,
	model.TokenTypeComma,
	model.TokenTypeSemicolon,
	model.TokenTypeParenClose,
	model.TokenTypeCurlyClose,
	model.TokenTypePercent,
}

var checkStatic = sync.OnceValue(func() error {
	return checkTables(formulaProductions, parenProductions)
})

// validateGrammar checks the grammar tables once per process and the
// vocabulary on every call.
func validateGrammar(vocab *model.Vocabulary) error {
	if err := checkStatic(); err != nil {
		return err
	}
	return checkVocabulary(vocab)
}

func checkTables(formula []production, paren []production) error {
	if overlap := overlaps(formula); len(overlap) > 0 {
		return invalidGrammar("alternatives of Atom share leading tokens %v", overlap)
	}
	overlap := overlaps(paren)
	if len(overlap) > 0 && !slices.Equal(overlap, []model.TokenType{model.TokenTypeParenOpen}) {
		return invalidGrammar("alternatives of Paren share leading tokens %v beyond %s", overlap, AmbiguityParenUnion)
	}
	seen := make(map[model.TokenType]string)
	for _, level := range binaryLevels {
		for kind := range level.operators {
			if other, ok := seen[kind]; ok {
				return invalidGrammar("operator %s belongs to both %s and %s", kind, other, level.name)
			}
			seen[kind] = level.name
		}
	}
	first := firstSet(formula)
	for _, kind := range first {
		if name, ok := seen[kind]; ok {
			return invalidGrammar("%s starts an operand and is a %s operator", kind, name)
		}
		if slices.Contains(intersectionFollow, kind) {
			return invalidGrammar("%s starts an operand and may follow one, beyond %s", kind, AmbiguityIntersection)
		}
	}
	return nil
}

func checkVocabulary(vocab *model.Vocabulary) error {
	var kinds []model.TokenType
	kinds = append(kinds, firstSet(formulaProductions)...)
	kinds = append(kinds, firstSet(parenProductions)...)
	kinds = append(kinds, intersectionFollow...)
	kinds = append(kinds, model.TokenTypeCurlyClose, model.TokenTypeWhitespace)
	for _, level := range binaryLevels {
		for kind := range level.operators {
			kinds = append(kinds, kind)
		}
	}
	for _, kind := range kinds {
		if !vocab.Has(kind) {
			return invalidGrammar("grammar uses %s which the vocabulary does not define", kind)
		}
	}
	return nil
}

// overlaps returns the kinds that open more than one production, in
// ascending order.
func overlaps(productions []production) []model.TokenType {
	count := make(map[model.TokenType]int)
	for _, prod := range productions {
		for _, kind := range prod.first {
			count[kind] = count[kind] + 1
		}
	}
	var out []model.TokenType
	for kind, n := range count {
		if n > 1 {
			out = append(out, kind)
		}
	}
	slices.Sort(out)
	return out
}

func firstSet(productions []production) []model.TokenType {
	var out []model.TokenType
	for _, prod := range productions {
		for _, kind := range prod.first {
			if !slices.Contains(out, kind) {
				out = append(out, kind)
			}
		}
	}
	return out
}

// dispatchTable maps each leading kind to its alternative. The first
// production wins on overlap; checkTables rejects overlaps before any parser
// can use the table.
func dispatchTable(productions []production) map[model.TokenType]alternative {
	out := make(map[model.TokenType]alternative)
	for _, prod := range productions {
		for _, kind := range prod.first {
			if _, ok := out[kind]; !ok {
				out[kind] = prod.alt
			}
		}
	}
	return out
}

func invalidGrammar(format string, args ...any) error {
	return exc.New(exc.Location{Source: "grammar"}, exc.CodeInvalidGrammar, fmt.Sprintf(format, args...))
}
