// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Vocabulary is the immutable set of token kinds shared by a lexer and a
// parser. It also decides which function names return references. Build one
// with NewVocabulary and pass it to both sides explicitly.
type Vocabulary struct {
	kinds                   map[TokenType]bool
	refFunctions            map[string]bool
	conditionalRefFunctions map[string]bool
	reservedPrefix          string
}

type VocabularyOption func(v *Vocabulary)

// VocabularyWithRefFunctions replaces the set of function names whose result
// is itself a reference.
func VocabularyWithRefFunctions(names ...string) VocabularyOption {
	return func(v *Vocabulary) {
		v.refFunctions = foldNames(names)
	}
}

// VocabularyWithConditionalRefFunctions replaces the set of function names
// that return one of their reference arguments.
func VocabularyWithConditionalRefFunctions(names ...string) VocabularyOption {
	return func(v *Vocabulary) {
		v.conditionalRefFunctions = foldNames(names)
	}
}

func NewVocabulary(opts ...VocabularyOption) *Vocabulary {
	v := &Vocabulary{
		kinds:                   make(map[TokenType]bool, len(tokenTypeNames)),
		refFunctions:            foldNames([]string{"INDEX", "OFFSET", "INDIRECT"}),
		conditionalRefFunctions: foldNames([]string{"IF", "CHOOSE"}),
		reservedPrefix:          "_XLNM.",
	}
	for x := TokenTypeWhitespace; int(x) < len(tokenTypeNames); x = x + 1 {
		v.kinds[x] = true
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Has reports whether the kind belongs to the vocabulary.
func (v *Vocabulary) Has(kind TokenType) bool {
	return v.kinds[kind]
}

// Kinds returns every kind in the vocabulary in ascending order.
func (v *Vocabulary) Kinds() []TokenType {
	out := make([]TokenType, 0, len(v.kinds))
	for k := range v.kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ClassifyFunction returns the token kind for a function name that is
// immediately followed by an opening parenthesis.
func (v *Vocabulary) ClassifyFunction(name string) TokenType {
	folded := FoldName(name)
	switch {
	case v.refFunctions[folded]:
		return TokenTypeRefFunction
	case v.conditionalRefFunctions[folded]:
		return TokenTypeConditionalRefFunction
	default:
		return TokenTypeFunction
	}
}

// IsReservedName reports whether an identifier is one of the built-in
// workbook names such as _xlnm.Print_Area.
func (v *Vocabulary) IsReservedName(name string) bool {
	folded := FoldName(name)
	return len(folded) > len(v.reservedPrefix) && folded[:len(v.reservedPrefix)] == v.reservedPrefix
}

// FoldName converts an identifier to the case-insensitive form used for
// function names and lookups. A Caser is stateful so one is made per call.
func FoldName(name string) string {
	return cases.Upper(language.Und).String(name)
}

func foldNames(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[FoldName(name)] = true
	}
	return out
}
