// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package grammar

import (
	"context"
	"strings"

	"gopkg.microglot.org/formula.go/internal/model"
)

// Normalize converts a token's lexical image into the form the grammar
// actions consume. It is the only place where images are trimmed:
//
//   - function tokens lose the trailing "(" and are upper-cased;
//   - plain sheet prefixes lose the trailing "!";
//   - quoted sheet prefixes lose the quotes and "!" and collapse '' to ';
//   - booleans and error literals are upper-cased.
//
// Spans are left untouched so whitespace adjacency is still measured against
// the original text.
func Normalize(ctx context.Context, t *model.Token) *model.Token {
	out := *t
	switch t.Type {
	case model.TokenTypeFunction, model.TokenTypeRefFunction, model.TokenTypeConditionalRefFunction:
		out.Value = model.FoldName(strings.TrimSuffix(t.Value, "("))
	case model.TokenTypeSheet:
		out.Value = strings.TrimSuffix(t.Value, "!")
	case model.TokenTypeSheetQuoted:
		name := strings.TrimSuffix(t.Value, "!")
		name = strings.TrimSuffix(strings.TrimPrefix(name, "'"), "'")
		out.Value = strings.ReplaceAll(name, "''", "'")
	case model.TokenTypeBoolean, model.TokenTypeFormulaError, model.TokenTypeRefError:
		out.Value = model.FoldName(t.Value)
	}
	return &out
}
