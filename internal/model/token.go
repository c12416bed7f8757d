// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"

	"gopkg.microglot.org/formula.go/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

// Location is a position within a formula, counted in code points.
type Location struct {
	Offset int
}

// Span covers the half-open interval [Start, End) of a token.
type Span struct {
	Start Location
	End   Location
}

type Token struct {
	Span  Span
	Type  TokenType
	Value string
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q [%d,%d)", t.Type, t.Value, t.Span.Start.Offset, t.Span.End.Offset)
}

type TokenType uint16

const (
	TokenTypeUnknown                TokenType = 0
	TokenTypeWhitespace             TokenType = 1
	TokenTypeCell                   TokenType = 2
	TokenTypeColumnRange            TokenType = 3
	TokenTypeRowRange               TokenType = 4
	TokenTypeSheet                  TokenType = 5
	TokenTypeSheetQuoted            TokenType = 6
	TokenTypeName                   TokenType = 7
	TokenTypeReservedName           TokenType = 8
	TokenTypeNumber                 TokenType = 9
	TokenTypeString                 TokenType = 10
	TokenTypeBoolean                TokenType = 11
	TokenTypeFormulaError           TokenType = 12
	TokenTypeRefError               TokenType = 13
	TokenTypeFunction               TokenType = 14
	TokenTypeRefFunction            TokenType = 15
	TokenTypeConditionalRefFunction TokenType = 16
	TokenTypeComma                  TokenType = 17
	TokenTypeColon                  TokenType = 18
	TokenTypeSemicolon              TokenType = 19
	TokenTypeParenOpen              TokenType = 20
	TokenTypeParenClose             TokenType = 21
	TokenTypeCurlyOpen              TokenType = 22
	TokenTypeCurlyClose             TokenType = 23
	TokenTypeEqual                  TokenType = 24
	TokenTypeNotEqual               TokenType = 25
	TokenTypeLesser                 TokenType = 26
	TokenTypeGreater                TokenType = 27
	TokenTypeLesserEqual            TokenType = 28
	TokenTypeGreaterEqual           TokenType = 29
	TokenTypePlus                   TokenType = 30
	TokenTypeMinus                  TokenType = 31
	TokenTypeStar                   TokenType = 32
	TokenTypeSlash                  TokenType = 33
	TokenTypeCaret                  TokenType = 34
	TokenTypeAmpersand              TokenType = 35
	TokenTypePercent                TokenType = 36
)

var tokenTypeNames = [...]string{
	TokenTypeUnknown:                "Unknown",
	TokenTypeWhitespace:             "Whitespace",
	TokenTypeCell:                   "Cell",
	TokenTypeColumnRange:            "ColumnRange",
	TokenTypeRowRange:               "RowRange",
	TokenTypeSheet:                  "Sheet",
	TokenTypeSheetQuoted:            "SheetQuoted",
	TokenTypeName:                   "Name",
	TokenTypeReservedName:           "ReservedName",
	TokenTypeNumber:                 "Number",
	TokenTypeString:                 "String",
	TokenTypeBoolean:                "Boolean",
	TokenTypeFormulaError:           "FormulaError",
	TokenTypeRefError:               "RefError",
	TokenTypeFunction:               "Function",
	TokenTypeRefFunction:            "RefFunction",
	TokenTypeConditionalRefFunction: "ConditionalRefFunction",
	TokenTypeComma:                  "Comma",
	TokenTypeColon:                  "Colon",
	TokenTypeSemicolon:              "Semicolon",
	TokenTypeParenOpen:              "ParenOpen",
	TokenTypeParenClose:             "ParenClose",
	TokenTypeCurlyOpen:              "CurlyOpen",
	TokenTypeCurlyClose:             "CurlyClose",
	TokenTypeEqual:                  "Equal",
	TokenTypeNotEqual:               "NotEqual",
	TokenTypeLesser:                 "Lesser",
	TokenTypeGreater:                "Greater",
	TokenTypeLesserEqual:            "LesserEqual",
	TokenTypeGreaterEqual:           "GreaterEqual",
	TokenTypePlus:                   "Plus",
	TokenTypeMinus:                  "Minus",
	TokenTypeStar:                   "Star",
	TokenTypeSlash:                  "Slash",
	TokenTypeCaret:                  "Caret",
	TokenTypeAmpersand:              "Ampersand",
	TokenTypePercent:                "Percent",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", t)
}
