// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lexer

import (
	"context"
	"fmt"
	"io"
	"unicode"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/iter"
	"gopkg.microglot.org/formula.go/internal/model"
	"gopkg.microglot.org/formula.go/internal/optional"
)

const (
	// Enough to see past a colon into "$XFD" or "$1048576" plus one
	// delimiter, and across the longest error literal.
	lexerLookahead = 24
)

// Lexer implements a tokenizer for spreadsheet formulas. Whitespace is kept
// as tokens so that token offsets describe the original text exactly.
type Lexer struct {
	vocab    *model.Vocabulary
	reporter exc.Reporter
}

type Option func(l *Lexer) error

func OptionWithReporter(reporter exc.Reporter) Option {
	return func(l *Lexer) error {
		l.reporter = reporter
		return nil
	}
}

func New(vocab *model.Vocabulary, opts ...Option) (*Lexer, error) {
	if vocab == nil {
		return nil, fmt.Errorf("lexer requires a vocabulary")
	}
	l := &Lexer{vocab: vocab}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	if l.reporter == nil {
		l.reporter = exc.NewReporter(nil)
	}
	return l, nil
}

// Tokens returns the token stream for one formula. A leading "=" is skipped.
// Lexical errors end the stream early and are returned from Close.
func (self *Lexer) Tokens(ctx context.Context, source string, body io.Reader) model.Iterator[*model.Token] {
	return &lexerTokens{
		source:   source,
		vocab:    self.vocab,
		body:     iter.NewLookahead(iter.NewRunes(body), lexerLookahead),
		reporter: self.reporter,
		offset:   -1,
	}
}

type lexerTokens struct {
	source   string
	vocab    *model.Vocabulary
	body     model.Lookahead[rune]
	reporter exc.Reporter
	offset   int
	failed   exc.Exception
}

func (self *lexerTokens) Next(ctx context.Context) optional.Optional[*model.Token] {
	if self.failed != nil {
		return optional.None[*model.Token]()
	}
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := point.Value()
		start := self.offset
		if start == 0 && r == '=' {
			continue
		}
		switch r {
		case ' ', '\t', '\r', '\n':
			space := []rune{r}
			for self.peekIs(ctx, 1, isSpace) {
				space = append(space, self.next(ctx).Value())
			}
			return self.emit(start, model.TokenTypeWhitespace, string(space))
		case '"':
			return self.readString(ctx, start)
		case '\'':
			return self.readQuotedSheet(ctx, start)
		case '#':
			return self.readError(ctx, start)
		case '.':
			if self.peekIs(ctx, 1, isDigit) {
				return self.readNumber(ctx, start, r)
			}
			return self.fail(start, exc.CodeUnexpectedCharacter, "unexpected character '.'")
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return self.readNumber(ctx, start, r)
		case ',':
			return self.emit(start, model.TokenTypeComma, ",")
		case ':':
			return self.emit(start, model.TokenTypeColon, ":")
		case ';':
			return self.emit(start, model.TokenTypeSemicolon, ";")
		case '(':
			return self.emit(start, model.TokenTypeParenOpen, "(")
		case ')':
			return self.emit(start, model.TokenTypeParenClose, ")")
		case '{':
			return self.emit(start, model.TokenTypeCurlyOpen, "{")
		case '}':
			return self.emit(start, model.TokenTypeCurlyClose, "}")
		case '+':
			return self.emit(start, model.TokenTypePlus, "+")
		case '-':
			return self.emit(start, model.TokenTypeMinus, "-")
		case '*':
			return self.emit(start, model.TokenTypeStar, "*")
		case '/':
			return self.emit(start, model.TokenTypeSlash, "/")
		case '^':
			return self.emit(start, model.TokenTypeCaret, "^")
		case '&':
			return self.emit(start, model.TokenTypeAmpersand, "&")
		case '%':
			return self.emit(start, model.TokenTypePercent, "%")
		case '=':
			return self.emit(start, model.TokenTypeEqual, "=")
		case '<':
			switch self.peek(ctx, 1) {
			case '=':
				_ = self.next(ctx)
				return self.emit(start, model.TokenTypeLesserEqual, "<=")
			case '>':
				_ = self.next(ctx)
				return self.emit(start, model.TokenTypeNotEqual, "<>")
			default:
				return self.emit(start, model.TokenTypeLesser, "<")
			}
		case '>':
			if self.peek(ctx, 1) == '=' {
				_ = self.next(ctx)
				return self.emit(start, model.TokenTypeGreaterEqual, ">=")
			}
			return self.emit(start, model.TokenTypeGreater, ">")
		default:
			if r == '$' || isWordStart(r) {
				return self.readWord(ctx, start, r)
			}
			return self.fail(start, exc.CodeUnexpectedCharacter, fmt.Sprintf("unexpected character %q", r))
		}
	}
	return optional.None[*model.Token]()
}

func (self *lexerTokens) Close(ctx context.Context) error {
	err := self.body.Close(ctx)
	if self.failed != nil {
		return self.failed
	}
	return err
}

// readWord handles everything that starts like an identifier: cells,
// column and row ranges, sheet prefixes, function names, booleans and names.
func (self *lexerTokens) readWord(ctx context.Context, start int, first rune) optional.Optional[*model.Token] {
	word := []rune{first}
	for self.peekIs(ctx, 1, isWordRune) {
		word = append(word, self.next(ctx).Value())
	}
	text := string(word)

	switch self.peek(ctx, 1) {
	case '(':
		_ = self.next(ctx)
		return self.emit(start, self.vocab.ClassifyFunction(text), text+"(")
	case '!':
		_ = self.next(ctx)
		return self.emit(start, model.TokenTypeSheet, text+"!")
	case ':':
		if isColumnWord(text) {
			if n := self.scanAfterColon(ctx, isLetter, 3); n > 0 {
				return self.emit(start, model.TokenTypeColumnRange, text+string(self.take(ctx, n)))
			}
		}
		if isRowWord(text) {
			if n := self.scanAfterColon(ctx, isDigit, 7); n > 0 {
				return self.emit(start, model.TokenTypeRowRange, text+string(self.take(ctx, n)))
			}
		}
	}

	switch {
	case isCellWord(text):
		return self.emit(start, model.TokenTypeCell, text)
	case isRowWord(text):
		return self.fail(start, exc.CodeUnexpectedCharacter, fmt.Sprintf("row reference %s must be part of a row range", text))
	case model.FoldName(text) == "TRUE" || model.FoldName(text) == "FALSE":
		return self.emit(start, model.TokenTypeBoolean, text)
	case self.vocab.IsReservedName(text):
		return self.emit(start, model.TokenTypeReservedName, text)
	}
	for _, r := range word {
		if r == '$' {
			return self.fail(start, exc.CodeUnexpectedCharacter, fmt.Sprintf("unexpected '$' in %s", text))
		}
	}
	return self.emit(start, model.TokenTypeName, text)
}

// scanAfterColon checks, without consuming, that the colon at lookahead 1
// is followed by an optional '$' and 1..limit runes of the given class that
// end on a delimiter. It returns the number of runes to take, or 0.
func (self *lexerTokens) scanAfterColon(ctx context.Context, class func(rune) bool, limit int) int {
	n := 2
	if self.peek(ctx, uint8(n)) == '$' {
		n = n + 1
	}
	count := 0
	for self.peekIs(ctx, uint8(n), class) {
		count = count + 1
		n = n + 1
	}
	if count == 0 || count > limit || self.peekIs(ctx, uint8(n), isWordRune) || self.peek(ctx, uint8(n)) == '.' {
		return 0
	}
	return n - 1
}

func (self *lexerTokens) readNumber(ctx context.Context, start int, first rune) optional.Optional[*model.Token] {
	number := []rune{first}
	for self.peekIs(ctx, 1, isDigit) {
		number = append(number, self.next(ctx).Value())
	}
	if first != '.' && self.peek(ctx, 1) == ':' {
		if n := self.scanAfterColon(ctx, isDigit, 7); n > 0 {
			return self.emit(start, model.TokenTypeRowRange, string(number)+string(self.take(ctx, n)))
		}
	}
	if first != '.' && self.peek(ctx, 1) == '.' {
		number = append(number, self.next(ctx).Value())
		for self.peekIs(ctx, 1, isDigit) {
			number = append(number, self.next(ctx).Value())
		}
	}
	if e := self.peek(ctx, 1); e == 'e' || e == 'E' {
		sign := self.peek(ctx, 2)
		switch {
		case isDigit(sign):
			number = append(number, self.take(ctx, 1)...)
		case (sign == '+' || sign == '-') && self.peekIs(ctx, 3, isDigit):
			number = append(number, self.take(ctx, 2)...)
		}
		for self.peekIs(ctx, 1, isDigit) {
			number = append(number, self.next(ctx).Value())
		}
	}
	return self.emit(start, model.TokenTypeNumber, string(number))
}

func (self *lexerTokens) readString(ctx context.Context, start int) optional.Optional[*model.Token] {
	text := []rune{'"'}
	for {
		point := self.next(ctx)
		if !point.IsPresent() {
			return self.fail(start, exc.CodeUnterminatedString, "EOF while reading string literal")
		}
		text = append(text, point.Value())
		if point.Value() != '"' {
			continue
		}
		if self.peek(ctx, 1) != '"' {
			return self.emit(start, model.TokenTypeString, string(text))
		}
		text = append(text, self.next(ctx).Value())
	}
}

func (self *lexerTokens) readQuotedSheet(ctx context.Context, start int) optional.Optional[*model.Token] {
	text := []rune{'\''}
	for {
		point := self.next(ctx)
		if !point.IsPresent() {
			return self.fail(start, exc.CodeUnterminatedString, "EOF while reading quoted sheet name")
		}
		text = append(text, point.Value())
		if point.Value() != '\'' {
			continue
		}
		if self.peek(ctx, 1) == '\'' {
			text = append(text, self.next(ctx).Value())
			continue
		}
		if self.peek(ctx, 1) != '!' {
			return self.fail(start, exc.CodeUnexpectedCharacter, "quoted sheet name must be followed by '!'")
		}
		text = append(text, self.next(ctx).Value())
		return self.emit(start, model.TokenTypeSheetQuoted, string(text))
	}
}

func (self *lexerTokens) readError(ctx context.Context, start int) optional.Optional[*model.Token] {
	for _, kind := range model.ErrorKinds {
		literal := []rune(string(kind))
		matched := true
		for x := 1; x < len(literal); x = x + 1 {
			if unicode.ToUpper(self.peek(ctx, uint8(x))) != literal[x] {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		text := "#" + string(self.take(ctx, len(literal)-1))
		if kind == model.ErrorRef {
			return self.emit(start, model.TokenTypeRefError, text)
		}
		return self.emit(start, model.TokenTypeFormulaError, text)
	}
	return self.fail(start, exc.CodeUnexpectedCharacter, "unknown error literal")
}

func (self *lexerTokens) next(ctx context.Context) optional.Optional[rune] {
	point := self.body.Next(ctx)
	if point.IsPresent() {
		self.offset = self.offset + 1
	}
	return point
}

// peek returns the rune n positions past the current one, or 0 at EOF.
func (self *lexerTokens) peek(ctx context.Context, n uint8) rune {
	return self.body.Lookahead(ctx, n).ValueOr(0)
}

func (self *lexerTokens) peekIs(ctx context.Context, n uint8, class func(rune) bool) bool {
	point := self.body.Lookahead(ctx, n)
	return point.IsPresent() && class(point.Value())
}

func (self *lexerTokens) take(ctx context.Context, n int) []rune {
	out := make([]rune, 0, n)
	for x := 0; x < n; x = x + 1 {
		out = append(out, self.next(ctx).Value())
	}
	return out
}

func (self *lexerTokens) emit(start int, kind model.TokenType, value string) optional.Optional[*model.Token] {
	return optional.Some(newToken(start, self.offset+1, kind, value))
}

func (self *lexerTokens) fail(start int, code string, message string) optional.Optional[*model.Token] {
	e := exc.New(exc.Location{
		Source: self.source,
		Span: model.Span{
			Start: model.Location{Offset: start},
			End:   model.Location{Offset: self.offset + 1},
		},
	}, code, message)
	self.failed = e
	_ = self.reporter.Report(e)
	return optional.None[*model.Token]()
}

func newToken(start int, end int, kind model.TokenType, value string) *model.Token {
	return &model.Token{
		Span: model.Span{
			Start: model.Location{Offset: start},
			End:   model.Location{Offset: end},
		},
		Type:  kind,
		Value: value,
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isWordStart(r rune) bool {
	return r == '_' || r == '\\' || unicode.IsLetter(r)
}

func isWordRune(r rune) bool {
	return isWordStart(r) || isDigit(r) || r == '.' || r == '$' || r == '?'
}

// isCellWord matches \$?[A-Za-z]{1,3}\$?[0-9]+ with a valid column.
func isCellWord(word string) bool {
	_, err := model.ParseCellAddress(word)
	return err == nil
}

// isColumnWord matches \$?[A-Za-z]{1,3}.
func isColumnWord(word string) bool {
	if len(word) > 0 && word[0] == '$' {
		word = word[1:]
	}
	if len(word) == 0 || len(word) > 3 {
		return false
	}
	for _, r := range word {
		if !isLetter(r) {
			return false
		}
	}
	return true
}

// isRowWord matches \$[0-9]+. Unprefixed rows are read as numbers.
func isRowWord(word string) bool {
	if len(word) < 2 || word[0] != '$' {
		return false
	}
	for _, r := range word[1:] {
		if !isDigit(r) {
			return false
		}
	}
	return true
}
