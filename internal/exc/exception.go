// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"
	"strings"

	"gopkg.microglot.org/formula.go/internal/model"
)

type Exception interface {
	error
	Code() string
	Message() string
	Location() Location
}

// SyntaxException is raised when the current token matches no viable
// alternative. Token is nil at end of input.
type SyntaxException interface {
	Exception
	Token() *model.Token
	Expected() []model.TokenType
}

// Location names the formula being processed and the span of the offending
// input within it.
type Location struct {
	model.Span
	Source string
}

type exc struct {
	code     string
	message  string
	location Location
}

func (e *exc) Error() string {
	return fmt.Sprintf("%s:%d -- %s: %s", e.location.Source, e.location.Start.Offset, e.code, e.message)
}

func (e *exc) Code() string {
	return e.code
}

func (e *exc) Message() string {
	return e.message
}

func (e *exc) Location() Location {
	return e.location
}

type excUnwrap struct {
	Exception
	cause error
}

func (e *excUnwrap) Unwrap() error {
	return e.cause
}

type excSyntax struct {
	Exception
	token    *model.Token
	expected []model.TokenType
}

func (e *excSyntax) Token() *model.Token {
	return e.token
}

func (e *excSyntax) Expected() []model.TokenType {
	return e.expected
}

func New(location Location, code string, message string) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
	}
}

// NewSyntax builds a SyntaxException. The message lists the expected kinds.
func NewSyntax(location Location, code string, token *model.Token, expected []model.TokenType) SyntaxException {
	found := "EOF"
	if token != nil {
		found = fmt.Sprintf("%q", token.Value)
		location.Span = token.Span
	}
	names := make([]string, 0, len(expected))
	for _, kind := range expected {
		names = append(names, kind.String())
	}
	message := fmt.Sprintf("unexpected %s (expecting one of %s)", found, strings.Join(names, ", "))
	if len(expected) == 0 {
		message = fmt.Sprintf("unexpected %s", found)
	}
	return &excSyntax{
		Exception: New(location, code, message),
		token:     token,
		expected:  expected,
	}
}

func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(Exception); ok {
		return &excUnwrap{
			Exception: New(location, code, e.Message()),
			cause:     e,
		}
	}
	return &excUnwrap{
		cause:     err,
		Exception: New(location, code, err.Error()),
	}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}

// MultiException is the error returned when one or more exceptions were
// reported while processing a formula.
type MultiException []Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
