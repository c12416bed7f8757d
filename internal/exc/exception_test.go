// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/formula.go/internal/model"
)

func TestSyntaxException(t *testing.T) {
	t.Parallel()

	tok := &model.Token{
		Span:  model.Span{Start: model.Location{Offset: 4}, End: model.Location{Offset: 5}},
		Type:  model.TokenTypeParenClose,
		Value: ")",
	}
	e := NewSyntax(Location{Source: "formula"}, CodeUnexpectedToken, tok, []model.TokenType{model.TokenTypeNumber, model.TokenTypeCell})
	require.Equal(t, `formula:4 -- F0100: unexpected ")" (expecting one of Number, Cell)`, e.Error())
	require.Equal(t, tok, e.Token())
	require.Equal(t, 4, e.Location().Start.Offset)

	eof := NewSyntax(Location{Source: "formula"}, CodeUnexpectedEOF, nil, nil)
	require.Equal(t, "unexpected EOF", eof.Message())
	require.Nil(t, eof.Token())
}

func TestWrap(t *testing.T) {
	t.Parallel()

	require.Nil(t, Wrap(Location{}, CodeUnknownFatal, nil))

	cause := errors.New("boom")
	e := WrapUnknown(Location{Source: "x"}, cause)
	require.Equal(t, CodeUnknownFatal, e.Code())
	require.True(t, errors.Is(e, cause))
}

func TestReporter(t *testing.T) {
	t.Parallel()

	r := NewReporter([]string{CodeInvalidLiteral})
	require.Nil(t, r.Report(New(Location{}, CodeInvalidLiteral, "soft")))
	require.NotNil(t, r.Report(New(Location{}, CodeUnexpectedToken, "hard")))

	var wg sync.WaitGroup
	for x := 0; x < 16; x = x + 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Report(New(Location{}, CodeUnexpectedToken, "concurrent"))
		}()
	}
	wg.Wait()
	require.Len(t, r.Reported(), 18)

	d := NewDiscardReporter()
	require.NotNil(t, d.Report(New(Location{}, CodeUnexpectedToken, "dropped")))
	require.Empty(t, d.Reported())

	Forward(d, r.Reported())
	Forward(nil, r.Reported())

	multi := MultiException{New(Location{Source: "a"}, CodeUnexpectedToken, "one"), New(Location{Source: "b"}, CodeIncompleteParse, "two")}
	require.Equal(t, "a:0 -- F0100: one; b:0 -- F0101: two", multi.Error())
}
