// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package workbook

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/grammar"
	"gopkg.microglot.org/formula.go/internal/lexer"
	"gopkg.microglot.org/formula.go/internal/model"
)

func newBook(t *testing.T, lines ...string) *Workbook {
	t.Helper()
	w, err := New()
	require.NoError(t, err)
	for _, line := range lines {
		require.NoError(t, w.Assign("Sheet1", line))
	}
	return w
}

func evaluate(t *testing.T, w *Workbook, sheet string, input string) model.Value {
	t.Helper()
	vocab := model.NewVocabulary()
	l, err := lexer.New(vocab)
	require.NoError(t, err)
	r := w.Resolver(sheet)
	p, err := grammar.New(vocab, grammar.OptionWithResolver(r), grammar.OptionWithOperators(r))
	require.NoError(t, err)
	v, err := p.Evaluate(context.Background(), "test", l.Tokens(context.Background(), "test", strings.NewReader(input)))
	require.NoError(t, err)
	return r.Deref(v)
}

func TestEvaluateAgainstWorkbook(t *testing.T) {
	t.Parallel()
	w := newBook(t,
		"A1=1",
		"A2=2",
		"A3=3",
		"B1=hello",
		`B2=" world"`,
		"C1=#DIV/0!",
		"Other!A1=10",
		"'My Sheet'!B2=TRUE",
		"Total=A1:A3",
		"Other!Local=Other!A1",
	)
	testCases := []struct {
		name     string
		input    string
		expected model.Value
	}{
		{name: "arithmetic", input: "1+2*3", expected: model.Number(7)},
		{name: "cell arithmetic", input: "A1+A2*A3", expected: model.Number(7)},
		{name: "blank cell", input: "Z99+1", expected: model.Number(1)},
		{name: "sum of range", input: "SUM(A1:A3)", expected: model.Number(6)},
		{name: "sum of union", input: "SUM((A1,A3))", expected: model.Number(4)},
		{name: "sum of name", input: "sum(Total, 4)", expected: model.Number(10)},
		{name: "sum of column", input: "SUM(A:A)", expected: model.Number(6)},
		{name: "sum of row", input: "SUM(1:1)", expected: model.Number(1)},
		{name: "sum of array", input: "SUM({1,2;3,4})", expected: model.Number(10)},
		{name: "sum skips text", input: "SUM(A1:B2)", expected: model.Number(3)},
		{name: "sum error", input: "SUM(A1:C1)", expected: model.ErrorValue{Kind: model.ErrorDivZero}},
		{name: "intersection", input: "A1:A3 A2:B2", expected: model.Number(2)},
		{name: "empty intersection", input: "A1 B1", expected: model.ErrorValue{Kind: model.ErrorNull}},
		{name: "concat cells", input: "B1&B2", expected: model.Text("hello world")},
		{name: "concat function", input: `CONCAT(B1:B2, "!")`, expected: model.Text("hello world!")},
		{name: "other sheet", input: "Other!A1*2", expected: model.Number(20)},
		{name: "quoted sheet", input: "'My Sheet'!B2", expected: model.Boolean(true)},
		{name: "range as scalar", input: "A1:A3+1", expected: model.ErrorValue{Kind: model.ErrorValueKind}},
		{name: "unknown name", input: "Missing+1", expected: model.ErrorValue{Kind: model.ErrorName}},
		{name: "unknown function", input: "NOPE(1)", expected: model.ErrorValue{Kind: model.ErrorName}},
		{name: "ref error", input: "#REF!+1", expected: model.ErrorValue{Kind: model.ErrorRef}},
		{name: "comparison", input: `B1="HELLO"`, expected: model.Boolean(true)},
		{name: "percent", input: "A2%", expected: model.Number(0.02)},
		{name: "negation", input: "--A3", expected: model.Number(3)},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, evaluate(t, w, "Sheet1", testCase.input))
		})
	}
}

func TestSheetScopedNames(t *testing.T) {
	t.Parallel()
	w := newBook(t, "Other!A1=10", "Other!Local=Other!A1", "Local=A1", "A1=1")

	require.Equal(t, model.Number(1), evaluate(t, w, "Sheet1", "Local"))
	require.Equal(t, model.Number(10), evaluate(t, w, "Other", "Local"))
	require.Equal(t, model.Number(10), evaluate(t, w, "Sheet1", "Other!Local"))
}

func TestAssign(t *testing.T) {
	t.Parallel()
	w := newBook(t)

	require.NoError(t, w.Assign("Sheet1", "a1 = 42"))
	require.Equal(t, model.Number(42), w.Get("SHEET1", 1, 1))

	require.NoError(t, w.Assign("Sheet1", "A1="))
	require.Equal(t, model.Blank{}, w.Get("Sheet1", 1, 1))

	for _, line := range []string{"no equals sign", "=1", "A1:B2=3", "Name=not a cell", "Sheet!=A1"} {
		err := w.Assign("Sheet1", line)
		require.Error(t, err, line)
		var e exc.Exception
		require.ErrorAs(t, err, &e)
		require.Equal(t, exc.CodeInvalidWorkbookInput, e.Code())
	}
}

func TestParseLiteral(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input    string
		expected model.Value
	}{
		{input: "", expected: model.Blank{}},
		{input: " 1.5e3 ", expected: model.Number(1500)},
		{input: "-4", expected: model.Number(-4)},
		{input: "50%", expected: model.Number(0.5)},
		{input: "0x10", expected: model.Text("0x10")},
		{input: "true", expected: model.Boolean(true)},
		{input: "#N/A", expected: model.ErrorValue{Kind: model.ErrorNA}},
		{input: `"say ""hi"""`, expected: model.Text(`say "hi"`)},
		{input: "plain words", expected: model.Text("plain words")},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, ParseLiteral(testCase.input))
		})
	}
}

func TestArea(t *testing.T) {
	t.Parallel()

	a, err := ParseArea("Sheet1", "$B$2:A1")
	require.NoError(t, err)
	require.Equal(t, Area{Sheet: "Sheet1", Top: 1, Left: 1, Bottom: 2, Right: 2}, a)
	require.Equal(t, "Sheet1!A1:B2", a.String())

	b, err := ParseArea("Sheet1", "'it''s'!C3")
	require.NoError(t, err)
	require.Equal(t, "'it''s'!C3", b.String())
	require.True(t, b.Single())

	_, ok := a.Intersect(b)
	require.False(t, ok)
	overlap, ok := a.Intersect(Area{Sheet: "SHEET1", Top: 2, Left: 2, Bottom: 5, Right: 5})
	require.True(t, ok)
	require.Equal(t, "Sheet1!B2", overlap.String())

	require.Equal(t, "(Sheet1!A1:B2,'it''s'!C3)", Areas{a, b}.String())

	_, err = ParseArea("Sheet1", "''!A1")
	require.Error(t, err)
}

func TestOptionWithFunction(t *testing.T) {
	t.Parallel()
	double := func(r *Resolver, args []model.Value) model.Value {
		if len(args) != 1 {
			return model.ErrorValue{Kind: model.ErrorValueKind}
		}
		return r.Infix(args[0], model.OperatorMultiply, model.Number(2))
	}
	w, err := New(OptionWithFunction("Double", double))
	require.NoError(t, err)
	require.NoError(t, w.Assign("Sheet1", "A1=21"))
	require.Equal(t, model.Number(42), evaluate(t, w, "Sheet1", "DOUBLE(A1)"))

	_, err = New(OptionWithFunction("", double))
	require.Error(t, err)
}
