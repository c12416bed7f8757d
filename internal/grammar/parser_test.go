// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package grammar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/iter"
	"gopkg.microglot.org/formula.go/internal/lexer"
	"gopkg.microglot.org/formula.go/internal/model"
)

// recorder renders every reduction as text and logs each call it receives,
// acting as both the resolver and the operators.
type recorder struct {
	calls []string
}

func (r *recorder) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func sheetPrefix(sheet string) string {
	if sheet == "" {
		return ""
	}
	return sheet + "!"
}

func join(values []model.Value) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ",")
}

func (r *recorder) Cell(ref model.Address) model.Value {
	var text string
	switch ref := ref.(type) {
	case model.CellRef:
		text = ref.String()
	case model.RefErrorRef:
		text = ref.Text
	}
	r.log("Cell %s", text)
	return model.Text(text)
}

func (r *recorder) ColumnRange(ref model.ColumnRangeRef) model.Value {
	text := fmt.Sprintf("%s%s:%s", sheetPrefix(ref.Sheet), model.ColumnName(ref.First), model.ColumnName(ref.Last))
	r.log("ColumnRange %s", text)
	return model.Text(text)
}

func (r *recorder) RowRange(ref model.RowRangeRef) model.Value {
	text := fmt.Sprintf("%s%d:%d", sheetPrefix(ref.Sheet), ref.First, ref.Last)
	r.log("RowRange %s", text)
	return model.Text(text)
}

func (r *recorder) Range(operands []model.Value) model.Value {
	r.log("Range %d", len(operands))
	return model.Text("range(" + join(operands) + ")")
}

func (r *recorder) Variable(ref model.NamedRef) model.Value {
	r.log("Variable %s%s", sheetPrefix(ref.Sheet), ref.Name)
	return model.Text("name(" + sheetPrefix(ref.Sheet) + ref.Name + ")")
}

func (r *recorder) Call(name string, args []model.Value) model.Value {
	r.log("Call %s %d", name, len(args))
	return model.Text(name + "(" + join(args) + ")")
}

func (r *recorder) Prefix(op model.Operator, operand model.Value) model.Value {
	r.log("Prefix %s", op)
	return model.Text(fmt.Sprintf("(%s%s)", op, operand))
}

func (r *recorder) Postfix(op model.Operator, operand model.Value) model.Value {
	r.log("Postfix %s", op)
	return model.Text(fmt.Sprintf("(%s%s)", operand, op))
}

func (r *recorder) Infix(left model.Value, op model.Operator, right model.Value) model.Value {
	r.log("Infix %s", op)
	return model.Text(fmt.Sprintf("(%s%s%s)", left, op, right))
}

func (r *recorder) Intersect(operands []model.Value) model.Value {
	r.log("Intersect %d", len(operands))
	return model.Text("isect(" + join(operands) + ")")
}

func (r *recorder) Union(operands []model.Value) model.Value {
	r.log("Union %d", len(operands))
	return model.Text("union(" + join(operands) + ")")
}

func lex(t *testing.T, input string) model.Iterator[*model.Token] {
	t.Helper()
	l, err := lexer.New(model.NewVocabulary())
	require.NoError(t, err)
	return l.Tokens(context.Background(), "test", strings.NewReader(input))
}

func evaluate(t *testing.T, input string, opts ...Option) (model.Value, *recorder, error) {
	t.Helper()
	r := &recorder{}
	opts = append([]Option{OptionWithResolver(r), OptionWithOperators(r)}, opts...)
	p, err := New(model.NewVocabulary(), opts...)
	require.NoError(t, err)
	v, err := p.Evaluate(context.Background(), "test", lex(t, input))
	return v, r, err
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "multiplication binds tighter", input: "1+2*3", expected: "(1+(2*3))"},
		{name: "left associative subtraction", input: "1-2-3", expected: "((1-2)-3)"},
		{name: "left associative power", input: "2^3^2", expected: "((2^3)^2)"},
		{name: "concat below comparison", input: "1&2=12", expected: "((1&2)=12)"},
		{name: "not equal", input: "1<>2", expected: "(1<>2)"},
		{name: "sign binds tighter than power", input: "-2^2", expected: "((-2)^2)"},
		{name: "percent binds tighter than multiply", input: "50%*2", expected: "((50%)*2)"},
		{name: "double negation", input: "--3", expected: "(+3)"},
		{name: "alternating signs", input: "+-+-3", expected: "(+3)"},
		{name: "triple negation", input: "---3", expected: "(-3)"},
		{name: "range joins once", input: "A1:A3:C4", expected: "range(A1,A3,C4)"},
		{name: "intersection", input: "A1 B1", expected: "isect(A1,B1)"},
		{name: "intersection of ranges", input: "A1:B2  B1:C3", expected: "isect(range(A1,B2),range(B1,C3))"},
		{name: "intersection with parenthesis", input: "A1 (B1)", expected: "isect(A1,B1)"},
		{name: "union", input: "(A1,A2)", expected: "union(A1,A2)"},
		{name: "union of intersection", input: "(A1 B1,C1)", expected: "union(isect(A1,B1),C1)"},
		{name: "grouping", input: "(1+2)*3", expected: "((1+2)*3)"},
		{name: "nested single reference", input: "((A1))", expected: "A1"},
		{name: "array", input: "{1,2;3,4}", expected: "{1,2;3,4}"},
		{name: "array literals", input: `{-1,+2,"a",TRUE,#N/A,#REF!}`, expected: `{-1,2,"a",TRUE,#N/A,#REF!}`},
		{name: "sheet range", input: "Sheet1!A1:B2", expected: "range(Sheet1!A1,Sheet1!B2)"},
		{name: "sheet repeated in range", input: "Sheet1!A1:sheet1!B2", expected: "range(Sheet1!A1,Sheet1!B2)"},
		{name: "sheet repeated in argument", input: "SUM(Sheet1!A1:Sheet1!B2)", expected: "SUM(range(Sheet1!A1,Sheet1!B2))"},
		{name: "quoted sheet name", input: "'My ''Q'' Sheet'!Total", expected: "name(My 'Q' Sheet!Total)"},
		{name: "column and row ranges", input: "SUM(A:B, $1:3)", expected: "SUM(A:B,1:3)"},
		{name: "reference function", input: "index(A1:B2,1,2)", expected: "INDEX(range(A1,B2),1,2)"},
		{name: "conditional reference function", input: "IF(TRUE,A1,B1):C3", expected: "range(IF(TRUE,A1,B1),C3)"},
		{name: "reserved name", input: "_xlnm.Print_Area", expected: "name(_xlnm.Print_Area)"},
		{name: "reference error", input: "#REF!+1", expected: "(#REF!+1)"},
		{name: "strings", input: `"a""b"&"c"`, expected: `(a"b&c)`},
		{name: "no arguments", input: "now()", expected: "NOW()"},
		{name: "leading equals", input: "=1", expected: "1"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			v, _, err := evaluate(t, testCase.input)
			require.NoError(t, err)
			require.Equal(t, testCase.expected, v.String())
		})
	}
}

func TestMissingArguments(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		input   string
		dropped string
		missing string
	}{
		{name: "middle", input: "F(1,,2)", dropped: "F(1,2)", missing: "F(1,,2)"},
		{name: "leading", input: "F(,1)", dropped: "F(1)", missing: "F(,1)"},
		{name: "trailing", input: "F(1,)", dropped: "F(1)", missing: "F(1,)"},
		{name: "only commas", input: "F(,)", dropped: "F()", missing: "F(,)"},
		{name: "none", input: "F()", dropped: "F()", missing: "F()"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			v, _, err := evaluate(t, testCase.input)
			require.NoError(t, err)
			require.Equal(t, testCase.dropped, v.String())

			v, r, err := evaluate(t, testCase.input, OptionWithMissingArguments(true))
			require.NoError(t, err)
			require.Equal(t, testCase.missing, v.String())
			require.Equal(t, fmt.Sprintf("Call F %d", argCount(testCase.missing)), r.calls[len(r.calls)-1])
		})
	}
}

// argCount counts the slots in a rendered call such as F(1,,2).
func argCount(rendered string) int {
	inner := strings.TrimSuffix(strings.TrimPrefix(rendered, "F("), ")")
	if inner == "" {
		return 0
	}
	return strings.Count(inner, ",") + 1
}

func TestSpeculationHasNoSideEffects(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "grouping after failed union probe",
			input:    "(A1+1)",
			expected: []string{"Cell A1", "Infix +"},
		},
		{
			name:     "union",
			input:    "(A1,Sheet2!B1:B3)",
			expected: []string{"Cell A1", "Cell Sheet2!B1", "Cell Sheet2!B3", "Range 2", "Union 2"},
		},
		{
			name:     "single reference in parenthesis",
			input:    "(A1)",
			expected: []string{"Cell A1"},
		},
		{
			name:     "nested parenthesis",
			input:    "((A1,B1),(C1+1))",
			expected: []string{"Cell A1", "Cell B1", "Union 2", "Cell C1", "Infix +", "Union 2"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, r, err := evaluate(t, testCase.input)
			require.NoError(t, err)
			require.Equal(t, testCase.expected, r.calls)
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		input string
		code  string
	}{
		{name: "empty", input: "", code: exc.CodeUnexpectedEOF},
		{name: "dangling operator", input: "1+", code: exc.CodeUnexpectedEOF},
		{name: "unclosed parenthesis", input: "(1", code: exc.CodeUnexpectedEOF},
		{name: "leftover token", input: "1)", code: exc.CodeIncompleteParse},
		{name: "leading operator", input: "*1", code: exc.CodeUnexpectedToken},
		{name: "reference in array", input: "{A1}", code: exc.CodeUnexpectedToken},
		{name: "ragged array", input: "{1,2;3}", code: exc.CodeInvalidLiteral},
		{name: "sheet before parenthesis", input: "Sheet1!(A1)", code: exc.CodeUnexpectedToken},
		{name: "range across sheets", input: "Sheet1!A1:Sheet2!B2", code: exc.CodeUnexpectedToken},
		{name: "sheet prefix twice", input: "Sheet1!Sheet1!A1", code: exc.CodeUnexpectedToken},
		{name: "double percent", input: "1%%", code: exc.CodeIncompleteParse},
		{name: "lexer failure", input: "1+@", code: exc.CodeUnexpectedCharacter},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := evaluate(t, testCase.input)
			require.Error(t, err)
			var multi exc.MultiException
			require.True(t, errors.As(err, &multi))
			require.Len(t, multi, 1)
			require.Equal(t, testCase.code, multi[0].Code())
		})
	}
}

func TestIntersectionRequiresWhitespace(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	p, err := New(model.NewVocabulary(), OptionWithResolver(r), OptionWithOperators(r))
	require.NoError(t, err)

	adjacent := iter.NewSlice([]*model.Token{
		{Span: model.Span{Start: model.Location{Offset: 0}, End: model.Location{Offset: 2}}, Type: model.TokenTypeCell, Value: "A1"},
		{Span: model.Span{Start: model.Location{Offset: 2}, End: model.Location{Offset: 4}}, Type: model.TokenTypeCell, Value: "B1"},
	})
	_, err = p.Evaluate(context.Background(), "adjacent", adjacent)
	var multi exc.MultiException
	require.True(t, errors.As(err, &multi))
	require.Equal(t, exc.CodeIncompleteParse, multi[0].Code())
	require.Equal(t, 2, multi[0].Location().Start.Offset)

	spaced := iter.NewSlice([]*model.Token{
		{Span: model.Span{Start: model.Location{Offset: 0}, End: model.Location{Offset: 2}}, Type: model.TokenTypeCell, Value: "A1"},
		{Span: model.Span{Start: model.Location{Offset: 3}, End: model.Location{Offset: 5}}, Type: model.TokenTypeCell, Value: "B1"},
	})
	v, err := p.Evaluate(context.Background(), "spaced", spaced)
	require.NoError(t, err)
	require.Equal(t, "isect(A1,B1)", v.String())
}

func TestEvaluateRequiresResolver(t *testing.T) {
	t.Parallel()

	reporter := exc.NewReporter(nil)
	p, err := New(model.NewVocabulary(), OptionWithReporter(reporter))
	require.NoError(t, err)
	_, err = p.Evaluate(context.Background(), "test", lex(t, "1"))
	var multi exc.MultiException
	require.True(t, errors.As(err, &multi))
	require.Equal(t, exc.CodeMissingResolver, multi[0].Code())
	require.Len(t, reporter.Reported(), 1)

	tree, err := p.Build(context.Background(), "test", lex(t, "1"))
	require.NoError(t, err)
	require.Equal(t, NodeConstant{Value: model.Number(1)}, tree)
}

func TestReporterCollectsEveryParse(t *testing.T) {
	t.Parallel()

	reporter := exc.NewReporter(nil)
	r := &recorder{}
	p, err := New(model.NewVocabulary(), OptionWithReporter(reporter), OptionWithResolver(r), OptionWithOperators(r))
	require.NoError(t, err)

	_, err = p.Evaluate(context.Background(), "first", lex(t, "1+"))
	require.Error(t, err)
	_, err = p.Evaluate(context.Background(), "second", lex(t, "(1"))
	require.Error(t, err)
	_, err = p.Evaluate(context.Background(), "third", lex(t, "1+1"))
	require.NoError(t, err)

	reported := reporter.Reported()
	require.Len(t, reported, 2)
	require.Equal(t, "first", reported[0].Location().Source)
	require.Equal(t, "second", reported[1].Location().Source)
	var syntax exc.SyntaxException
	require.True(t, errors.As(reported[1], &syntax))
	require.Nil(t, syntax.Token())
	require.Equal(t, []model.TokenType{model.TokenTypeParenClose}, syntax.Expected())
}

func TestBuildAndReplay(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"1+2*3",
		"-A1%^2",
		"SUM(Sheet1!A1:B2, {1,\"a\"}, (C1,D1), E1 F1, #REF!)",
		"IF(A1>0,B:B,2:2)&_xlnm.Total",
	}

	for _, input := range inputs {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			direct, directCalls, err := evaluate(t, input)
			require.NoError(t, err)

			p, err := New(model.NewVocabulary())
			require.NoError(t, err)
			tree, err := p.Build(context.Background(), "test", lex(t, input))
			require.NoError(t, err)

			r := &recorder{}
			replayed := Replay(tree, NewEvaluator(r, r))
			require.Equal(t, direct, replayed)
			require.Equal(t, directCalls.calls, r.calls)
		})
	}
}

func TestEncodeTree(t *testing.T) {
	t.Parallel()

	p, err := New(model.NewVocabulary(), OptionWithMissingArguments(true))
	require.NoError(t, err)
	tree, err := p.Build(context.Background(), "test", lex(t, "SUM('Q 1'!$A$1:B2,{-1,\"a\";TRUE,#N/A},(C1,D1) E:E,3:4,,Total)-#REF!%"))
	require.NoError(t, err)

	encoded, err := EncodeTree(tree)
	require.NoError(t, err)
	decoded, err := DecodeTree(encoded)
	require.NoError(t, err)
	require.Equal(t, tree, decoded)

	_, err = EncodeTree(NodeConstant{Value: model.Blank{}})
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeInvalidTreeEncoding, e.Code())
}

func TestConcurrentParses(t *testing.T) {
	t.Parallel()

	p, err := New(model.NewVocabulary())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Node, 16)
	errs := make([]error, 16)
	for x := 0; x < len(results); x = x + 1 {
		wg.Add(1)
		go func(x int) {
			defer wg.Done()
			l, _ := lexer.New(model.NewVocabulary())
			input := fmt.Sprintf("(A%d,B%d)+%d", x+1, x+1, x)
			results[x], errs[x] = p.Build(context.Background(), "test", l.Tokens(context.Background(), "test", strings.NewReader(input)))
		}(x)
	}
	wg.Wait()

	for x, n := range results {
		require.NoError(t, errs[x])
		infix, ok := n.(NodeInfix)
		require.True(t, ok)
		require.Equal(t, NodeConstant{Value: model.Number(float64(x))}, infix.Right)
		union, ok := infix.Left.(NodeUnion)
		require.True(t, ok)
		require.Equal(t, NodeCell{Ref: model.CellRef{Column: 1, Row: x + 1}}, union.Operands[0])
	}
}
