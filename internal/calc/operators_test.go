// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package calc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/formula.go/internal/model"
)

func TestInfix(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		left     model.Value
		op       model.Operator
		right    model.Value
		expected model.Value
	}{
		{name: "add", left: model.Number(1), op: model.OperatorAdd, right: model.Number(2), expected: model.Number(3)},
		{name: "add numeric text", left: model.Text("1.5"), op: model.OperatorAdd, right: model.Boolean(true), expected: model.Number(2.5)},
		{name: "add blank", left: model.Blank{}, op: model.OperatorAdd, right: model.Number(2), expected: model.Number(2)},
		{name: "add word", left: model.Text("x"), op: model.OperatorAdd, right: model.Number(2), expected: errValue},
		{name: "add hex float text", left: model.Text("0x1p4"), op: model.OperatorAdd, right: model.Number(1), expected: errValue},
		{name: "add underscored text", left: model.Text("1_0"), op: model.OperatorAdd, right: model.Number(1), expected: errValue},
		{name: "add infinity text", left: model.Text("inf"), op: model.OperatorAdd, right: model.Number(1), expected: errValue},
		{name: "add nan text", left: model.Text("nan"), op: model.OperatorAdd, right: model.Number(1), expected: errValue},
		{name: "add signed exponent text", left: model.Text("-2.5e1"), op: model.OperatorAdd, right: model.Number(1), expected: model.Number(-24)},
		{name: "divide by zero", left: model.Number(1), op: model.OperatorDivide, right: model.Number(0), expected: errDiv},
		{name: "power", left: model.Number(2), op: model.OperatorPower, right: model.Number(10), expected: model.Number(1024)},
		{name: "zero to the zero", left: model.Number(0), op: model.OperatorPower, right: model.Number(0), expected: errNum},
		{name: "negative root", left: model.Number(-8), op: model.OperatorPower, right: model.Number(0.5), expected: errNum},
		{name: "concat", left: model.Number(1.5), op: model.OperatorConcat, right: model.Boolean(false), expected: model.Text("1.5FALSE")},
		{name: "left error wins", left: errDiv, op: model.OperatorAdd, right: errNum, expected: errDiv},
		{name: "error through concat", left: model.Text("a"), op: model.OperatorConcat, right: errNotAvl, expected: errNotAvl},
		{name: "text equality ignores case", left: model.Text("abc"), op: model.OperatorEqual, right: model.Text("ABC"), expected: model.Boolean(true)},
		{name: "number before text", left: model.Number(100), op: model.OperatorLesser, right: model.Text("1"), expected: model.Boolean(true)},
		{name: "text before boolean", left: model.Boolean(false), op: model.OperatorGreater, right: model.Text("z"), expected: model.Boolean(true)},
		{name: "blank equals empty text", left: model.Blank{}, op: model.OperatorEqual, right: model.Text(""), expected: model.Boolean(true)},
		{name: "blank equals zero", left: model.Number(0), op: model.OperatorEqual, right: model.Blank{}, expected: model.Boolean(true)},
		{name: "not equal", left: model.Number(1), op: model.OperatorNotEqual, right: model.Number(2), expected: model.Boolean(true)},
		{name: "greater or equal", left: model.Number(2), op: model.OperatorGreaterEqual, right: model.Number(2), expected: model.Boolean(true)},
		{
			name:     "array and scalar",
			left:     model.Array{Rows: [][]model.Value{{model.Number(1), model.Number(2)}}},
			op:       model.OperatorMultiply,
			right:    model.Number(10),
			expected: model.Array{Rows: [][]model.Value{{model.Number(10), model.Number(20)}}},
		},
		{
			name:     "arrays of different shapes",
			left:     model.Array{Rows: [][]model.Value{{model.Number(1), model.Number(2)}}},
			op:       model.OperatorAdd,
			right:    model.Array{Rows: [][]model.Value{{model.Number(1)}, {model.Number(2)}}},
			expected: model.Array{Rows: [][]model.Value{{model.Number(2), errNotAvl}, {errNotAvl, errNotAvl}}},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, Infix(testCase.left, testCase.op, testCase.right))
		})
	}
}

func TestPrefixAndPostfix(t *testing.T) {
	t.Parallel()

	require.Equal(t, model.Number(-3), Prefix(model.OperatorSubtract, model.Number(3)))
	require.Equal(t, model.Text("x"), Prefix(model.OperatorAdd, model.Text("x")))
	require.Equal(t, errValue, Prefix(model.OperatorSubtract, model.Text("x")))
	require.Equal(t, model.Number(-1), Prefix(model.OperatorSubtract, model.Boolean(true)))
	require.Equal(t, model.Number(0.5), Postfix(model.OperatorPercent, model.Number(50)))
	require.Equal(t, model.Number(0.25), Postfix(model.OperatorPercent, model.Text("25")))
	require.Equal(t, errDiv, Postfix(model.OperatorPercent, errDiv))
	require.Equal(t,
		model.Array{Rows: [][]model.Value{{model.Number(-1)}, {model.Number(2)}}},
		Prefix(model.OperatorSubtract, model.Array{Rows: [][]model.Value{{model.Number(1)}, {model.Number(-2)}}}),
	)
}

func TestCoercion(t *testing.T) {
	t.Parallel()

	n, err := ToNumber(model.Text(" 12.5% "))
	require.NoError(t, err)
	require.Equal(t, model.Number(0.125), n)

	_, err = ToNumber(model.Text(""))
	require.Equal(t, errValue, err)

	n, err = ToNumber(model.Text("+.5"))
	require.NoError(t, err)
	require.Equal(t, model.Number(0.5), n)

	for _, text := range []string{"0x10", "1_000", "Infinity", "NaN", "-", "1e", "1.2.3"} {
		_, err = ToNumber(model.Text(text))
		require.Equal(t, errValue, err, text)
	}

	text, err := ToText(model.Number(1e21))
	require.NoError(t, err)
	require.Equal(t, model.Text("1e+21"), text)

	b, err := ToBoolean(model.Text("true"))
	require.NoError(t, err)
	require.Equal(t, model.Boolean(true), b)

	_, err = ToBoolean(model.Text("yes"))
	require.Equal(t, errValue, err)

	_, err = ToBoolean(errNum)
	require.Equal(t, errNum, err)
}
