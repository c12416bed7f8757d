// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package workbook

import (
	"strings"

	"gopkg.microglot.org/formula.go/internal/calc"
	"gopkg.microglot.org/formula.go/internal/model"
)

// Sum adds its arguments. Values given directly are coerced to numbers.
// Inside references and arrays only numbers count and text is skipped.
// The first error wins.
func Sum(r *Resolver, args []model.Value) model.Value {
	var total model.Number
	for _, arg := range args {
		switch arg.(type) {
		case model.Reference, model.Array:
			for _, v := range r.Values(arg) {
				switch v := v.(type) {
				case model.Number:
					total = total + v
				case model.ErrorValue:
					return v
				}
			}
		case model.Missing:
		default:
			n, err := calc.ToNumber(arg)
			if err != nil {
				return err.(model.ErrorValue)
			}
			total = total + n
		}
	}
	return total
}

// Concat joins the text of every argument, expanding references cell by cell.
func Concat(r *Resolver, args []model.Value) model.Value {
	var b strings.Builder
	for _, arg := range args {
		for _, v := range r.Values(arg) {
			t, err := calc.ToText(v)
			if err != nil {
				return err.(model.ErrorValue)
			}
			b.WriteString(string(t))
		}
	}
	return model.Text(b.String())
}
