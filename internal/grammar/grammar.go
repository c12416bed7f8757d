// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package grammar parses formula token streams. The same rules evaluate a
// formula directly against a model.Context, build a tree for later replay,
// or recognize input without side effects.
package grammar

// Grammar is the formula grammar in EBNF. Lower-case productions are token
// kinds produced by the lexer. Whitespace never appears in the grammar but
// decides whether Intersection continues.
const Grammar = `
Formula               = Comparison .
Comparison            = Concat { CompareOp Concat } .
CompareOp             = "=" | "<>" | "<" | ">" | "<=" | ">=" .
Concat                = Additive { "&" Additive } .
Additive              = Multiplicative { ( "+" | "-" ) Multiplicative } .
Multiplicative        = Exponent { ( "*" | "/" ) Exponent } .
Exponent              = Percent { "^" Percent } .
Percent               = Unary [ "%" ] .
Unary                 = { "+" | "-" } Intersection .
Intersection          = RangeJoin { RangeJoin } .
RangeJoin             = Atom { ":" Atom } .
Atom                  = reserved_name | Reference | Paren | Constant | FunctionCall | ConstantArray .
Reference             = ReferenceItem | ReferenceFunctionCall | SheetPrefix SheetRange .
SheetRange            = ReferenceItem { ":" ReferenceItem } .
SheetPrefix           = sheet | sheet_quoted .
ReferenceItem         = cell | name | column_range | row_range | ref_error .
ReferenceFunctionCall = ( ref_function | conditional_ref_function ) Arguments ")" .
Paren                 = RefUnion | FormulaParen .
RefUnion              = "(" Intersection { "," Intersection } ")" .
FormulaParen          = "(" Comparison ")" .
Constant              = number | string | boolean | formula_error .
FunctionCall          = function Arguments ")" .
Arguments             = { "," } [ Comparison { "," [ Comparison ] } ] .
ConstantArray         = "{" ArrayConstant { ( "," | ";" ) ArrayConstant } "}" .
ArrayConstant         = [ "+" | "-" ] number | string | boolean | formula_error | ref_error .

reserved_name            = "_xlnm.Name" .
cell                     = "A1" .
name                     = "Name" .
column_range             = "A:C" .
row_range                = "1:3" .
ref_error                = "#REF!" .
sheet                    = "Sheet1!" .
sheet_quoted             = "'Sheet 1'!" .
ref_function             = "INDEX(" .
conditional_ref_function = "IF(" .
function                 = "SUM(" .
number                   = "1.5" .
string                   = "\"text\"" .
boolean                  = "TRUE" .
formula_error            = "#N/A" .
`
