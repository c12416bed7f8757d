// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

const (
	CodeUnknownFatal          = "F0000"
	CodeUnexpectedCharacter   = "F0001"
	CodeUnterminatedString    = "F0002"
	CodeUnexpectedToken       = "F0100"
	CodeIncompleteParse       = "F0101"
	CodeUnexpectedEOF         = "F0102"
	CodeInvalidLiteral        = "F0103"
	CodeMissingResolver       = "F0104"
	CodeInvalidGrammar        = "F0200"
	CodeInvalidTreeEncoding   = "F0201"
	CodeInvalidWorkbookInput  = "F0300"
	CodeFileNotFound          = "F0400"
	CodePermissionDenied      = "F0401"
	CodeUnsupportedFileFormat = "F0402"
)

var (
	defaultNonFatal = map[string]bool{}
)
