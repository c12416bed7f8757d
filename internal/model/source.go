// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"io"
)

type FileKind uint32

const (
	FileKindNone FileKind = iota
	// FileKindFormulas holds one formula per line.
	FileKindFormulas
	// FileKindCells holds one workbook assignment per line, such as A1=42
	// or Total=A1:A3.
	FileKindCells
)

func (k FileKind) String() string {
	switch k {
	case FileKindNone:
		return "none"
	case FileKindFormulas:
		return "formulas"
	case FileKindCells:
		return "cells"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	// Body returns a fresh reader on every call.
	Body(ctx context.Context) (io.ReadCloser, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
}
