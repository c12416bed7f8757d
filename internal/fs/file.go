// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"bufio"
	"context"
	"io"
	"strings"

	"gopkg.microglot.org/formula.go/internal/model"
)

// NewFileString wraps static string content in model.File.
func NewFileString(path string, content string, kind model.FileKind) model.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}, kind)
}

type fileIOFunc struct {
	path string
	kind model.FileKind
	body func() (io.ReadCloser, error)
}

// NewFileFN wraps file based content in the model.File interface. The body
// function is called on every call to Body so it must return a new
// io.ReadCloser each time.
func NewFileFN(path string, body func() (io.ReadCloser, error), kind model.FileKind) model.File {
	return &fileIOFunc{
		path: path,
		kind: kind,
		body: body,
	}
}

func (f *fileIOFunc) Path(ctx context.Context) string {
	return f.path
}
func (f *fileIOFunc) Kind(ctx context.Context) model.FileKind {
	return f.kind
}
func (f *fileIOFunc) Body(ctx context.Context) (io.ReadCloser, error) {
	rc, err := f.body()
	if err != nil {
		return nil, err
	}
	return &bufioReaderCloser{
		Reader: bufio.NewReader(rc),
		Closer: rc,
	}, nil
}

type bufioReaderCloser struct {
	*bufio.Reader
	io.Closer
}
