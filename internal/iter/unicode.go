// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"io"
	"unicode/utf8"

	"gopkg.microglot.org/formula.go/internal/model"
	"gopkg.microglot.org/formula.go/internal/optional"
)

// NewRunes converts a reader into an iterator of code points. Read errors
// end the iteration and are returned from Close.
func NewRunes(r io.Reader) model.Iterator[rune] {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanRunes)
	closer, _ := r.(io.Closer)
	return &runes{
		scanner: scanner,
		closer:  closer,
	}
}

type runes struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

func (self *runes) Next(ctx context.Context) optional.Optional[rune] {
	if ctx.Err() != nil {
		return optional.None[rune]()
	}
	if !self.scanner.Scan() {
		return optional.None[rune]()
	}
	r, _ := utf8.DecodeRune(self.scanner.Bytes())
	return optional.Some(r)
}

func (self *runes) Close(ctx context.Context) error {
	if self.closer != nil {
		_ = self.closer.Close()
	}
	if err := self.scanner.Err(); err != nil {
		return err
	}
	return ctx.Err()
}
