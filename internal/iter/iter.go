// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"context"

	"gopkg.microglot.org/formula.go/internal/model"
	"gopkg.microglot.org/formula.go/internal/optional"
)

// NewSlice converts a slice of values into an Iterator implementation.
func NewSlice[T any](vs []T) model.Iterator[T] {
	return &iteratorSlice[T]{slice: vs, offset: -1}
}

type iteratorSlice[T any] struct {
	slice  []T
	offset int
}

func (it *iteratorSlice[T]) Next(ctx context.Context) optional.Optional[T] {
	it.offset = it.offset + 1
	if it.offset >= len(it.slice) {
		return optional.None[T]()
	}
	return optional.Some(it.slice[it.offset])
}

func (it *iteratorSlice[T]) Close(ctx context.Context) error {
	return nil
}

// NewIteratorFilter wraps an iterator with a filter so that only values that
// pass the filter are returned.
func NewIteratorFilter[T any](it model.Iterator[T], f model.Filter[T]) model.Iterator[T] {
	return &iteratorFilter[T]{
		iter:   it,
		filter: f,
	}
}

type iteratorFilter[T any] struct {
	iter   model.Iterator[T]
	filter model.Filter[T]
}

func (it *iteratorFilter[T]) Next(ctx context.Context) optional.Optional[T] {
	for {
		v := it.iter.Next(ctx)
		if !v.IsPresent() {
			return v
		}
		if it.filter.Keep(ctx, v.Value()) {
			return v
		}
	}
}

func (it *iteratorFilter[T]) Close(ctx context.Context) error {
	return it.iter.Close(ctx)
}

// NewIteratorMap wraps an iterator so that every value passes through f.
func NewIteratorMap[T any](it model.Iterator[T], f func(ctx context.Context, v T) T) model.Iterator[T] {
	return &iteratorMap[T]{
		iter: it,
		f:    f,
	}
}

type iteratorMap[T any] struct {
	iter model.Iterator[T]
	f    func(ctx context.Context, v T) T
}

func (it *iteratorMap[T]) Next(ctx context.Context) optional.Optional[T] {
	v := it.iter.Next(ctx)
	if !v.IsPresent() {
		return v
	}
	return optional.Some(it.f(ctx, v.Value()))
}

func (it *iteratorMap[T]) Close(ctx context.Context) error {
	return it.iter.Close(ctx)
}

// NewLookahead wraps an iterator in a Lookahead implementation to enable
// peeking at the next n values.
func NewLookahead[T any](it model.Iterator[T], n uint8) model.Lookahead[T] {
	return &lookahead[T]{
		iter: it,
		n:    n,
	}
}

type lookahead[T any] struct {
	iter  model.Iterator[T]
	n     uint8
	peeks []optional.Optional[T]
}

func (look *lookahead[T]) init(ctx context.Context) {
	if look.peeks == nil {
		look.peeks = make([]optional.Optional[T], look.n+1)
		for x := 0; x <= int(look.n); x = x + 1 {
			look.peeks[x] = look.iter.Next(ctx)
		}
	}
}

func (look *lookahead[T]) Next(ctx context.Context) optional.Optional[T] {
	if look.peeks == nil {
		look.init(ctx)
		return look.peeks[0]
	}
	copy(look.peeks, look.peeks[1:])
	look.peeks[len(look.peeks)-1] = look.iter.Next(ctx)
	return look.peeks[0]
}

func (look *lookahead[T]) Close(ctx context.Context) error {
	return look.iter.Close(ctx)
}

func (look *lookahead[T]) Lookahead(ctx context.Context, n uint8) optional.Optional[T] {
	if look.peeks == nil {
		look.init(ctx)
	}
	if n > look.n {
		return optional.None[T]()
	}
	return look.peeks[n]
}

// Collect drains an iterator and closes it. The values read before a Close
// error are still returned.
func Collect[T any](ctx context.Context, it model.Iterator[T]) ([]T, error) {
	var out []T
	for v := it.Next(ctx); v.IsPresent(); v = it.Next(ctx) {
		out = append(out, v.Value())
	}
	return out, it.Close(ctx)
}

// Cursor is a rewindable position over a fixed slice. Mark and Reset give
// callers an atomic way to abandon a speculative read.
type Cursor[T any] struct {
	slice  []T
	offset int
}

func NewCursor[T any](vs []T) *Cursor[T] {
	return &Cursor[T]{slice: vs}
}

// Peek returns the value n positions past the current one without
// consuming anything.
func (c *Cursor[T]) Peek(n int) optional.Optional[T] {
	at := c.offset + n
	if at < 0 || at >= len(c.slice) {
		return optional.None[T]()
	}
	return optional.Some(c.slice[at])
}

// Previous returns the most recently consumed value.
func (c *Cursor[T]) Previous() optional.Optional[T] {
	return c.Peek(-1)
}

func (c *Cursor[T]) Advance() {
	if c.offset < len(c.slice) {
		c.offset = c.offset + 1
	}
}

func (c *Cursor[T]) Mark() int {
	return c.offset
}

func (c *Cursor[T]) Reset(mark int) {
	c.offset = mark
}

func (c *Cursor[T]) Done() bool {
	return c.offset >= len(c.slice)
}

// FilterFunc is an adaptor for simple filter functions that makes them
// compatible with the Filter interface. Use like:
//
//	FilterFunc[T](func(ctx context.Context, val T) bool { return true })
//
// Note that this type should never be referenced directly in any signature.
// Always use Filter as an input or output type.
type FilterFunc[T any] func(ctx context.Context, val T) bool

func (f FilterFunc[T]) Keep(ctx context.Context, val T) bool {
	return f(ctx, val)
}
