// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package optional

// Optional carries a value that may be absent. The grammar uses an absent
// result to signal that a rule failed and already reported why.
type Optional[T any] struct {
	present bool
	value   T
}

func (self Optional[T]) IsPresent() bool {
	return self.present
}

func (self Optional[T]) Value() T {
	return self.value
}

// ValueOr returns the value when present and fallback otherwise.
func (self Optional[T]) ValueOr(fallback T) T {
	if !self.present {
		return fallback
	}
	return self.value
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{
		present: true,
		value:   v,
	}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}
