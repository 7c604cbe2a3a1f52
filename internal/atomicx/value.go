/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package atomicx provides small lock-free containers used by the listener,
// connection and preconnection state machines: a typed value, a counter
// (which accepts negative deltas) and a boolean flag. State transitions never take a mutex; they swap an
// atomic.Value or add to an atomic.Int64 instead.
package atomicx

import (
	"sync/atomic"
)

// Value is a type-safe wrapper around sync/atomic.Value.
type Value[T any] struct {
	av atomic.Value
	df T
}

// NewValue returns a Value initialized to the zero value of T.
func NewValue[T any]() *Value[T] {
	return &Value[T]{}
}

// SetDefault configures the value returned by Load when nothing has been stored yet.
func (v *Value[T]) SetDefault(def T) {
	v.df = def
}

// Load returns the current value, or the configured default if nothing has
// been stored, or if the stored value cannot be cast to T.
func (v *Value[T]) Load() T {
	if val, ok := cast[T](v.av.Load()); ok {
		return val
	}
	return v.df
}

// Store sets the value.
func (v *Value[T]) Store(val T) {
	v.av.Store(box{v: val})
}

// Swap atomically stores val and returns the previous value.
func (v *Value[T]) Swap(val T) (old T) {
	prev := v.av.Swap(box{v: val})
	if b, ok := cast[T](prev); ok {
		return b
	}
	return v.df
}

// box wraps T so a nil/zero T can still be stored in sync/atomic.Value,
// which otherwise panics on two Store calls of inconsistent concrete type.
type box struct{ v any }

func cast[T any](src any) (T, bool) {
	var zero T
	b, ok := src.(box)
	if !ok {
		return zero, false
	}
	v, ok := b.v.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
