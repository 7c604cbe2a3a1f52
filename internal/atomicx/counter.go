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

package atomicx

import "sync/atomic"

// Counter is a lock-free non-negative reference counter, used by the
// listener state machine to track outstanding child connections.
type Counter struct {
	n atomic.Int64
}

// Add adds delta (which may be negative) and returns the result.
func (c *Counter) Add(delta int64) int64 {
	return c.n.Add(delta)
}

// Load returns the current count.
func (c *Counter) Load() int64 {
	return c.n.Load()
}

// Flag is a lock-free boolean.
type Flag struct {
	v atomic.Bool
}

// Set stores b and returns the previous value.
func (f *Flag) Set(b bool) (old bool) {
	return f.v.Swap(b)
}

// Get returns the current value.
func (f *Flag) Get() bool {
	return f.v.Load()
}

// CompareAndSwap atomically sets to new if the current value is old.
func (f *Flag) CompareAndSwap(old, new bool) bool {
	return f.v.CompareAndSwap(old, new)
}
