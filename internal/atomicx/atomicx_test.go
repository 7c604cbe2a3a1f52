/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package atomicx_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/taps-core/internal/atomicx"
)

var _ = Describe("Value", func() {
	It("returns the zero value of T before any Store", func() {
		v := atomicx.NewValue[string]()
		Expect(v.Load()).To(Equal(""))
	})

	It("returns the configured default before any Store", func() {
		v := atomicx.NewValue[int]()
		v.SetDefault(7)
		Expect(v.Load()).To(Equal(7))
	})

	It("round-trips a stored value of the generic type", func() {
		v := atomicx.NewValue[bool]()
		v.Store(true)
		Expect(v.Load()).To(BeTrue())
		v.Store(false)
		Expect(v.Load()).To(BeFalse())
	})

	It("Swap returns the previous value and installs the new one", func() {
		v := atomicx.NewValue[int]()
		v.Store(1)
		old := v.Swap(2)
		Expect(old).To(Equal(1))
		Expect(v.Load()).To(Equal(2))
	})

	It("is safe for concurrent Store/Load", func() {
		v := atomicx.NewValue[int]()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				v.Store(n)
				_ = v.Load()
			}(i)
		}
		wg.Wait()
	})
})

var _ = Describe("Counter", func() {
	It("starts at zero", func() {
		var c atomicx.Counter
		Expect(c.Load()).To(Equal(int64(0)))
	})

	It("adds positive and negative deltas", func() {
		var c atomicx.Counter
		Expect(c.Add(1)).To(Equal(int64(1)))
		Expect(c.Add(1)).To(Equal(int64(2)))
		Expect(c.Add(-2)).To(Equal(int64(0)))
	})
})

var _ = Describe("Flag", func() {
	It("Set returns the previous value", func() {
		var f atomicx.Flag
		Expect(f.Set(true)).To(BeFalse())
		Expect(f.Get()).To(BeTrue())
		Expect(f.Set(false)).To(BeTrue())
	})

	It("CompareAndSwap only swaps when the current value matches old", func() {
		var f atomicx.Flag
		Expect(f.CompareAndSwap(true, false)).To(BeFalse())
		Expect(f.Get()).To(BeFalse())

		Expect(f.CompareAndSwap(false, true)).To(BeTrue())
		Expect(f.Get()).To(BeTrue())
	})
})
