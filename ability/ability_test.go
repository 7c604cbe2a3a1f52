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

package ability_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/taps-core/ability"
)

var _ = Describe("Bit vocabulary", func() {
	It("names exactly Count bits", func() {
		Expect(ability.All).To(HaveLen(ability.Count))
	})

	It("round-trips every bit through String and Lookup", func() {
		for _, b := range ability.All {
			name := b.String()
			Expect(name).NotTo(Equal("unknown"))

			got, ok := ability.Lookup(name)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(b))
		}
	})

	It("reports unknown for an unassigned bit", func() {
		Expect(ability.Bit(0).String()).To(Equal("unknown"))
	})

	It("ignores unknown catalog names on Lookup", func() {
		_, ok := ability.Lookup("not-a-real-ability")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Mask", func() {
	var m ability.Mask

	BeforeEach(func() {
		m = ability.Mask(0)
	})

	It("Set adds a bit and Has reports it", func() {
		m = m.Set(ability.Reliability)
		Expect(m.Has(ability.Mask(ability.Reliability))).To(BeTrue())
		Expect(m.Has(ability.Mask(ability.Multistreaming))).To(BeFalse())
	})

	It("Has requires every bit in sub to be set", func() {
		m = m.Set(ability.Reliability).Set(ability.KeepAlive)
		sub := ability.Mask(ability.Reliability) | ability.Mask(ability.KeepAlive)
		Expect(m.Has(sub)).To(BeTrue())

		sub = sub | ability.Mask(ability.Multipath)
		Expect(m.Has(sub)).To(BeFalse())
	})

	It("Popcount counts the set bits", func() {
		Expect(m.Popcount()).To(Equal(0))
		m = m.Set(ability.Reliability).Set(ability.KeepAlive).Set(ability.Multipath)
		Expect(m.Popcount()).To(Equal(3))
	})

	It("Intersect returns only the shared bits", func() {
		a := ability.Mask(ability.Reliability) | ability.Mask(ability.KeepAlive)
		b := ability.Mask(ability.KeepAlive) | ability.Mask(ability.Multipath)
		Expect(a.Intersect(b)).To(Equal(ability.Mask(ability.KeepAlive)))
	})
})
