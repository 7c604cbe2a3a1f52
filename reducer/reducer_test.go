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

package reducer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/taps-core/ability"
	"github.com/nabbar/taps-core/catalog"
	"github.com/nabbar/taps-core/property"
	"github.com/nabbar/taps-core/reducer"
	"github.com/nabbar/taps-core/tapserr"
)

var _ = Describe("Reduce", func() {
	tcp := catalog.Descriptor{
		Name: "tcp", Protocol: "tcp", ModulePath: "tcp.so",
		Supported: ability.Mask(ability.Reliability) | ability.Mask(ability.PreserveOrder),
	}
	udp := catalog.Descriptor{
		Name: "udp", Protocol: "udp", ModulePath: "udp.so",
		Supported: ability.Mask(ability.ZeroRttMsg),
	}
	quic := catalog.Descriptor{
		Name: "quic", Protocol: "quic", ModulePath: "quic.so",
		Supported: ability.Mask(ability.Reliability) | ability.Mask(ability.Multistreaming) | ability.Mask(ability.ZeroRttMsg),
	}

	It("rejects a descriptor that lacks a required ability", func() {
		props := property.New()
		props.Set(ability.Reliability, property.Require)

		out, err := reducer.Reduce(props, []catalog.Descriptor{tcp, udp, quic})
		Expect(err).NotTo(HaveOccurred())

		names := make([]string, len(out))
		for i, c := range out {
			names[i] = c.Name
		}
		Expect(names).To(ConsistOf("tcp", "quic"))
	})

	It("rejects a descriptor carrying a prohibited ability", func() {
		props := property.New()
		props.Set(ability.ZeroRttMsg, property.Prohibit)

		out, err := reducer.Reduce(props, []catalog.Descriptor{tcp, udp, quic})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(1))
		Expect(out[0].Name).To(Equal("tcp"))
	})

	It("scores prefer higher than avoid and sorts descending", func() {
		props := property.New()
		props.Set(ability.Multistreaming, property.Prefer)
		props.Set(ability.ZeroRttMsg, property.Avoid)

		out, err := reducer.Reduce(props, []catalog.Descriptor{tcp, udp, quic})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(3))
		// quic: +100 (multistreaming) -1 (zeroRtt) = 99
		Expect(out[0].Name).To(Equal("quic"))
		Expect(out[0].Score).To(Equal(99))
	})

	It("keeps catalog order among equal scores (stable sort)", func() {
		props := property.New()
		out, err := reducer.Reduce(props, []catalog.Descriptor{tcp, udp, quic})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(3))
		Expect(out[0].Score).To(Equal(0))
		Expect(out[1].Score).To(Equal(0))
		Expect(out[2].Score).To(Equal(0))
		Expect(out[0].Name).To(Equal("tcp"))
		Expect(out[1].Name).To(Equal("udp"))
		Expect(out[2].Name).To(Equal("quic"))
	})

	It("returns NoViableProtocol when every descriptor is filtered out", func() {
		props := property.New()
		props.Set(ability.Reliability, property.Prohibit)

		_, err := reducer.Reduce(props, []catalog.Descriptor{tcp})
		Expect(tapserr.Is(err, tapserr.NoViableProtocol)).To(BeTrue())
	})

	It("propagates a nil property set as InvalidArgument", func() {
		var props *property.Set
		_, err := reducer.Reduce(props, []catalog.Descriptor{tcp})
		Expect(tapserr.Is(err, tapserr.InvalidArgument)).To(BeTrue())
	})
})

var _ = Describe("ApplyModes", func() {
	withMultipath := catalog.Descriptor{
		Name: "mptcp", ModulePath: "mptcp.so",
		Supported: ability.Mask(ability.Multipath),
	}
	withoutMultipath := catalog.Descriptor{
		Name: "tcp", ModulePath: "tcp.so",
	}

	It("drops candidates missing multipath support when multipath is requested", func() {
		props := property.New()
		props.Multipath = property.MultipathActive

		in := []reducer.Candidate{{Descriptor: withMultipath}, {Descriptor: withoutMultipath}}
		out, err := reducer.ApplyModes(props, in)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(1))
		Expect(out[0].Name).To(Equal("mptcp"))
	})

	It("is a pure pass-through when every mode field is default", func() {
		props := property.New()
		in := []reducer.Candidate{{Descriptor: withMultipath}, {Descriptor: withoutMultipath}}
		out, err := reducer.ApplyModes(props, in)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(2))
	})

	It("returns NoViableProtocol when every candidate is dropped", func() {
		props := property.New()
		props.AdvertisesAltAddr = true

		in := []reducer.Candidate{{Descriptor: withoutMultipath}}
		_, err := reducer.ApplyModes(props, in)
		Expect(tapserr.Is(err, tapserr.NoViableProtocol)).To(BeTrue())
	})

	It("never reinstates a candidate Reduce already rejected", func() {
		props := property.New()
		out, err := reducer.ApplyModes(props, nil)
		Expect(out).To(BeNil())
		Expect(tapserr.Is(err, tapserr.NoViableProtocol)).To(BeTrue())
	})
})
