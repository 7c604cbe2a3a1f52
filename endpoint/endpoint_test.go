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

package endpoint_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/taps-core/endpoint"
	"github.com/nabbar/taps-core/tapserr"
)

var _ = Describe("Endpoint", func() {
	It("starts with every optional field unset", func() {
		e := endpoint.New()
		_, ok := e.Hostname()
		Expect(ok).To(BeFalse())
		_, ok = e.Port()
		Expect(ok).To(BeFalse())
	})

	It("gives every new Endpoint a distinct ID", func() {
		a, b := endpoint.New(), endpoint.New()
		Expect(a.ID()).NotTo(Equal(b.ID()))
	})

	DescribeTable("set-once fields reject a second write with Busy",
		func(setTwice func(e *endpoint.Endpoint) error) {
			e := endpoint.New()
			Expect(setTwice(e)).To(Succeed())
			err := setTwice(e)
			Expect(err).To(HaveOccurred())
			Expect(tapserr.Is(err, tapserr.Busy)).To(BeTrue())
		},
		Entry("hostname", func(e *endpoint.Endpoint) error { return e.WithHostname("example.com") }),
		Entry("service", func(e *endpoint.Endpoint) error { return e.WithService("https") }),
		Entry("ipv4", func(e *endpoint.Endpoint) error { return e.WithIPv4(net.IPv4(127, 0, 0, 1)) }),
		Entry("ipv6", func(e *endpoint.Endpoint) error { return e.WithIPv6(net.IPv6loopback) }),
		Entry("port", func(e *endpoint.Endpoint) error { return e.WithPort(443) }),
		Entry("interface", func(e *endpoint.Endpoint) error { return e.WithInterface("eth0") }),
		Entry("protocol", func(e *endpoint.Endpoint) error { return e.WithProtocol("tcp") }),
		Entry("stun", func(e *endpoint.Endpoint) error { return e.WithStun(endpoint.StunServer{Address: "stun:3478"}) }),
	)

	It("returns the value and ok=true once a field is set", func() {
		e := endpoint.New()
		Expect(e.WithPort(443)).To(Succeed())
		port, ok := e.Port()
		Expect(ok).To(BeTrue())
		Expect(port).To(Equal(uint16(443)))
	})
})

var _ = Describe("AliasSet", func() {
	It("treats every fresh ID as its own singleton class", func() {
		a := endpoint.NewAliasSet()
		x := endpoint.ID(endpoint.New().ID())
		Expect(a.SameClass(x, x)).To(BeTrue())
	})

	It("merges two IDs into the same class once Linked", func() {
		a := endpoint.NewAliasSet()
		x, y, z := endpoint.New().ID(), endpoint.New().ID(), endpoint.New().ID()

		Expect(a.SameClass(x, y)).To(BeFalse())
		a.Link(x, y)
		Expect(a.SameClass(x, y)).To(BeTrue())
		Expect(a.SameClass(x, z)).To(BeFalse())
	})

	It("is transitive across chained links", func() {
		a := endpoint.NewAliasSet()
		x, y, z := endpoint.New().ID(), endpoint.New().ID(), endpoint.New().ID()

		a.Link(x, y)
		a.Link(y, z)
		Expect(a.SameClass(x, z)).To(BeTrue())
	})

	It("Class lists every member of the equivalence class", func() {
		a := endpoint.NewAliasSet()
		x, y, z := endpoint.New().ID(), endpoint.New().ID(), endpoint.New().ID()
		a.Link(x, y)

		Expect(a.Class(x)).To(ConsistOf(x, y))
		Expect(a.Class(z)).To(ConsistOf(z))
	})
})
