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

package preconnection_test

import (
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/taps-core/ability"
	"github.com/nabbar/taps-core/catalog"
	"github.com/nabbar/taps-core/connection"
	"github.com/nabbar/taps-core/endpoint"
	"github.com/nabbar/taps-core/eventloop"
	"github.com/nabbar/taps-core/listener"
	"github.com/nabbar/taps-core/message"
	"github.com/nabbar/taps-core/preconnection"
	"github.com/nabbar/taps-core/property"
	"github.com/nabbar/taps-core/protocol"
	"github.com/nabbar/taps-core/tapserr"
)

// fakeModule is an in-process protocol.Module standing in for the bundled
// tcp module, driven manually from the test body the way the Protocol
// Module Contract's async callbacks would be driven by a real transport.
type fakeModule struct {
	connectCb protocol.ConnectCallbacks
	listenCb  protocol.ListenCallbacks
}

func (m *fakeModule) Listen(loop eventloop.Loop, addr net.Addr, cb protocol.ListenCallbacks) (protocol.ProtoCtx, error) {
	m.listenCb = cb
	return "listen-ctx", nil
}
func (m *fakeModule) Stop(protocol.ProtoCtx, func()) {}
func (m *fakeModule) Connect(loop eventloop.Loop, addr net.Addr, cb protocol.ConnectCallbacks) (protocol.ProtoCtx, error) {
	m.connectCb = cb
	return "connect-ctx", nil
}
func (m *fakeModule) Send(protocol.ProtoCtx, protocol.ItemToken, []message.Buf, protocol.SendCallbacks) error {
	return nil
}
func (m *fakeModule) Receive(protocol.ProtoCtx, protocol.ItemToken, []message.Buf, protocol.ReceiveCallbacks) {
}

func tcpDescriptor() catalog.Descriptor {
	return catalog.Descriptor{
		Name: "tcp", Protocol: "tcp", ModulePath: "inproc://tcp",
		Supported: ability.Mask(ability.Reliability) | ability.Mask(ability.PreserveOrder),
	}
}

func localEndpoint(port uint16) *endpoint.Endpoint {
	e := endpoint.New()
	Expect(e.WithIPv4(net.IPv4(127, 0, 0, 1))).To(Succeed())
	Expect(e.WithPort(port)).To(Succeed())
	return e
}

var _ = Describe("New", func() {
	It("reduces properties against the catalog and keeps a ranked candidate list", func() {
		cat := &catalog.Static{Descriptors: []catalog.Descriptor{tcpDescriptor()}}
		p, err := preconnection.New(nil, nil, property.New(), nil, cat, protocol.NewLoader(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Candidates()).To(HaveLen(1))
		Expect(p.Candidates()[0].Name).To(Equal("tcp"))
	})

	It("rejects more than MaxEndpoints local endpoints", func() {
		cat := &catalog.Static{Descriptors: []catalog.Descriptor{tcpDescriptor()}}
		var locals []*endpoint.Endpoint
		for i := 0; i < preconnection.MaxEndpoints+1; i++ {
			locals = append(locals, endpoint.New())
		}
		_, err := preconnection.New(locals, nil, property.New(), nil, cat, protocol.NewLoader(), nil)
		Expect(tapserr.Is(err, tapserr.TooManyEndpoints)).To(BeTrue())
	})

	It("fails with NoViableProtocol when the catalog satisfies nothing", func() {
		cat := &catalog.Static{}
		_, err := preconnection.New(nil, nil, property.New(), nil, cat, protocol.NewLoader(), nil)
		Expect(tapserr.Is(err, tapserr.NoViableProtocol)).To(BeTrue())
	})

	It("Candidates returns a defensive copy", func() {
		cat := &catalog.Static{Descriptors: []catalog.Descriptor{tcpDescriptor()}}
		p, err := preconnection.New(nil, nil, property.New(), nil, cat, protocol.NewLoader(), nil)
		Expect(err).NotTo(HaveOccurred())

		cands := p.Candidates()
		cands[0].Name = "mutated"
		Expect(p.Candidates()[0].Name).To(Equal("tcp"))
	})
})

func fullListenCallbacks() listener.Callbacks {
	return listener.Callbacks{
		ConnectionReceived: func(c *connection.Connection) connection.Callbacks {
			return connection.Callbacks{Closed: func() {}, ConnectionError: func(string) {}}
		},
		EstablishmentError: func(error) {},
	}
}

var _ = Describe("Listen", func() {
	It("requires at least one local endpoint", func() {
		cat := &catalog.Static{Descriptors: []catalog.Descriptor{tcpDescriptor()}}
		p, err := preconnection.New(nil, nil, property.New(), nil, cat, protocol.NewLoader(), nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = p.Listen(nil, fullListenCallbacks(), 0)
		Expect(tapserr.Is(err, tapserr.InvalidArgument)).To(BeTrue())
	})

	It("loads the top-ranked candidate's module and constructs a Listener", func() {
		cat := &catalog.Static{Descriptors: []catalog.Descriptor{tcpDescriptor()}}
		loader := protocol.NewLoader()
		loader.RegisterInProcess("inproc://tcp", &fakeModule{})

		p, err := preconnection.New([]*endpoint.Endpoint{localEndpoint(4433)}, nil, property.New(), nil, cat, loader, nil)
		Expect(err).NotTo(HaveOccurred())

		l, err := p.Listen(nil, fullListenCallbacks(), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(l).NotTo(BeNil())
	})

	It("rejects a Listen missing a required callback", func() {
		cat := &catalog.Static{Descriptors: []catalog.Descriptor{tcpDescriptor()}}
		loader := protocol.NewLoader()
		loader.RegisterInProcess("inproc://tcp", &fakeModule{})

		p, err := preconnection.New([]*endpoint.Endpoint{localEndpoint(4433)}, nil, property.New(), nil, cat, loader, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = p.Listen(nil, listener.Callbacks{}, 0)
		Expect(tapserr.Is(err, tapserr.InvalidArgument)).To(BeTrue())
	})
})

var _ = Describe("Initiate", func() {
	It("requires at least one remote endpoint", func() {
		cat := &catalog.Static{Descriptors: []catalog.Descriptor{tcpDescriptor()}}
		p, err := preconnection.New(nil, nil, property.New(), nil, cat, protocol.NewLoader(), nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = p.Initiate(nil, preconnection.InitiateCallbacks{}, 0)
		Expect(tapserr.Is(err, tapserr.InvalidArgument)).To(BeTrue())
	})

	It("fires Ready once the module reports success", func() {
		cat := &catalog.Static{Descriptors: []catalog.Descriptor{tcpDescriptor()}}
		loader := protocol.NewLoader()
		fm := &fakeModule{}
		loader.RegisterInProcess("inproc://tcp", fm)

		p, err := preconnection.New(nil, []*endpoint.Endpoint{localEndpoint(4433)}, property.New(), nil, cat, loader, nil)
		Expect(err).NotTo(HaveOccurred())

		var ready bool
		conn, err := p.Initiate(nil, preconnection.InitiateCallbacks{
			Ready: func(c *connection.Connection) { ready = true },
		}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(conn).NotTo(BeNil())

		fm.connectCb.Ready()
		Expect(ready).To(BeTrue())
	})

	It("fires EstablishmentError on a module-reported failure and never fires Ready afterward", func() {
		cat := &catalog.Static{Descriptors: []catalog.Descriptor{tcpDescriptor()}}
		loader := protocol.NewLoader()
		fm := &fakeModule{}
		loader.RegisterInProcess("inproc://tcp", fm)

		p, err := preconnection.New(nil, []*endpoint.Endpoint{localEndpoint(4433)}, property.New(), nil, cat, loader, nil)
		Expect(err).NotTo(HaveOccurred())

		var ready bool
		var estErr error
		_, err = p.Initiate(nil, preconnection.InitiateCallbacks{
			Ready:              func(*connection.Connection) { ready = true },
			EstablishmentError: func(reason error) { estErr = reason },
		}, 0)
		Expect(err).NotTo(HaveOccurred())

		fm.connectCb.Error("refused")
		fm.connectCb.Ready()

		Expect(estErr).To(HaveOccurred())
		Expect(tapserr.Is(estErr, tapserr.ProtocolFailure)).To(BeTrue())
		Expect(ready).To(BeFalse())
	})

	It("enforces a local timeout when the module never responds", func() {
		cat := &catalog.Static{Descriptors: []catalog.Descriptor{tcpDescriptor()}}
		loader := protocol.NewLoader()
		fm := &fakeModule{}
		loader.RegisterInProcess("inproc://tcp", fm)

		p, err := preconnection.New(nil, []*endpoint.Endpoint{localEndpoint(4433)}, property.New(), nil, cat, loader, nil)
		Expect(err).NotTo(HaveOccurred())

		loop := eventloop.New(8)
		Expect(loop.Start(context.Background())).To(Succeed())
		defer loop.Stop(context.Background())

		errCh := make(chan error, 1)
		_, err = p.Initiate(loop, preconnection.InitiateCallbacks{
			EstablishmentError: func(reason error) { errCh <- reason },
		}, 20*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())

		var got error
		Eventually(errCh, time.Second).Should(Receive(&got))
		Expect(tapserr.Is(got, tapserr.Unavailable)).To(BeTrue())
	})
})
