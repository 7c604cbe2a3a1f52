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

// Package protocol defines the Protocol Module Contract (§6.1) — the five
// entry points a pluggable transport implementation exports — and a
// loader that resolves a module by path.
package protocol

import (
	"net"

	"github.com/nabbar/taps-core/eventloop"
	"github.com/nabbar/taps-core/message"
)

// ProtoCtx is the opaque context a module hands back from Listen/Connect
// and receives on every later call. The core never interprets it.
type ProtoCtx any

// ItemToken identifies one outstanding SendItem or RecvItem to the module.
type ItemToken any

// ListenCallbacks are invoked by the module while a listener is active.
type ListenCallbacks struct {
	// ConnectionReceived reports a newly-accepted peer; protoChildCtx is
	// the module's per-connection context. The core returns the token it
	// wants the module to use for subsequent per-connection callbacks.
	ConnectionReceived func(protoChildCtx ProtoCtx) (childToken ProtoCtx)
	EstablishmentError func(reason string)
	Closed             func(childToken ProtoCtx)
	ConnectionError    func(childToken ProtoCtx, reason string)
}

// ConnectCallbacks are invoked by the module while an outbound connection
// establishes and runs.
type ConnectCallbacks struct {
	Ready           func()
	Error           func(reason string)
	Closed          func()
	ConnectionError func(reason string)
}

// SendCallbacks are terminal callbacks for exactly one SendItem.
type SendCallbacks struct {
	Sent      func()
	Expired   func()
	SendError func(reason string)
}

// ReceiveCallbacks are callbacks for one RecvItem, possibly invoked more
// than once (ReceivedPartial) before a terminal call.
type ReceiveCallbacks struct {
	Received        func(iov []message.Buf, nbytes int)
	ReceivedPartial func(iov []message.Buf, nbytes int)
	ReceiveError    func(reason string)
}

// Module is the Go-native shape of the five-symbol Protocol Module
// Contract from §6.1. A plugin loaded by Loader.Load exposes, as
// package-level functions with these exact signatures, the methods its
// role requires (see resolveSymbols for which symbols each role needs and
// Loader for the symbol names).
type Module interface {
	// Listen starts accepting inbound connections on addr. Returns the
	// module's opaque listen context, or an error if the module could not
	// start (§4.3: "listen"+"stop"+"send"+"receive" resolve for a
	// listener).
	Listen(loop eventloop.Loop, addr net.Addr, cb ListenCallbacks) (ProtoCtx, error)

	// Stop begins an asynchronous graceful stop of a listen context
	// previously returned by Listen. onStopped fires exactly once, after
	// which the module guarantees no further callbacks on ctx.
	Stop(ctx ProtoCtx, onStopped func())

	// Connect initiates an outbound connection. Returns the module's
	// opaque connection context, or an error.
	Connect(loop eventloop.Loop, addr net.Addr, cb ConnectCallbacks) (ProtoCtx, error)

	// Send dispatches exactly one outstanding send for ctx. The core never
	// calls Send again for the same ctx until one of cb's three callbacks
	// has fired (§4.6's at-most-one discipline).
	Send(ctx ProtoCtx, item ItemToken, iov []message.Buf, cb SendCallbacks) error

	// Receive dispatches exactly one outstanding receive for ctx, under
	// the same at-most-one discipline as Send.
	Receive(ctx ProtoCtx, item ItemToken, iov []message.Buf, cb ReceiveCallbacks)
}
