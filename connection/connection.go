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

// Package connection implements the Connection state machine (§4.6): it
// multiplexes application send/receive requests onto a protocol module
// under an at-most-one-outstanding-send and at-most-one-outstanding-receive
// discipline, provides per-direction FIFO ordering, accumulates partial
// reads up to a minimum length, and tears down gracefully on peer close or
// local free.
//
// Per §5, there is no internal locking here: every method is callable
// only from the event loop goroutine, and correctness relies on
// the loop serializing ready-events the way the source's single-threaded
// reactor does.
package connection

import (
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/nabbar/taps-core/eventloop"
	"github.com/nabbar/taps-core/internal/obslog"
	"github.com/nabbar/taps-core/message"
	"github.com/nabbar/taps-core/protocol"
	"github.com/nabbar/taps-core/tapserr"
)

// Parent is the subset of listener.Listener a Connection needs: the
// ability to deref itself when it reaches a terminal state. Kept as a
// narrow interface here (rather than importing package listener) to
// avoid a listener<->connection import cycle, since listener spawns
// Connections directly.
type Parent interface {
	Deref()
}

// Callbacks are the application-level connection-lifetime callbacks
// (§3's close/connectionError pair).
type Callbacks struct {
	Closed          func()
	ConnectionError func(reason string)
}

// SendCallbacks are the three terminal outcomes for one Send call.
type SendCallbacks struct {
	Sent      func(appToken any)
	Expired   func(appToken any)
	SendError func(appToken any, reason string)
}

// ReceiveCallbacks are the outcomes for one Receive call; ReceivedPartial
// may fire zero or more times before exactly one of Received/ReceiveError
// terminates the item.
type ReceiveCallbacks struct {
	Received        func(appToken any)
	ReceivedPartial func(appToken any)
	ReceiveError    func(appToken any, reason string)
}

type sendItem struct {
	msg      *message.Message
	appToken any
	cb       SendCallbacks
}

type recvItem struct {
	msg        *message.Message
	iov        []message.Buf
	appToken   any
	minLength  int
	maxLength  int
	currLength int
	cb         ReceiveCallbacks
}

// Connection is the core state machine of §4.6.
type Connection struct {
	id       uuid.UUID
	module   *protocol.Handle
	protoCtx protocol.ProtoCtx
	loop     eventloop.Loop
	parent   Parent
	log      obslog.FuncLog

	cb Callbacks

	sendQueue []*sendItem
	recvQueue []*recvItem

	sendReady    bool
	receiveReady bool
	closed       bool
}

// New constructs a Connection around a protocol context. For an inbound
// peer, protoCtx is the module's per-child context handed to the
// Listener's ConnectionReceived callback. For an outbound connection,
// protoCtx is whatever protocol.Module.Connect returned synchronously;
// the module still drives its own async Ready/Error callbacks before the
// application may safely Send/Receive.
func New(module *protocol.Handle, protoCtx protocol.ProtoCtx, loop eventloop.Loop, parent Parent, log obslog.FuncLog) *Connection {
	return &Connection{
		id:           uuid.New(),
		module:       module,
		protoCtx:     protoCtx,
		loop:         loop,
		parent:       parent,
		log:          log,
		sendReady:    true,
		receiveReady: true,
	}
}

// ID returns the Connection's identity, used in logging.
func (c *Connection) ID() uuid.UUID { return c.id }

func (c *Connection) logger() obslog.Logger {
	return obslog.Resolve(c.log)
}

// Bind attaches the application-level lifetime callbacks. Called once the
// application accepts an inbound connection, or once an outbound
// connection is handed back from Preconnection.Initiate.
func (c *Connection) Bind(cb Callbacks) {
	c.cb = cb
}

// CloseImmediately is used by listener.Listener when the application
// rejects an inbound peer by not supplying both lifetime callbacks
// (§4.5): it marks the Connection closed and clears its protocol context;
// no lifetime callbacks are bound or fired.
func (c *Connection) CloseImmediately() {
	if c.closed {
		return
	}
	c.closed = true
	c.protoCtx = nil
}

// Send implements §4.6's send contract.
func (c *Connection) Send(msg *message.Message, appToken any, cb SendCallbacks) error {
	if c.closed {
		return tapserr.New(tapserr.Unavailable, "send on closed connection")
	}

	item := &sendItem{msg: msg, appToken: appToken, cb: cb}
	c.sendQueue = append(c.sendQueue, item)

	if c.sendReady {
		c.sendReady = false
		c.dispatchSend(item)
	}
	return nil
}

type sendOutcome int

const (
	sendOutcomeSent sendOutcome = iota
	sendOutcomeExpired
	sendOutcomeError
)

func (c *Connection) dispatchSend(item *sendItem) {
	err := c.module.Send(c.protoCtx, item, item.msg.Iovec(), protocol.SendCallbacks{
		Sent:      func() { c.onSendTerminal(item, sendOutcomeSent, "") },
		Expired:   func() { c.onSendTerminal(item, sendOutcomeExpired, "") },
		SendError: func(reason string) { c.onSendTerminal(item, sendOutcomeError, reason) },
	})
	if err != nil {
		c.onSendTerminal(item, sendOutcomeError, err.Error())
	}
}

// onSendTerminal implements the module-callback dispatch rule of §4.6:
// remove the head, dispatch the new head if any, else set sendReady, then
// invoke exactly one application callback. sendError's reason defaults to
// "Protocol failure" if the module gave none.
func (c *Connection) onSendTerminal(item *sendItem, outcome sendOutcome, reason string) {
	if len(c.sendQueue) == 0 || c.sendQueue[0] != item {
		return
	}
	c.sendQueue = c.sendQueue[1:]

	if len(c.sendQueue) > 0 {
		c.dispatchSend(c.sendQueue[0])
	} else {
		c.sendReady = true
	}

	switch outcome {
	case sendOutcomeError:
		if reason == "" {
			reason = "Protocol failure"
		}
		if item.cb.SendError != nil {
			item.cb.SendError(item.appToken, reason)
		}
	case sendOutcomeExpired:
		if item.cb.Expired != nil {
			item.cb.Expired(item.appToken)
		}
	default:
		if item.cb.Sent != nil {
			item.cb.Sent(item.appToken)
		}
	}
}

// Receive implements §4.6's receive contract.
func (c *Connection) Receive(msg *message.Message, appToken any, minLength, maxLength int, cb ReceiveCallbacks) error {
	if cb.Received == nil || cb.ReceivedPartial == nil || cb.ReceiveError == nil {
		return tapserr.New(tapserr.InvalidArgument, "receive requires received, receivedPartial and receiveError callbacks")
	}
	if c.closed {
		return tapserr.New(tapserr.Unavailable, "receive on closed connection")
	}

	item := &recvItem{
		msg:       msg,
		iov:       msg.Iovec(),
		appToken:  appToken,
		minLength: minLength,
		maxLength: maxLength,
		cb:        cb,
	}
	c.recvQueue = append(c.recvQueue, item)

	if c.receiveReady {
		c.receiveReady = false
		c.dispatchReceive(item)
	}
	return nil
}

func (c *Connection) dispatchReceive(item *recvItem) {
	iov := message.Offset(item.iov, item.currLength)
	c.module.Receive(c.protoCtx, item, iov, protocol.ReceiveCallbacks{
		Received:        func(iov []message.Buf, n int) { c.onReceived(item, n) },
		ReceivedPartial: func(iov []message.Buf, n int) { c.onReceivedPartial(item, n) },
		ReceiveError:    func(reason string) { c.onReceiveError(item, reason) },
	})
}

// onReceivedPartial implements §4.6's partial-read accumulation.
func (c *Connection) onReceivedPartial(item *recvItem, n int) {
	if len(c.recvQueue) == 0 || c.recvQueue[0] != item {
		return
	}
	item.currLength += n

	if item.currLength < item.minLength {
		c.dispatchReceive(item)
		return
	}

	c.advanceRecvQueue()
	if item.cb.ReceivedPartial != nil {
		item.cb.ReceivedPartial(item.appToken)
	}
}

// onReceived implements §4.6's full-read (peer FIN) path, including the
// MessageBelowMinLength resolution recorded in the Open Question
// resolutions.
func (c *Connection) onReceived(item *recvItem, n int) {
	if len(c.recvQueue) == 0 || c.recvQueue[0] != item {
		return
	}
	item.currLength += n

	if item.currLength < item.minLength {
		c.advanceRecvQueue()
		if item.cb.ReceiveError != nil {
			item.cb.ReceiveError(item.appToken, tapserr.New(tapserr.MessageBelowMinLength, "peer closed before minLength was reached").Error())
		}
		return
	}

	c.advanceRecvQueue()
	if item.cb.Received != nil {
		item.cb.Received(item.appToken)
	}
}

// onReceiveError implements §4.6's receive-error path.
func (c *Connection) onReceiveError(item *recvItem, reason string) {
	if len(c.recvQueue) == 0 || c.recvQueue[0] != item {
		return
	}
	c.advanceRecvQueue()
	if item.cb.ReceiveError != nil {
		item.cb.ReceiveError(item.appToken, reason)
	}
}

// advanceRecvQueue removes the head RecvItem and dispatches the new head,
// or sets receiveReady if none remains.
func (c *Connection) advanceRecvQueue() {
	c.recvQueue = c.recvQueue[1:]
	if len(c.recvQueue) > 0 {
		c.dispatchReceive(c.recvQueue[0])
	} else {
		c.receiveReady = true
	}
}

// OnModuleClosed is the module's on_closed callback (§6.1), invoked when
// the peer gracefully closed outside of any in-flight receive.
func (c *Connection) OnModuleClosed() {
	c.teardown(func() {
		if c.cb.Closed != nil {
			c.cb.Closed()
		}
	})
}

// OnModuleConnectionError is the module's on_connection_error callback.
func (c *Connection) OnModuleConnectionError(reason string) {
	c.teardown(func() {
		if c.cb.ConnectionError != nil {
			c.cb.ConnectionError(reason)
		}
	})
}

// teardown implements §4.6's teardown pathway shared by _closed and
// _connection_error: deref the parent Listener if any, clear the
// protocol context, then fire the application callback.
func (c *Connection) teardown(fireApp func()) {
	if c.closed {
		return
	}
	c.closed = true
	c.protoCtx = nil

	if c.parent != nil {
		c.parent.Deref()
	}

	c.logger().Debug("connection closed", obslog.Fields{"connection_id": c.id.String()})
	fireApp()
}

// Free drains any remaining queued send/receive items by firing their
// error callbacks with reason "Connection died" (§4.6), then releases the
// Connection. For a Connection with no parent Listener, the module handle
// is released here rather than by the Listener. The drained items are
// also aggregated into a *multierror.Error, mirroring the catalog
// provider's skip-reason accumulation (catalog/yaml.go); Free returns nil
// when both queues were already empty.
func (c *Connection) Free() error {
	const diedReason = "Connection died"

	var drained *multierror.Error

	for _, item := range c.sendQueue {
		drained = multierror.Append(drained, tapserr.New(tapserr.ConnectionDied, diedReason))
		if item.cb.SendError != nil {
			item.cb.SendError(item.appToken, diedReason)
		}
	}
	c.sendQueue = nil

	for _, item := range c.recvQueue {
		drained = multierror.Append(drained, tapserr.New(tapserr.ConnectionDied, diedReason))
		if item.cb.ReceiveError != nil {
			item.cb.ReceiveError(item.appToken, diedReason)
		}
	}
	c.recvQueue = nil

	c.closed = true
	c.protoCtx = nil

	if c.parent == nil && c.module != nil {
		c.module.Release()
	}

	return drained.ErrorOrNil()
}
