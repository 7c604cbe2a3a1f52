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

// Package listener implements the Listener state machine (§4.5): it owns
// one protocol listen-context, spawns Connections for inbound peers,
// reference-counts those children, and sequences a graceful Stop so the
// application's stopped callback never fires while a child is still
// alive.
package listener

import (
	"net"

	"github.com/google/uuid"

	"github.com/nabbar/taps-core/connection"
	"github.com/nabbar/taps-core/eventloop"
	"github.com/nabbar/taps-core/internal/atomicx"
	"github.com/nabbar/taps-core/internal/obslog"
	"github.com/nabbar/taps-core/protocol"
	"github.com/nabbar/taps-core/tapserr"
)

// State is one of the four states from §4.5.
type State int

const (
	Open State = iota
	Stopping
	StoppedPendingChildren
	Stopped
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Stopping:
		return "stopping"
	case StoppedPendingChildren:
		return "stopped-pending-children"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Callbacks are the application-supplied hooks fired on inbound events.
type Callbacks struct {
	// ConnectionReceived is invoked for each accepted peer; the
	// application must supply a conn-level Closed+ConnectionError pair in
	// its returned set, or the Connection is closed immediately and the
	// peer is rejected (§4.5).
	ConnectionReceived func(c *connection.Connection) connection.Callbacks
	EstablishmentError func(reason error)
	Stopped            func()
}

// Listener is the core state machine of §4.5.
type Listener struct {
	id uuid.UUID

	module   *protocol.Handle
	protoCtx protocol.ProtoCtx
	loop     eventloop.Loop
	log      obslog.FuncLog

	cb    Callbacks
	limit int64

	state       atomicx.Value[State]
	refCount    atomicx.Counter
	readyToStop atomicx.Value[bool]
	stopIssued  atomicx.Value[bool]
}

// Listen constructs a Listener by invoking the module's listen entry
// point (§4.7's listen() step 4: "Construct a Listener, passing through
// the address and the event loop handle"). On module failure it returns
// tapserr.Unavailable and never fires EstablishmentError, since the
// Listener itself was never returned (§7). limit of 0 means unbounded
// concurrent children, matching the source's default of UINT32_MAX.
func Listen(module *protocol.Handle, loop eventloop.Loop, addr net.Addr, cb Callbacks, limit int64, log obslog.FuncLog) (*Listener, error) {
	l := &Listener{
		id:     uuid.New(),
		module: module,
		loop:   loop,
		cb:     cb,
		limit:  limit,
		log:    log,
	}
	l.state.Store(Open)

	protoCb := protocol.ListenCallbacks{
		ConnectionReceived: l.onConnectionReceived,
		EstablishmentError: func(reason string) {
			if l.cb.EstablishmentError != nil {
				l.cb.EstablishmentError(tapserr.New(tapserr.ProtocolFailure, reason))
			}
		},
		Closed: func(token protocol.ProtoCtx) {
			if c, ok := token.(*connection.Connection); ok {
				c.OnModuleClosed()
			}
		},
		ConnectionError: func(token protocol.ProtoCtx, reason string) {
			if c, ok := token.(*connection.Connection); ok {
				c.OnModuleConnectionError(reason)
			}
		},
	}

	ctx, err := module.Listen(loop, addr, protoCb)
	if err != nil {
		return nil, tapserr.New(tapserr.Unavailable, "protocol module listen failed", err)
	}
	l.protoCtx = ctx
	return l, nil
}

// State returns the current state.
func (l *Listener) State() State {
	return l.state.Load()
}

func (l *Listener) logger() obslog.Logger {
	return obslog.Resolve(l.log)
}

// onConnectionReceived is invoked by the protocol module (on the loop
// goroutine) for each accepted peer. It implements §4.5's inbound
// connection handling including the connection_limit drop and the
// "missing callbacks rejects the peer" rule.
func (l *Listener) onConnectionReceived(protoChildCtx protocol.ProtoCtx) protocol.ProtoCtx {
	if l.limit > 0 && l.refCount.Load() >= l.limit {
		l.logger().Debug("inbound connection dropped: over connection_limit", obslog.Fields{"listener_id": l.id.String()})
		return nil
	}

	conn := connection.New(l.module, protoChildCtx, l.loop, l, l.log)

	if l.cb.ConnectionReceived == nil {
		conn.CloseImmediately()
		return nil
	}

	childCb := l.cb.ConnectionReceived(conn)
	if childCb.Closed == nil || childCb.ConnectionError == nil {
		l.logger().Debug("inbound connection rejected: incomplete callback set", obslog.Fields{"listener_id": l.id.String()})
		conn.CloseImmediately()
		return nil
	}

	conn.Bind(childCb)
	l.refCount.Add(1)
	l.logger().Debug("inbound connection accepted", obslog.Fields{"listener_id": l.id.String(), "ref_count": l.refCount.Load()})
	return conn
}

// Deref is called by a child Connection when it reaches a terminal state.
// It implements the ref_count decrement and the Stopped-PendingChildren
// -> Stopped transition (§4.5).
func (l *Listener) Deref() {
	n := l.refCount.Add(-1)
	l.logger().Debug("child connection dereffed", obslog.Fields{"listener_id": l.id.String(), "ref_count": n})
	if n != 0 {
		return
	}
	if l.readyToStop.Load() && l.state.Load() == StoppedPendingChildren {
		l.transitionToStopped()
	}
}

// Stop implements §4.5's Open -> Stopping transition: it invokes the
// module's stop entry point and remembers to deliver the application's
// stopped callback once the module confirms.
func (l *Listener) Stop() {
	if !l.stopIssued.Load() {
		l.stopIssued.Store(true)
		l.state.Store(Stopping)
		l.module.Stop(l.protoCtx, l.onModuleStopped)
	}
}

// onModuleStopped is the module's on_stopped callback (§6.1). It
// implements the Stopping -> {Stopped, StoppedPendingChildren}
// transition.
func (l *Listener) onModuleStopped() {
	l.readyToStop.Store(true)
	if l.refCount.Load() == 0 {
		l.transitionToStopped()
	} else {
		l.state.Store(StoppedPendingChildren)
	}
}

func (l *Listener) transitionToStopped() {
	l.state.Store(Stopped)
	l.logger().Info("listener stopped", obslog.Fields{"listener_id": l.id.String()})
	if l.cb.Stopped != nil {
		l.cb.Stopped()
	}
}

// Free releases the Listener. Per §4.5's early-free tolerance, calling
// Free before Stop synthesizes a Stop first; Free only actually releases
// the module handle once the state machine reaches Stopped. Free must
// never be called from within a module callback (§5) — the caller is
// expected to invoke it from outside the event loop.
func (l *Listener) Free() error {
	if l.state.Load() != Stopped {
		l.logger().Info("listener freed before stopping: synthesizing stop", obslog.Fields{"listener_id": l.id.String()})
		l.Stop()
		return tapserr.New(tapserr.Unavailable, "listener not yet stopped; stop synthesized, retry free after the stopped callback")
	}
	l.module.Release()
	return nil
}

// ResolveListenAddr resolves a concrete net.Addr for §4.7's listen() step 2: prefer
// IPv6 if present on the endpoint, else IPv4; port is mandatory.
func ResolveListenAddr(ipv4, ipv6 net.IP, port uint16) (net.Addr, error) {
	if port == 0 {
		return nil, tapserr.New(tapserr.InvalidArgument, "local endpoint port must be non-zero")
	}
	if ipv6 != nil {
		return &net.TCPAddr{IP: ipv6, Port: int(port)}, nil
	}
	if ipv4 != nil {
		return &net.TCPAddr{IP: ipv4, Port: int(port)}, nil
	}
	return nil, tapserr.New(tapserr.InvalidArgument, "local endpoint carries neither IPv4 nor IPv6 address")
}
