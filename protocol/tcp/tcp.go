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

// Package tcp implements the Protocol Module Contract (§6.1) over plain
// net.TCPListener/net.TCPConn, reconstructing the dropped tcp.c adapter
// named in §1's scope list. It supplements rather than replaces the
// source: no TLS, no framing, a passthrough byte stream.
package tcp

import (
	"io"
	"net"
	"sync"

	"github.com/nabbar/taps-core/eventloop"
	"github.com/nabbar/taps-core/message"
	"github.com/nabbar/taps-core/protocol"
)

// Module is the in-process TCP implementation of protocol.Module. Reads
// happen on a per-connection pump goroutine; every result the pump
// produces is posted back through the event loop before any callback
// fires, so callbacks still only ever run on the loop goroutine (§5).
type Module struct{}

// New returns a TCP Module.
func New() *Module { return &Module{} }

type listenCtx struct {
	ln   *net.TCPListener
	loop eventloop.Loop
	cb   protocol.ListenCallbacks

	mu       sync.Mutex
	stopping bool
}

// Listen implements protocol.Module.
func (Module) Listen(loop eventloop.Loop, addr net.Addr, cb protocol.ListenCallbacks) (protocol.ProtoCtx, error) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil, &net.AddrError{Err: "tcp module requires a *net.TCPAddr", Addr: addr.String()}
	}

	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, err
	}

	lc := &listenCtx{ln: ln, loop: loop, cb: cb}
	go lc.acceptLoop()
	return lc, nil
}

// Addr returns the listener's bound address, including the OS-assigned
// port when the caller requested port 0. Useful for tests and for hosts
// that want to log the concrete address after a successful Listen.
func (lc *listenCtx) Addr() net.Addr {
	return lc.ln.Addr()
}

func (lc *listenCtx) acceptLoop() {
	for {
		conn, err := lc.ln.AcceptTCP()
		if err != nil {
			lc.mu.Lock()
			stopping := lc.stopping
			lc.mu.Unlock()
			if stopping {
				return
			}
			lc.loop.Post(func() {
				if lc.cb.EstablishmentError != nil {
					lc.cb.EstablishmentError(err.Error())
				}
			})
			return
		}

		cc := &connCtx{conn: conn, loop: lc.loop}
		lc.loop.Post(func() {
			childToken := (protocol.ProtoCtx)(nil)
			if lc.cb.ConnectionReceived != nil {
				childToken = lc.cb.ConnectionReceived(cc)
			}
			cc.token = childToken
			cc.closed = func(reason string) {
				if reason == "" {
					if lc.cb.Closed != nil {
						lc.cb.Closed(cc.token)
					}
				} else if lc.cb.ConnectionError != nil {
					lc.cb.ConnectionError(cc.token, reason)
				}
			}
		})
	}
}

// Stop implements protocol.Module.
func (Module) Stop(ctx protocol.ProtoCtx, onStopped func()) {
	lc, ok := ctx.(*listenCtx)
	if !ok {
		if onStopped != nil {
			onStopped()
		}
		return
	}

	lc.mu.Lock()
	lc.stopping = true
	lc.mu.Unlock()

	_ = lc.ln.Close()
	if onStopped != nil {
		lc.loop.Post(onStopped)
	}
}

type connCtx struct {
	conn  *net.TCPConn
	loop  eventloop.Loop
	token protocol.ProtoCtx

	mu     sync.Mutex
	closed func(reason string)
}

// fireClosed invokes the per-connection closed/connectionError callback
// bound by acceptLoop/Connect, if any has been bound yet. reason=="" means
// a graceful peer close (on_closed); any other value is a
// on_connection_error.
func (cc *connCtx) fireClosed(reason string) {
	cc.mu.Lock()
	fn := cc.closed
	cc.mu.Unlock()
	if fn != nil {
		fn(reason)
	}
}

// Connect implements protocol.Module.
func (Module) Connect(loop eventloop.Loop, addr net.Addr, cb protocol.ConnectCallbacks) (protocol.ProtoCtx, error) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil, &net.AddrError{Err: "tcp module requires a *net.TCPAddr", Addr: addr.String()}
	}

	cc := &connCtx{loop: loop}
	go func() {
		conn, err := net.DialTCP("tcp", nil, tcpAddr)
		if err != nil {
			loop.Post(func() {
				if cb.Error != nil {
					cb.Error(err.Error())
				}
			})
			return
		}
		cc.conn = conn
		cc.closed = func(reason string) {
			if reason == "" {
				if cb.Closed != nil {
					cb.Closed()
				}
			} else if cb.ConnectionError != nil {
				cb.ConnectionError(reason)
			}
		}
		loop.Post(func() {
			if cb.Ready != nil {
				cb.Ready()
			}
		})
	}()

	return cc, nil
}

// Send implements protocol.Module: writes the full iovec, reporting
// Sent on success or SendError on any write failure. TCP has no
// message-lifetime concept, so Expired never fires. A write failure also
// fires the connection's closed/connectionError callback, since a broken
// TCP socket has no further Send/Receive to attempt.
func (Module) Send(ctx protocol.ProtoCtx, _ protocol.ItemToken, iov []message.Buf, cb protocol.SendCallbacks) error {
	cc, ok := ctx.(*connCtx)
	if !ok || cc.conn == nil {
		return nil
	}

	go func() {
		var werr error
		for _, b := range iov {
			if _, err := cc.conn.Write(b.Data); err != nil {
				werr = err
				break
			}
		}
		cc.loop.Post(func() {
			if werr != nil {
				if cb.SendError != nil {
					cb.SendError(werr.Error())
				}
				cc.fireClosed(werr.Error())
				return
			}
			if cb.Sent != nil {
				cb.Sent()
			}
		})
	}()
	return nil
}

// Receive implements protocol.Module: reads into the first iovec entry's
// capacity (buffer identity only, per §1 non-goals), reporting
// ReceivedPartial for live data and Received on EOF. EOF also fires the
// connection's closed callback (a graceful peer close); any other read
// error fires connectionError instead, both of which are the only trigger
// for Connection.teardown and the Listener deref it performs (§4.5/§4.6).
func (Module) Receive(ctx protocol.ProtoCtx, _ protocol.ItemToken, iov []message.Buf, cb protocol.ReceiveCallbacks) {
	cc, ok := ctx.(*connCtx)
	if !ok || cc.conn == nil || len(iov) == 0 {
		return
	}

	buf := iov[0].Data
	go func() {
		n, err := cc.conn.Read(buf)
		cc.loop.Post(func() {
			switch {
			case err == io.EOF:
				if cb.Received != nil {
					cb.Received([]message.Buf{{Data: buf[:n]}}, n)
				}
				cc.fireClosed("")
			case err != nil:
				if cb.ReceiveError != nil {
					cb.ReceiveError(err.Error())
				}
				cc.fireClosed(err.Error())
			default:
				if cb.ReceivedPartial != nil {
					cb.ReceivedPartial([]message.Buf{{Data: buf[:n]}}, n)
				}
			}
		})
	}()
}
