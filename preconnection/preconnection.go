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

// Package preconnection implements the Preconnection type (§4.7): the
// immutable bundle of local/remote endpoints, transport properties and
// the ranked candidate list the Property Reducer produced against the
// Catalog, plus the two operations that turn that bundle into a running
// Listener or Connection.
package preconnection

import (
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/nabbar/taps-core/catalog"
	"github.com/nabbar/taps-core/connection"
	"github.com/nabbar/taps-core/endpoint"
	"github.com/nabbar/taps-core/eventloop"
	"github.com/nabbar/taps-core/internal/obslog"
	"github.com/nabbar/taps-core/listener"
	"github.com/nabbar/taps-core/protocol"
	"github.com/nabbar/taps-core/property"
	"github.com/nabbar/taps-core/reducer"
	"github.com/nabbar/taps-core/security"
	"github.com/nabbar/taps-core/tapserr"
)

// MaxEndpoints is the per-direction endpoint limit from §3.
const MaxEndpoints = 8

// Preconnection is the frozen bundle of §3/§4.7: endpoints, properties and
// the reduced CandidateList, none of which change after New returns.
type Preconnection struct {
	id uuid.UUID

	local    []*endpoint.Endpoint
	remote   []*endpoint.Endpoint
	props    *property.Set
	security *security.Parameters

	candidates []reducer.Candidate

	loader *protocol.Loader
	log    obslog.FuncLog
}

// New validates endpoint counts, runs the Property Reducer's two passes
// against catalog's current descriptor set, and retains the ranked
// candidates (§4.7's construction step). It fails with
// tapserr.TooManyEndpoints before ever consulting the catalog, and with
// whatever tapserr.NoViableProtocol the reducer raises otherwise.
func New(
	local, remote []*endpoint.Endpoint,
	props *property.Set,
	sec *security.Parameters,
	cat catalog.Provider,
	loader *protocol.Loader,
	log obslog.FuncLog,
) (*Preconnection, error) {
	if len(local) > MaxEndpoints || len(remote) > MaxEndpoints {
		return nil, tapserr.New(tapserr.TooManyEndpoints, "preconnection accepts at most 8 local and 8 remote endpoints")
	}
	if err := props.Validate(); err != nil {
		return nil, err
	}

	descs, err := cat.Update(0)
	if err != nil {
		return nil, err
	}

	cands, err := reducer.Reduce(props, descs)
	if err != nil {
		return nil, err
	}
	cands, err = reducer.ApplyModes(props, cands)
	if err != nil {
		return nil, err
	}

	return &Preconnection{
		id:         uuid.New(),
		local:      local,
		remote:     remote,
		props:      props,
		security:   sec,
		candidates: cands,
		loader:     loader,
		log:        log,
	}, nil
}

// ID returns the Preconnection's identity, used in logging.
func (p *Preconnection) ID() uuid.UUID { return p.id }

// Candidates returns the ranked CandidateList retained at construction,
// for introspection and testing (§8's "CandidateList is sorted by
// non-increasing score" invariant).
func (p *Preconnection) Candidates() []reducer.Candidate {
	out := make([]reducer.Candidate, len(p.candidates))
	copy(out, p.candidates)
	return out
}

func (p *Preconnection) logger() obslog.Logger {
	return obslog.Resolve(p.log)
}

// resolveAddr turns an Endpoint's addressing fields into a concrete
// net.Addr, preferring IPv6 over IPv4 when both are present (§4.7 step
// 2); port is mandatory. The same heuristic is applied for both listen's
// local endpoint and initiate's remote endpoint, since the spec gives no
// separate rule for the latter.
func resolveAddr(e *endpoint.Endpoint) (net.Addr, error) {
	ipv4, _ := e.IPv4()
	ipv6, _ := e.IPv6()
	port, _ := e.Port()
	return listener.ResolveListenAddr(ipv4, ipv6, port)
}

// Listen implements §4.7's listen(): it resolves the first local endpoint,
// loads the top-ranked candidate's module, and constructs a Listener.
// Candidate fallback is a non-goal (§4.7): only the top-ranked candidate
// is ever tried. On module failure the candidate module stays loaded (Go
// plugins cannot be unloaded, see protocol.Handle.Release) and
// tapserr.Unavailable is returned.
func (p *Preconnection) Listen(loop eventloop.Loop, cb listener.Callbacks, connectionLimit int64) (*listener.Listener, error) {
	if len(p.local) == 0 {
		return nil, tapserr.New(tapserr.InvalidArgument, "listen requires at least one local endpoint")
	}
	if cb.ConnectionReceived == nil || cb.EstablishmentError == nil {
		return nil, tapserr.New(tapserr.InvalidArgument, "listen requires connectionReceived and establishmentError callbacks")
	}

	addr, err := resolveAddr(p.local[0])
	if err != nil {
		return nil, err
	}

	top := p.candidates[0]
	module, err := p.loader.Load(top.ModulePath, protocol.RoleListener)
	if err != nil {
		return nil, err
	}

	l, err := listener.Listen(module, loop, addr, cb, connectionLimit, p.log)
	if err != nil {
		return nil, err
	}

	p.logger().Info("listener started", obslog.Fields{
		"preconnection_id": p.id.String(),
		"candidate":        top.Name,
		"addr":             addr.String(),
	})
	return l, nil
}

// InitiateCallbacks are the application hooks for §4.7's initiate(). Ready
// fires once the module reports the outbound connection is established,
// handing back a Connection with Closed/ConnectionError already bound;
// EstablishmentError fires instead on an async module-reported error or a
// local timeout — whichever happens first. A synchronous Connect failure
// is returned from Initiate as tapserr.Unavailable and fires no callback.
type InitiateCallbacks struct {
	Ready              func(c *connection.Connection)
	EstablishmentError func(reason error)
	Closed             func()
	ConnectionError    func(reason string)
}

// Initiate implements §4.7's initiate(): it loads the top-ranked
// candidate's module and lets the module's Connect drive establishment.
// timeout, if positive, is enforced locally via the event loop (§5: "the
// core surfaces it to the module, which must respect it" — the Protocol
// Module Contract in §6.1 carries no timeout parameter, so this
// implementation's own enforcement is the surfacing mechanism) and wins
// the race against a late Ready/Error if the module never responds in
// time.
func (p *Preconnection) Initiate(loop eventloop.Loop, cb InitiateCallbacks, timeout time.Duration) (*connection.Connection, error) {
	if len(p.remote) == 0 {
		return nil, tapserr.New(tapserr.InvalidArgument, "initiate requires at least one remote endpoint")
	}

	addr, err := resolveAddr(p.remote[0])
	if err != nil {
		return nil, err
	}

	top := p.candidates[0]
	module, err := p.loader.Load(top.ModulePath, protocol.RoleInitiator)
	if err != nil {
		return nil, err
	}

	var (
		settled bool
		conn    *connection.Connection
	)

	// settleOnce enforces "Ready / EstablishmentError fire at most once,
	// whichever of module-Ready, module-Error or local-timeout wins the
	// race", all three of which only ever run on the event loop goroutine
	// (§5), so a plain bool is enough — no atomic required.
	settleOnce := func() (already bool) {
		already = settled
		settled = true
		return
	}

	protoCb := protocol.ConnectCallbacks{
		Ready: func() {
			if settleOnce() {
				return
			}
			p.logger().Debug("outbound connection established", obslog.Fields{"preconnection_id": p.id.String(), "candidate": top.Name})
			if cb.Ready != nil {
				cb.Ready(conn)
			}
		},
		Error: func(reason string) {
			if settleOnce() {
				return
			}
			if cb.EstablishmentError != nil {
				cb.EstablishmentError(tapserr.New(tapserr.ProtocolFailure, reason))
			}
		},
		Closed: func() {
			if conn != nil {
				conn.OnModuleClosed()
			}
		},
		ConnectionError: func(reason string) {
			if conn != nil {
				conn.OnModuleConnectionError(reason)
			}
		},
	}

	ctx, err := module.Connect(loop, addr, protoCb)
	if err != nil {
		return nil, tapserr.New(tapserr.Unavailable, "protocol module connect failed", err)
	}

	conn = connection.New(module, ctx, loop, nil, p.log)
	conn.Bind(connection.Callbacks{Closed: cb.Closed, ConnectionError: cb.ConnectionError})

	if timeout > 0 {
		loop.PostDelayed(timeout, func() {
			if settleOnce() {
				return
			}
			p.logger().Warn("outbound connect timed out", obslog.Fields{"preconnection_id": p.id.String(), "candidate": top.Name})
			if cb.EstablishmentError != nil {
				cb.EstablishmentError(tapserr.New(tapserr.Unavailable, "connect timed out"))
			}
		})
	}

	return conn, nil
}
