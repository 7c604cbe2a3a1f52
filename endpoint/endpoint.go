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

// Package endpoint implements the Endpoint value type (§3): a set-once
// bundle of optional addressing fields, plus alias equivalence classes
// tracked with a union-find rather than the source's cyclic prev/next
// links (per REDESIGN FLAGS).
package endpoint

import (
	"net"

	"github.com/google/uuid"

	"github.com/nabbar/taps-core/tapserr"
)

// ID identifies an Endpoint for alias-set membership and logging.
type ID uuid.UUID

// Endpoint describes one end of a communication. Every optional field is
// set-once: calling a With* method a second time fails with tapserr.Busy.
type Endpoint struct {
	id ID

	hostname *string
	service  *string
	ipv4     *net.IP
	ipv6     *net.IP
	port     *uint16
	iface    *string
	protocol *string
	stun     *StunServer
}

// StunServer bundles a STUN server address with credentials.
type StunServer struct {
	Address  string
	Username string
	Password string
}

// New returns an empty Endpoint with a fresh ID.
func New() *Endpoint {
	return &Endpoint{id: ID(uuid.New())}
}

// ID returns the Endpoint's identity.
func (e *Endpoint) ID() ID { return e.id }

// WithHostname sets the hostname field once.
func (e *Endpoint) WithHostname(h string) error {
	if e.hostname != nil {
		return tapserr.New(tapserr.Busy, "hostname already set")
	}
	e.hostname = &h
	return nil
}

// Hostname returns the hostname and whether it was set.
func (e *Endpoint) Hostname() (string, bool) {
	if e.hostname == nil {
		return "", false
	}
	return *e.hostname, true
}

// WithService sets the service name field once.
func (e *Endpoint) WithService(s string) error {
	if e.service != nil {
		return tapserr.New(tapserr.Busy, "service already set")
	}
	e.service = &s
	return nil
}

// Service returns the service name and whether it was set.
func (e *Endpoint) Service() (string, bool) {
	if e.service == nil {
		return "", false
	}
	return *e.service, true
}

// WithIPv4 sets the IPv4 field once.
func (e *Endpoint) WithIPv4(ip net.IP) error {
	if e.ipv4 != nil {
		return tapserr.New(tapserr.Busy, "IPv4 address already set")
	}
	e.ipv4 = &ip
	return nil
}

// IPv4 returns the IPv4 address and whether it was set.
func (e *Endpoint) IPv4() (net.IP, bool) {
	if e.ipv4 == nil {
		return nil, false
	}
	return *e.ipv4, true
}

// WithIPv6 sets the IPv6 field once.
func (e *Endpoint) WithIPv6(ip net.IP) error {
	if e.ipv6 != nil {
		return tapserr.New(tapserr.Busy, "IPv6 address already set")
	}
	e.ipv6 = &ip
	return nil
}

// IPv6 returns the IPv6 address and whether it was set.
func (e *Endpoint) IPv6() (net.IP, bool) {
	if e.ipv6 == nil {
		return nil, false
	}
	return *e.ipv6, true
}

// WithPort sets the port field once.
func (e *Endpoint) WithPort(p uint16) error {
	if e.port != nil {
		return tapserr.New(tapserr.Busy, "port already set")
	}
	e.port = &p
	return nil
}

// Port returns the port and whether it was set.
func (e *Endpoint) Port() (uint16, bool) {
	if e.port == nil {
		return 0, false
	}
	return *e.port, true
}

// WithInterface sets the named network interface once.
func (e *Endpoint) WithInterface(name string) error {
	if e.iface != nil {
		return tapserr.New(tapserr.Busy, "interface already set")
	}
	e.iface = &name
	return nil
}

// Interface returns the interface name and whether it was set.
func (e *Endpoint) Interface() (string, bool) {
	if e.iface == nil {
		return "", false
	}
	return *e.iface, true
}

// WithProtocol pins the endpoint to a named wire protocol once.
func (e *Endpoint) WithProtocol(name string) error {
	if e.protocol != nil {
		return tapserr.New(tapserr.Busy, "protocol already set")
	}
	e.protocol = &name
	return nil
}

// Protocol returns the named protocol and whether it was set.
func (e *Endpoint) Protocol() (string, bool) {
	if e.protocol == nil {
		return "", false
	}
	return *e.protocol, true
}

// WithStun sets the STUN server once.
func (e *Endpoint) WithStun(s StunServer) error {
	if e.stun != nil {
		return tapserr.New(tapserr.Busy, "STUN server already set")
	}
	e.stun = &s
	return nil
}

// Stun returns the STUN server and whether it was set.
func (e *Endpoint) Stun() (StunServer, bool) {
	if e.stun == nil {
		return StunServer{}, false
	}
	return *e.stun, true
}
