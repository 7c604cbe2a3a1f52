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

// Package taps is the application-facing facade (§6.3): it re-exports the
// constructors and types scattered across this module's subpackages so a
// caller can write taps.NewPreconnection(...) the way a golib consumer
// writes httpserver.New(...) without separately importing context,
// atomic, logger and errors. It adds no behavior of its own — every type
// here is a plain alias, every function a one-line delegation.
package taps

import (
	"github.com/nabbar/taps-core/catalog"
	"github.com/nabbar/taps-core/connection"
	"github.com/nabbar/taps-core/endpoint"
	"github.com/nabbar/taps-core/eventloop"
	"github.com/nabbar/taps-core/internal/obslog"
	"github.com/nabbar/taps-core/listener"
	"github.com/nabbar/taps-core/message"
	"github.com/nabbar/taps-core/preconnection"
	"github.com/nabbar/taps-core/protocol"
	"github.com/nabbar/taps-core/property"
	"github.com/nabbar/taps-core/security"
	"github.com/nabbar/taps-core/tapserr"
)

// Logger is the structured-logging factory accepted by every stateful
// type in this facade; see internal/obslog for the contract.
type Logger = obslog.FuncLog

// Re-exported core types, so a caller only ever names the taps package.
type (
	Endpoint          = endpoint.Endpoint
	StunServer        = endpoint.StunServer
	AliasSet          = endpoint.AliasSet
	Properties        = property.Set
	Preference        = property.Preference
	SecurityParams    = security.Parameters
	Message           = message.Message
	Buf               = message.Buf
	Loader            = protocol.Loader
	Module            = protocol.Module
	ModuleHandle      = protocol.Handle
	CatalogProvider   = catalog.Provider
	CatalogDescriptor = catalog.Descriptor
	EventLoop         = eventloop.Loop
	Preconnection     = preconnection.Preconnection
	Listener          = listener.Listener
	Connection        = connection.Connection
	ListenCallbacks   = listener.Callbacks
	ConnCallbacks     = connection.Callbacks
	SendCallbacks     = connection.SendCallbacks
	ReceiveCallbacks  = connection.ReceiveCallbacks
	InitiateCallbacks = preconnection.InitiateCallbacks
	Error             = tapserr.Error
	ErrorCode         = tapserr.Code
)

// Preference strengths (§3).
const (
	Prohibit = property.Prohibit
	Avoid    = property.Avoid
	Ignore   = property.Ignore
	Prefer   = property.Prefer
	Require  = property.Require
)

// Error kinds (§7).
const (
	ErrInvalidArgument       = tapserr.InvalidArgument
	ErrBusy                  = tapserr.Busy
	ErrOutOfMemory           = tapserr.OutOfMemory
	ErrTooManyEndpoints      = tapserr.TooManyEndpoints
	ErrNoViableProtocol      = tapserr.NoViableProtocol
	ErrLoadError             = tapserr.LoadError
	ErrIncompleteModule      = tapserr.IncompleteModule
	ErrUnavailable           = tapserr.Unavailable
	ErrProtocolFailure       = tapserr.ProtocolFailure
	ErrMessageBelowMinLength = tapserr.MessageBelowMinLength
	ErrConnectionDied        = tapserr.ConnectionDied
)

// NewEndpoint returns an empty Endpoint (§3).
func NewEndpoint() *Endpoint { return endpoint.New() }

// NewAliasSet returns an empty alias-equivalence tracker for Endpoints.
func NewAliasSet() *AliasSet { return endpoint.NewAliasSet() }

// NewProperties returns a TransportProperties set with every ability at
// Ignore (§3).
func NewProperties() *Properties { return property.New() }

// NewSecurityParameters returns an empty SecurityParameters slot.
func NewSecurityParameters() *SecurityParams { return security.New() }

// NewMessage wraps a single buffer in a Message (§4.4).
func NewMessage(buf []byte) *Message { return message.New(buf) }

// NewScatterMessage wraps an existing multi-buffer scatter/gather list in
// a Message.
func NewScatterMessage(bufs []Buf) *Message { return message.NewScatter(bufs) }

// NewLoader returns an empty protocol module Loader (§4.3).
func NewLoader() *Loader { return protocol.NewLoader() }

// NewEventLoop returns the default single-goroutine Loop implementation
// (§5), sized for queueDepth pending tasks.
func NewEventLoop(queueDepth int) *eventloop.Default { return eventloop.New(queueDepth) }

// NewStaticCatalog returns a Provider backed by a fixed in-memory
// descriptor list, useful for tests and compiled-in catalogs.
func NewStaticCatalog(descs []CatalogDescriptor) *catalog.Static {
	return &catalog.Static{Descriptors: descs}
}

// NewYAMLCatalog returns a Provider reading dir for *.yaml descriptor
// files (§6.2).
func NewYAMLCatalog(dir string, log Logger) *catalog.YAMLDirectory {
	return catalog.NewYAMLDirectory(dir, log)
}

// NewPreconnection validates endpoint counts, reduces props against
// cat's current descriptor set, and retains the ranked candidates
// (§4.7). It is the entry point every other operation in this facade
// hangs off of.
func NewPreconnection(
	local, remote []*Endpoint,
	props *Properties,
	sec *SecurityParams,
	cat CatalogProvider,
	loader *Loader,
	log Logger,
) (*Preconnection, error) {
	return preconnection.New(local, remote, props, sec, cat, loader, log)
}

// IsErrorCode reports whether err carries the given tapserr.Code.
func IsErrorCode(err error, code ErrorCode) bool { return tapserr.Is(err, code) }
