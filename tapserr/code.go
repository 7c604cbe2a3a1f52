/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package tapserr defines the error-kind vocabulary shared by every
// package in this module, so callers can test for a kind with tapserr.Is
// instead of parsing messages.
package tapserr

// Code is a small numeric error code, the same shape as the teacher's
// errors.CodeError but scoped to the kinds this module raises.
type Code uint16

const (
	// Unknown is the zero value: no specific kind.
	Unknown Code = iota

	// InvalidArgument marks a caller-supplied value that fails validation
	// (nil pointer where required, malformed property name, etc).
	InvalidArgument

	// Busy marks an endpoint field that is already set (the C source's
	// EBUSY convention for set-once fields).
	Busy

	// OutOfMemory marks allocation failure in a path the teacher always
	// guards explicitly even though Go's allocator panics instead of
	// returning an error; retained for parity with the Protocol Module
	// Contract's listen/connect return conventions.
	OutOfMemory

	// TooManyEndpoints marks a Preconnection constructed with more local or
	// remote endpoints than the implementation accepts.
	TooManyEndpoints

	// NoViableProtocol marks a candidate set that the Property Reducer
	// filtered down to zero entries.
	NoViableProtocol

	// LoadError marks failure to load a protocol module (the dynamic
	// library, or in this implementation the plugin, could not be opened).
	LoadError

	// IncompleteModule marks a loaded protocol module missing one of the
	// five required contract symbols. The error message names the symbol.
	IncompleteModule

	// Unavailable marks a resource or peer that cannot be used: a missing
	// catalog directory, a module listen or connect failure, a connect
	// timeout, a Listener freed before it stopped, or a send/receive on a
	// Connection that has already closed.
	Unavailable

	// ProtocolFailure marks an error surfaced by the protocol module itself
	// (as opposed to a violation of this module's own state machine). The
	// error message carries the module-supplied reason, defaulting to
	// "protocol failure" when the module gives none.
	ProtocolFailure

	// MessageBelowMinLength marks a receive whose accumulated data never
	// reached minLength before the protocol module signaled end-of-stream.
	MessageBelowMinLength

	// ConnectionDied marks an operation failing because the Connection was
	// freed with requests still outstanding.
	ConnectionDied
)

var names = map[Code]string{
	Unknown:               "unknown",
	InvalidArgument:       "invalid argument",
	Busy:                  "busy",
	OutOfMemory:           "out of memory",
	TooManyEndpoints:      "too many endpoints",
	NoViableProtocol:      "no viable protocol",
	LoadError:             "load error",
	IncompleteModule:      "incomplete module",
	Unavailable:           "unavailable",
	ProtocolFailure:       "protocol failure",
	MessageBelowMinLength: "message below minimum length",
	ConnectionDied:        "connection died",
}

// String returns the human-readable name of the code.
func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "unknown"
}
