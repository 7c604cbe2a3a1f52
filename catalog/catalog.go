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

// Package catalog defines the read-only protocol-descriptor provider
// contract and a concrete on-disk YAML implementation. The catalog is
// decoupled from Preconnection so a daemon, an in-memory test double, or
// the YAML directory reader below can all stand in for it.
package catalog

import (
	"github.com/nabbar/taps-core/ability"
)

// Descriptor is one entry in the protocol catalog: a name, its wire
// protocol, the path to its loadable module, and the abilities it
// supports.
type Descriptor struct {
	Name       string
	Protocol   string
	ModulePath string
	Supported  ability.Mask
}

// Provider is the Catalog contract (§4.1): a read-only source of
// Descriptor values.
type Provider interface {
	// Update fills out the current descriptor set, up to capacity entries,
	// and returns them. Returns tapserr.Unavailable if the
	// backing source (directory, daemon connection, …) is gone.
	Update(capacity int) ([]Descriptor, error)
}

// Static is a Provider backed by a fixed in-memory slice, useful for tests
// and for embedding a compiled-in descriptor set.
type Static struct {
	Descriptors []Descriptor
}

// Update returns up to capacity entries from the static list, in order.
func (s *Static) Update(capacity int) ([]Descriptor, error) {
	if capacity <= 0 || capacity > len(s.Descriptors) {
		capacity = len(s.Descriptors)
	}
	out := make([]Descriptor, capacity)
	copy(out, s.Descriptors[:capacity])
	return out, nil
}
