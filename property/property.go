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

// Package property models the application's declarative transport
// requirements: a Preference per named ability, plus the handful of
// non-boolean knobs (multipath mode, direction mode, per-interface
// preference) that do not fit the boolean vocabulary.
package property

import (
	"github.com/nabbar/taps-core/ability"
	"github.com/nabbar/taps-core/tapserr"
)

// Preference is one of the five strengths an application can attach to an
// ability.
type Preference int8

const (
	Prohibit Preference = -2
	Avoid    Preference = -1
	Ignore   Preference = 0
	Prefer   Preference = 1
	Require  Preference = 2
)

// MultipathMode and DirectionMode give the enum-valued treatment the raw
// boolean ability vocabulary can't express for Multipath/Direction; see
// reducer.ApplyModes for how they interact with candidate selection.
type MultipathMode int

const (
	MultipathDisabled MultipathMode = iota
	MultipathActive
	MultipathPassive
)

type DirectionMode int

const (
	DirectionBidirectional DirectionMode = iota
	DirectionSendOnly
	DirectionReceiveOnly
)

// Set is a TransportProperty set: a Preference for every ability, plus the
// secondary mode fields. The zero value is all-Ignore, bidirectional,
// multipath-disabled — a conservative default that every protocol
// satisfies.
type Set struct {
	pref map[ability.Bit]Preference

	Multipath         MultipathMode
	Direction         DirectionMode
	AdvertisesAltAddr bool

	// PerInterface lets an application prefer or avoid a specific network
	// interface name; it plays no part in ability reduction and is not
	// passed to the protocol module.
	PerInterface map[string]Preference
}

// New returns a Set with every ability at Ignore.
func New() *Set {
	return &Set{
		pref:         make(map[ability.Bit]Preference, ability.Count),
		PerInterface: make(map[string]Preference),
	}
}

// Set assigns pref to ability b, overwriting any previous assignment (the
// invariant that each ability belongs to exactly one bucket is maintained
// by construction: pref is keyed by ability, not by bucket).
func (s *Set) Set(b ability.Bit, pref Preference) {
	if s.pref == nil {
		s.pref = make(map[ability.Bit]Preference, ability.Count)
	}
	s.pref[b] = pref
}

// Get returns the Preference assigned to b, defaulting to Ignore.
func (s *Set) Get(b ability.Bit) Preference {
	if s.pref == nil {
		return Ignore
	}
	if p, ok := s.pref[b]; ok {
		return p
	}
	return Ignore
}

// bucket returns the ability.Mask of every ability assigned exactly the
// given Preference.
func (s *Set) bucket(pref Preference) ability.Mask {
	var m ability.Mask
	for _, b := range ability.All {
		if s.Get(b) == pref {
			m = m.Set(b)
		}
	}
	return m
}

// RequireMask returns the bitmask of abilities the application requires.
func (s *Set) RequireMask() ability.Mask { return s.bucket(Require) }

// PreferMask returns the bitmask of abilities the application prefers.
func (s *Set) PreferMask() ability.Mask { return s.bucket(Prefer) }

// AvoidMask returns the bitmask of abilities the application wants avoided.
func (s *Set) AvoidMask() ability.Mask { return s.bucket(Avoid) }

// ProhibitMask returns the bitmask of abilities the application prohibits.
func (s *Set) ProhibitMask() ability.Mask { return s.bucket(Prohibit) }

// Validate reports tapserr.InvalidArgument if called on a nil Set; a valid
// zero-value Set (all-Ignore) is otherwise always well-formed since Set
// keys each ability to exactly one Preference by construction.
func (s *Set) Validate() error {
	if s == nil {
		return tapserr.New(tapserr.InvalidArgument, "nil transport property set")
	}
	return nil
}
