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

// Package reducer combines a property.Set with a catalog to emit a ranked
// candidate list, and runs a secondary pass handling the non-boolean mode
// fields (multipath, direction, advertises-alt-address).
package reducer

import (
	"sort"

	"github.com/nabbar/taps-core/ability"
	"github.com/nabbar/taps-core/catalog"
	"github.com/nabbar/taps-core/property"
	"github.com/nabbar/taps-core/tapserr"
)

// Candidate is a catalog.Descriptor that survived reduction, carrying its
// computed score.
type Candidate struct {
	catalog.Descriptor
	Score int
}

// Reduce implements §4.2: reject descriptors violating Prohibit/Require,
// score survivors, and sort by descending score (ties keep catalog order,
// via a stable sort).
func Reduce(props *property.Set, descs []catalog.Descriptor) ([]Candidate, error) {
	if err := props.Validate(); err != nil {
		return nil, err
	}

	require := props.RequireMask()
	prohibit := props.ProhibitMask()
	prefer := props.PreferMask()
	avoid := props.AvoidMask()

	out := make([]Candidate, 0, len(descs))
	for _, d := range descs {
		if d.Supported.Intersect(prohibit) != 0 {
			continue
		}
		if !d.Supported.Has(require) {
			continue
		}

		score := 100*d.Supported.Intersect(prefer).Popcount() - d.Supported.Intersect(avoid).Popcount()
		out = append(out, Candidate{Descriptor: d, Score: score})
	}

	if len(out) == 0 {
		return nil, tapserr.New(tapserr.NoViableProtocol, "no catalog descriptor satisfies the requested properties")
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out, nil
}

// ApplyModes is the secondary reducer pass recorded in SPEC_FULL's Open
// Question resolutions: it runs after Reduce and may only remove
// candidates, never reinstate ones the bitmask pass already rejected. It
// resolves the enum-valued Multipath/Direction/AdvertisesAltAddr fields,
// which the boolean ability vocabulary cannot express directly.
//
// A candidate is dropped if:
//   - props.Multipath requires active or passive multipath support and the
//     descriptor doesn't advertise ability.Multipath;
//   - props.Direction restricts to send-only or receive-only and the
//     descriptor's ability.Direction bit (1 = unidirectional-capable, by
//     convention of this catalog) disagrees — a bidirectional-only
//     descriptor (bit clear) cannot serve a directional request;
//   - props.AdvertisesAltAddr is required and the descriptor lacks
//     ability.AdvertisesAltAddr.
func ApplyModes(props *property.Set, in []Candidate) ([]Candidate, error) {
	out := make([]Candidate, 0, len(in))

	for _, c := range in {
		if props.Multipath != property.MultipathDisabled && !c.Supported.Has(ability.Mask(ability.Multipath)) {
			continue
		}
		if props.Direction != property.DirectionBidirectional && !c.Supported.Has(ability.Mask(ability.Direction)) {
			continue
		}
		if props.AdvertisesAltAddr && !c.Supported.Has(ability.Mask(ability.AdvertisesAltAddr)) {
			continue
		}
		out = append(out, c)
	}

	if len(out) == 0 {
		return nil, tapserr.New(tapserr.NoViableProtocol, "no candidate satisfies the requested multipath/direction/altaddr mode")
	}
	return out, nil
}
