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

// Package ability defines the fixed 16-bit vocabulary of boolean transport
// abilities and the bitmask operations the reducer and catalog packages
// share.
package ability

import "math/bits"

// Bit is one of the 16 named transport abilities. Each is a single set bit
// so a protocol descriptor's supported set and a property set's
// Require/Prefer/Avoid/Prohibit buckets are all plain bitmasks.
type Bit uint16

const (
	Reliability Bit = 1 << iota
	PreserveMsgBoundaries
	PerMsgReliability
	PreserveOrder
	ZeroRttMsg
	Multistreaming
	FullChecksumSend
	FullChecksumRecv
	CongestionControl
	KeepAlive
	UseTemporaryLocalAddress
	Multipath
	AdvertisesAltAddr
	Direction
	SoftErrorNotify
	ActiveReadBeforeSend
)

// Count is the number of named abilities.
const Count = 16

// All lists every ability bit in declaration order, the order in which
// catalog descriptors and candidate scoring enumerate them.
var All = [Count]Bit{
	Reliability, PreserveMsgBoundaries, PerMsgReliability, PreserveOrder,
	ZeroRttMsg, Multistreaming, FullChecksumSend, FullChecksumRecv,
	CongestionControl, KeepAlive, UseTemporaryLocalAddress, Multipath,
	AdvertisesAltAddr, Direction, SoftErrorNotify, ActiveReadBeforeSend,
}

var names = map[Bit]string{
	Reliability:              "reliability",
	PreserveMsgBoundaries:    "preserveMsgBoundaries",
	PerMsgReliability:        "perMsgReliability",
	PreserveOrder:            "preserveOrder",
	ZeroRttMsg:               "zeroRttMsg",
	Multistreaming:           "multistreaming",
	FullChecksumSend:         "FullChecksumSend",
	FullChecksumRecv:         "FullChecksumRecv",
	CongestionControl:        "congestionControl",
	KeepAlive:                "keepAlive",
	UseTemporaryLocalAddress: "useTemporaryLocalAddress",
	Multipath:                "multipath",
	AdvertisesAltAddr:        "advertises_altaddr",
	Direction:                "direction",
	SoftErrorNotify:          "softErrorNotify",
	ActiveReadBeforeSend:     "activeReadBeforeSend",
}

var byName map[string]Bit

func init() {
	byName = make(map[string]Bit, len(names))
	for b, n := range names {
		byName[n] = b
	}
}

// String returns the ability's catalog-file name.
func (b Bit) String() string {
	if n, ok := names[b]; ok {
		return n
	}
	return "unknown"
}

// Lookup resolves a catalog-file ability name to its Bit. Unknown names
// (per §4.1/§6.2: "unknown names are ignored") return ok=false so the
// caller can silently skip them.
func Lookup(name string) (b Bit, ok bool) {
	b, ok = byName[name]
	return
}

// Mask is a set of abilities, represented as a bitmask over Bit values.
type Mask uint16

// Has reports whether every bit in sub is set in m.
func (m Mask) Has(sub Mask) bool {
	return m&sub == sub
}

// Popcount returns the number of set bits.
func (m Mask) Popcount() int {
	return bits.OnesCount16(uint16(m))
}

// Set returns m with b added.
func (m Mask) Set(b Bit) Mask {
	return m | Mask(b)
}

// Intersect returns the bits common to m and other.
func (m Mask) Intersect(other Mask) Mask {
	return m & other
}
