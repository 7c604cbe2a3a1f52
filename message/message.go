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

// Package message implements the scatter/gather Message type: a list of
// caller-owned buffer slices plus a populated length, with truncation.
package message

// Buf is one entry of a scatter/gather list. It references an
// externally-owned buffer; Message never allocates or frees the
// underlying bytes.
type Buf struct {
	Data []byte
}

// Len returns the length of the referenced buffer.
func (b Buf) Len() int { return len(b.Data) }

// Message owns a scatter/gather list of caller buffers plus a populated
// length (§4.4/§3).
type Message struct {
	iov []Buf
}

// New wraps a single buffer in a Message.
func New(buf []byte) *Message {
	return &Message{iov: []Buf{{Data: buf}}}
}

// NewScatter wraps an existing multi-buffer scatter/gather list.
func NewScatter(bufs []Buf) *Message {
	cp := make([]Buf, len(bufs))
	copy(cp, bufs)
	return &Message{iov: cp}
}

// FirstBuf returns the first entry's bytes, or nil if the Message is
// empty.
func (m *Message) FirstBuf() []byte {
	if len(m.iov) == 0 {
		return nil
	}
	return m.iov[0].Data
}

// Iovec returns the underlying scatter list. The returned slice aliases
// Message's internal storage; callers must not retain it past the next
// mutating call.
func (m *Message) Iovec() []Buf {
	return m.iov
}

// Len returns the total populated length across all entries.
func (m *Message) Len() int {
	n := 0
	for _, b := range m.iov {
		n += b.Len()
	}
	return n
}

// Truncate reduces the populated length to cap, trimming trailing iovec
// entries so their summed length equals cap (§4.4). If cap is greater
// than or equal to the total populated length, Truncate is a no-op — the
// effective length is unchanged, per the specified contract.
func (m *Message) Truncate(cap int) {
	if cap < 0 {
		cap = 0
	}
	total := m.Len()
	if cap >= total {
		return
	}

	remaining := cap
	for i, b := range m.iov {
		if remaining == 0 {
			m.iov = m.iov[:i]
			return
		}
		if remaining >= b.Len() {
			remaining -= b.Len()
			continue
		}
		m.iov[i].Data = b.Data[:remaining]
		m.iov = m.iov[:i+1]
		return
	}
}

// Free releases Message's own bookkeeping. Buffers referenced by Iovec
// entries are caller-owned and are never touched here.
func (m *Message) Free() {
	m.iov = nil
}

// Offset returns a new scatter list equivalent to m's iovec with the
// first n bytes dropped: entries fully consumed are removed, and the
// first remaining entry's base is advanced. Used by the connection
// package to re-dispatch a partially-satisfied receive (§4.6).
func Offset(iov []Buf, n int) []Buf {
	if n <= 0 {
		return iov
	}
	for i, b := range iov {
		if n < b.Len() {
			out := make([]Buf, 0, len(iov)-i)
			out = append(out, Buf{Data: b.Data[n:]})
			out = append(out, iov[i+1:]...)
			return out
		}
		n -= b.Len()
	}
	return nil
}
