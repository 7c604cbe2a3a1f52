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

package endpoint

// AliasSet tracks which Endpoints are aliases of one another (the same
// peer reachable through distinct addressing fields) as a union-find
// forest, replacing the source's bidirectional prevAlias/nextAlias cycle.
type AliasSet struct {
	parent map[ID]ID
	rank   map[ID]int
}

// NewAliasSet returns an empty AliasSet.
func NewAliasSet() *AliasSet {
	return &AliasSet{
		parent: make(map[ID]ID),
		rank:   make(map[ID]int),
	}
}

func (a *AliasSet) find(id ID) ID {
	p, ok := a.parent[id]
	if !ok {
		a.parent[id] = id
		return id
	}
	if p == id {
		return id
	}
	root := a.find(p)
	a.parent[id] = root
	return root
}

// Link marks x and y as aliases of the same equivalence class.
func (a *AliasSet) Link(x, y ID) {
	rx, ry := a.find(x), a.find(y)
	if rx == ry {
		return
	}
	if a.rank[rx] < a.rank[ry] {
		rx, ry = ry, rx
	}
	a.parent[ry] = rx
	if a.rank[rx] == a.rank[ry] {
		a.rank[rx]++
	}
}

// SameClass reports whether x and y are aliases of one another.
func (a *AliasSet) SameClass(x, y ID) bool {
	return a.find(x) == a.find(y)
}

// Class returns every ID known to be in the same equivalence class as id,
// including id itself.
func (a *AliasSet) Class(id ID) []ID {
	root := a.find(id)
	var out []ID
	for k := range a.parent {
		if a.find(k) == root {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		out = append(out, id)
	}
	return out
}
