// Copyright (C) 2023 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package tree

// arenaChunk is the number of nodes
// allocated together by an Arena.
const arenaChunk = 64

// Arena allocates the nodes built during one parse.
// Nodes are carved out of fixed-size chunks, so a
// failed parse can drop every partially built tree
// at once with Drop, and a successful parse hands
// its tree to the caller with Release.
//
// An Arena is not safe for concurrent use. A nil
// *Arena allocates every node individually.
type Arena struct {
	chunks [][]Node
	chunk  []Node
	count  int
}

func (a *Arena) alloc() *Node {
	if a == nil {
		return new(Node)
	}
	if len(a.chunk) == cap(a.chunk) {
		a.chunk = make([]Node, 0, arenaChunk)
		a.chunks = append(a.chunks, a.chunk)
	}
	a.chunk = a.chunk[:len(a.chunk)+1]
	a.count++
	return &a.chunk[len(a.chunk)-1]
}

// Count returns the number of nodes
// allocated since the last Drop or Release.
func (a *Arena) Count() int {
	if a == nil {
		return 0
	}
	return a.count
}

// Drop clears every node allocated since the last
// Drop or Release. It is called when a parse fails
// and none of the partial trees survive; any node
// pointer still held afterwards refers to an empty node.
func (a *Arena) Drop() {
	for _, c := range a.chunks {
		c = c[:cap(c)]
		for i := range c {
			c[i] = Node{}
		}
	}
	a.Release()
}

// Release detaches the arena from the nodes it has
// allocated so far; they remain valid and are owned
// by whoever holds the finished tree. Subsequent
// allocations start a new chunk.
func (a *Arena) Release() {
	a.chunks = nil
	a.chunk = nil
	a.count = 0
}

// Rule allocates an empty rule node of kind RuleKind.
func (a *Arena) Rule(r RuleID) *Node {
	n := a.alloc()
	n.kind = RuleKind
	n.id = uint16(r)
	return n
}

// List allocates an empty rule node of list kind k.
func (a *Arena) List(k Kind, r RuleID) *Node {
	if !k.IsRule() {
		panic("tree: List called with leaf kind " + k.String())
	}
	n := a.alloc()
	n.kind = k
	n.id = uint16(r)
	return n
}

// Keyword allocates a keyword leaf for t.
func (a *Arena) Keyword(t TokenID) *Node {
	n := a.alloc()
	n.kind = KeywordKind
	n.id = uint16(t)
	n.text = t.String()
	return n
}

// Leaf allocates a token leaf of kind k with text s.
func (a *Arena) Leaf(k Kind, s string) *Node {
	if k.IsRule() || k == KeywordKind {
		panic("tree: Leaf called with kind " + k.String())
	}
	n := a.alloc()
	n.kind = k
	n.text = s
	return n
}
