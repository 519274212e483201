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

// DisjunctiveNormalForm rewrites the tree rooted at n
// into an OR of ANDs of predicates by distributing
// every AND over its OR operands. Absorptions is
// applied first. DisjunctiveNormalForm returns the
// node now occupying the position of n.
func DisjunctiveNormalForm(n *Node) *Node {
	if n == nil {
		return nil
	}
	n = Absorptions(n)
	switch {
	case isGroup(n):
		DisjunctiveNormalForm(n.children[1])
		return EraseBraces(n)
	case isOr(n):
		DisjunctiveNormalForm(n.children[0])
		DisjunctiveNormalForm(n.children[2])
	case isAnd(n):
		DisjunctiveNormalForm(n.children[0])
		DisjunctiveNormalForm(n.children[2])
		for _, pos := range [2]int{0, 2} {
			if isOr(ungroup(n.children[pos])) {
				return DisjunctiveNormalForm(distribute(n, pos))
			}
		}
		for _, pos := range [2]int{0, 2} {
			if c := n.children[pos]; isGroup(c) && !keepGroup(c.children[1], n) {
				ReplaceWith(c, c.RemoveAt(1))
			}
		}
	}
	return n
}
