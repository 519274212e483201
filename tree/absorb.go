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

// Absorptions applies the absorption laws bottom-up
// to the tree rooted at n:
//
//	A AND A           -> A
//	A OR A            -> A
//	A AND (A OR B)    -> A    (any operand order)
//	A OR (A AND B)    -> A    (any operand order)
//
// Operands are compared with Equals. An AND over an
// OR that absorbs nothing is left as it is, so the
// output of Compress is unchanged. Absorptions
// returns the node now occupying the position of n.
func Absorptions(n *Node) *Node {
	if n == nil {
		return nil
	}
	n = EraseBraces(n)
	if !isAnd(n) && !isOr(n) {
		return n
	}
	Absorptions(n.children[0])
	Absorptions(n.children[2])

	orig := n
	switch {
	case n.children[0].Equals(n.children[2]):
		n = ReplaceWith(n, n.children[0])
	case isAnd(n):
		n = absorbAnd(n)
	default:
		n = absorbOr(n)
	}
	if n != orig {
		n = EraseBraces(n)
	}
	return n
}

// absorbAnd handles an AND with an OR operand
func absorbAnd(n *Node) *Node {
	for _, pos := range [2]int{0, 2} {
		or := ungroup(n.children[pos])
		if !isOr(or) {
			continue
		}
		other := n.children[2-pos]
		if or.children[0].Equals(other) || or.children[2].Equals(other) {
			return ReplaceWith(n, other)
		}
	}
	return n
}

// absorbOr handles an OR with an AND operand
func absorbOr(n *Node) *Node {
	for _, pos := range [2]int{0, 2} {
		and := ungroup(n.children[pos])
		if !isAnd(and) {
			continue
		}
		other := n.children[2-pos]
		if and.children[0].Equals(other) || and.children[2].Equals(other) {
			return ReplaceWith(n, other)
		}
	}
	return n
}
