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

// Compress factors a common operand out of an OR of
// two ANDs:
//
//	(A AND X) OR (B AND X) -> X AND (A OR B)
//
// X may be either operand of either AND. Compress
// returns the node now occupying the position of n.
func Compress(n *Node) *Node {
	if n == nil {
		return nil
	}
	n = EraseBraces(n)
	switch {
	case isAnd(n), isOr(n):
		Compress(n.children[0])
		Compress(n.children[2])
	case isGroup(n):
		Compress(n.children[1])
		if !keepGroup(n.children[1], n.parent) {
			n = ReplaceWith(n, n.RemoveAt(1))
		}
	}
	if !isOr(n) {
		return n
	}
	l, r := n.children[0], n.children[2]
	if !isAnd(l) || !isAnd(r) {
		return n
	}
	for _, i := range [2]int{0, 2} {
		for _, j := range [2]int{0, 2} {
			if !l.children[i].Equals(r.children[j]) {
				continue
			}
			x, a, b := l.children[i], l.children[2-i], r.children[2-j]
			l.Remove(x)
			l.Remove(a)
			r.Remove(b)
			or := MakeOr(a, b)
			EraseBraces(a)
			EraseBraces(b)
			grp := Group(or)
			n = ReplaceWith(n, MakeAnd(x, grp))
			Compress(grp)
			return n
		}
	}
	return n
}
