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

// helpers shared by the boolean normalization passes

func isAnd(n *Node) bool {
	return n.Is(BooleanTerm) && len(n.children) == 3
}

func isOr(n *Node) bool {
	return n.Is(SearchCondition) && len(n.children) == 3
}

// isGroup returns whether n is a parenthesized
// group at a boolean position. Sub-queries and
// IN value lists share the "( x )" shape but are
// never treated as groups.
func isGroup(n *Node) bool {
	return n.IsParenthesized() && !n.Is(Subquery) && !n.Is(InPredicateValue)
}

// ungroup returns the node inside a group,
// or n itself if n is not a group.
func ungroup(n *Node) *Node {
	if isGroup(n) {
		return n.children[1]
	}
	return n
}

// MakeAnd returns the boolean_term "l AND r".
// Neither l nor r may have a parent.
func MakeAnd(l, r *Node) *Node {
	n := NewRule(BooleanTerm)
	n.Append(l)
	n.Append(NewKeyword(TokenAnd))
	n.Append(r)
	return n
}

// MakeOr returns the search_condition "l OR r".
// Neither l nor r may have a parent.
func MakeOr(l, r *Node) *Node {
	n := NewRule(SearchCondition)
	n.Append(l)
	n.Append(NewKeyword(TokenOr))
	n.Append(r)
	return n
}

// Group returns the boolean_primary "( inner )".
func Group(inner *Node) *Node {
	n := NewRule(BooleanPrimary)
	n.Append(NewPunct("("))
	n.Append(inner)
	n.Append(NewPunct(")"))
	return n
}

// bindsTighterThanOr returns whether the operands
// of p bind more tightly than OR, so that an OR
// operand of p needs parentheses.
func bindsTighterThanOr(p *Node) bool {
	return isAnd(p) || p.Is(BooleanFactor) || p.Is(BooleanTest)
}

// keepGroup decides whether the parentheses around
// inner are needed once inner is attached to parent.
// An OR keeps them under AND, NOT and IS; an AND only
// under NOT and IS; anything else never needs them.
func keepGroup(inner, parent *Node) bool {
	switch {
	case isOr(inner):
		return parent != nil && bindsTighterThanOr(parent)
	case isAnd(inner):
		return parent != nil && (parent.Is(BooleanFactor) || parent.Is(BooleanTest))
	}
	return false
}

// distribute rewrites n = "A AND (B OR C)" (with the
// OR group at position pos, either 0 or 2) into
// "( (A AND B) OR (A AND C) )" and returns the
// group, which now occupies the position of n.
func distribute(n *Node, pos int) *Node {
	or := ungroup(n.children[pos])
	a := n.children[2-pos]
	b, c := or.children[0], or.children[2]
	n.Remove(a)
	or.Remove(b)
	or.Remove(c)
	left := MakeAnd(operand(a), operand(b))
	right := MakeAnd(operand(a.Clone()), operand(c))
	EraseBraces(left.children[0])
	EraseBraces(left.children[2])
	EraseBraces(right.children[0])
	EraseBraces(right.children[2])
	return ReplaceWith(n, Group(MakeOr(left, right)))
}

// operand parenthesizes a bare OR that
// is about to become an operand of AND
func operand(x *Node) *Node {
	if isOr(x) {
		return Group(x)
	}
	return x
}
