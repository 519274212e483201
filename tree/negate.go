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

// NegateSearchCondition pushes a negation down the
// tree rooted at n using De Morgan's laws. When negate
// is false, only the explicit NOT operators found in
// the tree are pushed down; when it is true, the whole
// condition is negated. Comparisons are inverted in place
// and the NOT of IS NULL, IN, BETWEEN, LIKE and IS <truth>
// predicates is toggled. An OR created under an AND is
// parenthesized, and the parentheses around an AND that
// ends up under an OR are dropped, so that negating twice
// gives back the tree negated. NegateSearchCondition returns
// the node now occupying the position of n.
func NegateSearchCondition(n *Node, negate bool) *Node {
	if n == nil {
		return nil
	}
	switch {
	case isGroup(n):
		inner := NegateSearchCondition(n.children[1], negate)
		if negate && isAnd(inner) && n.parent != nil && isOr(n.parent) {
			// the parentheses were only needed around the OR
			n = ReplaceWith(n, n.RemoveAt(1))
		}
	case isOr(n), isAnd(n):
		if negate {
			wasOr := isOr(n)
			l, r := n.children[0], n.children[2]
			n.Remove(l)
			n.Remove(r)
			switch p := n.parent; {
			case wasOr:
				n = ReplaceWith(n, MakeAnd(l, r))
			case p != nil && bindsTighterThanOr(p):
				g := ReplaceWith(n, Group(MakeOr(l, r)))
				NegateSearchCondition(l, negate)
				NegateSearchCondition(r, negate)
				return g
			default:
				n = ReplaceWith(n, MakeOr(l, r))
			}
		}
		NegateSearchCondition(n.children[0], negate)
		NegateSearchCondition(n.children[2], negate)
	case n.Is(BooleanFactor) && len(n.children) == 2:
		n = ReplaceWith(n, n.RemoveAt(1))
		return NegateSearchCondition(n, !negate)
	case !negate:
	case n.Is(ComparisonPredicate) && len(n.children) == 3:
		op := n.children[1]
		if op.Is(Comparison) {
			toggleNot(op, 1)
		} else if op.kind.IsComparison() {
			n.Replace(op, NewComparison(op.kind.Invert()))
		}
	case n.Is(AllOrAnyPredicate) && len(n.children) == 2:
		negateQuantified(n.children[1])
	case n.Is(TestForNull) && len(n.children) == 2:
		toggleNot(n.children[1], 1)
	case (n.Is(InPredicate) || n.Is(BetweenPredicate) || n.Is(LikePredicate)) && len(n.children) == 2:
		toggleNot(n.children[1], 0)
	case n.Is(BooleanTest) && len(n.children) == 4:
		toggleNot(n, 2)
	case wrapsInNot(n):
		// no NOT position of its own
		f := NewRule(BooleanFactor)
		parent, at := n.parent, -1
		if parent != nil {
			at = parent.Index(n)
			parent.RemoveAt(at)
		}
		f.Append(NewKeyword(TokenNot))
		f.Append(n)
		if parent != nil {
			parent.Insert(at, f)
		}
		n = f
	}
	return n
}

// toggleNot flips the sql_not at position i of p
// between the NOT keyword and the empty rule.
func toggleNot(p *Node, i int) {
	c := p.Child(i)
	switch {
	case c == nil:
		return
	case c.IsKeyword(TokenNot):
		p.Replace(c, NewRule(SQLNot))
	case c.Is(SQLNot) && len(c.children) == 0:
		p.Replace(c, NewKeyword(TokenNot))
	}
}

// negateQuantified rewrites "op ANY s" as "op' ALL s"
// and "op ALL s" as "op' ANY s", where op' is the
// inverse comparison.
func negateQuantified(part2 *Node) {
	if len(part2.children) != 3 {
		return
	}
	op, q := part2.children[0], part2.children[1]
	if op.kind.IsComparison() {
		part2.Replace(op, NewComparison(op.kind.Invert()))
	}
	kw := q
	if q.Is(AnyAllSome) && len(q.children) == 1 {
		kw = q.children[0]
	}
	switch kw.Token() {
	case TokenAll:
		kw.parent.Replace(kw, NewKeyword(TokenAny))
	case TokenAny, TokenSome:
		kw.parent.Replace(kw, NewKeyword(TokenAll))
	}
}

// wrapsInNot returns whether n is a predicate
// without a NOT position, which is negated by
// prefixing it with NOT.
func wrapsInNot(n *Node) bool {
	switch n.Rule() {
	case ExistenceTest, UniqueTest, ColumnRef, Parameter, FctSpec:
		return true
	}
	return n.IsKeyword(TokenTrue) || n.IsKeyword(TokenFalse)
}
