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

func rule(r RuleID, children ...*Node) *Node {
	n := NewRule(r)
	for _, c := range children {
		n.Append(c)
	}
	return n
}

func col(name string) *Node {
	return rule(ColumnRef, NewLeaf(NameKind, name))
}

func num(s string) *Node { return NewLeaf(IntNumKind, s) }

func str(s string) *Node { return NewLeaf(StringKind, s) }

// cmp produces "name <op> 1"
func cmp(name string, k Kind) *Node {
	return rule(ComparisonPredicate, col(name), NewComparison(k), num("1"))
}

// atom produces the predicate "name = 1"
func atom(name string) *Node { return cmp(name, EqualKind) }

func and(l, r *Node) *Node { return MakeAnd(l, r) }
func or(l, r *Node) *Node  { return MakeOr(l, r) }
func grp(x *Node) *Node    { return Group(x) }

func not(x *Node) *Node {
	return rule(BooleanFactor, NewKeyword(TokenNot), x)
}

func sqlnot(negated bool) *Node {
	if negated {
		return NewKeyword(TokenNot)
	}
	return NewRule(SQLNot)
}

func isNull(name string, negated bool) *Node {
	return rule(TestForNull, col(name),
		rule(NullPredicatePart2, NewKeyword(TokenIs), sqlnot(negated), NewKeyword(TokenNull)))
}

func like(name, pattern string, negated bool) *Node {
	return rule(LikePredicate, col(name),
		rule(CharacterLikePredicatePart2, sqlnot(negated), NewKeyword(TokenLike),
			str(pattern), NewRule(OptEscape)))
}

func between(name string, negated bool) *Node {
	return rule(BetweenPredicate, col(name),
		rule(BetweenPredicatePart2, sqlnot(negated), NewKeyword(TokenBetween),
			num("1"), NewKeyword(TokenAnd), num("2")))
}

func in(name string, negated bool) *Node {
	vals := NewList(CommaListKind, ValueExpCommalist)
	vals.Append(num("1"))
	vals.Append(num("2"))
	value := rule(InPredicateValue, NewPunct("("), vals, NewPunct(")"))
	return rule(InPredicate, col(name),
		rule(InPredicatePart2, sqlnot(negated), NewKeyword(TokenIn), value))
}

func quantified(name string, k Kind, q TokenID) *Node {
	sub := rule(Subquery, NewPunct("("), rule(SelectStatement, NewKeyword(TokenSelect)), NewPunct(")"))
	return rule(AllOrAnyPredicate, col(name),
		rule(QuantifiedComparisonPredicatePart2, NewComparison(k),
			rule(AnyAllSome, NewKeyword(q)), sub))
}

// parentsOK checks that every child of every
// node in the tree points back at its parent
func parentsOK(n *Node) bool {
	for _, c := range n.children {
		if c.parent != n || !parentsOK(c) {
			return false
		}
	}
	return true
}
