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

import (
	"testing"
)

func TestInvertTable(t *testing.T) {
	pairs := [][2]Kind{
		{EqualKind, NotEqualKind},
		{LessKind, GreatEqKind},
		{GreatKind, LessEqKind},
	}
	for _, p := range pairs {
		for _, k := range []Kind{p[0], p[1]} {
			want := p[0]
			if k == p[0] {
				want = p[1]
			}
			got := NegateSearchCondition(cmp("a", k), true)
			if !got.Equals(cmp("a", want)) {
				t.Errorf("negate %s: got %s", k, got)
			}
			if k.Invert().Invert() != k {
				t.Errorf("%s inverted twice is %s", k, k.Invert().Invert())
			}
			back := NegateSearchCondition(got, true)
			if !back.Equals(cmp("a", k)) {
				t.Errorf("negate %s twice: got %s", k, back)
			}
		}
	}
	if PunctuationKind.Invert() != PunctuationKind {
		t.Error("non-comparison kinds should be unchanged")
	}
}

func TestNegate(t *testing.T) {
	testcases := []struct {
		name        string
		before, out func() *Node
	}{
		{
			name:   "LIKE",
			before: func() *Node { return like("a", "foo%", false) },
			out:    func() *Node { return like("a", "foo%", true) },
		},
		{
			name:   "NOT LIKE",
			before: func() *Node { return like("a", "foo%", true) },
			out:    func() *Node { return like("a", "foo%", false) },
		},
		{
			name:   "IS NULL",
			before: func() *Node { return isNull("a", false) },
			out:    func() *Node { return isNull("a", true) },
		},
		{
			name:   "BETWEEN",
			before: func() *Node { return between("a", true) },
			out:    func() *Node { return between("a", false) },
		},
		{
			name:   "IN",
			before: func() *Node { return in("a", false) },
			out:    func() *Node { return in("a", true) },
		},
		{
			name:   "De Morgan OR",
			before: func() *Node { return or(atom("a"), cmp("b", LessKind)) },
			out:    func() *Node { return and(cmp("a", NotEqualKind), cmp("b", GreatEqKind)) },
		},
		{
			name:   "De Morgan AND",
			before: func() *Node { return and(atom("a"), isNull("b", true)) },
			out:    func() *Node { return or(cmp("a", NotEqualKind), isNull("b", false)) },
		},
		{
			name: "grouped",
			before: func() *Node {
				return and(atom("a"), grp(or(atom("b"), atom("c"))))
			},
			out: func() *Node {
				return or(cmp("a", NotEqualKind),
					and(cmp("b", NotEqualKind), cmp("c", NotEqualKind)))
			},
		},
		{
			name: "OR under AND",
			before: func() *Node {
				return or(atom("a"), and(atom("b"), atom("c")))
			},
			out: func() *Node {
				return and(cmp("a", NotEqualKind),
					grp(or(cmp("b", NotEqualKind), cmp("c", NotEqualKind))))
			},
		},
		{
			name: "left OR under AND",
			before: func() *Node {
				return or(and(atom("a"), atom("b")), atom("c"))
			},
			out: func() *Node {
				return and(grp(or(cmp("a", NotEqualKind), cmp("b", NotEqualKind))),
					cmp("c", NotEqualKind))
			},
		},
		{
			name: "user parentheses kept",
			before: func() *Node {
				return or(atom("a"), grp(or(atom("b"), atom("c"))))
			},
			out: func() *Node {
				return and(cmp("a", NotEqualKind),
					grp(and(cmp("b", NotEqualKind), cmp("c", NotEqualKind))))
			},
		},
		{
			name:   "double negation",
			before: func() *Node { return not(grp(atom("a"))) },
			out:    func() *Node { return grp(atom("a")) },
		},
		{
			name:   "ANY",
			before: func() *Node { return quantified("a", LessKind, TokenAny) },
			out:    func() *Node { return quantified("a", GreatEqKind, TokenAll) },
		},
		{
			name:   "SOME",
			before: func() *Node { return quantified("a", EqualKind, TokenSome) },
			out:    func() *Node { return quantified("a", NotEqualKind, TokenAll) },
		},
		{
			name:   "EXISTS",
			before: func() *Node { return rule(ExistenceTest, NewKeyword(TokenExists), NewRule(Subquery)) },
			out: func() *Node {
				return not(rule(ExistenceTest, NewKeyword(TokenExists), NewRule(Subquery)))
			},
		},
		{
			name: "IS TRUE",
			before: func() *Node {
				return rule(BooleanTest, col("a"), NewKeyword(TokenIs), sqlnot(false), NewKeyword(TokenTrue))
			},
			out: func() *Node {
				return rule(BooleanTest, col("a"), NewKeyword(TokenIs), sqlnot(true), NewKeyword(TokenTrue))
			},
		},
	}
	for i := range testcases {
		tc := testcases[i]
		t.Run(tc.name, func(t *testing.T) {
			checkTree(t, NegateSearchCondition(tc.before(), true), tc.out())
		})
	}
}

func TestPushDownNot(t *testing.T) {
	// NOT (a = 1 OR b IS NULL) -> (a <> 1 AND b IS NOT NULL)
	in := not(grp(or(atom("a"), isNull("b", false))))
	got := NegateSearchCondition(in, false)
	checkTree(t, got, grp(and(cmp("a", NotEqualKind), isNull("b", true))))

	// without a NOT, nothing changes
	plain := or(atom("a"), isNull("b", false))
	got = NegateSearchCondition(plain.Clone(), false)
	checkTree(t, got, plain)
}

func TestNegateRoundTrip(t *testing.T) {
	trees := []func() *Node{
		func() *Node { return atom("a") },
		func() *Node { return like("a", "x_%", false) },
		func() *Node { return or(atom("a"), and(cmp("b", LessEqKind), isNull("c", false))) },
		func() *Node {
			return and(grp(or(cmp("a", GreatKind), isNull("b", true))),
				grp(or(atom("c"), between("d", false))))
		},
		func() *Node {
			return or(or(in("a", true), atom("b")), and(atom("c"), atom("d")))
		},
		func() *Node {
			return or(and(atom("a"), grp(or(atom("b"), atom("c")))), and(atom("d"), isNull("e", true)))
		},
	}
	for i, mk := range trees {
		orig := mk()
		got := NegateSearchCondition(NegateSearchCondition(mk(), true), true)
		if !got.Equals(orig) {
			t.Errorf("case %d: %s -> %s", i, orig, got)
		}
		if !parentsOK(got) {
			t.Errorf("case %d: inconsistent parent pointers", i)
		}
	}
}

func TestNegateInPlace(t *testing.T) {
	root := rule(WhereClause, NewKeyword(TokenWhere), rule(ExistenceTest, NewKeyword(TokenExists), NewRule(Subquery)))
	got := NegateSearchCondition(root.Child(1), true)
	if root.Child(1) != got || !got.Is(BooleanFactor) {
		t.Fatalf("got %s in %s", got, root)
	}
	if !parentsOK(root) {
		t.Fatal("inconsistent parent pointers")
	}
}
