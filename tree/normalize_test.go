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

func checkTree(t *testing.T, got, want *Node) {
	t.Helper()
	if !got.Equals(want) {
		t.Errorf("got  %s", got)
		t.Errorf("want %s", want)
	}
	if got.Parent() != nil {
		t.Errorf("result still attached to %s", got.Parent())
	}
	if !parentsOK(got) {
		t.Errorf("inconsistent parent pointers in %s", got)
	}
	if err := CheckShape(got); err != nil {
		t.Error(err)
	}
}

func TestAbsorptions(t *testing.T) {
	testcases := []struct {
		name        string
		before, out func() *Node
	}{
		{
			name:   "A AND A",
			before: func() *Node { return and(atom("a"), atom("a")) },
			out:    func() *Node { return atom("a") },
		},
		{
			name:   "A OR A",
			before: func() *Node { return or(atom("a"), atom("a")) },
			out:    func() *Node { return atom("a") },
		},
		{
			name:   "A AND (A OR B)",
			before: func() *Node { return and(atom("a"), grp(or(atom("a"), atom("b")))) },
			out:    func() *Node { return atom("a") },
		},
		{
			name:   "A AND (B OR A)",
			before: func() *Node { return and(atom("a"), grp(or(atom("b"), atom("a")))) },
			out:    func() *Node { return atom("a") },
		},
		{
			name:   "(A OR B) AND A",
			before: func() *Node { return and(grp(or(atom("a"), atom("b"))), atom("a")) },
			out:    func() *Node { return atom("a") },
		},
		{
			name:   "(B OR A) AND A",
			before: func() *Node { return and(grp(or(atom("b"), atom("a"))), atom("a")) },
			out:    func() *Node { return atom("a") },
		},
		{
			name:   "A OR (A AND B)",
			before: func() *Node { return or(atom("a"), grp(and(atom("a"), atom("b")))) },
			out:    func() *Node { return atom("a") },
		},
		{
			name:   "(B AND A) OR A",
			before: func() *Node { return or(grp(and(atom("b"), atom("a"))), atom("a")) },
			out:    func() *Node { return atom("a") },
		},
		{
			// distribution is left to DisjunctiveNormalForm
			name:   "A AND (B OR C)",
			before: func() *Node { return and(atom("a"), grp(or(atom("b"), atom("c")))) },
			out:    func() *Node { return and(atom("a"), grp(or(atom("b"), atom("c")))) },
		},
		{
			name:   "(B OR C) AND A",
			before: func() *Node { return and(grp(or(atom("b"), atom("c"))), atom("a")) },
			out:    func() *Node { return and(grp(or(atom("b"), atom("c"))), atom("a")) },
		},
		{
			name: "absorbed after a nested OR",
			before: func() *Node {
				return and(atom("a"), grp(or(grp(or(atom("a"), atom("a"))), atom("b"))))
			},
			out: func() *Node { return atom("a") },
		},
		{
			name:   "nested identity",
			before: func() *Node { return or(grp(and(atom("a"), atom("a"))), atom("b")) },
			out:    func() *Node { return or(atom("a"), atom("b")) },
		},
		{
			// comparisons with different operators are distinct
			name:   "no change",
			before: func() *Node { return and(cmp("a", LessKind), cmp("a", GreatKind)) },
			out:    func() *Node { return and(cmp("a", LessKind), cmp("a", GreatKind)) },
		},
	}
	for i := range testcases {
		tc := testcases[i]
		t.Run(tc.name, func(t *testing.T) {
			got := Absorptions(tc.before())
			checkTree(t, got, tc.out())
			again := Absorptions(got.Clone())
			if !again.Equals(got) {
				t.Errorf("not idempotent: %s -> %s", got, again)
			}
		})
	}
}

func TestAbsorptionsInPlace(t *testing.T) {
	// the rewritten node takes the place
	// of the original within its parent
	root := rule(WhereClause, NewKeyword(TokenWhere),
		and(atom("a"), grp(or(atom("a"), atom("b")))))
	out := Absorptions(root.Child(1))
	if root.Child(1) != out {
		t.Fatalf("result %s not installed in parent", out)
	}
	if !out.Equals(atom("a")) {
		t.Errorf("got %s", out)
	}
	if !parentsOK(root) {
		t.Error("inconsistent parent pointers")
	}
}

func TestEraseBraces(t *testing.T) {
	testcases := []struct {
		name   string
		before func() *Node
		out    func() *Node
	}{
		{
			name:   "atom",
			before: func() *Node { return grp(atom("a")) },
			out:    func() *Node { return atom("a") },
		},
		{
			name:   "OR at root",
			before: func() *Node { return grp(or(atom("a"), atom("b"))) },
			out:    func() *Node { return or(atom("a"), atom("b")) },
		},
		{
			name:   "OR under OR",
			before: func() *Node { return or(grp(or(atom("a"), atom("b"))), atom("c")) },
			out:    func() *Node { return or(or(atom("a"), atom("b")), atom("c")) },
		},
		{
			name:   "AND under OR",
			before: func() *Node { return or(atom("c"), grp(and(atom("a"), atom("b")))) },
			out:    func() *Node { return or(atom("c"), and(atom("a"), atom("b"))) },
		},
		{
			name:   "AND under AND",
			before: func() *Node { return and(grp(and(atom("a"), atom("b"))), atom("c")) },
			out:    func() *Node { return and(and(atom("a"), atom("b")), atom("c")) },
		},
		{
			name:   "OR under AND",
			before: func() *Node { return and(grp(or(atom("a"), atom("b"))), atom("c")) },
			out:    func() *Node { return and(grp(or(atom("a"), atom("b"))), atom("c")) },
		},
		{
			name:   "OR under NOT",
			before: func() *Node { return not(grp(or(atom("a"), atom("b")))) },
			out:    func() *Node { return not(grp(or(atom("a"), atom("b")))) },
		},
		{
			name:   "AND under NOT",
			before: func() *Node { return not(grp(and(atom("a"), atom("b")))) },
			out:    func() *Node { return not(grp(and(atom("a"), atom("b")))) },
		},
		{
			name:   "double parentheses",
			before: func() *Node { return and(grp(grp(or(atom("a"), atom("b")))), atom("c")) },
			out:    func() *Node { return and(grp(or(atom("a"), atom("b"))), atom("c")) },
		},
	}
	for i := range testcases {
		tc := testcases[i]
		t.Run(tc.name, func(t *testing.T) {
			root := tc.before()
			// erase every group in the tree, bottom-up
			var erase func(n *Node) *Node
			erase = func(n *Node) *Node {
				for _, c := range append([]*Node(nil), n.children...) {
					erase(c)
				}
				return EraseBraces(n)
			}
			checkTree(t, erase(root), tc.out())
		})
	}
}

func TestEraseBracesIgnoresSubqueries(t *testing.T) {
	n := in("a", false)
	value := n.Child(1).Child(2)
	if EraseBraces(value) != value {
		t.Fatal("IN value list should not be treated as a group")
	}
	sub := quantified("a", EqualKind, TokenAny).Child(1).Child(2)
	if EraseBraces(sub) != sub {
		t.Fatal("subquery should not be treated as a group")
	}
}

// hasOrUnderAnd returns whether some AND in the
// tree has an OR (possibly parenthesized) operand
func hasOrUnderAnd(n *Node) bool {
	if isAnd(n) && (isOr(ungroup(n.children[0])) || isOr(ungroup(n.children[2]))) {
		return true
	}
	for _, c := range n.children {
		if hasOrUnderAnd(c) {
			return true
		}
	}
	return false
}

func TestDisjunctiveNormalForm(t *testing.T) {
	testcases := []struct {
		name        string
		before, out func() *Node
	}{
		{
			name:   "A AND (B OR C)",
			before: func() *Node { return and(atom("a"), grp(or(atom("b"), atom("c")))) },
			out: func() *Node {
				return or(and(atom("a"), atom("b")), and(atom("a"), atom("c")))
			},
		},
		{
			name: "(A OR B) AND (C OR D)",
			before: func() *Node {
				return and(grp(or(atom("a"), atom("b"))), grp(or(atom("c"), atom("d"))))
			},
			out: func() *Node {
				return or(
					or(and(atom("a"), atom("c")), and(atom("a"), atom("d"))),
					or(and(atom("b"), atom("c")), and(atom("b"), atom("d"))))
			},
		},
		{
			name:   "already normal",
			before: func() *Node { return or(and(atom("a"), atom("b")), atom("c")) },
			out:    func() *Node { return or(and(atom("a"), atom("b")), atom("c")) },
		},
		{
			name:   "absorbed first",
			before: func() *Node { return and(atom("a"), grp(or(atom("a"), atom("b")))) },
			out:    func() *Node { return atom("a") },
		},
	}
	for i := range testcases {
		tc := testcases[i]
		t.Run(tc.name, func(t *testing.T) {
			got := DisjunctiveNormalForm(tc.before())
			checkTree(t, got, tc.out())
			if hasOrUnderAnd(got) {
				t.Errorf("OR operand left under AND in %s", got)
			}
			again := DisjunctiveNormalForm(got.Clone())
			if !again.Equals(got) {
				t.Errorf("not idempotent: %s -> %s", got, again)
			}
			if abs := Absorptions(got.Clone()); !abs.Equals(got) {
				t.Errorf("absorptions changed normal form %s -> %s", got, abs)
			}
		})
	}
}

func TestDisjunctiveNormalFormDeep(t *testing.T) {
	// a AND (b OR (c AND (d OR e)))
	in := and(atom("a"), grp(or(atom("b"), grp(and(atom("c"), grp(or(atom("d"), atom("e"))))))))
	got := DisjunctiveNormalForm(in)
	if hasOrUnderAnd(got) {
		t.Fatalf("OR operand left under AND in %s", got)
	}
	if !parentsOK(got) || got.Parent() != nil {
		t.Fatalf("bad parent pointers in %s", got)
	}
	// count the conjunctions at the top level
	var leaves []*Node
	var collect func(n *Node)
	collect = func(n *Node) {
		n = ungroup(n)
		if isOr(n) {
			collect(n.children[0])
			collect(n.children[2])
			return
		}
		leaves = append(leaves, n)
	}
	collect(got)
	if len(leaves) != 3 {
		t.Fatalf("got %d disjuncts in %s, want 3", len(leaves), got)
	}
}

func TestCompress(t *testing.T) {
	want := func() *Node {
		return and(atom("x"), grp(or(atom("a"), atom("b"))))
	}
	testcases := []struct {
		name   string
		before func() *Node
	}{
		{"(A AND X) OR (B AND X)", func() *Node {
			return or(grp(and(atom("a"), atom("x"))), grp(and(atom("b"), atom("x"))))
		}},
		{"(X AND A) OR (B AND X)", func() *Node {
			return or(grp(and(atom("x"), atom("a"))), grp(and(atom("b"), atom("x"))))
		}},
		{"(A AND X) OR (X AND B)", func() *Node {
			return or(grp(and(atom("a"), atom("x"))), grp(and(atom("x"), atom("b"))))
		}},
		{"(X AND A) OR (X AND B)", func() *Node {
			return or(and(atom("x"), atom("a")), and(atom("x"), atom("b")))
		}},
	}
	for i := range testcases {
		tc := testcases[i]
		t.Run(tc.name, func(t *testing.T) {
			got := Compress(tc.before())
			checkTree(t, got, want())
			again := Compress(got.Clone())
			if !again.Equals(got) {
				t.Errorf("not idempotent: %s -> %s", got, again)
			}
		})
	}
}

func TestCompressNoCommonOperand(t *testing.T) {
	in := or(and(atom("a"), atom("b")), and(atom("c"), atom("d")))
	got := Compress(in.Clone())
	checkTree(t, got, in)
}

func TestCompressUndoesDistribution(t *testing.T) {
	got := Compress(DisjunctiveNormalForm(and(atom("a"), grp(or(atom("b"), atom("c"))))))
	checkTree(t, got, and(atom("a"), grp(or(atom("b"), atom("c")))))
}

func TestAbsorptionsAfterOtherPasses(t *testing.T) {
	inputs := []func() *Node{
		func() *Node { return and(atom("a"), grp(or(atom("b"), atom("c")))) },
		func() *Node {
			return or(and(atom("x"), atom("a")), and(atom("x"), atom("b")))
		},
		func() *Node {
			return and(grp(or(atom("a"), atom("b"))), grp(or(atom("c"), isNull("d", true))))
		},
		func() *Node {
			return or(grp(and(atom("a"), atom("x"))), grp(and(cmp("b", LessKind), atom("x"))))
		},
	}
	passes := []struct {
		name string
		fn   func(*Node) *Node
	}{
		{"dnf", DisjunctiveNormalForm},
		{"compress", Compress},
	}
	for _, p := range passes {
		for i, mk := range inputs {
			before := p.fn(mk())
			after := Absorptions(before.Clone())
			if !after.Equals(before) {
				t.Errorf("%s case %d: absorptions changed %s into %s", p.name, i, before, after)
			}
		}
	}
}
