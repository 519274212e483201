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

import "fmt"

// arity is the number of children of the
// productions whose shape is fixed
var arity = map[RuleID]int{
	SearchCondition:          3,
	BooleanTerm:              3,
	BooleanFactor:            2,
	BooleanTest:              4,
	BooleanPrimary:           3,
	ComparisonPredicate:      3,
	BetweenPredicate:         2,
	BetweenPredicatePart2:    5,
	LikePredicate:            2,
	TestForNull:              2,
	NullPredicatePart2:       3,
	InPredicate:              2,
	InPredicatePart2:         3,
	AllOrAnyPredicate:        2,
	ExistenceTest:            2,
	UniqueTest:               2,
	SQLNot:                   0,
	ComparisonPredicatePart2: 2,

	QuantifiedComparisonPredicatePart2: 3,
	CharacterLikePredicatePart2:        4,
	OtherLikePredicatePart2:            4,
}

// CheckShape verifies that every rule node in the tree
// rooted at n has the arity of its production and that
// the connective and NOT positions hold the expected
// tokens. The first violation is returned as a *ShapeError.
func CheckShape(n *Node) error {
	var err error
	Walk(shapeVisitor(func(n *Node) bool {
		if err == nil {
			err = checkNode(n)
		}
		return err == nil
	}), n)
	return err
}

type shapeVisitor func(n *Node) bool

func (s shapeVisitor) Visit(n *Node) Visitor {
	if n == nil || !s(n) {
		return nil
	}
	return s
}

func isNotSlot(n *Node) bool {
	return n.IsKeyword(TokenNot) || (n.Is(SQLNot) && n.Len() == 0)
}

func checkNode(n *Node) error {
	if !n.IsRule() {
		if n.Len() != 0 {
			return &ShapeError{Node: n, Reason: "token with children"}
		}
		return nil
	}
	for _, c := range n.children {
		if c.parent != n {
			return &ShapeError{Node: n, Reason: "inconsistent parent of " + c.String()}
		}
	}
	want, ok := arity[n.Rule()]
	if !ok {
		return nil
	}
	if n.Len() != want {
		return &ShapeError{Node: n, Reason: fmt.Sprintf("%d children, want %d", n.Len(), want)}
	}
	bad := func(what string) error {
		return &ShapeError{Node: n, Reason: what}
	}
	switch n.Rule() {
	case SearchCondition:
		if !n.children[1].IsKeyword(TokenOr) {
			return bad("missing OR")
		}
	case BooleanTerm:
		if !n.children[1].IsKeyword(TokenAnd) {
			return bad("missing AND")
		}
	case BooleanFactor:
		if !n.children[0].IsKeyword(TokenNot) {
			return bad("missing NOT")
		}
	case BooleanTest:
		if !isNotSlot(n.children[2]) {
			return bad("no NOT position")
		}
	case BooleanPrimary:
		if !n.children[0].IsPunct("(") || !n.children[2].IsPunct(")") {
			return bad("missing parentheses")
		}
	case BetweenPredicatePart2, InPredicatePart2, CharacterLikePredicatePart2, OtherLikePredicatePart2:
		if !isNotSlot(n.children[0]) {
			return bad("no NOT position")
		}
	case NullPredicatePart2:
		if !isNotSlot(n.children[1]) {
			return bad("no NOT position")
		}
	}
	return nil
}
