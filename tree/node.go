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

// Package tree implements the parse tree of SQL
// statements and predicates, along with the
// boolean normalization passes that operate on it.
package tree

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Kind is the kind of a Node.
type Kind uint8

const (
	RuleKind Kind = iota
	ListKind
	CommaListKind
	DotListKind
	KeywordKind
	NameKind
	StringKind
	IntNumKind
	ApproxNumKind
	EqualKind
	NotEqualKind
	LessKind
	GreatKind
	LessEqKind
	GreatEqKind
	PunctuationKind
	AccessDateKind
	ConcatKind
)

var kindnames = [...]string{
	RuleKind:        "rule",
	ListKind:        "list",
	CommaListKind:   "commalist",
	DotListKind:     "dotlist",
	KeywordKind:     "keyword",
	NameKind:        "name",
	StringKind:      "string",
	IntNumKind:      "intnum",
	ApproxNumKind:   "approxnum",
	EqualKind:       "=",
	NotEqualKind:    "<>",
	LessKind:        "<",
	GreatKind:       ">",
	LessEqKind:      "<=",
	GreatEqKind:     ">=",
	PunctuationKind: "punctuation",
	AccessDateKind:  "accessdate",
	ConcatKind:      "||",
}

func (k Kind) String() string {
	if int(k) < len(kindnames) {
		return kindnames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsRule returns whether k is one of the
// kinds of interior (rule) nodes.
func (k Kind) IsRule() bool { return k <= DotListKind }

// IsComparison returns whether k is one of
// the six comparison operator kinds.
func (k Kind) IsComparison() bool { return k >= EqualKind && k <= GreatEqKind }

// Invert returns the comparison that is true
// exactly when k is false. Non-comparison
// kinds are returned unchanged.
func (k Kind) Invert() Kind {
	switch k {
	case EqualKind:
		return NotEqualKind
	case NotEqualKind:
		return EqualKind
	case LessKind:
		return GreatEqKind
	case GreatEqKind:
		return LessKind
	case GreatKind:
		return LessEqKind
	case LessEqKind:
		return GreatKind
	default:
		return k
	}
}

// Node is a node in a parse tree. A node is
// either a leaf token or a rule node with an
// ordered list of children. Every node is owned
// by at most one parent.
type Node struct {
	kind     Kind
	id       uint16 // RuleID for rule kinds, TokenID for keywords
	text     string
	children []*Node
	parent   *Node
}

// NewRule returns an empty rule node of kind RuleKind.
func NewRule(r RuleID) *Node { return (*Arena)(nil).Rule(r) }

// NewList returns an empty rule node of the
// given list kind (ListKind, CommaListKind or DotListKind).
func NewList(k Kind, r RuleID) *Node { return (*Arena)(nil).List(k, r) }

// NewKeyword returns a keyword leaf carrying
// the canonical text of t.
func NewKeyword(t TokenID) *Node { return (*Arena)(nil).Keyword(t) }

// NewLeaf returns a leaf of kind k with text s.
func NewLeaf(k Kind, s string) *Node { return (*Arena)(nil).Leaf(k, s) }

// NewPunct returns a punctuation leaf.
func NewPunct(s string) *Node { return NewLeaf(PunctuationKind, s) }

// NewComparison returns a comparison operator leaf.
func NewComparison(k Kind) *Node { return NewLeaf(k, k.String()) }

// Kind returns the kind of n.
func (n *Node) Kind() Kind { return n.kind }

// Rule returns the rule id of n, or UnknownRule
// if n is not a rule node.
func (n *Node) Rule() RuleID {
	if !n.kind.IsRule() {
		return UnknownRule
	}
	return RuleID(n.id)
}

// Token returns the keyword token of n, or
// TokenNone if n is not a keyword.
func (n *Node) Token() TokenID {
	if n.kind != KeywordKind {
		return TokenNone
	}
	return TokenID(n.id)
}

// Text returns the token text of n.
func (n *Node) Text() string { return n.text }

// SetText replaces the token text of n.
func (n *Node) SetText(s string) { n.text = s }

// Parent returns the node that owns n.
func (n *Node) Parent() *Node { return n.parent }

// Len returns the number of children of n.
func (n *Node) Len() int { return len(n.children) }

// Child returns the i'th child of n,
// or nil if i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns the children of n.
// The returned slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// IsRule returns whether n is an interior node.
func (n *Node) IsRule() bool { return n.kind.IsRule() }

// IsToken returns whether n is a leaf token.
func (n *Node) IsToken() bool { return !n.kind.IsRule() }

// Is returns whether n is a rule node for r.
func (n *Node) Is(r RuleID) bool {
	return n != nil && n.kind.IsRule() && RuleID(n.id) == r
}

// IsKeyword returns whether n is the keyword t.
func (n *Node) IsKeyword(t TokenID) bool {
	return n != nil && n.kind == KeywordKind && TokenID(n.id) == t
}

// IsPunct returns whether n is the punctuation s.
func (n *Node) IsPunct(s string) bool {
	return n != nil && n.kind == PunctuationKind && n.text == s
}

// IsParenthesized returns whether n has the shape
// "( inner )", either as a boolean_primary or as
// any other rule with literal parentheses.
func (n *Node) IsParenthesized() bool {
	if n.Is(BooleanPrimary) && len(n.children) == 3 {
		return true
	}
	return n.IsRule() && len(n.children) == 3 &&
		n.children[0].IsPunct("(") && n.children[2].IsPunct(")")
}

func (n *Node) adopt(c *Node) {
	if c.parent != nil {
		panic("tree: node " + c.String() + " already has a parent")
	}
	c.parent = n
}

// Append adds c as the last child of n.
// Append panics if c already has a parent.
func (n *Node) Append(c *Node) {
	n.adopt(c)
	n.children = append(n.children, c)
}

// Insert inserts c as the i'th child of n.
// Insert panics if c already has a parent.
func (n *Node) Insert(i int, c *Node) {
	n.adopt(c)
	n.children = slices.Insert(n.children, i, c)
}

// RemoveAt detaches and returns the i'th child of n.
// The caller owns the returned node.
func (n *Node) RemoveAt(i int) *Node {
	c := n.children[i]
	n.children = slices.Delete(n.children, i, i+1)
	c.parent = nil
	return c
}

// Remove detaches c from n and returns it,
// or returns nil if c is not a child of n.
func (n *Node) Remove(c *Node) *Node {
	i := n.Index(c)
	if i < 0 {
		return nil
	}
	return n.RemoveAt(i)
}

// Index returns the position of c among the
// children of n, or -1.
func (n *Node) Index(c *Node) int {
	return slices.Index(n.children, c)
}

// Replace puts repl in the position occupied by old
// and returns old, now detached. Replace returns nil
// and leaves n untouched if old is not a child of n.
func (n *Node) Replace(old, repl *Node) *Node {
	i := n.Index(old)
	if i < 0 {
		return nil
	}
	n.adopt(repl)
	n.children[i] = repl
	old.parent = nil
	return old
}

// ReplaceWith substitutes repl for n in the parent
// of n (if n has one) and returns repl. The
// detached n is discarded.
func ReplaceWith(n, repl *Node) *Node {
	if n == repl {
		return n
	}
	if repl.parent != nil {
		repl.parent.Remove(repl)
	}
	if p := n.parent; p != nil {
		p.Replace(n, repl)
	}
	return repl
}

// Clone returns a deep copy of n without a parent.
func (n *Node) Clone() *Node {
	c := &Node{kind: n.kind, id: n.id, text: n.text}
	if len(n.children) > 0 {
		c.children = make([]*Node, len(n.children))
		for i := range n.children {
			cc := n.children[i].Clone()
			cc.parent = c
			c.children[i] = cc
		}
	}
	return c
}

// ChildByRule returns the first node in the subtree
// rooted at n (including n) that is a rule node for r.
func (n *Node) ChildByRule(r RuleID) *Node {
	if n.Is(r) {
		return n
	}
	for _, c := range n.children {
		if x := c.ChildByRule(r); x != nil {
			return x
		}
	}
	return nil
}

// Equals returns whether n and o are structurally
// equal: same kind, id, text and equal children.
// Parameter nodes are never equal to anything.
func (n *Node) Equals(o *Node) bool {
	if n.kind != o.kind || n.id != o.id || n.text != o.text ||
		len(n.children) != len(o.children) {
		return false
	}
	if n.Is(Parameter) {
		return false
	}
	for i := range n.children {
		if !n.children[i].Equals(o.children[i]) {
			return false
		}
	}
	return true
}

// Equal returns whether a and b are equivalent.
// a or b may be nil.
func Equal(a, b *Node) bool {
	if a == nil {
		return b == nil
	}
	return b != nil && a.Equals(b)
}

// Visitor is an interface that must
// be satisfied by the argument to Walk.
//
// (see also: ast.Visitor)
type Visitor interface {
	Visit(*Node) Visitor
}

// Walk traverses a tree in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w for
// each of the children of node, followed by a call of w.Visit(nil).
func Walk(v Visitor, n *Node) {
	w := v.Visit(n)
	if w != nil {
		for _, c := range n.children {
			Walk(w, c)
		}
		w.Visit(nil)
	}
}

// String returns a parenthesized dump of n
// meant for debugging and test output.
func (n *Node) String() string {
	var dst strings.Builder
	n.dump(&dst, false)
	return dst.String()
}

func (n *Node) dump(dst *strings.Builder, redact bool) {
	switch n.kind {
	case RuleKind, ListKind, CommaListKind, DotListKind:
		dst.WriteByte('(')
		dst.WriteString(RuleID(n.id).String())
		for _, c := range n.children {
			dst.WriteByte(' ')
			c.dump(dst, redact)
		}
		dst.WriteByte(')')
	case StringKind:
		if redact {
			dst.WriteString(strconv.Quote(redactString(n.text)))
			return
		}
		dst.WriteString(strconv.Quote(n.text))
	case IntNumKind, ApproxNumKind, AccessDateKind:
		if redact {
			dst.WriteString(redactString(n.text))
			return
		}
		dst.WriteString(n.text)
	default:
		dst.WriteString(n.text)
	}
}
