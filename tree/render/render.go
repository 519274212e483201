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

// Package render turns parse trees back into SQL text.
//
// Rendering follows the spacing rules of the parser's
// dialect, so that the text of a rendered tree parses
// back into an equal tree.
package render

import (
	"fmt"
	"strings"

	"github.com/SnellerInc/predicate/date"
	"github.com/SnellerInc/predicate/tree"
	"github.com/SnellerInc/predicate/tree/sqlparse"

	"go.uber.org/zap"
)

// String returns the text of n.
func String(n *tree.Node, o *Options) (string, error) {
	var dst strings.Builder
	if err := Append(&dst, n, o); err != nil {
		return "", err
	}
	return dst.String(), nil
}

// Append appends the text of n to dst.
// A nil o uses the zero Options.
func Append(dst *strings.Builder, n *tree.Node, o *Options) error {
	if n == nil {
		return fmt.Errorf("render.Append: nil node")
	}
	if o == nil {
		o = &Options{}
	}
	r := &renderer{
		opts:  o,
		ctx:   o.Context,
		quote: o.IdentifierQuote,
		log:   o.Logger,
	}
	if r.ctx == nil {
		r.ctx = tree.DefaultContext
	}
	if r.quote == "" {
		r.quote = `"`
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r.node(dst, n, state{field: o.Field, simple: true, quote: o.Quote})
}

type renderer struct {
	opts  *Options
	ctx   tree.Context
	quote string
	log   *zap.Logger
	// stored queries being substituted
	history map[string]struct{}
}

// state is the part of the rendering
// parameters that changes with depth
type state struct {
	field  *tree.Field
	simple bool
	quote  bool
}

// simpleRule returns whether references to the
// predicate field are omitted below r; this is the
// case in boolean structure and comparisons, but
// not in function arguments or value expressions
func simpleRule(r tree.RuleID) bool {
	switch r {
	case tree.SearchCondition, tree.BooleanTerm, tree.BooleanFactor,
		tree.BooleanTest, tree.BooleanPrimary, tree.ComparisonPredicate,
		tree.BetweenPredicate, tree.InPredicate, tree.TestForNull,
		tree.AllOrAnyPredicate:
		return true
	}
	return false
}

func (r *renderer) node(dst *strings.Builder, n *tree.Node, st state) error {
	if n.IsToken() {
		r.leaf(dst, n, st)
		return nil
	}
	switch n.Rule() {
	case tree.Subquery:
		st.field = nil
	case tree.Parameter:
		return r.parameter(dst, n, st)
	case tree.TableName:
		done, err := r.substitute(dst, n, st)
		if done || err != nil {
			return err
		}
	case tree.LikePredicate:
		return r.like(dst, n, st)
	case tree.SetFctSpec:
		if r.dateValue(dst, n) {
			return nil
		}
		return r.function(dst, n, st)
	case tree.FctSpec, tree.GeneralSetFct, tree.PositionExp,
		tree.ExtractExp, tree.LengthExp, tree.CharValueFct:
		return r.function(dst, n, st)
	}
	if !simpleRule(n.Rule()) {
		st.simple = false
	}
	return r.children(dst, n, st)
}

func (r *renderer) children(dst *strings.Builder, n *tree.Node, st state) error {
	kids := n.Children()
	for i := 0; i < len(kids); i++ {
		c := kids[i]
		if i == 0 && st.simple && r.opts.Predicate && st.field.MatchesColumn(c) {
			// "field =" is implied by the predicate
			if n.Is(tree.ComparisonPredicate) && len(kids) > 1 && kids[1].Kind() == tree.EqualKind {
				i++
			}
			continue
		}
		if err := r.node(dst, c, st); err != nil {
			return err
		}
		if i == len(kids)-1 {
			break
		}
		switch n.Kind() {
		case tree.CommaListKind:
			if r.opts.Predicate && n.Is(tree.ValueExpCommalist) {
				dst.WriteByte(';')
			} else {
				dst.WriteByte(',')
			}
		case tree.DotListKind:
			dst.WriteByte('.')
		}
	}
	return nil
}

// space writes a separating space unless dst is
// empty or ends with a space, a '.' or the catalog
// separator
func (r *renderer) space(dst *strings.Builder) {
	if dst.Len() == 0 {
		return
	}
	s := dst.String()
	switch last := s[len(s)-1]; {
	case last == ' ', last == '.':
	case r.opts.CatalogSep != 0 && last == r.opts.CatalogSep:
	default:
		dst.WriteByte(' ')
	}
}

// lead writes a space unless dst is empty
func lead(dst *strings.Builder) {
	if dst.Len() > 0 {
		dst.WriteByte(' ')
	}
}

// quoteWith writes s between q,
// doubling every q inside s
func quoteWith(dst *strings.Builder, s, q string) {
	dst.WriteString(q)
	dst.WriteString(strings.ReplaceAll(s, q, q+q))
	dst.WriteString(q)
}

func (r *renderer) leaf(dst *strings.Builder, n *tree.Node, st state) {
	text := n.Text()
	switch n.Kind() {
	case tree.KeywordKind:
		lead(dst)
		if r.opts.International {
			text = r.ctx.Keyword(n.Token())
		}
		dst.WriteString(text)
	case tree.StringKind:
		lead(dst)
		quoteWith(dst, text, "'")
	case tree.NameKind:
		r.space(dst)
		p := n.Parent()
		r.name(dst, text, st.quote && !p.Is(tree.ExtractExp) && !p.Is(tree.DataTypeRule))
	case tree.IntNumKind, tree.ApproxNumKind:
		if r.opts.International && r.opts.Predicate &&
			r.opts.DecimalSep != 0 && r.opts.DecimalSep != '.' {
			text = strings.ReplaceAll(text, ".", string(r.opts.DecimalSep))
		}
		lead(dst)
		dst.WriteString(text)
	case tree.AccessDateKind:
		lead(dst)
		dst.WriteByte('#')
		dst.WriteString(text)
		dst.WriteByte('#')
	case tree.PunctuationKind:
		if text == "(" && n.Parent().Is(tree.CastSpec) {
			dst.WriteString(text)
			return
		}
		fallthrough
	default:
		if text == "" || (text[0] != '.' && text[0] != ':') {
			r.space(dst)
		}
		dst.WriteString(text)
	}
}

func (r *renderer) name(dst *strings.Builder, s string, quote bool) {
	switch {
	case !quote:
		dst.WriteString(s)
	case r.opts.Predicate:
		dst.WriteByte('[')
		dst.WriteString(s)
		dst.WriteByte(']')
	default:
		quoteWith(dst, s, r.quote)
	}
}

// parameter renders ?, :name and [name]
func (r *renderer) parameter(dst *strings.Builder, n *tree.Node, st state) error {
	kids := n.Children()
	if len(kids) == 0 {
		return &tree.ShapeError{Node: n, Reason: "empty parameter"}
	}
	lead(dst)
	switch {
	case len(kids) == 1:
		r.leaf(dst, kids[0], st)
	case r.opts.Substitute && r.opts.SubstituteParameterNames:
		dst.WriteByte('?')
	default:
		r.leaf(dst, kids[0], st)
		for _, c := range kids[1:] {
			dst.WriteString(c.Text())
		}
	}
	return nil
}

// function renders the rules written as a name
// followed by parenthesized arguments. The name is
// only quoted for the length and case functions.
func (r *renderer) function(dst *strings.Builder, n *tree.Node, st state) error {
	kids := n.Children()
	if len(kids) == 0 {
		return &tree.ShapeError{Node: n, Reason: "missing function name"}
	}
	head := st
	head.simple = false
	head.quote = n.Is(tree.LengthExp) || n.Is(tree.CharValueFct)
	if err := r.node(dst, kids[0], head); err != nil {
		return err
	}
	var args strings.Builder
	inner := st
	inner.simple = false
	for _, c := range kids[1:] {
		if err := r.node(&args, c, inner); err != nil {
			return err
		}
	}
	dst.WriteString(args.String())
	return nil
}

func (r *renderer) like(dst *strings.Builder, n *tree.Node, st state) error {
	if n.Len() != 2 || n.Child(1).Len() != 4 {
		return &tree.ShapeError{Node: n, Reason: "want operand and a four-part LIKE clause"}
	}
	x, part2 := n.Child(0), n.Child(1)
	inner := st
	inner.simple = false
	if !(st.simple && r.opts.Predicate && st.field.MatchesColumn(x)) {
		if err := r.node(dst, x, inner); err != nil {
			return err
		}
	}
	// [NOT] LIKE
	for _, c := range part2.Children()[:2] {
		if err := r.node(dst, c, inner); err != nil {
			return err
		}
	}
	pattern, escape := part2.Child(2), part2.Child(3)
	if pattern.IsToken() {
		text := pattern.Text()
		if r.opts.International {
			text = sqlparse.ConvertLike(text, sqlparse.EscapeChar(escape), true)
		}
		dst.WriteByte(' ')
		quoteWith(dst, text, "'")
	} else if err := r.node(dst, pattern, inner); err != nil {
		return err
	}
	return r.node(dst, escape, inner)
}

// dateValue renders {d '...'}, {t '...'} and {ts '...'}
// as quoted dates, formatted for display in predicate
// mode. Outside predicate mode the escapes are kept
// only when EscapeDateTime is set.
func (r *renderer) dateValue(dst *strings.Builder, n *tree.Node) bool {
	if n.Len() != 3 || !n.Child(0).IsPunct("{") {
		return false
	}
	odbc := n.Child(1)
	if !odbc.Is(tree.ODBCFctSpec) || odbc.Len() != 2 {
		return false
	}
	var fields date.Fields
	switch odbc.Child(0).Token() {
	case tree.TokenD:
		fields = date.DateField
	case tree.TokenT:
		fields = date.ClockField
	case tree.TokenTS:
		fields = date.DateField | date.ClockField
	default:
		return false
	}
	quote := "'"
	if r.opts.EscapeDateTime {
		if !r.opts.Predicate {
			return false
		}
		quote = "#"
	}
	text := odbc.Child(1).Text()
	if r.opts.Predicate {
		text = r.displayDate(text, fields)
	}
	lead(dst)
	dst.WriteString(quote)
	dst.WriteString(text)
	dst.WriteString(quote)
	return true
}

func (r *renderer) displayDate(s string, fields date.Fields) string {
	if r.opts.Formatter == nil {
		return s
	}
	t, got, ok := date.Parse(s)
	if !ok {
		return s
	}
	// a timestamp at midnight may have been
	// written without its clock
	if fields &= got; fields == 0 {
		return s
	}
	return r.opts.Formatter.FormatDate(t, fields)
}
