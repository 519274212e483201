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

package sqlparse

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/SnellerInc/predicate/date"
	"github.com/SnellerInc/predicate/tree"
)

// matchesField returns whether x is a column
// reference to the field of a predicate
func (p *Parser) matchesField(x *tree.Node) bool {
	return p.field.MatchesColumn(x)
}

// coerce converts v, compared with left, to the type
// of the predicate field. A nil left stands for the
// field itself. Values compared with anything else
// are returned unchanged.
func (p *Parser) coerce(left, v *tree.Node) *tree.Node {
	if p.field == nil || (left != nil && !p.matchesField(left)) {
		return v
	}
	typ := p.field.Type
	switch v.Kind() {
	case tree.IntNumKind, tree.ApproxNumKind:
		approx := v.Kind() == tree.ApproxNumKind
		switch {
		case typ.IsCharacter():
			return p.arena.Leaf(tree.StringKind, p.numberString(v.Text()))
		case typ.IsNumeric():
			if approx && !typ.IsApprox() {
				p.fail(tree.CodeInvalidRealCompare, "")
			}
			return p.arena.Leaf(v.Kind(), p.normalizeNumber(v.Text()))
		case approx:
			p.fail(tree.CodeInvalidRealCompare, "")
		default:
			p.fail(tree.CodeInvalidIntCompare, "")
		}
	case tree.StringKind:
		switch {
		case typ.IsCharacter():
			return v
		case typ.IsTemporal():
			return p.buildDate(v)
		case typ.IsNumeric():
			return p.stringNumber(v.Text())
		default:
			p.fail(tree.CodeInvalidCompare, "")
		}
	case tree.AccessDateKind:
		if typ.IsTemporal() {
			return p.buildDate(v)
		}
		p.fail(tree.CodeInvalidCompare, "")
	default:
		if v.IsRule() && typ.IsCharacter() {
			return p.buildStringNodes(v)
		}
	}
	return v
}

// normalizeNumber strips the group separators the
// scanner accepted from a number and uses '.' as
// the decimal separator
func (p *Parser) normalizeNumber(s string) string {
	dec, group := rune(p.dec), rune(p.group)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == group && group != 0:
		case r == dec:
			b.WriteByte('.')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// numberString returns the text of a number compared
// with a character field, using the decimal separator
// of the formatter
func (p *Parser) numberString(s string) string {
	norm := p.normalizeNumber(s)
	if p.fmtr != nil && p.field.FormatKey != 0 {
		if v, err := strconv.ParseFloat(norm, 64); err == nil {
			return p.fmtr.FormatNumber(v, p.fmtr.Decimals(p.field.FormatKey))
		}
	}
	dec := rune(p.dec)
	if p.fmtr != nil {
		dec = p.fmtr.DecimalSeparator()
	}
	if dec == '.' {
		return norm
	}
	return strings.Replace(norm, ".", string(dec), 1)
}

// stringNumber converts a string compared
// with a numeric field into a number
func (p *Parser) stringNumber(s string) *tree.Node {
	if p.fmtr == nil {
		p.fail(tree.CodeInvalidCompare, "")
	}
	v, err := p.fmtr.ParseNumber(s)
	if err != nil {
		p.fail(tree.CodeInvalidCompare, "")
	}
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return p.arena.Leaf(tree.IntNumKind, strconv.FormatInt(int64(v), 10))
	}
	if !p.field.Type.IsApprox() {
		p.fail(tree.CodeInvalidRealCompare, "")
	}
	return p.arena.Leaf(tree.ApproxNumKind, strconv.FormatFloat(v, 'f', -1, 64))
}

// buildDate converts a string or access date compared
// with a temporal field into an ODBC date escape
func (p *Parser) buildDate(v *tree.Node) *tree.Node {
	var (
		t      date.Time
		fields date.Fields
	)
	switch {
	case p.fmtr != nil:
		var err error
		t, fields, err = p.fmtr.ParseDate(v.Text())
		if err != nil {
			p.fail(tree.CodeInvalidDateCompare, "")
		}
	case v.Kind() == tree.AccessDateKind:
		p.fail(tree.CodeInvalidDateCompare, "")
	default:
		var ok bool
		t, fields, ok = date.Parse(v.Text())
		if !ok {
			p.fail(tree.CodeInvalidDateCompare, "")
		}
	}
	var (
		kw  tree.TokenID
		buf []byte
	)
	switch p.field.Type {
	case tree.TypeDate:
		if !fields.Has(date.DateField) {
			p.fail(tree.CodeInvalidDateCompare, "")
		}
		kw, buf = tree.TokenD, t.AppendDate(nil)
	case tree.TypeTime:
		if !fields.Has(date.ClockField) {
			p.fail(tree.CodeInvalidDateCompare, "")
		}
		kw, buf = tree.TokenT, t.AppendClock(nil)
	default:
		if !fields.Has(date.DateField) {
			p.fail(tree.CodeInvalidDateCompare, "")
		}
		if t.HasClock() {
			kw, buf = tree.TokenTS, t.AppendTimestamp(nil)
		} else {
			kw, buf = tree.TokenD, t.AppendDate(nil)
		}
	}
	odbc := p.rule(tree.ODBCFctSpec, p.arena.Keyword(kw), p.arena.Leaf(tree.StringKind, string(buf)))
	return p.rule(tree.SetFctSpec, p.punct("{"), odbc, p.punct("}"))
}

// buildStringNodes converts the literals of a value
// expression compared with a character field into
// strings. Functions, aggregates, column references
// and subqueries are left alone; arithmetic is an error.
func (p *Parser) buildStringNodes(v *tree.Node) *tree.Node {
	if v.IsToken() {
		switch v.Kind() {
		case tree.IntNumKind, tree.ApproxNumKind:
			return p.arena.Leaf(tree.StringKind, p.numberString(v.Text()))
		case tree.AccessDateKind:
			return p.arena.Leaf(tree.StringKind, v.Text())
		}
		return v
	}
	switch v.Rule() {
	case tree.SetFctSpec, tree.GeneralSetFct, tree.ColumnRef, tree.Subquery:
		return v
	case tree.Term, tree.ValueExpPrimary:
		p.fail(tree.CodeInvalidCompare, "")
	}
	for i := 0; i < v.Len(); i++ {
		c := v.Child(i)
		if repl := p.buildStringNodes(c); repl != c {
			v.Replace(c, repl)
		}
	}
	return v
}

// buildLike converts the pattern of a LIKE
// predicate on the field: '*' and '?' wildcards
// become '%' and '_'
func (p *Parser) buildLike(pattern, escape *tree.Node) *tree.Node {
	if !p.field.Type.IsCharacter() {
		p.fail(tree.CodeFieldNoLike, "")
	}
	if pattern.IsRule() {
		return pattern
	}
	switch pattern.Kind() {
	case tree.StringKind:
		return p.arena.Leaf(tree.StringKind, ConvertLike(pattern.Text(), EscapeChar(escape), false))
	case tree.ApproxNumKind:
		return p.arena.Leaf(tree.StringKind, pattern.Text())
	}
	p.fail(tree.CodeValueNoLike, pattern.Text())
	return nil
}

// EscapeChar returns the character of an opt_escape
// node, or 0 if the node holds no ESCAPE clause.
func EscapeChar(escape *tree.Node) rune {
	if escape.Len() != 2 || escape.Child(1).Kind() != tree.StringKind {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(escape.Child(1).Text())
	if r == utf8.RuneError {
		return 0
	}
	return r
}
