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
	"github.com/SnellerInc/predicate/tree"
)

// statement parses a query expression
// or a bare search condition
func (p *Parser) statement() *tree.Node {
	if p.queryAhead() {
		return p.queryExp()
	}
	return p.searchCondition()
}

// predicateStatement parses the condition on the
// bound field; operands the user left out are
// supplied by predicate
func (p *Parser) predicateStatement() *tree.Node {
	return p.searchCondition()
}

// queryAhead returns whether a SELECT, possibly
// behind opening parentheses, comes next
func (p *Parser) queryAhead() bool {
	i := 0
	for p.peekat(i).isPunct("(") {
		i++
	}
	return p.peekat(i).is(tree.TokenSelect)
}

// queryExp parses q [UNION [ALL] q]...
func (p *Parser) queryExp() *tree.Node {
	l := p.queryTerm()
	for p.peek().is(tree.TokenUnion) {
		u := p.rule(tree.UnionStatement, l, p.expect(tree.TokenUnion), p.accept(tree.TokenAll))
		u.Append(p.queryTerm())
		l = u
	}
	return l
}

func (p *Parser) queryTerm() *tree.Node {
	if p.peek().isPunct("(") {
		return p.subquery()
	}
	return p.selectStatement()
}

func (p *Parser) subquery() *tree.Node {
	open := p.expectPunct("(")
	q := p.queryExp()
	return p.rule(tree.Subquery, open, q, p.expectPunct(")"))
}

func (p *Parser) selectStatement() *tree.Node {
	n := p.rule(tree.SelectStatement, p.expect(tree.TokenSelect))
	if kw := p.accept(tree.TokenAll); kw != nil {
		n.Append(kw)
	} else if kw := p.accept(tree.TokenDistinct); kw != nil {
		n.Append(kw)
	}
	n.Append(p.selection())
	n.Append(p.fromClause())
	if kw := p.accept(tree.TokenWhere); kw != nil {
		n.Append(p.rule(tree.WhereClause, kw, p.searchCondition()))
	}
	if kw := p.accept(tree.TokenGroup); kw != nil {
		by := p.expect(tree.TokenBy)
		cols := p.arena.List(tree.CommaListKind, tree.ColumnRefCommalist)
		for {
			cols.Append(p.columnRef())
			if p.acceptPunct(",") == nil {
				break
			}
		}
		n.Append(p.rule(tree.OptGroupByClause, kw, by, cols))
	}
	if kw := p.accept(tree.TokenHaving); kw != nil {
		n.Append(p.rule(tree.HavingClause, kw, p.searchCondition()))
	}
	if kw := p.accept(tree.TokenOrder); kw != nil {
		by := p.expect(tree.TokenBy)
		specs := p.arena.List(tree.CommaListKind, tree.OrderingSpecCommalist)
		for {
			spec := p.rule(tree.OrderingSpec, p.valueExp(nil))
			if dir := p.accept(tree.TokenAsc); dir != nil {
				spec.Append(dir)
			} else if dir := p.accept(tree.TokenDesc); dir != nil {
				spec.Append(dir)
			}
			specs.Append(spec)
			if p.acceptPunct(",") == nil {
				break
			}
		}
		n.Append(p.rule(tree.OptOrderByClause, kw, by, specs))
	}
	return n
}

func (p *Parser) selection() *tree.Node {
	if star := p.acceptPunct("*"); star != nil {
		return p.rule(tree.Selection, star)
	}
	cols := p.arena.List(tree.CommaListKind, tree.ScalarExpCommalist)
	for {
		col := p.rule(tree.DerivedColumn, p.valueExp(nil))
		if as := p.asClause(false); as != nil {
			col.Append(as)
		}
		cols.Append(col)
		if p.acceptPunct(",") == nil {
			return cols
		}
	}
}

// asClause parses [AS] name; with required
// set a missing alias is a syntax error
func (p *Parser) asClause(required bool) *tree.Node {
	as := p.accept(tree.TokenAs)
	if p.peek().Kind != Name {
		if as != nil || required {
			p.syntax(*p.peek())
		}
		return nil
	}
	return p.rule(tree.AsClause, as, p.name())
}

func (p *Parser) name() *tree.Node {
	t := p.next()
	if t.Kind != Name {
		p.pos--
		p.syntax(t)
	}
	return p.arena.Leaf(tree.NameKind, t.Text)
}

func (p *Parser) fromClause() *tree.Node {
	from := p.expect(tree.TokenFrom)
	refs := p.arena.List(tree.CommaListKind, tree.TableRefCommalist)
	for {
		refs.Append(p.tableRef())
		if p.acceptPunct(",") == nil {
			break
		}
	}
	return p.rule(tree.FromClause, from, refs)
}

func (p *Parser) tableRef() *tree.Node {
	if p.peek().isPunct("(") {
		sub := p.subquery()
		return p.rule(tree.TableRef, sub, p.asClause(true))
	}
	name := p.arena.List(tree.DotListKind, tree.TableName)
	name.Append(p.name())
	for p.acceptPunct(".") != nil {
		name.Append(p.name())
	}
	return p.rule(tree.TableRef, name, p.asClause(false))
}

// searchCondition parses a OR b OR ...
func (p *Parser) searchCondition() *tree.Node {
	l := p.booleanTerm()
	for p.peek().is(tree.TokenOr) {
		or := p.expect(tree.TokenOr)
		l = p.rule(tree.SearchCondition, l, or, p.booleanTerm())
	}
	return l
}

// booleanTerm parses a AND b AND ...
func (p *Parser) booleanTerm() *tree.Node {
	l := p.booleanFactor()
	for p.peek().is(tree.TokenAnd) {
		and := p.expect(tree.TokenAnd)
		l = p.rule(tree.BooleanTerm, l, and, p.booleanFactor())
	}
	return l
}

func (p *Parser) booleanFactor() *tree.Node {
	if p.peek().is(tree.TokenNot) && !p.predicateNotAhead() {
		not := p.expect(tree.TokenNot)
		return p.rule(tree.BooleanFactor, not, p.booleanTest())
	}
	return p.booleanTest()
}

// predicateNotAhead returns whether NOT starts
// the tail of a predicate without a left operand,
// as in "NOT LIKE 'a*'"
func (p *Parser) predicateNotAhead() bool {
	if p.field == nil {
		return false
	}
	t := p.peekat(1)
	return t.is(tree.TokenLike) || t.is(tree.TokenBetween) || t.is(tree.TokenIn)
}

func truthValue(t *Token) bool {
	return t.is(tree.TokenTrue) || t.is(tree.TokenFalse) || t.is(tree.TokenUnknown)
}

// booleanTest parses x [IS [NOT] TRUE|FALSE|UNKNOWN]
func (p *Parser) booleanTest() *tree.Node {
	x := p.booleanPrimary()
	if !p.peek().is(tree.TokenIs) {
		return x
	}
	i := 1
	if p.peekat(i).is(tree.TokenNot) {
		i++
	}
	if !truthValue(p.peekat(i)) {
		p.syntax(*p.peekat(i))
	}
	is := p.expect(tree.TokenIs)
	not := p.sqlnot()
	t := p.next()
	return p.rule(tree.BooleanTest, x, is, not, p.arena.Keyword(t.Keyword))
}

func (p *Parser) booleanPrimary() *tree.Node {
	if !p.peek().isPunct("(") || p.queryAhead() {
		return p.predicate()
	}
	open := p.expectPunct("(")
	inner := p.searchCondition()
	closing := p.expectPunct(")")
	if !isValueExp(inner) {
		return p.rule(tree.BooleanPrimary, open, inner, closing)
	}
	// a parenthesized value expression
	// starting a predicate
	v := p.valueExp(p.rule(tree.ValueExpPrimary, open, inner, closing))
	return p.predicateTail(v)
}

// isValueExp returns whether n is a value
// expression rather than a condition
func isValueExp(n *tree.Node) bool {
	if n.IsToken() {
		return true
	}
	switch n.Rule() {
	case tree.SearchCondition, tree.BooleanTerm, tree.BooleanFactor,
		tree.BooleanTest, tree.BooleanPrimary, tree.ComparisonPredicate,
		tree.BetweenPredicate, tree.LikePredicate, tree.TestForNull,
		tree.InPredicate, tree.AllOrAnyPredicate, tree.ExistenceTest,
		tree.UniqueTest:
		return false
	}
	return true
}

// tailAhead returns whether the next
// tokens continue a predicate
func (p *Parser) tailAhead() bool {
	t := p.peek()
	switch t.Kind {
	case Comparison:
		return true
	case Keyword:
		switch t.Keyword {
		case tree.TokenLike, tree.TokenBetween, tree.TokenIn:
			return true
		case tree.TokenNot:
			return p.predicateNotAhead()
		case tree.TokenIs:
			i := 1
			if p.peekat(i).is(tree.TokenNot) {
				i++
			}
			return !truthValue(p.peekat(i))
		}
	}
	return false
}

func (p *Parser) predicate() *tree.Node {
	switch t := p.peek(); {
	case t.is(tree.TokenExists):
		kw := p.expect(tree.TokenExists)
		return p.rule(tree.ExistenceTest, kw, p.subquery())
	case t.is(tree.TokenUnique):
		kw := p.expect(tree.TokenUnique)
		return p.rule(tree.UniqueTest, kw, p.subquery())
	}
	if p.field != nil && p.tailAhead() {
		return p.predicateTail(p.fieldRef())
	}
	x := p.valueExp(nil)
	if p.field != nil && !p.tailAhead() && isLiteral(x) {
		// a lone literal compares for equality
		return p.rule(tree.ComparisonPredicate, p.fieldRef(),
			p.arena.Leaf(tree.EqualKind, tree.EqualKind.String()), p.coerce(nil, x))
	}
	return p.predicateTail(x)
}

func isLiteral(n *tree.Node) bool {
	switch n.Kind() {
	case tree.StringKind, tree.IntNumKind, tree.ApproxNumKind, tree.AccessDateKind:
		return true
	}
	return n.Is(tree.SetFctSpec)
}

// predicateTail parses the rest of a
// predicate whose left operand is x
func (p *Parser) predicateTail(x *tree.Node) *tree.Node {
	t := p.peek()
	switch t.Kind {
	case Comparison:
		p.next()
		op := p.arena.Leaf(t.Op, t.Op.String())
		if q := p.peek(); q.is(tree.TokenAny) || q.is(tree.TokenAll) || q.is(tree.TokenSome) {
			p.next()
			quant := p.rule(tree.AnyAllSome, p.arena.Keyword(q.Keyword))
			part2 := p.rule(tree.QuantifiedComparisonPredicatePart2, op, quant, p.subquery())
			return p.rule(tree.AllOrAnyPredicate, x, part2)
		}
		y := p.coerce(x, p.valueExp(nil))
		return p.rule(tree.ComparisonPredicate, x, op, y)
	case Keyword:
	default:
		return x
	}
	switch t.Keyword {
	case tree.TokenIs:
		return p.isPredicate(x)
	case tree.TokenNot:
		if !p.peekat(1).is(tree.TokenLike) && !p.peekat(1).is(tree.TokenBetween) && !p.peekat(1).is(tree.TokenIn) {
			return x
		}
	case tree.TokenLike, tree.TokenBetween, tree.TokenIn:
	default:
		return x
	}
	not := p.sqlnot()
	switch p.peek().Keyword {
	case tree.TokenBetween:
		kw := p.expect(tree.TokenBetween)
		lo := p.coerce(x, p.valueExp(nil))
		and := p.expect(tree.TokenAnd)
		hi := p.coerce(x, p.valueExp(nil))
		return p.rule(tree.BetweenPredicate, x,
			p.rule(tree.BetweenPredicatePart2, not, kw, lo, and, hi))
	case tree.TokenLike:
		return p.likePredicate(x, not)
	default:
		kw := p.expect(tree.TokenIn)
		return p.rule(tree.InPredicate, x,
			p.rule(tree.InPredicatePart2, not, kw, p.inValue(x)))
	}
}

// isPredicate parses the IS forms that compare values:
// IS [NOT] NULL, IS [NOT] DISTINCT FROM y and IS [NOT] y
func (p *Parser) isPredicate(x *tree.Node) *tree.Node {
	i := 1
	if p.peekat(i).is(tree.TokenNot) {
		i++
	}
	if truthValue(p.peekat(i)) {
		return x
	}
	is := p.expect(tree.TokenIs)
	not := p.sqlnot()
	if null := p.accept(tree.TokenNull); null != nil {
		return p.rule(tree.TestForNull, x, p.rule(tree.NullPredicatePart2, is, not, null))
	}
	op := p.rule(tree.Comparison, is, not)
	if distinct := p.accept(tree.TokenDistinct); distinct != nil {
		op.Append(distinct)
		op.Append(p.expect(tree.TokenFrom))
	}
	y := p.coerce(x, p.valueExp(nil))
	return p.rule(tree.ComparisonPredicate, x, op, y)
}

func (p *Parser) likePredicate(x, not *tree.Node) *tree.Node {
	kw := p.expect(tree.TokenLike)
	pattern := p.valueExp(nil)
	escape := p.arena.Rule(tree.OptEscape)
	if e := p.accept(tree.TokenEscape); e != nil {
		escape.Append(e)
		escape.Append(p.valueExp(nil))
	}
	if p.matchesField(x) {
		pattern = p.buildLike(pattern, escape)
	}
	r := tree.OtherLikePredicatePart2
	if pattern.Kind() == tree.StringKind || pattern.Is(tree.Parameter) {
		r = tree.CharacterLikePredicatePart2
	}
	return p.rule(tree.LikePredicate, x, p.rule(r, not, kw, pattern, escape))
}

// inValue parses the subquery or the
// parenthesized value list of an IN predicate;
// predicates also separate values with ';'
func (p *Parser) inValue(x *tree.Node) *tree.Node {
	if p.queryAhead() {
		return p.subquery()
	}
	open := p.expectPunct("(")
	vals := p.arena.List(tree.CommaListKind, tree.ValueExpCommalist)
	for {
		vals.Append(p.coerce(x, p.valueExp(nil)))
		if p.acceptPunct(",") != nil {
			continue
		}
		if p.field != nil && p.acceptPunct(";") != nil {
			continue
		}
		break
	}
	return p.rule(tree.InPredicateValue, open, vals, p.expectPunct(")"))
}

// fieldRef returns a column reference to
// the field a predicate is bound to
func (p *Parser) fieldRef() *tree.Node {
	name := p.field.ColumnName(p.cfg.UseRealName)
	return p.rule(tree.ColumnRef, p.arena.Leaf(tree.NameKind, name))
}

// valueExp parses a value expression. If first is
// non-nil it is the already parsed leftmost primary.
func (p *Parser) valueExp(first *tree.Node) *tree.Node {
	l := p.numValueExp(first)
	for p.peek().Kind == Concat {
		p.next()
		op := p.arena.Leaf(tree.ConcatKind, "||")
		l = p.rule(tree.Concatenation, l, op, p.numValueExp(nil))
	}
	return l
}

func (p *Parser) numValueExp(first *tree.Node) *tree.Node {
	l := p.term(first)
	for t := p.peek(); t.isPunct("+") || t.isPunct("-"); t = p.peek() {
		p.next()
		l = p.rule(tree.NumValueExp, l, p.punct(t.Text), p.term(nil))
	}
	return l
}

func (p *Parser) term(first *tree.Node) *tree.Node {
	l := p.factor(first)
	for t := p.peek(); t.isPunct("*") || t.isPunct("/"); t = p.peek() {
		p.next()
		l = p.rule(tree.Term, l, p.punct(t.Text), p.factor(nil))
	}
	return l
}

func (p *Parser) factor(first *tree.Node) *tree.Node {
	if first != nil {
		return first
	}
	if t := p.peek(); t.isPunct("+") || t.isPunct("-") {
		p.next()
		return p.rule(tree.Factor, p.punct(t.Text), p.primary())
	}
	return p.primary()
}

func isSetFct(t tree.TokenID) bool {
	switch t {
	case tree.TokenAvg, tree.TokenCount, tree.TokenMax, tree.TokenMin,
		tree.TokenSum, tree.TokenEvery, tree.TokenAny, tree.TokenSome,
		tree.TokenStddevPop, tree.TokenStddevSamp, tree.TokenVarSamp,
		tree.TokenVarPop, tree.TokenCollect, tree.TokenFusion,
		tree.TokenIntersection:
		return true
	}
	return false
}

func (p *Parser) primary() *tree.Node {
	t := p.peek()
	switch t.Kind {
	case String:
		p.next()
		return p.arena.Leaf(tree.StringKind, t.Text)
	case IntNum:
		p.next()
		return p.arena.Leaf(tree.IntNumKind, t.Text)
	case ApproxNum:
		p.next()
		return p.arena.Leaf(tree.ApproxNumKind, t.Text)
	case AccessDate:
		p.next()
		return p.arena.Leaf(tree.AccessDateKind, t.Text)
	case Name:
		if p.peekat(1).isPunct("(") {
			return p.fctSpec()
		}
		return p.columnRef()
	case Punct:
		switch t.Text {
		case "?":
			p.next()
			return p.rule(tree.Parameter, p.punct("?"))
		case ":":
			colon := p.expectPunct(":")
			return p.rule(tree.Parameter, colon, p.name())
		case "{":
			return p.odbcEscape()
		case "(":
			if p.queryAhead() {
				return p.subquery()
			}
			open := p.expectPunct("(")
			inner := p.valueExp(nil)
			return p.rule(tree.ValueExpPrimary, open, inner, p.expectPunct(")"))
		}
	case Keyword:
		switch kw := t.Keyword; {
		case kw == tree.TokenNull || kw == tree.TokenTrue || kw == tree.TokenFalse:
			p.next()
			return p.arena.Keyword(kw)
		case isSetFct(kw) && p.peekat(1).isPunct("("):
			return p.generalSetFct()
		case kw == tree.TokenPosition:
			kw := p.expect(tree.TokenPosition)
			open := p.expectPunct("(")
			a := p.valueExp(nil)
			in := p.expect(tree.TokenIn)
			b := p.valueExp(nil)
			return p.rule(tree.PositionExp, kw, open, a, in, b, p.expectPunct(")"))
		case kw == tree.TokenExtract:
			kw := p.expect(tree.TokenExtract)
			open := p.expectPunct("(")
			field := p.name()
			from := p.expect(tree.TokenFrom)
			v := p.valueExp(nil)
			return p.rule(tree.ExtractExp, kw, open, field, from, v, p.expectPunct(")"))
		case kw == tree.TokenCharLength || kw == tree.TokenCharacterLength || kw == tree.TokenOctetLength:
			return p.unaryFct(tree.LengthExp)
		case kw == tree.TokenUpper || kw == tree.TokenLower:
			return p.unaryFct(tree.CharValueFct)
		case kw == tree.TokenCast:
			return p.castSpec()
		}
	}
	p.syntax(*t)
	return nil
}

func (p *Parser) columnRef() *tree.Node {
	n := p.rule(tree.ColumnRef, p.name())
	for p.peek().isPunct(".") {
		n.Append(p.expectPunct("."))
		n.Append(p.name())
	}
	return n
}

func (p *Parser) fctSpec() *tree.Node {
	name := p.name()
	open := p.expectPunct("(")
	n := p.rule(tree.FctSpec, name, open)
	if !p.peek().isPunct(")") {
		args := p.arena.List(tree.CommaListKind, tree.FctArgCommalist)
		for {
			args.Append(p.valueExp(nil))
			if p.acceptPunct(",") == nil {
				break
			}
		}
		n.Append(args)
	}
	n.Append(p.expectPunct(")"))
	return n
}

func (p *Parser) generalSetFct() *tree.Node {
	t := p.next()
	n := p.rule(tree.GeneralSetFct, p.arena.Keyword(t.Keyword), p.expectPunct("("))
	if star := p.acceptPunct("*"); star != nil {
		if t.Keyword != tree.TokenCount {
			p.syntax(p.toks[p.pos-1])
		}
		n.Append(star)
	} else {
		if q := p.accept(tree.TokenAll); q != nil {
			n.Append(q)
		} else if q := p.accept(tree.TokenDistinct); q != nil {
			n.Append(q)
		}
		n.Append(p.valueExp(nil))
	}
	n.Append(p.expectPunct(")"))
	return n
}

// unaryFct parses kw ( v ) as rule r
func (p *Parser) unaryFct(r tree.RuleID) *tree.Node {
	t := p.next()
	kw := p.arena.Keyword(t.Keyword)
	open := p.expectPunct("(")
	v := p.valueExp(nil)
	return p.rule(r, kw, open, v, p.expectPunct(")"))
}

func (p *Parser) castSpec() *tree.Node {
	kw := p.expect(tree.TokenCast)
	open := p.expectPunct("(")
	v := p.valueExp(nil)
	as := p.expect(tree.TokenAs)
	typ := p.rule(tree.DataTypeRule, p.name())
	if lp := p.acceptPunct("("); lp != nil {
		typ.Append(lp)
		typ.Append(p.intnum())
		if comma := p.acceptPunct(","); comma != nil {
			typ.Append(comma)
			typ.Append(p.intnum())
		}
		typ.Append(p.expectPunct(")"))
	}
	return p.rule(tree.CastSpec, kw, open, v, as, typ, p.expectPunct(")"))
}

func (p *Parser) intnum() *tree.Node {
	t := p.next()
	if t.Kind != IntNum {
		p.pos--
		p.syntax(t)
	}
	return p.arena.Leaf(tree.IntNumKind, t.Text)
}

// odbcEscape parses {d 'date'}, {t 'time'} and {ts 'timestamp'}
func (p *Parser) odbcEscape() *tree.Node {
	open := p.expectPunct("{")
	t := p.next()
	switch t.Keyword {
	case tree.TokenD, tree.TokenT, tree.TokenTS:
	default:
		p.pos--
		p.syntax(t)
	}
	kw := p.arena.Keyword(t.Keyword)
	s := p.next()
	if s.Kind != String {
		p.pos--
		p.syntax(s)
	}
	inner := p.rule(tree.ODBCFctSpec, kw, p.arena.Leaf(tree.StringKind, s.Text))
	return p.rule(tree.SetFctSpec, open, inner, p.expectPunct("}"))
}
