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

// Package sqlparse parses SQL statements and
// single-field predicates into tree.Node parse trees.
package sqlparse

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/SnellerInc/predicate/date"
	"github.com/SnellerInc/predicate/tree"
)

// Formatter supplies the locale-dependent number
// and date formats used in predicate mode.
// locale.Formatter implements Formatter.
type Formatter interface {
	DecimalSeparator() rune
	GroupSeparator() rune
	ParseNumber(s string) (float64, error)
	// FormatNumber formats v with the given number
	// of decimals; a negative count means as many
	// as necessary.
	FormatNumber(v float64, decimals int) string
	ParseDate(s string) (date.Time, date.Fields, error)
	FormatDate(t date.Time, f date.Fields) string
	// Decimals returns the number of decimals of
	// a number format, or -1 if it is unknown.
	Decimals(formatKey int) int
}

// Config configures a Parser.
type Config struct {
	// Context supplies error messages and
	// localized keywords. The zero value
	// means tree.DefaultContext.
	Context tree.Context
	// Logger receives failed parses at
	// debug level. nil disables logging.
	Logger *zap.Logger
	// UseRealName makes predicates refer to the
	// real name of the field rather than its alias.
	UseRealName bool
}

// Parser parses statements and predicates.
// A Parser is not safe for concurrent use,
// but distinct Parsers may be used concurrently.
type Parser struct {
	cfg   Config
	ctx   tree.Context
	log   *zap.Logger
	scan  Scanner
	arena tree.Arena

	toks []Token
	pos  int

	// predicate mode state; dec and group are
	// the number separators of the scanner mode
	field  *tree.Field
	fmtr   Formatter
	dec    byte
	group  byte
	intl   bool
}

// New returns a Parser configured by cfg.
func New(cfg Config) *Parser {
	p := &Parser{cfg: cfg, ctx: cfg.Context, log: cfg.Logger}
	if p.ctx == nil {
		p.ctx = tree.DefaultContext
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	return p
}

// Context returns the parse context of p.
func (p *Parser) Context() tree.Context { return p.ctx }

var parserPool = sync.Pool{
	New: func() interface{} {
		return New(Config{})
	},
}

func newParser() *Parser {
	return parserPool.Get().(*Parser)
}

func dropParser(p *Parser) {
	p.toks = p.toks[:0]
	p.field = nil
	p.fmtr = nil
	parserPool.Put(p)
}

// ParseTree parses a statement with the default
// context and canonical keywords.
func ParseTree(text string) (*tree.Node, error) {
	p := newParser()
	defer dropParser(p)
	return p.ParseTree(text, false)
}

// PredicateTree parses a predicate on field with
// the default context. See (*Parser).PredicateTree.
func PredicateTree(text string, f Formatter, field *tree.Field) (*tree.Node, error) {
	p := newParser()
	defer dropParser(p)
	return p.PredicateTree(text, f, field)
}

// ParseTree parses a SELECT statement, a UNION of
// statements, or a bare search condition. When
// international is set, keywords may also be spelled
// the way the parse context localizes them.
func (p *Parser) ParseTree(text string, international bool) (*tree.Node, error) {
	p.field = nil
	p.fmtr = nil
	p.dec, p.group = '.', 0
	p.intl = international
	return p.run(text, ModeSQL, p.statement)
}

// PredicateTree parses text as a condition on field.
// Keywords are always accepted in their localized
// spelling. A predicate without a left operand, such
// as "= 5" or "LIKE 'a*'", is applied to field, and a
// lone literal means "field = literal". Literals
// compared with field are converted to its type
// using the number and date formats of f, which may
// be nil.
func (p *Parser) PredicateTree(text string, f Formatter, field *tree.Field) (*tree.Node, error) {
	if field == nil {
		return nil, errors.New("sqlparse.PredicateTree: nil field")
	}
	p.field = field
	p.fmtr = f
	p.intl = true
	mode := ModeEng
	p.dec, p.group = '.', ','
	if f != nil && f.DecimalSeparator() == ',' {
		mode = ModeGer
		p.dec, p.group = ',', '.'
	}
	switch {
	case field.Type.IsTemporal():
		mode = ModeDate
	case field.Type.IsCharacter():
		mode = ModeString
	}
	if mode == ModeDate || mode == ModeString {
		p.dec, p.group = '.', 0
	}
	return p.run(text, mode, p.predicateStatement)
}

// bailout is raised by fail to abandon a parse
type bailout struct {
	err error
}

func (p *Parser) run(text string, mode Mode, top func() *tree.Node) (result *tree.Node, err error) {
	p.scan.SetMode(mode)
	if p.intl {
		p.scan.SetContext(p.ctx)
	} else {
		p.scan.SetContext(nil)
	}
	defer func() {
		if e := recover(); e != nil {
			b, ok := e.(bailout)
			if !ok {
				panic(e)
			}
			result, err = nil, b.err
		}
		if err != nil {
			p.arena.Drop()
			p.log.Debug("parse failed",
				zap.String("statement", tree.RedactText(text)),
				zap.Stringer("mode", mode),
				zap.Error(err))
			return
		}
		p.arena.Release()
	}()
	p.tokenize(DeleteComments(text))
	n := top()
	if p.peek().Kind == Punct && p.peek().Text == ";" {
		p.next()
	}
	if t := p.peek(); t.Kind != EOF {
		p.syntax(*t)
	}
	return n, nil
}

func (p *Parser) tokenize(text string) {
	p.scan.Reset(text)
	p.toks = p.toks[:0]
	p.pos = 0
	for {
		t, err := p.scan.Next()
		if err != nil {
			p.fail(tree.CodeGeneral, err.Error())
		}
		p.toks = append(p.toks, t)
		if t.Kind == EOF {
			return
		}
	}
}

// fail abandons the parse with the message for code
// followed by detail; for CodeValueNoLike the detail
// replaces the #1 placeholder instead
func (p *Parser) fail(code tree.ErrorCode, detail string) {
	msg := p.ctx.ErrorMessage(code)
	switch {
	case code == tree.CodeValueNoLike:
		msg = strings.Replace(msg, "#1", detail, 1)
	case detail != "":
		msg += ", " + detail
	}
	panic(bailout{err: &tree.Error{Code: code, Message: msg}})
}

func (p *Parser) syntax(t Token) {
	p.fail(tree.CodeGeneral, "syntax error, unexpected "+t.describe())
}

func (p *Parser) peek() *Token { return &p.toks[p.pos] }

func (p *Parser) peekat(i int) *Token {
	if p.pos+i < len(p.toks) {
		return &p.toks[p.pos+i]
	}
	return &p.toks[len(p.toks)-1]
}

func (p *Parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (t *Token) is(kw tree.TokenID) bool {
	return t.Kind == Keyword && t.Keyword == kw
}

func (t *Token) isPunct(s string) bool {
	return t.Kind == Punct && t.Text == s
}

// accept consumes the keyword kw if it is next
func (p *Parser) accept(kw tree.TokenID) *tree.Node {
	if p.peek().is(kw) {
		p.next()
		return p.arena.Keyword(kw)
	}
	return nil
}

func (p *Parser) expect(kw tree.TokenID) *tree.Node {
	if n := p.accept(kw); n != nil {
		return n
	}
	p.syntax(*p.peek())
	return nil
}

func (p *Parser) acceptPunct(s string) *tree.Node {
	if p.peek().isPunct(s) {
		p.next()
		return p.punct(s)
	}
	return nil
}

func (p *Parser) expectPunct(s string) *tree.Node {
	if n := p.acceptPunct(s); n != nil {
		return n
	}
	p.syntax(*p.peek())
	return nil
}

func (p *Parser) punct(s string) *tree.Node {
	return p.arena.Leaf(tree.PunctuationKind, s)
}

func (p *Parser) rule(r tree.RuleID, children ...*tree.Node) *tree.Node {
	n := p.arena.Rule(r)
	for _, c := range children {
		if c != nil {
			n.Append(c)
		}
	}
	return n
}

// sqlnot consumes an optional NOT and
// returns the NOT leaf or an empty sql_not
func (p *Parser) sqlnot() *tree.Node {
	if n := p.accept(tree.TokenNot); n != nil {
		return n
	}
	return p.arena.Rule(tree.SQLNot)
}
