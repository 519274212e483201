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

package script

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/scanner"
)

// Parse parses a list of checks from a file.
func Parse(r io.Reader) ([]Check, error) {
	var err error
	error := func(s *scanner.Scanner, msg string) {
		s.ErrorCount++
		if err == nil {
			err = fmt.Errorf("%s:%d:%d: %s", s.Filename, s.Line, s.Column, msg)
		}
	}
	s := new(scanner.Scanner)
	s = s.Init(r)
	if f, ok := r.(*os.File); ok {
		s.Position.Filename = f.Name()
	}
	s.Error = error
	var checks []Check
	p := &parser{src: s}
	for !p.atEOF() && p.ok() {
		c := Check{Location: s.Position}
		c.Passes = p.passes()
		c.Input = p.str()
		if !p.arrow() {
			if p.ok() {
				p.fail("expected ->")
			}
			break
		}
		p.result(&c)
		checks = append(checks, c)
	}
	if s.ErrorCount > 1 {
		return nil, fmt.Errorf("%s (and %d other errors)", err, s.ErrorCount-1)
	}
	if s.ErrorCount > 0 {
		return nil, err
	}
	return checks, nil
}

// parser is an LL(1) parser
type parser struct {
	src     *scanner.Scanner
	la      rune // lookahead character
	lavalid bool // lookahead is valid
}

// peek gets the lookahead character
// without updating the parser state
// (unless no lookahead char is present)
func (p *parser) peek() rune {
	if !p.lavalid {
		p.la = p.src.Scan()
		p.lavalid = true
	}
	return p.la
}

// next updates the lookahead token and returns it
func (p *parser) next() rune {
	r := p.peek()
	p.lavalid = false
	return r
}

func (p *parser) atEOF() bool {
	return p.peek() == scanner.EOF
}

func (p *parser) ok() bool {
	return p.src.ErrorCount == 0
}

func (p *parser) fail(msg string) {
	p.src.Error(p.src, msg)
}

func (p *parser) unexpected(r rune) {
	p.fail("unexpected token " + scanner.TokenString(r))
}

func (p *parser) consume(r rune) bool {
	if p.peek() == r {
		p.lavalid = false
		return true
	}
	return false
}

func (p *parser) arrow() bool {
	return p.consume('-') && p.consume('>')
}

func (p *parser) passes() []string {
	switch r := p.next(); r {
	case scanner.Ident:
		return []string{p.src.TokenText()}
	case '(':
		out := []string{}
		for p.ok() && !p.consume(')') {
			if r := p.next(); r != scanner.Ident {
				p.unexpected(r)
				return nil
			}
			out = append(out, p.src.TokenText())
		}
		return out
	default:
		p.unexpected(r)
		return nil
	}
}

func (p *parser) str() string {
	switch r := p.next(); r {
	case scanner.RawString:
		text := p.src.TokenText()
		return text[1 : len(text)-1]
	case scanner.String:
		out, err := strconv.Unquote(p.src.TokenText())
		if err != nil {
			p.fail(err.Error())
		}
		return out
	default:
		if p.ok() {
			p.unexpected(r)
		}
		return ""
	}
}

func (p *parser) result(c *Check) {
	if p.peek() != scanner.Ident {
		c.Want = p.str()
		return
	}
	p.next()
	if p.src.TokenText() != "error" || !p.consume(':') {
		p.fail(`expected a string or error:"message"`)
		return
	}
	c.WantErr = true
	c.Want = p.str()
}
