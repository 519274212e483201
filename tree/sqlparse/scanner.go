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
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SnellerInc/predicate/tree"
)

// Mode selects how a Scanner lexes literals.
type Mode uint8

const (
	// ModeSQL lexes SQL statements.
	ModeSQL Mode = iota
	// ModeDate lexes unquoted dates and
	// times as access dates.
	ModeDate
	// ModeString lexes unquoted words that
	// are not keywords as strings.
	ModeString
	// ModeGer lexes numbers with a decimal
	// comma and dots grouping thousands.
	ModeGer
	// ModeEng lexes numbers with a decimal
	// point and commas grouping thousands.
	ModeEng
)

func (m Mode) String() string {
	switch m {
	case ModeDate:
		return "DATE"
	case ModeString:
		return "STRING"
	case ModeGer:
		return "GER"
	case ModeEng:
		return "ENG"
	default:
		return "SQL"
	}
}

// TokenKind is the lexical class of a Token.
type TokenKind uint8

const (
	EOF TokenKind = iota
	Keyword
	Name
	String
	IntNum
	ApproxNum
	AccessDate
	Punct
	Comparison
	Concat
)

var tokenkinds = [...]string{
	EOF:        "end of input",
	Keyword:    "KEYWORD",
	Name:       "NAME",
	String:     "STRING",
	IntNum:     "INTNUM",
	ApproxNum:  "APPROXNUM",
	AccessDate: "ACCESS_DATE",
	Punct:      "PUNCTUATION",
	Comparison: "COMPARISON",
	Concat:     "CONCAT",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenkinds) {
		return tokenkinds[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is one lexical token.
type Token struct {
	Kind TokenKind
	// Keyword is set for Keyword tokens.
	Keyword tree.TokenID
	// Op is set for Comparison tokens.
	Op tree.Kind
	// Text is the token text with quotes
	// and escapes removed.
	Text string
	// Pos is the byte offset of the token.
	Pos int
}

// describe returns the token the way
// it appears in syntax error messages
func (t *Token) describe() string {
	switch t.Kind {
	case Keyword:
		return t.Keyword.String()
	case Punct, Comparison, Concat:
		return "'" + t.Text + "'"
	default:
		return t.Kind.String()
	}
}

// LexerError describes a lexing error
type LexerError struct {
	Position int    // offset in the input string
	Length   int    // length of wrong substring (0 if unknown)
	Message  string // textual description of an error
}

func (e *LexerError) Error() string {
	return fmt.Sprintf("at position %d: %s", e.Position, e.Message)
}

// Scanner splits statement text into tokens.
// A Scanner is not safe for concurrent use;
// every parser owns one.
type Scanner struct {
	from string
	pos  int
	mode Mode
	// ctx, if set, supplies the localized
	// spelling of international keywords
	ctx  tree.Context
	last TokenKind
	// lastText is the text of the last
	// punctuation token
	lastText string
}

// NewScanner returns a Scanner over text in ModeSQL.
func NewScanner(text string) *Scanner {
	s := &Scanner{}
	s.Reset(text)
	return s
}

// Reset restarts s on text.
// The mode and context are kept.
func (s *Scanner) Reset(text string) {
	s.from = text
	s.pos = 0
	s.last = EOF
	s.lastText = ""
}

// SetMode selects the lexing mode for
// the tokens that follow.
func (s *Scanner) SetMode(m Mode) { s.mode = m }

// Mode returns the current lexing mode.
func (s *Scanner) Mode() Mode { return s.mode }

// SetContext enables localized keywords from
// ctx. A nil ctx accepts canonical keywords only.
func (s *Scanner) SetContext(ctx tree.Context) { s.ctx = ctx }

func isdigit(x byte) bool {
	return x >= '0' && x <= '9'
}

func isalpha(x byte) bool {
	return (x >= 'a' && x <= 'z') || (x >= 'A' && x <= 'Z')
}

func isspace(x byte) bool {
	return x == ' ' || x == '\n' || x == '\t' || x == '\r' || x == '\f' || x == '\v'
}

// chomp whitespace from input
func (s *Scanner) chompws() {
	for s.pos < len(s.from) && isspace(s.from[s.pos]) {
		s.pos++
	}
}

func (s *Scanner) peekat(i int) byte {
	if s.pos+i < len(s.from) {
		return s.from[s.pos+i]
	}
	return 0
}

// identStart returns the width of the
// identifier character at i, or 0
func (s *Scanner) identChar(i int, first bool) int {
	if i >= len(s.from) {
		return 0
	}
	b := s.from[i]
	if b < utf8.RuneSelf {
		if isalpha(b) || b == '_' || (!first && isdigit(b)) {
			return 1
		}
		return 0
	}
	r, size := utf8.DecodeRuneInString(s.from[i:])
	if unicode.IsLetter(r) || (!first && unicode.IsDigit(r)) {
		return size
	}
	return 0
}

func (s *Scanner) errorf(pos, length int, f string, args ...any) error {
	return &LexerError{Position: pos, Length: length, Message: fmt.Sprintf(f, args...)}
}

func (s *Scanner) emit(t Token) (Token, error) {
	s.last = t.Kind
	s.lastText = t.Text
	return t, nil
}

// Next returns the next token, or a token
// of kind EOF at the end of the input.
func (s *Scanner) Next() (Token, error) {
	s.chompws()
	if s.pos >= len(s.from) {
		return Token{Kind: EOF, Pos: s.pos}, nil
	}
	start := s.pos
	b := s.from[s.pos]
	switch {
	case s.mode == ModeDate && isdigit(b):
		if t, ok := s.lexDate(); ok {
			return s.emit(t)
		}
		return s.lexNumber()
	case s.mode == ModeString && s.wordAhead():
		return s.lexWord()
	case isdigit(b) || (b == '.' && isdigit(s.peekat(1))):
		return s.lexNumber()
	case s.identChar(s.pos, true) > 0:
		return s.lexIdent()
	}
	s.pos++
	punct := func(text string) (Token, error) {
		return s.emit(Token{Kind: Punct, Text: text, Pos: start})
	}
	cmp := func(k tree.Kind, width int) (Token, error) {
		s.pos += width - 1
		return s.emit(Token{Kind: Comparison, Op: k, Text: k.String(), Pos: start})
	}
	switch b {
	case '\'':
		return s.lexQuoted('\'', String, start)
	case '"':
		return s.lexQuoted('"', Name, start)
	case '`':
		return s.lexQuoted('`', Name, start)
	case '[':
		return s.lexQuoted(']', Name, start)
	case '#':
		end := strings.IndexByte(s.from[s.pos:], '#')
		if end < 0 {
			return Token{}, s.errorf(start, len(s.from)-start, "unterminated date literal")
		}
		text := s.from[s.pos : s.pos+end]
		s.pos += end + 1
		return s.emit(Token{Kind: AccessDate, Text: text, Pos: start})
	case '(', ')', ',', '.', ';', '{', '}', '*', '+', '-', '/', '?', ':':
		return punct(string(b))
	case '|':
		if s.peekat(0) == '|' {
			s.pos++
			return s.emit(Token{Kind: Concat, Text: "||", Pos: start})
		}
	case '=':
		return cmp(tree.EqualKind, 1)
	case '!':
		if s.peekat(0) == '=' {
			return cmp(tree.NotEqualKind, 2)
		}
	case '<':
		switch s.peekat(0) {
		case '>':
			return cmp(tree.NotEqualKind, 2)
		case '=':
			return cmp(tree.LessEqKind, 2)
		}
		return cmp(tree.LessKind, 1)
	case '>':
		if s.peekat(0) == '=' {
			return cmp(tree.GreatEqKind, 2)
		}
		return cmp(tree.GreatKind, 1)
	}
	r, _ := utf8.DecodeRuneInString(s.from[start:])
	return Token{}, s.errorf(start, 1, "unexpected character %q", r)
}

// lexQuoted lexes text up to the closing quote;
// a doubled closing quote stands for itself
func (s *Scanner) lexQuoted(end byte, kind TokenKind, start int) (Token, error) {
	var b strings.Builder
	for s.pos < len(s.from) {
		c := s.from[s.pos]
		s.pos++
		if c != end {
			b.WriteByte(c)
			continue
		}
		if s.pos < len(s.from) && s.from[s.pos] == end {
			b.WriteByte(end)
			s.pos++
			continue
		}
		return s.emit(Token{Kind: kind, Text: b.String(), Pos: start})
	}
	if kind == String {
		return Token{}, s.errorf(start, len(s.from)-start, "unterminated string")
	}
	return Token{}, s.errorf(start, len(s.from)-start, "unterminated quoted identifier")
}

// lex an identifier and either return it
// as an identifier or a keyword (if it matches one)
func (s *Scanner) lexIdent() (Token, error) {
	start := s.pos
	s.pos += s.identChar(s.pos, true)
	for w := s.identChar(s.pos, false); w > 0; w = s.identChar(s.pos, false) {
		s.pos += w
	}
	word := s.from[start:s.pos]
	if t := s.keyword(word); t != tree.TokenNone {
		return s.emit(Token{Kind: Keyword, Keyword: t, Text: word, Pos: start})
	}
	return s.emit(Token{Kind: Name, Text: word, Pos: start})
}

func (s *Scanner) keyword(word string) tree.TokenID {
	t := tree.TokenNone
	if s.ctx != nil {
		t = s.ctx.KeywordToken(word)
	}
	if t == tree.TokenNone {
		t = lookupKeyword(word)
	}
	switch t {
	case tree.TokenD, tree.TokenT, tree.TokenTS:
		// ODBC escape keywords only follow '{'
		if s.last != Punct || s.lastText != "{" {
			return tree.TokenNone
		}
	}
	return t
}

// decimal and group separators of the mode
func (s *Scanner) separators() (dec, group byte) {
	switch s.mode {
	case ModeGer:
		return ',', '.'
	case ModeEng:
		return '.', ','
	default:
		return '.', 0
	}
}

func (s *Scanner) digits() int {
	n := 0
	for s.pos < len(s.from) && isdigit(s.from[s.pos]) {
		s.pos++
		n++
	}
	return n
}

// groupAhead returns whether the text at the
// current position is a group separator followed
// by exactly three digits
func (s *Scanner) groupAhead(group byte) bool {
	if group == 0 || s.peekat(0) != group {
		return false
	}
	for i := 1; i <= 3; i++ {
		if !isdigit(s.peekat(i)) {
			return false
		}
	}
	return !isdigit(s.peekat(4))
}

// lexNumber lexes an integer or approximate
// number written with the separators of the mode;
// the text keeps the separators as written
func (s *Scanner) lexNumber() (Token, error) {
	start := s.pos
	dec, group := s.separators()
	approx := false
	s.digits()
	for s.groupAhead(group) {
		s.pos += 4
	}
	if s.peekat(0) == dec && (isdigit(s.peekat(1)) || (dec == '.' && s.pos > start)) {
		approx = true
		s.pos++
		s.digits()
	}
	if c := s.peekat(0); (c == 'e' || c == 'E') && s.pos > start {
		i := 1
		if c := s.peekat(1); c == '+' || c == '-' {
			i++
		}
		if isdigit(s.peekat(i)) {
			approx = true
			s.pos += i
			s.digits()
		}
	}
	if s.identChar(s.pos, false) > 0 {
		return Token{}, s.errorf(start, s.pos-start+1, "malformed number %q", s.from[start:s.pos+1])
	}
	kind := IntNum
	if approx {
		kind = ApproxNum
	}
	return s.emit(Token{Kind: kind, Text: s.from[start:s.pos], Pos: start})
}

func isdatesep(c byte) bool {
	return c == '-' || c == '.' || c == '/' || c == ':'
}

// lexDate lexes an unquoted date or time such as
// 31.01.2023, 2023-01-31 13:45 or 13:45:00 pm; plain
// numbers are left to lexNumber
func (s *Scanner) lexDate() (Token, bool) {
	start := s.pos
	i := s.pos
	seps, dots := 0, 0
	for i < len(s.from) {
		c := s.from[i]
		switch {
		case isdigit(c):
			i++
			continue
		case isdatesep(c) && i+1 < len(s.from) && isdigit(s.from[i+1]):
			seps++
			if c == '.' {
				dots++
			}
			i++
			continue
		case c == '.' && seps > 0:
			// trailing dot of 31.01.2023.
			i++
			continue
		case c == ' ' && seps > 0 && i+1 < len(s.from) && isdigit(s.from[i+1]):
			i++
			continue
		}
		break
	}
	if seps == 0 || (seps == 1 && dots == 1) {
		return Token{}, false
	}
	// am/pm suffix
	rest := s.from[i:]
	trimmed := strings.TrimLeft(rest, " ")
	if len(trimmed) >= 2 && (equalASCII(trimmed[:2], "AM") || equalASCII(trimmed[:2], "PM")) &&
		(len(trimmed) == 2 || s.identCharAt(trimmed, 2) == 0) {
		i += len(rest) - len(trimmed) + 2
	}
	s.pos = i
	return Token{Kind: AccessDate, Text: s.from[start:i], Pos: start}, true
}

func (s *Scanner) identCharAt(str string, i int) int {
	if i < len(str) && (isalpha(str[i]) || isdigit(str[i]) || str[i] == '_') {
		return 1
	}
	return 0
}

// isWordByte reports whether c may appear
// in an unquoted word in ModeString
func isWordByte(c byte) bool {
	if isspace(c) {
		return false
	}
	switch c {
	case '(', ')', '\'', '"', ',', ';', '=', '<', '>', '!', '|', '{', '}', '#', '[', ']':
		return false
	}
	return true
}

// wordAhead returns whether an unquoted
// word starts at the current position
func (s *Scanner) wordAhead() bool {
	b := s.from[s.pos]
	if s.identChar(s.pos, true) > 0 || b == '*' || b == '%' || b == '?' || b == '_' {
		return true
	}
	return isdigit(b)
}

// lexWord lexes a word in ModeString: keywords stay
// keywords, numbers stay numbers and everything else
// becomes a string
func (s *Scanner) lexWord() (Token, error) {
	start := s.pos
	end := s.pos
	for end < len(s.from) && isWordByte(s.from[end]) {
		end++
	}
	word := s.from[start:end]
	ident := true
	for i := 0; i < len(word); {
		w := s.identChar(start+i, i == 0)
		if w == 0 {
			ident = false
			break
		}
		i += w
	}
	if ident {
		if t := s.keyword(word); t != tree.TokenNone {
			s.pos = end
			return s.emit(Token{Kind: Keyword, Keyword: t, Text: word, Pos: start})
		}
	}
	numeric := word != ""
	for i := 0; i < len(word); i++ {
		if !isdigit(word[i]) && word[i] != '.' {
			numeric = false
			break
		}
	}
	if numeric {
		return s.lexNumber()
	}
	if word == "?" || word == "*" {
		// parameter or COUNT(*)
		s.pos++
		return s.emit(Token{Kind: Punct, Text: word, Pos: start})
	}
	s.pos = end
	return s.emit(Token{Kind: String, Text: word, Pos: start})
}
