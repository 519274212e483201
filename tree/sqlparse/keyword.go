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
	"sort"
	"strings"

	"github.com/SnellerInc/predicate/tree"
)

// kwterms is the list of keyword terms
// in sorted order so that keywords can be
// identified without case normalization
// or allocation
var kwterms termlist

// longterms are the keywords
// too long to have a word code
var longterms []string

func init() {
	for i := 1; i < tree.NumTokens(); i++ {
		t := tree.TokenID(i)
		code, ok := wordcode(t.String())
		if !ok {
			longterms = append(longterms, strings.ToUpper(t.String()))
			continue
		}
		kwterms = append(kwterms, term{selfcode: code, tok: t})
	}
	sort.Sort(kwterms)
}

type term struct {
	selfcode uint64 // integer formed from term characters
	tok      tree.TokenID
}

// termlist is a sorted list of terms
type termlist []term

func (t termlist) Len() int           { return len(t) }
func (t termlist) Less(i, j int) bool { return t[i].selfcode < t[j].selfcode }
func (t termlist) Swap(i, j int)      { t[i], t[j] = t[j], t[i] }

func (t termlist) lookup(code uint64) tree.TokenID {
	i := sort.Search(len(t), func(i int) bool {
		return t[i].selfcode >= code
	})
	if i < len(t) && t[i].selfcode == code {
		return t[i].tok
	}
	return tree.TokenNone
}

func charcode(b byte) (uint64, bool) {
	if b >= 'a' && b <= 'z' {
		return uint64(b-'a') + 1, true
	}
	if b >= 'A' && b <= 'Z' {
		return uint64(b-'A') + 1, true
	}
	if b == '_' {
		return 27, true
	}
	if b >= '0' && b <= '3' {
		return uint64(b-'0') + 28, true
	}
	return 0, false
}

// wordcode produces an integer from
// a string of ascii characters
//
// the wordcode is case-insensitive
func wordcode(s string) (uint64, bool) {
	// Each character requires 5 bits, 64/5 = 12.8.
	if len(s) > 12 {
		return 0, false
	}
	code := uint64(0)
	for i := 0; i < len(s); i++ {
		bits, ok := charcode(s[i])
		if !ok {
			return 0, false
		}
		code = (code << 5) | bits
	}
	return code, true
}

func asciiUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return (b - 'a') + 'A'
	}
	return b
}

func equalASCII(anyCase, upperCaseOrNonLetter string) bool {
	if len(anyCase) != len(upperCaseOrNonLetter) {
		return false
	}
	for i := 0; i < len(anyCase); i++ {
		if asciiUpper(anyCase[i]) != upperCaseOrNonLetter[i] {
			return false
		}
	}
	return true
}

// lookupKeyword returns the keyword spelled
// by word in any case, or tree.TokenNone
func lookupKeyword(word string) tree.TokenID {
	if code, ok := wordcode(word); ok {
		return kwterms.lookup(code)
	}
	for _, kw := range longterms {
		if equalASCII(word, kw) {
			return tree.TokenByText(kw)
		}
	}
	return tree.TokenNone
}
