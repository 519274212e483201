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
	"strings"
	"sync"
)

// TokenID identifies a keyword token.
type TokenID uint16

const (
	TokenNone TokenID = iota
	TokenAll
	TokenAnd
	TokenAny
	TokenAs
	TokenAsc
	TokenAvg
	TokenBetween
	TokenBy
	TokenCast
	TokenCharLength
	TokenCharacterLength
	TokenCollect
	TokenCount
	TokenD
	TokenDesc
	TokenDistinct
	TokenEscape
	TokenEvery
	TokenExists
	TokenExtract
	TokenFalse
	TokenFrom
	TokenFusion
	TokenGroup
	TokenHaving
	TokenIn
	TokenIntersection
	TokenIs
	TokenLike
	TokenLower
	TokenMax
	TokenMin
	TokenNot
	TokenNull
	TokenOctetLength
	TokenOr
	TokenOrder
	TokenPosition
	TokenSelect
	TokenSome
	TokenStddevPop
	TokenStddevSamp
	TokenSum
	TokenT
	TokenTrue
	TokenTS
	TokenUnion
	TokenUnique
	TokenUnknown
	TokenUpper
	TokenVarPop
	TokenVarSamp
	TokenWhere

	numTokens
)

// tokentext holds the canonical spelling of each keyword.
// The ODBC escape keywords are spelled in lower case,
// which is how they are conventionally written.
var tokentext = [numTokens]string{
	TokenNone:            "",
	TokenAll:             "ALL",
	TokenAnd:             "AND",
	TokenAny:             "ANY",
	TokenAs:              "AS",
	TokenAsc:             "ASC",
	TokenAvg:             "AVG",
	TokenBetween:         "BETWEEN",
	TokenBy:              "BY",
	TokenCast:            "CAST",
	TokenCharLength:      "CHAR_LENGTH",
	TokenCharacterLength: "CHARACTER_LENGTH",
	TokenCollect:         "COLLECT",
	TokenCount:           "COUNT",
	TokenD:               "d",
	TokenDesc:            "DESC",
	TokenDistinct:        "DISTINCT",
	TokenEscape:          "ESCAPE",
	TokenEvery:           "EVERY",
	TokenExists:          "EXISTS",
	TokenExtract:         "EXTRACT",
	TokenFalse:           "FALSE",
	TokenFrom:            "FROM",
	TokenFusion:          "FUSION",
	TokenGroup:           "GROUP",
	TokenHaving:          "HAVING",
	TokenIn:              "IN",
	TokenIntersection:    "INTERSECTION",
	TokenIs:              "IS",
	TokenLike:            "LIKE",
	TokenLower:           "LOWER",
	TokenMax:             "MAX",
	TokenMin:             "MIN",
	TokenNot:             "NOT",
	TokenNull:            "NULL",
	TokenOctetLength:     "OCTET_LENGTH",
	TokenOr:              "OR",
	TokenOrder:           "ORDER",
	TokenPosition:        "POSITION",
	TokenSelect:          "SELECT",
	TokenSome:            "SOME",
	TokenStddevPop:       "STDDEV_POP",
	TokenStddevSamp:      "STDDEV_SAMP",
	TokenSum:             "SUM",
	TokenT:               "t",
	TokenTrue:            "TRUE",
	TokenTS:              "ts",
	TokenUnion:           "UNION",
	TokenUnique:          "UNIQUE",
	TokenUnknown:         "UNKNOWN",
	TokenUpper:           "UPPER",
	TokenVarPop:          "VAR_POP",
	TokenVarSamp:         "VAR_SAMP",
	TokenWhere:           "WHERE",
}

// String returns the canonical keyword text of t.
func (t TokenID) String() string {
	if t >= numTokens {
		return ""
	}
	return tokentext[t]
}

// intlTokens are the keywords that a Context
// may spell differently in international mode.
var intlTokens = []TokenID{
	TokenLike, TokenNot, TokenNull, TokenTrue,
	TokenFalse, TokenIs, TokenBetween, TokenOr,
	TokenAnd, TokenAvg, TokenCount, TokenMax,
	TokenMin, TokenSum, TokenEvery, TokenAny,
	TokenSome, TokenStddevPop, TokenStddevSamp,
	TokenVarSamp, TokenVarPop, TokenCollect,
	TokenFusion, TokenIntersection,
}

// International reports whether t may be localized.
func (t TokenID) International() bool {
	for _, x := range intlTokens {
		if x == t {
			return true
		}
	}
	return false
}

var (
	tokenOnce   sync.Once
	tokenByText map[string]TokenID
)

// TokenByText returns the keyword token spelled
// by s (ignoring case), or TokenNone.
func TokenByText(s string) TokenID {
	tokenOnce.Do(func() {
		tokenByText = make(map[string]TokenID, numTokens)
		for i := TokenID(1); i < numTokens; i++ {
			tokenByText[strings.ToUpper(tokentext[i])] = i
		}
	})
	return tokenByText[strings.ToUpper(s)]
}

// NumTokens returns the number of keyword tokens,
// including TokenNone.
func NumTokens() int { return int(numTokens) }
