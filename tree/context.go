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

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Context supplies the locale-dependent parts of
// parsing and rendering: user-facing error messages
// and the spelling of international keywords.
type Context interface {
	// Locale is the language of the context.
	Locale() language.Tag
	// ErrorMessage returns the message for c.
	ErrorMessage(c ErrorCode) string
	// Keyword returns the international spelling of t.
	// Keywords that are not international are returned
	// in their canonical spelling.
	Keyword(t TokenID) string
	// KeywordToken returns the international keyword
	// spelled s (ignoring case), or TokenNone.
	KeywordToken(s string) TokenID
}

const keywordPrefix = "keyword:"

// german is the built-in German translation.
var german = map[string]string{
	english[CodeGeneral]:             "Syntaxfehler im SQL-Ausdruck",
	english[CodeValueNoLike]:         "Der Wert #1 kann nicht mit WIE verwendet werden.",
	english[CodeFieldNoLike]:         "WIE kann nicht mit diesem Feld verwendet werden.",
	english[CodeInvalidCompare]:      "Das eingegebene Kriterium kann nicht mit diesem Feld verglichen werden.",
	english[CodeInvalidIntCompare]:   "Das Feld kann nicht mit einer Zahl verglichen werden.",
	english[CodeInvalidDateCompare]:  "Das Feld kann nicht mit einem Datum verglichen werden.",
	english[CodeInvalidRealCompare]:  "Das Feld kann nicht mit einer Fließkommazahl verglichen werden.",
	english[CodeInvalidTableNosuch]:  "Die Datenbank enthält keine Tabelle namens \"#\".",
	english[CodeInvalidTableOrQuery]: "Die Datenbank enthält weder eine Tabelle noch eine Abfrage namens \"#\".",
	english[CodeInvalidColumn]:       "Die Spalte \"#1\" ist in der Tabelle \"#2\" unbekannt.",
	english[CodeInvalidTableExist]:   "Die Datenbank enthält bereits eine Tabelle oder Ansicht namens \"#\".",
	english[CodeInvalidQueryExist]:   "Die Datenbank enthält bereits eine Abfrage namens \"#\".",
	english[CodeCyclicSubqueries]:    "Die Anweisung enthält einen zyklischen Verweis auf eine oder mehrere Unterabfragen.",

	keywordPrefix + "LIKE":         "WIE",
	keywordPrefix + "NOT":          "NICHT",
	keywordPrefix + "NULL":         "LEER",
	keywordPrefix + "TRUE":         "WAHR",
	keywordPrefix + "FALSE":        "FALSCH",
	keywordPrefix + "IS":           "IST",
	keywordPrefix + "BETWEEN":      "ZWISCHEN",
	keywordPrefix + "OR":           "ODER",
	keywordPrefix + "AND":          "UND",
	keywordPrefix + "AVG":          "MITTELWERT",
	keywordPrefix + "COUNT":        "ANZAHL",
	keywordPrefix + "MAX":          "MAXIMUM",
	keywordPrefix + "MIN":          "MINIMUM",
	keywordPrefix + "SUM":          "SUMME",
	keywordPrefix + "EVERY":        "JEDE",
	keywordPrefix + "ANY":          "IRGENDEIN",
	keywordPrefix + "SOME":         "EINIGE",
	keywordPrefix + "STDDEV_POP":   "STABWN",
	keywordPrefix + "STDDEV_SAMP":  "STABW",
	keywordPrefix + "VAR_SAMP":     "VARIANZ",
	keywordPrefix + "VAR_POP":      "VARIANZP",
	keywordPrefix + "COLLECT":      "SAMMLUNG",
	keywordPrefix + "FUSION":       "VEREINIGUNG",
	keywordPrefix + "INTERSECTION": "DURCHSCHNITT",
}

var (
	catalogOnce sync.Once
	messages    *catalog.Builder
)

func builtinCatalog() *catalog.Builder {
	catalogOnce.Do(func() {
		messages = catalog.NewBuilder(catalog.Fallback(language.English))
		for c := CodeGeneral; c < numCodes; c++ {
			messages.SetString(language.English, english[c], english[c])
		}
		for _, t := range intlTokens {
			key := keywordPrefix + t.String()
			messages.SetString(language.English, key, t.String())
		}
		for k, v := range german {
			messages.SetString(language.German, k, v)
		}
	})
	return messages
}

type parseContext struct {
	tag      language.Tag
	printer  *message.Printer
	keywords map[TokenID]string
	tokens   map[string]TokenID
}

// NewContext returns the Context for the given
// locale. Locales without a built-in translation
// use the English messages and keywords.
func NewContext(tag language.Tag) Context {
	cat := builtinCatalog()
	use := language.English
	langs := cat.Languages()
	if _, i, conf := language.NewMatcher(langs).Match(tag); conf != language.No {
		use = langs[i]
	}
	c := &parseContext{
		tag:      tag,
		printer:  message.NewPrinter(use, message.Catalog(cat)),
		keywords: make(map[TokenID]string, len(intlTokens)),
		tokens:   make(map[string]TokenID, len(intlTokens)),
	}
	for _, t := range intlTokens {
		s := c.printer.Sprintf(keywordPrefix + t.String())
		if strings.HasPrefix(s, keywordPrefix) {
			s = t.String()
		}
		c.keywords[t] = s
		c.tokens[strings.ToUpper(s)] = t
	}
	return c
}

// DefaultContext is the en-US context.
var DefaultContext = NewContext(language.AmericanEnglish)

func (c *parseContext) Locale() language.Tag { return c.tag }

func (c *parseContext) ErrorMessage(code ErrorCode) string {
	if code <= 0 || code >= numCodes {
		code = CodeGeneral
	}
	return c.printer.Sprintf(english[code])
}

func (c *parseContext) Keyword(t TokenID) string {
	if s, ok := c.keywords[t]; ok {
		return s
	}
	return t.String()
}

func (c *parseContext) KeywordToken(s string) TokenID {
	return c.tokens[strings.ToUpper(s)]
}
