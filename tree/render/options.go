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

package render

import (
	"github.com/SnellerInc/predicate/date"
	"github.com/SnellerInc/predicate/querystore"
	"github.com/SnellerInc/predicate/tree"

	"go.uber.org/zap"
)

// Parser parses the commands of stored queries
// that are substituted with escape processing.
// *sqlparse.Parser implements Parser.
type Parser interface {
	ParseTree(text string, international bool) (*tree.Node, error)
}

// DateFormatter formats the dates of ODBC escapes
// in predicate mode. *locale.Formatter implements
// DateFormatter.
type DateFormatter interface {
	FormatDate(t date.Time, fields date.Fields) string
}

// Options control how a tree is rendered.
// The zero value renders plain SQL without
// quoting identifiers.
type Options struct {
	// Quote quotes identifiers.
	Quote bool
	// IdentifierQuote is the identifier quote
	// of the SQL dialect. The empty string
	// means the double quote.
	IdentifierQuote string
	// CatalogSep is the catalog separator of
	// the dialect, or 0 if it has none. No space
	// is inserted after it.
	CatalogSep byte
	// International renders keywords in the
	// language of Context and LIKE patterns with
	// the wildcards '*' and '?'.
	International bool
	// Context supplies international keywords.
	// nil means tree.DefaultContext.
	Context tree.Context
	// DecimalSep replaces the decimal point of
	// numbers when both International and
	// Predicate are set. 0 means '.'.
	DecimalSep rune

	// Predicate renders for editing the condition
	// on a single field: identifiers are quoted
	// with brackets, dates are displayed in the
	// locale of Formatter and references to Field
	// are omitted.
	Predicate bool
	// Field is the field a predicate is bound to.
	Field *tree.Field
	// Formatter displays dates in predicate mode.
	// nil leaves ODBC date text unchanged.
	Formatter DateFormatter
	// EscapeDateTime wraps dates with '#'
	// in predicate mode and keeps ODBC escapes
	// intact otherwise.
	EscapeDateTime bool

	// Substitute replaces references to stored
	// queries with the text of the query.
	Substitute bool
	// Queries resolves stored query names.
	Queries querystore.Store
	// Parser re-parses the commands of stored
	// queries that use escape processing, so they
	// are rendered with the same options. nil
	// substitutes commands verbatim.
	Parser Parser
	// SubstituteParameterNames renders named
	// parameters as '?' when Substitute is set.
	SubstituteParameterNames bool

	// Logger receives substitutions at debug
	// level. nil disables logging.
	Logger *zap.Logger
}

// CyclicSubqueryError is returned when a stored query
// refers to itself, directly or through other stored
// queries, while substituting sub-queries.
type CyclicSubqueryError struct {
	// Name is the stored query seen twice.
	Name string
	// Message is the localized message.
	Message string
}

func (e *CyclicSubqueryError) Error() string {
	return e.Message + " (" + e.Name + ")"
}

// Is reports whether target is tree.ErrCyclicSubquery.
func (e *CyclicSubqueryError) Is(target error) bool {
	return target == tree.ErrCyclicSubquery
}
