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
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/SnellerInc/predicate/locale"
	"github.com/SnellerInc/predicate/querystore"
	"github.com/SnellerInc/predicate/tree"
	"github.com/SnellerInc/predicate/tree/sqlparse"
)

// renderAll renders each statement as
// "statement\n\toutput\n"
func renderAll(t *testing.T, inputs []string, o *Options) []byte {
	t.Helper()
	var out strings.Builder
	for _, in := range inputs {
		n, err := sqlparse.ParseTree(in)
		require.NoError(t, err, in)
		s, err := String(n, o)
		require.NoError(t, err, in)
		fmt.Fprintf(&out, "%s\n\t%s\n", in, s)
	}
	return []byte(out.String())
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

var statements = []string{
	"a = 1",
	"a = 1 AND b = 2 OR c = 3",
	"NOT (a = 1 OR b <> 2)",
	"a IS NOT NULL",
	"a NOT BETWEEN 1 AND 2",
	"a LIKE 'x%' ESCAPE '!'",
	"a LIKE b",
	"a IN (1, 2)",
	"a NOT IN (SELECT a FROM t)",
	"a > ALL (SELECT a FROM t)",
	"EXISTS (SELECT * FROM t)",
	"a = 1 IS NOT TRUE",
	"(a + 1) * 2 >= b.c",
	"a IS DISTINCT FROM b",
	"x = {d '2023-01-31'}",
	"x = ? AND y = :name",
	"SELECT DISTINCT a AS x, COUNT(*) FROM s.t AS u WHERE a = 1 GROUP BY a HAVING COUNT(*) > 1 ORDER BY a DESC",
	"SELECT a FROM t UNION ALL SELECT a FROM t",
	"SELECT * FROM (SELECT a FROM t) AS q",
	"CAST(a AS DECIMAL(10, 2)) = -1.5",
	"UPPER(name) LIKE 'A%'",
	"a || 'x' = myfn(b, 2)",
	"POSITION('a' IN b) > 0",
	"EXTRACT(YEAR FROM d) = 2023",
	`"select" = 1 -- trailing comment`,
	"name = 'O''Brien'",
}

func TestStatements(t *testing.T) {
	golden(t).Assert(t, "statements", renderAll(t, statements, &Options{Quote: true}))
}

func TestPredicate(t *testing.T) {
	inputs := []string{
		"name = 'x'",
		"name LIKE 'x%'",
		"name NOT LIKE 'a_c'",
		"name > 1.5 AND name < 2",
		"other = 1",
		"name IN (1, 2)",
		"name IS NULL",
		"UPPER(name) = 'X'",
		"d = {d '2023-01-31'}",
		"d = {ts '2023-01-31 13:45:00'}",
		"name = 'a' OR name = 'b'",
		"NOT (name = 'a')",
		"name BETWEEN 1 AND 2",
		"name = (SELECT name FROM t)",
	}
	o := &Options{
		Quote:         true,
		Predicate:     true,
		International: true,
		DecimalSep:    ',',
		Context:       tree.NewContext(language.German),
		Field:         &tree.Field{Name: "name", Type: tree.TypeVarChar},
		Formatter:     locale.New(language.German),
	}
	golden(t).Assert(t, "predicate", renderAll(t, inputs, o))
}

func TestRenderOptions(t *testing.T) {
	german := tree.NewContext(language.German)
	testcases := []struct {
		in, want string
		opts     Options
	}{
		{"a = 1", "a = 1", Options{}},
		{`"a""b" = 1`, `"a""b" = 1`, Options{Quote: true}},
		{"s.t.a = 1", "`s`.`t`.`a` = 1", Options{Quote: true, IdentifierQuote: "`"}},
		{"a LIKE 'x%' AND b IS NULL", "a WIE 'x*' UND b IST LEER", Options{International: true, Context: german}},
		// no French translation
		{"a = 1 OR b IS NULL", "a = 1 OR b IS NULL", Options{International: true, Context: tree.NewContext(language.French)}},
		{"COUNT(*) > 1", "ANZAHL( * ) > 1", Options{International: true, Context: german}},
		// decimals are only localized in predicates
		{"a = 1.5", "a = 1.5", Options{International: true, DecimalSep: ','}},
		{"a LIKE '100!%' ESCAPE '!'", "a LIKE '100!%' ESCAPE '!'", Options{International: true}},
		{"a = {d '2023-01-31'}", "a = {d '2023-01-31' }", Options{EscapeDateTime: true}},
		{"a = {d '2023-01-31'}", "[a] = #2023-01-31#", Options{Quote: true, Predicate: true, EscapeDateTime: true}},
		{"a = {t '13:45:00'}", "a = '13:45:00'", Options{}},
		{"a = :p", "a = :p", Options{SubstituteParameterNames: true}},
		{"a = :p", "a = ?", Options{Substitute: true, SubstituteParameterNames: true}},
		{"a = #2023-01-31#", "a = #2023-01-31#", Options{}},
		{"CAST(a AS INTEGER) = 1", `CAST( "a" AS INTEGER ) = 1`, Options{Quote: true}},
	}
	for i := range testcases {
		tc := &testcases[i]
		t.Run(tc.in, func(t *testing.T) {
			n, err := sqlparse.ParseTree(tc.in)
			require.NoError(t, err)
			got, err := String(n, &tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAppend(t *testing.T) {
	n, err := sqlparse.ParseTree("b = 2")
	require.NoError(t, err)
	var dst strings.Builder
	dst.WriteString("a = 1 AND")
	require.NoError(t, Append(&dst, n, nil))
	assert.Equal(t, "a = 1 AND b = 2", dst.String())

	assert.Error(t, Append(&dst, nil, nil))
}

func TestRoundTrip(t *testing.T) {
	// parameters never compare equal,
	// and ODBC dates render as strings
	inputs := []string{
		"name = 'O''Brien'",
		"a = 1.25 AND b <> 'x y' OR c < 3",
		`"weird ""name""" >= 0`,
		"t.a LIKE 'a%' ESCAPE '\\'",
		"NOT (a IN (1, 2, 3))",
		"a IS NOT NULL AND b BETWEEN 1 AND 2",
		"SELECT DISTINCT a AS x, COUNT(*) FROM s.t AS u WHERE a = 1 GROUP BY a HAVING COUNT(*) > 1 ORDER BY a DESC",
		"CAST(a AS DECIMAL(10, 2)) = -1.5",
		"EXTRACT(YEAR FROM d) = 2023 AND UPPER(n) = 'A'",
	}
	for _, quote := range []bool{false, true} {
		for _, in := range inputs {
			if !quote && strings.Contains(in, `"`) {
				continue
			}
			want, err := sqlparse.ParseTree(in)
			require.NoError(t, err, in)
			text, err := String(want, &Options{Quote: quote})
			require.NoError(t, err, in)
			got, err := sqlparse.ParseTree(text)
			require.NoError(t, err, text)
			assert.True(t, tree.Equal(want, got), "%s -> %s:\n%s\n%s", in, text, want, got)
		}
	}
}

func TestRoundTripRewritten(t *testing.T) {
	passes := []struct {
		name string
		fn   func(*tree.Node) *tree.Node
	}{
		{"negate", func(n *tree.Node) *tree.Node { return tree.NegateSearchCondition(n, true) }},
		{"pushnot", func(n *tree.Node) *tree.Node { return tree.NegateSearchCondition(n, false) }},
		{"absorb", tree.Absorptions},
		{"braces", tree.EraseBraces},
		{"dnf", tree.DisjunctiveNormalForm},
		{"compress", tree.Compress},
	}
	inputs := []string{
		"a = 1 OR b = 2 AND c = 3",
		"a = 1 AND b = 2 OR c = 3",
		"a = 1 AND (b = 2 OR c = 3)",
		"(a = 1 OR b = 2) AND c IS NULL",
		"x = 1 AND a = 1 OR x = 1 AND b = 2",
		"NOT (a = 1 OR b IS NULL) AND c LIKE 'x%'",
		"a = 1 OR NOT (d = 4 AND e = 5) AND c = 3",
	}
	for _, p := range passes {
		for _, in := range inputs {
			n, err := sqlparse.ParseTree(in)
			require.NoError(t, err, in)
			want := p.fn(n)
			text, err := String(want, nil)
			require.NoError(t, err, in)
			got, err := sqlparse.ParseTree(text)
			require.NoError(t, err, text)
			assert.True(t, tree.Equal(want, got), "%s %s -> %s:\n%s\n%s", p.name, in, text, want, got)
		}
	}
}

func TestNegateRendered(t *testing.T) {
	testcases := []struct {
		in, want string
	}{
		{"a = 1 OR b = 2 AND c = 3", "a <> 1 AND ( b <> 2 OR c <> 3 )"},
		{"a = 1 AND b = 2 OR c = 3", "( a <> 1 OR b <> 2 ) AND c <> 3"},
		{"a = 1 AND (b = 2 OR c = 3)", "a <> 1 OR b <> 2 AND c <> 3"},
		{"NOT (a = 1 AND b = 2) AND c = 3", "( a <> 1 OR b <> 2 ) AND c = 3"},
	}
	for _, tc := range testcases {
		n, err := sqlparse.ParseTree(tc.in)
		require.NoError(t, err, tc.in)
		orig := n.Clone()
		neg := tree.NegateSearchCondition(n, !strings.HasPrefix(tc.in, "NOT"))
		got, err := String(neg, nil)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
		if !strings.HasPrefix(tc.in, "NOT") {
			back := tree.NegateSearchCondition(neg, true)
			assert.True(t, tree.Equal(orig, back), "%s negated twice: %s", tc.in, back)
		}
	}
}

func TestRenderShapeErrors(t *testing.T) {
	broken := []*tree.Node{
		tree.NewRule(tree.Parameter),
		tree.NewRule(tree.FctSpec),
		tree.NewRule(tree.LikePredicate),
	}
	for _, n := range broken {
		_, err := String(n, nil)
		assert.ErrorIs(t, err, tree.ErrStructure, n.String())
	}
}

func storedQueries(t *testing.T, qs ...querystore.Query) *querystore.Map {
	m, err := querystore.NewMap(qs...)
	require.NoError(t, err)
	return m
}

func TestSubstitute(t *testing.T) {
	queries := storedQueries(t,
		querystore.Query{Name: "recent", Command: "SELECT a FROM orders WHERE a > 1", EscapeProcessing: true},
		querystore.Query{Name: "raw", Command: "SELECT TOP 5 * FROM x"},
		querystore.Query{Name: "V1", Command: "SELECT * FROM V2", EscapeProcessing: true},
		querystore.Query{Name: "V2", Command: "SELECT a FROM t", EscapeProcessing: true},
	)
	o := &Options{
		Quote:      true,
		Substitute: true,
		Queries:    queries,
		Parser:     sqlparse.New(sqlparse.Config{}),
	}
	recent := `( SELECT "a" FROM "orders" WHERE "a" > 1 )`
	testcases := []struct {
		in, want string
	}{
		{"SELECT * FROM recent", `SELECT * FROM ` + recent + ` AS "recent"`},
		{"SELECT * FROM recent AS r", `SELECT * FROM ` + recent + ` AS "r"`},
		{"SELECT * FROM raw", `SELECT * FROM ( SELECT TOP 5 * FROM x ) AS "raw"`},
		{"SELECT * FROM other", `SELECT * FROM "other"`},
		{"SELECT * FROM s.recent", `SELECT * FROM "s"."recent"`},
		{
			"SELECT a FROM recent UNION SELECT a FROM recent",
			`SELECT "a" FROM ` + recent + ` AS "recent" UNION SELECT "a" FROM ` + recent + ` AS "recent"`,
		},
		{"SELECT * FROM V1", `SELECT * FROM ( SELECT * FROM ( SELECT "a" FROM "t" ) AS "V2" ) AS "V1"`},
	}
	for _, tc := range testcases {
		n, err := sqlparse.ParseTree(tc.in)
		require.NoError(t, err, tc.in)
		got, err := String(n, o)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	// without a parser commands are used verbatim
	n, err := sqlparse.ParseTree("SELECT * FROM recent")
	require.NoError(t, err)
	got, err := String(n, &Options{Substitute: true, Queries: queries})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM ( SELECT a FROM orders WHERE a > 1 ) AS recent", got)

	// a table_ref rendered on its own
	ref := findRule(n, tree.TableRef)
	require.NotNil(t, ref)
	got, err = String(ref, &Options{Substitute: true, Queries: queries})
	require.NoError(t, err)
	assert.Equal(t, "( SELECT a FROM orders WHERE a > 1 ) AS recent", got)

	// and nothing is substituted unless asked
	got, err = String(n, &Options{Queries: queries})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM recent", got)
}

type ruleFinder struct {
	rule  tree.RuleID
	found *tree.Node
}

func (f *ruleFinder) Visit(n *tree.Node) tree.Visitor {
	if n == nil || f.found != nil {
		return nil
	}
	if n.Is(f.rule) {
		f.found = n
		return nil
	}
	return f
}

func findRule(n *tree.Node, r tree.RuleID) *tree.Node {
	f := &ruleFinder{rule: r}
	tree.Walk(f, n)
	return f.found
}

func TestCyclicSubquery(t *testing.T) {
	queries := storedQueries(t,
		querystore.Query{Name: "V1", Command: "SELECT * FROM V2", EscapeProcessing: true},
		querystore.Query{Name: "V2", Command: "SELECT * FROM V1", EscapeProcessing: true},
		querystore.Query{Name: "self", Command: "SELECT * FROM self", EscapeProcessing: true},
	)
	o := &Options{
		Substitute: true,
		Queries:    queries,
		Parser:     sqlparse.New(sqlparse.Config{}),
	}
	for _, name := range []string{"V1", "V2", "self"} {
		n, err := sqlparse.ParseTree("SELECT * FROM " + name)
		require.NoError(t, err)
		_, err = String(n, o)
		require.Error(t, err)
		assert.ErrorIs(t, err, tree.ErrCyclicSubquery)
		var cyclic *CyclicSubqueryError
		require.True(t, errors.As(err, &cyclic))
		assert.Equal(t, name, cyclic.Name)
		assert.Equal(t, "The statement contains a cyclic reference to one or more sub queries.", cyclic.Message)
	}

	o.Context = tree.NewContext(language.German)
	n, err := sqlparse.ParseTree("SELECT * FROM V1")
	require.NoError(t, err)
	_, err = String(n, o)
	assert.ErrorContains(t, err, "zyklischen Verweis")
}

type failingStore struct{}

var errStore = errors.New("store unavailable")

func (failingStore) Resolve(string) (string, bool, bool, error) {
	return "", false, false, errStore
}

func TestSubstituteStoreError(t *testing.T) {
	n, err := sqlparse.ParseTree("SELECT * FROM t")
	require.NoError(t, err)
	_, err = String(n, &Options{Substitute: true, Queries: failingStore{}})
	assert.ErrorIs(t, err, errStore)
}
