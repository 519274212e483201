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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// run executes the command line args with
// stdin as standard input
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func lines(s ...string) string {
	return strings.Join(s, "\n") + "\n"
}

func TestCommands(t *testing.T) {
	testcases := []struct {
		name string
		args []string
		want string
	}{
		{"render", []string{"render", "-e", "a = 1 AND b = 2"}, "a = 1 AND b = 2"},
		{"quote", []string{"render", "-q", "-e", "a = 1"}, `"a" = 1`},
		{"identifier-quote", []string{"render", "-q", "--identifier-quote", "`", "-e", "s.t.a = 1"}, "`s`.`t`.`a` = 1"},
		{"international", []string{"render", "-i", "--locale", "de-DE", "-e", "a LIKE 'x%' AND b IS NULL"}, "a WIE 'x*' UND b IST LEER"},
		{"parse", []string{"parse", "--check", "-e", "a = 1"}, "(comparison_predicate (column_ref a) = 1)"},
		{"dnf", []string{"normalize", "-p", "dnf", "-e", "a = 1 AND (b = 1 OR c = 1)"}, "a = 1 AND b = 1 OR a = 1 AND c = 1"},
		{"dnf compress", []string{"normalize", "-p", "dnf,compress", "-e", "a = 1 AND (b = 1 OR c = 1)"}, "a = 1 AND ( b = 1 OR c = 1 )"},
		{"negate under AND", []string{"negate", "-e", "a = 1 OR b = 2 AND c = 3"}, "a <> 1 AND ( b <> 2 OR c <> 3 )"},
		{"absorb", []string{"normalize", "-e", "a = 1 AND (a = 1 OR b = 1)"}, "a = 1"},
		{"negate", []string{"negate", "-e", "a = 1 OR b < 2"}, "a <> 1 AND b >= 2"},
		{"negate like", []string{"negate", "-e", "a LIKE 'foo%'"}, "a NOT LIKE 'foo%'"},
		{"predicate", []string{"predicate", "-e", "LIKE 'x*'"}, "LIKE 'x*'"},
		{"predicate german", []string{"predicate", "--locale", "de-DE", "-e", "WIE 'x*'"}, "WIE 'x*'"},
		{"predicate integer", []string{"predicate", "--type", "INTEGER", "-e", "> 5"}, "> 5"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := run(t, "", tc.args...)
			require.NoError(t, err, stderr)
			assert.Equal(t, tc.want+"\n", stdout)
		})
	}
}

func TestFingerprint(t *testing.T) {
	stdout, _, err := run(t, "", "normalize", "--fingerprint", "-p", "braces",
		"-e", "(a = 1)", "-e", "a = 1", "-e", "a = 2")
	require.NoError(t, err)
	out := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, out, 3)
	fp := make([]string, len(out))
	for i := range out {
		before, after, ok := strings.Cut(out[i], "\t")
		require.True(t, ok, out[i])
		assert.Len(t, before, 64)
		fp[i] = before
		assert.Equal(t, "a = "+"112"[i:i+1], after)
	}
	assert.Equal(t, fp[0], fp[1])
	assert.NotEqual(t, fp[1], fp[2])
}

func TestFailures(t *testing.T) {
	stdout, stderr, err := run(t, "", "render", "-e", "a = ", "-e", "a = 1")
	require.ErrorIs(t, err, errFailed)
	assert.Contains(t, err.Error(), "1 of 2 statements")
	assert.Equal(t, "a = 1\n", stdout)
	assert.Contains(t, stderr, "expr:1: Syntax error")

	_, _, err = run(t, "", "normalize", "-p", "nope", "-e", "a = 1")
	assert.ErrorContains(t, err, `unknown pass "nope"`)

	_, _, err = run(t, "", "render", "--log-level", "loud", "-e", "a = 1")
	assert.ErrorContains(t, err, "--log-level")

	_, _, err = run(t, "", "predicate", "--type", "WIDGET", "-e", "1")
	assert.ErrorContains(t, err, "unknown data type")
}

func TestInputs(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.sql")
	require.NoError(t, os.WriteFile(plain, []byte(lines(
		"-- comment",
		"a = 1",
		"",
		"b = 2",
	)), 0o644))

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write([]byte(lines("c = 3", "d = 4")))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	compressed := filepath.Join(dir, "more.sql.zst")
	require.NoError(t, os.WriteFile(compressed, buf.Bytes(), 0o644))

	stdout, _, err := run(t, "e = 5\n", "render", "-j", "3", plain, compressed, "-")
	require.NoError(t, err)
	assert.Equal(t, lines("a = 1", "b = 2", "c = 3", "d = 4", "e = 5"), stdout)

	// stdin is the default input
	stdout, _, err = run(t, lines("x = 1", "y = 2"), "negate")
	require.NoError(t, err)
	assert.Equal(t, lines("x <> 1", "y <> 2"), stdout)

	_, _, err = run(t, "", "render", filepath.Join(dir, "missing.sql"))
	assert.Error(t, err)
}

func TestBatchOrder(t *testing.T) {
	var in, want strings.Builder
	for i := 0; i < 200; i++ {
		in.WriteString("a = " + strings.Repeat("1", i%7+1) + "\n")
		want.WriteString("a <> " + strings.Repeat("1", i%7+1) + "\n")
	}
	stdout, _, err := run(t, in.String(), "negate", "-j", "8")
	require.NoError(t, err)
	assert.Equal(t, want.String(), stdout)
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "predicate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(lines(
		"locale: de-DE",
		"international: true",
		"quote: true",
		"field:",
		"  name: price",
		"  type: DECIMAL",
	)), 0o644))

	stdout, _, err := run(t, "", "render", "-c", path, "-e", "a LIKE 'x%'")
	require.NoError(t, err)
	assert.Equal(t, `"a" WIE 'x*'`+"\n", stdout)

	// flags override the file
	stdout, _, err = run(t, "", "render", "-c", path, "--quote=false", "-e", "a LIKE 'x%'")
	require.NoError(t, err)
	assert.Equal(t, "a WIE 'x*'\n", stdout)

	stdout, _, err = run(t, "", "predicate", "-c", path, "-e", "> 1,5")
	require.NoError(t, err)
	assert.Equal(t, "> 1,5\n", stdout)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("colour: red\n"), 0o644))
	_, _, err = run(t, "", "render", "-c", bad, "-e", "a = 1")
	assert.ErrorContains(t, err, "bad.yaml")
}

func TestDecodeConfig(t *testing.T) {
	c, err := decodeConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), c)

	c, err = decodeConfig(strings.NewReader(lines(
		"catalog_sep: ':'",
		"store:",
		"  kind: sqlite",
		"  path: /tmp/q.db",
	)))
	require.NoError(t, err)
	sep, err := c.catalogSep()
	require.NoError(t, err)
	assert.Equal(t, byte(':'), sep)
	assert.Equal(t, storeConfig{Kind: "sqlite", Path: "/tmp/q.db"}, c.Store)
	assert.Equal(t, "en-US", c.Locale)

	c.CatalogSep = "::"
	_, err = c.catalogSep()
	assert.Error(t, err)

	_, err = decodeConfig(strings.NewReader(strings.Repeat("#", maxConfigSize+1)))
	assert.ErrorContains(t, err, "size limit")
}

func TestSubstitute(t *testing.T) {
	stdout, _, err := run(t, "", "render", "--substitute", "--store", "testdata/queries.yaml",
		"-e", "SELECT * FROM recent", "-e", "SELECT * FROM raw AS r")
	require.NoError(t, err)
	assert.Equal(t, lines(
		"SELECT * FROM ( SELECT a FROM orders WHERE a > 1 ) AS recent",
		"SELECT * FROM ( SELECT TOP 5 * FROM x ) AS r",
	), stdout)

	_, _, err = run(t, "", "render", "--substitute", "-e", "SELECT * FROM recent")
	assert.ErrorContains(t, err, "--store")
}

func TestQueries(t *testing.T) {
	db := filepath.Join(t.TempDir(), "queries.db")

	stdout, _, err := run(t, "", "queries", "--store", db, "import", "testdata/queries.yaml")
	require.NoError(t, err)
	assert.Equal(t, "imported 2 queries\n", stdout)

	stdout, _, err = run(t, "", "queries", "--store", db, "list")
	require.NoError(t, err)
	assert.Equal(t, lines("raw", "recent"), stdout)

	stdout, _, err = run(t, "", "queries", "--store", db, "export")
	require.NoError(t, err)
	assert.Contains(t, stdout, "name: recent")
	assert.Contains(t, stdout, "command: SELECT a FROM orders WHERE a > 1")

	// the database serves substitutions
	stdout, _, err = run(t, "", "render", "--store", db, "--substitute", "-e", "SELECT * FROM recent")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM ( SELECT a FROM orders WHERE a > 1 ) AS recent\n", stdout)

	stdout, _, err = run(t, "", "queries", "--store", "testdata/queries.yaml", "list")
	require.NoError(t, err)
	assert.Equal(t, lines("raw", "recent"), stdout)

	_, _, err = run(t, "", "queries", "--store", "testdata/queries.yaml", "import", "testdata/queries.yaml")
	assert.ErrorContains(t, err, "sqlite")

	_, _, err = run(t, "", "queries", "list")
	assert.ErrorContains(t, err, "--store")
}

func TestCheck(t *testing.T) {
	stdout, _, err := run(t, "", "check", "-v", "testdata/normalize.test")
	require.NoError(t, err)
	assert.Equal(t, "ok\ttestdata/normalize.test\t4/4\n", stdout)

	stdout, stderr, err := run(t, "", "check", "testdata/normalize.test", "testdata/broken.test")
	require.ErrorIs(t, err, errFailed)
	assert.Equal(t, "FAIL\ttestdata/broken.test\t1/2\n", stdout)
	assert.Contains(t, stderr, `got "a = 1 OR b = 1"`)
}
