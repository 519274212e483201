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
	"fmt"
	"strings"

	"github.com/SnellerInc/predicate/script"
	"github.com/SnellerInc/predicate/tree"
	"github.com/SnellerInc/predicate/tree/render"
	"github.com/SnellerInc/predicate/tree/sqlparse"

	"github.com/spf13/cobra"
)

// run is the RunE of the commands that
// transform statements one by one
func (a *app) run(cmd *cobra.Command, exprs, args []string, fn work) error {
	return a.runBatch(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), exprs, args, fn)
}

func (a *app) parse(p *sqlparse.Parser, text string) (*tree.Node, error) {
	return p.ParseTree(text, a.cfg.International)
}

func (a *app) render(p *sqlparse.Parser, n *tree.Node) (string, error) {
	opts, err := a.options(p)
	if err != nil {
		return "", err
	}
	return render.String(n, opts)
}

func newParseCommand(a *app) *cobra.Command {
	var exprs []string
	var check bool
	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Print the parse tree of statements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, exprs, args, func(p *sqlparse.Parser, text string) (string, error) {
				n, err := a.parse(p, text)
				if err != nil {
					return "", err
				}
				if check {
					if err := tree.CheckShape(n); err != nil {
						return "", err
					}
				}
				return strings.TrimRight(n.String(), "\n"), nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "statement to parse (repeatable)")
	cmd.Flags().BoolVar(&check, "check", false, "verify the shape of every rule node")
	return cmd
}

func newRenderCommand(a *app) *cobra.Command {
	var (
		exprs      []string
		substitute bool
		paramNames bool
		escapeDT   bool
	)
	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Parse statements and render them back to text",
		Long: `render parses statements and renders them with the
quoting and keyword settings of the configuration.

With --substitute, references to stored queries in
FROM clauses are replaced with the text of the query,
which is taken from the --store definitions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if substitute && a.store == nil {
				return fmt.Errorf("--substitute requires --store")
			}
			return a.run(cmd, exprs, args, func(p *sqlparse.Parser, text string) (string, error) {
				n, err := a.parse(p, text)
				if err != nil {
					return "", err
				}
				opts, err := a.options(p)
				if err != nil {
					return "", err
				}
				opts.Substitute = substitute
				opts.SubstituteParameterNames = paramNames
				opts.EscapeDateTime = escapeDT
				return render.String(n, opts)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "statement to render (repeatable)")
	cmd.Flags().BoolVar(&substitute, "substitute", false, "substitute stored queries")
	cmd.Flags().BoolVar(&paramNames, "param-names", false, "render named parameters as '?' when substituting")
	cmd.Flags().BoolVar(&escapeDT, "escape-datetime", false, "keep ODBC date escapes intact")
	return cmd
}

func newPredicateCommand(a *app) *cobra.Command {
	var (
		exprs    []string
		sql      bool
		escapeDT bool
	)
	cmd := &cobra.Command{
		Use:   "predicate [file...]",
		Short: "Parse query filters on a single field",
		Long: `predicate parses the criteria a user enters for a
single field, such as "> 5" or "LIKE 'a*'", in the
language of --locale. Criteria without a left operand
apply to the field named by --field, whose SQL type
(--type) decides how literals are converted.

The result is rendered the way it is presented for
editing, or as SQL with --sql.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := a.cfg.field()
			if err != nil {
				return err
			}
			return a.run(cmd, exprs, args, func(p *sqlparse.Parser, text string) (string, error) {
				n, err := p.PredicateTree(text, a.fmtr, field)
				if err != nil {
					return "", err
				}
				opts, err := a.options(p)
				if err != nil {
					return "", err
				}
				if !sql {
					opts.Predicate = true
					opts.International = true
					opts.Field = field
					opts.Formatter = a.fmtr
					opts.DecimalSep = a.fmtr.DecimalSeparator()
				}
				opts.EscapeDateTime = escapeDT
				return render.String(n, opts)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "criterion to parse (repeatable)")
	cmd.Flags().BoolVar(&sql, "sql", false, "render as SQL")
	cmd.Flags().BoolVar(&escapeDT, "escape-datetime", false, "wrap dates with '#'")
	return cmd
}

func newNormalizeCommand(a *app) *cobra.Command {
	var (
		exprs       []string
		passes      []string
		fingerprint bool
	)
	cmd := &cobra.Command{
		Use:   "normalize [file...]",
		Short: "Apply boolean normalizations to search conditions",
		Long: `normalize applies the passes named by --passes, in
order, to each statement and renders the result.
The passes are:

  absorb    absorption laws
  braces    remove redundant parentheses
  dnf       disjunctive normal form
  compress  factor out common operands
  negate    negate the condition
  pushnot   push NOT operators down to the predicates`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range passes {
				if _, ok := script.Lookup(name); !ok {
					return fmt.Errorf("unknown pass %q (have %s)", name, strings.Join(script.Names(), ", "))
				}
			}
			return a.run(cmd, exprs, args, func(p *sqlparse.Parser, text string) (string, error) {
				n, err := a.parse(p, text)
				if err != nil {
					return "", err
				}
				n, err = script.Apply(n, passes)
				if err != nil {
					return "", err
				}
				out, err := a.render(p, n)
				if err != nil {
					return "", err
				}
				if fingerprint {
					out = tree.FingerprintOf(n).String() + "\t" + out
				}
				return out, nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "statement to normalize (repeatable)")
	cmd.Flags().StringSliceVarP(&passes, "passes", "p", []string{"absorb"}, "passes to apply")
	cmd.Flags().BoolVar(&fingerprint, "fingerprint", false, "prefix the output with the fingerprint of the tree")
	return cmd
}

func newNegateCommand(a *app) *cobra.Command {
	var exprs []string
	cmd := &cobra.Command{
		Use:   "negate [file...]",
		Short: "Negate search conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, exprs, args, func(p *sqlparse.Parser, text string) (string, error) {
				n, err := a.parse(p, text)
				if err != nil {
					return "", err
				}
				return a.render(p, tree.NegateSearchCondition(n, true))
			})
		},
	}
	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "condition to negate (repeatable)")
	return cmd
}
