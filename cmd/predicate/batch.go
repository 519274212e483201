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
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/SnellerInc/predicate/tree/sqlparse"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// work transforms one statement with the
// parser owned by the calling worker
type work func(p *sqlparse.Parser, text string) (string, error)

type result struct {
	out string
	err error
}

// batch applies fn to every statement using
// up to cfg.Jobs workers, each with its own parser.
// The results are in the order of stmts.
func (a *app) batch(ctx context.Context, stmts []statement, fn work) ([]result, error) {
	res := make([]result, len(stmts))
	jobs := a.cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(stmts) {
		jobs = len(stmts)
	}
	next := make(chan int)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(next)
		for i := range stmts {
			select {
			case next <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < jobs; w++ {
		g.Go(func() error {
			p := a.parser()
			for i := range next {
				out, err := fn(p, stmts[i].text)
				res[i] = result{out: out, err: err}
				if err != nil {
					a.log.Debug("statement failed",
						zap.Stringer("input", &stmts[i]),
						a.statementField(stmts[i].text),
						zap.Error(err))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// report writes the output of each result to stdout
// and each error, prefixed by the position of its
// statement, to stderr.
func report(stdout, stderr io.Writer, stmts []statement, res []result) error {
	failed := 0
	for i := range res {
		if res[i].err != nil {
			failed++
			fmt.Fprintf(stderr, "%s: %s\n", &stmts[i], res[i].err)
			continue
		}
		fmt.Fprintln(stdout, res[i].out)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d statements %w", failed, len(res), errFailed)
	}
	return nil
}

// runBatch reads the statements named by the command
// line and applies fn to each of them.
func (a *app) runBatch(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, exprs, names []string, fn work) error {
	stmts, err := readStatements(stdin, exprs, names)
	if err != nil {
		return err
	}
	if len(stmts) == 0 {
		return nil
	}
	res, err := a.batch(ctx, stmts, fn)
	if err != nil {
		return err
	}
	return report(stdout, stderr, stmts, res)
}
