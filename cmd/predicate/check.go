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
	"errors"
	"fmt"
	"os"

	"github.com/SnellerInc/predicate/script"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCheckCommand(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "check script...",
		Short: "Run normalization check scripts",
		Long: `check runs the normalization checks of each script.
A check names the passes to apply, the input and
the expected result:

  absorb "a = 1 AND (a = 1 OR b = 1)" -> "a = 1"
  (dnf compress) "a = 1 AND (b = 1 OR c = 1)" -> "a = 1 AND (b = 1 OR c = 1)"
  () "a = " -> error:"Syntax error"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &script.Runner{
				Parser:        a.parser(),
				International: a.cfg.International,
				Logger:        a.log,
			}
			out := cmd.OutOrStdout()
			var errs []error
			for _, name := range args {
				f, err := os.Open(name)
				if err != nil {
					return err
				}
				checks, err := script.Parse(f)
				f.Close()
				if err != nil {
					return err
				}
				passed, err := r.RunAll(checks)
				a.log.Info("ran checks",
					zap.String("script", name),
					zap.Int("checks", len(checks)),
					zap.Int("passed", passed))
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", err)
					fmt.Fprintf(out, "FAIL\t%s\t%d/%d\n", name, passed, len(checks))
					errs = append(errs, fmt.Errorf("%s: %d checks %w", name, len(checks)-passed, errFailed))
					continue
				}
				if verbose {
					fmt.Fprintf(out, "ok\t%s\t%d/%d\n", name, passed, len(checks))
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "report scripts that pass")
	return cmd
}
