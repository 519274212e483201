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
	"os"
	"path/filepath"

	"github.com/SnellerInc/predicate/querystore"

	"github.com/spf13/cobra"
)

func newQueriesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Manage stored queries",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the names of stored queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.queryNames(cmd)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import definitions.yaml",
		Short: "Copy query definitions into the SQLite store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, ok := a.store.(*querystore.SQLite)
			if !ok {
				return fmt.Errorf("import requires a sqlite --store")
			}
			defs, err := querystore.OpenYAML(os.DirFS(filepath.Dir(args[0])), filepath.Base(args[0]))
			if err != nil {
				return err
			}
			if err := db.Import(cmd.Context(), defs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d queries\n", defs.Len())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Write the stored queries as YAML definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.queryNames(cmd)
			if err != nil {
				return err
			}
			out := new(querystore.Map)
			for _, name := range names {
				command, escape, ok, err := a.store.Resolve(name)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				err = out.Put(querystore.Query{Name: name, Command: command, EscapeProcessing: escape})
				if err != nil {
					return err
				}
			}
			return querystore.EncodeYAML(cmd.OutOrStdout(), out)
		},
	})
	return cmd
}

func (a *app) queryNames(cmd *cobra.Command) ([]string, error) {
	switch s := a.store.(type) {
	case nil:
		return nil, fmt.Errorf("no --store configured")
	case *querystore.Map:
		return s.Names(), nil
	case *querystore.SQLite:
		return s.Names(cmd.Context())
	default:
		return nil, fmt.Errorf("cannot list queries of %T", s)
	}
}
