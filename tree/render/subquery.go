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
	"fmt"
	"strings"

	"github.com/SnellerInc/predicate/tree"

	"go.uber.org/zap"
)

// aliased returns whether the table_ref
// holding name has an alias
func aliased(name *tree.Node) bool {
	ref := name.Parent()
	for _, c := range ref.Children() {
		if c.Is(tree.AsClause) {
			return true
		}
	}
	return false
}

// substitute replaces a table_name that names a stored
// query with the command of the query. It returns false
// when the name is not substituted and should be
// rendered as it is.
func (r *renderer) substitute(dst *strings.Builder, n *tree.Node, st state) (bool, error) {
	o := r.opts
	if !o.Substitute || o.Queries == nil || n.Len() != 1 || !n.Parent().Is(tree.TableRef) {
		return false, nil
	}
	name := n.Child(0).Text()
	command, escape, ok, err := o.Queries.Resolve(name)
	if err != nil {
		return false, fmt.Errorf("render: resolving %q: %w", name, err)
	}
	if !ok {
		return false, nil
	}
	if _, ok := r.history[name]; ok {
		return false, &CyclicSubqueryError{
			Name:    name,
			Message: r.ctx.ErrorMessage(tree.CodeCyclicSubqueries),
		}
	}
	if r.history == nil {
		r.history = make(map[string]struct{})
	}
	r.history[name] = struct{}{}
	// the same query may appear again
	// once this substitution is done
	defer delete(r.history, name)

	if escape && o.Parser != nil {
		sub, err := o.Parser.ParseTree(command, false)
		if err != nil {
			r.log.Debug("stored query substituted verbatim",
				zap.String("query", name), zap.Error(err))
		} else {
			var text strings.Builder
			inner := st
			inner.simple = false
			if err := r.node(&text, sub, inner); err != nil {
				return false, err
			}
			if text.Len() > 0 {
				command = text.String()
			}
		}
	}
	r.log.Debug("substituted stored query",
		zap.String("query", name), zap.Bool("escape_processing", escape),
		zap.String("command", tree.RedactText(command)))

	lead(dst)
	dst.WriteString("( ")
	dst.WriteString(command)
	dst.WriteString(" )")
	if !aliased(n) {
		dst.WriteString(" AS ")
		if st.quote {
			quoteWith(dst, name, r.quote)
		} else {
			dst.WriteString(name)
		}
	}
	return true, nil
}
