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

package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SnellerInc/predicate/tree"
	"github.com/SnellerInc/predicate/tree/render"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Pass is a normalization pass. It returns
// the node that takes the place of its argument.
type Pass func(n *tree.Node) *tree.Node

var passes = map[string]Pass{
	"absorb":   tree.Absorptions,
	"braces":   tree.EraseBraces,
	"dnf":      tree.DisjunctiveNormalForm,
	"compress": tree.Compress,
	"negate": func(n *tree.Node) *tree.Node {
		return tree.NegateSearchCondition(n, true)
	},
	"pushnot": func(n *tree.Node) *tree.Node {
		return tree.NegateSearchCondition(n, false)
	},
}

// Lookup returns the pass called name.
func Lookup(name string) (Pass, bool) {
	p, ok := passes[name]
	return p, ok
}

// Names returns the names of all passes.
func Names() []string {
	names := maps.Keys(passes)
	slices.Sort(names)
	return names
}

// Apply applies the named passes to n in order
// and returns the resulting tree.
func Apply(n *tree.Node, names []string) (*tree.Node, error) {
	for _, name := range names {
		p, ok := passes[name]
		if !ok {
			return nil, fmt.Errorf("script: unknown pass %q", name)
		}
		n = p(n)
	}
	return n, nil
}

// Failure is a check that did not pass.
type Failure struct {
	Check  *Check
	Reason string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %s", f.Check.Location, f.Check, f.Reason)
}

// Runner runs checks.
type Runner struct {
	// Parser parses inputs and expected
	// statements. It must not be nil.
	Parser render.Parser
	// International parses statements
	// with international keywords.
	International bool
	// Logger receives each check at
	// debug level. nil disables logging.
	Logger *zap.Logger
}

func (r *Runner) fail(c *Check, format string, args ...any) error {
	return &Failure{Check: c, Reason: fmt.Sprintf(format, args...)}
}

// Run runs the check c. Checks that do
// not pass produce a *Failure.
func (r *Runner) Run(c *Check) error {
	n, err := r.Parser.ParseTree(c.Input, r.International)
	if c.WantErr {
		if err == nil {
			return r.fail(c, "parsed without error")
		}
		if !strings.Contains(err.Error(), c.Want) {
			return r.fail(c, "error %q does not contain %q", err, c.Want)
		}
		return nil
	}
	if err != nil {
		return r.fail(c, "parsing input: %v", err)
	}
	got, err := Apply(n, c.Passes)
	if err != nil {
		return r.fail(c, "%v", err)
	}
	want, err := r.Parser.ParseTree(c.Want, r.International)
	if err != nil {
		return r.fail(c, "parsing result: %v", err)
	}
	if !tree.Equal(got, want) {
		text, err := render.String(got, nil)
		if err != nil {
			text = got.String()
		}
		return r.fail(c, "got %q", text)
	}
	if err := tree.CheckShape(got); err != nil {
		return r.fail(c, "%v", err)
	}
	return nil
}

// RunAll runs every check in lst and returns
// the number of checks that passed along
// with the failures joined together.
func (r *Runner) RunAll(lst []Check) (int, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var errs []error
	passed := 0
	for i := range lst {
		err := r.Run(&lst[i])
		log.Debug("check",
			zap.Stringer("location", lst[i].Location),
			zap.Strings("passes", lst[i].Passes),
			zap.Bool("ok", err == nil))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		passed++
	}
	return passed, errors.Join(errs...)
}
