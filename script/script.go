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

// Package script reads and runs scripts of
// normalization checks. The syntax is as follows:
//
//	comment = < go comment syntax >
//	string = < go double-quote syntax > | < go backtick syntax >
//	check = passes string '->' result
//	passes = identifier | '(' {identifier} ')'
//	result = string | 'error' ':' string
//
// For example:
//
//	// here is a line comment
//	absorb "a = 1 AND (a = 1 OR b = 1)" -> "a = 1"
//	(dnf compress) "a = 1 AND (b = 1 OR c = 1)" -> "a = 1 AND (b = 1 OR c = 1)"
//	() "a = " -> error:"Syntax error"
//
// The input of a check is parsed, the passes are
// applied to it in order, and the result must be
// structurally equal to the parsed expected statement.
package script

import (
	"io"
	"strconv"
	"strings"
	"text/scanner"

	"golang.org/x/exp/slices"
)

// Check is one check of a script.
type Check struct {
	// Passes are the names of the
	// passes applied to Input.
	Passes []string
	// Input is the statement to parse.
	Input string
	// Want is the expected statement, or
	// part of the expected error message
	// if WantErr is set.
	Want string
	// WantErr indicates that Input
	// must fail to parse.
	WantErr bool
	// Location is the position
	// at which the check began.
	Location scanner.Position
}

// String implements fmt.Stringer
//
// String returns the canonical
// textual representation of c.
func (c *Check) String() string {
	var out strings.Builder
	if len(c.Passes) == 1 {
		out.WriteString(c.Passes[0])
	} else {
		out.WriteByte('(')
		out.WriteString(strings.Join(c.Passes, " "))
		out.WriteByte(')')
	}
	out.WriteByte(' ')
	out.WriteString(strconv.Quote(c.Input))
	out.WriteString(" -> ")
	if c.WantErr {
		out.WriteString("error:")
	}
	out.WriteString(strconv.Quote(c.Want))
	return out.String()
}

// Equal returns true if two checks are equal,
// or false otherwise. Equal does not compare
// the Location field.
func (c *Check) Equal(o *Check) bool {
	return slices.Equal(c.Passes, o.Passes) &&
		c.Input == o.Input &&
		c.Want == o.Want &&
		c.WantErr == o.WantErr
}

// WriteTo writes formatted checks to dst.
// Each check is written on its own line.
func WriteTo(dst io.Writer, lst []Check) (int64, error) {
	n := int64(0)
	for i := range lst {
		nn, err := io.WriteString(dst, lst[i].String())
		n += int64(nn)
		if err != nil {
			return n, err
		}
		nn, err = io.WriteString(dst, "\n")
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
