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

package tree

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error and every error returned
// by the renderer matches exactly one of these with errors.Is.
var (
	ErrParse              = errors.New("parse error")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidLikeOperand = errors.New("invalid LIKE operand")
	ErrCyclicSubquery     = errors.New("cyclic sub queries")
	ErrStructure          = errors.New("malformed tree")
)

// ErrorCode is the closed set of conditions
// for which a Context provides a message.
type ErrorCode int

const (
	CodeGeneral ErrorCode = iota + 1
	CodeValueNoLike
	CodeFieldNoLike
	CodeInvalidCompare
	CodeInvalidIntCompare
	CodeInvalidDateCompare
	CodeInvalidRealCompare
	CodeInvalidTableNosuch
	CodeInvalidTableOrQuery
	CodeInvalidColumn
	CodeInvalidTableExist
	CodeInvalidQueryExist
	CodeCyclicSubqueries

	numCodes
)

// english holds the message for each code. The strings
// double as the message catalog keys (see Context).
var english = [numCodes]string{
	CodeGeneral:             "Syntax error in SQL expression",
	CodeValueNoLike:         "The value #1 can not be used with LIKE.",
	CodeFieldNoLike:         "LIKE can not be used with this field.",
	CodeInvalidCompare:      "The entered criterion can not be compared with this field.",
	CodeInvalidIntCompare:   "The field can not be compared with a number.",
	CodeInvalidDateCompare:  "The field can not be compared with a date.",
	CodeInvalidRealCompare:  "The field can not be compared with a floating point number.",
	CodeInvalidTableNosuch:  "The database does not contain a table named \"#\".",
	CodeInvalidTableOrQuery: "The database does contain neither a table nor a query named \"#\".",
	CodeInvalidColumn:       "The column \"#1\" is unknown in the table \"#2\".",
	CodeInvalidTableExist:   "The database already contains a table or view with name \"#\".",
	CodeInvalidQueryExist:   "The database already contains a query with name \"#\".",
	CodeCyclicSubqueries:    "The statement contains a cyclic reference to one or more sub queries.",
}

// Kind returns the error kind sentinel of c.
func (c ErrorCode) Kind() error {
	switch c {
	case CodeValueNoLike, CodeFieldNoLike:
		return ErrInvalidLikeOperand
	case CodeInvalidCompare, CodeInvalidIntCompare, CodeInvalidRealCompare:
		return ErrTypeMismatch
	case CodeInvalidDateCompare:
		return ErrInvalidDate
	case CodeCyclicSubqueries:
		return ErrCyclicSubquery
	default:
		return ErrParse
	}
}

func (c ErrorCode) String() string {
	if c <= 0 || c >= numCodes {
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
	return english[c]
}

// Error is an error produced while building a tree.
// Message is the (possibly localized) text presented
// to the user.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Code.Kind()
}

// ShapeError reports a rule node whose children do
// not match the production it claims to instantiate.
type ShapeError struct {
	Node   *Node
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("tree: malformed %s: %s", e.Node.Rule(), e.Reason)
}

// Is reports whether target is ErrStructure.
func (e *ShapeError) Is(target error) bool { return target == ErrStructure }
