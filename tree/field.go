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
	"fmt"
	"strings"
)

// DataType is the declared SQL type of a field.
type DataType int

const (
	TypeOther DataType = iota
	TypeBit
	TypeBoolean
	TypeTinyInt
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeFloat
	TypeReal
	TypeDouble
	TypeNumeric
	TypeDecimal
	TypeChar
	TypeVarChar
	TypeLongVarChar
	TypeClob
	TypeDate
	TypeTime
	TypeTimestamp
	TypeBinary
	TypeBlob
)

var typenames = [...]string{
	TypeOther:       "OTHER",
	TypeBit:         "BIT",
	TypeBoolean:     "BOOLEAN",
	TypeTinyInt:     "TINYINT",
	TypeSmallInt:    "SMALLINT",
	TypeInteger:     "INTEGER",
	TypeBigInt:      "BIGINT",
	TypeFloat:       "FLOAT",
	TypeReal:        "REAL",
	TypeDouble:      "DOUBLE",
	TypeNumeric:     "NUMERIC",
	TypeDecimal:     "DECIMAL",
	TypeChar:        "CHAR",
	TypeVarChar:     "VARCHAR",
	TypeLongVarChar: "LONGVARCHAR",
	TypeClob:        "CLOB",
	TypeDate:        "DATE",
	TypeTime:        "TIME",
	TypeTimestamp:   "TIMESTAMP",
	TypeBinary:      "BINARY",
	TypeBlob:        "BLOB",
}

func (t DataType) String() string {
	if t >= 0 && int(t) < len(typenames) {
		return typenames[t]
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// ParseDataType returns the type named s (ignoring case).
func ParseDataType(s string) (DataType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range typenames {
		if name == s {
			return DataType(i), nil
		}
	}
	return TypeOther, fmt.Errorf("tree.ParseDataType: unknown data type %q", s)
}

// IsCharacter returns whether t holds character data.
func (t DataType) IsCharacter() bool {
	switch t {
	case TypeChar, TypeVarChar, TypeLongVarChar, TypeClob:
		return true
	}
	return false
}

// IsTemporal returns whether t is a date or time type.
func (t DataType) IsTemporal() bool {
	return t == TypeDate || t == TypeTime || t == TypeTimestamp
}

// IsNumeric returns whether t is a numeric type.
func (t DataType) IsNumeric() bool {
	switch t {
	case TypeBit, TypeBoolean, TypeTinyInt, TypeSmallInt,
		TypeInteger, TypeBigInt:
		return true
	}
	return t.IsApprox()
}

// IsApprox returns whether t accepts approximate
// (fractional) numeric literals.
func (t DataType) IsApprox() bool {
	switch t {
	case TypeFloat, TypeReal, TypeDouble, TypeNumeric, TypeDecimal:
		return true
	}
	return false
}

// Field describes the column a predicate is bound to.
type Field struct {
	// Name is the (possibly aliased) column name.
	Name string
	// RealName is the underlying column name, if known.
	RealName string
	// Type is the declared type of the column.
	Type DataType
	// FormatKey selects a number format; zero means none.
	FormatKey int
	// TableAlias is the table range the column
	// belongs to, used when matching qualified
	// column references.
	TableAlias string
}

// ColumnName returns the name used to refer
// to f in a synthesized column reference.
func (f *Field) ColumnName(real bool) string {
	if real && f.RealName != "" {
		return f.RealName
	}
	return f.Name
}

// Matches returns whether a column reference with the
// given table qualifier (possibly empty) and column
// name refers to f, either by its name or by its real
// name. Names compare case-insensitively.
func (f *Field) Matches(table, column string) bool {
	if table != "" && !strings.EqualFold(table, f.TableAlias) {
		return false
	}
	return strings.EqualFold(column, f.Name) ||
		(f.RealName != "" && strings.EqualFold(column, f.RealName))
}

// MatchesColumn returns whether x is a column_ref
// referring to f. Only the last two names of a
// qualified reference (table and column) are compared.
func (f *Field) MatchesColumn(x *Node) bool {
	if f == nil || x == nil || !x.Is(ColumnRef) {
		return false
	}
	var names []string
	for _, c := range x.children {
		if c.kind == NameKind {
			names = append(names, c.text)
		}
	}
	switch len(names) {
	case 0:
		return false
	case 1:
		return f.Matches("", names[0])
	default:
		return f.Matches(names[len(names)-2], names[len(names)-1])
	}
}
