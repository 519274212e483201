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

package date

import (
	"strconv"
)

// AppendDate appends the ODBC date form
// of t ("2023-01-31") to b.
func (t Time) AppendDate(b []byte) []byte {
	return t.AppendOrder(b, YMD, '-')
}

// AppendClock appends the ODBC time form of t
// ("13:45:00") to b. A nonzero fraction of a second
// is appended with trailing zeros removed.
func (t Time) AppendClock(b []byte) []byte {
	b = appendInt(b, t.Hour(), 2, false)
	b = append(b, ':')
	b = appendInt(b, t.Minute(), 2, false)
	b = append(b, ':')
	b = appendInt(b, t.Second(), 2, false)
	if t.ns != 0 {
		b = append(b, '.')
		b = appendInt(b, int(t.ns), 9, true)
	}
	return b
}

// AppendTimestamp appends the ODBC timestamp
// form of t ("2023-01-31 13:45:00") to b.
func (t Time) AppendTimestamp(b []byte) []byte {
	b = t.AppendDate(b)
	b = append(b, ' ')
	return t.AppendClock(b)
}

// AppendOrder appends the date of t with its
// components in the order o, separated by sep.
// Years are always written with four digits.
func (t Time) AppendOrder(b []byte, o Order, sep byte) []byte {
	y, m, d := t.Year(), t.Month(), t.Day()
	switch o {
	case DMY:
		b = appendInt(b, d, 2, false)
		b = append(b, sep)
		b = appendInt(b, m, 2, false)
		b = append(b, sep)
		return appendInt(b, y, 4, false)
	case MDY:
		b = appendInt(b, m, 2, false)
		b = append(b, sep)
		b = appendInt(b, d, 2, false)
		b = append(b, sep)
		return appendInt(b, y, 4, false)
	default:
		b = appendInt(b, y, 4, false)
		b = append(b, sep)
		b = appendInt(b, m, 2, false)
		b = append(b, sep)
		return appendInt(b, d, 2, false)
	}
}

// appendInt appends x zero-padded to width digits.
// With trim, trailing zeros of the digits are dropped,
// keeping at least one.
func appendInt(b []byte, x, width int, trim bool) []byte {
	if x < 0 {
		b = append(b, '-')
		x = -x
	}
	start := len(b)
	digits := strconv.Itoa(x)
	for i := len(digits); i < width; i++ {
		b = append(b, '0')
	}
	b = append(b, digits...)
	if trim {
		for len(b) > start+1 && b[len(b)-1] == '0' {
			b = b[:len(b)-1]
		}
	}
	return b
}
