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
	"strings"
)

// Order is the order of the day, month and
// year components of a locale's short date.
type Order uint8

const (
	YMD Order = iota // 2023-01-31
	DMY              // 31.01.2023
	MDY              // 01/31/2023
)

func (o Order) String() string {
	switch o {
	case DMY:
		return "DMY"
	case MDY:
		return "MDY"
	default:
		return "YMD"
	}
}

// Fields records which parts of a Time
// were present in the parsed text.
type Fields uint8

const (
	DateField Fields = 1 << iota
	ClockField
)

// Has returns whether all of x are set in f.
func (f Fields) Has(x Fields) bool { return f&x == x }

// twoDigitStart is the first year a two-digit
// year is mapped to; 29 is 2029 and 30 is 1930.
const twoDigitStart = 1930

// Parse parses an ISO date ("2023-01-31"), clock
// ("13:45:00") or timestamp ("2023-01-31 13:45:00",
// with an optional 'T' separator and fraction).
// See ParseOrder.
func Parse(s string) (Time, Fields, bool) {
	return ParseOrder(s, YMD)
}

// ParseOrder parses s as a date, a clock or a date
// followed by a clock, reading the date components in
// the order o. The date components may be separated by
// any one of '-', '.' or '/'. A date whose first component
// has four digits is always read as year-month-day.
// Two-digit years are mapped to the hundred years starting
// in 1930. A clock is hours and minutes with optional
// seconds and fraction, optionally followed by AM or PM.
// Leading and trailing white space is ignored.
//
// ParseOrder returns the parsed time, the fields that
// were present and true, or false if s is not a valid
// date or time.
func ParseOrder(s string, o Order) (Time, Fields, bool) {
	p := &dparser{s: strings.TrimSpace(s)}
	var (
		fields               Fields
		year, month, day     = 0, 1, 1
		hour, min, sec, frac int
	)
	if p.clockAhead() {
		fields |= ClockField
		if !p.clock(&hour, &min, &sec, &frac) {
			return Time{}, 0, false
		}
	} else {
		var ok bool
		year, month, day, ok = p.date(o)
		if !ok {
			return Time{}, 0, false
		}
		fields |= DateField
		if p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == 'T') {
			for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == 'T') {
				p.pos++
			}
			fields |= ClockField
			if !p.clock(&hour, &min, &sec, &frac) {
				return Time{}, 0, false
			}
		}
	}
	if p.pos != len(p.s) {
		return Time{}, 0, false
	}
	if month < 1 || month > 12 || day < 1 || day > daysin(year, month) ||
		hour > 23 || min > 59 || sec > 59 {
		return Time{}, 0, false
	}
	return date(year, month, day, hour, min, sec, frac), fields, true
}

type dparser struct {
	s   string
	pos int
}

func (p *dparser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

// number reads up to max digits and returns
// the value and the number of digits read
func (p *dparser) number(max int) (int, int) {
	v, n := 0, 0
	for n < max && p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		v = v*10 + int(p.s[p.pos]-'0')
		p.pos++
		n++
	}
	return v, n
}

// clockAhead returns whether the
// text starts with "digits ':'"
func (p *dparser) clockAhead() bool {
	i := p.pos
	for i < len(p.s) && p.s[i] >= '0' && p.s[i] <= '9' {
		i++
	}
	return i > p.pos && i < len(p.s) && p.s[i] == ':'
}

func (p *dparser) date(o Order) (year, month, day int, ok bool) {
	var parts [3]int
	var width [3]int
	sep := byte(0)
	for i := range parts {
		if i > 0 {
			c := p.peek()
			if c != '-' && c != '.' && c != '/' {
				return 0, 0, 0, false
			}
			if sep == 0 {
				sep = c
			} else if c != sep {
				return 0, 0, 0, false
			}
			p.pos++
		}
		parts[i], width[i] = p.number(4)
		if width[i] == 0 {
			return 0, 0, 0, false
		}
	}
	// a trailing dot is common in DMY locales
	if sep == '.' && p.peek() == '.' {
		p.pos++
	}
	if width[0] == 4 {
		o = YMD
	}
	ywidth := 0
	switch o {
	case DMY:
		day, month, year, ywidth = parts[0], parts[1], parts[2], width[2]
	case MDY:
		month, day, year, ywidth = parts[0], parts[1], parts[2], width[2]
	default:
		year, month, day, ywidth = parts[0], parts[1], parts[2], width[0]
	}
	if ywidth <= 2 {
		year += twoDigitStart / 100 * 100
		if year < twoDigitStart {
			year += 100
		}
	}
	return year, month, day, true
}

func (p *dparser) clock(hour, min, sec, frac *int) bool {
	var n int
	if *hour, n = p.number(2); n == 0 || p.peek() != ':' {
		return false
	}
	p.pos++
	if *min, n = p.number(2); n != 2 {
		return false
	}
	if p.peek() == ':' {
		p.pos++
		if *sec, n = p.number(2); n != 2 {
			return false
		}
		if c := p.peek(); c == '.' || c == ',' {
			p.pos++
			v, digits := p.number(9)
			if digits == 0 {
				return false
			}
			for i := digits; i < 9; i++ {
				v *= 10
			}
			*frac = v
			// digits beyond nanoseconds are dropped
			p.number(len(p.s))
		}
	}
	rest := strings.TrimLeft(p.s[p.pos:], " ")
	if len(rest) >= 2 {
		suffix := strings.ToUpper(rest[:2])
		if suffix == "AM" || suffix == "PM" {
			if *hour < 1 || *hour > 12 {
				return false
			}
			if suffix == "AM" && *hour == 12 {
				*hour = 0
			} else if suffix == "PM" && *hour != 12 {
				*hour += 12
			}
			p.pos = len(p.s) - len(rest) + 2
		}
	}
	return true
}
