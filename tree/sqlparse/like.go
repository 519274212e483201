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

package sqlparse

import (
	"strings"
)

// ConvertLike translates the wildcards of a LIKE pattern.
// With toInternational set, the SQL wildcards '%' and '_'
// become '*' and '?'; otherwise '*' and '?' become '%' and
// '_'. A wildcard preceded by the escape character is left
// alone. An escape of 0 means the pattern has no escape.
func ConvertLike(pattern string, escape rune, toInternational bool) string {
	from, to := "*?", "%_"
	if toInternational {
		from, to = to, from
	}
	if !strings.ContainsAny(pattern, from) {
		return pattern
	}
	var b strings.Builder
	b.Grow(len(pattern))
	prev := rune(0)
	for _, r := range pattern {
		if escape == 0 || prev != escape {
			switch r {
			case rune(from[0]):
				b.WriteByte(to[0])
				prev = r
				continue
			case rune(from[1]):
				b.WriteByte(to[1])
				prev = r
				continue
			}
		}
		b.WriteRune(r)
		if escape != 0 && prev == escape && r == escape {
			// a doubled escape escapes nothing
			prev = 0
			continue
		}
		prev = r
	}
	return b.String()
}
