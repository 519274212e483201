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

// DeleteComments removes "--" and "//" line comments
// and "/* */" block comments from text. Comment markers
// inside single- or double-quoted text are kept. A line
// comment keeps its terminating newline.
func DeleteComments(text string) string {
	if !strings.Contains(text, "--") && !strings.Contains(text, "//") && !strings.Contains(text, "/*") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			b.WriteByte(c)
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '-', '/':
			if i+1 < len(text) && text[i+1] == c {
				end := strings.IndexByte(text[i:], '\n')
				if end < 0 {
					return b.String()
				}
				i += end - 1
				continue
			}
			if c == '/' && i+1 < len(text) && text[i+1] == '*' {
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					return b.String()
				}
				i += end + 3
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
