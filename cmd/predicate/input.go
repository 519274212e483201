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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// statement is one input statement
type statement struct {
	source string
	line   int
	text   string
}

func (s *statement) String() string {
	return fmt.Sprintf("%s:%d", s.source, s.line)
}

// maxLine is the longest accepted statement
const maxLine = 1024 * 1024

// scanStatements appends the statements of src,
// one per line, skipping empty lines and comments
func scanStatements(dst []statement, source string, src io.Reader) ([]statement, error) {
	s := bufio.NewScanner(src)
	s.Buffer(make([]byte, 0, 4096), maxLine)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, "--") {
			continue
		}
		dst = append(dst, statement{source: source, line: line, text: text})
	}
	if err := s.Err(); err != nil {
		return dst, fmt.Errorf("%s:%d: %w", source, line+1, err)
	}
	return dst, nil
}

// openInput opens the named file,
// decompressing it if it ends in .zst
func openInput(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &zstdFile{Decoder: dec, file: f}, nil
}

type zstdFile struct {
	*zstd.Decoder
	file *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.file.Close()
}

// readStatements collects the statements of exprs
// followed by those of the named files. Without
// either, statements are read from stdin; the
// name "-" also means stdin.
func readStatements(stdin io.Reader, exprs, names []string) ([]statement, error) {
	var out []statement
	for i, e := range exprs {
		out = append(out, statement{source: "expr", line: i + 1, text: e})
	}
	if len(exprs) == 0 && len(names) == 0 {
		names = []string{"-"}
	}
	for _, name := range names {
		var err error
		if name == "-" {
			out, err = scanStatements(out, "stdin", stdin)
			if err != nil {
				return nil, err
			}
			continue
		}
		f, err := openInput(name)
		if err != nil {
			return nil, err
		}
		out, err = scanStatements(out, name, f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
