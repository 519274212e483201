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

package querystore

import (
	"fmt"
	"io"
	"io/fs"

	"sigs.k8s.io/yaml"
)

// File is the layout of a query definition file.
// Definition files are YAML (or JSON, which is
// a subset of YAML):
//
//	queries:
//	  - name: recent
//	    command: SELECT * FROM orders WHERE year > 2020
//	    escape_processing: true
type File struct {
	Queries []Query `json:"queries"`
}

// just pick an upper limit to prevent DoS
const maxFileSize = 1024 * 1024

// DecodeYAML decodes a definition file from
// src. Unknown fields are rejected.
//
// See also: OpenYAML
func DecodeYAML(src io.Reader) (*Map, error) {
	buf, err := io.ReadAll(io.LimitReader(src, maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(buf) > maxFileSize {
		return nil, fmt.Errorf("querystore: definitions beyond size limit %d", maxFileSize)
	}
	var f File
	if err := yaml.UnmarshalStrict(buf, &f); err != nil {
		return nil, fmt.Errorf("querystore: decoding definitions: %w", err)
	}
	return NewMap(f.Queries...)
}

// OpenYAML decodes the definition file
// at path within s.
func OpenYAML(s fs.FS, path string) (*Map, error) {
	f, err := s.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("querystore: %s of size %d beyond limit %d", path, info.Size(), maxFileSize)
	}
	m, err := DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// EncodeYAML writes the queries of
// m to dst as a definition file.
func EncodeYAML(dst io.Writer, m *Map) error {
	buf, err := yaml.Marshal(&File{Queries: m.Queries()})
	if err != nil {
		return err
	}
	_, err = dst.Write(buf)
	return err
}
