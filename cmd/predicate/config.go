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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/SnellerInc/predicate/querystore"
	"github.com/SnellerInc/predicate/tree"

	"sigs.k8s.io/yaml"
)

// config is the configuration file of the
// command. Every setting can be overridden
// with the flag of the same name.
type config struct {
	Locale          string      `json:"locale"`
	International   bool        `json:"international"`
	Quote           bool        `json:"quote"`
	IdentifierQuote string      `json:"identifier_quote,omitempty"`
	CatalogSep      string      `json:"catalog_sep,omitempty"`
	UseRealName     bool        `json:"use_real_name,omitempty"`
	LogLevel        string      `json:"log_level"`
	LogStatements   bool        `json:"log_statements,omitempty"`
	Jobs            int         `json:"jobs,omitempty"`
	Store           storeConfig `json:"store"`
	Field           fieldConfig `json:"field"`
}

// storeConfig selects the stored query backend.
type storeConfig struct {
	// Kind is "yaml" or "sqlite"; empty means
	// guess from the extension of Path.
	Kind string `json:"kind,omitempty"`
	Path string `json:"path,omitempty"`
}

// fieldConfig describes the field predicates
// are bound to.
type fieldConfig struct {
	Name      string `json:"name"`
	RealName  string `json:"real_name,omitempty"`
	Type      string `json:"type"`
	FormatKey int    `json:"format_key,omitempty"`
	Table     string `json:"table,omitempty"`
}

func defaultConfig() config {
	return config{
		Locale:   "en-US",
		LogLevel: "warn",
		Field: fieldConfig{
			Name: "value",
			Type: "VARCHAR",
		},
	}
}

// maxConfigSize is the largest accepted configuration file
const maxConfigSize = 64 * 1024

// decodeConfig decodes a configuration file on top
// of the default configuration.
func decodeConfig(src io.Reader) (config, error) {
	c := defaultConfig()
	buf, err := io.ReadAll(io.LimitReader(src, maxConfigSize+1))
	if err != nil {
		return c, err
	}
	if len(buf) > maxConfigSize {
		return c, fmt.Errorf("config beyond size limit %d", maxConfigSize)
	}
	if len(bytes.TrimSpace(buf)) == 0 {
		return c, nil
	}
	if err := yaml.UnmarshalStrict(buf, &c); err != nil {
		return c, err
	}
	return c, nil
}

func loadConfig(path string) (config, error) {
	f, err := os.Open(path)
	if err != nil {
		return config{}, err
	}
	defer f.Close()
	c, err := decodeConfig(f)
	if err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *config) field() (*tree.Field, error) {
	typ, err := tree.ParseDataType(c.Field.Type)
	if err != nil {
		return nil, err
	}
	return &tree.Field{
		Name:       c.Field.Name,
		RealName:   c.Field.RealName,
		Type:       typ,
		FormatKey:  c.Field.FormatKey,
		TableAlias: c.Field.Table,
	}, nil
}

func (c *config) catalogSep() (byte, error) {
	switch len(c.CatalogSep) {
	case 0:
		return 0, nil
	case 1:
		return c.CatalogSep[0], nil
	}
	return 0, fmt.Errorf("catalog separator %q is not a single character", c.CatalogSep)
}

// storeCloser is the no-op close
// function of stores without resources
func storeCloser() error { return nil }

// openStore opens the stored query backend
// described by c. It returns a nil Store
// when no backend is configured.
func openStore(c *storeConfig) (querystore.Store, func() error, error) {
	kind := c.Kind
	if kind == "" {
		switch strings.ToLower(filepath.Ext(c.Path)) {
		case "":
			if c.Path == "" {
				return nil, storeCloser, nil
			}
			kind = "yaml"
		case ".db", ".sqlite", ".sqlite3":
			kind = "sqlite"
		default:
			kind = "yaml"
		}
	}
	if c.Path == "" {
		return nil, nil, fmt.Errorf("%s store: no path", kind)
	}
	switch kind {
	case "yaml":
		m, err := querystore.OpenYAML(os.DirFS(filepath.Dir(c.Path)), filepath.Base(c.Path))
		if err != nil {
			return nil, nil, err
		}
		return m, storeCloser, nil
	case "sqlite":
		s, err := querystore.OpenSQLite(c.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store kind %q", kind)
}
