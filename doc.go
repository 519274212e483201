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

// Package predicate is the root of a library for
// SQL search conditions. The packages are:
//
//   - tree: the parse tree, its boolean normalizations
//     and negation
//   - tree/sqlparse: the statement and predicate parser
//   - tree/render: rendering trees back to text, with
//     stored query substitution
//   - querystore: stored query definitions in YAML
//     files or SQLite databases
//   - locale, date: number and date formats of
//     predicates
//   - script: normalization check scripts
//
// The command cmd/predicate exposes them on
// the command line.
package predicate
