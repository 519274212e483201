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
	"encoding/base32"
	"encoding/binary"
	"strings"

	"github.com/dchest/siphash"
)

const (
	k0, k1 = 0, 1
)

func redactBuf(buf []byte) uint64 {
	return siphash.Hash(k0, k1, buf)
}

func redactString(s string) string {
	res := redactBuf([]byte(s))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], res)
	return base32.StdEncoding.EncodeToString(buf[:])
}

// Redacted returns the same dump as n.String(),
// but with the text of every literal replaced by a
// deterministic digest, so that trees built from
// user input can be logged.
func Redacted(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	var dst strings.Builder
	n.dump(&dst, true)
	return dst.String()
}

// RedactText returns a deterministic digest of s,
// used to log statements without their content.
func RedactText(s string) string {
	return redactString(s)
}
