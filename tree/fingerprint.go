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
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint is a digest of the structure of a tree.
type Fingerprint [blake2b.Size256]byte

func (f Fingerprint) String() string { return hex.EncodeToString(f[:]) }

// FingerprintOf computes the digest of the tree rooted
// at n. Structurally equal trees without parameters have
// equal fingerprints; parameters are hashed like any
// other node, so unlike Equal two trees containing
// the same parameter do share a fingerprint.
func FingerprintOf(n *Node) Fingerprint {
	h, _ := blake2b.New256(nil)
	var buf []byte
	var walk func(n *Node)
	walk = func(n *Node) {
		buf = buf[:0]
		buf = append(buf, byte(n.kind))
		buf = binary.LittleEndian.AppendUint16(buf, n.id)
		buf = binary.AppendUvarint(buf, uint64(len(n.text)))
		buf = append(buf, n.text...)
		buf = binary.AppendUvarint(buf, uint64(len(n.children)))
		h.Write(buf)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(n)
	var out Fingerprint
	h.Sum(out[:0])
	return out
}
