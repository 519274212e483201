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

// EraseBraces removes the parentheses of the group n
// when they are redundant in the position n occupies,
// after normalizing the group's content with Absorptions.
// It returns the node now occupying the position of n.
// Nodes that are not groups are returned unchanged.
func EraseBraces(n *Node) *Node {
	if n == nil || !isGroup(n) {
		return n
	}
	Absorptions(n.children[1])
	if keepGroup(n.children[1], n.parent) {
		return n
	}
	return ReplaceWith(n, n.RemoveAt(1))
}
