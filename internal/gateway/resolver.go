// ABOUTME: Node specifier resolution: canonical id, numeric id, short or long name.
// ABOUTME: First match wins; name ties break lexicographically by canonical id.

package gateway

import (
	"sort"
	"strconv"
	"strings"

	"github.com/2389/mesh-gateway/internal/mesh"
)

// ResolveNode maps a user-typed specifier to a node from the current
// directory snapshot. Matching order, first match wins:
//
//  1. exact canonical id
//  2. exact numeric id
//  3. case-insensitive short name
//  4. case-insensitive long name
//
// Ties among duplicate names resolve to the lexicographically smallest
// canonical id, so repeated lookups against an unchanged directory are
// deterministic. The boolean reports whether anything matched.
func (g *Gateway) ResolveNode(spec string) (*mesh.NodeEntry, bool) {
	nodes := g.meshIface.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	for _, n := range nodes {
		if n.ID == spec {
			return n, true
		}
	}

	if num, err := strconv.ParseUint(spec, 10, 32); err == nil {
		for _, n := range nodes {
			if n.Num == uint32(num) {
				return n, true
			}
		}
	}

	for _, n := range nodes {
		if strings.EqualFold(n.ShortName, spec) {
			return n, true
		}
	}

	for _, n := range nodes {
		if strings.EqualFold(n.LongName, spec) {
			return n, true
		}
	}

	return nil, false
}
