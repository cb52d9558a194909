// Package layout computes rendering geometry hints for edges. The core
// does not own renderer state; curvature is returned as a side table keyed
// by edge uid rather than written onto the entities.
package layout

import (
	"fmt"

	"github.com/xkilldash9x/graphlens/internal/graph"
)

// MinCurve is the curvature magnitude bound used to spread parallel edges
// and self-loops.
const MinCurve = 0.35

// Curve is the geometric hint for one edge.
type Curve struct {
	// PairKey identifies the edge's endpoint pair independent of
	// direction: the lexicographically smaller uid comes first.
	PairKey string `json:"pairKey"`
	// Amount is the signed curvature; 0 renders a straight line.
	Amount float64 `json:"amount"`
}

// PairKey builds the order-independent key for an endpoint pair.
func PairKey(sourceUID, destinationUID string) string {
	if sourceUID <= destinationUID {
		return fmt.Sprintf("%s|%s", sourceUID, destinationUID)
	}
	return fmt.Sprintf("%s|%s", destinationUID, sourceUID)
}

// AssignCurvature de-overlaps parallel edges and self-loops. The result is
// deterministic only with respect to the input iteration order: groups are
// formed in first-seen order and the last edge of each group anchors the
// others. Re-running on an unchanged slice in the same order yields the
// same table.
func AssignCurvature(edges []*graph.Edge) map[string]Curve {
	curves := make(map[string]Curve, len(edges))

	type group struct {
		key   string
		edges []*graph.Edge
	}
	var selfLoops, paired []*group
	index := make(map[string]*group, len(edges))

	for _, e := range edges {
		key := PairKey(e.SourceUID, e.DestinationUID)
		g, ok := index[key]
		if !ok {
			g = &group{key: key}
			index[key] = g
			if e.IsSelfLoop() {
				selfLoops = append(selfLoops, g)
			} else {
				paired = append(paired, g)
			}
		}
		g.edges = append(g.edges, e)
	}

	// Self-loops: the last edge of a group loops at full curvature; the
	// rest step evenly from MinCurve up to (but not including) 1.
	for _, g := range selfLoops {
		n := len(g.edges)
		last := g.edges[n-1]
		curves[last.UID] = Curve{PairKey: g.key, Amount: 1}
		step := (1 - MinCurve) / float64(max(1, n-1))
		for i, e := range g.edges[:n-1] {
			curves[e.UID] = Curve{PairKey: g.key, Amount: MinCurve + float64(i)*step}
		}
	}

	// Paired edges: a lone edge stays straight. In a larger group the last
	// edge anchors at +MinCurve and the rest spread across
	// [-MinCurve, +MinCurve], negated when an edge runs opposite to the
	// anchor so curves between the same two nodes never overlap.
	for _, g := range paired {
		n := len(g.edges)
		if n == 1 {
			curves[g.edges[0].UID] = Curve{PairKey: g.key}
			continue
		}
		last := g.edges[n-1]
		curves[last.UID] = Curve{PairKey: g.key, Amount: MinCurve}
		rest := g.edges[:n-1]
		step := (2 * MinCurve) / float64(max(1, len(rest)-1))
		for i, e := range rest {
			amount := -MinCurve + float64(i)*step
			if e.SourceUID != last.SourceUID {
				amount = -amount
			}
			curves[e.UID] = Curve{PairKey: g.key, Amount: amount}
		}
	}

	return curves
}
