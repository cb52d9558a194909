package graph

import (
	"fmt"

	"github.com/xkilldash9x/graphlens/api/schemas"
	"go.uber.org/zap"
)

// recordMaps applies the structural tier of error handling: the input must
// be an array of records (or nil, treated as empty). Anything else aborts
// the whole call; the caller must not assume partial results.
func recordMaps(data any) ([]map[string]any, error) {
	switch records := data.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return records, nil
	case []any:
		out := make([]map[string]any, 0, len(records))
		for _, r := range records {
			m, _ := r.(map[string]any)
			// Non-object entries are record-level failures, handled by the
			// per-record parsers below.
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("graph data must be an array, got %T", data)
	}
}

// ParseNodes parses raw node records into entities. Malformed individual
// records are skipped with a diagnostic; only non-array input is fatal.
func ParseNodes(data any, lctx LabelContext, log *zap.Logger) ([]*Node, error) {
	records, err := recordMaps(data)
	if err != nil {
		return nil, fmt.Errorf("invalid node data: %w", err)
	}
	nodes := make([]*Node, 0, len(records))
	for i, m := range records {
		if m == nil {
			log.Warn("Skipping non-object node record", zap.Int("index", i))
			continue
		}
		n := NewNode(schemas.RawNodeFromMap(m), lctx)
		if !n.Instantiated {
			log.Warn("Skipping invalid node record",
				zap.Int("index", i),
				zap.String("reason", n.InstantiationErrorReason))
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ParseEdges parses raw edge records into entities, with the same two-tier
// error handling as ParseNodes.
func ParseEdges(data any, lctx LabelContext, log *zap.Logger) ([]*Edge, error) {
	records, err := recordMaps(data)
	if err != nil {
		return nil, fmt.Errorf("invalid edge data: %w", err)
	}
	edges := make([]*Edge, 0, len(records))
	for i, m := range records {
		if m == nil {
			log.Warn("Skipping non-object edge record", zap.Int("index", i))
			continue
		}
		e := NewEdge(schemas.RawEdgeFromMap(m), lctx)
		if !e.Instantiated {
			log.Warn("Skipping invalid edge record",
				zap.Int("index", i),
				zap.String("reason", e.InstantiationErrorReason))
			continue
		}
		edges = append(edges, e)
	}
	return edges, nil
}
