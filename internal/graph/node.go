package graph

import "github.com/xkilldash9x/graphlens/api/schemas"

// Node is a graph node entity.
type Node struct {
	Object
	// Intermediate marks a synthetic placeholder created because an edge
	// referenced an identifier no node record was supplied for. A
	// placeholder is promoted to a real node when a later append supplies
	// a record for the same uid; it is never demoted back.
	Intermediate bool `json:"intermediate"`
}

// NewNode parses a raw node record. Missing optional fields default
// safely; only a missing/empty identifier or non-array labels invalidates
// the record.
func NewNode(raw schemas.RawNode, lctx LabelContext) *Node {
	return &Node{
		Object:       newObject(raw.Identifier, raw.Labels, raw.Properties, raw.KeyPropertyNames, lctx),
		Intermediate: raw.Intermediate,
	}
}

// MakeIntermediateNode creates a placeholder for an identifier referenced
// by an edge but absent from the node records.
func MakeIntermediateNode(uid string) *Node {
	n := NewNode(schemas.RawNode{
		Identifier: uid,
		Labels:     []string{"Intermediate"},
		Properties: map[string]any{
			"note": "This node represents a referenced entity that wasn't returned in the query results.",
		},
	}, LabelContext{})
	n.Intermediate = true
	return n
}

// Identifiers returns the property values at each key property name, in
// order, skipping missing keys.
func (n *Node) Identifiers() []any {
	out := make([]any, 0, len(n.KeyPropertyNames))
	for _, key := range n.KeyPropertyNames {
		if v, ok := n.Properties[key]; ok {
			out = append(out, v)
		}
	}
	return out
}
