package graph

import "github.com/xkilldash9x/graphlens/api/schemas"

// EdgeEndpointsInvalidReason is the fixed reason recorded when an edge
// record carries a missing, empty or non-string endpoint identifier.
const EdgeEndpointsInvalidReason = "Edge destination or source invalid"

// Edge is a graph edge entity. Rendering-time geometry (endpoint
// coordinates, curvature) is owned by the renderer; see the layout package
// for the curvature side table.
type Edge struct {
	Object
	SourceUID      string `json:"source_node_identifier"`
	DestinationUID string `json:"destination_node_identifier"`
}

// NewEdge parses a raw edge record. In addition to the shared object
// validation, both endpoint identifiers must be non-empty strings; any
// falsy or non-string endpoint invalidates the edge with a fixed reason.
func NewEdge(raw schemas.RawEdge, lctx LabelContext) *Edge {
	e := &Edge{
		Object: newObject(raw.Identifier, raw.Labels, raw.Properties, nil, lctx),
	}

	src, srcOK := raw.Source.(string)
	dst, dstOK := raw.Destination.(string)
	if !srcOK || src == "" || !dstOK || dst == "" {
		e.Instantiated = false
		e.InstantiationErrorReason = EdgeEndpointsInvalidReason
		return e
	}
	e.SourceUID = src
	e.DestinationUID = dst
	return e
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e *Edge) IsSelfLoop() bool { return e.SourceUID == e.DestinationUID }

// OtherEndpoint returns the endpoint uid opposite the given node uid. For
// a self-loop it returns the same uid.
func (e *Edge) OtherEndpoint(uid string) string {
	if e.SourceUID == uid {
		return e.DestinationUID
	}
	return e.SourceUID
}
