package schemas

// -- Raw Graph Records --
// These types mirror the wire format produced by the query backend. The
// identifier, label and endpoint slots are deliberately untyped: validation
// downstream distinguishes a missing value from a null, an empty string and
// a wrong-typed value, and a concrete field type would collapse those cases
// during JSON decoding.

// RawNode is a single node record as delivered by the query backend.
type RawNode struct {
	Identifier       any            `json:"identifier"`
	Labels           any            `json:"labels"`
	Properties       map[string]any `json:"properties,omitempty"`
	KeyPropertyNames []string       `json:"key_property_names,omitempty"`
	Intermediate     bool           `json:"intermediate,omitempty"`
}

// RawEdge is a single edge record as delivered by the query backend.
type RawEdge struct {
	Identifier  any            `json:"identifier"`
	Source      any            `json:"source_node_identifier"`
	Destination any            `json:"destination_node_identifier"`
	Labels      any            `json:"labels"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// RawNodeFromMap extracts a RawNode from a loosely-typed decoded JSON object.
// Absent or wrong-typed optional fields default safely; the mandatory slots
// are carried through untouched for the parser to validate.
func RawNodeFromMap(m map[string]any) RawNode {
	rn := RawNode{Identifier: m["identifier"]}
	// An absent labels key defaults to an empty list; an explicit non-array
	// value (including null) must stay visible to the validator.
	if v, ok := m["labels"]; ok {
		rn.Labels = v
	} else {
		rn.Labels = []string{}
	}
	if p, ok := m["properties"].(map[string]any); ok {
		rn.Properties = p
	}
	rn.KeyPropertyNames = stringSlice(m["key_property_names"])
	if b, ok := m["intermediate"].(bool); ok {
		rn.Intermediate = b
	}
	return rn
}

// RawEdgeFromMap extracts a RawEdge from a loosely-typed decoded JSON object.
func RawEdgeFromMap(m map[string]any) RawEdge {
	re := RawEdge{
		Identifier:  m["identifier"],
		Source:      m["source_node_identifier"],
		Destination: m["destination_node_identifier"],
	}
	if v, ok := m["labels"]; ok {
		re.Labels = v
	} else {
		re.Labels = []string{}
	}
	if p, ok := m["properties"].(map[string]any); ok {
		re.Properties = p
	}
	return re
}

// Direction distinguishes the two orientations an edge can have relative to
// a node.
type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
)

func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}
