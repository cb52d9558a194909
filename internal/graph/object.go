// Package graph holds the live graph model: node and edge entities parsed
// from raw records, and the Config that owns the authoritative maps,
// adjacency indices and label colors.
package graph

import "strings"

// Element is any graph object addressable by uid. Both *Node and *Edge
// implement it; the store's focus/selection state holds Elements.
type Element interface {
	ElementUID() string
}

// Object carries the capability set shared by nodes and edges. Construction
// never aborts a parse: an invalid record produces an Object with
// Instantiated=false and a reason, and such an object must never be
// inserted into any map or index.
type Object struct {
	UID              string         `json:"identifier"`
	Labels           []string       `json:"labels"`
	Properties       map[string]any `json:"properties"`
	KeyPropertyNames []string       `json:"key_property_names"`

	Instantiated             bool   `json:"-"`
	InstantiationErrorReason string `json:"-"`

	displayLabels []string
}

// ElementUID returns the object's immutable identity.
func (o *Object) ElementUID() string { return o.UID }

// DisplayLabels returns the labels actually shown and used for coloring,
// after dynamic-label subtraction. Always non-empty when Labels is.
func (o *Object) DisplayLabels() []string { return o.displayLabels }

// DisplayLabelString joins the display labels into the single string used
// as a color key.
func (o *Object) DisplayLabelString() string {
	return strings.Join(o.displayLabels, ", ")
}

// LabelContext carries the schema-derived inputs to display-label
// resolution for one table kind.
type LabelContext struct {
	// Dynamic is true when the schema declares a dynamic label expression
	// for this kind; static subtraction only applies then.
	Dynamic bool
	// StaticSets are the schema's declared label sets, in the schema's
	// table order.
	StaticSets [][]string
}

func newObject(uid any, labels any, properties map[string]any, keyPropertyNames []string, lctx LabelContext) Object {
	o := Object{Properties: properties, KeyPropertyNames: keyPropertyNames}
	if o.Properties == nil {
		o.Properties = map[string]any{}
	}

	uidStr, ok := uid.(string)
	if !ok || uidStr == "" {
		o.InstantiationErrorReason = "Identifier missing or invalid"
		return o
	}
	o.UID = uidStr

	labelList, ok := labelStrings(labels)
	if !ok {
		o.InstantiationErrorReason = "Labels must be an array of strings"
		return o
	}
	o.Labels = labelList
	o.displayLabels = resolveDisplayLabels(labelList, lctx)
	o.Instantiated = true
	return o
}

// resolveDisplayLabels applies the dynamic-label subtraction rule: the
// first schema static set that is a non-empty strict subset of the raw
// labels is removed from the display set. If removal would empty the
// display set it is undone, so every object always shows at least one
// label. Only the first matching set is applied; overlapping static sets
// are deliberately not resolved further.
func resolveDisplayLabels(labels []string, lctx LabelContext) []string {
	if !lctx.Dynamic {
		return labels
	}
	have := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		have[l] = struct{}{}
	}
	for _, set := range lctx.StaticSets {
		if len(set) == 0 || len(set) >= len(labels) {
			continue
		}
		all := true
		for _, l := range set {
			if _, ok := have[l]; !ok {
				all = false
				break
			}
		}
		if !all {
			continue
		}
		remove := make(map[string]struct{}, len(set))
		for _, l := range set {
			remove[l] = struct{}{}
		}
		filtered := make([]string, 0, len(labels)-len(set))
		for _, l := range labels {
			if _, ok := remove[l]; !ok {
				filtered = append(filtered, l)
			}
		}
		if len(filtered) == 0 {
			return labels
		}
		return filtered
	}
	return labels
}

// labelStrings accepts the raw labels value, which must be an array of
// strings. Both []string and a decoded-JSON []any of strings qualify.
func labelStrings(v any) ([]string, bool) {
	switch vals := v.(type) {
	case []string:
		return vals, true
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
