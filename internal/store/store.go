// Package store wraps a graph.Config behind the one mutable handle the
// rendering layer holds: derived queries, view-state setters and a
// synchronous event bus.
package store

import (
	"sort"

	"github.com/xkilldash9x/graphlens/api/schemas"
	"github.com/xkilldash9x/graphlens/internal/graph"
	"github.com/xkilldash9x/graphlens/internal/layout"
	"go.uber.org/zap"
)

// Store is a stateful façade over a graph.Config. It is single-threaded
// by contract, like the configuration it wraps.
type Store struct {
	cfg       *graph.Config
	listeners map[EventType][]subscription
	log       *zap.Logger
}

// NodeProperty is one resolved property row in a node expansion request.
type NodeProperty struct {
	Key   string               `json:"key"`
	Value any                  `json:"value"`
	Type  schemas.PropertyType `json:"type"`
}

// ExpansionRequest asks the external query collaborator for more graph
// data around a node. The core performs no I/O itself; the collaborator
// is expected to eventually call back into AppendGraphData.
type ExpansionRequest struct {
	Node       *graph.Node
	Direction  schemas.Direction
	EdgeLabel  string
	Properties []NodeProperty
}

// EdgeType is one deduplicated (label, direction) pair reachable from a
// node through the schema.
type EdgeType struct {
	Label     string
	Direction schemas.Direction
}

// GraphUpdate carries the accepted records of one append.
type GraphUpdate struct {
	Nodes []*graph.Node
	Edges []*graph.Edge
}

// Snapshot is the render-ready view of the current graph.
type Snapshot struct {
	Nodes  []*graph.Node           `json:"nodes"`
	Edges  []*graph.Edge           `json:"edges"`
	Colors map[string]string       `json:"nodeColors"`
	Curves map[string]layout.Curve `json:"curves"`
}

// New wraps a configuration. A nil logger falls back to a no-op.
func New(cfg *graph.Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		cfg:       cfg,
		listeners: make(map[EventType][]subscription),
		log:       logger.Named("graphstore"),
	}
}

// Config returns the wrapped configuration.
func (s *Store) Config() *graph.Config { return s.cfg }

// SetConfig swaps in a freshly built configuration (a new query result)
// and notifies CONFIG_CHANGE listeners.
func (s *Store) SetConfig(cfg *graph.Config) {
	prev := s.cfg
	s.cfg = cfg
	s.emit(Event{Type: EventConfigChange, Value: cfg, Previous: prev})
}

// -- query surface --

// GetNodes returns the node array for the current view mode. TABLE mode
// has no graph and yields an empty slice.
func (s *Store) GetNodes() []*graph.Node {
	switch s.cfg.ViewMode {
	case graph.ViewModeSchema:
		return s.cfg.GetSchemaNodes()
	case graph.ViewModeTable:
		return []*graph.Node{}
	default:
		return s.cfg.GetNodes()
	}
}

// GetEdges returns the edge array for the current view mode.
func (s *Store) GetEdges() []*graph.Edge {
	switch s.cfg.ViewMode {
	case graph.ViewModeSchema:
		return s.cfg.GetSchemaEdges()
	case graph.ViewModeTable:
		return []*graph.Edge{}
	default:
		return s.cfg.GetEdges()
	}
}

// GetEdgesOfNode returns every edge touching the node, in uid order. A
// nil or non-member node yields an empty slice.
func (s *Store) GetEdgesOfNode(node *graph.Node) []*graph.Edge {
	if node == nil {
		return []*graph.Edge{}
	}
	byUID := s.cfg.EdgesOfNode(node.UID)
	uids := make([]string, 0, len(byUID))
	for uid := range byUID {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	out := make([]*graph.Edge, 0, len(uids))
	for _, uid := range uids {
		out = append(out, byUID[uid])
	}
	return out
}

// GetNeighborsOfNode returns the retained edge per neighbor uid. A nil or
// non-member node yields an empty map.
func (s *Store) GetNeighborsOfNode(node *graph.Node) map[string]*graph.Edge {
	if node == nil {
		return map[string]*graph.Edge{}
	}
	return s.cfg.NeighborsOfNode(node.UID)
}

// GetEdgesOfNodeSorted returns the node's edges ordered by neighbor
// display label, then direction with incoming before outgoing.
func (s *Store) GetEdgesOfNodeSorted(node *graph.Node) []*graph.Edge {
	edges := s.GetEdgesOfNode(node)
	if node == nil || len(edges) == 0 {
		return edges
	}
	neighborLabel := func(e *graph.Edge) string {
		other, ok := s.cfg.NodeByUID(e.OtherEndpoint(node.UID))
		if !ok {
			return e.OtherEndpoint(node.UID)
		}
		return other.DisplayLabelString()
	}
	incoming := func(e *graph.Edge) bool {
		return e.DestinationUID == node.UID && e.SourceUID != node.UID
	}
	sort.SliceStable(edges, func(i, j int) bool {
		li, lj := neighborLabel(edges[i]), neighborLabel(edges[j])
		if li != lj {
			return li < lj
		}
		return incoming(edges[i]) && !incoming(edges[j])
	})
	return edges
}

// GetEdgeTypesOfNodeSorted enumerates every (label, direction) pair
// reachable from the node's matching schema node tables through schema
// edge tables, deduplicated and sorted incoming-before-outgoing then
// lexicographically by label.
func (s *Store) GetEdgeTypesOfNodeSorted(node *graph.Node) []EdgeType {
	if node == nil {
		return nil
	}
	seen := make(map[EdgeType]struct{})
	var out []EdgeType
	add := func(et EdgeType) {
		if _, ok := seen[et]; ok {
			return
		}
		seen[et] = struct{}{}
		out = append(out, et)
	}

	for _, table := range s.matchingNodeTables(node) {
		for _, et := range s.cfg.Schema.GetEdgesOfNode(table) {
			labels := et.LabelNames
			if len(labels) == 0 {
				labels = []string{et.Name}
			}
			for _, label := range labels {
				if et.SourceNodeTable.NodeTableName == table.Name {
					add(EdgeType{Label: label, Direction: schemas.DirectionOutgoing})
				}
				if et.DestinationNodeTable.NodeTableName == table.Name {
					add(EdgeType{Label: label, Direction: schemas.DirectionIncoming})
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Direction != out[j].Direction {
			return out[i].Direction == schemas.DirectionIncoming
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// EdgeIsConnectedToNode reports whether the edge touches the node. Always
// false for nil arguments.
func (s *Store) EdgeIsConnectedToNode(edge *graph.Edge, node *graph.Node) bool {
	if edge == nil || node == nil {
		return false
	}
	_, ok := s.cfg.EdgesOfNode(node.UID)[edge.UID]
	return ok
}

// NodeIsNeighborTo reports whether any edge connects the two nodes.
// Always false for nil arguments.
func (s *Store) NodeIsNeighborTo(node, other *graph.Node) bool {
	if node == nil || other == nil {
		return false
	}
	_, ok := s.cfg.NeighborsOfNode(node.UID)[other.UID]
	return ok
}

// GetPropertyType resolves a node property's declared type through every
// schema node table whose labels intersect the node's. The first match
// wins; no match logs a diagnostic and reports false.
func (s *Store) GetPropertyType(node *graph.Node, propertyName string) (schemas.PropertyType, bool) {
	if node == nil {
		return schemas.PropertyTypeUnspecified, false
	}
	tables := s.matchingNodeTables(node)
	if len(tables) == 0 {
		s.log.Debug("No schema node table matches node labels",
			zap.String("uid", node.UID), zap.Strings("labels", node.Labels))
		return schemas.PropertyTypeUnspecified, false
	}
	for _, table := range tables {
		for _, tp := range s.cfg.Schema.GetPropertiesOfTable(table.PropertyDefinitions) {
			if tp.Name == propertyName {
				return tp.Type, true
			}
		}
	}
	s.log.Debug("No schema table declares property",
		zap.String("uid", node.UID), zap.String("property", propertyName))
	return schemas.PropertyTypeUnspecified, false
}

func (s *Store) matchingNodeTables(node *graph.Node) []schemas.NodeTable {
	labels := make(map[string]struct{}, len(node.Labels))
	for _, l := range node.Labels {
		labels[l] = struct{}{}
	}
	var out []schemas.NodeTable
	for _, table := range s.cfg.Schema.NodeTables() {
		for _, l := range table.LabelNames {
			if _, ok := labels[l]; ok {
				out = append(out, table)
				break
			}
		}
	}
	return out
}

// -- mutations --

// AppendGraphData pre-filters the raw records (an existing real node or a
// seen edge uid is never forwarded), merges the rest into the
// configuration, and fires GRAPH_DATA_UPDATE unless nothing was accepted.
func (s *Store) AppendGraphData(nodesData, edgesData any) (*GraphUpdate, error) {
	nodes, edges, err := s.cfg.AppendGraphData(
		s.filterNodeRecords(nodesData),
		s.filterEdgeRecords(edgesData),
	)
	if err != nil {
		return nil, err
	}

	update := &GraphUpdate{Nodes: nodes, Edges: edges}
	if len(nodes) == 0 && len(edges) == 0 {
		// Nothing changed; observers are not disturbed.
		return update, nil
	}
	s.log.Debug("Graph data appended",
		zap.Int("new_nodes", len(nodes)), zap.Int("new_edges", len(edges)))
	s.emit(Event{Type: EventGraphDataUpdate, Value: update})
	return update, nil
}

func (s *Store) filterNodeRecords(data any) any {
	records, ok := asRecordSlice(data)
	if !ok {
		return data
	}
	filtered := make([]any, 0, len(records))
	for _, r := range records {
		m, ok := r.(map[string]any)
		if !ok {
			filtered = append(filtered, r)
			continue
		}
		raw := schemas.RawNodeFromMap(m)
		if uid, ok := raw.Identifier.(string); ok {
			if existing, found := s.cfg.NodeByUID(uid); found && !existing.Intermediate {
				continue
			}
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func (s *Store) filterEdgeRecords(data any) any {
	records, ok := asRecordSlice(data)
	if !ok {
		return data
	}
	filtered := make([]any, 0, len(records))
	for _, r := range records {
		m, ok := r.(map[string]any)
		if !ok {
			filtered = append(filtered, r)
			continue
		}
		raw := schemas.RawEdgeFromMap(m)
		if uid, ok := raw.Identifier.(string); ok {
			if _, found := s.cfg.EdgeByUID(uid); found {
				continue
			}
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// asRecordSlice normalizes array-shaped input for the pre-filter. Anything
// else passes through untouched so the configuration's parser reports the
// structural error.
func asRecordSlice(data any) ([]any, bool) {
	switch records := data.(type) {
	case []any:
		return records, true
	case []map[string]any:
		out := make([]any, len(records))
		for i, m := range records {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// SetViewMode switches the active view. Setting the current mode is a
// no-op and fires nothing; this is the only setter with that behavior.
func (s *Store) SetViewMode(mode graph.ViewMode) {
	if mode == s.cfg.ViewMode {
		return
	}
	prev := s.cfg.ViewMode
	s.cfg.ViewMode = mode
	s.emit(Event{Type: EventViewModeChange, Value: mode, Previous: prev})
}

// SetColorScheme always fires, even when the value is unchanged.
func (s *Store) SetColorScheme(scheme graph.ColorScheme) {
	prev := s.cfg.ColorScheme
	s.cfg.ColorScheme = scheme
	s.emit(Event{Type: EventColorScheme, Value: scheme, Previous: prev})
}

// SetLayoutMode always fires, even when the value is unchanged.
func (s *Store) SetLayoutMode(mode graph.LayoutMode) {
	prev := s.cfg.LayoutMode
	s.cfg.LayoutMode = mode
	s.emit(Event{Type: EventLayoutModeChange, Value: mode, Previous: prev})
}

// SetFocusedObject always fires, even when the value is unchanged.
func (s *Store) SetFocusedObject(el graph.Element) {
	prev := s.cfg.FocusedObject
	s.cfg.FocusedObject = el
	s.emit(Event{Type: EventFocusObject, Value: el, Previous: prev})
}

// SetSelectedObject always fires, even when the value is unchanged.
func (s *Store) SetSelectedObject(el graph.Element) {
	prev := s.cfg.SelectedObject
	s.cfg.SelectedObject = el
	s.emit(Event{Type: EventSelectObject, Value: el, Previous: prev})
}

// ShowLabels always fires, even when the value is unchanged.
func (s *Store) ShowLabels(show bool) {
	prev := s.cfg.ShowLabels
	s.cfg.ShowLabels = show
	s.emit(Event{Type: EventShowLabels, Value: show, Previous: prev})
}

// RequestNodeExpansion pairs the node's properties with their resolved
// types and emits a single NODE_EXPANSION_REQUEST. This is the sole hook
// by which the core asks for more graph data.
func (s *Store) RequestNodeExpansion(node *graph.Node, direction schemas.Direction, edgeLabel string) {
	if node == nil {
		return
	}
	keys := make([]string, 0, len(node.Properties))
	for k := range node.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make([]NodeProperty, 0, len(keys))
	for _, k := range keys {
		t, _ := s.GetPropertyType(node, k)
		props = append(props, NodeProperty{Key: k, Value: node.Properties[k], Type: t})
	}

	s.emit(Event{Type: EventNodeExpansionRequest, Value: ExpansionRequest{
		Node:       node,
		Direction:  direction,
		EdgeLabel:  edgeLabel,
		Properties: props,
	}})
}

// Snapshot assembles the render-ready view of the current mode: nodes,
// edges, label colors and the curvature side table.
func (s *Store) Snapshot() Snapshot {
	edges := s.GetEdges()
	colors := s.cfg.NodeColors()
	if s.cfg.ViewMode == graph.ViewModeSchema {
		colors = s.cfg.SchemaNodeColors()
	}
	return Snapshot{
		Nodes:  s.GetNodes(),
		Edges:  edges,
		Colors: colors,
		Curves: layout.AssignCurvature(edges),
	}
}
