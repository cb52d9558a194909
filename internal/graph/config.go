package graph

import (
	"fmt"

	"github.com/xkilldash9x/graphlens/api/schemas"
	"github.com/xkilldash9x/graphlens/internal/schema"
	"go.uber.org/zap"
)

// ViewMode selects which graph the store's queries read from.
type ViewMode string

const (
	// ViewModeDefault shows the live data graph.
	ViewModeDefault ViewMode = "DEFAULT"
	// ViewModeSchema shows the schema-derived overview graph.
	ViewModeSchema ViewMode = "SCHEMA"
	// ViewModeTable shows tabular query results; it has no graph.
	ViewModeTable ViewMode = "TABLE"
)

// LayoutMode selects the renderer's node placement strategy.
type LayoutMode string

const (
	LayoutModeForce     LayoutMode = "FORCE"
	LayoutModeTopDown   LayoutMode = "TOP_DOWN"
	LayoutModeLeftRight LayoutMode = "LEFT_RIGHT"
	LayoutModeRadial    LayoutMode = "RADIAL"
)

// ColorScheme selects how the renderer colors nodes.
type ColorScheme string

const (
	ColorSchemeLabel        ColorScheme = "LABEL"
	ColorSchemeNeighborhood ColorScheme = "NEIGHBORHOOD"
)

// DefaultPalette is the finite ordered color palette labels consume from.
var DefaultPalette = []string{
	"#cc7722", "#ffe5b4", "#dda0dd", "#fffacd", "#e6e6fa",
	"#d2b48c", "#6a5acd", "#ffe4e1", "#6495ed", "#4b4b4b",
	"#ace1af", "#808000", "#e6e6e6", "#9671e8", "#6b8e23",
	"#654321", "#b0e0e6", "#1e1e1e", "#c8c8c8", "#cd853f",
}

// Params carries the inputs to NewConfig. NodesData and EdgesData must be
// arrays of raw records (or nil); Schema and Palette are optional.
type Params struct {
	NodesData any
	EdgesData any
	Schema    *schemas.RawSchema
	Palette   []string
}

// Config owns the authoritative node/edge maps for both the live data
// graph and the schema-derived overlay graph, the adjacency indices, and
// the label color assignments. It is single-threaded by contract: a
// multi-threaded host must serialize all calls behind one mutex.
type Config struct {
	Schema *schema.Schema

	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string

	schemaNodes     map[string]*Node
	schemaNodeOrder []string
	schemaEdges     map[string]*Edge
	schemaEdgeOrder []string

	// neighborsOfNode keeps one edge per neighbor pair; a later-parsed
	// parallel edge overwrites the stored one here but is retained fully
	// in edgesOfNode.
	neighborsOfNode map[string]map[string]*Edge
	edgesOfNode     map[string]map[string]*Edge

	nodeColors       map[string]string
	schemaNodeColors map[string]string
	palette          []string

	nodeCount       int
	schemaNodeCount int

	// View state, mutated by the store's setters.
	ViewMode       ViewMode
	LayoutMode     LayoutMode
	ColorScheme    ColorScheme
	FocusedObject  Element
	SelectedObject Element
	ShowLabels     bool

	log *zap.Logger
}

// NewConfig parses the raw records against the schema and builds the full
// graph model: entity maps, intermediate placeholders for dangling edge
// endpoints, adjacency indices, the schema overlay graph and the label
// colors. Non-array node/edge data is fatal; malformed individual records
// are skipped with a diagnostic.
func NewConfig(p Params, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Config{
		Schema:           schema.New(p.Schema, logger),
		nodes:            make(map[string]*Node),
		edges:            make(map[string]*Edge),
		schemaNodes:      make(map[string]*Node),
		schemaEdges:      make(map[string]*Edge),
		neighborsOfNode:  make(map[string]map[string]*Edge),
		edgesOfNode:      make(map[string]map[string]*Edge),
		nodeColors:       make(map[string]string),
		schemaNodeColors: make(map[string]string),
		ViewMode:         ViewModeDefault,
		LayoutMode:       LayoutModeForce,
		ColorScheme:      ColorSchemeLabel,
		ShowLabels:       true,
		log:              logger.Named("graphconfig"),
	}

	c.palette = append([]string(nil), DefaultPalette...)
	if len(p.Palette) > 0 {
		c.palette = append([]string(nil), p.Palette...)
	}

	nodes, err := ParseNodes(p.NodesData, c.nodeLabelContext(), c.log)
	if err != nil {
		return nil, err
	}
	edges, err := ParseEdges(p.EdgesData, c.edgeLabelContext(), c.log)
	if err != nil {
		return nil, err
	}

	for _, n := range nodes {
		c.resolveKeyProperties(n)
		c.putNode(n)
	}
	for _, e := range edges {
		c.putEdge(e)
	}
	c.materializeIntermediates(edges)
	// Index from the map contents, not the parsed slice: a duplicate uid in
	// one batch leaves only the winning record.
	for _, e := range c.GetEdges() {
		c.indexEdge(e)
	}

	c.buildSchemaGraph()
	c.assignColors()
	c.nodeCount = len(c.nodes)
	c.schemaNodeCount = len(c.schemaNodes)
	return c, nil
}

// AppendGraphData parses the new records in the same schema-aware context
// as initial construction and merges them in: an existing node is only
// superseded when the stored one is an intermediate placeholder, and an
// existing edge uid is never replaced. It returns the nodes and edges
// actually accepted as new.
func (c *Config) AppendGraphData(nodesData, edgesData any) ([]*Node, []*Edge, error) {
	nodes, err := ParseNodes(nodesData, c.nodeLabelContext(), c.log)
	if err != nil {
		return nil, nil, fmt.Errorf("append: %w", err)
	}
	edges, err := ParseEdges(edgesData, c.edgeLabelContext(), c.log)
	if err != nil {
		return nil, nil, fmt.Errorf("append: %w", err)
	}

	var acceptedNodes []*Node
	for _, n := range nodes {
		existing, ok := c.nodes[n.UID]
		if ok && !existing.Intermediate {
			continue
		}
		c.resolveKeyProperties(n)
		c.putNode(n)
		acceptedNodes = append(acceptedNodes, n)
	}

	var acceptedEdges []*Edge
	for _, e := range edges {
		if _, ok := c.edges[e.UID]; ok {
			continue
		}
		c.putEdge(e)
		acceptedEdges = append(acceptedEdges, e)
	}
	// Appended edges may reference nodes absent from both the store and
	// this batch; placeholders keep the adjacency indices closed.
	for _, placeholder := range c.materializeIntermediates(acceptedEdges) {
		acceptedNodes = append(acceptedNodes, placeholder)
	}
	for _, e := range acceptedEdges {
		c.indexEdge(e)
	}

	c.nodeCount = len(c.nodes)
	c.assignColors()
	return acceptedNodes, acceptedEdges, nil
}

// -- entity map maintenance --

// putNode inserts or replaces a node, preserving the original insertion
// position on replacement. Last-parsed record wins within one batch.
func (c *Config) putNode(n *Node) {
	if _, ok := c.nodes[n.UID]; !ok {
		c.nodeOrder = append(c.nodeOrder, n.UID)
	}
	c.nodes[n.UID] = n
}

func (c *Config) putEdge(e *Edge) {
	if _, ok := c.edges[e.UID]; !ok {
		c.edgeOrder = append(c.edgeOrder, e.UID)
	}
	c.edges[e.UID] = e
}

func (c *Config) indexEdge(e *Edge) {
	for _, uid := range []string{e.SourceUID, e.DestinationUID} {
		if c.edgesOfNode[uid] == nil {
			c.edgesOfNode[uid] = make(map[string]*Edge)
		}
		c.edgesOfNode[uid][e.UID] = e
	}
	if c.neighborsOfNode[e.SourceUID] == nil {
		c.neighborsOfNode[e.SourceUID] = make(map[string]*Edge)
	}
	c.neighborsOfNode[e.SourceUID][e.DestinationUID] = e
	if c.neighborsOfNode[e.DestinationUID] == nil {
		c.neighborsOfNode[e.DestinationUID] = make(map[string]*Edge)
	}
	c.neighborsOfNode[e.DestinationUID][e.SourceUID] = e
}

// materializeIntermediates creates placeholder nodes for edge endpoints no
// node record was supplied for, returning the placeholders it created.
func (c *Config) materializeIntermediates(edges []*Edge) []*Node {
	var created []*Node
	for _, e := range edges {
		for _, uid := range []string{e.SourceUID, e.DestinationUID} {
			if _, ok := c.nodes[uid]; ok {
				continue
			}
			placeholder := MakeIntermediateNode(uid)
			c.putNode(placeholder)
			created = append(created, placeholder)
			c.log.Debug("Materialized intermediate node", zap.String("uid", uid))
		}
	}
	return created
}

func (c *Config) resolveKeyProperties(n *Node) {
	if len(n.KeyPropertyNames) > 0 {
		return
	}
	n.KeyPropertyNames = c.Schema.KeyPropertyNames(n.Labels, n.Properties)
}

func (c *Config) nodeLabelContext() LabelContext {
	return LabelContext{
		Dynamic:    c.Schema.DynamicNodeLabels(),
		StaticSets: c.Schema.StaticNodeLabelSets(),
	}
}

func (c *Config) edgeLabelContext() LabelContext {
	return LabelContext{
		Dynamic:    c.Schema.DynamicEdgeLabels(),
		StaticSets: c.Schema.StaticEdgeLabelSets(),
	}
}

// -- schema overlay graph --

// buildSchemaGraph synthesizes one node per node table and one edge per
// edge table, for the schema overview view mode. Uids are derived from the
// positional table IDs.
func (c *Config) buildSchemaGraph() {
	nodeTables := c.Schema.NodeTables()
	for i, nt := range nodeTables {
		labels := nt.LabelNames
		if len(labels) == 0 {
			labels = []string{nt.Name}
		}
		props := make(map[string]any)
		for _, tp := range c.Schema.GetPropertiesOfTable(nt.PropertyDefinitions) {
			props[tp.Name] = string(tp.Type)
		}
		n := NewNode(schemas.RawNode{
			Identifier: schemaNodeUID(i),
			Labels:     labels,
			Properties: props,
		}, LabelContext{})
		if _, ok := c.schemaNodes[n.UID]; !ok {
			c.schemaNodeOrder = append(c.schemaNodeOrder, n.UID)
		}
		c.schemaNodes[n.UID] = n
	}

	for j, et := range c.Schema.EdgeTables() {
		srcIdx, srcOK := c.Schema.NodeTableIndex(et.SourceNodeTable.NodeTableName)
		dstIdx, dstOK := c.Schema.NodeTableIndex(et.DestinationNodeTable.NodeTableName)
		if !srcOK || !dstOK {
			c.log.Warn("Skipping schema edge with unresolvable endpoint",
				zap.String("edge_table", et.Name))
			continue
		}
		labels := et.LabelNames
		if len(labels) == 0 {
			labels = []string{et.Name}
		}
		props := make(map[string]any)
		for _, tp := range c.Schema.GetPropertiesOfTable(et.PropertyDefinitions) {
			props[tp.Name] = string(tp.Type)
		}
		e := NewEdge(schemas.RawEdge{
			Identifier:  schemaEdgeUID(len(nodeTables) + j),
			Source:      schemaNodeUID(srcIdx),
			Destination: schemaNodeUID(dstIdx),
			Labels:      labels,
			Properties:  props,
		}, LabelContext{})
		if _, ok := c.schemaEdges[e.UID]; !ok {
			c.schemaEdgeOrder = append(c.schemaEdgeOrder, e.UID)
		}
		c.schemaEdges[e.UID] = e
	}
}

func schemaNodeUID(tableID int) string { return fmt.Sprintf("schema-node-%d", tableID) }
func schemaEdgeUID(tableID int) string { return fmt.Sprintf("schema-edge-%d", tableID) }

// -- color assignment --

// assignColors binds each distinct display label used by any
// non-intermediate data node, and by any schema overlay node, to the next
// entry popped from the palette. Re-running after an append never
// reassigns or reorders existing bindings; only newly-seen labels consume
// palette entries. An exhausted palette logs a diagnostic and leaves the
// label unassigned for the renderer to default.
func (c *Config) assignColors() {
	for _, uid := range c.nodeOrder {
		n := c.nodes[uid]
		if n.Intermediate {
			continue
		}
		label := n.DisplayLabelString()
		if label == "" {
			continue
		}
		if _, ok := c.nodeColors[label]; ok {
			continue
		}
		color, ok := c.nextColor(label)
		if !ok {
			continue
		}
		c.nodeColors[label] = color
	}

	for _, uid := range c.schemaNodeOrder {
		label := c.schemaNodes[uid].DisplayLabelString()
		if label == "" {
			continue
		}
		if _, ok := c.schemaNodeColors[label]; ok {
			continue
		}
		// A label already bound on the data graph keeps the same color on
		// the overlay without consuming a second palette entry.
		if color, ok := c.nodeColors[label]; ok {
			c.schemaNodeColors[label] = color
			continue
		}
		color, ok := c.nextColor(label)
		if !ok {
			continue
		}
		c.nodeColors[label] = color
		c.schemaNodeColors[label] = color
	}
}

func (c *Config) nextColor(label string) (string, bool) {
	if len(c.palette) == 0 {
		c.log.Warn("Color palette exhausted, label left unassigned",
			zap.String("label", label))
		return "", false
	}
	color := c.palette[0]
	c.palette = c.palette[1:]
	return color, true
}

// -- accessors --

// GetNodes returns the live data nodes in insertion order.
func (c *Config) GetNodes() []*Node {
	out := make([]*Node, 0, len(c.nodeOrder))
	for _, uid := range c.nodeOrder {
		out = append(out, c.nodes[uid])
	}
	return out
}

// GetEdges returns the live data edges in insertion order.
func (c *Config) GetEdges() []*Edge {
	out := make([]*Edge, 0, len(c.edgeOrder))
	for _, uid := range c.edgeOrder {
		out = append(out, c.edges[uid])
	}
	return out
}

// GetSchemaNodes returns the overlay nodes in table order.
func (c *Config) GetSchemaNodes() []*Node {
	out := make([]*Node, 0, len(c.schemaNodeOrder))
	for _, uid := range c.schemaNodeOrder {
		out = append(out, c.schemaNodes[uid])
	}
	return out
}

// GetSchemaEdges returns the overlay edges in table order.
func (c *Config) GetSchemaEdges() []*Edge {
	out := make([]*Edge, 0, len(c.schemaEdgeOrder))
	for _, uid := range c.schemaEdgeOrder {
		out = append(out, c.schemaEdges[uid])
	}
	return out
}

// NodeByUID looks up a live data node.
func (c *Config) NodeByUID(uid string) (*Node, bool) {
	n, ok := c.nodes[uid]
	return n, ok
}

// EdgeByUID looks up a live data edge.
func (c *Config) EdgeByUID(uid string) (*Edge, bool) {
	e, ok := c.edges[uid]
	return e, ok
}

// EdgesOfNode returns all edges touching a node, incoming and outgoing,
// keyed by edge uid. The result is a copy; an unknown uid yields an empty
// map.
func (c *Config) EdgesOfNode(uid string) map[string]*Edge {
	out := make(map[string]*Edge, len(c.edgesOfNode[uid]))
	for k, v := range c.edgesOfNode[uid] {
		out[k] = v
	}
	return out
}

// NeighborsOfNode returns the retained edge per neighbor uid. The result
// is a copy; an unknown uid yields an empty map.
func (c *Config) NeighborsOfNode(uid string) map[string]*Edge {
	out := make(map[string]*Edge, len(c.neighborsOfNode[uid]))
	for k, v := range c.neighborsOfNode[uid] {
		out[k] = v
	}
	return out
}

// NodeColors returns the live data-graph label color bindings.
func (c *Config) NodeColors() map[string]string { return c.nodeColors }

// SchemaNodeColors returns the overlay label color bindings.
func (c *Config) SchemaNodeColors() map[string]string { return c.schemaNodeColors }

// NodeCount returns the cached live node count.
func (c *Config) NodeCount() int { return c.nodeCount }

// SchemaNodeCount returns the cached overlay node count.
func (c *Config) SchemaNodeCount() int { return c.schemaNodeCount }
