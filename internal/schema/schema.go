// Package schema models the graph schema served alongside query results:
// node and edge table definitions, property declarations, and the
// connectivity and type queries the store resolves against them.
package schema

import (
	"sort"

	"github.com/xkilldash9x/graphlens/api/schemas"
	"go.uber.org/zap"
)

// Schema is an immutable view over a raw schema document. All lookups are
// nil-safe: unresolvable names yield empty/false sentinels plus a logged
// diagnostic, never an error.
type Schema struct {
	nodeTables []schemas.NodeTable
	edgeTables []schemas.EdgeTable
	decls      map[string]schemas.PropertyType

	nodeStaticSets [][]string
	edgeStaticSets [][]string
	dynamicNode    bool
	dynamicEdge    bool

	log *zap.Logger
}

// TableProperty pairs a resolved property name with its declared type.
type TableProperty struct {
	Name string
	Type schemas.PropertyType
}

// Connection reports whether and how a node table touches an edge table.
type Connection struct {
	IsConnected bool
	IsSource    bool
}

// New builds a Schema from a raw document. A nil document yields an empty
// schema; absent table or declaration lists default to empty.
func New(raw *schemas.RawSchema, logger *zap.Logger) *Schema {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Schema{
		decls: make(map[string]schemas.PropertyType),
		log:   logger.Named("schema"),
	}
	if raw == nil {
		return s
	}

	s.nodeTables = raw.NodeTables
	s.edgeTables = raw.EdgeTables
	for _, decl := range raw.PropertyDeclarations {
		s.decls[decl.Name] = schemas.ParsePropertyType(string(decl.Type))
	}

	for _, nt := range s.nodeTables {
		if len(nt.LabelNames) > 0 {
			s.nodeStaticSets = append(s.nodeStaticSets, nt.LabelNames)
		}
		if nt.DynamicLabelExpr != "" {
			s.dynamicNode = true
		}
	}
	for _, et := range s.edgeTables {
		if len(et.LabelNames) > 0 {
			s.edgeStaticSets = append(s.edgeStaticSets, et.LabelNames)
		}
		if et.DynamicLabelExpr != "" {
			s.dynamicEdge = true
		}
	}
	return s
}

// NodeTables returns the node table definitions in declaration order.
// Positional indices into this slice are the node table IDs.
func (s *Schema) NodeTables() []schemas.NodeTable { return s.nodeTables }

// EdgeTables returns the edge table definitions in declaration order. Edge
// table IDs continue the node table ID sequence.
func (s *Schema) EdgeTables() []schemas.EdgeTable { return s.edgeTables }

// TableID returns the positional ID for a table name, stable for the
// lifetime of this Schema instance.
func (s *Schema) TableID(name string) (int, bool) {
	for i, nt := range s.nodeTables {
		if nt.Name == name {
			return i, true
		}
	}
	for j, et := range s.edgeTables {
		if et.Name == name {
			return len(s.nodeTables) + j, true
		}
	}
	return 0, false
}

// NodeTableIndex returns the position of a node table by name.
func (s *Schema) NodeTableIndex(name string) (int, bool) {
	for i, nt := range s.nodeTables {
		if nt.Name == name {
			return i, true
		}
	}
	return 0, false
}

// GetNodeFromName resolves a node table by name.
func (s *Schema) GetNodeFromName(name string) (schemas.NodeTable, bool) {
	for _, nt := range s.nodeTables {
		if nt.Name == name {
			return nt, true
		}
	}
	return schemas.NodeTable{}, false
}

// GetEdgeFromName resolves an edge table by name.
func (s *Schema) GetEdgeFromName(name string) (schemas.EdgeTable, bool) {
	for _, et := range s.edgeTables {
		if et.Name == name {
			return et, true
		}
	}
	return schemas.EdgeTable{}, false
}

// GetPropertiesOfTable resolves each property definition on a table against
// the property declarations. Definitions that name an unknown declaration
// are skipped with a diagnostic; a table can legitimately resolve to zero
// properties.
func (s *Schema) GetPropertiesOfTable(defs []schemas.PropertyDefinition) []TableProperty {
	props := make([]TableProperty, 0, len(defs))
	for _, def := range defs {
		t, ok := s.decls[def.PropertyDeclarationName]
		if !ok {
			s.log.Warn("No property declaration for definition",
				zap.String("property", def.PropertyDeclarationName))
			continue
		}
		props = append(props, TableProperty{Name: def.PropertyDeclarationName, Type: t})
	}
	return props
}

// GetEdgesOfNode returns every edge table whose source or destination table
// name equals the node table's name.
func (s *Schema) GetEdgesOfNode(nodeTable schemas.NodeTable) []schemas.EdgeTable {
	var out []schemas.EdgeTable
	for _, et := range s.edgeTables {
		if et.SourceNodeTable.NodeTableName == nodeTable.Name ||
			et.DestinationNodeTable.NodeTableName == nodeTable.Name {
			out = append(out, et)
		}
	}
	return out
}

// NodeIsConnectedToEdge resolves both names and reports whether the node
// table is an endpoint of the edge table, and if so whether it is the
// source side.
func (s *Schema) NodeIsConnectedToEdge(nodeName, edgeName string) Connection {
	node, ok := s.GetNodeFromName(nodeName)
	if !ok {
		return Connection{}
	}
	edge, ok := s.GetEdgeFromName(edgeName)
	if !ok {
		return Connection{}
	}
	switch node.Name {
	case edge.SourceNodeTable.NodeTableName:
		return Connection{IsConnected: true, IsSource: true}
	case edge.DestinationNodeTable.NodeTableName:
		return Connection{IsConnected: true, IsSource: false}
	default:
		return Connection{}
	}
}

// GetNodesOfEdges resolves the endpoint node tables of an edge table.
// Either endpoint may be absent when the schema is inconsistent; that is
// logged, not fatal.
func (s *Schema) GetNodesOfEdges(edge schemas.EdgeTable) (from, to *schemas.NodeTable) {
	if src, ok := s.GetNodeFromName(edge.SourceNodeTable.NodeTableName); ok {
		from = &src
	} else {
		s.log.Warn("Edge table references unknown source node table",
			zap.String("edge", edge.Name),
			zap.String("source", edge.SourceNodeTable.NodeTableName))
	}
	if dst, ok := s.GetNodeFromName(edge.DestinationNodeTable.NodeTableName); ok {
		to = &dst
	} else {
		s.log.Warn("Edge table references unknown destination node table",
			zap.String("edge", edge.Name),
			zap.String("destination", edge.DestinationNodeTable.NodeTableName))
	}
	return from, to
}

// PropertyType resolves a declared property type by declaration name.
func (s *Schema) PropertyType(name string) (schemas.PropertyType, bool) {
	t, ok := s.decls[name]
	return t, ok
}

// DynamicNodeLabels reports whether any node table uses a dynamic label
// expression.
func (s *Schema) DynamicNodeLabels() bool { return s.dynamicNode }

// DynamicEdgeLabels reports whether any edge table uses a dynamic label
// expression.
func (s *Schema) DynamicEdgeLabels() bool { return s.dynamicEdge }

// StaticNodeLabelSets returns the non-empty label sets declared by node
// tables, in table order. The order is implementation-defined but stable
// per instance; dynamic label subtraction applies the first matching set.
func (s *Schema) StaticNodeLabelSets() [][]string { return s.nodeStaticSets }

// StaticEdgeLabelSets returns the non-empty label sets declared by edge
// tables, in table order.
func (s *Schema) StaticEdgeLabelSets() [][]string { return s.edgeStaticSets }

// KeyPropertyNames resolves the key property names for a node carrying the
// given labels and properties. A table matches when its label set equals
// the node's (and all key columns are present as properties), or, with
// dynamic labels in use, when its label set is a subset of the node's.
func (s *Schema) KeyPropertyNames(labels []string, properties map[string]any) []string {
	if len(labels) == 0 || len(properties) == 0 {
		return nil
	}

	sortedLabels := append([]string(nil), labels...)
	sort.Strings(sortedLabels)
	labelSet := make(map[string]struct{}, len(sortedLabels))
	for _, l := range sortedLabels {
		labelSet[l] = struct{}{}
	}

	for _, nt := range s.nodeTables {
		if s.dynamicNode && subsetOf(nt.LabelNames, labelSet) {
			return nt.KeyColumns
		}

		if len(nt.LabelNames) != len(sortedLabels) {
			continue
		}
		tableLabels := append([]string(nil), nt.LabelNames...)
		sort.Strings(tableLabels)
		if !equalStrings(tableLabels, sortedLabels) {
			continue
		}
		allPresent := true
		for _, key := range nt.KeyColumns {
			if _, ok := properties[key]; !ok {
				allPresent = false
				break
			}
		}
		if allPresent {
			return nt.KeyColumns
		}
	}
	return nil
}

func subsetOf(labels []string, set map[string]struct{}) bool {
	if len(labels) == 0 {
		return false
	}
	for _, l := range labels {
		if _, ok := set[l]; !ok {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
