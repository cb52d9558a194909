package schemas

// -- Raw Schema Models --
// The graph schema as served by the backend: node and edge table
// definitions plus the property declarations they reference. Any of the
// three top-level lists may be absent from the input and defaults to empty.

// RawSchema is the top-level schema document.
type RawSchema struct {
	NodeTables           []NodeTable           `json:"nodeTables,omitempty"`
	EdgeTables           []EdgeTable           `json:"edgeTables,omitempty"`
	PropertyDeclarations []PropertyDeclaration `json:"propertyDeclarations,omitempty"`
}

// NodeTable declares one node kind: its labels, key columns and properties.
type NodeTable struct {
	Name                string               `json:"name"`
	LabelNames          []string             `json:"labelNames,omitempty"`
	KeyColumns          []string             `json:"keyColumns,omitempty"`
	PropertyDefinitions []PropertyDefinition `json:"propertyDefinitions,omitempty"`
	DynamicLabelExpr    string               `json:"dynamicLabelExpr,omitempty"`
}

// EdgeTable declares one edge kind, including its endpoint tables by name.
type EdgeTable struct {
	Name                 string               `json:"name"`
	LabelNames           []string             `json:"labelNames,omitempty"`
	KeyColumns           []string             `json:"keyColumns,omitempty"`
	PropertyDefinitions  []PropertyDefinition `json:"propertyDefinitions,omitempty"`
	DynamicLabelExpr     string               `json:"dynamicLabelExpr,omitempty"`
	SourceNodeTable      TableReference       `json:"sourceNodeTable"`
	DestinationNodeTable TableReference       `json:"destinationNodeTable"`
}

// TableReference names a node table an edge table connects to.
type TableReference struct {
	NodeTableName string `json:"nodeTableName"`
}

// PropertyDefinition binds a table column to a property declaration.
type PropertyDefinition struct {
	PropertyDeclarationName string `json:"propertyDeclarationName"`
	ValueExpressionSql      string `json:"valueExpressionSql,omitempty"`
}

// PropertyDeclaration names a property and its declared type.
type PropertyDeclaration struct {
	Name string       `json:"name"`
	Type PropertyType `json:"type"`
}

// PropertyType is the closed set of declared property types.
type PropertyType string

const (
	PropertyTypeUnspecified PropertyType = "TYPE_CODE_UNSPECIFIED"
	PropertyTypeBool        PropertyType = "BOOL"
	PropertyTypeInt64       PropertyType = "INT64"
	PropertyTypeFloat64     PropertyType = "FLOAT64"
	PropertyTypeFloat32     PropertyType = "FLOAT32"
	PropertyTypeTimestamp   PropertyType = "TIMESTAMP"
	PropertyTypeDate        PropertyType = "DATE"
	PropertyTypeString      PropertyType = "STRING"
	PropertyTypeBytes       PropertyType = "BYTES"
	PropertyTypeArray       PropertyType = "ARRAY"
	PropertyTypeStruct      PropertyType = "STRUCT"
	PropertyTypeNumeric     PropertyType = "NUMERIC"
	PropertyTypeJSON        PropertyType = "JSON"
	PropertyTypeProto       PropertyType = "PROTO"
	PropertyTypeEnum        PropertyType = "ENUM"
)

var knownPropertyTypes = map[PropertyType]struct{}{
	PropertyTypeBool:      {},
	PropertyTypeInt64:     {},
	PropertyTypeFloat64:   {},
	PropertyTypeFloat32:   {},
	PropertyTypeTimestamp: {},
	PropertyTypeDate:      {},
	PropertyTypeString:    {},
	PropertyTypeBytes:     {},
	PropertyTypeArray:     {},
	PropertyTypeStruct:    {},
	PropertyTypeNumeric:   {},
	PropertyTypeJSON:      {},
	PropertyTypeProto:     {},
	PropertyTypeEnum:      {},
}

// ParsePropertyType maps a declared type string to its PropertyType,
// falling back to PropertyTypeUnspecified for anything unrecognized.
func ParsePropertyType(s string) PropertyType {
	pt := PropertyType(s)
	if _, ok := knownPropertyTypes[pt]; ok {
		return pt
	}
	return PropertyTypeUnspecified
}
