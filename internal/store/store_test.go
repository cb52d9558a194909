package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/graphlens/api/schemas"
	"github.com/xkilldash9x/graphlens/internal/graph"
	"go.uber.org/zap"
)

func nodeRecord(uid string, labels []any, props map[string]any) map[string]any {
	m := map[string]any{"identifier": uid, "labels": labels}
	if props != nil {
		m["properties"] = props
	}
	return m
}

func edgeRecord(uid, src, dst string, labels []any) map[string]any {
	return map[string]any{
		"identifier":                  uid,
		"source_node_identifier":      src,
		"destination_node_identifier": dst,
		"labels":                      labels,
	}
}

func companySchema() *schemas.RawSchema {
	return &schemas.RawSchema{
		NodeTables: []schemas.NodeTable{
			{
				Name:       "Person",
				LabelNames: []string{"Person"},
				KeyColumns: []string{"id"},
				PropertyDefinitions: []schemas.PropertyDefinition{
					{PropertyDeclarationName: "id"},
					{PropertyDeclarationName: "name"},
				},
			},
			{Name: "Company", LabelNames: []string{"Company"}},
		},
		EdgeTables: []schemas.EdgeTable{
			{
				Name:                 "WorksAt",
				LabelNames:           []string{"WORKS_AT"},
				SourceNodeTable:      schemas.TableReference{NodeTableName: "Person"},
				DestinationNodeTable: schemas.TableReference{NodeTableName: "Company"},
			},
			{
				Name:                 "Knows",
				LabelNames:           []string{"KNOWS"},
				SourceNodeTable:      schemas.TableReference{NodeTableName: "Person"},
				DestinationNodeTable: schemas.TableReference{NodeTableName: "Person"},
			},
		},
		PropertyDeclarations: []schemas.PropertyDeclaration{
			{Name: "id", Type: "INT64"},
			{Name: "name", Type: "STRING"},
		},
	}
}

// newTestStore builds a store over a small two-person, one-company graph
// with the company schema attached.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg, err := graph.NewConfig(graph.Params{
		NodesData: []any{
			nodeRecord("p1", []any{"Person"}, map[string]any{"id": float64(1), "name": "Ada"}),
			nodeRecord("p2", []any{"Person"}, map[string]any{"id": float64(2), "name": "Linus"}),
			nodeRecord("c1", []any{"Company"}, map[string]any{"name": "Initech"}),
		},
		EdgesData: []any{
			edgeRecord("w1", "p1", "c1", []any{"WORKS_AT"}),
			edgeRecord("k1", "p1", "p2", []any{"KNOWS"}),
		},
		Schema: companySchema(),
	}, zap.NewNop())
	require.NoError(t, err)
	return New(cfg, zap.NewNop())
}

func mustNode(t *testing.T, s *Store, uid string) *graph.Node {
	t.Helper()
	n, ok := s.Config().NodeByUID(uid)
	require.True(t, ok)
	return n
}

func TestViewModes(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.Len(t, s.GetNodes(), 3)
	require.Len(t, s.GetEdges(), 2)

	s.SetViewMode(graph.ViewModeSchema)
	schemaNodes := s.GetNodes()
	require.Len(t, schemaNodes, 2)
	assert.Equal(t, "schema-node-0", schemaNodes[0].UID)
	assert.Len(t, s.GetEdges(), 2)

	s.SetViewMode(graph.ViewModeTable)
	assert.Empty(t, s.GetNodes())
	assert.Empty(t, s.GetEdges())
}

func TestNeighborQueries(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p1 := mustNode(t, s, "p1")
	p2 := mustNode(t, s, "p2")
	c1 := mustNode(t, s, "c1")

	t.Run("should return edges of a node in uid order", func(t *testing.T) {
		t.Parallel()
		edges := s.GetEdgesOfNode(p1)
		require.Len(t, edges, 2)
		assert.Equal(t, "k1", edges[0].UID)
		assert.Equal(t, "w1", edges[1].UID)
		assert.Empty(t, s.GetEdgesOfNode(nil))
	})

	t.Run("should return the neighbor map", func(t *testing.T) {
		t.Parallel()
		neighbors := s.GetNeighborsOfNode(p1)
		require.Len(t, neighbors, 2)
		assert.Contains(t, neighbors, "p2")
		assert.Contains(t, neighbors, "c1")
		assert.Empty(t, s.GetNeighborsOfNode(nil))
	})

	t.Run("should sort edges by neighbor display label", func(t *testing.T) {
		t.Parallel()
		sorted := s.GetEdgesOfNodeSorted(p1)
		require.Len(t, sorted, 2)
		// Company sorts before Person.
		assert.Equal(t, "w1", sorted[0].UID)
		assert.Equal(t, "k1", sorted[1].UID)
	})

	t.Run("should answer connectivity membership", func(t *testing.T) {
		t.Parallel()
		w1, _ := s.Config().EdgeByUID("w1")
		assert.True(t, s.EdgeIsConnectedToNode(w1, p1))
		assert.True(t, s.EdgeIsConnectedToNode(w1, c1))
		assert.False(t, s.EdgeIsConnectedToNode(w1, p2))
		assert.False(t, s.EdgeIsConnectedToNode(nil, p1))
		assert.False(t, s.EdgeIsConnectedToNode(w1, nil))

		assert.True(t, s.NodeIsNeighborTo(p1, p2))
		assert.True(t, s.NodeIsNeighborTo(p2, p1))
		assert.False(t, s.NodeIsNeighborTo(p2, c1))
		assert.False(t, s.NodeIsNeighborTo(nil, c1))
	})
}

func TestGetEdgeTypesOfNodeSorted(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	t.Run("should enumerate deduplicated label and direction pairs", func(t *testing.T) {
		t.Parallel()
		types := s.GetEdgeTypesOfNodeSorted(mustNode(t, s, "p1"))
		assert.Equal(t, []EdgeType{
			{Label: "KNOWS", Direction: schemas.DirectionIncoming},
			{Label: "KNOWS", Direction: schemas.DirectionOutgoing},
			{Label: "WORKS_AT", Direction: schemas.DirectionOutgoing},
		}, types)
	})

	t.Run("should see only incoming types for a pure destination table", func(t *testing.T) {
		t.Parallel()
		types := s.GetEdgeTypesOfNodeSorted(mustNode(t, s, "c1"))
		assert.Equal(t, []EdgeType{
			{Label: "WORKS_AT", Direction: schemas.DirectionIncoming},
		}, types)
	})

	t.Run("should return nothing for a nil node", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, s.GetEdgeTypesOfNodeSorted(nil))
	})
}

func TestGetPropertyType(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p1 := mustNode(t, s, "p1")

	pt, ok := s.GetPropertyType(p1, "name")
	require.True(t, ok)
	assert.Equal(t, schemas.PropertyTypeString, pt)

	pt, ok = s.GetPropertyType(p1, "id")
	require.True(t, ok)
	assert.Equal(t, schemas.PropertyTypeInt64, pt)

	_, ok = s.GetPropertyType(p1, "ghost")
	assert.False(t, ok)
	_, ok = s.GetPropertyType(nil, "name")
	assert.False(t, ok)
}

func TestEvents(t *testing.T) {
	t.Parallel()

	t.Run("should panic on an unknown event category", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		assert.Panics(t, func() {
			s.Subscribe(EventType("NOT_A_THING"), func(Event) {})
		})
	})

	t.Run("should deliver to listeners in registration order", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		var order []int
		s.Subscribe(EventLayoutModeChange, func(Event) { order = append(order, 1) })
		s.Subscribe(EventLayoutModeChange, func(Event) { order = append(order, 2) })
		s.SetLayoutMode(graph.LayoutModeRadial)
		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("should stop delivering after unsubscribe", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		var calls int
		id := s.Subscribe(EventShowLabels, func(Event) { calls++ })
		s.ShowLabels(false)
		require.True(t, s.Unsubscribe(EventShowLabels, id))
		s.ShowLabels(true)
		assert.Equal(t, 1, calls)
		assert.False(t, s.Unsubscribe(EventShowLabels, id))
	})

	t.Run("view mode setter is a no-op on the current value", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		var events []Event
		s.Subscribe(EventViewModeChange, func(ev Event) { events = append(events, ev) })

		s.SetViewMode(graph.ViewModeDefault)
		assert.Empty(t, events)

		s.SetViewMode(graph.ViewModeSchema)
		require.Len(t, events, 1)
		assert.Equal(t, graph.ViewModeSchema, events[0].Value)
		assert.Equal(t, graph.ViewModeDefault, events[0].Previous)
	})

	t.Run("other setters always fire, even unchanged", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		var colorEvents, focusEvents int
		s.Subscribe(EventColorScheme, func(Event) { colorEvents++ })
		s.Subscribe(EventFocusObject, func(Event) { focusEvents++ })

		s.SetColorScheme(graph.ColorSchemeLabel)
		s.SetColorScheme(graph.ColorSchemeLabel)
		assert.Equal(t, 2, colorEvents)

		s.SetFocusedObject(nil)
		s.SetFocusedObject(nil)
		assert.Equal(t, 2, focusEvents)
	})

	t.Run("should fire CONFIG_CHANGE with the previous config", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		prev := s.Config()
		next, err := graph.NewConfig(graph.Params{}, zap.NewNop())
		require.NoError(t, err)

		var got Event
		s.Subscribe(EventConfigChange, func(ev Event) { got = ev })
		s.SetConfig(next)
		assert.Same(t, next, got.Value)
		assert.Same(t, prev, got.Previous)
		assert.Same(t, next, s.Config())
	})
}

func TestAppendGraphData(t *testing.T) {
	t.Parallel()

	t.Run("should merge new records and fire one update", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		var events []Event
		s.Subscribe(EventGraphDataUpdate, func(ev Event) { events = append(events, ev) })

		update, err := s.AppendGraphData(
			[]any{nodeRecord("p3", []any{"Person"}, map[string]any{"id": float64(3)})},
			[]any{edgeRecord("k2", "p2", "p3", []any{"KNOWS"})},
		)
		require.NoError(t, err)
		assert.Len(t, update.Nodes, 1)
		assert.Len(t, update.Edges, 1)

		require.Len(t, events, 1)
		assert.Same(t, update, events[0].Value)
		assert.True(t, s.NodeIsNeighborTo(mustNode(t, s, "p2"), mustNode(t, s, "p3")))
	})

	t.Run("should not fire when every record is filtered out", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		var fired bool
		s.Subscribe(EventGraphDataUpdate, func(Event) { fired = true })

		update, err := s.AppendGraphData(
			[]any{nodeRecord("p1", []any{"Person"}, map[string]any{"id": float64(99)})},
			[]any{edgeRecord("w1", "p2", "c1", []any{"WORKS_AT"})},
		)
		require.NoError(t, err)
		assert.Empty(t, update.Nodes)
		assert.Empty(t, update.Edges)
		assert.False(t, fired)

		// The stored entities are untouched.
		assert.Equal(t, "Ada", mustNode(t, s, "p1").Properties["name"])
		w1, _ := s.Config().EdgeByUID("w1")
		assert.Equal(t, "p1", w1.SourceUID)
	})

	t.Run("should surface structural errors", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		_, err := s.AppendGraphData("nonsense", nil)
		require.Error(t, err)
	})

	t.Run("should count materialized placeholders as accepted", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		update, err := s.AppendGraphData(nil,
			[]any{edgeRecord("k9", "p1", "ghost", []any{"KNOWS"})})
		require.NoError(t, err)
		require.Len(t, update.Nodes, 1)
		assert.True(t, update.Nodes[0].Intermediate)
		assert.Equal(t, "ghost", update.Nodes[0].UID)
	})
}

func TestRequestNodeExpansion(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var events []Event
	s.Subscribe(EventNodeExpansionRequest, func(ev Event) { events = append(events, ev) })

	t.Run("should emit one typed request with sorted properties", func(t *testing.T) {
		s.RequestNodeExpansion(mustNode(t, s, "p1"), schemas.DirectionOutgoing, "KNOWS")
		require.Len(t, events, 1)

		req, ok := events[0].Value.(ExpansionRequest)
		require.True(t, ok)
		assert.Equal(t, "p1", req.Node.UID)
		assert.Equal(t, schemas.DirectionOutgoing, req.Direction)
		assert.Equal(t, "KNOWS", req.EdgeLabel)
		assert.Equal(t, []NodeProperty{
			{Key: "id", Value: float64(1), Type: schemas.PropertyTypeInt64},
			{Key: "name", Value: "Ada", Type: schemas.PropertyTypeString},
		}, req.Properties)
	})

	t.Run("should ignore a nil node", func(t *testing.T) {
		s.RequestNodeExpansion(nil, schemas.DirectionIncoming, "KNOWS")
		assert.Len(t, events, 1)
	})
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	snap := s.Snapshot()
	assert.Len(t, snap.Nodes, 3)
	assert.Len(t, snap.Edges, 2)
	assert.Contains(t, snap.Colors, "Person")
	require.Contains(t, snap.Curves, "w1")
	assert.Zero(t, snap.Curves["w1"].Amount)

	s.SetViewMode(graph.ViewModeSchema)
	schemaSnap := s.Snapshot()
	assert.Len(t, schemaSnap.Nodes, 2)
	assert.Contains(t, schemaSnap.Colors, "Company")

	s.SetViewMode(graph.ViewModeTable)
	tableSnap := s.Snapshot()
	assert.Empty(t, tableSnap.Nodes)
	assert.Empty(t, tableSnap.Curves)
}
