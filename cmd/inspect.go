package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/graphlens/api/schemas"
	"github.com/xkilldash9x/graphlens/internal/config"
	"github.com/xkilldash9x/graphlens/internal/graph"
	"github.com/xkilldash9x/graphlens/internal/observability"
	"github.com/xkilldash9x/graphlens/internal/store"
	"go.uber.org/zap"
)

func newInspectCmd() *cobra.Command {
	var (
		nodesFile  string
		edgesFile  string
		schemaFile string
		outputFile string
		viewMode   string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Build the graph model from raw record files and emit a render snapshot.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger().Named("inspect")

			nodesData, err := readRecords(nodesFile)
			if err != nil {
				return fmt.Errorf("reading nodes: %w", err)
			}
			edgesData, err := readRecords(edgesFile)
			if err != nil {
				return fmt.Errorf("reading edges: %w", err)
			}
			rawSchema, err := readSchema(schemaFile)
			if err != nil {
				return fmt.Errorf("reading schema: %w", err)
			}

			cfg, err := graph.NewConfig(graph.Params{
				NodesData: nodesData,
				EdgesData: edgesData,
				Schema:    rawSchema,
				Palette:   config.Get().Graph.Palette,
			}, logger)
			if err != nil {
				return fmt.Errorf("building graph configuration: %w", err)
			}

			st := store.New(cfg, logger)
			st.SetViewMode(graph.ViewMode(viewMode))
			snapshot := st.Snapshot()

			logger.Info("Graph model built",
				zap.Int("nodes", cfg.NodeCount()),
				zap.Int("schema_nodes", cfg.SchemaNodeCount()),
				zap.Int("edges", len(snapshot.Edges)))

			out, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding snapshot: %w", err)
			}
			if outputFile == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			if err := os.WriteFile(outputFile, out, 0o644); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
			logger.Info("Snapshot written", zap.String("path", outputFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&nodesFile, "nodes", "", "path to a JSON array of raw node records")
	cmd.Flags().StringVar(&edgesFile, "edges", "", "path to a JSON array of raw edge records")
	cmd.Flags().StringVar(&schemaFile, "schema", "", "path to the raw schema JSON document")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the snapshot to a file instead of stdout")
	cmd.Flags().StringVar(&viewMode, "view", string(graph.ViewModeDefault), "view mode: DEFAULT, SCHEMA or TABLE")
	return cmd
}

// readRecords decodes a JSON array file into loosely-typed records. An
// empty path yields nil, which the parser treats as an empty array.
func readRecords(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return data, nil
}

func readSchema(path string) (*schemas.RawSchema, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rs schemas.RawSchema
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("invalid schema JSON in %s: %w", path, err)
	}
	return &rs, nil
}
