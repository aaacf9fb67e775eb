package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aladdin-tools/build-components/internal/logger"
	"github.com/aladdin-tools/build-components/pkg/component"
	"github.com/aladdin-tools/build-components/pkg/dag"
	"github.com/aladdin-tools/build-components/pkg/graphviz"
)

type graphOpts struct {
	ComponentsDir string `mapstructure:"components_dir"`
	OutputDir     string `mapstructure:"output_dir"`
	Png           bool   `mapstructure:"png"`
}

func graphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [COMPONENT...]",
		Short: "Create a visual representation of the dependency graph",
		Long: `Print the dependency graph of the components as a tree, and optionally render it with graphviz

Components given as arguments are highlighted in red in the rendered graph.`,
		Run: func(cmd *cobra.Command, args []string) {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := graphOpts{}
			hydrateOptsFromViper(&opts)

			workingDir, err := os.Getwd()
			if err != nil {
				logger.Fatalf("failed to get current working directory: %v", err)
			}

			if err := doGraph(cmd.Context(), os.Stdout, workingDir, opts, args); err != nil {
				logger.Fatalf("Graph failed: %v", err)
			}
		},
	}

	cmd.Flags().Bool("png", false,
		fmt.Sprintf("Write %s and %s to the output directory.", graphviz.GraphDot, graphviz.GraphPng))
	cmd.Flags().String("output-dir", ".",
		"Directory where the rendered graph is written.")

	return cmd
}

func doGraph(ctx context.Context, w io.Writer, workingDir string, opts graphOpts, highlight []string) error {
	store := component.NewStore(resolvePath(workingDir, opts.ComponentsDir))

	graph, err := loadGraph(store)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, graph.Sprint("Components")); err != nil {
		return err
	}

	if !opts.Png {
		return nil
	}

	outputDir := resolvePath(workingDir, opts.OutputDir)
	if err := graphviz.GenerateGraph(ctx, graph, highlight, outputDir); err != nil {
		return fmt.Errorf("generating graph failed: %w", err)
	}
	logger.Infof("Graph written to %s", outputDir)

	return nil
}

// loadGraph returns the validated dependency graph of every component of the store.
func loadGraph(store *component.Store) (*dag.Graph, error) {
	candidates, err := store.Discover()
	if err != nil {
		return nil, fmt.Errorf("cannot discover components in %s: %w", store.Root, err)
	}

	graph, err := dag.Build(candidates, store)
	if err != nil {
		return nil, err
	}

	if err := graph.ValidateAcyclic(); err != nil {
		return nil, err
	}

	return graph, nil
}
