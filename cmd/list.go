package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aladdin-tools/build-components/internal/logger"
	"github.com/aladdin-tools/build-components/pkg/build"
)

func listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the list of components of the project",
		Long: `build-components list prints every component of the project with its kind,
base image and direct dependencies`,
		Run: func(cmd *cobra.Command, _ []string) {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := build.ListOpts{}
			hydrateOptsFromViper(&opts)

			workingDir, err := os.Getwd()
			if err != nil {
				logger.Fatalf("failed to get current working directory: %v", err)
			}

			if err := doList(os.Stdout, workingDir, opts); err != nil {
				logger.Fatalf("List failed: %v", err)
			}
		},
	}

	cmd.Flags().StringP("output", "o", "", ""+
		"Output format (console|graphviz|go-template-file)\n"+
		"You can provide a custom format using go-template: like this: \"-o go-template-file=...\".")

	return cmd
}

func doList(w io.Writer, workingDir string, opts build.ListOpts) error {
	formatOpts, err := build.ParseOutputOptions(opts.Output)
	if err != nil {
		return fmt.Errorf("error while parsing output options: %w", err)
	}

	builder, err := newBuilder(workingDir, projectOpts{
		ComponentsDir: opts.ComponentsDir,
		ManifestPath:  opts.ManifestPath,
		TagHash:       opts.TagHash,
	}, opts.Defaults)
	if err != nil {
		return err
	}

	infos, graph, err := builder.List(opts.TagHash)
	if err != nil {
		return err
	}

	return build.GenerateList(w, infos, graph, formatOpts)
}
