package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aladdin-tools/build-components/internal/logger"
	"github.com/aladdin-tools/build-components/pkg/component"
	"github.com/aladdin-tools/build-components/pkg/hash"
)

type hashOpts struct {
	ComponentsDir string `mapstructure:"components_dir"`
}

func hashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash [COMPONENT]",
		Short: "Generates a content hash of the components",
		Long: `build-components hash calculates a human readable hash of each component directory,
which also covers the components it depends on.

With a component argument, only the hash of this component is printed. Without argument,
the hash of every component is printed, followed by a hash of the whole project.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts := hashOpts{}
			hydrateOptsFromViper(&opts)

			workingDir, err := os.Getwd()
			if err != nil {
				logger.Fatalf("failed to get current working directory: %v", err)
			}

			if err := doHash(cmd.Context(), os.Stdout, workingDir, opts, args); err != nil {
				logger.Fatalf("Hash failed: %v", err)
			}
		},
	}
}

func doHash(ctx context.Context, w io.Writer, workingDir string, opts hashOpts, args []string) error {
	store := component.NewStore(resolvePath(workingDir, opts.ComponentsDir))

	graph, err := loadGraph(store)
	if err != nil {
		return err
	}

	hashes, err := hash.Components(ctx, store, graph)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		h, ok := hashes[args[0]]
		if !ok {
			return fmt.Errorf("component '%s' does not exist", args[0])
		}

		_, err := fmt.Fprintln(w, h)
		return err
	}

	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", name, hashes[name]); err != nil {
			return err
		}
	}

	project, err := hash.Combine(hashes)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "project\t%s\n", project)
	return err
}
