package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aladdin-tools/build-components/internal/logger"
	"github.com/aladdin-tools/build-components/pkg/build"
	"github.com/aladdin-tools/build-components/pkg/docker"
	"github.com/aladdin-tools/build-components/pkg/exec"
	"github.com/aladdin-tools/build-components/pkg/preflight"
	"github.com/aladdin-tools/build-components/pkg/report"
	"github.com/aladdin-tools/build-components/pkg/strutil"
)

func buildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [COMPONENT...]",
		Short: "Build the images of the components of the project",
		Long: `build-components build generates a Dockerfile for each structured component and builds
the requested components in dependency order.

When no component is given, the components of the project manifest "docker_images" are built
for a release, and every component found in the components directory for a local build.
Dependencies that are not requested are expected to be built already.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := build.BuildOpts{}
			hydrateOptsFromViper(&opts)

			workingDir, err := os.Getwd()
			if err != nil {
				return err
			}

			res, err := doBuild(cmd.Context(), workingDir, opts, args)
			report.PrintReports(res.Reports)
			if err != nil {
				return fmt.Errorf("build failed during %s phase: %w", res.Phase, err)
			}

			return nil
		},
	}

	cmd.Flags().StringArray("build-arg", nil,
		"Build arg passed to every image build, as KEY=VALUE. Can be repeated.")
	cmd.Flags().Bool("dry-run", false,
		"Log the build commands instead of running them.")
	cmd.Flags().Bool("keep-dockerfile", false,
		"Copy the generated Dockerfile to build.dockerfile in the component directory, even for release builds.")
	cmd.Flags().String("report-dir", "",
		"Directory where build logs and a JUnit report are written. Disabled when empty.")
	cmd.Flags().String("default-language-version", "",
		"Language version of components that do not declare one.")
	cmd.Flags().String("poetry-version", "",
		"Version of poetry installed in builder images.")

	return cmd
}

func doBuild(ctx context.Context, workingDir string, opts build.BuildOpts, components []string) (build.Result, error) {
	if missing := preflight.RunPreflightChecks([]string{"docker"}); len(missing) > 0 && !opts.DryRun {
		logger.Warnf("Builds will fail until %v is installed", missing)
	}

	builder, err := newBuilder(workingDir, projectOpts{
		ComponentsDir: opts.ComponentsDir,
		ManifestPath:  opts.ManifestPath,
		TagHash:       opts.TagHash,
	}, opts.Defaults)
	if err != nil {
		return build.Result{Phase: build.PhaseFailed}, err
	}

	buildArgs, err := strutil.ParseKeyValues(opts.BuildArg)
	if err != nil {
		return build.Result{Phase: build.PhaseFailed}, fmt.Errorf("invalid --build-arg: %w", err)
	}

	shell := exec.NewShellExecutor(builder.Store.Root, nil)
	builder.Backend = docker.NewImageBuilder(shell, opts.DryRun)
	builder.Metadata = build.LoadCommonMetadata(shell)
	builder.Metadata.Created = time.Now()
	builder.BuildArgs = buildArgs
	builder.KeepDockerfile = opts.KeepDockerfile

	if opts.ReportDir != "" {
		dir, err := report.NewDir(resolvePath(workingDir, opts.ReportDir), builder.Metadata.Created)
		if err != nil {
			return build.Result{Phase: build.PhaseFailed}, err
		}
		logger.Infof("Build logs and reports are written to %s", dir.Path())
		builder.Report = dir
	}

	return builder.Run(ctx, opts.TagHash, components)
}
