package docker

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aladdin-tools/build-components/internal/logger"
	"github.com/aladdin-tools/build-components/pkg/executor"
	"github.com/aladdin-tools/build-components/pkg/types"
	"github.com/distribution/reference"
)

// ImageBuilder builds an image using the docker command-line executable, with BuildKit enabled.
type ImageBuilder struct {
	exec   executor.ShellExecutor
	dryRun bool
}

// NewImageBuilder creates a new instance of an ImageBuilder.
func NewImageBuilder(exec executor.ShellExecutor, dryRun bool) *ImageBuilder {
	return &ImageBuilder{exec, dryRun}
}

// Build the image using the docker executable.
// When opts.Dockerfile is set, the Dockerfile is sent on stdin and the build has no context.
func (b ImageBuilder) Build(opts types.ImageBuilderOpts) error {
	if len(opts.Tags) == 0 {
		return fmt.Errorf("at least one tag is required")
	}
	for _, tag := range opts.Tags {
		if _, err := reference.ParseNormalizedNamed(tag); err != nil {
			return fmt.Errorf("invalid image tag %q: %w", tag, err)
		}
	}

	args := CommandArgs(opts)

	if b.dryRun {
		logger.Infof("[DRY-RUN] env %s", strings.Join(args, " "))
		return nil
	}

	logger.Debugf("Docker build command: env %s", strings.Join(args, " "))

	output := opts.LogOutput
	if output == nil {
		output = os.Stdout
	}

	if opts.IsInline() {
		return b.exec.ExecuteWithInput(bytes.NewReader(opts.Dockerfile), output, "env", args...)
	}

	return b.exec.ExecuteWithWriter(output, "env", args...)
}

// CommandArgs returns the arguments of the "env" command running the docker build.
// Build args, labels and tags are sorted so that the command line is stable.
func CommandArgs(opts types.ImageBuilderOpts) []string {
	args := []string{"DOCKER_BUILDKIT=1", "docker", "build"}

	for _, k := range sortedKeys(opts.BuildArgs) {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", k, opts.BuildArgs[k]))
	}

	for _, k := range sortedKeys(opts.Labels) {
		args = append(args, "--label", fmt.Sprintf("%s=%s", k, opts.Labels[k]))
	}

	for _, tag := range opts.Tags {
		args = append(args, "--tag", tag)
	}

	if opts.IsInline() {
		return append(args, "-")
	}

	if opts.File != "" {
		args = append(args, "-f", opts.File)
	}

	return append(args, opts.Context)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
