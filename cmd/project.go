package cmd

import (
	"fmt"

	"github.com/aladdin-tools/build-components/pkg/build"
	"github.com/aladdin-tools/build-components/pkg/component"
	"github.com/aladdin-tools/build-components/pkg/plan"
)

// projectOpts locate the project every command works on.
type projectOpts struct {
	ComponentsDir string `mapstructure:"components_dir"`
	ManifestPath  string `mapstructure:"manifest"`
	TagHash       string `mapstructure:"tag_hash"`
}

// newBuilder returns a Builder for the project in workingDir, without backend.
func newBuilder(workingDir string, opts projectOpts, defaults plan.Defaults) (*build.Builder, error) {
	manifest, err := component.LoadManifest(resolvePath(workingDir, opts.ManifestPath))
	if err != nil {
		return nil, err
	}

	if err := defaults.Validate(); err != nil {
		return nil, err
	}

	if opts.TagHash == "" {
		return nil, fmt.Errorf("tag hash cannot be empty, set --tag-hash or the %s environment variable", tagHashEnv)
	}

	return &build.Builder{
		Store:    component.NewStore(resolvePath(workingDir, opts.ComponentsDir)),
		Manifest: manifest,
		Defaults: defaults,
	}, nil
}
