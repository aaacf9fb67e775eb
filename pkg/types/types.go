package types

import (
	"io"
)

// ImageBuilder is the interface for building oci images.
type ImageBuilder interface {
	Build(opts ImageBuilderOpts) error
}

// ImageBuilderOpts is a set of options to perform oci image build.
type ImageBuilderOpts struct {
	// Path to the build context. Ignored when Dockerfile is set.
	Context string
	// File is the path of the Dockerfile, relative to the working directory.
	// When empty, the backend looks for a Dockerfile at the root of the context.
	File string
	// Dockerfile is an inline Dockerfile, built without context.
	Dockerfile []byte
	// Name of the tags to build, same as passed to the '-t' flag of the docker build command.
	Tags []string
	// Labels a key/value set of labels to add to the image.
	Labels map[string]string
	// BuildArgs a key/value set of build args to pass to the build command.
	BuildArgs map[string]string
	// LogOutput is writer where build logs should be written
	LogOutput io.Writer
}

// IsInline reports whether the build is a no-context build of an inline Dockerfile.
func (o ImageBuilderOpts) IsInline() bool {
	return o.Dockerfile != nil
}
