package mock

import (
	"errors"
	"sync"

	"github.com/aladdin-tools/build-components/pkg/types"
	"github.com/google/uuid"
)

// ErrBuildFailed is returned by a Builder for the build it was told to fail.
var ErrBuildFailed = errors.New("mock build failed")

// Build is a build recorded by a Builder.
type Build struct {
	ID   string
	Opts types.ImageBuilderOpts
}

// Builder records the builds it is asked to run.
type Builder struct {
	// FailOn is the 1-based index of the build to fail, 0 never fails.
	FailOn int

	mu     sync.Mutex
	builds []Build
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Build(opts types.ImageBuilderOpts) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.builds = append(b.builds, Build{
		ID:   uuid.NewString(),
		Opts: opts,
	})

	if b.FailOn == len(b.builds) {
		return ErrBuildFailed
	}

	return nil
}

// Builds returns the recorded builds, in call order.
func (b *Builder) Builds() []Build {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Build(nil), b.builds...)
}

// Tags returns the first tag of each recorded build, in call order.
func (b *Builder) Tags() []string {
	builds := b.Builds()
	tags := make([]string, 0, len(builds))
	for _, build := range builds {
		if len(build.Opts.Tags) > 0 {
			tags = append(tags, build.Opts.Tags[0])
		}
	}

	return tags
}
