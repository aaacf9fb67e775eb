package build

import (
	"fmt"
	"io"

	"github.com/aladdin-tools/build-components/internal/logger"
	"github.com/aladdin-tools/build-components/pkg/buildcontext"
	"github.com/aladdin-tools/build-components/pkg/component"
	"github.com/aladdin-tools/build-components/pkg/dag"
	"github.com/aladdin-tools/build-components/pkg/dockerfile"
	"github.com/aladdin-tools/build-components/pkg/plan"
	"github.com/aladdin-tools/build-components/pkg/types"
	"github.com/google/uuid"
)

// buildComponent builds the image of a component and returns its tag.
func (b *Builder) buildComponent(name, tagHash string, graph *dag.Graph) (string, error) {
	out, closeLog := b.logOutput(name)
	defer closeLog()

	switch b.Kind(name) {
	case KindStructured:
		return b.buildStructured(name, tagHash, graph, out)
	case KindOpaque:
		return b.buildOpaque(name, tagHash, out)
	default:
		return "", &component.ConfigurationError{
			Component: name,
			Reason:    fmt.Sprintf("no %s or %s found", component.ConfigFilename, component.DockerfileName),
		}
	}
}

func (b *Builder) buildStructured(name, tagHash string, graph *dag.Graph, out io.Writer) (string, error) {
	cfg, err := b.Store.Load(name)
	if err != nil {
		return "", err
	}

	p, err := plan.Resolve(plan.Input{
		Project:   b.Manifest.Name,
		TagHash:   tagHash,
		Component: name,
		Config:    cfg,
		Graph:     graph,
		Defaults:  b.Defaults,
		Source:    b.Store,
	})
	if err != nil {
		return "", err
	}

	logger.Infof("Building aladdin image for %s component: %s", p.LanguageName(), name)
	if user := p.UserInfo(); user.IsComplete() {
		logger.Debugf("Image of %s component creates user %s with sudo rights", name, user.Chown())
	}

	content, err := dockerfile.Render(p)
	if err != nil {
		return p.Tag(), err
	}

	buildCtx, err := buildcontext.Prepare(b.Store.Root, name, content, p.IsDevBuild() || b.KeepDockerfile)
	if err != nil {
		return p.Tag(), err
	}

	defer func() {
		if err := buildCtx.Cleanup(); err != nil {
			logger.Warnf("Cannot clean the build context of %s component: %v", name, err)
		}
	}()

	opts := b.options(name, p.Tag(), tagHash, b.Store.ConfigPath(name), p.BaseImage(), out)
	opts.Context = b.Store.Root

	if err := b.build(name, opts); err != nil {
		return p.Tag(), err
	}

	if p.IsDevBuild() {
		logger.Infof("Building editor image for %s component", name)

		editor := b.options(name, p.EditorTag(), tagHash, b.Store.ConfigPath(name), p.Tag(), out)
		editor.Dockerfile = dockerfile.Editor(p.Tag())

		if err := b.build(name, editor); err != nil {
			return p.Tag(), err
		}
	}

	return p.Tag(), nil
}

func (b *Builder) buildOpaque(name, tagHash string, out io.Writer) (string, error) {
	tag := fmt.Sprintf("%s:%s", b.Manifest.ImageName(name), tagHash)
	logger.Infof("Building standard image for component: %s", name)

	file := b.Store.DockerfilePath(name)

	var base string
	if parsed, err := dockerfile.Parse(file); err != nil {
		logger.Warnf("Cannot parse the Dockerfile of %s component: %v", name, err)
	} else {
		base = parsed.BaseImage()
		if !parsed.DeclaresArg(CacheBustArg) {
			warnMissingCacheBust(name, out)
		}
	}

	opts := b.options(name, tag, tagHash, file, base, out)
	opts.Context = b.Store.Root
	opts.File = file

	return tag, b.build(name, opts)
}

// warnMissingCacheBust reports an opaque Dockerfile whose layers never see the CACHE_BUST value.
func warnMissingCacheBust(name string, out io.Writer) {
	msg := fmt.Sprintf("The Dockerfile of %s component does not declare ARG %s, its layers may be served from cache",
		name, CacheBustArg)
	logger.Warnf("%s", msg)
	_, _ = fmt.Fprintf(out, "WARNING: %s\n", msg)
}

func (b *Builder) build(name string, opts types.ImageBuilderOpts) error {
	if err := b.Backend.Build(opts); err != nil {
		return &BackendError{Component: name, Tag: opts.Tags[0], Err: err}
	}

	return nil
}

// options returns the backend options shared by every build of a component.
func (b *Builder) options(name, tag, tagHash, file, base string, out io.Writer) types.ImageBuilderOpts {
	buildArgs := make(map[string]string, len(b.BuildArgs)+1)
	for k, v := range b.BuildArgs {
		buildArgs[k] = v
	}
	if _, ok := buildArgs[CacheBustArg]; !ok {
		buildArgs[CacheBustArg] = b.cacheBust()
	}

	meta := b.Metadata.WithComponent(b.Manifest.ImageName(name), tagHash, file, base)

	return types.ImageBuilderOpts{
		Tags:      []string{tag},
		BuildArgs: buildArgs,
		Labels:    meta.ToLabels(),
		LogOutput: out,
	}
}

func (b *Builder) cacheBust() string {
	if b.CacheBust != nil {
		return b.CacheBust()
	}

	return uuid.NewString()
}
