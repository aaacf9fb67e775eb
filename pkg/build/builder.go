package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aladdin-tools/build-components/internal/logger"
	"github.com/aladdin-tools/build-components/pkg/component"
	"github.com/aladdin-tools/build-components/pkg/dag"
	"github.com/aladdin-tools/build-components/pkg/plan"
	"github.com/aladdin-tools/build-components/pkg/report"
	"github.com/aladdin-tools/build-components/pkg/strutil"
	"github.com/aladdin-tools/build-components/pkg/types"
)

// CacheBustArg is the build arg carrying a value unique to each build invocation.
const CacheBustArg = "CACHE_BUST"

const (
	KindStructured = "structured"
	KindOpaque     = "opaque"
	KindInvalid    = "invalid"
)

// BuildOpts holds the options of the build command.
type BuildOpts struct {
	ComponentsDir  string   `mapstructure:"components_dir"`
	ManifestPath   string   `mapstructure:"manifest"`
	TagHash        string   `mapstructure:"tag_hash"`
	BuildArg       []string `mapstructure:"build_arg"`
	DryRun         bool     `mapstructure:"dry_run"`
	KeepDockerfile bool     `mapstructure:"keep_dockerfile"`
	ReportDir      string   `mapstructure:"report_dir"`

	Defaults plan.Defaults `mapstructure:",squash"`
}

// Builder runs the build of the components of a project.
type Builder struct {
	Store    *component.Store
	Manifest component.Manifest
	Backend  types.ImageBuilder
	Defaults plan.Defaults
	Metadata ImageMetadata

	// BuildArgs are passed to every backend call.
	BuildArgs map[string]string
	// KeepDockerfile copies generated Dockerfiles to the component directory for every build,
	// not only for local builds.
	KeepDockerfile bool
	// Report, when set, receives the build logs and the JUnit report of the run.
	Report *report.Dir
	// LogOutput is where backend output is written, os.Stdout when nil.
	LogOutput io.Writer
	// CacheBust returns the value of the CACHE_BUST build arg.
	CacheBust func() string
}

// Result is the outcome of a build run.
type Result struct {
	Phase   Phase
	Order   []string
	Reports []report.BuildReport
}

// Run builds the given components, or the default selection when none is given.
// It stops at the first failure, the components left are reported as skipped.
func (b *Builder) Run(ctx context.Context, tagHash string, components []string) (Result, error) {
	res := Result{Phase: PhaseDiscover}

	candidates, err := b.Store.Discover()
	if err != nil {
		return res.fail(fmt.Errorf("cannot discover components in %s: %w", b.Store.Root, err))
	}

	selected := b.Select(tagHash, components, candidates)
	if err := checkKnown(selected, candidates); err != nil {
		return res.fail(err)
	}

	if len(selected) == 0 {
		logger.Infof("No components found for this project. Create a component directory to get started.")
		res.Phase = PhaseDone
		return res, nil
	}

	res.Phase = PhaseValidate
	graph, err := dag.Build(selected, b.Store)
	if err != nil {
		return res.fail(err)
	}
	if err := graph.ValidateAcyclic(); err != nil {
		logger.Errorf("%v", err)
		return res.fail(err)
	}

	res.Phase = PhaseOrder
	res.Order = Order(graph, selected)
	logger.Debugf("Build order: %s", strings.Join(res.Order, ", "))

	res.Phase = PhaseDispatch
	err = b.dispatch(ctx, tagHash, graph, &res)
	b.writeReport(res.Reports)
	if err != nil {
		return res.fail(err)
	}

	logger.Successf("Built images for components: %s", strings.Join(res.Order, ", "))
	res.Phase = PhaseDone

	return res, nil
}

func (r Result) fail(err error) (Result, error) {
	r.Phase = PhaseFailed
	return r, err
}

// Select returns the components to build. An explicit list is de-duplicated, order preserved.
// Otherwise, local builds select every candidate and release builds select the published components.
func (b *Builder) Select(tagHash string, components, candidates []string) []string {
	if len(components) > 0 {
		return strutil.Dedupe(components)
	}

	if tagHash == plan.LocalTagHash {
		return candidates
	}

	return strutil.Dedupe(b.Manifest.PublishedComponents())
}

func checkKnown(selected, candidates []string) error {
	known := make(map[string]struct{}, len(candidates))
	for _, name := range candidates {
		known[name] = struct{}{}
	}

	for _, name := range selected {
		if _, ok := known[name]; !ok {
			return &UnknownComponentError{Component: name}
		}
	}

	return nil
}

// Order returns the topological order of the graph restricted to the selected components.
// Dependencies that are not selected are assumed to be built already.
func Order(graph *dag.Graph, selected []string) []string {
	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		wanted[name] = struct{}{}
	}

	order := make([]string, 0, len(selected))
	for _, name := range graph.TopologicalOrder() {
		if _, ok := wanted[name]; ok {
			order = append(order, name)
		}
	}

	return order
}

func (b *Builder) dispatch(ctx context.Context, tagHash string, graph *dag.Graph, res *Result) error {
	for i, name := range res.Order {
		buildReport := report.BuildReport{Component: name, Kind: b.Kind(name)}

		if err := ctx.Err(); err != nil {
			res.Reports = append(res.Reports, b.skipped(res.Order[i:])...)
			return fmt.Errorf("build interrupted before %s component: %w", name, err)
		}

		logger.Noticef("Starting build for %s component", name)

		tag, err := b.buildComponent(name, tagHash, graph)
		buildReport.Tag = tag
		if err != nil {
			logger.Errorf("Failed to build image for component: %s", name)
			res.Reports = append(res.Reports, buildReport.WithError(err))
			res.Reports = append(res.Reports, b.skipped(res.Order[i+1:])...)
			return err
		}

		logger.Successf("Built image for component: %s", name)
		res.Reports = append(res.Reports, buildReport.WithSuccess())
	}

	return nil
}

func (b *Builder) skipped(names []string) []report.BuildReport {
	reports := make([]report.BuildReport, 0, len(names))
	for _, name := range names {
		reports = append(reports, report.BuildReport{
			Component:   name,
			Kind:        b.Kind(name),
			BuildStatus: report.BuildStatusSkipped,
		})
	}

	return reports
}

// Kind tells how a component is built.
func (b *Builder) Kind(name string) string {
	switch {
	case b.Store.HasConfig(name):
		return KindStructured
	case b.Store.HasDockerfile(name):
		return KindOpaque
	default:
		return KindInvalid
	}
}

func (b *Builder) writeReport(reports []report.BuildReport) {
	if b.Report == nil {
		return
	}

	if err := b.Report.WriteJUnit(reports); err != nil {
		logger.Warnf("Cannot write the build report: %v", err)
		return
	}

	logger.Infof("Build report written to %s", b.Report.Path())
}

func (b *Builder) logOutput(name string) (io.Writer, func()) {
	out := b.LogOutput
	if out == nil {
		out = os.Stdout
	}

	if b.Report == nil {
		return out, func() {}
	}

	file, err := b.Report.BuildLog(name)
	if err != nil {
		logger.Warnf("Cannot create the build log of %s component: %v", name, err)
		return out, func() {}
	}

	return io.MultiWriter(out, file), func() { _ = file.Close() }
}
