package build_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aladdin-tools/build-components/pkg/build"
	"github.com/aladdin-tools/build-components/pkg/buildcontext"
	"github.com/aladdin-tools/build-components/pkg/component"
	"github.com/aladdin-tools/build-components/pkg/dag"
	"github.com/aladdin-tools/build-components/pkg/mock"
	"github.com/aladdin-tools/build-components/pkg/plan"
	"github.com/aladdin-tools/build-components/pkg/report"
	"github.com/aladdin-tools/build-components/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// fixture creates a components root. Components mapped to nil are opaque, the others are
// structured with the given component.yaml content.
func fixture(t *testing.T, components map[string]*string) string {
	t.Helper()

	root := t.TempDir()
	for name, cfg := range components {
		if cfg == nil {
			writeFile(t, filepath.Join(root, name, component.DockerfileName), "FROM alpine:3.19\n")
			continue
		}
		writeFile(t, filepath.Join(root, name, component.ConfigFilename), *cfg)
	}

	return root
}

func decl(s string) *string {
	return &s
}

func newBuilder(root string, backend types.ImageBuilder) *build.Builder {
	return &build.Builder{
		Store: component.NewStore(root),
		Manifest: component.Manifest{
			Name:         "lamp",
			DockerImages: []string{"lamp-api", "lamp-worker"},
		},
		Backend:   backend,
		Defaults:  plan.NewDefaults(),
		LogOutput: mock.NewWriter(),
		CacheBust: func() string { return "bust" },
	}
}

// contextCheckingBuilder asserts that the generated build context exists during the build.
type contextCheckingBuilder struct {
	*mock.Builder
	t    *testing.T
	root string
}

func (b contextCheckingBuilder) Build(opts types.ImageBuilderOpts) error {
	if !opts.IsInline() {
		assert.FileExists(b.t, filepath.Join(b.root, buildcontext.DockerfileName))
		assert.FileExists(b.t, filepath.Join(b.root, buildcontext.PipConfName))
		assert.FileExists(b.t, filepath.Join(b.root, buildcontext.PoetryConfName))
	}

	return b.Builder.Build(opts)
}

func TestRun_SharedDependencyNotRequested(t *testing.T) {
	t.Parallel()

	root := fixture(t, map[string]*string{
		"shared": decl(""),
		"api":    decl("dependencies: [shared]\n"),
		"worker": decl("dependencies: [shared]\n"),
	})
	backend := mock.NewBuilder()
	builder := newBuilder(root, contextCheckingBuilder{backend, t, root})

	res, err := builder.Run(context.Background(), "local", []string{"worker", "api", "worker"})
	require.NoError(t, err)

	assert.Equal(t, build.PhaseDone, res.Phase)
	assert.Equal(t, []string{"worker", "api"}, res.Order)
	assert.Equal(t, []string{
		"lamp-worker:local", "lamp-worker:editor",
		"lamp-api:local", "lamp-api:editor",
	}, backend.Tags())

	builds := backend.Builds()
	for _, b := range builds {
		assert.Equal(t, "bust", b.Opts.BuildArgs[build.CacheBustArg])
	}

	main := builds[0].Opts
	assert.Equal(t, root, main.Context)
	assert.Empty(t, main.File)
	assert.Nil(t, main.Dockerfile)
	assert.Equal(t, "lamp-worker", main.Labels["org.opencontainers.image.title"])
	assert.Equal(t, "python:3.8-slim", main.Labels["org.opencontainers.image.base.name"])

	editor := builds[1].Opts
	assert.Equal(t, "FROM lamp-worker:local\nCMD \"/bin/sh\"\nENTRYPOINT []\n", string(editor.Dockerfile))

	assert.NoFileExists(t, filepath.Join(root, buildcontext.DockerfileName))
	assert.NoFileExists(t, filepath.Join(root, buildcontext.PipConfName))
	assert.NoFileExists(t, filepath.Join(root, buildcontext.PoetryConfName))
	assert.FileExists(t, filepath.Join(root, "api", buildcontext.DebugDockerfileName))

	require.Len(t, res.Reports, 2)
	for _, r := range res.Reports {
		assert.Equal(t, report.BuildStatusSuccess, r.BuildStatus)
		assert.Equal(t, build.KindStructured, r.Kind)
	}
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	root := fixture(t, map[string]*string{"a": nil, "b": nil, "c": nil, "d": nil})
	backend := mock.NewBuilder()
	backend.FailOn = 2
	builder := newBuilder(root, backend)

	res, err := builder.Run(context.Background(), "7f3a2c1", []string{"a", "b", "c", "d"})
	require.Error(t, err)

	var backendErr *build.BackendError
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, "b", backendErr.Component)
	assert.Equal(t, "lamp-b:7f3a2c1", backendErr.Tag)
	assert.ErrorIs(t, err, mock.ErrBuildFailed)

	assert.Equal(t, build.PhaseFailed, res.Phase)
	assert.Equal(t, []string{"lamp-a:7f3a2c1", "lamp-b:7f3a2c1"}, backend.Tags())

	statuses := map[string]report.BuildStatus{}
	for _, r := range res.Reports {
		statuses[r.Component] = r.BuildStatus
	}
	assert.Equal(t, map[string]report.BuildStatus{
		"a": report.BuildStatusSuccess,
		"b": report.BuildStatusFailed,
		"c": report.BuildStatusSkipped,
		"d": report.BuildStatusSkipped,
	}, statuses)
	assert.ErrorIs(t, report.CheckError(res.Reports), report.ErrBuildFailed)
}

func TestRun_OpaqueComponent(t *testing.T) {
	t.Parallel()

	root := fixture(t, map[string]*string{"proxy": nil})
	backend := mock.NewBuilder()
	builder := newBuilder(root, backend)
	builder.BuildArgs = map[string]string{build.CacheBustArg: "fixed", "APP_ENV": "dev"}

	_, err := builder.Run(context.Background(), "local", nil)
	require.NoError(t, err)

	builds := backend.Builds()
	require.Len(t, builds, 1)

	opts := builds[0].Opts
	assert.Equal(t, []string{"lamp-proxy:local"}, opts.Tags)
	assert.Equal(t, root, opts.Context)
	assert.Equal(t, filepath.Join(root, "proxy", component.DockerfileName), opts.File)
	assert.Equal(t, map[string]string{build.CacheBustArg: "fixed", "APP_ENV": "dev"}, opts.BuildArgs)
	assert.Equal(t, "alpine:3.19", opts.Labels["org.opencontainers.image.base.name"])
}

func TestRun_OpaqueComponentCacheBustWarning(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		content     string
		expectedLog bool
	}{
		{name: "missing arg", content: "FROM alpine:3.19\nRUN apk add curl\n", expectedLog: true},
		{name: "declared arg", content: "FROM alpine:3.19\nARG CACHE_BUST\nRUN apk add curl\n"},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			writeFile(t, filepath.Join(root, "proxy", component.DockerfileName), test.content)

			backend := mock.NewBuilder()
			output := mock.NewWriter()
			builder := newBuilder(root, backend)
			builder.LogOutput = output

			_, err := builder.Run(context.Background(), "local", nil)
			require.NoError(t, err)

			require.Len(t, backend.Builds(), 1)
			assert.Equal(t, "bust", backend.Builds()[0].Opts.BuildArgs[build.CacheBustArg])

			msg := "The Dockerfile of proxy component does not declare ARG CACHE_BUST"
			if test.expectedLog {
				assert.Contains(t, output.GetString(), msg)
			} else {
				assert.NotContains(t, output.GetString(), msg)
			}
		})
	}
}

func TestRun_ReleaseBuild(t *testing.T) {
	t.Parallel()

	root := fixture(t, map[string]*string{
		"api":    decl(""),
		"worker": nil,
		"docs":   nil,
	})
	backend := mock.NewBuilder()
	builder := newBuilder(root, backend)

	res, err := builder.Run(context.Background(), "7f3a2c1", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"api", "worker"}, res.Order)
	assert.Equal(t, []string{"lamp-api:7f3a2c1", "lamp-worker:7f3a2c1"}, backend.Tags())
	assert.NoFileExists(t, filepath.Join(root, "api", buildcontext.DebugDockerfileName))
}

func TestRun_CycleDispatchesNothing(t *testing.T) {
	t.Parallel()

	root := fixture(t, map[string]*string{
		"a": decl("dependencies: [b]\n"),
		"b": decl("dependencies: [a]\n"),
		"c": nil,
	})
	backend := mock.NewBuilder()

	res, err := newBuilder(root, backend).Run(context.Background(), "local", nil)

	var cycleErr *dag.CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.ElementsMatch(t, []string{"a", "b"}, cycleErr.Components())
	assert.Equal(t, build.PhaseFailed, res.Phase)
	assert.Empty(t, backend.Builds())
	assert.Empty(t, res.Reports)
}

func TestRun_UnknownComponent(t *testing.T) {
	t.Parallel()

	root := fixture(t, map[string]*string{"api": nil})
	writeFile(t, filepath.Join(root, "_shared", component.DockerfileName), "FROM alpine\n")
	backend := mock.NewBuilder()
	builder := newBuilder(root, backend)

	for _, name := range []string{"nope", "_shared"} {
		_, err := builder.Run(context.Background(), "local", []string{"api", name})

		var unknownErr *build.UnknownComponentError
		require.True(t, errors.As(err, &unknownErr), name)
		assert.Equal(t, name, unknownErr.Component)
	}

	assert.Empty(t, backend.Builds())
}

func TestRun_NoComponents(t *testing.T) {
	t.Parallel()

	backend := mock.NewBuilder()
	res, err := newBuilder(t.TempDir(), backend).Run(context.Background(), "local", nil)
	require.NoError(t, err)

	assert.Equal(t, build.PhaseDone, res.Phase)
	assert.Empty(t, res.Order)
	assert.Empty(t, backend.Builds())
}

func TestRun_InvalidComponents(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		setup  func(t *testing.T, root string)
		assert func(t *testing.T, err error)
	}{
		"neither declaration nor Dockerfile": {
			setup: func(t *testing.T, root string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(filepath.Join(root, "api"), 0o755))
			},
			assert: func(t *testing.T, err error) {
				t.Helper()
				var cfgErr *component.ConfigurationError
				require.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, "api", cfgErr.Component)
			},
		},
		"unsupported version": {
			setup: func(t *testing.T, root string) {
				t.Helper()
				writeFile(t, filepath.Join(root, "api", component.ConfigFilename), "language:\n  version: \"2.7\"\n")
			},
			assert: func(t *testing.T, err error) {
				t.Helper()
				var versionErr *plan.UnsupportedVersionError
				require.True(t, errors.As(err, &versionErr))
				assert.Equal(t, "api", versionErr.Component)
			},
		},
		"custom base without user": {
			setup: func(t *testing.T, root string) {
				t.Helper()
				writeFile(t, filepath.Join(root, "api", component.ConfigFilename), "image:\n  base: ubuntu:22.04\n")
			},
			assert: func(t *testing.T, err error) {
				t.Helper()
				var cfgErr *component.ConfigurationError
				require.True(t, errors.As(err, &cfgErr))
			},
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			test.setup(t, root)
			backend := mock.NewBuilder()

			res, err := newBuilder(root, backend).Run(context.Background(), "local", nil)
			require.Error(t, err)
			test.assert(t, err)

			assert.Equal(t, build.PhaseFailed, res.Phase)
			assert.Empty(t, backend.Builds())
			require.Len(t, res.Reports, 1)
			assert.Equal(t, report.BuildStatusFailed, res.Reports[0].BuildStatus)
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	root := fixture(t, map[string]*string{"a": nil, "b": nil})
	backend := mock.NewBuilder()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newBuilder(root, backend).Run(ctx, "local", nil)
	require.ErrorIs(t, err, context.Canceled)

	assert.Empty(t, backend.Builds())
	require.Len(t, res.Reports, 2)
	assert.Equal(t, 2, report.Count(res.Reports, report.BuildStatusSkipped))
}

func TestRun_WritesReport(t *testing.T) {
	t.Parallel()

	root := fixture(t, map[string]*string{"api": nil})
	reportDir, err := report.NewDir(t.TempDir(), fixedTime)
	require.NoError(t, err)

	builder := newBuilder(root, mock.NewBuilder())
	builder.Report = reportDir

	_, err = builder.Run(context.Background(), "local", nil)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(reportDir.BuildLogsDir(), "api.txt"))
	assert.FileExists(t, filepath.Join(reportDir.Path(), report.JUnitFilename))
}

func TestSelect(t *testing.T) {
	t.Parallel()

	builder := newBuilder(t.TempDir(), mock.NewBuilder())
	builder.Manifest.DockerImages = []string{"lamp-api", "lamp-worker", "lamp-api", "external"}
	candidates := []string{"api", "shared", "worker"}

	assert.Equal(t, []string{"b", "a"}, builder.Select("local", []string{"b", "a", "b"}, candidates))
	assert.Equal(t, candidates, builder.Select("local", nil, candidates))
	assert.Equal(t, []string{"api", "worker", "external"}, builder.Select("7f3a2c1", nil, candidates))
}

func TestOrder(t *testing.T) {
	t.Parallel()

	graph := dag.New()
	for _, name := range []string{"c", "b", "a"} {
		graph.AddNode(name)
	}
	graph.AddEdge("a", "b")
	graph.AddEdge("b", "c")

	assert.Equal(t, []string{"a", "c"}, build.Order(graph, []string{"c", "a"}))
}
