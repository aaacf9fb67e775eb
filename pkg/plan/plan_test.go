package plan_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aladdin-tools/build-components/pkg/component"
	"github.com/aladdin-tools/build-components/pkg/dag"
	"github.com/aladdin-tools/build-components/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeComponent(t *testing.T, root, name, content string) {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, component.ConfigFilename), []byte(content), 0o600))
}

func resolve(t *testing.T, tagHash string, data map[string]any) (*plan.Plan, error) {
	t.Helper()

	return plan.Resolve(plan.Input{
		Project:   "lamp",
		TagHash:   tagHash,
		Component: "api",
		Config:    component.NewConfig(data),
		Defaults:  plan.NewDefaults(),
	})
}

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	p, err := resolve(t, "local", nil)
	require.NoError(t, err)

	assert.Equal(t, "python", p.LanguageName())
	assert.Equal(t, "3.8", p.LanguageVersion())
	assert.Equal(t, "1.0.5", p.PoetryVersion())
	assert.Equal(t, "python:3.8-slim", p.BuilderImage())
	assert.Equal(t, "python:3.8-slim", p.BaseImage())
	assert.Equal(t, "/code", p.Workdir())
	assert.Equal(t, "lamp-api:local", p.Tag())
	assert.Equal(t, "lamp-api:editor", p.EditorTag())
	assert.True(t, p.IsDevBuild())
	assert.Empty(t, p.Dependencies())
	assert.Equal(t, []string{"api"}, p.Components())

	assert.Equal(t, component.UserInfo{
		Create: true,
		Name:   "aladdin-user",
		Group:  "aladdin-user",
		Home:   "/home/aladdin-user",
		Sudo:   true,
	}, p.UserInfo())
}

func TestResolve_ReleaseBuild(t *testing.T) {
	t.Parallel()

	p, err := resolve(t, "7f3a2c1", nil)
	require.NoError(t, err)

	assert.False(t, p.IsDevBuild())
	assert.False(t, p.UserInfo().Sudo)
	assert.Equal(t, "lamp-api:7f3a2c1", p.Tag())
}

func TestResolve_LanguageVersion(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		version any
		builder string
	}{
		{name: "patch version", version: "3.9.7", builder: "python:3.9-slim"},
		{name: "quoted two digits minor", version: "3.10", builder: "python:3.10-slim"},
		{name: "float", version: 3.7, builder: "python:3.7-slim"},
		{name: "major only", version: 3, builder: "python:3-slim"},
		{name: "release candidate", version: "3.12.0rc1", builder: "python:3.12-slim"},
		{name: "four fields", version: "3.8.2.1", builder: "python:3.8-slim"},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			p, err := resolve(t, "local", map[string]any{
				"language": map[string]any{"version": test.version},
			})
			require.NoError(t, err)
			assert.Equal(t, test.builder, p.BuilderImage())
			assert.Equal(t, test.builder, p.BaseImage())
		})
	}
}

func TestResolve_UnsupportedVersion(t *testing.T) {
	t.Parallel()

	for _, version := range []string{"2.7", "4.0", "latest", "30.1", "v3.8", "V3"} {
		_, err := resolve(t, "local", map[string]any{
			"language": map[string]any{"version": version},
		})
		require.Error(t, err, version)

		var versionErr *plan.UnsupportedVersionError
		require.True(t, errors.As(err, &versionErr), version)
		assert.Equal(t, "api", versionErr.Component)
		assert.Equal(t, version, versionErr.Version)
	}
}

func TestResolve_InvalidDefaults(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		defaults    plan.Defaults
		expectedErr string
	}{
		{
			name:        "poetry version",
			defaults:    plan.Defaults{LanguageVersion: "3.8", PoetryVersion: "latest"},
			expectedErr: `invalid poetry version "latest"`,
		},
		{
			name:        "language version",
			defaults:    plan.Defaults{LanguageVersion: "v3.8", PoetryVersion: "1.0.5"},
			expectedErr: `invalid default language version "v3.8": only python 3 is supported`,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := plan.Resolve(plan.Input{
				Project:   "lamp",
				TagHash:   "local",
				Component: "api",
				Defaults:  test.defaults,
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expectedErr)
		})
	}

	require.NoError(t, plan.NewDefaults().Validate())
}

func TestResolve_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	_, err := resolve(t, "local", map[string]any{
		"language": map[string]any{"name": "ruby"},
	})

	var langErr *plan.UnsupportedLanguageError
	require.True(t, errors.As(err, &langErr))
	assert.EqualError(t, err, "unsupported language for api component: ruby")
}

func TestResolve_CustomBase(t *testing.T) {
	t.Parallel()

	t.Run("requires a user name", func(t *testing.T) {
		t.Parallel()

		_, err := resolve(t, "local", map[string]any{
			"image": map[string]any{"base": "ubuntu:22.04"},
		})

		var cfgErr *component.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "api", cfgErr.Component)
	})

	t.Run("keeps the builder image", func(t *testing.T) {
		t.Parallel()

		p, err := resolve(t, "local", map[string]any{
			"language": map[string]any{"version": "3.9"},
			"image": map[string]any{
				"base": "ubuntu:22.04",
				"user": map[string]any{"name": "ubuntu", "home": "/srv"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "ubuntu:22.04", p.BaseImage())
		assert.Equal(t, "python:3.9-slim", p.BuilderImage())
		assert.Empty(t, p.Workdir())
		assert.Equal(t, component.UserInfo{
			Create: false,
			Name:   "ubuntu",
			Group:  "ubuntu",
			Home:   "/srv",
			Sudo:   true,
		}, p.UserInfo())
	})

	t.Run("explicit workdir and user flags", func(t *testing.T) {
		t.Parallel()

		p, err := resolve(t, "local", map[string]any{
			"image": map[string]any{
				"base":    "ubuntu:22.04",
				"workdir": "/app",
				"user": map[string]any{
					"name":   "ubuntu",
					"group":  "users",
					"create": true,
					"sudo":   false,
				},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "/app", p.Workdir())
		assert.Equal(t, component.UserInfo{
			Create: true,
			Name:   "ubuntu",
			Group:  "users",
			Home:   "/home/ubuntu",
			Sudo:   false,
		}, p.UserInfo())
	})
}

func TestResolve_Dependencies(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeComponent(t, root, "api", "dependencies: [models, shared]\nimage:\n  packages: [curl]\n")
	writeComponent(t, root, "models", "dependencies: [shared]\nimage:\n  packages: [libpq-dev]\n")
	writeComponent(t, root, "shared", "")
	require.NoError(t, os.WriteFile(filepath.Join(root, "shared", "pyproject.toml"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "shared", "poetry.lock"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "models", "pyproject.toml"), nil, 0o600))

	store := component.NewStore(root)
	graph, err := dag.Build([]string{"api"}, store)
	require.NoError(t, err)

	cfg, err := store.Load("api")
	require.NoError(t, err)

	p, err := plan.Resolve(plan.Input{
		Project:   "lamp",
		TagHash:   "local",
		Component: "api",
		Config:    cfg,
		Graph:     graph,
		Defaults:  plan.NewDefaults(),
		Source:    store,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"shared", "models"}, p.Dependencies())
	assert.Equal(t, []string{"shared", "models", "api"}, p.Components())

	packages, err := p.ComponentPackages("models")
	require.NoError(t, err)
	assert.Equal(t, []string{"libpq-dev"}, packages)

	packages, err = p.ComponentPackages("api")
	require.NoError(t, err)
	assert.Equal(t, []string{"curl"}, packages)

	assert.True(t, p.IsPoetryProject("shared"))
	assert.False(t, p.IsPoetryProject("models"))
	assert.False(t, p.IsPoetryProject("api"))
}
