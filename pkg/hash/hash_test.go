package hash_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aladdin-tools/build-components/pkg/component"
	"github.com/aladdin-tools/build-components/pkg/dag"
	"github.com/aladdin-tools/build-components/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func setupFixtures(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "shared", component.ConfigFilename), "")
	writeFile(t, filepath.Join(root, "shared", "shared", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "api", component.ConfigFilename), "dependencies: [shared]\n")
	writeFile(t, filepath.Join(root, "api", "main.py"), "print('hello')\n")
	writeFile(t, filepath.Join(root, "api", ".dockerignore"), "*.log\n__pycache__\n")
	writeFile(t, filepath.Join(root, "worker", component.DockerfileName), "FROM alpine\n")

	return root
}

func hashes(t *testing.T, root string) map[string]string {
	t.Helper()

	store := component.NewStore(root)
	names, err := store.Discover()
	require.NoError(t, err)

	graph, err := dag.Build(names, store)
	require.NoError(t, err)

	result, err := hash.Components(context.Background(), store, graph)
	require.NoError(t, err)

	return result
}

func TestComponents(t *testing.T) {
	t.Parallel()

	root := setupFixtures(t)
	initial := hashes(t, root)

	require.Len(t, initial, 3)
	for name, h := range initial {
		assert.Len(t, strings.Split(h, "-"), hash.Words, name)
	}
	assert.Equal(t, initial, hashes(t, root), "hashes are stable")
}

//nolint:govet
func TestComponents_HashesChangeWhenContextChanges(t *testing.T) {
	t.Parallel()

	testcases := map[string]struct {
		AddFileAtPath         string
		ExpectSharedUnchanged bool
		ExpectAPIUnchanged    bool
		ExpectWorkerUnchanged bool
	}{
		"dependent hash changes when dependency changes": {
			AddFileAtPath:         "shared/newfile.py",
			ExpectSharedUnchanged: false,
			ExpectAPIUnchanged:    false,
			ExpectWorkerUnchanged: true,
		},
		"dependency hash is kept when dependent changes": {
			AddFileAtPath:         "api/newfile.py",
			ExpectSharedUnchanged: true,
			ExpectAPIUnchanged:    false,
			ExpectWorkerUnchanged: true,
		},
		"ignored files do not change the hash": {
			AddFileAtPath:         "api/debug.log",
			ExpectSharedUnchanged: true,
			ExpectAPIUnchanged:    true,
			ExpectWorkerUnchanged: true,
		},
		"ignored directories do not change the hash": {
			AddFileAtPath:         "api/__pycache__/main.pyc",
			ExpectSharedUnchanged: true,
			ExpectAPIUnchanged:    true,
			ExpectWorkerUnchanged: true,
		},
		"generated dockerfile does not change the hash": {
			AddFileAtPath:         "api/build.dockerfile",
			ExpectSharedUnchanged: true,
			ExpectAPIUnchanged:    true,
			ExpectWorkerUnchanged: true,
		},
	}

	for name, testcase := range testcases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := setupFixtures(t)
			initial := hashes(t, root)

			writeFile(t, filepath.Join(root, testcase.AddFileAtPath), "new content")
			updated := hashes(t, root)

			assert.Equal(t, testcase.ExpectSharedUnchanged, initial["shared"] == updated["shared"])
			assert.Equal(t, testcase.ExpectAPIUnchanged, initial["api"] == updated["api"])
			assert.Equal(t, testcase.ExpectWorkerUnchanged, initial["worker"] == updated["worker"])
		})
	}
}

func TestComponents_MissingDependencyDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "api", component.ConfigFilename), "dependencies: [external]\n")

	result := hashes(t, root)
	assert.Contains(t, result, "external")
	assert.Contains(t, result, "api")
}

func TestCombine(t *testing.T) {
	t.Parallel()

	first, err := hash.Combine(map[string]string{"api": "a-b-c-d", "worker": "e-f-g-h"})
	require.NoError(t, err)

	second, err := hash.Combine(map[string]string{"worker": "e-f-g-h", "api": "a-b-c-d"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := hash.Combine(map[string]string{"api": "a-b-c-d", "worker": "x-f-g-h"})
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}
