package dockerfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aladdin-tools/build-components/pkg/dockerfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const digest = "sha256:d23df29669d05462cf55ce2274a3a897aa2e2655d0fad104375f8ef06164b575"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content      string
		expectedFrom []dockerfile.ImageRef
		expectedArgs map[string]string
		expectedBase string
	}{
		"simple dockerfile": {
			content: "FROM registry.com/example\nLABEL name=\"example\"\n",
			expectedFrom: []dockerfile.ImageRef{
				{Name: "registry.com/example"},
			},
			expectedArgs: map[string]string{},
			expectedBase: "registry.com/example",
		},
		"simple dockerfile with tag and digest": {
			content: "FROM registry.com/example:latest@" + digest + "\n",
			expectedFrom: []dockerfile.ImageRef{
				{Name: "registry.com/example", Tag: "latest", Digest: digest},
			},
			expectedArgs: map[string]string{},
			expectedBase: "registry.com/example:latest@" + digest,
		},
		"simple dockerfile with arg": {
			content: "FROM registry.com/example:latest\nARG HELLO=\"there\"\nARG CACHE_BUST\n",
			expectedFrom: []dockerfile.ImageRef{
				{Name: "registry.com/example", Tag: "latest"},
			},
			expectedArgs: map[string]string{"HELLO": "there", "CACHE_BUST": ""},
			expectedBase: "registry.com/example:latest",
		},
		"multistage dockerfile": {
			content: "FROM python:3.9-slim AS builder\nRUN make\n\nfrom registry.com/example as runtime\n" +
				"LABEL name=\"example\"\n",
			expectedFrom: []dockerfile.ImageRef{
				{Name: "python", Tag: "3.9-slim"},
				{Name: "registry.com/example"},
			},
			expectedArgs: map[string]string{},
			expectedBase: "registry.com/example",
		},
		"no from statement": {
			content:      "# empty\n",
			expectedArgs: map[string]string{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			filename := filepath.Join(t.TempDir(), "Dockerfile")
			require.NoError(t, os.WriteFile(filename, []byte(test.content), 0o600))

			result, err := dockerfile.Parse(filename)
			require.NoError(t, err)

			assert.Equal(t, test.expectedFrom, result.From)
			assert.Equal(t, test.expectedArgs, result.Args)
			assert.Equal(t, test.expectedBase, result.BaseImage())
		})
	}
}

func TestDeclaresArg(t *testing.T) {
	t.Parallel()

	filename := filepath.Join(t.TempDir(), "Dockerfile")
	require.NoError(t, os.WriteFile(filename, []byte("FROM alpine\nARG CACHE_BUST\nARG VERSION=1.0 # pinned\n"), 0o600))

	result, err := dockerfile.Parse(filename)
	require.NoError(t, err)

	assert.True(t, result.DeclaresArg("CACHE_BUST"))
	assert.True(t, result.DeclaresArg("VERSION"))
	assert.Equal(t, "1.0", result.Args["VERSION"])
	assert.False(t, result.DeclaresArg("HELLO"))
}

func TestParse_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := dockerfile.Parse(filepath.Join(t.TempDir(), "Dockerfile"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
