// Package buildcontext writes the generated files a structured component build expects
// at the root of the components directory, and removes them once the build is over.
package buildcontext

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aladdin-tools/build-components/internal/logger"
)

const (
	DockerfileName      = "Dockerfile"
	PipConfName         = "pip.conf"
	PoetryConfName      = "poetry.toml"
	DebugDockerfileName = "build.dockerfile"
)

const pipConf = `# This is a dynamically generated file created by build-components for the
# purpose of building the component containers.
# It is copied into our docker images to globally configure pip

[global]
# Install packages under the user directory
user = true
# Disable the cache dir
no-cache-dir = false

[install]
# Disable the .local warning
no-warn-script-location = false
`

const poetryConf = `# This is a dynamically generated file created by build-components for the
# purpose of building the component containers.
# It is copied into our docker images to globally configure poetry

[virtualenvs]
# We're in a docker container, there's no need for virtualenvs
# One should still specify "ENV PIP_USER yes" to let poetry know
# install packages as --user so they show up in ~/.local
create = false
`

// Context is a prepared build context. Cleanup must be called once the build is done.
type Context struct {
	files []string
}

// Prepare writes the generated Dockerfile, pip.conf and poetry.toml into root.
// When copyDockerfile is set, the Dockerfile is also copied to <component>/build.dockerfile,
// where it is left for inspection.
func Prepare(root, component string, dockerfile []byte, copyDockerfile bool) (*Context, error) {
	c := &Context{}

	files := []struct {
		name    string
		content []byte
	}{
		{PipConfName, []byte(pipConf)},
		{PoetryConfName, []byte(poetryConf)},
		{DockerfileName, dockerfile},
	}

	for _, file := range files {
		path := filepath.Join(root, file.name)
		c.files = append(c.files, path)

		if err := os.WriteFile(path, file.content, 0o644); err != nil { //nolint:gosec
			_ = c.Cleanup()
			return nil, fmt.Errorf("cannot write build context file %s: %w", path, err)
		}
	}

	if copyDockerfile {
		debugPath := filepath.Join(root, component, DebugDockerfileName)
		if err := os.WriteFile(debugPath, dockerfile, 0o644); err != nil { //nolint:gosec
			logger.Warnf("Cannot copy the generated Dockerfile to %s: %v", debugPath, err)
		} else {
			logger.Debugf("Generated Dockerfile copied to %s", debugPath)
		}
	}

	return c, nil
}

// Cleanup removes the generated files. Files that are already gone are ignored.
func (c *Context) Cleanup() error {
	var errs []error
	for _, path := range c.files {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	c.files = nil

	return errors.Join(errs...)
}
