// Package hash computes content hashes of components.
//
// The hash of a component covers the files of its directory that are not excluded by its
// .dockerignore, and the hashes of the components it depends on. It is humanized, so that it
// can be used as a readable tag hash.
package hash

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/aladdin-tools/build-components/internal/logger"
	"github.com/aladdin-tools/build-components/pkg/dag"
	"github.com/docker/cli/cli/command/image/build"
	"github.com/moby/patternmatcher"
	"github.com/wolfeidau/humanhash"
	"golang.org/x/sync/errgroup"
)

const (
	dockerignore = ".dockerignore"
	// Words is the number of words of a humanized hash.
	Words = 4
)

// generated files never take part in the hash.
var generated = map[string]struct{}{
	"build.dockerfile": {},
}

// Dirs gives the directory of each component.
type Dirs interface {
	Dir(component string) string
}

// Components returns the hash of every component of the graph.
func Components(ctx context.Context, dirs Dirs, graph *dag.Graph) (map[string]string, error) {
	hashes := make(map[string]string, len(graph.Nodes()))

	err := graph.WalkErr(func(node *dag.Node) error {
		files, err := listFiles(dirs.Dir(node.Name))
		if err != nil {
			return fmt.Errorf("could not list files of %s component: %w", node.Name, err)
		}

		var parentHashes []string
		for _, parent := range node.Parents() {
			parentHashes = append(parentHashes, hashes[parent.Name])
		}

		hash, err := hashFiles(ctx, dirs.Dir(node.Name), files, parentHashes)
		if err != nil {
			return fmt.Errorf("could not hash files of %s component: %w", node.Name, err)
		}

		logger.Debugf("Hash of %s component: %s", node.Name, hash)
		hashes[node.Name] = hash

		return nil
	})
	if err != nil {
		return nil, err
	}

	return hashes, nil
}

// Combine returns a single hash from the hashes of several components.
func Combine(hashes map[string]string) (string, error) {
	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)

	sum := sha256.New()
	for _, name := range names {
		fmt.Fprintf(sum, "%s  %s\n", hashes[name], name)
	}

	return humanize(sum.Sum(nil))
}

// listFiles returns the files of a component directory that are not excluded by its .dockerignore.
func listFiles(dir string) ([]string, error) {
	ignorePatterns, err := build.ReadDockerignore(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read ignore patterns: %w", err)
	}

	var matcher *patternmatcher.PatternMatcher
	if len(ignorePatterns) > 0 {
		matcher, err = patternmatcher.New(ignorePatterns)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore patterns: %w", err)
		}
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel == dockerignore {
			return nil
		}
		if _, ok := generated[rel]; ok {
			return nil
		}

		if matcher != nil {
			match, err := matcher.MatchesOrParentMatches(rel)
			if err != nil {
				return err
			}
			if match {
				return nil
			}
		}

		files = append(files, rel)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	return files, err
}

// hashFiles computes the sha256 from the contents of the files passed as argument.
// The files are alphabetically sorted so the returned hash is always the same.
// This also means the hash will change if the file names change but the contents don't.
func hashFiles(ctx context.Context, baseDir string, files []string, parentHashes []string) (string, error) {
	files = append([]string(nil), files...)
	sort.Strings(files)

	for _, file := range files {
		if strings.Contains(file, "\n") {
			return "", errors.New("filenames with newlines are not supported")
		}
	}

	digests := make([][]byte, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			digest, err := hashFile(filepath.Join(baseDir, file))
			if err != nil {
				return err
			}
			digests[i] = digest

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	hash := sha256.New()
	for i, file := range files {
		fmt.Fprintf(hash, "%x  %s\n", digests[i], file)
	}

	parentHashes = append([]string(nil), parentHashes...)
	sort.Strings(parentHashes)
	for _, parentHash := range parentHashes {
		hash.Write([]byte(parentHash))
	}

	return humanize(hash.Sum(nil))
}

func hashFile(path string) ([]byte, error) {
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return nil, err
	}

	return hash.Sum(nil), nil
}

func humanize(sum []byte) (string, error) {
	humanReadableHash, err := humanhash.Humanize(sum, Words)
	if err != nil {
		return "", fmt.Errorf("could not humanize hash: %w", err)
	}

	return humanReadableHash, nil
}
