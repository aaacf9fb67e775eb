package component

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aladdin-tools/build-components/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFilename is the name of the structured declaration of a component.
	ConfigFilename = "component.yaml"
	// DockerfileName is the name of the raw build instructions of an opaque component.
	DockerfileName = "Dockerfile"
	// ReservedPrefix marks directories of the components root that are not components.
	ReservedPrefix = "_"
)

// Loader loads component declarations.
type Loader interface {
	Load(component string) (*Config, error)
}

// Store reads component declarations from a components root directory.
// Loaded configs are memoized, a Store is meant to live for a single invocation.
type Store struct {
	Root string

	mu    sync.Mutex
	cache map[string]*Config
}

// NewStore creates a Store for the given components root.
func NewStore(root string) *Store {
	return &Store{
		Root:  root,
		cache: map[string]*Config{},
	}
}

// Dir returns the directory of a component.
func (s *Store) Dir(component string) string {
	return filepath.Join(s.Root, component)
}

// ConfigPath returns the path of the component.yaml of a component.
func (s *Store) ConfigPath(component string) string {
	return filepath.Join(s.Dir(component), ConfigFilename)
}

// DockerfilePath returns the path of the raw Dockerfile of a component.
func (s *Store) DockerfilePath(component string) string {
	return filepath.Join(s.Dir(component), DockerfileName)
}

// HasConfig reports whether the component declares a component.yaml.
func (s *Store) HasConfig(component string) bool {
	return isFile(s.ConfigPath(component))
}

// HasDockerfile reports whether the component provides a raw Dockerfile.
func (s *Store) HasDockerfile(component string) bool {
	return isFile(s.DockerfilePath(component))
}

// Discover lists the components found in the root directory, sorted by name.
func (s *Store) Discover() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("could not list components in %s: %w", s.Root, err)
	}

	var components []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ReservedPrefix) {
			continue
		}
		components = append(components, entry.Name())
	}
	sort.Strings(components)

	return components, nil
}

// Load reads the component.yaml of a component.
// A missing, unreadable or non-mapping file gives an empty config: the component simply
// declares nothing. Structurally invalid declarations return a ConfigurationError.
func (s *Store) Load(component string) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		s.cache = map[string]*Config{}
	}
	if cfg, ok := s.cache[component]; ok {
		return cfg, nil
	}

	cfg, err := s.read(component)
	if err != nil {
		return nil, err
	}
	s.cache[component] = cfg

	return cfg, nil
}

func (s *Store) read(component string) (*Config, error) {
	path := s.ConfigPath(component)

	content, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("Could not read %s, assuming no configuration: %v", path, err)
		}
		return NewConfig(nil), nil
	}

	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		logger.Warnf("Could not parse %s, assuming no configuration: %v", path, err)
		return NewConfig(nil), nil
	}

	data, ok := asMapping(raw)
	if !ok {
		logger.Debugf("%s does not contain a mapping, assuming no configuration", path)
		return NewConfig(nil), nil
	}

	cfg := NewConfig(data)
	if err := cfg.validate(); err != nil {
		return nil, &ConfigurationError{Component: component, Reason: "invalid " + ConfigFilename, Err: err}
	}

	return cfg, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
