package component

import (
	"fmt"
	"strings"
)

// SchemaVersion is the only supported value of meta.version.
const SchemaVersion = 1

// Config is the parsed content of a component.yaml file. It is never modified once loaded.
type Config struct {
	data map[string]any
}

// DeclaredUser holds the image.user values as declared, before any defaulting.
type DeclaredUser struct {
	Create Value
	Name   Value
	Group  Value
	Home   Value
	Sudo   Value
}

// NewConfig creates a Config from decoded YAML data. A nil map gives an empty config.
func NewConfig(data map[string]any) *Config {
	if data == nil {
		data = map[string]any{}
	}

	return &Config{data: data}
}

// IsEmpty reports whether nothing was declared.
func (c *Config) IsEmpty() bool {
	return len(c.data) == 0
}

// Get resolves a dot-delimited path, returning Undefined when any segment is missing.
func (c *Config) Get(path string) Value {
	return c.GetOr(path, Undefined)
}

// GetOr resolves a dot-delimited path, returning def the moment a segment is missing
// or the current value is not a mapping.
func (c *Config) GetOr(path string, def Value) Value {
	var current any = c.data

	for _, key := range strings.Split(path, ".") {
		mapping, ok := asMapping(current)
		if !ok {
			return def
		}

		current, ok = mapping[key]
		if !ok {
			return def
		}
	}

	return Defined(current)
}

// Version is the schema version of the declaration, 1 when not declared.
func (c *Config) Version() Value {
	return c.GetOr("meta.version", Defined(SchemaVersion))
}

func (c *Config) LanguageName() Value {
	return c.Get("language.name")
}

func (c *Config) LanguageVersion() Value {
	return c.Get("language.version")
}

func (c *Config) ImageBase() Value {
	return c.Get("image.base")
}

func (c *Config) ImageWorkdir() Value {
	return c.Get("image.workdir")
}

// ImagePackages returns the system packages declared for the component builder stage.
func (c *Config) ImagePackages() []string {
	packages, _ := c.Get("image.packages").Strings()
	return packages
}

func (c *Config) ImageUser() DeclaredUser {
	return DeclaredUser{
		Create: c.Get("image.user.create"),
		Name:   c.Get("image.user.name"),
		Group:  c.Get("image.user.group"),
		Home:   c.Get("image.user.home"),
		Sudo:   c.Get("image.user.sudo"),
	}
}

// Dependencies returns the names of the components this component directly depends on.
func (c *Config) Dependencies() []string {
	deps, _ := c.Get("dependencies").Strings()
	return deps
}

// validate checks the structure of the declaration.
func (c *Config) validate() error {
	version := c.Version()
	if s, _ := version.String(); s != fmt.Sprint(SchemaVersion) {
		return fmt.Errorf("unsupported meta.version %v, only %d is supported", version.Raw(), SchemaVersion)
	}

	for _, key := range []string{"dependencies", "image.packages"} {
		if _, err := c.Get(key).Strings(); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return nil
}

func asMapping(v any) (map[string]any, bool) {
	switch mapping := v.(type) {
	case map[string]any:
		return mapping, true
	case map[any]any:
		converted := make(map[string]any, len(mapping))
		for k, val := range mapping {
			converted[fmt.Sprint(k)] = val
		}
		return converted, true
	}

	return nil, false
}
