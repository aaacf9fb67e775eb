package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/aladdin-tools/build-components/pkg/component"
	"github.com/aladdin-tools/build-components/pkg/dag"
)

const (
	// DefaultLanguage is the only language components can be written in.
	DefaultLanguage = "python"
	// SupportedMajorVersion is the only supported major version of the language.
	SupportedMajorVersion = 3
	// DefaultUserName is the name of the user created in images built from the default base image.
	DefaultUserName = "aladdin-user"
	// DefaultWorkdir is the workdir of images built from the default base image.
	DefaultWorkdir = "/code"
	// LocalTagHash is the tag hash of development builds.
	LocalTagHash = "local"
	// EditorTag is the tag of the editor companion image.
	EditorTag = "editor"
)

// Defaults holds the project-wide values used when a component does not declare them.
type Defaults struct {
	LanguageVersion string `mapstructure:"default_language_version"`
	PoetryVersion   string `mapstructure:"poetry_version"`
}

// NewDefaults returns the built-in defaults.
func NewDefaults() Defaults {
	return Defaults{
		LanguageVersion: "3.8",
		PoetryVersion:   "1.0.5",
	}
}

// Source gives access to the declarations and directories of other components.
type Source interface {
	component.Loader
	Dir(component string) string
}

// Input gathers everything a plan is resolved from.
type Input struct {
	Project   string
	TagHash   string
	Component string
	Config    *component.Config
	Graph     *dag.Graph
	Defaults  Defaults
	Source    Source
}

// Plan is the fully resolved build configuration of a structured component.
type Plan struct {
	project      string
	component    string
	tagHash      string
	config       *component.Config
	defaults     Defaults
	dependencies []string
	source       Source

	languageName    string
	languageVersion string
	baseImage       string
	builderImage    string
	workdir         string
	user            component.UserInfo
}

// Resolve applies the defaulting and validation rules to a component declaration.
func Resolve(in Input) (*Plan, error) {
	if err := in.Defaults.Validate(); err != nil {
		return nil, err
	}

	cfg := in.Config
	if cfg == nil {
		cfg = component.NewConfig(nil)
	}

	p := &Plan{
		project:   in.Project,
		component: in.Component,
		tagHash:   in.TagHash,
		config:    cfg,
		defaults:  in.Defaults,
		source:    in.Source,
	}

	p.languageName = strings.ToLower(cfg.LanguageName().StringOr(DefaultLanguage))
	if p.languageName != DefaultLanguage {
		return nil, &UnsupportedLanguageError{Component: in.Component, Language: p.languageName}
	}

	p.languageVersion = cfg.LanguageVersion().StringOr(in.Defaults.LanguageVersion)
	if err := checkVersion(p.languageVersion); err != nil {
		return nil, &UnsupportedVersionError{Component: in.Component, Version: p.languageVersion, Err: err}
	}

	p.builderImage = fmt.Sprintf("%s:%s-slim", DefaultLanguage, majorMinor(p.languageVersion))

	base := cfg.ImageBase()
	p.baseImage = base.StringOr(p.builderImage)

	switch {
	case cfg.ImageWorkdir().Truthy():
		p.workdir = cfg.ImageWorkdir().StringOr("")
	case !base.IsDefined():
		p.workdir = DefaultWorkdir
	}

	user, err := p.resolveUser(base)
	if err != nil {
		return nil, err
	}
	p.user = user

	if in.Graph != nil {
		order := in.Graph.TransitiveDependencyOrder(in.Component)
		p.dependencies = order[:len(order)-1]
	}

	return p, nil
}

func (p *Plan) resolveUser(base component.Value) (component.UserInfo, error) {
	declared := p.config.ImageUser()

	if base.IsDefined() && !declared.Name.Truthy() {
		return component.UserInfo{}, &component.ConfigurationError{
			Component: p.component,
			Reason:    "must provide at least user.name when using a custom base image",
		}
	}

	name := declared.Name.StringOr(DefaultUserName)
	user := component.UserInfo{
		Name:   name,
		Group:  declared.Group.StringOr(name),
		Home:   declared.Home.StringOr("/home/" + name),
		Create: !base.IsDefined(),
		Sudo:   p.IsDevBuild(),
	}

	if declared.Create.IsDefined() {
		user.Create = declared.Create.Truthy()
	}
	if declared.Sudo.IsDefined() {
		user.Sudo = declared.Sudo.Truthy()
	}

	return user, nil
}

// checkVersion ensures the major version, the first dot-separated field, is the supported one.
// Anything after it is left to the image registry: "3.12.0rc1" and "3.8.2.1" are accepted.
func checkVersion(version string) error {
	major, _, _ := strings.Cut(version, ".")
	if major != strconv.Itoa(SupportedMajorVersion) {
		return fmt.Errorf("only %s %d is supported", DefaultLanguage, SupportedMajorVersion)
	}

	return nil
}

// majorMinor keeps the first two dot-separated fields of a version: "3.8.2" gives "3.8".
func majorMinor(version string) string {
	fields := strings.SplitN(version, ".", 3)
	if len(fields) > 2 {
		fields = fields[:2]
	}

	return strings.Join(fields, ".")
}

// Validate checks the project-wide defaults. The poetry version is pinned with pip, it must be
// a release version.
func (d Defaults) Validate() error {
	if _, err := semver.NewVersion(d.PoetryVersion); err != nil {
		return fmt.Errorf("invalid poetry version %q: %w", d.PoetryVersion, err)
	}
	if err := checkVersion(d.LanguageVersion); err != nil {
		return fmt.Errorf("invalid default language version %q: %w", d.LanguageVersion, err)
	}

	return nil
}

func (p *Plan) Project() string {
	return p.project
}

func (p *Plan) Component() string {
	return p.component
}

func (p *Plan) TagHash() string {
	return p.tagHash
}

func (p *Plan) Config() *component.Config {
	return p.config
}

// ImageName is the name of the image, without tag.
func (p *Plan) ImageName() string {
	return fmt.Sprintf("%s-%s", p.project, p.component)
}

// Tag is the reference the component image is built as.
func (p *Plan) Tag() string {
	return fmt.Sprintf("%s:%s", p.ImageName(), p.tagHash)
}

// EditorTag is the reference of the editor companion image.
func (p *Plan) EditorTag() string {
	return fmt.Sprintf("%s:%s", p.ImageName(), EditorTag)
}

// IsDevBuild reports whether this is a local development build.
func (p *Plan) IsDevBuild() bool {
	return p.tagHash == LocalTagHash
}

func (p *Plan) LanguageName() string {
	return p.languageName
}

func (p *Plan) LanguageVersion() string {
	return p.languageVersion
}

func (p *Plan) DefaultLanguageVersion() string {
	return p.defaults.LanguageVersion
}

func (p *Plan) PoetryVersion() string {
	return p.defaults.PoetryVersion
}

// BaseImage is the image of the final stage.
func (p *Plan) BaseImage() string {
	return p.baseImage
}

// BuilderImage is the image of the builder stages. It never follows image.base.
func (p *Plan) BuilderImage() string {
	return p.builderImage
}

// Workdir is the working directory of the image, empty when the base image defines its own.
func (p *Plan) Workdir() string {
	return p.workdir
}

func (p *Plan) UserInfo() component.UserInfo {
	return p.user
}

// Dependencies returns the transitive dependencies of the component, in build order.
func (p *Plan) Dependencies() []string {
	return append([]string(nil), p.dependencies...)
}

// Components returns the dependencies followed by the component itself.
func (p *Plan) Components() []string {
	return append(p.Dependencies(), p.component)
}

// ComponentPackages returns the system packages to install in the builder stage of a component,
// which is either the planned component or one of its dependencies.
func (p *Plan) ComponentPackages(name string) ([]string, error) {
	if name == "" || name == p.component {
		return p.config.ImagePackages(), nil
	}
	if p.source == nil {
		return nil, nil
	}

	cfg, err := p.source.Load(name)
	if err != nil {
		return nil, err
	}

	return cfg.ImagePackages(), nil
}

// IsPoetryProject reports whether a component directory holds both pyproject.toml and poetry.lock.
func (p *Plan) IsPoetryProject(name string) bool {
	if p.source == nil {
		return false
	}
	if name == "" {
		name = p.component
	}

	dir := p.source.Dir(name)
	for _, file := range []string{"pyproject.toml", "poetry.lock"} {
		info, err := os.Stat(filepath.Join(dir, file))
		if err != nil || info.IsDir() {
			return false
		}
	}

	return true
}
