package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aladdin-tools/build-components/pkg/executor"
)

// ImageMetadata contains information about an image and allows to convert it to standard OCI image labels.
type ImageMetadata struct {
	// Fields translated to labels
	Created  time.Time
	Authors  string
	Revision string
	Source   string
	Title    string
	URL      string
	Version  string
	RefName  string
	BaseName string

	// Other metadata needed internally
	repositoryRootPath  string
	repositoryRootURL   string
	repositoryCommitURL string
	repositoryTag       string
}

// LoadCommonMetadata returns a ImageMetadata struct filled with metadata from the current build environment.
// It automatically discovers environment variables from different CI vendors (GitHub actions, GitLab CI),
// or fallback to using local git repository as metadata source.
func LoadCommonMetadata(cmd executor.ShellExecutor) ImageMetadata {
	meta := ImageMetadata{}

	switch {
	case os.Getenv("GITHUB_REPOSITORY") != "":
		loadGitHubMeta(&meta)
	case os.Getenv("CI_PROJECT_URL") != "":
		loadGitLabMeta(&meta)
	default:
		loadGitMeta(&meta, cmd)
	}

	return meta
}

// WithComponent returns a copy of ImageMetadata describing the image of a component.
// The version is the tag hash, unless the build runs for a repository tag.
func (m ImageMetadata) WithComponent(imageName, tagHash, file, base string) ImageMetadata {
	m.Created = time.Now()
	m.Title = imageName
	m.RefName = tagHash
	m.Version = tagHash
	m.BaseName = base

	if m.repositoryTag != "" {
		m.Version = m.repositoryTag
	}

	if file != "" {
		absolutePath, err := filepath.Abs(file)
		if err != nil {
			absolutePath = file
		}
		relativePath := filepath.ToSlash(strings.TrimPrefix(absolutePath, m.repositoryRootPath))

		if m.repositoryCommitURL != "" {
			m.Source = m.repositoryCommitURL + relativePath
		}
		if m.repositoryRootURL != "" {
			m.URL = m.repositoryRootURL + relativePath
		}
	}

	return m
}

// ToLabels converts the ImageMetadata information to a map of standard OCI labels.
func (m ImageMetadata) ToLabels() map[string]string {
	labels := map[string]string{
		"org.opencontainers.image.authors":   m.Authors,
		"org.opencontainers.image.revision":  m.Revision,
		"org.opencontainers.image.source":    m.Source,
		"org.opencontainers.image.title":     m.Title,
		"org.opencontainers.image.url":       m.URL,
		"org.opencontainers.image.version":   m.Version,
		"org.opencontainers.image.ref.name":  m.RefName,
		"org.opencontainers.image.base.name": m.BaseName,
	}

	if !m.Created.IsZero() {
		labels["org.opencontainers.image.created"] = m.Created.Format(time.RFC3339)
	}

	// Remove empty labels
	nonEmptyLabels := map[string]string{}

	for k, v := range labels {
		if v == "" {
			continue
		}

		nonEmptyLabels[k] = v
	}

	return nonEmptyLabels
}

func loadGitHubMeta(meta *ImageMetadata) {
	meta.Authors = os.Getenv("GITHUB_ACTOR")
	meta.Revision = os.Getenv("GITHUB_SHA")

	repoURL := fmt.Sprintf("%s/%s/blob", os.Getenv("GITHUB_SERVER_URL"), os.Getenv("GITHUB_REPOSITORY"))
	meta.repositoryRootURL = fmt.Sprintf("%s/%s", repoURL, os.Getenv("GITHUB_BASE_REF"))
	meta.repositoryCommitURL = fmt.Sprintf("%s/%s", repoURL, meta.Revision)
	meta.repositoryRootPath = os.Getenv("GITHUB_WORKSPACE")

	if os.Getenv("GITHUB_REF_TYPE") == "tag" {
		meta.repositoryTag = os.Getenv("GITHUB_REF_NAME")
	}
}

func loadGitLabMeta(meta *ImageMetadata) {
	meta.Authors = os.Getenv("GITLAB_USER_NAME")
	meta.Revision = os.Getenv("CI_COMMIT_SHA")

	repoURL := fmt.Sprintf("%s/-/blob", os.Getenv("CI_PROJECT_URL"))
	meta.repositoryRootURL = fmt.Sprintf("%s/%s", repoURL, os.Getenv("CI_DEFAULT_BRANCH"))
	meta.repositoryCommitURL = fmt.Sprintf("%s/%s", repoURL, meta.Revision)
	meta.repositoryRootPath = os.Getenv("CI_PROJECT_DIR")
	meta.repositoryTag = os.Getenv("CI_COMMIT_TAG")
}

func loadGitMeta(meta *ImageMetadata, cmd executor.ShellExecutor) {
	rev, err := cmd.Execute("git", "rev-parse", "HEAD")
	if err == nil {
		meta.Revision = strings.Trim(rev, "\n")
	}

	root, err := cmd.Execute("git", "rev-parse", "--show-toplevel")
	if err == nil {
		meta.repositoryRootPath = strings.Trim(root, "\n")
	}
}
