package component

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultManifestPath is the project manifest looked up in the working directory.
const DefaultManifestPath = "lamp.json"

// Manifest holds the project-wide information of the project manifest.
type Manifest struct {
	Name         string   `mapstructure:"name"`
	DockerImages []string `mapstructure:"docker_images"`
}

// LoadManifest reads the project manifest at path.
func LoadManifest(path string) (Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Manifest{}, fmt.Errorf("could not read project manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := v.Unmarshal(&manifest); err != nil {
		return Manifest{}, fmt.Errorf("could not decode project manifest %s: %w", path, err)
	}

	if manifest.Name == "" {
		return Manifest{}, &ConfigurationError{Reason: fmt.Sprintf("project manifest %s does not declare a name", path)}
	}

	return manifest, nil
}

// ImageName returns the image name of a component of the project.
func (m Manifest) ImageName(component string) string {
	return fmt.Sprintf("%s-%s", m.Name, component)
}

// PublishedComponents returns the components whose image is published, in declaration order.
// Images that do not carry the project prefix are kept verbatim.
func (m Manifest) PublishedComponents() []string {
	prefix := m.Name + "-"
	components := make([]string, 0, len(m.DockerImages))
	for _, image := range m.DockerImages {
		components = append(components, strings.TrimPrefix(image, prefix))
	}

	return components
}
