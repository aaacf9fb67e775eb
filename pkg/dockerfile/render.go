package dockerfile

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/aladdin-tools/build-components/pkg/component"
)

//go:embed templates/*.tmpl
var templates embed.FS

var pythonTemplate = template.Must(
	template.New("python.dockerfile.tmpl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templates, "templates/python.dockerfile.tmpl"),
)

// Plan is what the Dockerfile template needs to know about a build.
// It is implemented by *plan.Plan.
type Plan interface {
	Component() string
	Components() []string
	BaseImage() string
	BuilderImage() string
	Workdir() string
	PoetryVersion() string
	UserInfo() component.UserInfo
	ComponentPackages(name string) ([]string, error)
	IsPoetryProject(name string) bool
}

// Render generates the multi-stage Dockerfile of a structured component:
// one builder stage per component to assemble, then the runtime stage.
func Render(p Plan) ([]byte, error) {
	var buf bytes.Buffer
	if err := pythonTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("cannot render Dockerfile of %s component: %w", p.Component(), err)
	}

	return buf.Bytes(), nil
}

// Editor generates the Dockerfile of the editor companion image, which mirrors
// the image built as tag without its entrypoint and command.
func Editor(tag string) []byte {
	return []byte(fmt.Sprintf("FROM %s\nCMD \"/bin/sh\"\nENTRYPOINT []\n", tag))
}
