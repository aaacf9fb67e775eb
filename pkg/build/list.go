package build

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/aladdin-tools/build-components/internal/logger"
	"github.com/aladdin-tools/build-components/pkg/dag"
	"github.com/aladdin-tools/build-components/pkg/dockerfile"
	"github.com/aladdin-tools/build-components/pkg/graphviz"
	"github.com/aladdin-tools/build-components/pkg/plan"
	"github.com/olekukonko/tablewriter"
)

const (
	ConsoleFormat        = "console"
	GraphvizFormat       = "graphviz"
	GoTemplateFileFormat = "go-template-file"
)

type ListOpts struct {
	ComponentsDir string `mapstructure:"components_dir"`
	ManifestPath  string `mapstructure:"manifest"`
	TagHash       string `mapstructure:"tag_hash"`

	// List specific options
	Output string `mapstructure:"output,omitempty"`

	Defaults plan.Defaults `mapstructure:",squash"`
}

type FormatOpts struct {
	Type         string
	TemplatePath string
}

// ComponentInfo describes a component of the project, as shown by the list command.
type ComponentInfo struct {
	Name         string
	Kind         string
	Tag          string
	BaseImage    string
	Dependencies []string
	Error        string
}

// List describes every component of the project, sorted by name, and returns their dependency graph.
// Invalid declarations do not fail the listing, they are reported in the Error field.
func (b *Builder) List(tagHash string) ([]ComponentInfo, *dag.Graph, error) {
	candidates, err := b.Store.Discover()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot discover components in %s: %w", b.Store.Root, err)
	}

	graph, err := dag.Build(candidates, b.Store)
	if err != nil {
		return nil, nil, err
	}

	infos := make([]ComponentInfo, 0, len(candidates))
	for _, name := range candidates {
		infos = append(infos, b.describe(name, tagHash, graph))
	}

	return infos, graph, nil
}

func (b *Builder) describe(name, tagHash string, graph *dag.Graph) ComponentInfo {
	info := ComponentInfo{
		Name: name,
		Kind: b.Kind(name),
		Tag:  fmt.Sprintf("%s:%s", b.Manifest.ImageName(name), tagHash),
	}

	switch info.Kind {
	case KindStructured:
		cfg, err := b.Store.Load(name)
		if err != nil {
			info.Error = err.Error()
			return info
		}
		info.Dependencies = cfg.Dependencies()

		p, err := plan.Resolve(plan.Input{
			Project:   b.Manifest.Name,
			TagHash:   tagHash,
			Component: name,
			Config:    cfg,
			Graph:     graph,
			Defaults:  b.Defaults,
			Source:    b.Store,
		})
		if err != nil {
			info.Error = err.Error()
			return info
		}
		info.BaseImage = p.BaseImage()
	case KindOpaque:
		parsed, err := dockerfile.Parse(b.Store.DockerfilePath(name))
		if err != nil {
			info.Error = err.Error()
			return info
		}
		info.BaseImage = parsed.BaseImage()
	default:
		info.Error = "no component.yaml or Dockerfile found"
	}

	return info
}

// GenerateList writes the components list in the requested format.
func GenerateList(w io.Writer, infos []ComponentInfo, graph *dag.Graph, opts FormatOpts) error {
	switch opts.Type {
	case ConsoleFormat:
		renderConsoleOutput(w, infos)
	case GraphvizFormat:
		_, err := io.WriteString(w, graphviz.GenerateRawOutput(graph, nil))
		return err
	case GoTemplateFileFormat:
		outputTemplate, err := template.ParseFiles(opts.TemplatePath)
		if err != nil {
			return fmt.Errorf("failed to parse go-template file : %w", err)
		}

		err = outputTemplate.Execute(w, infos)
		if err != nil {
			return fmt.Errorf("failed to render go-template file : %w", err)
		}
	}

	return nil
}

// ParseOutputOptions parse value of the "--output" flag and ensure they are valid.
func ParseOutputOptions(output string) (FormatOpts, error) {
	formatOpts := FormatOpts{}
	if output == "" || output == ConsoleFormat {
		formatOpts.Type = ConsoleFormat
		return formatOpts, nil
	}

	if output == GraphvizFormat {
		formatOpts.Type = GraphvizFormat
		return formatOpts, nil
	}

	parsed := strings.SplitN(output, "=", 2)
	switch parsed[0] {
	case GoTemplateFileFormat:
		if len(parsed) == 1 || parsed[1] == "" {
			return formatOpts, fmt.Errorf("you need to provide a path to template file when using \"go-template-file\" options")
		}

		formatOpts.Type = GoTemplateFileFormat
		formatOpts.TemplatePath = parsed[1]
	default:
		return formatOpts, fmt.Errorf("\"%s\" is not a valid output format", output)
	}

	return formatOpts, nil
}

// renderConsoleOutput displays the list of components as a nice table.
func renderConsoleOutput(w io.Writer, infos []ComponentInfo) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	var data [][]string
	for _, info := range infos {
		base := info.BaseImage
		if info.Error != "" {
			logger.Warnf("%s: %s", info.Name, info.Error)
			base = "-"
		}

		deps := strings.Join(info.Dependencies, ",")
		if deps == "" {
			deps = "-"
		}

		data = append(data, []string{info.Name, info.Kind, base, deps})
	}

	table.AppendBulk(data)

	table.SetHeader([]string{"Name", "Kind", "Base Image", "Dependencies"})
	table.Render()
}
