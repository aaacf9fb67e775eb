package dockerfile

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/aladdin-tools/build-components/internal/logger"
)

var (
	rxFrom = regexp.MustCompile(`(?i)^FROM\s+(?:--platform=\S+\s+)?(?P<ref>(?P<image>[^:@\s]+):?(?P<tag>[^\s@]+)?@?(?P<digest>sha256:\S*)?)(?:\s+as\s+\S+)?\s*$`) //nolint:lll
	rxArg  = regexp.MustCompile(`(?i)^ARG\s+([a-zA-Z_]\w*)(?:\s*=\s*([^#\n]*))?\s*(?:#.*)?$`)
)

// Dockerfile holds the information from a hand-written Dockerfile.
type Dockerfile struct {
	From []ImageRef
	// Args maps the name of every declared build arg to its default value.
	Args map[string]string
}

// ImageRef holds the information about an image reference present in FROM statements.
type ImageRef struct {
	Name   string
	Tag    string
	Digest string
}

// String returns the reference as written in the FROM statement.
func (r ImageRef) String() string {
	ref := r.Name
	if r.Tag != "" {
		ref += ":" + r.Tag
	}
	if r.Digest != "" {
		ref += "@" + r.Digest
	}

	return ref
}

// BaseImage returns the reference of the final stage, empty when there is no FROM statement.
func (d *Dockerfile) BaseImage() string {
	if len(d.From) == 0 {
		return ""
	}

	return d.From[len(d.From)-1].String()
}

// DeclaresArg reports whether the Dockerfile declares the build arg name.
func (d *Dockerfile) DeclaresArg(name string) bool {
	_, ok := d.Args[name]
	return ok
}

// Parse reads a Dockerfile and extracts its FROM references and build args.
func Parse(filename string) (*Dockerfile, error) {
	logger.Debugf("Parsing dockerfile \"%s\"", filename)

	file, err := os.Open(filename) //nolint:gosec
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = file.Close()
	}()

	dckFile := Dockerfile{
		Args: map[string]string{},
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		txt := scanner.Text()

		switch {
		case rxFrom.MatchString(txt):
			match := rxFrom.FindStringSubmatch(txt)
			result := make(map[string]string)

			for i, name := range rxFrom.SubexpNames() {
				if i != 0 && name != "" {
					result[name] = match[i]
				}
			}

			dckFile.From = append(dckFile.From, ImageRef{
				Name:   result["image"],
				Tag:    result["tag"],
				Digest: result["digest"],
			})
		case rxArg.MatchString(txt):
			result := rxArg.FindStringSubmatch(txt)
			dckFile.Args[result[1]] = strings.Trim(strings.TrimSpace(result[2]), `"'`)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	logger.Debugf("Successfully parsed dockerfile. From=%v, Args=%v", dckFile.From, dckFile.Args)

	return &dckFile, nil
}
