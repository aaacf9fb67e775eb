package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

const (
	BuildLogsDir  = "builds"
	JUnitFilename = "junit.xml"
)

var patternAnsiColors = regexp.MustCompile(`\x1B\[([0-9]{1,3}(;[0-9]{1,2})?)?[mGK]`)

// Dir is a report directory, named after its generation date, holding build logs and the JUnit report.
type Dir struct {
	RootDir        string
	Name           string
	GenerationDate time.Time
}

// NewDir creates the report directory of a build run under rootDir.
func NewDir(rootDir string, generated time.Time) (*Dir, error) {
	d := &Dir{
		RootDir:        rootDir,
		Name:           generated.Format("20060102150405"),
		GenerationDate: generated,
	}

	if err := os.MkdirAll(d.BuildLogsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create report directory: %w", err)
	}

	return d, nil
}

// Path is the directory of this report.
func (d *Dir) Path() string {
	return filepath.Join(d.RootDir, d.Name)
}

func (d *Dir) BuildLogsDir() string {
	return filepath.Join(d.Path(), BuildLogsDir)
}

// BuildLog opens the log file of a build. Terminal colors are stripped from what is written to it.
func (d *Dir) BuildLog(name string) (io.WriteCloser, error) {
	file, err := os.Create(filepath.Join(d.BuildLogsDir(), name+".txt"))
	if err != nil {
		return nil, err
	}

	return &plainWriter{file}, nil
}

// WriteJUnit writes the JUnit report of the build run in the report directory.
func (d *Dir) WriteJUnit(reports []BuildReport) error {
	return WriteJUnit(filepath.Join(d.Path(), JUnitFilename), d.Name, d.GenerationDate, reports)
}

// RemoveTerminalColors strips all ANSI escape codes from the given string.
func RemoveTerminalColors(input []byte) []byte {
	return patternAnsiColors.ReplaceAll(input, []byte{})
}

type plainWriter struct {
	io.WriteCloser
}

func (w *plainWriter) Write(p []byte) (int, error) {
	if _, err := w.WriteCloser.Write(RemoveTerminalColors(p)); err != nil {
		return 0, err
	}

	return len(p), nil
}
