/*
Package executor defines the interface used by builders and metadata loaders
to run external commands.
*/
package executor

import (
	"io"
)

// ShellExecutor defines an interface for executing shell commands with various output handling options.
type ShellExecutor interface {
	// Execute a command and return the standard output.
	Execute(name string, args ...string) (string, error)
	// ExecuteWithWriter executes a command and forwards both stdout and stderr to a single io.Writer.
	ExecuteWithWriter(writer io.Writer, name string, args ...string) error
	// ExecuteWithInput executes a command fed with stdin, and forwards both stdout and stderr to writer.
	ExecuteWithInput(stdin io.Reader, writer io.Writer, name string, args ...string) error
}
