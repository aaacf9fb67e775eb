package exec

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/aladdin-tools/build-components/internal/logger"
)

// ShellExecutor is an implementation of executor.ShellExecutor that uses the standard exec package.
type ShellExecutor struct {
	Dir string
	// Env is appended to the environment of the current process.
	Env []string
}

// NewShellExecutor initializes a ShellExecutor with the specified working directory and extra environment variables.
func NewShellExecutor(workingDir string, env []string) *ShellExecutor {
	return &ShellExecutor{
		Dir: workingDir,
		Env: env,
	}
}

func (e ShellExecutor) command(name string, args ...string) *exec.Cmd {
	cmd := exec.Command(name, args...) //nolint:noctx
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}

	return cmd
}

// Execute a shell command and return the standard output.
func (e ShellExecutor) Execute(name string, args ...string) (string, error) {
	cmd := e.command(name, args...)

	var stdout, stderr bytes.Buffer

	cmd.Stderr = &stderr
	cmd.Stdout = &stdout

	logger.Debugf("Exec cmd: %s", cmd)

	if err := cmd.Run(); err != nil {
		return stderr.String(), fmt.Errorf("failed to execute command: %s: %w", cmd, err)
	}

	return stdout.String(), nil
}

// ExecuteWithWriter executes a command and forwards both stdout and stderr to a single io.Writer.
func (e ShellExecutor) ExecuteWithWriter(writer io.Writer, name string, args ...string) error {
	return e.run(nil, writer, writer, name, args...)
}

// ExecuteWithInput executes a command reading stdin from the given reader.
func (e ShellExecutor) ExecuteWithInput(stdin io.Reader, writer io.Writer, name string, args ...string) error {
	return e.run(stdin, writer, writer, name, args...)
}

func (e ShellExecutor) run(stdin io.Reader, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := e.command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Debugf("Exec cmd: %s", cmd)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to execute command: %s: %w", cmd, err)
	}

	return nil
}
