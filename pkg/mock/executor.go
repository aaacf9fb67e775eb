package mock

import "io"

type ExecutorCommand struct {
	Command string
	Args    []string
	// Input is what the command was fed on stdin, nil when it had no input.
	Input []byte
}

type ExecutorResult struct {
	Output string
	Error  error
}

type Executor struct {
	Executed []ExecutorCommand
	Expected []ExecutorResult
}

func NewExecutor(expected []ExecutorResult) *Executor {
	return &Executor{
		Executed: []ExecutorCommand{},
		Expected: expected,
	}
}

func (e *Executor) record(input []byte, name string, args ...string) (string, error) {
	e.Executed = append(e.Executed, ExecutorCommand{
		Command: name,
		Args:    args,
		Input:   input,
	})

	if len(e.Expected) >= len(e.Executed) {
		currentIndex := len(e.Executed) - 1
		return e.Expected[currentIndex].Output, e.Expected[currentIndex].Error
	}

	return "", nil
}

func (e *Executor) Execute(name string, args ...string) (string, error) {
	return e.record(nil, name, args...)
}

func (e *Executor) ExecuteWithWriter(writer io.Writer, name string, args ...string) error {
	output, err := e.Execute(name, args...)
	_, _ = writer.Write([]byte(output))
	return err
}

func (e *Executor) ExecuteWithInput(stdin io.Reader, writer io.Writer, name string, args ...string) error {
	input, err := io.ReadAll(stdin)
	if err != nil {
		return err
	}

	output, err := e.record(input, name, args...)
	_, _ = writer.Write([]byte(output))
	return err
}
