package component

import "fmt"

// ConfigurationError is returned when a component declaration is malformed or contradictory.
// It is always fatal for the whole run.
type ConfigurationError struct {
	Component string
	Reason    string
	Err       error
}

func (e *ConfigurationError) Error() string {
	msg := e.Reason
	if e.Component != "" {
		msg = fmt.Sprintf("component %q: %s", e.Component, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
