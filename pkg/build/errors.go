package build

import "fmt"

// UnknownComponentError is returned when a requested component has no directory in the components root.
type UnknownComponentError struct {
	Component string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("component '%s' does not exist", e.Component)
}

// BackendError is returned when the image builder fails to build a component image.
type BackendError struct {
	Component string
	Tag       string
	Err       error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("building image %s for %s component failed: %v", e.Tag, e.Component, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
