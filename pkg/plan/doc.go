// Package plan resolves the build plan of a structured component.
//
// A Plan merges the component declaration with project-wide defaults and the dependency
// graph: base and builder images, workdir, runtime user, language version, tags and the
// ordered list of components to assemble. Resolve validates everything upfront, the
// resulting Plan is an immutable value.
package plan
