// Package build orchestrates the build of project components.
//
// A build run discovers the components of the project, selects the ones to build, validates
// their dependency graph and dispatches them one at a time, dependencies first, to an image
// builder backend. Structured components (with a component.yaml) get a generated multi-stage
// Dockerfile, opaque components are built from their own Dockerfile.
//
// The first failure stops the run: remaining components are reported as skipped.
package build
