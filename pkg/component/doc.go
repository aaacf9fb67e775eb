// Package component loads the declarations of the components of a project.
//
// Each component lives in its own directory under a components root, and may declare a
// component.yaml file. Values read from that file are exposed as Value, which keeps track
// of whether a key was declared at all, so that callers can tell "not set" apart from
// "explicitly set to false or empty".
package component
