// Package report provides tools and utilities for generating and managing build reports.
//
// The main functionalities include:
//   - Tracking the status of each component build.
//   - Printing the build summary through the logger.
//   - Storing build logs and exporting the results as a JUnit XML file for CI systems.
package report
