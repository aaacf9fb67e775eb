package report

import (
	"errors"
	"fmt"
)

const (
	BuildStatusSkipped BuildStatus = iota
	BuildStatusSuccess
	BuildStatusFailed
)

// BuildStatus is the outcome of a component build.
type BuildStatus int

func (s BuildStatus) String() string {
	switch s {
	case BuildStatusSuccess:
		return "SUCCESS"
	case BuildStatusFailed:
		return "FAILURE"
	default:
		return "SKIPPED"
	}
}

// BuildReport holds the status of a component build.
type BuildReport struct {
	Component      string
	Kind           string
	Tag            string
	BuildStatus    BuildStatus
	FailureMessage string
}

// WithError returns a copy of the report marked as failed.
func (r BuildReport) WithError(err error) BuildReport {
	r.BuildStatus = BuildStatusFailed
	r.FailureMessage = err.Error()

	return r
}

// WithSuccess returns a copy of the report marked as successful.
func (r BuildReport) WithSuccess() BuildReport {
	r.BuildStatus = BuildStatusSuccess
	r.FailureMessage = ""

	return r
}

// ErrBuildFailed is returned by CheckError when at least one build failed.
var ErrBuildFailed = errors.New("one of the component builds failed, see the report for more details")

// CheckError looks for failures in build reports and returns an error if any is found.
func CheckError(reports []BuildReport) error {
	for _, report := range reports {
		if report.BuildStatus == BuildStatusFailed {
			return fmt.Errorf("%w: %s", ErrBuildFailed, report.Component)
		}
	}

	return nil
}

// Count returns the number of reports with the given status.
func Count(reports []BuildReport, status BuildStatus) int {
	n := 0
	for _, report := range reports {
		if report.BuildStatus == status {
			n++
		}
	}

	return n
}
