package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Testsuite is the root element of a JUnit XML report.
type Testsuite struct {
	XMLName   xml.Name   `xml:"testsuite"`
	Name      string     `xml:"name,attr"`
	Errors    string     `xml:"errors,attr"`
	Tests     string     `xml:"tests,attr"`
	Failures  string     `xml:"failures,attr"`
	Skipped   string     `xml:"skipped,attr"`
	Timestamp string     `xml:"timestamp,attr"`
	TestCases []TestCase `xml:"testcase"`
}

// TestCase is the JUnit representation of one component build.
type TestCase struct {
	XMLName   xml.Name  `xml:"testcase"`
	ClassName string    `xml:"classname,attr"`
	Name      string    `xml:"name,attr"`
	SystemOut string    `xml:"system-out,omitempty"`
	Failure   *Failure  `xml:"failure,omitempty"`
	Skipped   *struct{} `xml:"skipped,omitempty"`
}

type Failure struct {
	Message string `xml:"message,attr"`
}

// JUnit converts build reports into a JUnit test suite, one test case per component.
func JUnit(name string, generated time.Time, reports []BuildReport) Testsuite {
	suite := Testsuite{
		Name:      name,
		Errors:    "0",
		Tests:     strconv.Itoa(len(reports)),
		Failures:  strconv.Itoa(Count(reports, BuildStatusFailed)),
		Skipped:   strconv.Itoa(Count(reports, BuildStatusSkipped)),
		Timestamp: generated.Format(time.RFC3339),
	}

	for _, report := range reports {
		testCase := TestCase{
			ClassName: report.Kind,
			Name:      report.Component,
			SystemOut: report.Tag,
		}

		switch report.BuildStatus {
		case BuildStatusFailed:
			testCase.Failure = &Failure{Message: report.FailureMessage}
		case BuildStatusSkipped:
			testCase.Skipped = &struct{}{}
		}

		suite.TestCases = append(suite.TestCases, testCase)
	}

	return suite
}

// WriteJUnit writes the JUnit XML report of the builds to path.
func WriteJUnit(path, name string, generated time.Time, reports []BuildReport) error {
	out, err := xml.MarshalIndent(JUnit(name, generated, reports), "", "  ")
	if err != nil {
		return err
	}

	out = append([]byte(xml.Header), out...)
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("cannot write junit report: %w", err)
	}

	return nil
}
