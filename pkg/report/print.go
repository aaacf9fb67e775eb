package report

import (
	"github.com/aladdin-tools/build-components/internal/logger"
)

// PrintReports prints the reports to the user.
func PrintReports(reports []BuildReport) {
	if len(reports) == 0 {
		return
	}

	logger.Infof("Build report")
	for _, report := range reports {
		switch report.BuildStatus {
		case BuildStatusSuccess:
			logger.Successf("\t[%s]: %s", report.Component, report.BuildStatus)
		case BuildStatusSkipped:
			logger.Warnf("\t[%s]: %s", report.Component, report.BuildStatus)
		case BuildStatusFailed:
			logger.Errorf("\t[%s]: %s: %s", report.Component, report.BuildStatus, report.FailureMessage)
		}
	}

	logger.Infof("%d built, %d failed, %d skipped",
		Count(reports, BuildStatusSuccess),
		Count(reports, BuildStatusFailed),
		Count(reports, BuildStatusSkipped))
}
