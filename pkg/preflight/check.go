// Package preflight verifies that the host provides the tools a build needs.
package preflight

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/aladdin-tools/build-components/internal/logger"
)

// SkipEnv disables the checks when set to a non-empty value.
const SkipEnv = "SKIP_PREFLIGHT_CHECKS"

// RunPreflightChecks warns about every required command that cannot be found.
// It returns the commands that are missing.
func RunPreflightChecks(requiredCommands []string) []string {
	if os.Getenv(SkipEnv) != "" {
		return nil
	}

	logger.Debugf("Running preflight checks...")

	var missing []string
	for _, bin := range requiredCommands {
		if err := isBinInstalled(bin); err != nil {
			logger.Warnf("%s", err)
			missing = append(missing, bin)
		}
	}

	return missing
}

// isBinInstalled checks if the given binary can be found in the PATH of the host system.
func isBinInstalled(bin string) error {
	if _, err := exec.LookPath(bin); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("\"%s\" does not seem to be installed on your system, "+
				"you have to install it before building components", bin)
		}

		return fmt.Errorf("unable to check if \"%s\" is installed, error: %w", bin, err)
	}

	return nil
}
