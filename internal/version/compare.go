package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckReportCompatibility checks whether a report written by reportVersion can be
// decoded by an engine at engineVersion.
//
// Rules:
//   - "main" on either side skips the check (development build)
//   - Major versions must match
//   - The report's minor version must not be newer than the engine's
//   - Patch versions are ignored
//
// Examples:
//   - Engine 1.2.0, Report 1.2.7 -> OK
//   - Engine 1.3.0, Report 1.2.0 -> OK (older report)
//   - Engine 1.2.0, Report 1.3.0 -> ERROR (report newer than engine)
//   - Engine 2.0.0, Report 1.9.0 -> ERROR (major differs)
func CheckReportCompatibility(engineVersion, reportVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	reportVersion = strings.TrimPrefix(reportVersion, "v")

	if engineVersion == "main" || reportVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("invalid engine version '%s': %w", engineVersion, err)
	}

	reportSemver, err := semver.NewVersion(reportVersion)
	if err != nil {
		return fmt.Errorf("invalid report version '%s': %w", reportVersion, err)
	}

	if engineSemver.Major() != reportSemver.Major() {
		return fmt.Errorf("major version mismatch: engine is %d.x.x but report was written by %d.x.x",
			engineSemver.Major(), reportSemver.Major())
	}

	if reportSemver.Minor() > engineSemver.Minor() {
		return fmt.Errorf("report is newer than engine: engine is %d.%d.x but report was written by %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			reportSemver.Major(), reportSemver.Minor())
	}

	return nil
}
