package utils

import (
	"strings"

	"github.com/jwalton/gchalk"
)

// PrettyVersion returns a colored version string for terminal printing.
// Pre-release suffixes are dimmed
func PrettyVersion(version string) string {
	// we trim first to avoid broken colors
	if len(version) >= 22 {
		version = version[:18] + " …"
	}

	versionParts := strings.SplitN(version, "-", 2)
	prettyVersion := versionParts[0]

	if len(versionParts) == 2 {
		prettyVersion += gchalk.Gray("-" + versionParts[1])
	}

	return prettyVersion
}
