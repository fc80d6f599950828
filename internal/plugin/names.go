package plugin

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var kebabCase = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsKebabCase reports whether name is lower-case words joined by single hyphens.
func IsKebabCase(name string) bool {
	return kebabCase.MatchString(name)
}

// ParseVersion parses a strict MAJOR.MINOR.PATCH semantic version with
// optional pre-release and build metadata. A leading "v" is rejected.
func ParseVersion(v string) (*semver.Version, error) {
	return semver.StrictNewVersion(strings.TrimSpace(v))
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
