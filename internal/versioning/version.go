// Package versioning interprets wheel version strings for the installer:
// the numeric triple CPack needs and the file-name pattern of the artifact.
package versioning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"deps.dev/util/semver"
)

// ErrInvalidVersion is returned for strings that are not PEP 440 versions.
var ErrInvalidVersion = errors.New("invalid version")

// pep440 splits a version into release, pre and dev segments.
// Epochs, post releases and local labels are accepted and ignored.
var pep440 = regexp.MustCompile(`(?i)^\s*v?(?:\d+!)?` +
	`(?P<release>\d+(?:\.\d+)*)` +
	`(?:[-_.]?(?P<pre_l>a|alpha|b|beta|c|rc|pre|preview)[-_.]?(?P<pre_n>\d+)?)?` +
	`(?:-\d+|[-_.]?(?:post|rev|r)[-_.]?\d*)?` +
	`(?:[-_.]?(?P<dev>dev)[-_.]?(?P<dev_n>\d+)?)?` +
	`(?:\+[a-z0-9]+(?:[-_.][a-z0-9]+)*)?\s*$`)

// Version is a classified package version.
type Version struct {
	// Raw is the string the version was parsed from.
	Raw string
	// Major, Minor and Patch are the first three release segments; missing ones are zero.
	Major, Minor, Patch int
	// Pre is the normalized prerelease qualifier such as "rc1", or empty.
	Pre string
	// Dev is the dev release number, or nil for non-dev releases.
	Dev *int
}

// Parse classifies a PEP 440 version string.
func Parse(s string) (*Version, error) {
	if _, err := semver.PyPI.Parse(s); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidVersion, s, err)
	}

	m := pep440.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w %q", ErrInvalidVersion, s)
	}

	group := func(name string) string {
		return m[pep440.SubexpIndex(name)]
	}

	v := &Version{Raw: s}

	release := strings.Split(group("release"), ".")
	for i, target := range []*int{&v.Major, &v.Minor, &v.Patch} {
		if i >= len(release) {
			break
		}

		n, err := strconv.Atoi(release[i])
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidVersion, s, err)
		}

		*target = n
	}

	if label := group("pre_l"); label != "" {
		v.Pre = normalizePreLabel(label) + strconv.Itoa(number(group("pre_n")))
	}

	if group("dev") != "" {
		n := number(group("dev_n"))
		v.Dev = &n
	}

	return v, nil
}

func normalizePreLabel(label string) string {
	switch strings.ToLower(label) {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default:
		return "rc"
	}
}

// number converts an optional numeric segment; an absent one counts as zero.
func number(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}

// IsPrerelease reports whether the version carries a prerelease or dev qualifier.
func (v *Version) IsPrerelease() bool {
	return v.Pre != "" || v.IsDevRelease()
}

// IsDevRelease reports whether the version is a dev release.
func (v *Version) IsDevRelease() bool {
	return v.Dev != nil
}

// Triple returns "major.minor.patch".
func (v *Version) Triple() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Tweak is the qualifier CPack gets as the fourth version component:
// the dev number for dev releases, the prerelease tag otherwise.
func (v *Version) Tweak() string {
	switch {
	case v.IsDevRelease():
		return strconv.Itoa(*v.Dev)
	case v.Pre != "":
		return v.Pre
	default:
		return ""
	}
}

// PackageFileName returns the CPACK_PACKAGE_FILE_NAME pattern for system.
// The prerelease check comes first; a dev release wins over a generic
// prerelease suffix.
func (v *Version) PackageFileName(system string) string {
	const base = "${CPACK_PACKAGE_NAME}-${CPACK_PACKAGE_VERSION}"

	if !v.IsPrerelease() {
		return base + "-" + system
	}

	if v.IsDevRelease() {
		return fmt.Sprintf("%s.dev%d-%s", base, *v.Dev, system)
	}

	return fmt.Sprintf("%s.%s-%s", base, v.Pre, system)
}
