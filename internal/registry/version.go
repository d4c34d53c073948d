package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParseVersion strips a leading "v" and parses the version string.
func ParseVersion(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(version, "v"))
}

// CompareVersions compares two version strings using semver precedence.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
func CompareVersions(a, b string) (int, error) {
	av, err := ParseVersion(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := ParseVersion(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// SortVersions returns the parseable versions in ascending semver order.
// Unparseable entries are dropped.
func SortVersions(versions []string) []string {
	parsed := make([]*semver.Version, 0, len(versions))
	for _, v := range versions {
		sv, err := ParseVersion(v)
		if err != nil {
			continue
		}
		parsed = append(parsed, sv)
	}
	sort.Sort(semver.Collection(parsed))

	out := make([]string, len(parsed))
	for i, sv := range parsed {
		out[i] = sv.Original()
	}
	return out
}

// Latest returns the greatest version by semver precedence, pre-releases
// included.
func Latest(versions []string) (string, error) {
	var best *semver.Version
	for _, v := range versions {
		sv, err := ParseVersion(v)
		if err != nil {
			continue
		}
		if best == nil || sv.GreaterThan(best) {
			best = sv
		}
	}
	if best == nil {
		return "", ErrNoVersionsAvailable
	}
	return best.Original(), nil
}

// Compatible returns the greatest version that shares base's major version
// and is not lower than base. It never falls back to an incompatible version.
func Compatible(versions []string, base string) (string, error) {
	bv, err := ParseVersion(base)
	if err != nil {
		return "", fmt.Errorf("parsing base version %q: %w", base, err)
	}

	var best *semver.Version
	for _, v := range versions {
		sv, err := ParseVersion(v)
		if err != nil {
			continue
		}
		if sv.Major() != bv.Major() || sv.LessThan(bv) {
			continue
		}
		if best == nil || sv.GreaterThan(best) {
			best = sv
		}
	}
	if best == nil {
		return "", fmt.Errorf("%w with %s", ErrNoCompatibleVersion, base)
	}
	return best.Original(), nil
}
