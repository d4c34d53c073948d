package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrRegistryUnavailable matches transport failures and server errors.
	ErrRegistryUnavailable = errors.New("registry unavailable")
	// ErrPackageNotFound is returned when the registry reports no such package.
	ErrPackageNotFound = errors.New("package not found")
	// ErrVersionNotFound is returned when a package exists but lacks the requested version.
	ErrVersionNotFound = errors.New("version not found")
	// ErrNoVersionsAvailable is returned when a package has no usable published versions.
	ErrNoVersionsAvailable = errors.New("no versions available")
	// ErrNoCompatibleVersion is returned when no published version satisfies the base version.
	ErrNoCompatibleVersion = errors.New("no compatible version")
)

// UnavailableError describes a registry request that could not be completed.
// StatusCode is zero when the transport itself failed.
type UnavailableError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("registry unavailable: GET %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("registry unavailable: GET %s: %v", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRegistryUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrRegistryUnavailable
}
