package updater

import "github.com/scaffold-labs/scaffold/internal/registry"

// IsUpdateAvailable returns true if latest is newer than current.
func IsUpdateAvailable(current, latest string) (bool, error) {
	cmp, err := registry.CompareVersions(current, latest)
	if err != nil {
		return false, err
	}
	return cmp == -1, nil
}
