package home

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scaffold-labs/scaffold/internal/branding"
)

// Directory name constants for the home layout.
const (
	DependenciesDir = "dependencies"
	StoreDir        = "node_modules"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// ErrNoUserHome is returned when the current user has no usable home directory.
var ErrNoUserHome = errors.New("no home directory for the current user")

// UserHome returns the current user's home directory and verifies it exists.
func UserHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil || dir == "" {
		return "", ErrNoUserHome
	}
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoUserHome, dir)
	}
	return dir, nil
}

// GetHomePath returns the home-configuration path.
// SCAFFOLD_CLI_HOME overrides the directory name; a relative value is
// joined onto the user home, an absolute one is used as-is.
func GetHomePath() (string, error) {
	name := os.Getenv(branding.EnvVar("CLI_HOME"))
	if name != "" && filepath.IsAbs(name) {
		return name, nil
	}
	if name == "" {
		name = branding.HomeDir()
	}
	userHome, err := UserHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(userHome, name), nil
}

// GetTargetPathOverride returns the explicit target path from
// SCAFFOLD_TARGET_PATH, or "" when unset.
func GetTargetPathOverride() string {
	return os.Getenv(branding.EnvVar("TARGET_PATH"))
}

// GetDependenciesDir returns the default install root under homePath.
func GetDependenciesDir(homePath string) string {
	return filepath.Join(homePath, DependenciesDir)
}

// GetStoreDir returns the package store root beneath an install root.
func GetStoreDir(targetPath string) string {
	return filepath.Join(targetPath, StoreDir)
}
