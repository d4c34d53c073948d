package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FindDir returns the nearest directory at or above dir that contains a
// package.json, or "" when there is none up to the filesystem root.
func FindDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	for {
		info, err := os.Stat(filepath.Join(abs, FileName))
		if err == nil && !info.IsDir() {
			return abs, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("checking %s: %w", abs, err)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}

// Load reads and validates the package.json in dir.
func Load(dir string) (*Package, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	if !result.Valid {
		return nil, &InvalidError{Path: path, Issues: result.Issues}
	}

	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &pkg, nil
}

// Locate returns the absolute, forward-slash entry file declared by the
// nearest manifest at or above dir. It returns "" with no error when there
// is no manifest or the manifest declares neither main nor lib.
func Locate(dir string) (string, error) {
	pkgDir, err := FindDir(dir)
	if err != nil || pkgDir == "" {
		return "", err
	}

	pkg, err := Load(pkgDir)
	if err != nil {
		return "", err
	}
	entry := pkg.Entry()
	if entry == "" {
		return "", nil
	}
	return FormatPath(filepath.Join(pkgDir, filepath.FromSlash(entry))), nil
}

// FormatPath normalizes path separators to forward slashes.
func FormatPath(p string) string {
	return filepath.ToSlash(p)
}
