package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const sidecarSuffix = ".target"

// LinkDir points link at the directory target, replacing whatever link
// previously existed there. The link is relative to link's parent when
// both live on the same volume, so a moved store keeps working.
// Parent directories of link are created as needed.
func LinkDir(target, link string) error {
	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		return fmt.Errorf("creating link parent: %w", err)
	}
	if err := RemoveLink(link); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing previous link %s: %w", link, err)
	}

	dest := target
	if rel, err := filepath.Rel(filepath.Dir(link), target); err == nil {
		dest = rel
	}

	if err := os.Symlink(dest, link); err == nil {
		return nil
	} else if runtime.GOOS != "windows" {
		return err
	}

	// Windows without developer mode: record the target in a sidecar.
	if err := os.WriteFile(link+sidecarSuffix, []byte(target), 0644); err != nil {
		return fmt.Errorf("link fallback (sidecar) failed: %w", err)
	}
	return nil
}

// RemoveLink removes a link (or its sidecar). It refuses to remove a real
// directory so a mistaken call cannot delete package contents.
func RemoveLink(path string) error {
	info, err := os.Lstat(path)
	if err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory, not a link", path)
	}

	err = os.Remove(path)
	os.Remove(path + sidecarSuffix) // best-effort
	return err
}

// ReadLinkTarget returns the absolute target of a link made by LinkDir.
func ReadLinkTarget(path string) (string, error) {
	target, err := os.Readlink(path)
	if err == nil {
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		return target, nil
	}

	data, readErr := os.ReadFile(path + sidecarSuffix)
	if readErr != nil {
		return "", fmt.Errorf("readlink failed and no %s sidecar found: %w", sidecarSuffix, err)
	}
	return strings.TrimSpace(string(data)), nil
}
