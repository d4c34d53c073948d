package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one installed package version found in the store.
type Entry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
}

// List scans the store root and returns every entry whose directory name
// follows the cache naming scheme, sorted by name then directory order.
// A missing store root yields no entries.
func (s *Store) List() ([]Entry, error) {
	dirents, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store %s: %w", s.root, err)
	}

	var entries []Entry
	for _, d := range dirents {
		if !d.IsDir() || !strings.HasPrefix(d.Name(), "_") {
			continue
		}
		enc, version, tail, ok := splitDirName(d.Name())
		if !ok {
			continue
		}

		if !strings.HasPrefix(tail, "@") {
			if EncodeName(tail) == enc {
				entries = append(entries, Entry{Name: tail, Version: version, Path: filepath.Join(s.root, d.Name())})
			}
			continue
		}

		// Scoped package: the scope is in this name, the package one level down.
		scopeDir := filepath.Join(s.root, d.Name())
		children, err := os.ReadDir(scopeDir)
		if err != nil {
			continue
		}
		for _, c := range children {
			if !c.IsDir() {
				continue
			}
			name := tail + "/" + c.Name()
			if EncodeName(name) != enc {
				continue
			}
			entries = append(entries, Entry{Name: name, Version: version, Path: filepath.Join(scopeDir, c.Name())})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// splitDirName parses "_<enc>@<version>@<tail>". The encoded name may
// itself start with "@" for scoped packages.
func splitDirName(dir string) (enc, version, tail string, ok bool) {
	s := strings.TrimPrefix(dir, "_")
	if len(s) < 2 {
		return "", "", "", false
	}
	i := strings.Index(s[1:], "@")
	if i < 0 {
		return "", "", "", false
	}
	i++
	enc, rest := s[:i], s[i+1:]
	j := strings.Index(rest, "@")
	if j <= 0 || j == len(rest)-1 {
		return "", "", "", false
	}
	return enc, rest[:j], rest[j+1:], true
}
