package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirPerm is the permission used for store directories.
const DirPerm os.FileMode = 0755

// ErrCacheDirUnwritable matches errors from a store root that cannot be used.
var ErrCacheDirUnwritable = errors.New("cache directory unwritable")

// UnwritableError describes why a store root cannot be used.
type UnwritableError struct {
	Path string
	Err  error
}

func (e *UnwritableError) Error() string {
	return fmt.Sprintf("cache directory %s is not writable: %v", e.Path, e.Err)
}

func (e *UnwritableError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCacheDirUnwritable.
func (e *UnwritableError) Is(target error) bool {
	return target == ErrCacheDirUnwritable
}

// EncodeName makes a package name safe to use as a single path element
// prefix by replacing every "/" with "_".
func EncodeName(name string) string {
	return strings.ReplaceAll(name, "/", "_")
}

// DirName returns the store-relative directory name for a package version.
// For scoped names the trailing name keeps its "/", so the entry nests one
// level: `_@scope_pkg@1.0.0@@scope/pkg`.
func DirName(name, version string) string {
	return "_" + EncodeName(name) + "@" + version + "@" + name
}

// PathFor returns the cache path for a package version under storeRoot.
// It never touches the filesystem.
func PathFor(storeRoot, name, version string) string {
	return filepath.Join(storeRoot, filepath.FromSlash(DirName(name, version)))
}

// EnsureStore creates storeRoot and its parents if needed and verifies the
// result is a writable directory.
func EnsureStore(storeRoot string) error {
	info, err := os.Stat(storeRoot)
	switch {
	case err == nil && !info.IsDir():
		return &UnwritableError{Path: storeRoot, Err: errors.New("not a directory")}
	case err != nil && !os.IsNotExist(err):
		return &UnwritableError{Path: storeRoot, Err: err}
	case err != nil:
		if err := os.MkdirAll(storeRoot, DirPerm); err != nil {
			return &UnwritableError{Path: storeRoot, Err: err}
		}
	}

	probe, err := os.CreateTemp(storeRoot, ".probe-*")
	if err != nil {
		return &UnwritableError{Path: storeRoot, Err: err}
	}
	name := probe.Name()
	probe.Close()
	_ = os.Remove(name)
	return nil
}

// Exists reports whether the cache path for a package version exists.
func Exists(storeRoot, name, version string) bool {
	_, err := os.Stat(PathFor(storeRoot, name, version))
	return err == nil
}

// Store binds the cache operations to one store root.
type Store struct {
	root string
}

// New returns a Store rooted at root.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the store root.
func (s *Store) Root() string { return s.root }

// PathFor returns the cache path for a package version.
func (s *Store) PathFor(name, version string) string { return PathFor(s.root, name, version) }

// Ensure creates the store root if needed.
func (s *Store) Ensure() error { return EnsureStore(s.root) }

// Exists reports whether a package version is present in the store.
func (s *Store) Exists(name, version string) bool { return Exists(s.root, name, version) }
