package install

import (
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nlepage/go-tarfs"

	"github.com/scaffold-labs/scaffold/internal/platform"
)

// Extract unpacks a gzipped package tarball into destDir. Registry tarballs
// wrap their contents in a single top-level directory (usually "package/");
// that directory is stripped.
func Extract(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	fsys, err := tarfs.New(gz)
	if err != nil {
		return fmt.Errorf("reading tar: %w", err)
	}

	root, err := topLevelDir(fsys)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := p
		if root != "." {
			rel = strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		}
		if rel == "" || rel == "." {
			return nil
		}
		target := filepath.Join(destDir, filepath.FromSlash(rel))

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case d.Type().IsRegular():
			return copyEntry(fsys, p, target)
		default:
			// Links and devices are not part of a package's payload.
			return nil
		}
	})
}

// topLevelDir returns the single directory every entry lives under, or "."
// when the archive has no such wrapper.
func topLevelDir(fsys fs.FS) (string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", fmt.Errorf("listing archive: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return entries[0].Name(), nil
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("archive is empty")
	}
	return ".", nil
}

func copyEntry(fsys fs.FS, name, target string) error {
	in, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	if platform.IsExecutable(info.Mode()) {
		return platform.Chmod(target, platform.ExecPerm)
	}
	return nil
}
