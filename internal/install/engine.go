package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/scaffold-labs/scaffold/internal/platform"
	"github.com/scaffold-labs/scaffold/internal/registry"
)

// StagingPattern names the temporary directories installs unpack into.
const StagingPattern = ".staging-*"

const (
	tarballFileName = "package.tgz"
	defaultTimeout  = 5 * time.Minute
	userAgent       = "scaffold-cli"
)

// Request describes one package version to install.
type Request struct {
	Name    string
	Version string
	// Root is the install root; Store the store root beneath it.
	Root  string
	Store string
	// Dest is the cache path the package contents end up in.
	Dest string
}

// Engine installs a package version into a destination directory.
type Engine interface {
	Install(ctx context.Context, req Request) error
}

// MetadataSource provides registry metadata for a package version.
type MetadataSource interface {
	VersionManifest(ctx context.Context, name, version string) (*registry.VersionManifest, error)
}

// TarballEngine installs packages from registry tarballs.
type TarballEngine struct {
	meta       MetadataSource
	httpClient *http.Client
	logger     *slog.Logger
	progress   io.Writer
	deps       DependencyInstaller
	link       bool
}

// Option configures a TarballEngine.
type Option func(*TarballEngine)

// WithHTTPClient sets the client used to download tarballs.
func WithHTTPClient(c *http.Client) Option {
	return func(e *TarballEngine) { e.httpClient = c }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *TarballEngine) { e.logger = l }
}

// WithProgress enables download progress output to w.
func WithProgress(w io.Writer) Option {
	return func(e *TarballEngine) { e.progress = w }
}

// WithDependencyInstaller installs the declared dependencies of each
// unpacked package before it is moved into place.
func WithDependencyInstaller(d DependencyInstaller) Option {
	return func(e *TarballEngine) { e.deps = d }
}

// WithoutLink disables linking <store>/<name> to the installed cache path.
func WithoutLink() Option {
	return func(e *TarballEngine) { e.link = false }
}

// NewTarballEngine creates an engine reading metadata from meta.
func NewTarballEngine(meta MetadataSource, opts ...Option) *TarballEngine {
	e := &TarballEngine{
		meta:       meta,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
		link:       true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Install fetches, verifies and unpacks req.Name@req.Version into req.Dest.
func (e *TarballEngine) Install(ctx context.Context, req Request) error {
	if req.Dest == "" || req.Store == "" {
		return errors.New("install request needs a store and a destination")
	}

	m, err := e.meta.VersionManifest(ctx, req.Name, req.Version)
	if err != nil {
		return fmt.Errorf("looking up %s@%s: %w", req.Name, req.Version, err)
	}
	if m.Dist.Tarball == "" {
		return fmt.Errorf("%s@%s has no tarball in registry metadata", req.Name, req.Version)
	}

	if err := os.MkdirAll(req.Store, 0755); err != nil {
		return fmt.Errorf("creating store %s: %w", req.Store, err)
	}
	staging, err := os.MkdirTemp(req.Store, StagingPattern)
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	archive := filepath.Join(staging, tarballFileName)
	e.logger.Info("downloading package", "package", req.Name, "version", req.Version, "url", m.Dist.Tarball)
	if err := e.download(ctx, m.Dist.Tarball, archive); err != nil {
		return err
	}

	if err := VerifyIntegrity(archive, m.Dist); err != nil {
		return fmt.Errorf("verifying %s@%s: %w", req.Name, req.Version, err)
	}

	unpacked := filepath.Join(staging, "package")
	if err := Extract(archive, unpacked); err != nil {
		return fmt.Errorf("unpacking %s@%s: %w", req.Name, req.Version, err)
	}

	if e.deps != nil && len(m.Dependencies) > 0 {
		e.logger.Info("installing dependencies", "package", req.Name, "count", len(m.Dependencies))
		if err := e.deps.InstallDependencies(ctx, unpacked); err != nil {
			return fmt.Errorf("installing dependencies of %s@%s: %w", req.Name, req.Version, err)
		}
	}

	if err := promote(unpacked, req.Dest); err != nil {
		return err
	}
	e.logger.Debug("installed package", "package", req.Name, "version", req.Version, "path", req.Dest)

	if e.link {
		link := filepath.Join(req.Store, filepath.FromSlash(req.Name))
		if err := platform.LinkDir(req.Dest, link); err != nil {
			// The cache path is complete; a missing convenience link is not fatal.
			e.logger.Warn("could not link package", "link", link, "error", err)
		}
	}
	return nil
}

// promote moves a fully unpacked package into its cache path. If another
// installer finished the same path first, its result is kept.
func promote(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	if err := os.Rename(src, dest); err != nil {
		if _, statErr := os.Stat(dest); statErr == nil {
			return nil
		}
		return fmt.Errorf("moving package into %s: %w", dest, err)
	}
	return nil
}
