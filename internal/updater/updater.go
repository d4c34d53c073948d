package updater

import (
	"context"
	"log/slog"
	"time"
)

const defaultCheckTimeout = 5 * time.Second

// LatestResolver looks up the newest published version of a package.
type LatestResolver interface {
	ResolveLatest(ctx context.Context, name string) (string, error)
}

// Updater checks the registry for newer releases of the CLI package.
type Updater struct {
	currentVersion string
	packageName    string
	resolver       LatestResolver
	timeout        time.Duration
	logger         *slog.Logger
}

// Option configures an Updater.
type Option func(*Updater)

// WithTimeout bounds a single registry lookup.
func WithTimeout(d time.Duration) Option {
	return func(u *Updater) {
		u.timeout = d
	}
}

// WithLogger sets the updater's logger.
func WithLogger(l *slog.Logger) Option {
	return func(u *Updater) {
		u.logger = l
	}
}

// New creates an Updater for packageName at currentVersion.
func New(currentVersion, packageName string, resolver LatestResolver, opts ...Option) *Updater {
	u := &Updater{
		currentVersion: currentVersion,
		packageName:    packageName,
		resolver:       resolver,
		timeout:        defaultCheckTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CurrentVersion returns the version this updater was created with.
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}

// PackageName returns the registry package the CLI is published as.
func (u *Updater) PackageName() string {
	return u.packageName
}

// CheckLatestVersion asks the registry for the newest published version.
func (u *Updater) CheckLatestVersion(ctx context.Context) (string, error) {
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}
	return u.resolver.ResolveLatest(ctx, u.packageName)
}

// Check resolves the latest version and reports whether it is newer than
// the running one.
func (u *Updater) Check(ctx context.Context) (*VersionCache, error) {
	latest, err := u.CheckLatestVersion(ctx)
	if err != nil {
		return nil, err
	}
	available, err := IsUpdateAvailable(u.currentVersion, latest)
	if err != nil {
		return nil, err
	}
	return &VersionCache{
		LatestVersion:   latest,
		CurrentVersion:  u.currentVersion,
		PackageName:     u.packageName,
		CheckedAt:       time.Now(),
		UpdateAvailable: available,
	}, nil
}
