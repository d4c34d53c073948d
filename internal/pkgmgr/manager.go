package pkgmgr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/scaffold-labs/scaffold/internal/cache"
	"github.com/scaffold-labs/scaffold/internal/install"
	"github.com/scaffold-labs/scaffold/internal/manifest"
)

const defaultLockTimeout = 2 * time.Minute

// Resolver picks concrete versions from the registry.
type Resolver interface {
	ResolveLatest(ctx context.Context, name string) (string, error)
	ResolveCompatible(ctx context.Context, name, base string) (string, error)
}

// Locator finds the entry file of a package directory. It returns "" when
// the package declares none.
type Locator func(dir string) (string, error)

// Manager runs install and update for one Spec.
type Manager struct {
	spec        Spec
	resolver    Resolver
	engine      install.Engine
	store       *cache.Store
	locate      Locator
	logger      *slog.Logger
	lockTimeout time.Duration

	mu       sync.Mutex
	prepared *Resolved
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithLockTimeout bounds how long Install and Update wait for another
// process holding the same cache path.
func WithLockTimeout(d time.Duration) Option {
	return func(m *Manager) { m.lockTimeout = d }
}

// WithLocator replaces the entry point locator.
func WithLocator(l Locator) Option {
	return func(m *Manager) { m.locate = l }
}

// New creates a Manager for spec. resolver and engine may be nil in
// bare-path mode.
func New(spec Spec, resolver Resolver, engine install.Engine, opts ...Option) (*Manager, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.StoreBacked() && (resolver == nil || engine == nil) {
		return nil, fmt.Errorf("store-backed package %s needs a resolver and an install engine", spec.Name)
	}

	m := &Manager{
		spec:        spec,
		resolver:    resolver,
		engine:      engine,
		locate:      manifest.Locate,
		logger:      slog.Default(),
		lockTimeout: defaultLockTimeout,
	}
	if spec.StoreBacked() {
		m.store = cache.New(spec.StorePath)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Spec returns the manager's package spec.
func (m *Manager) Spec() Spec { return m.spec }

// Prepare makes sure the store exists and resolves the version selector.
// The first successful resolution is kept for the lifetime of the Manager.
func (m *Manager) Prepare(ctx context.Context) (Resolved, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prepared != nil {
		return *m.prepared, nil
	}

	if !m.spec.StoreBacked() {
		r := Resolved{Name: m.spec.Name, Version: m.spec.Version.Version, Path: m.spec.TargetPath}
		m.prepared = &r
		return r, nil
	}

	if err := m.store.Ensure(); err != nil {
		return Resolved{}, err
	}

	version, err := m.resolve(ctx)
	if err != nil {
		return Resolved{}, err
	}

	r := m.resolved(version)
	m.logger.Debug("prepared package", "package", r.Name, "selector", m.spec.Version.String(), "version", r.Version, "path", r.Path)
	m.prepared = &r
	return r, nil
}

func (m *Manager) resolve(ctx context.Context) (string, error) {
	sel := m.spec.Version
	switch sel.Kind {
	case SelectLatest:
		return m.resolver.ResolveLatest(ctx, m.spec.Name)
	case SelectCompatible:
		return m.resolver.ResolveCompatible(ctx, m.spec.Name, sel.Version)
	default:
		return sel.Version, nil
	}
}

func (m *Manager) resolved(version string) Resolved {
	return Resolved{Name: m.spec.Name, Version: version, Path: m.store.PathFor(m.spec.Name, version)}
}

// Exists reports whether the package is present. Store-backed specs check
// the cache path of the prepared version; bare-path specs check the target
// path itself.
func (m *Manager) Exists(ctx context.Context) (bool, error) {
	if !m.spec.StoreBacked() {
		_, err := os.Stat(m.spec.TargetPath)
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", m.spec.TargetPath, err)
	}

	r, err := m.Prepare(ctx)
	if err != nil {
		return false, err
	}
	return m.store.Exists(r.Name, r.Version), nil
}

// Install installs the prepared version.
func (m *Manager) Install(ctx context.Context) (Resolved, error) {
	if !m.spec.StoreBacked() {
		return Resolved{}, ErrNoStore
	}
	r, err := m.Prepare(ctx)
	if err != nil {
		return Resolved{}, err
	}
	if err := m.installAt(ctx, r); err != nil {
		return Resolved{}, err
	}
	return r, nil
}

// Update queries the registry for the current latest version, ignoring any
// earlier resolution, and installs it when its cache path is absent.
func (m *Manager) Update(ctx context.Context) (Resolved, error) {
	if !m.spec.StoreBacked() {
		return Resolved{}, ErrNoStore
	}
	if err := m.store.Ensure(); err != nil {
		return Resolved{}, err
	}

	latest, err := m.resolver.ResolveLatest(ctx, m.spec.Name)
	if err != nil {
		return Resolved{}, err
	}
	r := m.resolved(latest)

	if m.store.Exists(r.Name, r.Version) {
		m.logger.Debug("latest version already installed", "package", r.Name, "version", r.Version)
		return r, nil
	}
	if err := m.installAt(ctx, r); err != nil {
		return Resolved{}, err
	}
	return r, nil
}

// installAt runs the install engine for r under the cache-path lock. The
// existence check is repeated once the lock is held so a concurrent
// installer's work is reused.
func (m *Manager) installAt(ctx context.Context, r Resolved) error {
	lock, err := m.store.Lock(ctx, r.Name, r.Version, m.lockTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			m.logger.Warn("releasing cache lock", "package", r.Name, "error", err)
		}
	}()

	if m.store.Exists(r.Name, r.Version) {
		m.logger.Debug("package installed by another process", "package", r.Name, "version", r.Version)
		return nil
	}

	m.logger.Info("installing package", "package", r.Name, "version", r.Version)
	req := install.Request{
		Name:    r.Name,
		Version: r.Version,
		Root:    m.spec.TargetPath,
		Store:   m.spec.StorePath,
		Dest:    r.Path,
	}
	if err := m.engine.Install(ctx, req); err != nil {
		return &InstallError{Name: r.Name, Version: r.Version, Cause: err}
	}
	return nil
}

// RootFilePath returns the entry file of r, or "" when the package does
// not declare one.
func (m *Manager) RootFilePath(r Resolved) (string, error) {
	dir := r.Path
	if dir == "" {
		dir = m.spec.TargetPath
	}
	return m.locate(dir)
}
