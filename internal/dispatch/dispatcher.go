package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scaffold-labs/scaffold/internal/home"
	"github.com/scaffold-labs/scaffold/internal/install"
	"github.com/scaffold-labs/scaffold/internal/pkgmgr"
	"github.com/scaffold-labs/scaffold/internal/runtime"
)

// ErrTargetNotFound is returned in bare-path mode when the target path is missing.
var ErrTargetNotFound = errors.New("target path does not exist")

// Target is what one dispatch runs. It is built per invocation.
type Target struct {
	Command   string
	Package   string
	Version   string
	EntryFile string
}

// Dispatcher runs commands through their packages.
type Dispatcher struct {
	resolver    pkgmgr.Resolver
	engine      install.Engine
	runtime     runtime.Runtime
	layout      func() (home.Layout, error)
	logger      *slog.Logger
	lockTimeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithLockTimeout bounds the wait for a cache-path lock.
func WithLockTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.lockTimeout = t }
}

// WithLayout replaces home.ResolveLayout as the source of paths.
func WithLayout(f func() (home.Layout, error)) Option {
	return func(d *Dispatcher) { d.layout = f }
}

// New creates a Dispatcher.
func New(resolver pkgmgr.Resolver, engine install.Engine, rt runtime.Runtime, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		engine:   engine,
		runtime:  rt,
		layout:   home.ResolveLayout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the package registered for name with args followed by the
// filtered opts. An unknown name fails with *ConfigError before any network
// or filesystem access. A package without an entry file is a logged no-op.
// A failing child is returned as *runtime.ChildProcessError.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args []any, opts map[string]any) error {
	cmd, err := ParseCommand(name)
	if err != nil {
		return err
	}

	target, err := d.Prepare(ctx, cmd)
	if err != nil {
		return err
	}
	if target.EntryFile == "" {
		d.logger.Info("package has no entry file, nothing to run", "command", target.Command, "package", target.Package)
		return nil
	}

	d.logger.Debug("running package", "command", target.Command, "package", target.Package, "version", target.Version, "entry", target.EntryFile)
	return d.runtime.Run(ctx, target.EntryFile, Payload(args, opts))
}

// Prepare makes the package for cmd available and locates its entry file.
func (d *Dispatcher) Prepare(ctx context.Context, cmd Command) (Target, error) {
	desc, ok := cmd.Descriptor()
	if !ok {
		return Target{}, &ConfigError{Command: cmd.String()}
	}

	layout, err := d.layout()
	if err != nil {
		return Target{}, err
	}
	d.logger.Debug("resolved layout", "mode", layout.Mode.String(), "target", layout.TargetPath, "store", layout.StorePath)

	spec := pkgmgr.Spec{
		Name:       desc.Package,
		Version:    pkgmgr.ParseSelector(desc.Version),
		TargetPath: layout.TargetPath,
		StorePath:  layout.StorePath,
	}
	opts := []pkgmgr.Option{pkgmgr.WithLogger(d.logger)}
	if d.lockTimeout > 0 {
		opts = append(opts, pkgmgr.WithLockTimeout(d.lockTimeout))
	}
	m, err := pkgmgr.New(spec, d.resolver, d.engine, opts...)
	if err != nil {
		return Target{}, fmt.Errorf("command %s: %w", desc.Name, err)
	}

	var resolved pkgmgr.Resolved
	if spec.StoreBacked() {
		resolved, err = d.ensure(ctx, m)
	} else {
		resolved, err = d.local(ctx, m)
	}
	if err != nil {
		return Target{}, err
	}

	entry, err := m.RootFilePath(resolved)
	if err != nil {
		return Target{}, err
	}
	return Target{Command: desc.Name, Package: desc.Package, Version: resolved.Version, EntryFile: entry}, nil
}

// ensure updates an installed package or installs a missing one.
func (d *Dispatcher) ensure(ctx context.Context, m *pkgmgr.Manager) (pkgmgr.Resolved, error) {
	exists, err := m.Exists(ctx)
	if err != nil {
		return pkgmgr.Resolved{}, err
	}
	if exists {
		return m.Update(ctx)
	}
	return m.Install(ctx)
}

// local uses a bare-path package in place. The target must exist so the
// locator never picks up an unrelated manifest above it.
func (d *Dispatcher) local(ctx context.Context, m *pkgmgr.Manager) (pkgmgr.Resolved, error) {
	exists, err := m.Exists(ctx)
	if err != nil {
		return pkgmgr.Resolved{}, err
	}
	if !exists {
		return pkgmgr.Resolved{}, fmt.Errorf("%w: %s", ErrTargetNotFound, m.Spec().TargetPath)
	}
	return m.Prepare(ctx)
}
