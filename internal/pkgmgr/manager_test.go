package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scaffold-labs/scaffold/internal/install"
	"github.com/scaffold-labs/scaffold/internal/registry"
)

// fakeRegistry resolves from an in-memory, mutable version list.
type fakeRegistry struct {
	mu       sync.Mutex
	versions []string
	calls    int
	err      error
}

func (f *fakeRegistry) publish(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions = append(f.versions, v)
}

func (f *fakeRegistry) ResolveLatest(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return registry.Latest(f.versions)
}

func (f *fakeRegistry) ResolveCompatible(_ context.Context, _ string, base string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return registry.Compatible(f.versions, base)
}

// fakeEngine writes a manifest naming the installed version.
type fakeEngine struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (f *fakeEngine) Install(_ context.Context, req install.Request) error {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(req.Dest, 0755); err != nil {
		return err
	}
	body := fmt.Sprintf(`{"name":%q,"version":%q,"main":"lib/index.js"}`, req.Name, req.Version)
	return os.WriteFile(filepath.Join(req.Dest, "package.json"), []byte(body), 0644)
}

func storeSpec(t *testing.T, sel Selector) Spec {
	t.Helper()
	target := t.TempDir()
	return Spec{
		Name:       "demo-tool",
		Version:    sel,
		TargetPath: target,
		StorePath:  filepath.Join(target, "node_modules"),
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{"ok", Spec{Name: "a", Version: Latest(), TargetPath: "/t"}, false},
		{"empty name", Spec{Name: " ", Version: Latest(), TargetPath: "/t"}, true},
		{"no target", Spec{Name: "a", Version: Latest()}, true},
		{"exact without version", Spec{Name: "a", Version: Selector{Kind: SelectExact}, TargetPath: "/t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
		})
	}
}

func TestParseSelector(t *testing.T) {
	assert.Equal(t, Latest(), ParseSelector(""))
	assert.Equal(t, Latest(), ParseSelector("latest"))
	assert.Equal(t, CompatibleWith("1.4.0"), ParseSelector("^1.4.0"))
	assert.Equal(t, Exact("1.0.0"), ParseSelector("1.0.0"))
	assert.Equal(t, "^1.4.0", CompatibleWith("1.4.0").String())
}

func TestNew_StoreBackedNeedsCollaborators(t *testing.T) {
	_, err := New(storeSpec(t, Latest()), nil, nil)
	assert.Error(t, err)
}

func TestPrepare_ResolvesLatestOnce(t *testing.T) {
	reg := &fakeRegistry{versions: []string{"1.0.0", "1.2.0"}}
	m, err := New(storeSpec(t, Latest()), reg, &fakeEngine{})
	require.NoError(t, err)

	r, err := m.Prepare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", r.Version)
	assert.Equal(t, filepath.Join(m.Spec().StorePath, "_demo-tool@1.2.0@demo-tool"), r.Path)

	reg.publish("1.3.0")
	again, err := m.Prepare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, r, again, "resolution is kept for the manager's lifetime")
	assert.Equal(t, 1, reg.calls)

	info, err := os.Stat(m.Spec().StorePath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPrepare_CompatibleWith(t *testing.T) {
	reg := &fakeRegistry{versions: []string{"1.3.0", "1.5.0", "2.0.0"}}
	m, err := New(storeSpec(t, CompatibleWith("1.4.0")), reg, &fakeEngine{})
	require.NoError(t, err)

	r, err := m.Prepare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", r.Version)
}

func TestPrepare_PropagatesResolutionErrors(t *testing.T) {
	reg := &fakeRegistry{err: &registry.UnavailableError{URL: "http://registry", Err: errors.New("dial tcp")}}
	m, err := New(storeSpec(t, Latest()), reg, &fakeEngine{})
	require.NoError(t, err)

	_, err = m.Prepare(context.Background())
	assert.ErrorIs(t, err, registry.ErrRegistryUnavailable)

	ok, err := m.Exists(context.Background())
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestInstall_FailureIsWrapped(t *testing.T) {
	cause := errors.New("tarball 404")
	eng := &fakeEngine{err: cause}
	m, err := New(storeSpec(t, Exact("1.0.0")), &fakeRegistry{}, eng)
	require.NoError(t, err)

	_, err = m.Install(context.Background())
	var ie *InstallError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "demo-tool", ie.Name)
	assert.Equal(t, "1.0.0", ie.Version)
	assert.Same(t, cause, ie.Cause)
	assert.ErrorIs(t, err, cause)
}

func TestInstall_SkipsWhenPresent(t *testing.T) {
	eng := &fakeEngine{}
	m, err := New(storeSpec(t, Exact("1.0.0")), &fakeRegistry{}, eng)
	require.NoError(t, err)

	_, err = m.Install(context.Background())
	require.NoError(t, err)
	_, err = m.Install(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, eng.calls.Load())
}

func TestUpdate_Idempotent(t *testing.T) {
	reg := &fakeRegistry{versions: []string{"1.0.0", "1.1.0"}}
	eng := &fakeEngine{}
	m, err := New(storeSpec(t, Latest()), reg, eng)
	require.NoError(t, err)

	first, err := m.Update(context.Background())
	require.NoError(t, err)
	second, err := m.Update(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, eng.calls.Load(), "second update must not call the install engine")
	assert.Equal(t, 2, reg.calls, "update always re-queries the registry")
}

func TestUpdate_IgnoresEarlierResolution(t *testing.T) {
	reg := &fakeRegistry{versions: []string{"1.0.0"}}
	eng := &fakeEngine{}
	m, err := New(storeSpec(t, Latest()), reg, eng)
	require.NoError(t, err)

	prepared, err := m.Prepare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", prepared.Version)

	reg.publish("1.0.1")
	updated, err := m.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", updated.Version)

	again, err := m.Prepare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, prepared, again, "update returns a new value instead of mutating the manager")
}

func TestBareMode(t *testing.T) {
	target := filepath.Join(t.TempDir(), "local-init")
	spec := Spec{Name: "@imooc-cli/init", Version: Latest(), TargetPath: target}
	m, err := New(spec, nil, nil)
	require.NoError(t, err)

	ok, err := m.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.MkdirAll(filepath.Join(target, "lib"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "package.json"), []byte(`{"lib":"lib/index.js"}`), 0644))

	ok, err = m.Exists(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = m.Install(context.Background())
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = m.Update(context.Background())
	assert.ErrorIs(t, err, ErrNoStore)

	r, err := m.Prepare(context.Background())
	require.NoError(t, err)
	entry, err := m.RootFilePath(r)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(target, "lib", "index.js")), entry)
}

func TestBareMode_IgnoresStoreState(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(target, 0755))

	m, err := New(Spec{Name: "demo-tool", Version: Latest(), TargetPath: target}, nil, nil)
	require.NoError(t, err)
	ok, err := m.Exists(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRootFilePath_NoEntry(t *testing.T) {
	m, err := New(storeSpec(t, Exact("1.0.0")), &fakeRegistry{}, &fakeEngine{},
		WithLocator(func(string) (string, error) { return "", nil }))
	require.NoError(t, err)

	r, err := m.Install(context.Background())
	require.NoError(t, err)
	entry, err := m.RootFilePath(r)
	require.NoError(t, err)
	assert.Empty(t, entry)
}

func TestEndToEnd_InstallThenUpdate(t *testing.T) {
	ctx := context.Background()
	reg := &fakeRegistry{versions: []string{"1.0.0", "1.1.0"}}
	eng := &fakeEngine{}
	spec := storeSpec(t, Exact("1.0.0"))
	m, err := New(spec, reg, eng)
	require.NoError(t, err)

	installed, err := m.Install(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(spec.StorePath, "_demo-tool@1.0.0@demo-tool"), installed.Path)
	assert.DirExists(t, installed.Path)

	updated, err := m.Update(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", updated.Version)
	assert.Equal(t, filepath.Join(spec.StorePath, "_demo-tool@1.1.0@demo-tool"), updated.Path)
	assert.DirExists(t, updated.Path)
	assert.DirExists(t, installed.Path, "older versions stay on disk")

	entry, err := m.RootFilePath(updated)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(updated.Path, "lib", "index.js")), entry)
	assert.EqualValues(t, 2, eng.calls.Load())
}

func TestConcurrentInstallsShareOneEngineRun(t *testing.T) {
	spec := storeSpec(t, Exact("1.0.0"))
	eng := &fakeEngine{delay: 200 * time.Millisecond}

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		m, err := New(spec, &fakeRegistry{}, eng, WithLockTimeout(10*time.Second))
		require.NoError(t, err)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Install(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, eng.calls.Load())
}
