package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFor(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		version string
		want    string
	}{
		{"plain name", "demo-tool", "1.0.0", filepath.Join("/store", "_demo-tool@1.0.0@demo-tool")},
		{"scoped name", "@imooc-cli/init", "1.1.2", filepath.Join("/store", "_@imooc-cli_init@1.1.2@@imooc-cli", "init")},
		{"prerelease", "demo-tool", "2.0.0-beta.1", filepath.Join("/store", "_demo-tool@2.0.0-beta.1@demo-tool")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PathFor("/store", tt.pkg, tt.version))
		})
	}
}

func TestPathFor_Deterministic(t *testing.T) {
	a := PathFor("/store", "@scope/pkg", "1.0.0")
	b := PathFor("/store", "@scope/pkg", "1.0.0")
	assert.Equal(t, a, b)

	other := PathFor("/store", "@scope/pkg", "1.0.1")
	assert.NotEqual(t, a, other)
	rel, err := filepath.Rel(a, other)
	require.NoError(t, err)
	assert.True(t, len(rel) > 2 && rel[:2] == "..", "paths for different versions must not nest: %s", rel)
}

func TestEncodeName(t *testing.T) {
	assert.Equal(t, "@a_b_c", EncodeName("@a/b/c"))
	assert.Equal(t, "plain", EncodeName("plain"))
}

func TestEnsureStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "deps", "node_modules")
	require.NoError(t, EnsureStore(root))

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent.
	require.NoError(t, EnsureStore(root))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be cleaned up")
}

func TestEnsureStore_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	err := EnsureStore(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheDirUnwritable)
}

func TestEnsureStore_ReadOnly(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits not enforced")
	}
	root := filepath.Join(t.TempDir(), "ro")
	require.NoError(t, os.MkdirAll(root, 0555))
	t.Cleanup(func() { os.Chmod(root, 0755) })

	err := EnsureStore(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCacheDirUnwritable))
}

func TestExists(t *testing.T) {
	root := t.TempDir()
	assert.False(t, Exists(root, "demo-tool", "1.0.0"))

	require.NoError(t, os.MkdirAll(PathFor(root, "demo-tool", "1.0.0"), 0755))
	assert.True(t, Exists(root, "demo-tool", "1.0.0"))
	assert.False(t, Exists(root, "demo-tool", "1.1.0"))
}

func TestLockExcludesSecondHolder(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	first, err := s.Lock(ctx, "@scope/pkg", "1.0.0", time.Second)
	require.NoError(t, err)

	_, err = s.Lock(ctx, "@scope/pkg", "1.0.0", 150*time.Millisecond)
	assert.Error(t, err, "second lock on the same cache path must wait and time out")

	other, err := s.Lock(ctx, "@scope/pkg", "2.0.0", time.Second)
	require.NoError(t, err, "a different version uses a different lock")
	require.NoError(t, other.Release())

	require.NoError(t, first.Release())
	again, err := s.Lock(ctx, "@scope/pkg", "1.0.0", time.Second)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestList(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	for _, p := range []struct{ name, version string }{
		{"demo-tool", "1.0.0"},
		{"demo-tool", "1.1.0"},
		{"@imooc-cli/init", "1.1.2"},
	} {
		require.NoError(t, os.MkdirAll(s.PathFor(p.name, p.version), 0755))
	}
	// Noise that must be ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demo-tool"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".staging-123"), 0755))
	require.NoError(t, os.WriteFile(LockPath(s.PathFor("demo-tool", "1.0.0")), nil, 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "_broken"), 0755))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "@imooc-cli/init", entries[0].Name)
	assert.Equal(t, "1.1.2", entries[0].Version)
	assert.Equal(t, s.PathFor("@imooc-cli/init", "1.1.2"), entries[0].Path)

	versions := []string{entries[1].Version, entries[2].Version}
	assert.ElementsMatch(t, []string{"1.0.0", "1.1.0"}, versions)
	assert.Equal(t, "demo-tool", entries[1].Name)
}

func TestList_MissingStore(t *testing.T) {
	entries, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
