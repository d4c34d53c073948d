package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func setupHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SCAFFOLD_CLI_HOME", dir)
	viper.Reset()
	t.Cleanup(viper.Reset)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	setupHome(t)
	t.Setenv("SCAFFOLD_REGISTRY", "")
	Load()

	if got := Registry(); got != "https://registry.npmjs.org" {
		t.Errorf("Registry() = %q", got)
	}
	if got := RegistryTimeout(); got != DefaultRegistryTimeout {
		t.Errorf("RegistryTimeout() = %s", got)
	}
	if got := LockTimeout(); got != DefaultLockTimeout {
		t.Errorf("LockTimeout() = %s", got)
	}
	if !InstallDeps() {
		t.Error("InstallDeps() should default to true")
	}
}

func TestEnvOverridesRegistry(t *testing.T) {
	setupHome(t)
	t.Setenv("SCAFFOLD_REGISTRY", "http://localhost:4873/")
	Load()

	if got := Registry(); got != "http://localhost:4873" {
		t.Errorf("Registry() = %q, want trailing slash trimmed", got)
	}
}

func TestSetAndReload(t *testing.T) {
	dir := setupHome(t)
	Load()

	if err := Set(KeyRegistryTimeout, "3s"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	viper.Reset()
	Load()
	if got := RegistryTimeout(); got != 3*time.Second {
		t.Errorf("RegistryTimeout() = %s, want 3s", got)
	}
}

func TestSetUnknownKey(t *testing.T) {
	setupHome(t)
	Load()
	if err := Set("colour", "blue"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "SCAFFOLD_TEST_DOTENV_A=alpha\nSCAFFOLD_TEST_DOTENV_B=beta\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SCAFFOLD_TEST_DOTENV_B", "preset")
	os.Unsetenv("SCAFFOLD_TEST_DOTENV_A")
	t.Cleanup(func() { os.Unsetenv("SCAFFOLD_TEST_DOTENV_A") })

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv failed: %v", err)
	}
	if got := os.Getenv("SCAFFOLD_TEST_DOTENV_A"); got != "alpha" {
		t.Errorf("A = %q, want alpha", got)
	}
	if got := os.Getenv("SCAFFOLD_TEST_DOTENV_B"); got != "preset" {
		t.Errorf("B = %q, existing value should win", got)
	}
}

func TestLoadDotenv_Missing(t *testing.T) {
	if err := LoadDotenv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing dotenv should not error: %v", err)
	}
}
