package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scaffold-labs/scaffold/internal/branding"
	"github.com/scaffold-labs/scaffold/internal/home"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys.
const (
	KeyRegistry        = "registry"
	KeyRegistryTimeout = "registry_timeout"
	KeyInstallDeps     = "install_deps"
	KeyLockTimeout     = "lock_timeout"
)

// Defaults for keys that are not set.
const (
	DefaultRegistryTimeout = 15 * time.Second
	DefaultLockTimeout     = 2 * time.Minute
)

// Keys lists every key `config get/set` accepts.
var Keys = []string{KeyRegistry, KeyRegistryTimeout, KeyInstallDeps, KeyLockTimeout}

// Dir returns the path to the config directory (the home-configuration path).
func Dir() string {
	dir, err := home.GetHomePath()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return dir
}

// FilePath returns the full path to the config file (~/.scaffold/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, home.DirPermNormal); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyRegistry, branding.DefaultRegistry())
	viper.SetDefault(KeyRegistryTimeout, DefaultRegistryTimeout)
	viper.SetDefault(KeyInstallDeps, true)
	viper.SetDefault(KeyLockTimeout, DefaultLockTimeout)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Registry returns the registry base URL without a trailing slash.
func Registry() string {
	return strings.TrimRight(viper.GetString(KeyRegistry), "/")
}

// RegistryTimeout returns the per-request registry timeout.
func RegistryTimeout() time.Duration {
	if d := viper.GetDuration(KeyRegistryTimeout); d > 0 {
		return d
	}
	return DefaultRegistryTimeout
}

// LockTimeout returns how long to wait for another process holding a cache lock.
func LockTimeout() time.Duration {
	if d := viper.GetDuration(KeyLockTimeout); d > 0 {
		return d
	}
	return DefaultLockTimeout
}

// InstallDeps reports whether dependencies of freshly installed packages are installed.
func InstallDeps() bool {
	return viper.GetBool(KeyInstallDeps)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !isKnownKey(key) {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys, ", "))
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func isKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
