// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package before building; Go's
// //go:embed bakes it into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName         string `yaml:"cli_name"`
	DisplayName     string `yaml:"display_name"`
	Description     string `yaml:"description"`
	HomeDir         string `yaml:"home_dir"`
	EnvPrefix       string `yaml:"env_prefix"`
	GoModule        string `yaml:"go_module"`
	PackageName     string `yaml:"package_name"`
	DefaultRegistry string `yaml:"default_registry"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:         "scaffold",
			DisplayName:     "Scaffold",
			Description:     "Scaffolding tool that runs versioned command packages",
			HomeDir:         ".scaffold",
			EnvPrefix:       "SCAFFOLD",
			GoModule:        "github.com/scaffold-labs/scaffold",
			PackageName:     "@scaffold-labs/cli",
			DefaultRegistry: "https://registry.npmjs.org",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "scaffold").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "Scaffold").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the default dot-directory name under $HOME (e.g., ".scaffold").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "SCAFFOLD").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// PackageName returns the registry name the CLI itself is published under.
// The startup update check compares the running version against it.
func PackageName() string { load(); return defaults.PackageName }

// DefaultRegistry returns the registry base URL used when none is configured.
func DefaultRegistry() string { load(); return defaults.DefaultRegistry }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("target_path") → "SCAFFOLD_TARGET_PATH".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
