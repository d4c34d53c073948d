package home

import (
	"fmt"
	"path/filepath"
)

// Mode represents how command packages are located.
type Mode int

const (
	// ModeStore fetches packages from the registry into the home cache.
	ModeStore Mode = iota
	// ModeBare uses a package already present at an explicit target path.
	ModeBare
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeStore:
		return "store"
	case ModeBare:
		return "bare"
	default:
		return "unknown"
	}
}

// Layout is the set of paths one dispatch works against.
// StorePath is empty in bare mode.
type Layout struct {
	Mode       Mode
	HomePath   string
	TargetPath string
	StorePath  string
}

// ResolveLayout decides the mode and paths from the environment.
// A target-path override takes precedence and selects bare mode.
func ResolveLayout() (Layout, error) {
	if target := GetTargetPathOverride(); target != "" {
		abs, err := filepath.Abs(target)
		if err != nil {
			return Layout{}, fmt.Errorf("resolving target path %s: %w", target, err)
		}
		return Layout{Mode: ModeBare, TargetPath: abs}, nil
	}

	homePath, err := GetHomePath()
	if err != nil {
		return Layout{}, err
	}
	target := GetDependenciesDir(homePath)
	return Layout{
		Mode:       ModeStore,
		HomePath:   homePath,
		TargetPath: target,
		StorePath:  GetStoreDir(target),
	}, nil
}
