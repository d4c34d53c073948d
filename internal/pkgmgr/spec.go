package pkgmgr

import (
	"errors"
	"strings"
)

// SelectorKind says how a Selector picks a version.
type SelectorKind int

const (
	// SelectExact uses the given version verbatim.
	SelectExact SelectorKind = iota
	// SelectLatest picks the highest published version.
	SelectLatest
	// SelectCompatible picks the highest version with the same major as the base.
	SelectCompatible
)

// Selector chooses a concrete version from the registry's version set.
type Selector struct {
	Kind    SelectorKind
	Version string
}

// Exact selects version v.
func Exact(v string) Selector { return Selector{Kind: SelectExact, Version: v} }

// Latest selects the highest published version.
func Latest() Selector { return Selector{Kind: SelectLatest} }

// CompatibleWith selects the highest version compatible with base.
func CompatibleWith(base string) Selector { return Selector{Kind: SelectCompatible, Version: base} }

// ParseSelector reads "latest" (or ""), "^1.2.0" and "1.2.0" forms.
func ParseSelector(s string) Selector {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "latest":
		return Latest()
	case strings.HasPrefix(s, "^"):
		return CompatibleWith(strings.TrimPrefix(s, "^"))
	default:
		return Exact(s)
	}
}

func (s Selector) String() string {
	switch s.Kind {
	case SelectLatest:
		return "latest"
	case SelectCompatible:
		return "^" + s.Version
	default:
		return s.Version
	}
}

// Spec identifies the package a Manager works on. It is never mutated.
type Spec struct {
	Name    string
	Version Selector
	// TargetPath is the install root, or the package directory itself in
	// bare-path mode.
	TargetPath string
	// StorePath is the cache root beneath TargetPath. Empty means bare-path mode.
	StorePath string
}

// StoreBacked reports whether packages are installed through the package cache.
func (s Spec) StoreBacked() bool { return s.StorePath != "" }

// Validate checks the invariants of a Spec.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("package name is required")
	}
	if s.TargetPath == "" {
		return errors.New("target path is required")
	}
	if s.Version.Kind != SelectLatest && s.Version.Version == "" {
		return errors.New("version selector needs a version")
	}
	return nil
}

// Resolved is a concrete version of a package and where it lives on disk.
type Resolved struct {
	Name    string
	Version string
	Path    string
}
