// Package cli defines the Cobra command tree for the scaffold CLI. Each file
// in this package registers one top-level command with the root command.
// Commands backed by a helper package (init) go through the dispatcher; the
// rest (version, config, cache) are answered locally.
package cli
