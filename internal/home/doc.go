// Package home resolves the on-disk locations the CLI works with: the
// home-configuration directory (~/.scaffold by default), the dependency
// install root beneath it, and the store root that holds cached packages.
// It also decides the operating mode: a target-path override switches from
// store-backed mode to bare-path mode.
package home
