// Package pkgmgr owns the install and update lifecycle of one named helper
// package.
//
// A Manager is built from an immutable Spec. In store-backed mode (a store
// path is set) the package lives at a deterministic cache path under the
// store and is installed through an install.Engine under a cross-process
// lock. In bare-path mode the target path is used as-is and nothing is
// installed, which lets developers point the CLI at a locally linked package.
//
// Versions are never advanced in place: Prepare, Install and Update each
// return a Resolved value that callers thread through to RootFilePath.
package pkgmgr
