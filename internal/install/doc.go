// Package install is the install engine behind the package manager. Given a
// package name, a concrete version and a destination cache path, it fetches
// the version's tarball from the registry, verifies its integrity, unpacks
// it into a staging directory beside the destination, optionally installs
// the package's own dependencies there, and renames the result into place.
// A failed install never leaves a partial directory at the cache path.
package install
