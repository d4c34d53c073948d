// Package cache maps a (package name, version) pair to its deterministic
// location under a store root and answers whether that location exists.
//
// The directory name is `_<encoded-name>@<version>@<name>`, where the encoded
// name has every "/" replaced by "_". Other tooling recomputes the same path
// from the same inputs, so the scheme must not change.
//
// The store is shared between processes. Lock takes an advisory file lock
// keyed by the cache path; callers hold it across "check, then install".
package cache
