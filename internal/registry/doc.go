// Package registry queries an npm-compatible package registry for the
// versions a package has published and picks a concrete version from them:
// either the globally latest one or the latest one compatible with a base
// version (same major, not lower). Ordering is semantic-version precedence.
//
// Resolution always performs a fresh registry request. Fetched metadata is
// kept in a short-lived in-process cache that only install-time lookups
// (tarball location and integrity) read from. Requests are single-attempt;
// callers decide whether to retry.
package registry
