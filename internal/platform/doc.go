// Package platform provides cross-platform filesystem operations: directory
// links and permission changes. On Unix systems it uses native symlinks and
// chmod directly. On Windows, where symlinks need developer mode, a link
// falls back to a .target sidecar file recording where the link points.
package platform
