// Package manifest reads package.json manifests of installed helper packages
// and locates their entry files.
//
// Manifests are validated against an embedded JSON schema that only
// constrains the fields the CLI relies on (name, version, main, lib, bin);
// everything else a package declares is ignored.
package manifest
