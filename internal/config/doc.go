// Package config manages user-level settings stored at ~/.scaffold/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the registry base URL, the registry timeout and the cache lock timeout, and
// loads the user's ~/.env file into the process environment.
package config
