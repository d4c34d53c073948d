// Package updater tells users when a newer release of the CLI has been
// published to the package registry. A daily-cached version check powers a
// startup banner; refreshing the cache never blocks a command.
package updater
