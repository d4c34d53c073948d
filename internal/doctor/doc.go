// Package doctor checks that the CLI's home directory, package store and
// Node.js toolchain are usable, and repairs what it safely can.
package doctor
