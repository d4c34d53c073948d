// Package runtime runs a helper package's entry file in a separate Node.js
// process. The entry file and its arguments are handed to a fixed driver
// program as process arguments; standard streams are inherited and the
// child's exit code is reported back to the caller.
package runtime
