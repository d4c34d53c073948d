// Package dispatch maps CLI commands to helper packages and runs them.
//
// Every command is registered in a static table. Dispatch makes sure the
// command's package is present (installing or updating it from the registry
// in store-backed mode, or using it in place in bare-path mode), locates its
// entry file and runs it in a child process with the command's arguments.
package dispatch
