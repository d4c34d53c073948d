package runtime

import (
	"context"
	"errors"
	"fmt"
)

// Runtime executes an entry file with a list of JSON-serializable arguments.
type Runtime interface {
	Run(ctx context.Context, entryFile string, args []any) error
}

// SpawnFailureCode is the exit code reported when the child never ran.
const SpawnFailureCode = 1

// ChildProcessError reports a child that could not be started or exited
// non-zero.
type ChildProcessError struct {
	Code int
	Err  error
}

func (e *ChildProcessError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("child process exited with code %d", e.Code)
	}
	return fmt.Sprintf("running child process: %v", e.Err)
}

func (e *ChildProcessError) Unwrap() error { return e.Err }

// ExitCode is the code the parent should exit with.
func (e *ChildProcessError) ExitCode() int { return e.Code }

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cpe *ChildProcessError
	if errors.As(err, &cpe) {
		return cpe.Code
	}
	return 1
}
