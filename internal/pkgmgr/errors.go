package pkgmgr

import (
	"errors"
	"fmt"
)

// ErrNoStore is returned by Install and Update in bare-path mode, where
// there is nothing to install into.
var ErrNoStore = errors.New("package is not store-backed")

// InstallError reports a failed install engine run. Cause is kept verbatim.
type InstallError struct {
	Name    string
	Version string
	Cause   error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installing %s@%s: %v", e.Name, e.Version, e.Cause)
}

func (e *InstallError) Unwrap() error { return e.Cause }
