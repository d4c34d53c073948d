package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// DependencyInstaller installs the dependencies a package declares, inside
// the package's own directory.
type DependencyInstaller interface {
	InstallDependencies(ctx context.Context, dir string) error
}

// ErrNpmNotFound is returned when npm is needed but not on PATH.
var ErrNpmNotFound = errors.New("npm not found on PATH")

// NpmInstaller runs `npm install` for production dependencies.
type NpmInstaller struct {
	// Bin overrides the npm executable; looked up on PATH when empty.
	Bin string
	// Registry, when set, is passed as --registry.
	Registry string
}

// Args returns the npm arguments used for an install.
func (n *NpmInstaller) Args() []string {
	args := []string{"install", "--omit=dev", "--prefer-offline", "--no-audit", "--no-fund", "--no-package-lock"}
	if n.Registry != "" {
		args = append(args, "--registry", n.Registry)
	}
	return args
}

// InstallDependencies runs npm in dir. Output is discarded unless npm fails,
// in which case the tail of stderr is included in the error.
func (n *NpmInstaller) InstallDependencies(ctx context.Context, dir string) error {
	bin := n.Bin
	if bin == "" {
		p, err := exec.LookPath("npm")
		if err != nil {
			return ErrNpmNotFound
		}
		bin = p
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, n.Args()...)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 512 {
			msg = msg[len(msg)-512:]
		}
		if msg != "" {
			return fmt.Errorf("npm install in %s: %w: %s", dir, err, msg)
		}
		return fmt.Errorf("npm install in %s: %w", dir, err)
	}
	return nil
}
