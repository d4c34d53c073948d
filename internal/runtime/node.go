package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"
)

// MinNodeVersion is the oldest Node.js release helper packages run on.
const MinNodeVersion = "12.0.0"

// childWaitDelay is how long a cancelled child gets to exit after being
// interrupted before it is killed.
const childWaitDelay = 10 * time.Second

// driver loads the entry file and calls its export with the decoded
// arguments. Both arrive as the last two process arguments.
const driver = `const [file, payload] = process.argv.slice(-2);
const mod = require(file);
const fn = typeof mod === 'function' ? mod : mod && mod.default;
if (typeof fn !== 'function') {
  console.error(file + ' does not export a function');
  process.exit(1);
}
Promise.resolve()
  .then(() => fn.apply(null, JSON.parse(payload)))
  .catch((err) => {
    console.error(err && err.message ? err.message : err);
    process.exit(1);
  });
`

// ErrNodeNotFound is returned when no node binary can be found.
var ErrNodeNotFound = errors.New("node runtime requires Node.js")

// NodeRuntime runs entry files with Node.js.
type NodeRuntime struct {
	// Bin is the node executable; looked up on PATH when empty.
	Bin string
	// Stdin, Stdout and Stderr default to the parent's streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Env is added to the inherited environment.
	Env    map[string]string
	Logger *slog.Logger
}

func (n *NodeRuntime) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

func (n *NodeRuntime) bin() (string, error) {
	name := n.Bin
	if name == "" {
		name = "node"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNodeNotFound, err)
	}
	return path, nil
}

// Run executes `node -e <driver> -- <entryFile> <json args>` and waits for
// it. SIGINT and SIGTERM received meanwhile are forwarded to the child.
// A non-zero exit or a failed start is returned as *ChildProcessError.
func (n *NodeRuntime) Run(ctx context.Context, entryFile string, args []any) error {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("serializing arguments: %w", err)
	}

	nodeBin, err := n.bin()
	if err != nil {
		return &ChildProcessError{Code: SpawnFailureCode, Err: err}
	}
	if err := CheckNodeVersion(ctx, nodeBin); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, nodeBin, "-e", driver, "--", entryFile, string(payload))
	cmd.Stdin = orReader(n.Stdin, os.Stdin)
	cmd.Stdout = orWriter(n.Stdout, os.Stdout)
	cmd.Stderr = orWriter(n.Stderr, os.Stderr)
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = childWaitDelay
	cmd.Env = os.Environ()
	for k, v := range n.Env {
		cmd.Env = setEnv(cmd.Env, k, v)
	}

	n.logger().Debug("spawning node", "entry", entryFile, "args", len(args))
	if err := cmd.Start(); err != nil {
		return &ChildProcessError{Code: SpawnFailureCode, Err: err}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	done := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		return cmd.Wait()
	})
	g.Go(func() error {
		for {
			select {
			case sig := <-sigs:
				n.logger().Debug("forwarding signal to child", "signal", sig.String())
				_ = cmd.Process.Signal(sig)
			case <-done:
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				// Killed by a signal.
				code = SpawnFailureCode
			}
			return &ChildProcessError{Code: code}
		}
		return &ChildProcessError{Code: SpawnFailureCode, Err: err}
	}
	return nil
}

// CheckNodeVersion runs `node --version` and requires at least MinNodeVersion.
func CheckNodeVersion(ctx context.Context, nodeBin string) error {
	out, err := exec.CommandContext(ctx, nodeBin, "--version").Output()
	if err != nil {
		return fmt.Errorf("checking node version: %w", err)
	}
	return checkVersionString(strings.TrimSpace(string(out)))
}

func checkVersionString(raw string) error {
	v, err := semver.NewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return fmt.Errorf("parsing node version %q: %w", raw, err)
	}
	c, err := semver.NewConstraint(">= " + MinNodeVersion)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("node version %s is too old: %s or later is required", v, MinNodeVersion)
	}
	return nil
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

func orReader(r, def io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return def
}

func orWriter(w, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}
