package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/scaffold-labs/scaffold/internal/cache"
	"github.com/scaffold-labs/scaffold/internal/home"
	"github.com/scaffold-labs/scaffold/internal/install"
	"github.com/scaffold-labs/scaffold/internal/manifest"
	"github.com/scaffold-labs/scaffold/internal/platform"
	"github.com/scaffold-labs/scaffold/internal/runtime"
)

// Options selects which checks run and whether repairs are attempted.
type Options struct {
	Fix bool
	// NodeBin and NpmBin override the executables looked up on PATH.
	NodeBin string
	NpmBin  string
	// SkipNpm disables the npm check when dependency installs are off.
	SkipNpm bool
}

// Report counts check outcomes.
type Report struct {
	OK       int
	Problems int
	Fixed    int
}

// Healthy reports whether every problem found was fixed.
func (r Report) Healthy() bool { return r.Problems == r.Fixed }

type checker struct {
	w    io.Writer
	opts Options
	rep  Report
}

func (c *checker) ok(format string, a ...any) {
	c.rep.OK++
	fmt.Fprintf(c.w, "  [ OK ] "+format+"\n", a...)
}

func (c *checker) problem(tag, format string, a ...any) {
	c.rep.Problems++
	fmt.Fprintf(c.w, "  ["+tag+"] "+format+"\n", a...)
}

func (c *checker) fixed(format string, a ...any) {
	c.rep.Fixed++
	fmt.Fprintf(c.w, "  [FIX ] "+format+"\n", a...)
}

// Run checks layout and the toolchain, writing one line per check to w.
func Run(ctx context.Context, w io.Writer, layout home.Layout, opts Options) Report {
	c := &checker{w: w, opts: opts}

	fmt.Fprintf(w, "Layout (%s mode):\n", layout.Mode)
	if layout.Mode == home.ModeBare {
		c.checkTarget(layout.TargetPath)
	} else {
		c.checkDir(layout.HomePath)
		c.checkStore(layout.StorePath)
		c.checkStaging(layout.StorePath)
		c.checkLinks(layout.StorePath)
	}

	fmt.Fprintln(w, "Toolchain:")
	c.checkNode(ctx)
	if !opts.SkipNpm {
		c.checkNpm()
	}
	return c.rep
}

func (c *checker) checkDir(path string) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		c.problem("MISS", "%s does not exist", path)
		if c.opts.Fix {
			if mkErr := os.MkdirAll(path, home.DirPermNormal); mkErr != nil {
				fmt.Fprintf(c.w, "  [FAIL] Could not create %s: %v\n", path, mkErr)
				return
			}
			c.fixed("Created %s", path)
		}
		return
	}
	if err != nil {
		c.problem("FAIL", "%s: %v", path, err)
		return
	}
	if !info.IsDir() {
		c.problem("WARN", "%s exists but is not a directory", path)
		return
	}
	c.ok("%s exists", path)
}

func (c *checker) checkStore(store string) {
	if _, err := os.Stat(store); os.IsNotExist(err) {
		c.problem("MISS", "package store %s does not exist", store)
		if c.opts.Fix {
			if err := cache.EnsureStore(store); err != nil {
				fmt.Fprintf(c.w, "  [FAIL] %v\n", err)
				return
			}
			c.fixed("Created package store %s", store)
		}
		return
	}
	if err := cache.EnsureStore(store); err != nil {
		c.problem("FAIL", "%v", err)
		return
	}
	c.ok("package store %s is writable", store)
}

// checkStaging reports unpack directories left behind by interrupted installs.
func (c *checker) checkStaging(store string) {
	leftovers, _ := filepath.Glob(filepath.Join(store, install.StagingPattern))
	if len(leftovers) == 0 {
		return
	}
	c.problem("WARN", "%d interrupted install(s) left in %s", len(leftovers), store)
	if !c.opts.Fix {
		return
	}
	for _, dir := range leftovers {
		if err := os.RemoveAll(dir); err != nil {
			fmt.Fprintf(c.w, "  [FAIL] Could not remove %s: %v\n", dir, err)
			return
		}
	}
	c.fixed("Removed %d staging director(ies)", len(leftovers))
}

// checkLinks verifies that <store>/<name> links point at existing cache paths.
func (c *checker) checkLinks(store string) {
	for _, link := range storeLinks(store) {
		target, err := platform.ReadLinkTarget(link)
		if err != nil {
			continue
		}
		if _, err := os.Stat(target); os.IsNotExist(err) {
			c.problem("WARN", "%s -> %s (target does not exist)", link, target)
			if c.opts.Fix {
				if err := platform.RemoveLink(link); err != nil {
					fmt.Fprintf(c.w, "  [FAIL] Could not remove %s: %v\n", link, err)
					continue
				}
				c.fixed("Removed dangling link %s", link)
			}
			continue
		}
		c.ok("%s -> %s", link, target)
	}
}

// storeLinks lists candidate package links: top-level names and the
// packages inside @scope directories, skipping cache paths.
func storeLinks(store string) []string {
	entries, err := os.ReadDir(store)
	if err != nil {
		return nil
	}
	var links []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(store, name)
		if strings.HasPrefix(name, "@") && e.IsDir() {
			scoped, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, s := range scoped {
				links = append(links, filepath.Join(path, s.Name()))
			}
			continue
		}
		links = append(links, path)
	}
	return links
}

func (c *checker) checkTarget(target string) {
	if _, err := os.Stat(target); err != nil {
		c.problem("MISS", "target path %s does not exist", target)
		return
	}
	entry, err := manifest.Locate(target)
	switch {
	case err != nil:
		c.problem("FAIL", "%v", err)
	case entry == "":
		c.problem("WARN", "%s declares no main or lib entry; commands will do nothing", target)
	default:
		c.ok("entry file %s", entry)
	}
}

func (c *checker) checkNode(ctx context.Context) {
	name := c.opts.NodeBin
	if name == "" {
		name = "node"
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		c.problem("MISS", "node not found on PATH")
		return
	}
	if err := runtime.CheckNodeVersion(ctx, bin); err != nil {
		c.problem("FAIL", "%v", err)
		return
	}
	c.ok("node %s (>= %s)", bin, runtime.MinNodeVersion)
}

func (c *checker) checkNpm() {
	name := c.opts.NpmBin
	if name == "" {
		name = "npm"
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		c.problem("MISS", "npm not found on PATH; packages with dependencies cannot be installed")
		return
	}
	c.ok("npm %s", bin)
}
