package updater

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)

// CheckAndPrintBanner prints an update banner from the cached version check
// when a newer version is known. It never blocks: a stale cache is refreshed
// in a background goroutine for the next invocation. The returned channel
// is closed once that refresh (if any) has finished.
func (u *Updater) CheckAndPrintBanner(w io.Writer, configDir string) <-chan struct{} {
	done := make(chan struct{})

	cache, err := LoadCache(configDir)
	if err != nil {
		u.logger.Debug("ignoring unreadable version cache", "error", err)
		cache = nil
	}

	if cache != nil && cache.UpdateAvailable && cache.CurrentVersion == u.currentVersion {
		PrintUpdateBanner(w, u.packageName, cache.CurrentVersion, cache.LatestVersion)
	}

	if !IsCacheStale(cache, DefaultCacheMaxAge, u.currentVersion) {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		u.refreshCache(context.Background(), configDir)
	}()
	return done
}

// PrintUpdateBanner prints the update notification to w.
func PrintUpdateBanner(w io.Writer, packageName, current, latest string) {
	fmt.Fprintln(w, bannerStyle.Render(fmt.Sprintf("Please update package %s from %s to %s", packageName, current, latest)))
	fmt.Fprintf(w, "    Run `npm install -g %s` to upgrade\n\n", packageName)
}

// refreshCache fetches the latest version and updates the cache file.
// Failures are logged at debug level only.
func (u *Updater) refreshCache(ctx context.Context, configDir string) {
	cache, err := u.Check(ctx)
	if err != nil {
		u.logger.Debug("version check failed", "package", u.packageName, "error", err)
		return
	}
	if err := SaveCache(configDir, cache); err != nil {
		u.logger.Debug("saving version cache", "error", err)
	}
}
