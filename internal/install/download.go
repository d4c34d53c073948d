package install

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// download streams url into destPath, reporting progress when enabled.
func (e *TarballEngine) download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s returned status %d", url, resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var pw *progressWriter
	if e.progress != nil {
		pw = &progressWriter{out: e.progress, total: resp.ContentLength, lastPercent: -1}
		w = io.MultiWriter(f, pw)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading download stream: %w", err)
	}
	if pw != nil {
		pw.done()
	}
	return f.Close()
}

// progressWriter prints a percentage (or a byte count when the size is
// unknown) as bytes flow through it.
type progressWriter struct {
	out         io.Writer
	total       int64
	written     int64
	lastPercent int
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 {
		percent := int(p.written * 100 / p.total)
		if percent != p.lastPercent {
			fmt.Fprintf(p.out, "\rDownloading... %d%%", percent)
			p.lastPercent = percent
		}
	}
	return len(b), nil
}

func (p *progressWriter) done() {
	if p.total > 0 {
		fmt.Fprintln(p.out)
	}
	printer.Fprintf(p.out, "Downloaded %d bytes\n", p.written)
}
