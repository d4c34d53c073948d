package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultCacheTTL = 5 * time.Minute
	cacheSize       = 64
	userAgent       = "scaffold-cli"
	acceptHeader    = "application/json"
)

// Client talks to an npm-compatible registry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	cacheTTL   time.Duration

	packuments *expirable.LRU[string, *Packument]
	inflight   singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout bounds every registry request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient = &http.Client{Transport: cl.httpClient.Transport, Timeout: d}
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// WithCacheTTL sets how long fetched metadata stays available to install lookups.
func WithCacheTTL(d time.Duration) Option {
	return func(cl *Client) {
		cl.cacheTTL = d
	}
}

// New creates a Client for the registry at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
		cacheTTL:   defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.packuments = expirable.NewLRU[string, *Packument](cacheSize, nil, c.cacheTTL)
	return c
}

// BaseURL returns the registry base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PackageURL returns the metadata URL for a package. Scoped names keep
// their "@" and have the scope separator escaped.
func (c *Client) PackageURL(name string) string {
	return c.baseURL + "/" + url.PathEscape(name)
}

// Packument fetches the full metadata document for a package.
//
// A 404 yields ErrPackageNotFound; transport failures and other non-200
// statuses yield an *UnavailableError. A 200 with a malformed body is
// treated as "no data": an empty packument and no error.
func (c *Client) Packument(ctx context.Context, name string) (*Packument, error) {
	if name == "" {
		return nil, errors.New("package name must not be empty")
	}

	v, err, _ := c.inflight.Do(name, func() (interface{}, error) {
		return c.fetchPackument(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Packument), nil
}

func (c *Client) fetchPackument(ctx context.Context, name string) (*Packument, error) {
	u := c.PackageURL(name)
	c.logger.Debug("fetching package metadata", "package", name, "url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	case resp.StatusCode != http.StatusOK:
		return nil, &UnavailableError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{URL: u, Err: fmt.Errorf("reading response body: %w", err)}
	}

	var doc Packument
	if err := json.Unmarshal(body, &doc); err != nil {
		c.logger.Debug("ignoring malformed package metadata", "package", name, "error", err)
		return &Packument{Name: name}, nil
	}
	if doc.Name == "" {
		doc.Name = name
	}
	c.packuments.Add(name, &doc)
	return &doc, nil
}

// ListVersions returns every published version of a package in ascending
// semver order. It always queries the registry.
func (c *Client) ListVersions(ctx context.Context, name string) ([]string, error) {
	doc, err := c.Packument(ctx, name)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(doc.Versions))
	for v := range doc.Versions {
		keys = append(keys, v)
	}
	return SortVersions(keys), nil
}

// ResolveLatest returns the greatest published version of a package.
func (c *Client) ResolveLatest(ctx context.Context, name string) (string, error) {
	versions, err := c.ListVersions(ctx, name)
	if err != nil {
		return "", err
	}
	latest, err := Latest(versions)
	if err != nil {
		return "", fmt.Errorf("resolving latest %s: %w", name, err)
	}
	c.logger.Debug("resolved latest version", "package", name, "version", latest)
	return latest, nil
}

// ResolveCompatible returns the greatest published version with the same
// major version as base and not lower than base.
func (c *Client) ResolveCompatible(ctx context.Context, name, base string) (string, error) {
	versions, err := c.ListVersions(ctx, name)
	if err != nil {
		return "", err
	}
	v, err := Compatible(versions, base)
	if err != nil {
		return "", fmt.Errorf("resolving %s compatible with %s: %w", name, base, err)
	}
	c.logger.Debug("resolved compatible version", "package", name, "base", base, "version", v)
	return v, nil
}

// VersionManifest returns the metadata of one version. It reuses metadata
// fetched earlier in this process while it is fresh, and fetches otherwise.
func (c *Client) VersionManifest(ctx context.Context, name, version string) (*VersionManifest, error) {
	doc, ok := c.packuments.Get(name)
	if !ok || !hasVersion(doc, version) {
		var err error
		doc, err = c.Packument(ctx, name)
		if err != nil {
			return nil, err
		}
	}
	m, ok := doc.Versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", ErrVersionNotFound, name, version)
	}
	if m.Name == "" {
		m.Name = name
	}
	if m.Version == "" {
		m.Version = version
	}
	return &m, nil
}

func hasVersion(doc *Packument, version string) bool {
	_, ok := doc.Versions[version]
	return ok
}
