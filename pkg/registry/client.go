// Package registry talks to the Hex package registry: it resolves package
// metadata, downloads release tarballs and persists them under download/.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/glorpus-work/gleam-pkg/internal/logger"
	"github.com/glorpus-work/gleam-pkg/pkg/config"
	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/glorpus-work/gleam-pkg/pkg/fsutil"
	"github.com/glorpus-work/gleam-pkg/pkg/model"
)

// Client is a registry client. It holds no state beyond its configuration and
// the underlying HTTP client.
type Client struct {
	client         *http.Client
	apiBase        string
	repositoryBase string
	userAgent      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, e.g. for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

// NewClient creates a registry client from the registry configuration.
// A zero HTTPTimeout leaves requests without a deadline.
func NewClient(cfg config.RegistryConfig, opts ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Timeout:   cfg.HTTPTimeout,
			Transport: newTransport(),
		},
		apiBase:        cfg.APIBase,
		repositoryBase: cfg.RepositoryBase,
		userAgent:      cfg.UserAgent,
	}
	if c.userAgent == "" {
		c.userAgent = config.DefaultUserAgent
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MetadataURL returns the metadata endpoint for name.
func (c *Client) MetadataURL(name string) string {
	return c.apiBase + "packages/" + name
}

// ArchiveURL returns the tarball endpoint for ref.
func (c *Client) ArchiveURL(ref model.PackageRef) string {
	return c.repositoryBase + "tarballs/" + ref.ID() + ".tar"
}

// ResolveMetadata fetches and decodes the package document for name.
func (c *Client) ResolveMetadata(ctx context.Context, name string) (*Metadata, error) {
	url := c.MetadataURL(name)
	logger.Debugf("Inspecting package from: %s", url)

	body, err := c.get(ctx, url, "application/json", fmt.Sprintf("failed to fetch metadata for package %s", name))
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&meta); err != nil {
		return nil, &pkgerrors.RegistryError{
			Op:  pkgerrors.OpDecode,
			URL: url,
			Msg: fmt.Sprintf("returned metadata for %s is not valid JSON", name),
			Err: err,
		}
	}
	return &meta, nil
}

// FetchArchive downloads the release tarball for ref into memory.
func (c *Client) FetchArchive(ctx context.Context, ref model.PackageRef) ([]byte, error) {
	url := c.ArchiveURL(ref)
	logger.Debugf("Downloading package from: %s", url)

	body, err := c.get(ctx, url, "application/x-tar", fmt.Sprintf("failed to download package %s", ref))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &pkgerrors.RegistryError{Op: pkgerrors.OpEmpty, URL: url, Msg: "registry returned an empty tarball"}
	}
	return body, nil
}

// SaveArchive writes data to {dir}/{name}-{version}.tar and returns the path.
// Failures are reported with Op OpPersist so callers can tell them apart from
// network errors.
func (c *Client) SaveArchive(dir string, ref model.PackageRef, data []byte) (string, error) {
	path := filepath.Join(dir, ref.ID()+".tar")
	if err := fsutil.WriteFileAtomic(path, data, fsutil.FileModeDefault); err != nil {
		return "", &pkgerrors.RegistryError{
			Op:  pkgerrors.OpPersist,
			Msg: fmt.Sprintf("failed to save tarball to disk: %s", path),
			Err: err,
		}
	}
	logger.Debugf("Tarball saved to: %s", path)
	return path, nil
}

func (c *Client) get(ctx context.Context, url, accept, failMsg string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &pkgerrors.RegistryError{Op: pkgerrors.OpFetch, URL: url, Msg: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &pkgerrors.RegistryError{Op: pkgerrors.OpFetch, URL: url, Msg: failMsg, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &pkgerrors.RegistryError{
			Op:         pkgerrors.OpStatus,
			URL:        url,
			StatusCode: resp.StatusCode,
			Msg:        "received non-success status code",
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrors.RegistryError{Op: pkgerrors.OpFetch, URL: url, Msg: "failed to read response body", Err: err}
	}
	return body, nil
}
