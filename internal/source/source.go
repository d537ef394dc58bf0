// Package source materializes reference tables onto local disk. Table
// sourcing is external to the lookup core: indexes are always built from
// a fully-downloaded local file.
package source

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Resolver turns a table reference (local path or http(s) URL) into a
// readable local file path.
type Resolver struct {
	fetcher *HTTPFetcher
	tempDir string
}

// NewResolver creates a Resolver that downloads remote references into
// tempDir using the given fetcher.
func NewResolver(fetcher *HTTPFetcher, tempDir string) *Resolver {
	return &Resolver{fetcher: fetcher, tempDir: tempDir}
}

// Resolve returns a local path for ref. Local paths are validated and
// returned as-is; http(s) URLs are downloaded to the temp directory,
// keeping the remote file's base name so format detection by extension
// still works.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return r.download(ctx, ref)
	}

	if _, err := os.Stat(ref); err != nil {
		return "", eris.Wrapf(err, "source: stat %s", ref)
	}
	return ref, nil
}

func (r *Resolver) download(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "source: parse url %s", rawURL)
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "table.csv"
	}

	if err := os.MkdirAll(r.tempDir, 0o755); err != nil {
		return "", eris.Wrap(err, "source: create temp dir")
	}

	dest := filepath.Join(r.tempDir, name)
	if _, err := r.fetcher.DownloadToFile(ctx, rawURL, dest); err != nil {
		return "", err
	}
	return dest, nil
}
