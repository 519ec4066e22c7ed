// Package fetcher opens ingredient sources from local paths or HTTP URLs and
// reads them as CSV or XLSX rows.
package fetcher

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher downloads remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Open returns a reader for location, downloading it through f when it is a
// URL and opening it from disk otherwise.
func Open(ctx context.Context, f Fetcher, location string) (io.ReadCloser, error) {
	if IsRemote(location) {
		if f == nil {
			return nil, eris.Errorf("fetcher: no fetcher configured for %s", location)
		}
		return f.Download(ctx, location)
	}
	file, err := os.Open(location)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", location)
	}
	return file, nil
}

// ReadAll opens location and returns its full contents.
func ReadAll(ctx context.Context, f Fetcher, location string) ([]byte, error) {
	rc, err := Open(ctx, f, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", location)
	}
	return b, nil
}
