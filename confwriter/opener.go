package confwriter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// Opener opens the resource behind an attachment locator. The caller
// closes the returned reader.
type Opener func(ctx context.Context, u *url.URL) (io.ReadCloser, error)

// DefaultOpener handles file, http and https locators. A nil client means
// http.DefaultClient.
func DefaultOpener(client *http.Client) Opener {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
		switch u.Scheme {
		case "", "file":
			p := u.Path
			if p == "" {
				p = u.Opaque
			}
			f, err := os.Open(filepath.FromSlash(p))
			if err != nil {
				return nil, fmt.Errorf("confwriter: open attachment: %w", err)
			}
			return f, nil

		case "http", "https":
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
			if err != nil {
				return nil, fmt.Errorf("confwriter: build request: %w", err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("confwriter: fetch attachment: %w", err)
			}
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				resp.Body.Close()
				return nil, fmt.Errorf("confwriter: fetch %s: status %d", u.Redacted(), resp.StatusCode)
			}
			return resp.Body, nil
		}
		return nil, fmt.Errorf("confwriter: unsupported attachment scheme %q", u.Scheme)
	}
}
